// Package scheduler runs the watchlist on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// Scheduler analyzes every watched ticker, one after another, on each tick.
type Scheduler struct {
	Cron    *cron.Cron
	Engine  interfaces.Engine
	Tickers []string
	Ctx     context.Context
}

// NewScheduler creates a Scheduler. Overlapping ticks are skipped, so a slow
// run never stacks up behind itself.
func NewScheduler(ctx context.Context, eng interfaces.Engine, tickers []string) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Engine:  eng,
		Tickers: normalize(tickers),
		Ctx:     ctx,
	}
}

// Register schedules the watchlist run with a six-field cron expression (seconds first).
func (s *Scheduler) Register(expr string) error {
	if len(s.Tickers) == 0 {
		return fmt.Errorf("register watchlist: no tickers configured")
	}
	if _, err := s.Cron.AddFunc(expr, func() { s.RunNow() }); err != nil {
		return fmt.Errorf("register watchlist: %w", err)
	}
	return nil
}

// AddTask registers an extra housekeeping job.
func (s *Scheduler) AddTask(expr, name string, fn func() error) error {
	_, err := s.Cron.AddFunc(expr, func() {
		if err := fn(); err != nil {
			logger.ErrorWithErr(s.Ctx, "Scheduled task failed", err, "task", name)
		}
	})
	if err != nil {
		return fmt.Errorf("register %s task: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info(s.Ctx, "Scheduler started", "tickers", s.Tickers, "entries", len(s.Cron.Entries()))
}

// Stop stops the scheduler and waits for a running watchlist pass to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info(s.Ctx, "Scheduler stopped")
}

// RunNow analyzes the watchlist immediately and returns the outcomes in ticker order.
func (s *Scheduler) RunNow() []*types.Analysis {
	op := logger.StartOperation(s.Ctx, "watchlist.run", "tickers", len(s.Tickers))
	out := make([]*types.Analysis, 0, len(s.Tickers))
	for _, t := range s.Tickers {
		if s.Ctx.Err() != nil {
			logger.Warn(s.Ctx, "Watchlist run interrupted", "remaining_from", t)
			break
		}
		a, err := s.Engine.Analyze(s.Ctx, t)
		if err != nil {
			logger.ErrorWithErr(s.Ctx, "Watchlist analysis failed", err, "ticker", t)
		}
		if a != nil {
			out = append(out, a)
		}
	}
	op.End("completed", len(out))
	return out
}

func normalize(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
