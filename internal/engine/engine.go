package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/prompt"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

type Engine struct {
	market    interfaces.SnapshotProvider
	headlines interfaces.HeadlineSource
	advisor   interfaces.Advisor
	journal   interfaces.Journal

	lookback  string
	trendDays int
	now       func() time.Time
}

func newEngine(cfg *store.Config, market interfaces.SnapshotProvider, headlines interfaces.HeadlineSource, advisor interfaces.Advisor, journal interfaces.Journal) *Engine {
	return &Engine{
		market:    market,
		headlines: headlines,
		advisor:   advisor,
		journal:   journal,
		lookback:  cfg.Market.Lookback,
		trendDays: cfg.Prompt.TrendDays,
		now:       time.Now,
	}
}

// Analyze runs one full analysis for ticker. The returned Analysis is never nil.
// err is non-nil only when the analysis ended in StatusError, and then mirrors its Message.
func (e *Engine) Analyze(ctx context.Context, ticker string) (*types.Analysis, error) {
	start := e.now()
	a := &types.Analysis{
		ID:        uuid.NewString(),
		Ticker:    strings.ToUpper(strings.TrimSpace(ticker)),
		StartedAt: start,
		Headlines: types.HeadlineSet{},
	}

	if a.Ticker == "" {
		a.Status = types.StatusWarning
		a.Message = types.MsgMissingTicker
		logger.Warn(ctx, "Analysis requested without ticker", "analysis_id", a.ID)
		return e.finish(ctx, a, start, nil)
	}

	snap := e.snapshot(ctx, a.Ticker)
	a.Snapshot = &snap
	a.Headlines = e.fetchHeadlines(ctx, a.Ticker)
	a.Chart = BuildChart(snap)

	p := prompt.Compose(a.Ticker, snap.Recent(e.trendDays), a.Headlines)
	logger.Debug(ctx, "Prompt composed", "ticker", a.Ticker, "prompt", p.String())

	rec, err := e.advisor.Recommend(ctx, p)
	switch {
	case errors.Is(err, types.ErrRateLimited):
		a.Status = types.StatusWarning
		a.Message = types.MsgRateLimited
		return e.finish(ctx, a, start, nil)
	case errors.Is(err, types.ErrJobTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		a.Status = types.StatusError
		a.Message = types.MsgTimedOut
		return e.finish(ctx, a, start, err)
	case err != nil:
		a.Status = types.StatusError
		a.Message = err.Error()
		return e.finish(ctx, a, start, err)
	}

	a.Recommendation = &rec
	logger.Recommendation(ctx, a.Ticker, rec.Action, rec.JobID, rec.Failed,
		"analysis_id", a.ID,
		"model", rec.Model,
		"job_status", string(rec.Status),
	)
	if rec.Failed {
		a.Status = types.StatusWarning
		a.Message = rec.Text
	} else {
		a.Status = types.StatusSuccess
		a.Message = types.MsgComplete
	}
	return e.finish(ctx, a, start, nil)
}

// snapshot never fails: provider errors degrade to an all-unknown snapshot.
func (e *Engine) snapshot(ctx context.Context, ticker string) types.Snapshot {
	snap, err := e.market.Snapshot(ctx, ticker, e.lookback)
	if err != nil {
		logger.ErrorWithErr(ctx, "Market data unavailable, continuing with unknown values", err,
			"ticker", ticker,
			"provider", e.market.Name(),
			"lookback", e.lookback,
		)
		return types.EmptySnapshot(ticker)
	}
	return snap
}

func (e *Engine) fetchHeadlines(ctx context.Context, ticker string) types.HeadlineSet {
	hs, err := e.headlines.Headlines(ctx, ticker)
	if err != nil {
		logger.ErrorWithErr(ctx, "Headlines unavailable, continuing without news", err, "ticker", ticker)
		return types.HeadlineSet{}
	}
	if hs == nil {
		return types.HeadlineSet{}
	}
	return hs
}

func (e *Engine) finish(ctx context.Context, a *types.Analysis, start time.Time, err error) (*types.Analysis, error) {
	a.DurationMs = e.now().Sub(start).Milliseconds()
	if e.journal != nil {
		if jerr := e.journal.Append(a); jerr != nil {
			logger.ErrorWithErr(ctx, "Failed to journal analysis", jerr, "analysis_id", a.ID)
		}
	}
	return a, err
}
