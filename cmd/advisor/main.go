package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tidwall/pretty"

	"stock-advisor/internal/journal"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/scheduler"
	"stock-advisor/internal/server"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

const usage = `usage: advisor <command> [flags]

commands:
  serve               run the HTTP API
  analyze -ticker T   analyze one ticker and print the result as JSON
  watch               analyze the configured watchlist on its cron schedule
  summary [-date D]   write the per-ticker CSV summary of a journaled day
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code. Every exit path
// returns here so deferred shutdown (span flush, signal handler) always runs.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd := args[0]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "config.yaml", "path to config file")
	ticker := fs.String("ticker", "", "ticker symbol to analyze (analyze only)")
	runNow := fs.Bool("now", false, "run the watchlist once at startup (watch only)")
	date := fs.String("date", "", "day to summarize as YYYY-MM-DD, default today (summary only)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	switch cmd {
	case "serve", "analyze", "watch", "summary":
	default:
		fmt.Fprint(stderr, usage)
		return 2
	}

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer shutdownSystem()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// summary only reads the journal, so it needs neither credentials nor an engine
	cfg, err := loadConfig(ctx, *configPath, cmd != "summary")
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	if cmd == "summary" {
		return runSummary(ctx, cfg, *date, stdout, stderr)
	}

	j := initializeJournal(ctx, cfg)
	eng := initializeEngine(ctx, cfg, j)

	switch cmd {
	case "serve":
		if err := server.Run(ctx, cfg.Server, eng); err != nil {
			logger.ErrorWithErr(ctx, "HTTP server stopped", err)
			return 1
		}

	case "analyze":
		a, err := eng.Analyze(ctx, *ticker)
		if a != nil {
			printJSON(stdout, stderr, a)
		}
		if err != nil || a == nil || a.Status != types.StatusSuccess {
			return 1
		}

	case "watch":
		s := scheduler.NewScheduler(ctx, eng, cfg.Watch.Tickers)
		if err := s.Register(cfg.Watch.Cron); err != nil {
			logger.ErrorWithErr(ctx, "Failed to register watchlist", err)
			return 1
		}
		if j != nil {
			registerJournalTasks(ctx, s, j, cfg.Journal.RetentionDays)
		}
		if *runNow {
			s.RunNow()
		}
		s.Start()
		<-ctx.Done()
		logger.Info(ctx, "Shutting down...")
		s.Stop()
	}
	return 0
}

func registerJournalTasks(ctx context.Context, s *scheduler.Scheduler, j *journal.Journal, retentionDays int) {
	if err := s.AddTask("0 0 1 * * *", "journal-compress", func() error {
		return j.CompressOlder(retentionDays)
	}); err != nil {
		logger.ErrorWithErr(ctx, "Failed to register journal compression", err)
	}
	if err := s.AddTask("0 55 23 * * *", "journal-summary", func() error {
		p, err := j.SummarizeToday()
		if err == nil && p != "" {
			logger.Info(ctx, "Journal summary written", "path", p)
		}
		return err
	}); err != nil {
		logger.ErrorWithErr(ctx, "Failed to register journal summary", err)
	}
}

func runSummary(ctx context.Context, cfg *store.Config, date string, stdout, stderr io.Writer) int {
	if !cfg.Journal.Enabled {
		fmt.Fprintln(stderr, "journal is disabled; set journal.enabled: true")
		return 1
	}
	day := time.Now()
	if date != "" {
		var err error
		if day, err = time.ParseInLocation("2006-01-02", date, time.Local); err != nil {
			fmt.Fprintf(stderr, "invalid -date: %v\n", err)
			return 2
		}
	}

	p, err := journal.New(cfg.Journal.Dir).SummarizeDay(day)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to summarize journal", err)
		return 1
	}
	if p == "" {
		fmt.Fprintln(stdout, "nothing journaled on", day.Format("2006-01-02"))
		return 0
	}
	fmt.Fprintln(stdout, p)
	return 0
}

func printJSON(stdout, stderr io.Writer, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(stderr, "encode result: %v\n", err)
		return
	}
	stdout.Write(pretty.Pretty(data))
}
