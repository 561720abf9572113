package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"stock-advisor/internal/engine"
	"stock-advisor/internal/engine/engineobs"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/journal"
	"stock-advisor/internal/llm/assistant"
	"stock-advisor/internal/llm/claude"
	"stock-advisor/internal/llm/llmobs"
	"stock-advisor/internal/llm/noop"
	"stock-advisor/internal/llm/openai"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/market/alpaca"
	"stock-advisor/internal/market/finnhub"
	"stock-advisor/internal/market/kite"
	"stock-advisor/internal/market/marketobs"
	"stock-advisor/internal/market/yahoo"
	"stock-advisor/internal/news"
	"stock-advisor/internal/store"
	"stock-advisor/internal/trace"
)

// shutdownSystem flushes buffered spans
func shutdownSystem() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := trace.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shut down tracer: %v\n", err)
	}
}

// initializeSystem loads .env and sets up logging and tracing
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig loads the configuration. withSecrets is false for commands that
// never call a provider, so they run without credentials.
func loadConfig(ctx context.Context, path string, withSecrets bool) (*store.Config, error) {
	load := store.LoadSettings
	if withSecrets {
		load = store.LoadConfig
	}
	cfg, err := load(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeMarket picks the snapshot provider and wraps it with observability
func initializeMarket(ctx context.Context, cfg *store.Config) interfaces.SnapshotProvider {
	var p interfaces.SnapshotProvider
	s := cfg.Secrets

	switch cfg.Market.Provider {
	case "FINNHUB":
		p = finnhub.New(s.FinnhubKey)
	case "ALPACA":
		p = alpaca.New(alpaca.Params{
			APIKey:    s.AlpacaKey,
			APISecret: s.AlpacaSecret,
			Feed:      cfg.Market.Feed,
		})
	case "KITE":
		p = kite.New(kite.Params{
			APIKey:      s.KiteAPIKey,
			AccessToken: s.KiteAccessToken,
			Exchange:    cfg.Market.Exchange,
		})
	default:
		p = yahoo.New()
	}

	logger.Info(ctx, "Market data provider ready", "provider", p.Name(), "lookback", cfg.Market.Lookback)
	return marketobs.Wrap(p)
}

// initializeNews builds the headline service, with Google News as fallback when enabled
func initializeNews(ctx context.Context, cfg *store.Config) interfaces.HeadlineSource {
	s := cfg.Secrets
	google := news.NewGoogleNews(cfg.News.Language, cfg.News.Region, cfg.News.ScraperTimeout)

	var primary interfaces.NewsProvider
	switch cfg.News.Provider {
	case "FINNHUB":
		primary = news.NewFinnHub(s.FinnhubKey, cfg.News.LookbackDays)
	case "GOOGLENEWS":
		primary = google
	default:
		primary = news.NewNewsAPI(s.NewsAPIKey, cfg.News.Language, cfg.News.LookbackDays)
	}

	var fallback interfaces.NewsProvider
	if cfg.News.Fallback && cfg.News.Provider != "GOOGLENEWS" {
		fallback = google
	}

	logger.Info(ctx, "News provider ready", "provider", primary.Name(), "fallback", fallback != nil)
	return news.NewService(primary, fallback)
}

// initializeAdvisor selects the recommendation strategy and wraps it with observability
func initializeAdvisor(ctx context.Context, cfg *store.Config) interfaces.Advisor {
	var advisor interfaces.Advisor
	s := cfg.Secrets
	strategy := cfg.LLM.Provider + "/" + cfg.LLM.Strategy

	switch {
	case cfg.LLM.Provider == "OPENAI" && cfg.LLM.Strategy == "ASSISTANT":
		advisor = assistant.New(assistant.Params{
			APIKey:      s.OpenAIKey,
			AssistantID: s.AssistantID,
			BaseURL:     cfg.LLM.BaseURL,
			Timeout:     cfg.LLM.Timeout,
			Poll: assistant.PollPolicy{
				Interval:      cfg.Assistant.PollInterval,
				MaxInterval:   cfg.Assistant.MaxPollInterval,
				Backoff:       cfg.Assistant.Backoff,
				MaxWait:       cfg.Assistant.MaxWait,
				MaxPollErrors: cfg.Assistant.MaxPollErrors,
			},
		})
	case cfg.LLM.Provider == "OPENAI":
		advisor = openai.New(openai.Params{
			APIKey:     s.OpenAIKey,
			Model:      cfg.LLM.Model,
			MaxTokens:  cfg.LLM.MaxTokens,
			MaxRetries: cfg.LLM.MaxRetries,
			BaseURL:    cfg.LLM.BaseURL,
			Timeout:    cfg.LLM.Timeout,
		})
	case cfg.LLM.Provider == "CLAUDE":
		advisor = claude.New(claude.Params{
			APIKey:     s.AnthropicKey,
			Model:      cfg.LLM.Model,
			MaxTokens:  cfg.LLM.MaxTokens,
			MaxRetries: cfg.LLM.MaxRetries,
			BaseURL:    cfg.LLM.BaseURL,
			Timeout:    cfg.LLM.Timeout,
		})
	default:
		advisor = noop.New()
		strategy = "NOOP"
		logger.Warn(ctx, "No LLM provider configured - using Noop advisor (always HOLD)")
	}

	logger.Info(ctx, "Advisor ready", "strategy", strategy, "model", cfg.LLM.Model)
	return llmobs.Wrap(advisor, strategy)
}

// initializeJournal returns nil when journaling is disabled
func initializeJournal(ctx context.Context, cfg *store.Config) *journal.Journal {
	if !cfg.Journal.Enabled {
		return nil
	}
	j := journal.New(cfg.Journal.Dir)
	if err := j.CompressOlder(cfg.Journal.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old journal files", "error", err)
	}
	logger.Info(ctx, "Journal enabled", "dir", cfg.Journal.Dir, "retention_days", cfg.Journal.RetentionDays)
	return j
}

// initializeEngine wires providers into the analysis workflow
func initializeEngine(ctx context.Context, cfg *store.Config, j *journal.Journal) interfaces.Engine {
	var jr interfaces.Journal
	if j != nil {
		jr = j
	}
	eng := engine.New(cfg,
		initializeMarket(ctx, cfg),
		initializeNews(ctx, cfg),
		initializeAdvisor(ctx, cfg),
		jr,
	)
	return engineobs.Wrap(eng)
}
