package store

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stock-advisor/internal/types"
)

// Secrets are the credentials the configured providers need. They come from the
// environment only, under fixed names.
type Secrets struct {
	OpenAIKey       string
	AnthropicKey    string
	NewsAPIKey      string
	AssistantID     string
	FinnhubKey      string
	AlpacaKey       string
	AlpacaSecret    string
	KiteAPIKey      string
	KiteAccessToken string
}

// LoadSecrets reads credentials from the process environment.
func LoadSecrets() Secrets {
	return Secrets{
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		NewsAPIKey:      os.Getenv("NEWS_API_KEY"),
		AssistantID:     os.Getenv("OPENAI_ASSISTANT_ID"),
		FinnhubKey:      os.Getenv("FINNHUB_API_KEY"),
		AlpacaKey:       os.Getenv("APCA_API_KEY_ID"),
		AlpacaSecret:    os.Getenv("APCA_API_SECRET_KEY"),
		KiteAPIKey:      os.Getenv("KITE_API_KEY"),
		KiteAccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
	}
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type Config struct {
	LLM struct {
		Provider   string        `yaml:"provider"` // OPENAI, CLAUDE, NOOP
		Strategy   string        `yaml:"strategy"` // COMPLETION, ASSISTANT
		Model      string        `yaml:"model"`
		MaxTokens  int           `yaml:"max_tokens"`
		MaxRetries int           `yaml:"max_retries"`
		BaseURL    string        `yaml:"base_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"llm"`
	Assistant struct {
		PollInterval    time.Duration `yaml:"poll_interval"`
		MaxPollInterval time.Duration `yaml:"max_poll_interval"`
		Backoff         float64       `yaml:"backoff"`
		MaxWait         time.Duration `yaml:"max_wait"`
		MaxPollErrors   int           `yaml:"max_poll_errors"`
	} `yaml:"assistant"`
	Market struct {
		Provider string `yaml:"provider"` // YAHOO, FINNHUB, ALPACA, KITE
		Lookback string `yaml:"lookback"`
		Exchange string `yaml:"exchange"` // used by KITE
		Feed     string `yaml:"feed"`     // used by ALPACA
	} `yaml:"market"`
	News struct {
		Provider       string        `yaml:"provider"` // NEWSAPI, FINNHUB, GOOGLENEWS
		Fallback       bool          `yaml:"fallback"`
		Language       string        `yaml:"language"`
		Region         string        `yaml:"region"`
		LookbackDays   int           `yaml:"lookback_days"`
		ScraperTimeout time.Duration `yaml:"scraper_timeout"`
	} `yaml:"news"`
	Prompt struct {
		TrendDays int `yaml:"trend_days"`
	} `yaml:"prompt"`
	Server ServerConfig `yaml:"server"`
	Journal struct {
		Enabled       bool   `yaml:"enabled"`
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"journal"`
	Watch struct {
		Cron    string   `yaml:"cron"`
		Tickers []string `yaml:"tickers"`
	} `yaml:"watch"`

	Secrets Secrets `yaml:"-"`
}

// Validate checks enumerations and that every credential the selected providers need is present.
func (c *Config) Validate() error {
	if err := c.validateSettings(); err != nil {
		return err
	}
	return c.validateSecrets()
}

func (c *Config) validateSettings() error {
	switch c.LLM.Provider {
	case "OPENAI", "CLAUDE", "NOOP":
	default:
		return fmt.Errorf("invalid llm.provider '%s': must be 'OPENAI', 'CLAUDE' or 'NOOP'", c.LLM.Provider)
	}
	switch c.LLM.Strategy {
	case "COMPLETION":
	case "ASSISTANT":
		if c.LLM.Provider != "OPENAI" {
			return fmt.Errorf("llm.strategy 'ASSISTANT' requires llm.provider 'OPENAI', got '%s'", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("invalid llm.strategy '%s': must be 'COMPLETION' or 'ASSISTANT'", c.LLM.Strategy)
	}
	switch c.Market.Provider {
	case "YAHOO", "FINNHUB", "ALPACA", "KITE":
	default:
		return fmt.Errorf("invalid market.provider '%s'", c.Market.Provider)
	}
	switch c.News.Provider {
	case "NEWSAPI", "FINNHUB", "GOOGLENEWS":
	default:
		return fmt.Errorf("invalid news.provider '%s'", c.News.Provider)
	}
	if _, err := LookbackDays(c.Market.Lookback); err != nil {
		return fmt.Errorf("market.lookback: %w", err)
	}
	if c.Assistant.PollInterval <= 0 {
		return fmt.Errorf("assistant.poll_interval must be positive, got %s", c.Assistant.PollInterval)
	}
	if c.Assistant.Backoff < 1 {
		return fmt.Errorf("assistant.backoff must be >= 1, got %.2f", c.Assistant.Backoff)
	}
	if c.Assistant.MaxWait < c.Assistant.PollInterval {
		return fmt.Errorf("assistant.max_wait (%s) must be >= poll_interval (%s)", c.Assistant.MaxWait, c.Assistant.PollInterval)
	}
	return nil
}

func (c *Config) validateSecrets() error {
	var missing []string
	need := func(ok bool, name string) {
		if !ok {
			missing = append(missing, name)
		}
	}
	s := c.Secrets
	switch c.LLM.Provider {
	case "OPENAI":
		need(s.OpenAIKey != "", "OPENAI_API_KEY")
		if c.LLM.Strategy == "ASSISTANT" {
			need(s.AssistantID != "", "OPENAI_ASSISTANT_ID")
		}
	case "CLAUDE":
		need(s.AnthropicKey != "", "ANTHROPIC_API_KEY")
	}
	switch c.News.Provider {
	case "NEWSAPI":
		need(s.NewsAPIKey != "", "NEWS_API_KEY")
	case "FINNHUB":
		need(s.FinnhubKey != "", "FINNHUB_API_KEY")
	}
	switch c.Market.Provider {
	case "FINNHUB":
		if c.News.Provider != "FINNHUB" {
			need(s.FinnhubKey != "", "FINNHUB_API_KEY")
		}
	case "ALPACA":
		need(s.AlpacaKey != "", "APCA_API_KEY_ID")
		need(s.AlpacaSecret != "", "APCA_API_SECRET_KEY")
	case "KITE":
		need(s.KiteAPIKey != "", "KITE_API_KEY")
		need(s.KiteAccessToken != "", "KITE_ACCESS_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", types.ErrMissingSecret, strings.Join(missing, ", "))
	}
	return nil
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "OPENAI"
	}
	if c.LLM.Strategy == "" {
		c.LLM.Strategy = "ASSISTANT"
		if c.LLM.Provider != "OPENAI" {
			c.LLM.Strategy = "COMPLETION"
		}
	}
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case "CLAUDE":
			c.LLM.Model = "claude-3-5-haiku-latest"
		default:
			c.LLM.Model = "gpt-4"
		}
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 60 * time.Second
	}
	if c.Assistant.PollInterval == 0 {
		c.Assistant.PollInterval = time.Second
	}
	if c.Assistant.MaxPollInterval == 0 {
		c.Assistant.MaxPollInterval = 5 * time.Second
	}
	if c.Assistant.Backoff == 0 {
		c.Assistant.Backoff = 1.0
	}
	if c.Assistant.MaxWait == 0 {
		c.Assistant.MaxWait = 2 * time.Minute
	}
	if c.Assistant.MaxPollErrors == 0 {
		c.Assistant.MaxPollErrors = 3
	}
	if c.Market.Provider == "" {
		c.Market.Provider = "YAHOO"
	}
	if c.Market.Lookback == "" {
		c.Market.Lookback = "3mo"
	}
	if c.Market.Exchange == "" {
		c.Market.Exchange = "NSE"
	}
	if c.Market.Feed == "" {
		c.Market.Feed = "iex"
	}
	if c.News.Provider == "" {
		c.News.Provider = "NEWSAPI"
	}
	if c.News.Language == "" {
		c.News.Language = "en"
	}
	if c.News.Region == "" {
		c.News.Region = "US"
	}
	if c.News.LookbackDays == 0 {
		c.News.LookbackDays = 7
	}
	if c.News.ScraperTimeout == 0 {
		c.News.ScraperTimeout = 15 * time.Second
	}
	if c.Prompt.TrendDays == 0 {
		c.Prompt.TrendDays = 7
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 3 * time.Minute
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "logs/analyses"
	}
	if c.Watch.Cron == "" {
		c.Watch.Cron = "0 30 16 * * 1-5"
	}
}

// applyEnvOverrides lets deployments tweak the yaml without editing it.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ADVISOR_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToUpper(v)
	}
	if v := os.Getenv("ADVISOR_LLM_STRATEGY"); v != "" {
		c.LLM.Strategy = strings.ToUpper(v)
	}
	if v := os.Getenv("ADVISOR_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("ADVISOR_MARKET_PROVIDER"); v != "" {
		c.Market.Provider = strings.ToUpper(v)
	}
	if v := os.Getenv("ADVISOR_NEWS_PROVIDER"); v != "" {
		c.News.Provider = strings.ToUpper(v)
	}
	if v := os.Getenv("ADVISOR_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ADVISOR_MAX_WAIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Assistant.MaxWait = d
		}
	}
	if v := os.Getenv("ADVISOR_JOURNAL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Journal.Enabled = b
		}
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, v)
	}
}

// LoadSettings reads the yaml file (a missing file means all defaults), applies env
// overrides and defaults and validates everything except credentials. Secrets stay empty.
func LoadSettings(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	c.applyEnvOverrides()
	c.ApplyDefaults()

	if err := c.validateSettings(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// LoadConfig is LoadSettings plus the credentials the selected providers need.
func LoadConfig(path string) (*Config, error) {
	c, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	c.Secrets = LoadSecrets()
	if err := c.validateSecrets(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// LookbackDays converts a window like "7d", "1mo", "3mo", "1y" into calendar days.
func LookbackDays(window string) (int, error) {
	w := strings.ToLower(strings.TrimSpace(window))
	unit := 0
	var num string
	switch {
	case strings.HasSuffix(w, "mo"):
		unit, num = 30, strings.TrimSuffix(w, "mo")
	case strings.HasSuffix(w, "d"):
		unit, num = 1, strings.TrimSuffix(w, "d")
	case strings.HasSuffix(w, "y"):
		unit, num = 365, strings.TrimSuffix(w, "y")
	default:
		return 0, fmt.Errorf("unsupported lookback window '%s'", window)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unsupported lookback window '%s'", window)
	}
	return n * unit, nil
}
