package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stock-advisor/internal/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func setSecrets(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("NEWS_API_KEY", "news-test")
	t.Setenv("OPENAI_ASSISTANT_ID", "asst_test")
}

func TestLoadConfigDefaults(t *testing.T) {
	setSecrets(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.Provider != "OPENAI" || cfg.LLM.Strategy != "ASSISTANT" {
		t.Errorf("expected OPENAI/ASSISTANT, got %s/%s", cfg.LLM.Provider, cfg.LLM.Strategy)
	}
	if cfg.Assistant.PollInterval != time.Second {
		t.Errorf("expected 1s poll interval, got %s", cfg.Assistant.PollInterval)
	}
	if cfg.Assistant.MaxWait != 2*time.Minute {
		t.Errorf("expected 2m max wait, got %s", cfg.Assistant.MaxWait)
	}
	if cfg.Market.Provider != "YAHOO" || cfg.News.Provider != "NEWSAPI" {
		t.Errorf("unexpected providers %s/%s", cfg.Market.Provider, cfg.News.Provider)
	}
	if cfg.Prompt.TrendDays != 7 {
		t.Errorf("expected trend_days 7, got %d", cfg.Prompt.TrendDays)
	}
	if cfg.Secrets.AssistantID != "asst_test" {
		t.Errorf("expected assistant id from env, got %q", cfg.Secrets.AssistantID)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	setSecrets(t)
	p := writeConfig(t, `
llm:
  provider: OPENAI
  strategy: COMPLETION
  model: gpt-4o-mini
assistant:
  poll_interval: 500ms
  max_wait: 30s
  backoff: 1.5
market:
  provider: YAHOO
  lookback: 1mo
watch:
  tickers: [AAPL, MSFT]
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Strategy != "COMPLETION" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("yaml llm section not applied: %+v", cfg.LLM)
	}
	if cfg.Assistant.PollInterval != 500*time.Millisecond || cfg.Assistant.MaxWait != 30*time.Second {
		t.Errorf("durations not parsed: %s %s", cfg.Assistant.PollInterval, cfg.Assistant.MaxWait)
	}
	if cfg.Assistant.Backoff != 1.5 {
		t.Errorf("expected backoff 1.5, got %f", cfg.Assistant.Backoff)
	}
	if len(cfg.Watch.Tickers) != 2 {
		t.Errorf("expected 2 watch tickers, got %d", len(cfg.Watch.Tickers))
	}
}

func TestLoadConfigMissingSecretsIsFatal(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("NEWS_API_KEY", "")
	t.Setenv("OPENAI_ASSISTANT_ID", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error when secrets are missing")
	}
	if !errors.Is(err, types.ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret, got %v", err)
	}
}

func TestLoadSettingsNeedsNoSecrets(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("NEWS_API_KEY", "")
	t.Setenv("OPENAI_ASSISTANT_ID", "")
	p := writeConfig(t, `
journal:
  enabled: true
  dir: /tmp/analyses
`)

	cfg, err := LoadSettings(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Dir != "/tmp/analyses" {
		t.Errorf("journal section not applied: %+v", cfg.Journal)
	}
	if cfg.Secrets != (Secrets{}) {
		t.Errorf("expected no secrets to be loaded, got %+v", cfg.Secrets)
	}

	if _, err := LoadSettings(writeConfig(t, "market:\n  provider: BLOOMBERG\n")); err == nil {
		t.Error("expected invalid settings to still be rejected")
	}
}

func TestValidateAssistantNeedsOpenAI(t *testing.T) {
	cfg := &Config{}
	cfg.LLM.Provider = "CLAUDE"
	cfg.LLM.Strategy = "ASSISTANT"
	cfg.ApplyDefaults()
	cfg.Secrets = Secrets{AnthropicKey: "k", NewsAPIKey: "n"}

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for ASSISTANT strategy with CLAUDE provider")
	}
}

func TestValidateNoopNeedsNoLLMKey(t *testing.T) {
	cfg := &Config{}
	cfg.LLM.Provider = "NOOP"
	cfg.News.Provider = "GOOGLENEWS"
	cfg.ApplyDefaults()

	if cfg.LLM.Strategy != "COMPLETION" {
		t.Errorf("expected COMPLETION default for NOOP, got %s", cfg.LLM.Strategy)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	setSecrets(t)
	t.Setenv("ADVISOR_LLM_STRATEGY", "completion")
	t.Setenv("ADVISOR_MAX_WAIT", "45s")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Strategy != "COMPLETION" {
		t.Errorf("expected env strategy override, got %s", cfg.LLM.Strategy)
	}
	if cfg.Assistant.MaxWait != 45*time.Second {
		t.Errorf("expected 45s max wait, got %s", cfg.Assistant.MaxWait)
	}
}

func TestLookbackDays(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"7d", 7, false},
		{"1mo", 30, false},
		{"3mo", 90, false},
		{"1y", 365, false},
		{"", 0, true},
		{"0d", 0, true},
		{"weekly", 0, true},
	}
	for _, tt := range tests {
		got, err := LookbackDays(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("LookbackDays(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("LookbackDays(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
