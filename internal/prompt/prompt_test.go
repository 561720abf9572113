package prompt

import (
	"strings"
	"testing"
	"time"

	"stock-advisor/internal/types"
)

func fullSnapshot() types.Snapshot {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return types.Snapshot{
		Ticker:    "AAPL",
		Price:     types.Known(189.5),
		Volume:    types.Known(52_000_000),
		High52w:   types.Known(199.62),
		Low52w:    types.Known(164.08),
		MarketCap: types.Known(2.93e12),
		Closes: []types.PricePoint{
			{Time: day, Close: 187.1},
			{Time: day.AddDate(0, 0, 1), Close: 188.333},
			{Time: day.AddDate(0, 0, 2), Close: 189.5},
		},
	}
}

func headlineLines(p types.Prompt) int {
	n := 0
	for _, line := range strings.Split(p.String(), "\n") {
		if strings.HasPrefix(line, "- ") {
			n++
		}
	}
	return n
}

func TestComposeFullSnapshot(t *testing.T) {
	p := Compose("AAPL", fullSnapshot(), types.HeadlineSet{"Apple beats estimates"}).String()

	for _, want := range []string{
		"The stock AAPL is currently priced at $189.5.",
		"Trading volume: 52000000.",
		"52-week high: $199.62.",
		"Market cap: 2930000000000.",
		"3-day closing-price trend: [187.1, 188.33, 189.5]",
		"- Apple beats estimates",
		"BUY, SELL, or HOLD",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q\n%s", want, p)
		}
	}
	if strings.Contains(p, types.UnknownToken) {
		t.Errorf("did not expect unknown token in a complete prompt:\n%s", p)
	}
}

func TestComposeUnknownFields(t *testing.T) {
	snap := fullSnapshot()
	tests := []struct {
		name   string
		mutate func(*types.Snapshot)
		want   string
	}{
		{"price", func(s *types.Snapshot) { s.Price = types.Unknown() }, "currently priced at unknown."},
		{"volume", func(s *types.Snapshot) { s.Volume = types.Unknown() }, "Trading volume: unknown."},
		{"high", func(s *types.Snapshot) { s.High52w = types.Unknown() }, "52-week high: unknown."},
		{"low", func(s *types.Snapshot) { s.Low52w = types.Unknown() }, "52-week low: unknown."},
		{"market cap", func(s *types.Snapshot) { s.MarketCap = types.Unknown() }, "Market cap: unknown."},
		{"closes", func(s *types.Snapshot) { s.Closes = nil }, "closing-price trend: unknown."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := snap
			tt.mutate(&s)
			p := Compose("AAPL", s, nil).String()
			if !strings.Contains(p, tt.want) {
				t.Errorf("expected %q in\n%s", tt.want, p)
			}
		})
	}
}

func TestComposeEmptySnapshot(t *testing.T) {
	p := Compose("XYZ", types.EmptySnapshot("XYZ"), nil).String()
	if got := strings.Count(p, types.UnknownToken); got != 6 {
		t.Errorf("expected 6 unknown tokens, got %d\n%s", got, p)
	}
}

func TestComposeHeadlineCounts(t *testing.T) {
	all := types.HeadlineSet{"one", "two", "three"}
	for n := 0; n <= 3; n++ {
		p := Compose("AAPL", fullSnapshot(), all[:n])
		if got := headlineLines(p); got != n {
			t.Errorf("%d headlines: got %d headline lines", n, got)
		}
	}

	p := Compose("AAPL", fullSnapshot(), nil).String()
	if strings.Contains(p, "Recent headlines") {
		t.Errorf("expected no headline section without headlines:\n%s", p)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	h := types.HeadlineSet{"a", "b"}
	first := Compose("MSFT", fullSnapshot(), h)
	second := Compose("MSFT", fullSnapshot(), h)
	if first != second {
		t.Error("compose produced different output for identical inputs")
	}
}
