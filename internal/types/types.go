package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// UnknownToken is how a missing numeric field is rendered to humans and to the model.
const UnknownToken = "unknown"

// Value is a number that a provider may not have. The zero value is unknown.
type Value struct {
	v  float64
	ok bool
}

// Known wraps a present number.
func Known(v float64) Value { return Value{v: v, ok: true} }

// Unknown returns the missing-value sentinel.
func Unknown() Value { return Value{} }

// KnownIf is Known(v) when ok, Unknown() otherwise.
func KnownIf(v float64, ok bool) Value {
	if !ok {
		return Unknown()
	}
	return Known(v)
}

func (v Value) Get() (float64, bool) { return v.v, v.ok }
func (v Value) IsKnown() bool        { return v.ok }

func (v Value) String() string {
	if !v.ok {
		return UnknownToken
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Unknown()
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Known(f)
	return nil
}

// PricePoint is one daily close.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// Snapshot is the point-in-time market data bundle for a ticker.
type Snapshot struct {
	Ticker    string       `json:"ticker"`
	Source    string       `json:"source,omitempty"`
	Price     Value        `json:"price"`
	Volume    Value        `json:"volume"`
	High52w   Value        `json:"high_52w"`
	Low52w    Value        `json:"low_52w"`
	MarketCap Value        `json:"market_cap"`
	Closes    []PricePoint `json:"closes"`
}

// EmptySnapshot is what callers fall back to when a provider has nothing.
func EmptySnapshot(ticker string) Snapshot {
	return Snapshot{Ticker: ticker}
}

// Recent returns a copy keeping only the last n closes. n <= 0 keeps all.
func (s Snapshot) Recent(n int) Snapshot {
	out := s
	closes := s.Closes
	if n > 0 && len(closes) > n {
		closes = closes[len(closes)-n:]
	}
	out.Closes = append([]PricePoint(nil), closes...)
	return out
}

// CloseValues returns just the close prices, oldest first.
func (s Snapshot) CloseValues() []float64 {
	out := make([]float64, len(s.Closes))
	for i, p := range s.Closes {
		out[i] = p.Close
	}
	return out
}

// HeadlineSet holds at most MaxHeadlines truncated headline strings.
type HeadlineSet []string

const (
	MaxHeadlines      = 3
	MaxHeadlineLength = 100
)

// NewsArticle is a single item returned by a news provider before it is cut down to a headline.
type NewsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Prompt is built once per analysis and never mutated.
type Prompt string

func (p Prompt) String() string { return string(p) }
