package types

import "time"

// Status drives the client's status indicator.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusBusy    Status = "busy"
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// User-facing messages.
const (
	MsgMissingTicker = "Please enter a ticker symbol."
	MsgRateLimited   = "Rate limit reached on the language-model API. Please try again shortly."
	MsgTimedOut      = "The analysis took too long and was cancelled."
	MsgComplete      = "Analysis complete!"
)

// ChartPoint is one row of the close/moving-average chart.
type ChartPoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
	MA7   Value     `json:"ma7"`
	MA30  Value     `json:"ma30"`
}

// Chart is the plotted series for one analysis.
type Chart struct {
	Points []ChartPoint `json:"points"`
}

// Analysis is everything one trigger produces. It is discarded after display.
type Analysis struct {
	ID             string          `json:"id"`
	Ticker         string          `json:"ticker"`
	Status         Status          `json:"status"`
	Message        string          `json:"message"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	Headlines      HeadlineSet     `json:"headlines"`
	Snapshot       *Snapshot       `json:"snapshot,omitempty"`
	Chart          *Chart          `json:"chart,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	DurationMs     int64           `json:"duration_ms"`
}
