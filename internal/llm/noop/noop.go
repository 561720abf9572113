package noop

import (
	"context"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

const Text = "HOLD. No language model is configured, so no analysis was performed."

// Advisor is the offline strategy used when no language model is configured
type Advisor struct{}

var _ interfaces.Advisor = (*Advisor)(nil)

// New returns an advisor that always recommends HOLD
func New() *Advisor {
	return &Advisor{}
}

func (a *Advisor) Recommend(ctx context.Context, prompt types.Prompt) (types.Recommendation, error) {
	logger.Debug(ctx, "Noop advisor called - always returns HOLD", "prompt_len", len(prompt))
	return types.Recommendation{
		Text:   Text,
		Action: "HOLD",
		Model:  "noop",
		Status: types.JobCompleted,
	}, nil
}
