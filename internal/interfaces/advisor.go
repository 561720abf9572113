package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

// Advisor sends a composed prompt to a language model and returns its recommendation.
// Implementations differ only in how the model is invoked (one-shot completion or threaded run).
type Advisor interface {
	Recommend(ctx context.Context, prompt types.Prompt) (types.Recommendation, error)
}
