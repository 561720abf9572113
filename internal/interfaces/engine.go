package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

type Engine interface {
	Analyze(ctx context.Context, ticker string) (*types.Analysis, error)
}
