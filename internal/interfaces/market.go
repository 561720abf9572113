package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

// SnapshotProvider returns market data for a ticker over a lookback window such as "7d" or "1mo".
// Fields the upstream lacks come back as types.Unknown().
type SnapshotProvider interface {
	Snapshot(ctx context.Context, ticker, lookback string) (types.Snapshot, error)
	Name() string
}
