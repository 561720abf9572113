package marketobs

import (
	"context"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// observableProvider wraps a SnapshotProvider with observability (logging & tracing)
type observableProvider struct {
	provider interfaces.SnapshotProvider
}

// Compile-time interface check
var _ interfaces.SnapshotProvider = (*observableProvider)(nil)

// Wrap wraps a snapshot provider with observability middleware
func Wrap(p interfaces.SnapshotProvider) interfaces.SnapshotProvider {
	return &observableProvider{provider: p}
}

func (op *observableProvider) Name() string { return op.provider.Name() }

// Snapshot fetches market data with observability
func (op *observableProvider) Snapshot(ctx context.Context, ticker, lookback string) (types.Snapshot, error) {
	ctx, span := trace.StartSpan(ctx, "market.Snapshot")
	defer span.End()

	start := time.Now()
	logger.DebugSkip(ctx, 1, "Fetching market snapshot",
		"provider", op.provider.Name(),
		"ticker", ticker,
		"lookback", lookback,
	)

	snap, err := op.provider.Snapshot(ctx, ticker, lookback)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch market snapshot", err,
			"provider", op.provider.Name(),
			"ticker", ticker,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return snap, err
	}

	logger.DebugSkip(ctx, 1, "Market snapshot fetched",
		"provider", op.provider.Name(),
		"ticker", ticker,
		"price", snap.Price.String(),
		"closes", len(snap.Closes),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return snap, nil
}
