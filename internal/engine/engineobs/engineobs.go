package engineobs

import (
	"context"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Analyze(ctx context.Context, ticker string) (*types.Analysis, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Analyze")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting analysis",
		"ticker", ticker,
	)

	a, err := oe.engine.Analyze(ctx, ticker)
	if err != nil {
		trace.RecordError(ctx, err)
		logger.ErrorWithErrSkip(ctx, 1, "Analysis failed", err,
			"ticker", ticker,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return a, err
	}

	logger.InfoSkip(ctx, 1, "Analysis finished",
		"analysis_id", a.ID,
		"ticker", a.Ticker,
		"status", string(a.Status),
		"message", a.Message,
		"headlines", len(a.Headlines),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return a, nil
}
