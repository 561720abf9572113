package llmobs

import (
	"context"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// observableAdvisor wraps an Advisor with observability (logging & tracing)
type observableAdvisor struct {
	advisor  interfaces.Advisor
	strategy string
}

// Compile-time interface check
var _ interfaces.Advisor = (*observableAdvisor)(nil)

// Wrap wraps an advisor with observability middleware. strategy labels the logs.
func Wrap(advisor interfaces.Advisor, strategy string) interfaces.Advisor {
	return &observableAdvisor{
		advisor:  advisor,
		strategy: strategy,
	}
}

// Recommend runs the underlying strategy with observability
func (oa *observableAdvisor) Recommend(ctx context.Context, prompt types.Prompt) (types.Recommendation, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Recommend")
	defer span.End()

	start := time.Now()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting recommendation",
		"strategy", oa.strategy,
		"prompt_len", len(prompt),
	)

	rec, err := oa.advisor.Recommend(ctx, prompt)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get recommendation", err,
			"strategy", oa.strategy,
			"job_id", rec.JobID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return rec, err
	}

	logger.InfoSkip(ctx, 1, "Recommendation received",
		"strategy", oa.strategy,
		"model", rec.Model,
		"job_id", rec.JobID,
		"status", string(rec.Status),
		"action", rec.Action,
		"failed", rec.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return rec, nil
}
