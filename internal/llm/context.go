package llm

import (
	"context"

	"legacyshift/internal/types"
)

type ctxKeyStage struct{}
type ctxKeyUsage struct{}

// WithStage tags ctx with the stage issuing the call. Middlewares and the
// fake client read it back with StageFrom.
func WithStage(ctx context.Context, stage types.Stage) context.Context {
	return context.WithValue(ctx, ctxKeyStage{}, stage)
}

// StageFrom returns the stage stored in ctx, or "unknown".
func StageFrom(ctx context.Context) types.Stage {
	if v, ok := ctx.Value(ctxKeyStage{}).(types.Stage); ok {
		return v
	}
	return "unknown"
}

// Usage is the token accounting reported by a backend for one call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// UsageRecorder receives the usage of the call made with its context.
// A recorder belongs to a single attempt and is not shared.
type UsageRecorder struct {
	usage    Usage
	reported bool
}

// Usage returns the recorded usage and whether a backend reported any.
func (r *UsageRecorder) Usage() (Usage, bool) {
	if r == nil {
		return Usage{}, false
	}
	return r.usage, r.reported
}

// WithUsageRecorder attaches a fresh recorder to ctx.
func WithUsageRecorder(ctx context.Context) (context.Context, *UsageRecorder) {
	rec := &UsageRecorder{}
	return context.WithValue(ctx, ctxKeyUsage{}, rec), rec
}

// RecordUsage stores u on the recorder carried by ctx, if any.
func RecordUsage(ctx context.Context, u Usage) {
	if rec, ok := ctx.Value(ctxKeyUsage{}).(*UsageRecorder); ok && rec != nil {
		rec.usage = u
		rec.reported = true
	}
}
