package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"legacyshift/internal/llm"
	"legacyshift/internal/types"
	"legacyshift/internal/util/jsonutil"
)

// ErrNullResult is returned when the model answers with JSON null.
var ErrNullResult = errors.New("model returned a null result")

// Caller is the single operation every stage client exposes.
type Caller[Req, Resp any] interface {
	Call(ctx context.Context, req Req) (Resp, error)
}

// CallerFunc adapts a function to Caller.
type CallerFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

func (f CallerFunc[Req, Resp]) Call(ctx context.Context, req Req) (Resp, error) {
	return f(ctx, req)
}

// StageError reports a stage call that exhausted its retry budget.
type StageError struct {
	Stage    types.Stage
	Agent    string
	Attempts int
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage (%s) failed after %d attempts: %v", e.Stage, e.Agent, e.Attempts, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Stage is the resilient call wrapper around one request/response exchange
// with the transformation service. It holds no mutable state, so a single
// Stage serves concurrent calls.
type Stage[Req, Resp any] struct {
	agent        string
	stage        types.Stage
	family       types.Family
	instructions string
	llm          llm.LLMClient
	log          *zap.Logger
	sleep        Sleeper
	jitter       Jitter
	check        func(Req, *Resp) error
}

// Instructions returns the immutable instruction payload sent on every call.
func (s *Stage[Req, Resp]) Instructions() string { return s.instructions }

// Agent returns the client identity used in logs.
func (s *Stage[Req, Resp]) Agent() string { return s.agent }

// Call runs execute up to MaxAttempts times. Success short-circuits; when
// every attempt fails the last failure is returned inside a *StageError.
func (s *Stage[Req, Resp]) Call(ctx context.Context, req Req) (Resp, error) {
	var zero Resp
	log := s.log.With(
		zap.String("agent", s.agent),
		zap.String("stage", string(s.stage)),
		zap.String("family", string(s.family)),
		zap.String("input_type", fmt.Sprintf("%T", req)),
	)
	payload := payloadSize(req)

	var last error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		log.Info("stage call started",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", MaxAttempts),
			zap.Int("payload_bytes", payload),
		)
		resp, usage, reported, err := s.execute(ctx, req)
		if err == nil {
			fields := []zap.Field{zap.Int("attempt", attempt)}
			if reported {
				fields = append(fields,
					zap.Int("prompt_tokens", usage.PromptTokens),
					zap.Int("completion_tokens", usage.CompletionTokens),
					zap.Int("total_tokens", usage.TotalTokens),
				)
			}
			log.Info("stage call succeeded", fields...)
			return resp, nil
		}
		last = err
		log.Warn("stage call failed",
			zap.Int("attempt", attempt),
			zap.Int("status", llm.StatusOf(err)),
			zap.Error(err),
		)
		if attempt == MaxAttempts {
			break
		}
		delay := Backoff(attempt, s.jitter())
		log.Info("retrying stage call", zap.Int("attempt", attempt), zap.Duration("backoff", delay))
		if err := s.sleep(ctx, delay); err != nil {
			return zero, &StageError{Stage: s.stage, Agent: s.agent, Attempts: attempt, Err: err}
		}
	}
	log.Error("stage call exhausted retries", zap.Int("attempts", MaxAttempts), zap.Error(last))
	return zero, &StageError{Stage: s.stage, Agent: s.agent, Attempts: MaxAttempts, Err: last}
}

// execute is one exchange: send, reject empty or malformed answers, decode.
func (s *Stage[Req, Resp]) execute(ctx context.Context, req Req) (Resp, llm.Usage, bool, error) {
	var zero Resp
	callCtx, rec := llm.WithUsageRecorder(llm.WithStage(ctx, s.stage))
	raw, err := s.llm.GenerateJSON(callCtx, s.instructions, req)
	usage, reported := rec.Usage()
	if err != nil {
		return zero, usage, reported, err
	}
	body := jsonutil.StripCodeFence(bytes.TrimSpace(raw))
	if len(body) == 0 {
		return zero, usage, reported, llm.ErrEmptyResponse
	}
	var out *Resp
	if err := jsonutil.Unmarshal(body, &out); err != nil {
		return zero, usage, reported, fmt.Errorf("%w: %v", llm.ErrInvalidJSON, err)
	}
	if out == nil {
		return zero, usage, reported, ErrNullResult
	}
	if s.check != nil {
		if err := s.check(req, out); err != nil {
			return zero, usage, reported, err
		}
	}
	return *out, usage, reported, nil
}

func payloadSize(v any) int {
	b, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(b)
}
