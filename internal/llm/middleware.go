package llm

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Middleware decorates an LLMClient with a cross-cutting concern such as
// rate limiting, timeouts or logging.
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit gives one client its own token bucket, stopped by Close. It is
// used for per-tier limits on top of the shared bucket. rps <= 0 disables it.
func RateLimit(rps float64, burst int) Middleware {
	return func(next LLMClient) LLMClient {
		rl := newRPSLimiter(rps, burst) // nil when disabled
		if rl == nil {
			return next
		}
		return &rateLimited{next: next, rl: rl, owned: true}
	}
}

// SharedLimiter is one token bucket applied to several clients, so the
// combined request rate of all of them stays under rps.
type SharedLimiter struct {
	rl *rpsLimiter
}

func SharedRateLimit(rps float64, burst int) *SharedLimiter {
	return &SharedLimiter{rl: newRPSLimiter(rps, burst)}
}

// Middleware wraps a client with the shared bucket. Closing the client does
// not stop the bucket; call Stop once every client is done.
func (s *SharedLimiter) Middleware() Middleware {
	return func(next LLMClient) LLMClient {
		if s.rl == nil {
			return next
		}
		return &rateLimited{next: next, rl: s.rl}
	}
}

func (s *SharedLimiter) Stop() { s.rl.Stop() }

type rateLimited struct {
	next  LLMClient
	rl    *rpsLimiter
	owned bool
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error {
	if c.owned {
		c.rl.Stop()
	}
	return c.next.Close()
}
func (c *rateLimited) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return nil, err
	}
	return c.next.GenerateJSON(ctx, prompt, input)
}

// -------- Timeout --------

// WithTimeout bounds each backend exchange to d, whatever the provider.
// d <= 0 disables the middleware.
func WithTimeout(d time.Duration) Middleware {
	return func(next LLMClient) LLMClient {
		if d <= 0 {
			return next
		}
		return &timeoutClient{next: next, d: d}
	}
}

type timeoutClient struct {
	next LLMClient
	d    time.Duration
}

func (c *timeoutClient) Name() string { return c.next.Name() }
func (c *timeoutClient) Close() error { return c.next.Close() }
func (c *timeoutClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.d)
	defer cancel()
	return c.next.GenerateJSON(ctx, prompt, input)
}

// -------- Logging --------

// WithLogging logs request size and errors at debug/warn level.
// A nil logger disables the middleware.
func WithLogging(logger *zap.Logger) Middleware {
	return func(next LLMClient) LLMClient {
		if logger == nil {
			return next
		}
		return &logging{next: next, log: logger.Named("llm")}
	}
}

type logging struct {
	next LLMClient
	log  *zap.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.Marshal(input)
	l.log.Debug("llm request",
		zap.String("client", l.next.Name()),
		zap.String("stage", string(StageFrom(ctx))),
		zap.Int("bytes", len(prompt)+len(in)),
	)
	raw, err := l.next.GenerateJSON(ctx, prompt, input)
	if err != nil {
		l.log.Warn("llm error",
			zap.String("client", l.next.Name()),
			zap.String("stage", string(StageFrom(ctx))),
			zap.Int("status", StatusOf(err)),
			zap.Error(err),
		)
	}
	return raw, err
}
