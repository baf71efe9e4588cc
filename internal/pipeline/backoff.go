package pipeline

import (
	"context"
	"math/rand/v2"
	"time"
)

// MaxAttempts is the retry budget of every stage call.
const MaxAttempts = 4

const maxJitter = time.Second

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Jitter returns a random delay in [0, 1s). Implementations must be safe for
// concurrent use.
type Jitter func() time.Duration

// Backoff is the delay between failed attempt n (1-based) and attempt n+1:
// 2^(n-1) seconds plus jitter.
func Backoff(attempt int, jitter time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(1<<(attempt-1))*time.Second + jitter
}

// RandomJitter draws whole milliseconds uniformly from [0, 1000). The
// top-level math/rand/v2 source is goroutine-safe.
func RandomJitter() time.Duration {
	return time.Duration(rand.Int64N(int64(maxJitter/time.Millisecond))) * time.Millisecond
}

// SleepContext is the production Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
