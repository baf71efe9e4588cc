package llm

import (
	"context"
	"sync"
	"time"
)

// rpsLimiter hands out at most rps tokens per second. Up to burst unused
// tokens accumulate; a fresh limiter starts full.
type rpsLimiter struct {
	bucket chan struct{}
	done   chan struct{}
	once   sync.Once
}

// newRPSLimiter returns nil for rps <= 0. A nil *rpsLimiter never blocks.
func newRPSLimiter(rps float64, burst int) *rpsLimiter {
	if rps <= 0 {
		return nil
	}
	burst = max(burst, 1)
	l := &rpsLimiter{
		bucket: make(chan struct{}, burst),
		done:   make(chan struct{}),
	}
	for range burst {
		l.bucket <- struct{}{}
	}
	interval := max(time.Duration(float64(time.Second)/rps), time.Millisecond)
	go l.refill(interval)
	return l
}

// refill adds one token per interval until Stop; a token that finds the
// bucket full is discarded.
func (l *rpsLimiter) refill(interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-tick.C:
		}
		select {
		case l.bucket <- struct{}{}:
		default:
		}
	}
}

// Acquire takes one token, waiting for the next refill if needed. It fails
// with ctx's error, or context.Canceled once the limiter is stopped.
func (l *rpsLimiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	select {
	case <-l.bucket:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return context.Canceled
	}
}

func (l *rpsLimiter) Stop() {
	if l == nil {
		return
	}
	l.once.Do(func() { close(l.done) })
}
