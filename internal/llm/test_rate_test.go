package llm

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fast fake client that returns immediately
type fastClient struct{ closed bool }

func (f *fastClient) Name() string { return "fast" }
func (f *fastClient) Close() error { f.closed = true; return nil }
func (f *fastClient) GenerateJSON(context.Context, string, any) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

// spy records timestamps when requests reach the inner client
type spy struct {
	mu    sync.Mutex
	times []time.Time
}

type spyingClient struct {
	next LLMClient
	rec  *spy
}

func (s *spyingClient) Name() string { return s.next.Name() }
func (s *spyingClient) Close() error { return s.next.Close() }
func (s *spyingClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	s.rec.mu.Lock()
	s.rec.times = append(s.rec.times, time.Now())
	s.rec.mu.Unlock()
	return s.next.GenerateJSON(ctx, prompt, input)
}

func TestRate_RPS_2PerSecond_Burst1_Spacing(t *testing.T) {
	rec := &spy{}
	cli := Wrap(&spyingClient{next: &fastClient{}, rec: rec}, RateLimit(2, 1))
	t.Cleanup(func() { _ = cli.Close() })

	ctx := context.Background()
	start := time.Now()
	_, err := cli.GenerateJSON(ctx, "p", map[string]any{})
	require.NoError(t, err)
	_, err = cli.GenerateJSON(ctx, "p", map[string]any{})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 450*time.Millisecond)
	assert.Len(t, rec.times, 2)
}

func TestRate_Disabled_ReturnsInner(t *testing.T) {
	base := &fastClient{}
	assert.Same(t, LLMClient(base), RateLimit(0, 5)(base))
}

func TestRate_CancelledContext(t *testing.T) {
	cli := RateLimit(0.5, 1)(&fastClient{})
	t.Cleanup(func() { _ = cli.Close() })

	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = cli.GenerateJSON(ctx, "p", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSharedRateLimit_SpansClients(t *testing.T) {
	limit := SharedRateLimit(2, 1)
	t.Cleanup(limit.Stop)
	a := &fastClient{}
	b := &fastClient{}
	ca := Wrap(a, limit.Middleware())
	cb := Wrap(b, limit.Middleware())

	start := time.Now()
	_, err := ca.GenerateJSON(context.Background(), "p", nil)
	require.NoError(t, err)
	_, err = cb.GenerateJSON(context.Background(), "p", nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 450*time.Millisecond)

	// Closing one client leaves the shared bucket running for the other.
	require.NoError(t, ca.Close())
	assert.True(t, a.closed)
	_, err = cb.GenerateJSON(context.Background(), "p", nil)
	assert.NoError(t, err)
}

func TestRate_CloseStopsOwnedBucket(t *testing.T) {
	base := &fastClient{}
	cli := RateLimit(0.1, 1)(base)

	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	require.NoError(t, err)
	require.NoError(t, cli.Close())
	assert.True(t, base.closed)

	// Bucket is empty and will never refill: only the stop signal can answer.
	_, err = cli.GenerateJSON(context.Background(), "p", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRate_PerClientOnTopOfShared(t *testing.T) {
	shared := SharedRateLimit(100, 10)
	t.Cleanup(shared.Stop)
	slow := Wrap(&fastClient{}, shared.Middleware(), RateLimit(2, 1))
	fast := Wrap(&fastClient{}, shared.Middleware())
	t.Cleanup(func() { _ = slow.Close() })

	start := time.Now()
	for range 3 {
		_, err := fast.GenerateJSON(context.Background(), "p", nil)
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 400*time.Millisecond)

	start = time.Now()
	for range 2 {
		_, err := slow.GenerateJSON(context.Background(), "p", nil)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 450*time.Millisecond)
}
