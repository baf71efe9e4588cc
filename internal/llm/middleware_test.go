package llm

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"legacyshift/internal/types"
)

type failingClient struct{}

func (failingClient) Name() string { return "failing" }
func (failingClient) Close() error { return nil }
func (failingClient) GenerateJSON(context.Context, string, any) (json.RawMessage, error) {
	return nil, &StatusError{Code: 429, Body: "slow down"}
}

func TestWrap_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next LLMClient) LLMClient {
			order = append(order, name)
			return next
		}
	}
	Wrap(&fastClient{}, mw("A"), mw("B"))
	// Applied inside-out so that A ends up outermost.
	assert.Equal(t, []string{"B", "A"}, order)
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cli := Wrap(failingClient{}, WithLogging(zap.New(core)))

	ctx := WithStage(context.Background(), types.StageTransform)
	_, err := cli.GenerateJSON(ctx, "prompt", map[string]string{"a": "b"})
	require.Error(t, err)
	assert.Equal(t, 429, StatusOf(err))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "llm request", entries[0].Message)
	assert.Equal(t, "transform", entries[0].ContextMap()["stage"])
	assert.Equal(t, "llm error", entries[1].Message)
	assert.Equal(t, int64(429), entries[1].ContextMap()["status"])
}

func TestWithLogging_NilLoggerIsPassthrough(t *testing.T) {
	base := &fastClient{}
	assert.Same(t, LLMClient(base), WithLogging(nil)(base))
}

func TestUsageRecorder(t *testing.T) {
	ctx, rec := WithUsageRecorder(context.Background())
	_, ok := rec.Usage()
	assert.False(t, ok)

	RecordUsage(ctx, Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7})
	u, ok := rec.Usage()
	require.True(t, ok)
	assert.Equal(t, 7, u.TotalTokens)

	// No recorder on the context: silently ignored.
	RecordUsage(context.Background(), Usage{TotalTokens: 1})
	assert.Equal(t, types.Stage("unknown"), StageFrom(context.Background()))
}

// blockingClient answers only when ctx ends.
type blockingClient struct{ deadline bool }

func (*blockingClient) Name() string { return "blocking" }
func (*blockingClient) Close() error { return nil }
func (b *blockingClient) GenerateJSON(ctx context.Context, _ string, _ any) (json.RawMessage, error) {
	_, b.deadline = ctx.Deadline()
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	inner := &blockingClient{}
	cli := Wrap(inner, WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, inner.deadline)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "blocking", cli.Name())
}

func TestWithTimeout_DisabledIsPassthrough(t *testing.T) {
	base := &fastClient{}
	assert.Same(t, LLMClient(base), WithTimeout(0)(base))
}
