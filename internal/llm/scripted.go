package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// Responder produces one scripted answer. attempt is 1-based and counts the
// calls already made for the same stage.
type Responder func(ctx context.Context, prompt string, input any, attempt int) (json.RawMessage, error)

// ScriptedClient dispatches calls to a Responder per stage and records every
// call. It is safe for concurrent use.
type ScriptedClient struct {
	mu       sync.Mutex
	handlers map[string]Responder
	calls    map[string]int
	prompts  []string
}

func NewScriptedClient() *ScriptedClient {
	return &ScriptedClient{handlers: map[string]Responder{}, calls: map[string]int{}}
}

// On registers the responder for a stage name.
func (s *ScriptedClient) On(stage string, r Responder) *ScriptedClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[stage] = r
	return s
}

// Calls returns how many times the stage has been called.
func (s *ScriptedClient) Calls(stage string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[stage]
}

// Prompts returns the instruction payloads received, in call order.
func (s *ScriptedClient) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

func (s *ScriptedClient) Name() string { return "ScriptedLLM" }
func (s *ScriptedClient) Close() error { return nil }

func (s *ScriptedClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	stage := string(StageFrom(ctx))
	s.mu.Lock()
	s.calls[stage]++
	attempt := s.calls[stage]
	s.prompts = append(s.prompts, prompt)
	h := s.handlers[stage]
	s.mu.Unlock()
	if h == nil {
		return nil, ErrEmptyResponse
	}
	return h(ctx, prompt, input, attempt)
}
