package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyResponse = errors.New("llm: empty response from model")
	ErrInvalidJSON   = errors.New("llm: invalid JSON from model")
)

// LLMClient sends one instruction payload plus a JSON-serialisable input to
// a model and returns the model's JSON answer verbatim.
type LLMClient interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}

// StatusError carries the HTTP status returned by the upstream service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("llm: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("llm: unexpected status %d: %s", e.Code, e.Body)
}

// StatusOf returns the upstream HTTP status wrapped in err, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
