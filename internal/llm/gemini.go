package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	genai "google.golang.org/genai"

	"legacyshift/internal/util/jsonutil"
)

// GeminiClient is a thin wrapper around the official genai client. The
// instruction payload is sent as the system instruction and the serialised
// input as the single user turn.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// GenerateJSON requests application/json output and returns the first
// candidate's text.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, err := jsonutil.MarshalNoEscape(input)
	if err != nil {
		return nil, err
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: string(in)}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: prompt}}},
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Code: apiErr.Code, Body: apiErr.Message}
		}
		return nil, err
	}
	if u := resp.UsageMetadata; u != nil {
		RecordUsage(ctx, Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		})
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	txt := strings.TrimSpace(sb.String())
	if txt == "" {
		return nil, ErrEmptyResponse
	}
	return json.RawMessage(txt), nil
}
