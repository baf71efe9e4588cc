package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"legacyshift/internal/util/jsonutil"
)

// OpenAIConfig configures an OpenAI-compatible chat completions backend.
// When AzureEndpoint is set the client targets an Azure OpenAI deployment
// named Model instead of BaseURL.
type OpenAIConfig struct {
	APIKey        string
	BaseURL       string
	AzureEndpoint string
	APIVersion    string
	Model         string
	Timeout       time.Duration
}

// OpenAIClient calls the Chat Completions API and asks for a JSON object.
type OpenAIClient struct {
	http     *http.Client
	apiKey   string
	model    string
	endpoint string
	azure    bool
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("openai: model is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	c := &OpenAIClient{
		http:   &http.Client{Timeout: timeout},
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
	if az := strings.TrimRight(strings.TrimSpace(cfg.AzureEndpoint), "/"); az != "" {
		version := cfg.APIVersion
		if version == "" {
			version = "2024-10-21"
		}
		c.azure = true
		c.endpoint = az + "/openai/deployments/" + url.PathEscape(cfg.Model) +
			"/chat/completions?api-version=" + url.QueryEscape(version)
		return c, nil
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	c.endpoint = base + "/chat/completions"
	return c, nil
}

func (c *OpenAIClient) Name() string {
	if c.azure {
		return "AzureOpenAI:" + c.model
	}
	return "OpenAI:" + c.model
}

func (c *OpenAIClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

type chatReq struct {
	Model          string            `json:"model,omitempty"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateJSON sends the prompt as the system message and the input JSON as
// the user message. Markup in source files is sent unescaped.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, err := jsonutil.MarshalNoEscape(input)
	if err != nil {
		return nil, err
	}
	body := chatReq{
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: string(in)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	if !c.azure {
		body.Model = c.model
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.azure {
		req.Header.Set("api-key", c.apiKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	var out chatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Usage != nil {
		RecordUsage(ctx, Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		})
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyResponse
	}
	return json.RawMessage(strings.TrimSpace(out.Choices[0].Message.Content)), nil
}
