package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderFake   = "fake"
)

// Config selects and configures a backend.
type Config struct {
	Provider      string
	APIKey        string
	BaseURL       string
	AzureEndpoint string
	APIVersion    string
	Timeout       time.Duration
}

// New builds a raw client for model. Callers add middlewares with Wrap.
func New(ctx context.Context, cfg Config, model string) (LLMClient, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, cfg.APIKey, model)
	case ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   model,
			Timeout: cfg.Timeout,
		})
	case ProviderAzure:
		if strings.TrimSpace(cfg.AzureEndpoint) == "" {
			return nil, fmt.Errorf("azure provider requires an endpoint")
		}
		return NewOpenAIClient(OpenAIConfig{
			APIKey:        cfg.APIKey,
			AzureEndpoint: cfg.AzureEndpoint,
			APIVersion:    cfg.APIVersion,
			Model:         model,
			Timeout:       cfg.Timeout,
		})
	case ProviderFake:
		return NewFakeClient(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
