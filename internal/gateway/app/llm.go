package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"legacyshift/internal/gateway/config"
	"legacyshift/internal/llm"
	"legacyshift/internal/pipeline"
)

// initModels builds the fast and reasoning tiers. Both share one rate
// limiter so the configured RPS bounds the whole process.
func initModels(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (pipeline.Models, func() error, error) {
	base := llm.Config{
		Provider:      cfg.Provider,
		APIKey:        cfg.APIKey(),
		BaseURL:       cfg.OpenAIBaseURL,
		AzureEndpoint: cfg.AzureEndpoint,
		APIVersion:    cfg.AzureVersion,
		Timeout:       cfg.Timeout,
	}
	fast, err := llm.New(ctx, base, cfg.FastModel)
	if err != nil {
		return pipeline.Models{}, nil, fmt.Errorf("fast model: %w", err)
	}
	reasoning, err := llm.New(ctx, base, cfg.ReasoningModel)
	if err != nil {
		_ = fast.Close()
		return pipeline.Models{}, nil, fmt.Errorf("reasoning model: %w", err)
	}

	limit := llm.SharedRateLimit(cfg.RPS, cfg.Burst)
	models := pipeline.Models{
		Fast: llm.Wrap(fast,
			llm.WithLogging(log),
			limit.Middleware(),
			llm.RateLimit(cfg.FastRPS, cfg.Burst),
			llm.WithTimeout(cfg.Timeout),
		),
		Reasoning: llm.Wrap(reasoning,
			llm.WithLogging(log),
			limit.Middleware(),
			llm.RateLimit(cfg.ReasoningRPS, cfg.Burst),
			llm.WithTimeout(cfg.Timeout),
		),
	}
	log.Info("llm backends ready",
		zap.String("provider", cfg.Provider),
		zap.String("fast", models.Fast.Name()),
		zap.String("reasoning", models.Reasoning.Name()),
		zap.Float64("rps", cfg.RPS),
		zap.Float64("fast_rps", cfg.FastRPS),
		zap.Float64("reasoning_rps", cfg.ReasoningRPS),
		zap.Duration("timeout", cfg.Timeout),
	)
	closeAll := func() error {
		limit.Stop()
		err1 := models.Fast.Close()
		err2 := models.Reasoning.Close()
		if err1 != nil {
			return err1
		}
		return err2
	}
	return models, closeAll, nil
}
