package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_MODEL_FAST", "")
	t.Setenv("LLM_MODEL_REASONING", "")
	t.Setenv("ARTIFACT_S3_ENDPOINT", "")
	t.Setenv("JOB_STORE_PG_DSN", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LLM_RPS", "")
	t.Setenv("LLM_FAST_RPS", "")
	t.Setenv("LLM_REASONING_RPS", "")
	t.Setenv("LLM_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Port)
	assert.Zero(t, cfg.LLM.FastRPS)
	assert.Zero(t, cfg.LLM.ReasoningRPS)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.ReasoningModel)
	assert.False(t, cfg.Artifact.Enabled)
	assert.Empty(t, cfg.JobStore.DSN)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "Azure")
	t.Setenv("AZURE_OPENAI_API_KEY", "k")
	t.Setenv("LLM_MODEL_FAST", "")
	t.Setenv("LLM_MODEL_REASONING", "")
	t.Setenv("LLM_RPS", "2.5")
	t.Setenv("LLM_FAST_RPS", "2")
	t.Setenv("LLM_REASONING_RPS", "0.5")
	t.Setenv("LLM_TIMEOUT", "90s")
	t.Setenv("MAX_PARALLEL_UNITS", "3")
	t.Setenv("ARTIFACT_S3_ENDPOINT", "s3.example.com")
	t.Setenv("ARTIFACT_S3_USE_SSL", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "azure", cfg.LLM.Provider)
	assert.Equal(t, "k", cfg.LLM.APIKey())
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.FastModel)
	assert.Equal(t, "gpt-5-mini", cfg.LLM.ReasoningModel)
	assert.Equal(t, 2.5, cfg.LLM.RPS)
	assert.Equal(t, 2.0, cfg.LLM.FastRPS)
	assert.Equal(t, 0.5, cfg.LLM.ReasoningRPS)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.Pipeline.MaxParallelUnits)
	assert.True(t, cfg.Artifact.Enabled)
	assert.False(t, cfg.Artifact.UseSSL)
}

func TestLoad_InvalidRPS(t *testing.T) {
	t.Setenv("LLM_RPS", "fast")
	_, err := Load()
	assert.ErrorContains(t, err, "LLM_RPS")

	t.Setenv("LLM_RPS", "")
	t.Setenv("LLM_REASONING_RPS", "slow")
	_, err = Load()
	assert.ErrorContains(t, err, "LLM_REASONING_RPS")
}

func TestLoad_LocalArtifactCanBeDisabled(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("LLM_RPS", "")
	t.Setenv("LLM_TIMEOUT", "")
	t.Setenv("ARTIFACT_S3_ENDPOINT", "off")
	t.Setenv("LOG_FORMAT", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.Artifact.Enabled)
}
