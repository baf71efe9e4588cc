package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	Log      LogConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	Artifact ArtifactConfig
	JobStore JobStoreConfig
}

type LogConfig struct {
	Level  string
	Format string // json | console
}

type LLMConfig struct {
	Provider       string
	GeminiAPIKey   string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	AzureEndpoint  string
	AzureAPIKey    string
	AzureVersion   string
	FastModel      string
	ReasoningModel string
	RPS            float64 // shared by both tiers
	Burst          int
	FastRPS        float64 // per tier, on top of RPS; 0 = off
	ReasoningRPS   float64
	Timeout        time.Duration
}

type PipelineConfig struct {
	MaxParallelUnits int
	MaxUploadBytes   int64
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type JobStoreConfig struct {
	DSN       string
	CacheSize int
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cfg := &Config{
		Port: normalizePort(firstNonEmpty(os.Getenv("PORT"), ":8080")),
		Env:  env,
		Log: LogConfig{
			Level:  firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), "info"),
			Format: firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_FORMAT")), defaultLogFormat(env)),
		},
		Artifact: loadArtifactConfig(env),
		JobStore: JobStoreConfig{
			DSN:       resolveJobStoreDSN(env),
			CacheSize: envInt("JOB_CACHE_SIZE", 256),
		},
		Pipeline: PipelineConfig{
			MaxParallelUnits: envInt("MAX_PARALLEL_UNITS", 0),
			MaxUploadBytes:   int64(envInt("MAX_UPLOAD_BYTES", 64<<20)),
		},
	}

	llm, err := loadLLMConfig()
	if err != nil {
		return nil, err
	}
	cfg.LLM = llm
	return cfg, nil
}

func loadLLMConfig() (LLMConfig, error) {
	c := LLMConfig{
		Provider:       strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_PROVIDER")), "gemini")),
		GeminiAPIKey:   strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		OpenAIAPIKey:   strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:  strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		AzureEndpoint:  strings.TrimSpace(os.Getenv("AZURE_OPENAI_ENDPOINT")),
		AzureAPIKey:    strings.TrimSpace(os.Getenv("AZURE_OPENAI_API_KEY")),
		AzureVersion:   strings.TrimSpace(os.Getenv("AZURE_OPENAI_API_VERSION")),
		FastModel:      strings.TrimSpace(os.Getenv("LLM_MODEL_FAST")),
		ReasoningModel: strings.TrimSpace(os.Getenv("LLM_MODEL_REASONING")),
		Burst:          envInt("LLM_BURST", 1),
	}
	for key, dst := range map[string]*float64{
		"LLM_RPS":           &c.RPS,
		"LLM_FAST_RPS":      &c.FastRPS,
		"LLM_REASONING_RPS": &c.ReasoningRPS,
	} {
		v, err := envFloat(key)
		if err != nil {
			return LLMConfig{}, err
		}
		*dst = v
	}
	if raw := strings.TrimSpace(os.Getenv("LLM_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return LLMConfig{}, fmt.Errorf("config: LLM_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	fast, reasoning := defaultModels(c.Provider)
	c.FastModel = firstNonEmpty(c.FastModel, fast)
	c.ReasoningModel = firstNonEmpty(c.ReasoningModel, reasoning)
	return c, nil
}

// APIKey returns the key of the selected provider.
func (c LLMConfig) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "azure":
		return c.AzureAPIKey
	default:
		return c.GeminiAPIKey
	}
}

func defaultModels(provider string) (fast, reasoning string) {
	switch provider {
	case "openai", "azure":
		return "gpt-4.1-mini", "gpt-5-mini"
	case "fake":
		return "fake", "fake"
	default:
		return "gemini-2.5-flash-lite", "gemini-2.5-pro"
	}
}

func defaultLogFormat(env string) string {
	if strings.EqualFold(env, "local") {
		return "console"
	}
	return "json"
}

func loadArtifactConfig(env string) ArtifactConfig {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return localArtifactConfig()
	}
	endpoint := strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "legacyshift-artifacts"),
		UseSSL:    envBool("ARTIFACT_S3_USE_SSL", true),
	}
}

func resolveJobStoreDSN(env string) string {
	if dsn := strings.TrimSpace(os.Getenv("JOB_STORE_PG_DSN")); dsn != "" {
		return dsn
	}
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("LOCAL_PG_DSN"))
	}
	return ""
}

func normalizePort(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, ":") || strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// envFloat parses key as a float; unset means 0.
func envFloat(key string) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// CanUseS3 reports whether the artifact config is complete enough for S3.
func (c ArtifactConfig) CanUseS3() bool {
	return c.Enabled &&
		strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}
