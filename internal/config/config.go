package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"postureai/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `validate:"required"`
	AI       AIConfig       `validate:"required"`
	Pool     PoolConfig     `validate:"required"`
	Redact   RedactConfig
	Server   ServerConfig `validate:"required"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string `validate:"required"`
	SSLMode string
}

// AIConfig holds model and prompt settings
type AIConfig struct {
	DefaultModel         string        `validate:"required"`
	FallbackModel        string        `validate:"required"`
	IntakeModel          string
	Temperature          float64
	MaxTokens            int
	SynthesisMaxTokens   int
	SynthesisTemperature float64
	FallbackMaxTokens    int
	FallbackTemperature  float64
	RequestTimeout       time.Duration
	MaxRetries           int
	PromptVersion        string
	SchemaVersion        string

	// Prompt enrichment knobs
	IncludeComments      bool
	IncludeContext       bool
	CommentMaxChars      int
	ContextMaxChars      int
	MaxBenchmarkControls int

	MaxConcurrentSections int

	// PricingOverrides replace the built-in per-1K-token rates for the
	// named models.
	PricingOverrides []PricingOverride
}

// PricingOverride is one model's per-1K-token rates from AI_PRICING_OVERRIDES
type PricingOverride struct {
	Model           string
	PromptPer1K     float64
	CompletionPer1K float64
}

// PoolConfig holds credential pool settings
type PoolConfig struct {
	// EncryptionKey decrypts stored credentials. Resolution order:
	// CREDENTIAL_ENCRYPTION_KEY, then the file at EncryptionKeyFile.
	EncryptionKey     string
	EncryptionKeyFile string

	PerKeyQPS           float64
	CooldownCapMinutes  int
	DeactivateThreshold int
}

// RedactConfig holds PII scrubbing settings
type RedactConfig struct {
	Enabled bool
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string `validate:"required"`

	// QuestionLibraryPath points at the markdown question library parsed
	// into the assessment structure at startup. Optional; report
	// generation is unavailable without it.
	QuestionLibraryPath string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.AI = loadAIConfig()
	overrides, err := parsePricingOverrides(os.Getenv("AI_PRICING_OVERRIDES"))
	if err != nil {
		return nil, err
	}
	config.AI.PricingOverrides = overrides
	config.Pool = loadPoolConfig()
	config.Redact = RedactConfig{
		Enabled: getEnvBoolOrDefault("PII_REDACTION_ENABLED", true),
	}
	config.Server = ServerConfig{
		Port:                getEnvOrDefault("PORT", "8080"),
		QuestionLibraryPath: getEnvOrDefault("QUESTION_LIBRARY_PATH", ""),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	return &DatabaseConfig{
		URL:     url,
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func loadAIConfig() AIConfig {
	return AIConfig{
		DefaultModel:         getEnvOrDefault("AI_DEFAULT_MODEL", "gpt-4-turbo"),
		FallbackModel:        getEnvOrDefault("AI_FALLBACK_MODEL", "gpt-3.5-turbo"),
		IntakeModel:          getEnvOrDefault("AI_INTAKE_MODEL", "gpt-4o-mini"),
		Temperature:          getEnvFloatOrDefault("AI_TEMPERATURE", 0.3),
		MaxTokens:            getEnvIntOrDefault("AI_MAX_TOKENS", 1500),
		SynthesisMaxTokens:   getEnvIntOrDefault("AI_SYNTHESIS_MAX_TOKENS", 2000),
		SynthesisTemperature: getEnvFloatOrDefault("AI_SYNTHESIS_TEMPERATURE", 0.5),
		FallbackMaxTokens:    getEnvIntOrDefault("AI_FALLBACK_MAX_TOKENS", 800),
		FallbackTemperature:  getEnvFloatOrDefault("AI_FALLBACK_TEMPERATURE", 0.5),
		RequestTimeout:       getEnvDurationOrDefault("AI_REQUEST_TIMEOUT", 60*time.Second),
		MaxRetries:           getEnvIntOrDefault("AI_MAX_RETRIES", 3),
		PromptVersion:        getEnvOrDefault("AI_PROMPT_VERSION", "v2.1"),
		SchemaVersion:        getEnvOrDefault("AI_SCHEMA_VERSION", "1.1"),

		IncludeComments:      getEnvBoolOrDefault("AI_INCLUDE_COMMENTS", true),
		IncludeContext:       getEnvBoolOrDefault("AI_INCLUDE_CONTEXT", true),
		CommentMaxChars:      getEnvIntOrDefault("AI_COMMENT_MAX_CHARS", 500),
		ContextMaxChars:      getEnvIntOrDefault("AI_CONTEXT_MAX_CHARS", 300),
		MaxBenchmarkControls: getEnvIntOrDefault("AI_MAX_BENCHMARK_CONTROLS", 8),

		MaxConcurrentSections: getEnvIntOrDefault("AI_MAX_CONCURRENT_SECTIONS", 5),
	}
}

// parsePricingOverrides parses AI_PRICING_OVERRIDES, a comma-separated
// list of model:prompt_per_1k:completion_per_1k entries, e.g.
// "gpt-4:0.02:0.06,gpt-4o:0.0025:0.01".
func parsePricingOverrides(raw string) ([]PricingOverride, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var overrides []PricingOverride
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
			return nil, errors.ConfigInvalid("invalid pricing override entry: " + entry)
		}
		promptRate, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, errors.ConfigInvalid("invalid prompt rate in pricing override: " + entry)
		}
		completionRate, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, errors.ConfigInvalid("invalid completion rate in pricing override: " + entry)
		}
		if promptRate < 0 || completionRate < 0 {
			return nil, errors.ConfigInvalid("pricing override rates must be non-negative: " + entry)
		}
		overrides = append(overrides, PricingOverride{
			Model:           strings.TrimSpace(parts[0]),
			PromptPer1K:     promptRate,
			CompletionPer1K: completionRate,
		})
	}
	return overrides, nil
}

func loadPoolConfig() PoolConfig {
	return PoolConfig{
		EncryptionKey:       os.Getenv("CREDENTIAL_ENCRYPTION_KEY"),
		EncryptionKeyFile:   getEnvOrDefault("CREDENTIAL_ENCRYPTION_KEY_FILE", ""),
		PerKeyQPS:           getEnvFloatOrDefault("POOL_PER_KEY_QPS", 10),
		CooldownCapMinutes:  getEnvIntOrDefault("POOL_COOLDOWN_CAP_MINUTES", 60),
		DeactivateThreshold: getEnvIntOrDefault("POOL_DEACTIVATE_THRESHOLD", 5),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.AI.DefaultModel == "" || config.AI.FallbackModel == "" {
		return errors.ConfigInvalid("default and fallback models are required")
	}
	if config.AI.MaxConcurrentSections < 1 {
		return errors.ConfigInvalid("max concurrent sections must be at least 1")
	}
	if config.Pool.PerKeyQPS <= 0 {
		return errors.ConfigInvalid("per-key QPS must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
