package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Model provider selection: "gemini" or "bedrock".
	ModelProvider  string
	GeminiAPIKey   string
	GeminiModelID  string
	BedrockModelID string

	// Optional deadline applied around the outbound model call. Zero disables it.
	UpstreamTimeout time.Duration

	TranscriptMinLength int
	TranscriptMaxLength int

	CORSAllowedOrigins []string
	MetricsEnabled     bool

	// Rate limiting
	RateLimitEnabled bool
	RateLimitMax     int
	RateLimitWindow  time.Duration
	RateLimitBackend string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "3001"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ModelProvider:  strings.ToLower(strings.TrimSpace(getEnv("MODEL_PROVIDER", "gemini"))),
		GeminiAPIKey:   strings.TrimSpace(getEnv("API_KEY", getEnv("GEMINI_API_KEY", ""))),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),

		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 0),

		TranscriptMinLength: getEnvAsInt("TRANSCRIPT_MIN_LENGTH", 25),
		TranscriptMaxLength: getEnvAsInt("TRANSCRIPT_MAX_LENGTH", 10000),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),

		RateLimitEnabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RateLimitMax:     getEnvAsInt("RATE_LIMIT_MAX", 10),
		RateLimitWindow:  getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitBackend: strings.ToLower(strings.TrimSpace(getEnv("RATE_LIMIT_BACKEND", "memory"))),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
