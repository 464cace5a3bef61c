package mainconfig

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/vibe-check-lab/internal/analysis"
	appconfig "github.com/wolfman30/vibe-check-lab/internal/config"
	"github.com/wolfman30/vibe-check-lab/internal/llm"
	"github.com/wolfman30/vibe-check-lab/internal/ratelimit"
	"github.com/wolfman30/vibe-check-lab/pkg/logging"
)

// LoadAWSConfig centralizes AWS SDK initialization so every binary shares the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				switch service {
				case bedrockruntime.ServiceID:
					return aws.Endpoint{
						URL:           endpoint,
						PartitionID:   "aws",
						SigningRegion: cfg.AWSRegion,
					}, nil
				default:
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				}
			},
		)
	}

	return awsCfg, nil
}

// NewGenerator builds the configured model client. It returns a nil Generator,
// not an error, when no credential is configured: the server still starts and
// each analyze request fails with a configuration error.
func NewGenerator(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (llm.Generator, error) {
	switch cfg.ModelProvider {
	case "", "gemini":
		if cfg.GeminiAPIKey == "" {
			logger.Error("API_KEY is not set; analyze requests will fail until it is configured")
			return nil, nil
		}
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, fmt.Errorf("mainconfig: gemini client: %w", err)
		}
		logger.Info("model provider configured", "provider", "gemini", "model", client.ModelID())
		return client, nil
	case "bedrock":
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			logger.Error("BEDROCK_MODEL_ID is not set; analyze requests will fail until it is configured")
			return nil, nil
		}
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("mainconfig: aws config: %w", err)
		}
		client, err := llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
		if err != nil {
			return nil, fmt.Errorf("mainconfig: bedrock client: %w", err)
		}
		logger.Info("model provider configured", "provider", "bedrock", "model", cfg.BedrockModelID)
		return client, nil
	default:
		return nil, fmt.Errorf("mainconfig: unknown MODEL_PROVIDER %q", cfg.ModelProvider)
	}
}

// NewLimiter builds the configured rate limiter. The returned stop function
// releases its resources and is never nil. A nil Limiter means rate limiting
// is disabled.
func NewLimiter(cfg *appconfig.Config, logger *logging.Logger) (ratelimit.Limiter, func()) {
	if !cfg.RateLimitEnabled {
		return nil, func() {}
	}
	limits := ratelimit.Config{MaxRequests: cfg.RateLimitMax, Window: cfg.RateLimitWindow}

	if cfg.RateLimitBackend == "redis" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		logger.Info("rate limiter configured", "backend", "redis", "addr", cfg.RedisAddr, "max", limits.MaxRequests, "window", limits.Window.String())
		return ratelimit.NewRedisLimiter(client, limits, logger), func() { _ = client.Close() }
	}

	limiter := ratelimit.NewMemoryLimiter(limits)
	logger.Info("rate limiter configured", "backend", "memory", "max", limits.MaxRequests, "window", limits.Window.String())
	return limiter, limiter.Stop
}

// NewService assembles the analysis pipeline from configuration.
func NewService(gen llm.Generator, cfg *appconfig.Config, recorder analysis.Recorder, logger *logging.Logger) *analysis.Service {
	opts := []analysis.Option{
		analysis.WithLimits(analysis.Limits{Min: cfg.TranscriptMinLength, Max: cfg.TranscriptMaxLength}),
		analysis.WithUpstreamTimeout(cfg.UpstreamTimeout),
	}
	if recorder != nil {
		opts = append(opts, analysis.WithRecorder(recorder))
	}
	return analysis.NewService(analysis.NewGateway(gen, logger), logger, opts...)
}
