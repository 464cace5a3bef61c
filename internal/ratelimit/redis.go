package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/vibe-check-lab/pkg/logging"
)

var tracer = otel.Tracer("vibecheck.internal.ratelimit")

const defaultKeyPrefix = "vibecheck:ratelimit:"

// RedisLimiter shares fixed windows across instances with INCR and PEXPIRE.
// When Redis is unreachable it fails open and logs the error.
type RedisLimiter struct {
	redis  redis.Cmdable
	config Config
	prefix string
	logger *logging.Logger
}

// NewRedisLimiter creates a limiter backed by client.
func NewRedisLimiter(client redis.Cmdable, config Config, logger *logging.Logger) *RedisLimiter {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisLimiter{
		redis:  client,
		config: config.normalized(),
		prefix: defaultKeyPrefix,
		logger: logger,
	}
}

// Check counts one request for key.
func (l *RedisLimiter) Check(ctx context.Context, key string) (Result, error) {
	ctx, span := tracer.Start(ctx, "ratelimit.check")
	defer span.End()

	count, resetAt, err := l.incrementAndGet(ctx, l.prefix+key)
	if err != nil {
		l.logger.Error("rate limit check failed", "error", err)
		span.SetAttributes(attribute.Bool("ratelimit.fail_open", true))
		return Result{
			Allowed:   true,
			Limit:     l.config.MaxRequests,
			Remaining: l.config.MaxRequests,
			ResetAt:   time.Now().Add(l.config.Window),
		}, nil
	}

	result := Result{
		Allowed:   count <= l.config.MaxRequests,
		Limit:     l.config.MaxRequests,
		Remaining: remaining(l.config.MaxRequests, count),
		ResetAt:   resetAt,
	}
	span.SetAttributes(
		attribute.Int("ratelimit.count", count),
		attribute.Bool("ratelimit.allowed", result.Allowed),
	)
	return result, nil
}

// Reset deletes key's counter.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.redis.Del(ctx, l.prefix+key).Err()
}

func (l *RedisLimiter) incrementAndGet(ctx context.Context, key string) (int, time.Time, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}

	// The first request opens the window.
	if count == 1 {
		if err := l.redis.PExpire(ctx, key, l.config.Window).Err(); err != nil {
			return 0, time.Time{}, err
		}
	}

	ttl, err := l.redis.PTTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		// A key without expiry would block forever; re-arm it.
		if ttl == -1 {
			l.redis.PExpire(ctx, key, l.config.Window)
		}
		ttl = l.config.Window
	}
	return int(count), time.Now().Add(ttl), nil
}
