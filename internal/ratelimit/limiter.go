// Package ratelimit bounds how many analyses a client may request per window.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultMaxRequests = 10
	DefaultWindow      = time.Minute
)

// Config sets the fixed-window budget shared by every client key.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultConfig allows 10 requests per minute.
func DefaultConfig() Config {
	return Config{MaxRequests: DefaultMaxRequests, Window: DefaultWindow}
}

func (c Config) normalized() Config {
	if c.MaxRequests <= 0 {
		c.MaxRequests = DefaultMaxRequests
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	return c
}

// Result describes the outcome of one Check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long a rejected client should wait, rounded up to a second.
func (r Result) RetryAfter(now time.Time) time.Duration {
	wait := r.ResetAt.Sub(now)
	if wait <= 0 {
		return time.Second
	}
	return wait.Truncate(time.Second) + time.Second
}

// Limiter counts requests per key. Implementations are safe for concurrent use.
type Limiter interface {
	Check(ctx context.Context, key string) (Result, error)
	Reset(ctx context.Context, key string) error
}

func remaining(limit, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}
