package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryLimiter_Check(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	limiter := newMemoryLimiter(Config{MaxRequests: 3, Window: time.Minute}, clock.Now)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := limiter.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 3-i, res.Remaining)
		assert.Equal(t, 3, res.Limit)
	}

	res, err := limiter.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Equal(t, clock.Now().Add(time.Minute), res.ResetAt)

	other, err := limiter.Check(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are independent")

	clock.Advance(time.Minute)
	res, err = limiter.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "new window after expiry")
	assert.Equal(t, 2, res.Remaining)
}

func TestMemoryLimiter_Reset(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	limiter := newMemoryLimiter(Config{MaxRequests: 1, Window: time.Hour}, clock.Now)
	ctx := context.Background()

	_, _ = limiter.Check(ctx, "k")
	res, _ := limiter.Check(ctx, "k")
	require.False(t, res.Allowed)

	require.NoError(t, limiter.Reset(ctx, "k"))
	res, _ = limiter.Check(ctx, "k")
	assert.True(t, res.Allowed)
}

func TestMemoryLimiter_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	limiter := newMemoryLimiter(Config{MaxRequests: 5, Window: time.Minute}, clock.Now)
	ctx := context.Background()

	_, _ = limiter.Check(ctx, "a")
	_, _ = limiter.Check(ctx, "b")
	clock.Advance(30 * time.Second)
	_, _ = limiter.Check(ctx, "c")
	require.Equal(t, 3, limiter.Len())

	clock.Advance(30 * time.Second)
	limiter.sweep()
	assert.Equal(t, 1, limiter.Len())
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	limiter := NewMemoryLimiter(Config{MaxRequests: 50, Window: time.Minute})
	defer limiter.Stop()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				res, err := limiter.Check(ctx, "shared")
				assert.NoError(t, err)
				if res.Allowed {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestMemoryLimiter_StopIsIdempotent(t *testing.T) {
	limiter := NewMemoryLimiter(DefaultConfig())
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestConfigDefaults(t *testing.T) {
	limiter := newMemoryLimiter(Config{}, time.Now)
	assert.Equal(t, DefaultConfig(), limiter.config)
}

func TestResult_RetryAfter(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 30*time.Second, Result{ResetAt: now.Add(29500 * time.Millisecond)}.RetryAfter(now))
	assert.Equal(t, time.Second, Result{ResetAt: now.Add(-time.Second)}.RetryAfter(now))
}
