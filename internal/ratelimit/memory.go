package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a single-process fixed-window limiter. Expired windows are
// evicted by a background janitor until Stop is called.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	config  Config
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryLimiter starts a limiter whose janitor sweeps once per window.
func NewMemoryLimiter(config Config) *MemoryLimiter {
	l := newMemoryLimiter(config, time.Now)
	go l.janitor(l.config.Window)
	return l
}

func newMemoryLimiter(config Config, now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		config:  config.normalized(),
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Check counts one request for key.
func (l *MemoryLimiter) Check(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.config.Window)}
		l.windows[key] = w
	}

	if w.count >= l.config.MaxRequests {
		return Result{Allowed: false, Limit: l.config.MaxRequests, Remaining: 0, ResetAt: w.resetAt}, nil
	}
	w.count++
	return Result{
		Allowed:   true,
		Limit:     l.config.MaxRequests,
		Remaining: remaining(l.config.MaxRequests, w.count),
		ResetAt:   w.resetAt,
	}, nil
}

// Reset forgets key's current window.
func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// Len reports how many keys are being tracked.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Stop ends the janitor. It is safe to call more than once.
func (l *MemoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *MemoryLimiter) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *MemoryLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
}
