package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryRateLimiter is the in-process fallback used when redis is not
// configured (and by tests). Each key gets a token bucket sized to the
// attempt budget that refills over the window, which approximates the
// rolling-window limit closely enough for throttling.
type MemoryRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	attempts int
	window   time.Duration
}

func NewMemoryRateLimiter(attempts int, window time.Duration) *MemoryRateLimiter {
	if attempts <= 0 {
		attempts = 5
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &MemoryRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		attempts: attempts,
		window:   window,
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(l.window/time.Duration(l.attempts)), l.attempts)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow(), nil
}
