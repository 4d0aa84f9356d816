package services

import (
	"sync"
	"time"
)

type rateBucket struct {
	count       int
	windowStart time.Time
}

// RateLimiter enforces a fixed window per client network identifier. Stale
// buckets are dropped lazily on each check; submission volume is low enough
// that no background sweep is needed.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*rateBucket
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*rateBucket),
	}
}

// Allow counts one attempt for clientID and reports whether it is within the
// limit. retryAfter is how long the client should wait when rejected.
func (l *RateLimiter) Allow(clientID string) (allowed bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for id, b := range l.buckets {
		if now.Sub(b.windowStart) >= l.window {
			delete(l.buckets, id)
		}
	}

	b, ok := l.buckets[clientID]
	if !ok {
		l.buckets[clientID] = &rateBucket{count: 1, windowStart: now}
		return true, 0
	}

	b.count++
	if b.count > l.limit {
		return false, l.window - now.Sub(b.windowStart)
	}
	return true, 0
}
