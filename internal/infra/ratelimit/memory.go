package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter keeps one token bucket per key in process memory.
type MemoryLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter allows requestsPerMinute per key with the given burst.
func NewMemoryLimiter(requestsPerMinute, burst int) *MemoryLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(requestsPerMinute) / 60),
		burst:    burst,
		ttl:      5 * time.Minute,
		now:      time.Now,
	}
}

// Allow consumes one token for key.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	if now.Sub(l.lastSweep) >= l.ttl {
		l.cleanupLocked(now)
		l.lastSweep = now
	}
	return v.limiter.AllowN(now, 1), nil
}

func (l *MemoryLimiter) cleanupLocked(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, key)
		}
	}
}
