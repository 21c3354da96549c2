package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key. A bucket is created on first use with
// the capacity and refill rate of that call and starts full; later calls for the
// same key reuse it.
type Limiter struct {
	mu  sync.RWMutex
	m   map[string]*rate.Limiter
	now func() time.Time
}

func New() *Limiter { return &Limiter{m: make(map[string]*rate.Limiter), now: time.Now} }

func (l *Limiter) get(key string, capacity, refillPerSec float64) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.m[key]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.m[key]; ok {
		return lim
	}
	burst := int(capacity)
	if burst < 1 {
		burst = 1
	}
	lim = rate.NewLimiter(rate.Limit(refillPerSec), burst)
	l.m[key] = lim
	return lim
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	return l.get(key, capacity, refillPerSec).AllowN(l.now(), 1)
}

// Wait blocks until a token for key is available. It fails early when ctx
// ends before the token would arrive.
func (l *Limiter) Wait(ctx context.Context, key string, capacity, refillPerSec float64) error {
	return l.get(key, capacity, refillPerSec).Wait(ctx)
}
