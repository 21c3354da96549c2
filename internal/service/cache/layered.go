package cache

import (
	"context"
	"time"
)

// LayeredCache is a two-level BytesCache: an in-process L1 in front of a shared L2
// (Redis). Writes go to L2 first; L2 hits are copied into L1 for at most l1TTL.
type LayeredCache struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

// NewLayeredCache creates a layered cache. l1TTL <= 0 defaults to 30s.
func NewLayeredCache(l2 BytesCache, l1TTL time.Duration) *LayeredCache {
	if l1TTL <= 0 {
		l1TTL = 30 * time.Second
	}
	return &LayeredCache{l1: NewTTLCache(), l2: l2, l1TTL: l1TTL}
}

func (lc *LayeredCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := lc.l1.GetBytes(ctx, key); ok {
		return b, true, nil
	}
	b, ok, err := lc.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = lc.l1.SetBytes(ctx, key, b, lc.l1TTL)
	return b, true, nil
}

// SetBytes writes through. A failed L2 write leaves L1 untouched.
func (lc *LayeredCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := lc.l2.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	l1 := lc.l1TTL
	if ttl > 0 && ttl < l1 {
		l1 = ttl
	}
	return lc.l1.SetBytes(ctx, key, value, l1)
}

func (lc *LayeredCache) Delete(ctx context.Context, key string) error {
	_ = lc.l1.Delete(ctx, key)
	return lc.l2.Delete(ctx, key)
}

// Ping checks L2 when it supports pinging.
func (lc *LayeredCache) Ping(ctx context.Context) error {
	if p, ok := lc.l2.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes L2 when it holds a connection.
func (lc *LayeredCache) Close() error {
	if c, ok := lc.l2.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
