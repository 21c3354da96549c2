package cache

import (
	"context"
	"strings"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const keyPrefix = "zonewatch"

// Key joins parts under the service prefix, e.g. zonewatch:candles:AAPL:1d:1y.
func Key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}
