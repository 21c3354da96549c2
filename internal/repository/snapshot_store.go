package repository

import (
	"context"

	domrepo "ZoneWatch/internal/domain/repository"
	"ZoneWatch/internal/service/cache"
)

// CacheSnapshotStore keeps the serialized catalog under a single cache key
// without expiry.
type CacheSnapshotStore struct {
	c   cache.BytesCache
	key string
}

var _ domrepo.SnapshotStore = (*CacheSnapshotStore)(nil)

func NewCacheSnapshotStore(c cache.BytesCache) *CacheSnapshotStore {
	return &CacheSnapshotStore{c: c, key: cache.Key("catalog", "snapshot")}
}

func (s *CacheSnapshotStore) Save(ctx context.Context, data []byte) error {
	return s.c.SetBytes(ctx, s.key, data, 0)
}

func (s *CacheSnapshotStore) Load(ctx context.Context) ([]byte, bool, error) {
	return s.c.GetBytes(ctx, s.key)
}
