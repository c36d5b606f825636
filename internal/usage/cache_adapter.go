package usage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/forkintheroad/fitr-admin/internal/cache"
)

// CacheAdapter stores reports as JSON in the Postgres cache.
type CacheAdapter struct {
	pgCache *cache.PGCache
}

func NewCacheAdapter(pgCache *cache.PGCache) *CacheAdapter {
	return &CacheAdapter{pgCache: pgCache}
}

func (a *CacheAdapter) Get(ctx context.Context, key string, value interface{}) error {
	data, err := a.pgCache.Get(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, value); err != nil {
		// Drop entries written by an older report shape
		_ = a.pgCache.Delete(ctx, key)
		return err
	}
	return nil
}

func (a *CacheAdapter) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return a.pgCache.Set(ctx, key, data, ttl)
}
