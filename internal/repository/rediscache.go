package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"components-api/internal/geocode"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "geocode:q:"

// ResultCache stores geocoding results in Redis under the normalized query,
// with a TTL so stale upstream data ages out on its own.
type ResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewResultCache creates a Redis-backed geocoding result cache.
func NewResultCache(rdb *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached results for the given key. The second return value is
// false on a cache miss.
func (c *ResultCache) Get(ctx context.Context, key string) ([]geocode.Result, bool, error) {
	payload, err := c.rdb.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("repository: failed to read cache entry: %w", err)
	}

	var results []geocode.Result
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, false, fmt.Errorf("repository: failed to decode cache entry: %w", err)
	}

	return results, true, nil
}

// Set stores results for the given key with the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, results []geocode.Result) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("repository: failed to encode cache entry: %w", err)
	}

	if err := c.rdb.Set(ctx, cacheKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("repository: failed to write cache entry: %w", err)
	}

	return nil
}
