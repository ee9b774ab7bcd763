package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CacheStore handles configuration caching in Redis.
type CacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheStore creates a new CacheStore. A zero ttl uses RateCacheTTL.
func NewCacheStore(client *redis.Client, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = RateCacheTTL
	}
	return &CacheStore{client: client, ttl: ttl}
}

// RateCacheTTL bounds how long an admin change to a rate takes to be seen.
const RateCacheTTL = 60 * time.Second

const rateCachePrefix = "cache:rate:"

// GetRate retrieves a commission rate. The bool is false on a cache miss.
func (s *CacheStore) GetRate(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	raw, err := s.client.Get(ctx, rateCachePrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return decimal.Zero, false, nil // Cache miss
		}
		return decimal.Zero, false, err
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		// Corrupt entry: drop it and report a miss.
		_ = s.InvalidateRate(ctx, key)
		return decimal.Zero, false, nil
	}
	return rate, true, nil
}

// SetRate stores a commission rate.
func (s *CacheStore) SetRate(ctx context.Context, key string, rate decimal.Decimal) error {
	return s.client.Set(ctx, rateCachePrefix+key, rate.String(), s.ttl).Err()
}

// InvalidateRate removes a commission rate from cache.
func (s *CacheStore) InvalidateRate(ctx context.Context, key string) error {
	return s.client.Del(ctx, rateCachePrefix+key).Err()
}
