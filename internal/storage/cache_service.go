package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is not present in the cache
var ErrCacheMiss = errors.New("cache miss")

// CacheService provides read-side caching for channel lists and statistics.
// Cache failures are reported to callers but must never fail a request; the
// read path falls through to Postgres.
type CacheService struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
	}
}

// CacheKeyType represents different types of cache keys
type CacheKeyType string

const (
	// CacheKeyChannels is for channel list views
	CacheKeyChannels CacheKeyType = "channels"
	// CacheKeyStats is for dashboard statistics
	CacheKeyStats CacheKeyType = "stats"
)

// GenerateCacheKey generates a cache key for a given type and parameters
// Format: <type>:<param1>:<param2>:...
func (c *CacheService) GenerateCacheKey(keyType CacheKeyType, params ...string) string {
	parts := append([]string{string(keyType)}, params...)
	return strings.Join(parts, ":")
}

// ChannelListKey generates a cache key for a channel list view
// Format: channels:<job-id-or-all>:<limit>
func (c *CacheService) ChannelListKey(jobID string, limit int) string {
	if jobID == "" {
		jobID = "all"
	}
	return c.GenerateCacheKey(CacheKeyChannels, jobID, strconv.Itoa(limit))
}

// StatsKey generates the cache key for dashboard statistics
func (c *CacheService) StatsKey() string {
	return c.GenerateCacheKey(CacheKeyStats, "dashboard")
}

// SetJSON stores a JSON-encoded value with the configured TTL
func (c *CacheService) SetJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.redis.Client().Set(ctx, key, data, c.ttl).Err()
}

// GetJSON retrieves and decodes a JSON value; returns ErrCacheMiss when absent
func (c *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.redis.Client().Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key from the cache
func (c *CacheService) Delete(ctx context.Context, key string) error {
	return c.redis.Client().Del(ctx, key).Err()
}

// InvalidatePrefix removes all keys under a prefix. Used after a scan commits
// so channel lists and statistics reflect the new rows immediately.
func (c *CacheService) InvalidatePrefix(ctx context.Context, prefix string) error {
	client := c.redis.Client()
	iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}

// InvalidateReadViews removes cached channel lists and statistics
func (c *CacheService) InvalidateReadViews(ctx context.Context) error {
	if err := c.InvalidatePrefix(ctx, string(CacheKeyChannels)+":"); err != nil {
		return err
	}
	return c.Delete(ctx, c.StatsKey())
}
