package storage

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheService(NewRedisCacheFromClient(client), 20*time.Second), mr
}

func TestCacheService_SetGetJSON(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := testContext(t)

	type payload struct {
		Title       string `json:"title"`
		Subscribers int    `json:"subscribers"`
	}

	key := cache.ChannelListKey("job-1", 50)
	err := cache.SetJSON(ctx, key, []payload{{Title: "Marketing Pro", Subscribers: 125000}})
	require.NoError(t, err)

	var got []payload
	err = cache.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Marketing Pro", got[0].Title)
	assert.Equal(t, 125000, got[0].Subscribers)
}

func TestCacheService_GetJSON_Miss(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := testContext(t)

	var got map[string]interface{}
	err := cache.GetJSON(ctx, "channels:missing:50", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheService_TTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := testContext(t)

	key := cache.StatsKey()
	require.NoError(t, cache.SetJSON(ctx, key, map[string]int{"totalChannels": 2}))

	mr.FastForward(21 * time.Second)

	var got map[string]int
	err := cache.GetJSON(ctx, key, &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheService_KeyFormats(t *testing.T) {
	cache, _ := newTestCache(t)

	assert.Equal(t, "channels:job-1:50", cache.ChannelListKey("job-1", 50))
	assert.Equal(t, "channels:all:50", cache.ChannelListKey("", 50))
	assert.Equal(t, "channels:all:0", cache.ChannelListKey("", 0))
	assert.Equal(t, "stats:dashboard", cache.StatsKey())
}

func TestCacheService_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := testContext(t)

	key := cache.StatsKey()
	require.NoError(t, cache.SetJSON(ctx, key, map[string]int{"activeScans": 1}))
	require.NoError(t, cache.Delete(ctx, key))

	var got map[string]int
	err := cache.GetJSON(ctx, key, &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheService_InvalidateReadViews(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := testContext(t)

	keys := []string{
		cache.ChannelListKey("", 50),
		cache.ChannelListKey("job-1", 50),
		cache.ChannelListKey("job-2", 10),
		cache.StatsKey(),
	}
	for _, key := range keys {
		require.NoError(t, cache.SetJSON(ctx, key, map[string]int{"n": 1}))
	}

	// An unrelated key must survive invalidation
	unrelated := "session:abc"
	require.NoError(t, cache.SetJSON(ctx, unrelated, map[string]int{"n": 1}))

	require.NoError(t, cache.InvalidateReadViews(ctx))

	var got map[string]int
	for _, key := range keys {
		err := cache.GetJSON(ctx, key, &got)
		assert.ErrorIs(t, err, ErrCacheMiss, "key %s should be invalidated", key)
	}
	assert.NoError(t, cache.GetJSON(ctx, unrelated, &got))
}

func TestCacheService_InvalidateReadViews_Empty(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := testContext(t)

	// No cached views; invalidation is a no-op
	assert.NoError(t, cache.InvalidateReadViews(ctx))
}
