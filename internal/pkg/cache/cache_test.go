package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache("storefront")
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	now = now.Add(2 * time.Minute)
	v, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, v)

	assert.Equal(t, 1, c.Sweep())

	v, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	require.NoError(t, c.Delete(ctx, "b"))
	v, _ = c.Get(ctx, "b")
	assert.Empty(t, v)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "storefront:session:abc", NewMemoryCache("storefront").GenerateKey("session", "abc"))
}

func TestRedisCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	c := NewRedisCache(RedisOptions{Addr: mr.Addr(), Namespace: "storefront"})

	require.NoError(t, Ping(ctx, c))

	key := c.GenerateKey("session", "s1")
	require.NoError(t, c.Set(ctx, key, `{"id":"s1"}`, time.Hour))

	v, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"s1"}`, v)

	mr.FastForward(2 * time.Hour)
	v, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, v, "expired keys read as missing")

	require.NoError(t, c.Set(ctx, key, "x", 0))
	require.NoError(t, c.Delete(ctx, key))
	v, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSetNX(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mem := NewMemoryCache("storefront")
	mem.now = func() time.Time { return now }

	mr := miniredis.RunT(t)
	caches := map[string]Cache{
		"memory": mem,
		"redis":  NewRedisCache(RedisOptions{Addr: mr.Addr(), Namespace: "storefront"}),
	}
	for name, c := range caches {
		t.Run(name, func(t *testing.T) {
			ok, err := c.SetNX(ctx, "lock", "1", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = c.SetNX(ctx, "lock", "2", time.Minute)
			require.NoError(t, err)
			assert.False(t, ok, "held")

			require.NoError(t, c.Delete(ctx, "lock"))
			ok, err = c.SetNX(ctx, "lock", "3", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok, "released")
		})
	}

	now = now.Add(2 * time.Minute)
	ok, err := mem.SetNX(ctx, "lock", "4", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock can be taken")

	mr.FastForward(2 * time.Minute)
	ok, err = caches["redis"].SetNX(ctx, "lock", "4", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
