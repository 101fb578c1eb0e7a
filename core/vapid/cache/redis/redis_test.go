package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/webpush/core/vapid/cache"
)

func newTestCache(t *testing.T, opts ...Option) (*TokenCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenCache(client, opts...), mr
}

func TestTokenCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	_, err := c.Get(ctx, "k1")
	assert.ErrorIs(t, err, cache.ErrTokenNotFound)

	require.NoError(t, c.Set(ctx, "k1", "token-1", time.Minute))
	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", got)

	assert.True(t, mr.Exists("vapid:token:k1"))
	assert.Equal(t, time.Minute, mr.TTL("vapid:token:k1"))

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "k1")
	assert.ErrorIs(t, err, cache.ErrTokenNotFound)
}

func TestTokenCacheSkipsExpired(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "k", "token", 0))
	require.NoError(t, c.Set(ctx, "k", "token", -time.Second))
	assert.False(t, mr.Exists("vapid:token:k"))
}

func TestTokenCacheKeyPrefix(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, WithKeyPrefix("push:"))

	require.NoError(t, c.Set(ctx, "k", "token", time.Hour))
	assert.True(t, mr.Exists("push:k"))
}

func TestTokenCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrTokenNotFound)
}
