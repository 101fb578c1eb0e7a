package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSlidingWindow(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)

	l, err := NewSlidingWindowLimiter(client, time.Second, 3)
	require.NoError(t, err)

	now := time.UnixMilli(1_700_000_000_000)
	for i := 0; i < 3; i++ {
		ok, err := l.AllowN(ctx, "fcm.googleapis.com", now.Add(time.Duration(i)*time.Millisecond), 1)
		require.NoError(t, err)
		assert.True(t, ok, "event %d", i)
	}

	ok, err := l.AllowN(ctx, "fcm.googleapis.com", now.Add(10*time.Millisecond), 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// other hosts have their own window
	ok, err = l.AllowN(ctx, "updates.push.services.mozilla.com", now, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	// the first events leave the window
	ok, err = l.AllowN(ctx, "fcm.googleapis.com", now.Add(time.Second+time.Millisecond), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, mr.Exists(DefaultKeyPrefix+"sw:fcm.googleapis.com"))
}

func TestSlidingWindowBatch(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)

	l, err := NewSlidingWindowLimiter(client, time.Minute, 5, WithKeyPrefix("test:"))
	require.NoError(t, err)

	now := time.Now()
	ok, err := l.AllowN(ctx, "host", now, 6)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.AllowN(ctx, "host", now, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.AllowN(ctx, "host", now, 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTokenBucket(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)

	l, err := NewTokenBucketLimiter(client, 2, 1)
	require.NoError(t, err)

	now := time.UnixMilli(1_700_000_000_000)
	for i := 0; i < 2; i++ {
		ok, err := l.AllowN(ctx, "host", now, 1)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.AllowN(ctx, "host", now, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// one token per second
	ok, err = l.AllowN(ctx, "host", now.Add(time.Second), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.AllowN(ctx, "host", now.Add(time.Second), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllow(t *testing.T) {
	_, client := newClient(t)
	l, err := NewTokenBucketLimiter(client, 1, 1)
	require.NoError(t, err)

	ok, err := Allow(context.Background(), l, "host")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiterErrors(t *testing.T) {
	_, client := newClient(t)

	_, err := NewSlidingWindowLimiter(nil, time.Second, 1)
	assert.Error(t, err)
	_, err = NewSlidingWindowLimiter(client, 0, 1)
	assert.Error(t, err)
	_, err = NewTokenBucketLimiter(client, 0, 1)
	assert.Error(t, err)

	mr, client := newClient(t)
	l, err := NewSlidingWindowLimiter(client, time.Second, 1)
	require.NoError(t, err)
	mr.Close()
	_, err = l.AllowN(context.Background(), "host", time.Now(), 1)
	assert.Error(t, err)
}
