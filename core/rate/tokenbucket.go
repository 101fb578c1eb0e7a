package rate

import (
	"context"
	_ "embed"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/webpush/errors"
)

var (
	//go:embed tokenbucket.lua
	tokenBucketLua       string
	tokenBucketLuaScript = redis.NewScript(tokenBucketLua)
)

// TokenBucketLimiter refills rate tokens per second up to capacity, per key.
type TokenBucketLimiter struct {
	client   redis.UniversalClient
	capacity int
	rate     int
	prefix   string
}

func NewTokenBucketLimiter(client redis.UniversalClient, capacity, rate int, opts ...Option) (*TokenBucketLimiter, error) {
	if client == nil {
		return nil, errors.Precondition("redis client must not be nil")
	}
	if capacity <= 0 || rate <= 0 {
		return nil, errors.Precondition("capacity and rate must be positive, got %d and %d", capacity, rate)
	}
	o := newOptions(opts)
	return &TokenBucketLimiter{
		client:   client,
		capacity: capacity,
		rate:     rate,
		prefix:   o.prefix,
	}, nil
}

func (l *TokenBucketLimiter) AllowN(ctx context.Context, key string, t time.Time, n int) (bool, error) {
	if n <= 0 {
		return true, nil
	}
	result, err := tokenBucketLuaScript.Run(ctx, l.client, []string{l.prefix + "tb:" + key},
		l.capacity, l.rate, t.UnixMilli(), n).Int64()
	if err != nil {
		return false, errors.Wrap(err, errors.UnknownCode, "token bucket script failed")
	}
	return result == 1, nil
}
