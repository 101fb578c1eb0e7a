package rate

import (
	"context"
	_ "embed"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/webpush/errors"
)

var (
	//go:embed slidingwindow.lua
	slidingWindowLua       string
	slidingWindowLuaScript = redis.NewScript(slidingWindowLua)
)

// SlidingWindowLimiter allows at most limit events per key in any window.
type SlidingWindowLimiter struct {
	client redis.UniversalClient
	window time.Duration
	limit  int
	prefix string
}

func NewSlidingWindowLimiter(client redis.UniversalClient, window time.Duration, limit int, opts ...Option) (*SlidingWindowLimiter, error) {
	if client == nil {
		return nil, errors.Precondition("redis client must not be nil")
	}
	if window < time.Millisecond || limit <= 0 {
		return nil, errors.Precondition("window must be at least 1ms and limit positive, got %s and %d", window, limit)
	}
	o := newOptions(opts)
	return &SlidingWindowLimiter{
		client: client,
		window: window,
		limit:  limit,
		prefix: o.prefix,
	}, nil
}

func (l *SlidingWindowLimiter) AllowN(ctx context.Context, key string, t time.Time, n int) (bool, error) {
	if n <= 0 {
		return true, nil
	}
	result, err := slidingWindowLuaScript.Run(ctx, l.client, []string{l.prefix + "sw:" + key},
		l.window.Milliseconds(), l.limit, t.UnixMilli(), n, uuid.NewString()).Int64()
	if err != nil {
		return false, errors.Wrap(err, errors.UnknownCode, "sliding window script failed")
	}
	return result == 1, nil
}
