// Package rate limits outgoing pushes per push service with Redis Lua scripts, so
// several senders sharing one Redis share the budget.
package rate

import (
	"context"
	"time"
)

// Limiter reports whether n more events for key fit into the budget at t.
type Limiter interface {
	AllowN(ctx context.Context, key string, t time.Time, n int) (bool, error)
}

// Allow is AllowN for one event now.
func Allow(ctx context.Context, l Limiter, key string) (bool, error) {
	return l.AllowN(ctx, key, time.Now(), 1)
}

const DefaultKeyPrefix = "webpush:rate:"

// Option configures a limiter.
type Option func(*options)

type options struct {
	prefix string
}

// WithKeyPrefix sets the prefix of the Redis keys, DefaultKeyPrefix by default.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

func newOptions(opts []Option) options {
	o := options{prefix: DefaultKeyPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
