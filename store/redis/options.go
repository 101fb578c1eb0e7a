package redis

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/webpush/log"
)

// Option 客户端配置选项
type Option func(*clientOptions)

type clientOptions struct {
	hooks []redis.Hook

	enableDebug     bool
	slowQueryThresh time.Duration

	logger *log.Logger
}

// WithHooks 添加自定义 Hooks
func WithHooks(hooks ...redis.Hook) Option {
	return func(o *clientOptions) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithDebug 启用调试模式（日志记录 + 慢查询检测）
// slowQueryThreshold: 慢查询阈值，0 表示不检测慢查询
func WithDebug(slowQueryThreshold ...time.Duration) Option {
	return func(o *clientOptions) {
		o.enableDebug = true
		if len(slowQueryThreshold) > 0 {
			o.slowQueryThresh = slowQueryThreshold[0]
		}
	}
}

// WithLogger 设置日志记录器，默认使用 log.G
func WithLogger(logger *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

func applyOptions(cfg *Config, opts []Option) *clientOptions {
	o := &clientOptions{
		enableDebug:     cfg.Debug || cfg.SlowThreshold > 0,
		slowQueryThresh: cfg.SlowThreshold,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = log.G
	}
	return o
}
