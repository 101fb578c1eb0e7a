// Package redis 创建 VAPID token 缓存与推送限流共用的 Redis 客户端
package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/webpush/errors"
	"github.com/kochabx/webpush/log"
)

// Client Redis 统一客户端（支持单机/集群/哨兵模式）
type Client struct {
	client redis.UniversalClient
	config *Config
	logger *log.Logger
}

// New 创建 Redis 客户端并测试连接
// 根据配置自动选择单机/集群/哨兵模式
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil || !cfg.Enabled() {
		return nil, errors.Precondition("redis: addrs cannot be empty")
	}
	cfg.Defaults()

	o := applyOptions(cfg, opts)
	c := &Client{
		client: redis.NewUniversalClient(cfg.universalOptions()),
		config: cfg,
		logger: o.logger,
	}

	if o.enableDebug {
		c.client.AddHook(NewDebugHook(o.logger, o.slowQueryThresh))
	}
	for _, hook := range o.hooks {
		c.client.AddHook(hook)
	}

	if err := c.Ping(ctx); err != nil {
		_ = c.client.Close()
		return nil, err
	}

	c.logger.Debug().
		Strs("addrs", cfg.Addrs).
		Str("mode", c.mode()).
		Msg("redis connected")
	return c, nil
}

// UniversalClient 获取底层客户端
func (c *Client) UniversalClient() redis.UniversalClient {
	return c.client
}

// KeyPrefix 返回配置的 key 前缀
func (c *Client) KeyPrefix() string {
	return c.config.KeyPrefix
}

// Ping 测试连接是否正常
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.UnknownCode, "redis ping failed").
			WithMetadata(map[string]string{"mode": c.mode()})
	}
	return nil
}

// Stats 获取连接池统计信息
func (c *Client) Stats() *redis.PoolStats {
	return c.client.PoolStats()
}

// Close 关闭连接
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) mode() string {
	switch {
	case c.config.IsSentinel():
		return "sentinel"
	case c.config.IsCluster():
		return "cluster"
	default:
		return "single"
	}
}
