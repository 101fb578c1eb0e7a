package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/webpush/core/vapid/cache"
)

// TokenCache Redis token 缓存，多个发送实例可共享签名结果
type TokenCache struct {
	client    redis.UniversalClient
	keyPrefix string // "vapid:token:"
}

// Option 选项
type Option func(*TokenCache)

// WithKeyPrefix 设置 key 前缀
func WithKeyPrefix(prefix string) Option {
	return func(c *TokenCache) {
		c.keyPrefix = prefix
	}
}

// NewTokenCache 创建 Redis token 缓存
func NewTokenCache(client redis.UniversalClient, opts ...Option) *TokenCache {
	c := &TokenCache{
		client:    client,
		keyPrefix: "vapid:token:",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get 获取 token
func (c *TokenCache) Get(ctx context.Context, key string) (string, error) {
	token, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", cache.ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// Set 缓存 token
func (c *TokenCache) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // 已过期的 token 不需要缓存
	}
	return c.client.Set(ctx, c.keyPrefix+key, token, ttl).Err()
}

// 确保实现接口
var _ cache.TokenCache = (*TokenCache)(nil)
