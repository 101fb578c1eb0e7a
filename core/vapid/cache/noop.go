package cache

import (
	"context"
	"time"
)

// NoopTokenCache 空缓存实现（每次都重新签名）
type NoopTokenCache struct{}

// NewNoopTokenCache 创建空缓存
func NewNoopTokenCache() TokenCache {
	return &NoopTokenCache{}
}

func (n *NoopTokenCache) Get(ctx context.Context, key string) (string, error) {
	return "", ErrTokenNotFound
}

func (n *NoopTokenCache) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	return nil
}
