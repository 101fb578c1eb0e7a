package cache

import (
	"context"
	"time"
)

// TokenCache VAPID token 缓存接口
type TokenCache interface {
	// Get 获取缓存的 token，不存在时返回 ErrTokenNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set 缓存 token，ttl 到期后自动失效
	Set(ctx context.Context, key, token string, ttl time.Duration) error
}
