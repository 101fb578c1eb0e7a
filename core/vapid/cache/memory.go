package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryTokenCache 进程内缓存
type MemoryTokenCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	token     string
	expiresAt time.Time
}

// MemoryOption 内存缓存选项
type MemoryOption func(*MemoryTokenCache)

// WithClock 设置时钟（测试用）
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryTokenCache) {
		c.now = now
	}
}

// NewMemoryTokenCache 创建内存缓存
func NewMemoryTokenCache(opts ...MemoryOption) *MemoryTokenCache {
	c := &MemoryTokenCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get 获取 token，过期的条目会被顺带删除
func (c *MemoryTokenCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", ErrTokenNotFound
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return "", ErrTokenNotFound
	}
	return e.token, nil
}

// Set 缓存 token
func (c *MemoryTokenCache) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{token: token, expiresAt: c.now().Add(ttl)}
	return nil
}

// Len 返回当前条目数（含未清理的过期条目）
func (c *MemoryTokenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// 确保实现接口
var _ TokenCache = (*MemoryTokenCache)(nil)
