package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Config Redis 统一配置（支持单机/集群/哨兵模式）
type Config struct {
	// Addrs Redis 地址列表，为空表示不使用 redis
	// 单机模式: ["localhost:6379"]
	// 集群模式: ["node1:6379", "node2:6379", "node3:6379"]
	// 哨兵模式: ["sentinel1:26379", "sentinel2:26379"]
	Addrs []string `json:"addrs" mapstructure:"addrs" validate:"dive,hostname_port"`

	// MasterName 哨兵模式的主节点名称
	MasterName string `json:"master_name" mapstructure:"master_name"`

	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`

	// DB 数据库索引，集群模式忽略
	DB int `json:"db" mapstructure:"db" validate:"gte=0"`

	// KeyPrefix token 缓存与限流 key 的公共前缀
	KeyPrefix string `json:"key_prefix" mapstructure:"key_prefix"`

	DialTimeout  time.Duration `json:"dial_timeout" mapstructure:"dial_timeout" validate:"gte=0"`
	ReadTimeout  time.Duration `json:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `json:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"`

	// PoolSize 0 表示使用 go-redis 默认值: 10 * runtime.GOMAXPROCS
	PoolSize int `json:"pool_size" mapstructure:"pool_size" validate:"gte=0"`

	// MaxRetries -1 禁用重试，0 使用默认值 3
	MaxRetries int `json:"max_retries" mapstructure:"max_retries" validate:"gte=-1"`

	// Debug 记录每条命令；SlowThreshold 大于 0 时记录慢查询
	Debug         bool          `json:"debug" mapstructure:"debug"`
	SlowThreshold time.Duration `json:"slow_threshold" mapstructure:"slow_threshold" validate:"gte=0"`
}

// Defaults 应用默认值
func (c *Config) Defaults() {
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
}

// Enabled 是否配置了 redis
func (c *Config) Enabled() bool {
	return len(c.Addrs) > 0
}

// IsSentinel 判断是否为哨兵模式
func (c *Config) IsSentinel() bool {
	return c.MasterName != ""
}

// IsCluster 判断是否为集群模式
func (c *Config) IsCluster() bool {
	return len(c.Addrs) > 1 && c.MasterName == ""
}

// IsSingle 判断是否为单机模式
func (c *Config) IsSingle() bool {
	return len(c.Addrs) == 1 && c.MasterName == ""
}

// Single 创建单机模式配置
func Single(addr string) *Config {
	return &Config{Addrs: []string{addr}}
}

// Cluster 创建集群模式配置
func Cluster(addrs ...string) *Config {
	return &Config{Addrs: addrs}
}

// Sentinel 创建哨兵模式配置
func Sentinel(masterName string, addrs ...string) *Config {
	return &Config{Addrs: addrs, MasterName: masterName}
}

// universalOptions go-redis 根据 MasterName 与地址数量选择客户端类型
func (c *Config) universalOptions() *redis.UniversalOptions {
	return &redis.UniversalOptions{
		Addrs:        c.Addrs,
		MasterName:   c.MasterName,
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		PoolSize:     c.PoolSize,
		MaxRetries:   c.MaxRetries,
	}
}
