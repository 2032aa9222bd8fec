package config

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// RedisConfig Redis连接配置
type RedisConfig struct {
	Host              string        `yaml:"host" json:"host"`                             // 主机地址
	Port              int           `yaml:"port" json:"port"`                             // 端口
	Password          string        `yaml:"password" json:"-"`                            // 密码 (可选)
	Database          int           `yaml:"database" json:"database"`                     // 数据库编号 (0-15)
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`               // 最大重试次数
	PoolSize          int           `yaml:"pool_size" json:"pool_size"`                   // 连接池大小
	ConnectionTimeout time.Duration `yaml:"connection_timeout" json:"connection_timeout"` // 连接超时
	QueryTimeout      time.Duration `yaml:"query_timeout" json:"query_timeout"`           // 读写超时

	// 发布频道为 <key_prefix>:<stream>
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`
	// 最新 bookTicker 的过期时间，0 表示不过期
	LatestTTL time.Duration `yaml:"latest_ttl" json:"latest_ttl"`
}

// NewRedisConfig 创建默认Redis配置
func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:              "localhost",
		Port:              6379,
		Password:          "",
		Database:          0,
		MaxRetries:        3,
		PoolSize:          10,
		ConnectionTimeout: 10 * time.Second,
		QueryTimeout:      30 * time.Second,
		KeyPrefix:         "binance",
		LatestTTL:         5 * time.Minute,
	}
}

// Addr host:port
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *RedisConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Newf("invalid port %d", c.Port)
	}
	if c.Database < 0 || c.Database > 15 {
		return errors.Newf("invalid database %d", c.Database)
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "binance"
	}
	return nil
}
