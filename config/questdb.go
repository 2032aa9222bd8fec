package config

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// QuestDBConfig QuestDB 配置，走 PostgreSQL wire 协议
type QuestDBConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Database string `json:"database" yaml:"database"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"-" yaml:"password"`

	// 性能配置
	MaxConnections    int           `json:"maxConnections" yaml:"maxConnections"`
	ConnectionTimeout time.Duration `json:"connectionTimeout" yaml:"connectionTimeout"`
	QueryTimeout      time.Duration `json:"queryTimeout" yaml:"queryTimeout"`

	// 批量写入配置
	BatchSize     int           `json:"batchSize" yaml:"batchSize"`
	FlushInterval time.Duration `json:"flushInterval" yaml:"flushInterval"`
}

// NewQuestDBConfig 创建默认配置
func NewQuestDBConfig() *QuestDBConfig {
	return &QuestDBConfig{
		Host:              "localhost",
		Port:              8812,
		Database:          "qdb",
		Username:          "admin",
		Password:          "quest",
		MaxConnections:    10,
		ConnectionTimeout: 10 * time.Second,
		QueryTimeout:      15 * time.Second,
		BatchSize:         100,
		FlushInterval:     1 * time.Second,
	}
}

// DSN lib/pq 连接串
func (c *QuestDBConfig) DSN() string {
	timeout := int(c.ConnectionTimeout.Seconds())
	if timeout <= 0 {
		timeout = 10
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable connect_timeout=%d",
		c.Host, c.Port, c.Username, c.Password, c.Database, timeout)
}

func (c *QuestDBConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Newf("invalid port %d", c.Port)
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = time.Second
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 10
	}
	return nil
}
