package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/riven-blade/binance-cex/pkg/binance"
	"github.com/riven-blade/binance-cex/pkg/logger"
)

// =============================================================================
// 常量定义
// =============================================================================

const (
	DefaultAppName   = "binance-cex"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	// 录制器重连退避
	DefaultInitialBackoff = 1 * time.Second
	DefaultMaxBackoff     = 30 * time.Second
)

// Network 交易所网络
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// 环境变量
const (
	EnvConfigPath = "BINANCE_CEX_CONFIG"
	EnvAPIKey     = "BINANCE_API_KEY"
	EnvSecretKey  = "BINANCE_SECRET_KEY"
	EnvNetwork    = "BINANCE_NETWORK"
	EnvRecvWindow = "BINANCE_RECV_WINDOW"
	EnvStreams    = "BINANCE_STREAMS"
)

// =============================================================================
// 核心配置
// =============================================================================
type Config struct {
	Name string         `yaml:"name" json:"name"` // 服务名称
	Log  *logger.Config `yaml:"log" json:"log"`

	Binance *BinanceConfig `yaml:"binance" json:"binance"`

	// 组合流订阅，如 btcusdt@depth、BTCUSDT@trade
	Streams []string `yaml:"streams" json:"streams"`

	Recorder *RecorderConfig `yaml:"recorder" json:"recorder"`
	Storage  *StorageConfig  `yaml:"storage" json:"storage"`
}

// BinanceConfig 凭证与入口地址，地址为空时使用 Network 对应的默认值
type BinanceConfig struct {
	Network    Network `yaml:"network" json:"network"`
	APIKey     string  `yaml:"api_key" json:"-"`
	SecretKey  string  `yaml:"secret_key" json:"-"`
	RecvWindow uint64  `yaml:"recv_window" json:"recv_window"`

	RestAPIEndpoint        string `yaml:"rest_api_endpoint" json:"rest_api_endpoint"`
	WsEndpoint             string `yaml:"ws_endpoint" json:"ws_endpoint"`
	FuturesRestAPIEndpoint string `yaml:"futures_rest_api_endpoint" json:"futures_rest_api_endpoint"`
	FuturesWsEndpoint      string `yaml:"futures_ws_endpoint" json:"futures_ws_endpoint"`
}

// RecorderConfig 重连退避
type RecorderConfig struct {
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" json:"max_backoff"`
}

// StorageConfig 存储配置，未配置的存储不启用
type StorageConfig struct {
	Redis   *RedisConfig   `yaml:"redis" json:"redis"`
	QuestDB *QuestDBConfig `yaml:"questdb" json:"questdb"`
}

// =============================================================================
// 默认配置和构造函数
// =============================================================================

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Name: DefaultAppName,
		Log: &logger.Config{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Binance: &BinanceConfig{
			Network:    NetworkMainnet,
			RecvWindow: binance.DefaultRecvWindow,
		},
		Recorder: &RecorderConfig{
			InitialBackoff: DefaultInitialBackoff,
			MaxBackoff:     DefaultMaxBackoff,
		},
		Storage: &StorageConfig{},
	}
}

// LoadConfig 依次读取 YAML 文件、.env 文件、环境变量
// path 不存在时使用默认配置
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "failed to parse config %s", path)
			}
		case os.IsNotExist(err):
		default:
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		}
	}

	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// =============================================================================
// 环境变量覆盖
// =============================================================================

type envOverrides struct {
	APIKey     *string  `mapstructure:"api_key"`
	SecretKey  *string  `mapstructure:"secret_key"`
	Network    *string  `mapstructure:"network"`
	RecvWindow *uint64  `mapstructure:"recv_window"`
	Streams    []string `mapstructure:"streams"`
}

// ApplyEnv 用环境变量覆盖配置，数值与列表按弱类型转换
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	raw := make(map[string]interface{})
	for key, env := range map[string]string{
		"api_key":     EnvAPIKey,
		"secret_key":  EnvSecretKey,
		"network":     EnvNetwork,
		"recv_window": EnvRecvWindow,
		"streams":     EnvStreams,
	} {
		if v, ok := lookup(env); ok && v != "" {
			raw[key] = v
		}
	}
	if len(raw) == 0 {
		return nil
	}

	var o envOverrides
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           &o,
	})
	if err != nil {
		return errors.Wrap(err, "failed to build env decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return errors.Wrap(err, "invalid environment override")
	}

	if c.Binance == nil {
		c.Binance = &BinanceConfig{Network: NetworkMainnet}
	}
	if o.APIKey != nil {
		c.Binance.APIKey = *o.APIKey
	}
	if o.SecretKey != nil {
		c.Binance.SecretKey = *o.SecretKey
	}
	if o.Network != nil {
		c.Binance.Network = Network(strings.ToLower(*o.Network))
	}
	if o.RecvWindow != nil {
		c.Binance.RecvWindow = *o.RecvWindow
	}
	if len(o.Streams) > 0 {
		c.Streams = nil
		for _, s := range o.Streams {
			if s = strings.TrimSpace(s); s != "" {
				c.Streams = append(c.Streams, s)
			}
		}
	}
	return nil
}

// =============================================================================
// 配置验证和工具方法
// =============================================================================

// Validate 补齐缺省值并检查取值范围
func (c *Config) Validate() error {
	if c.Name == "" {
		c.Name = DefaultAppName
	}
	if c.Log == nil {
		c.Log = &logger.Config{Level: DefaultLogLevel, Format: DefaultLogFormat}
	}
	if c.Binance == nil {
		c.Binance = &BinanceConfig{Network: NetworkMainnet}
	}
	if c.Binance.Network == "" {
		c.Binance.Network = NetworkMainnet
	}
	if c.Binance.Network != NetworkMainnet && c.Binance.Network != NetworkTestnet {
		return errors.Newf("unknown network %q, expected mainnet or testnet", c.Binance.Network)
	}
	if c.Binance.RecvWindow == 0 {
		c.Binance.RecvWindow = binance.DefaultRecvWindow
	}
	if c.Binance.RecvWindow > binance.MaxRecvWindow {
		return errors.Newf("recv_window cannot exceed %dms", binance.MaxRecvWindow)
	}
	for i, s := range c.Streams {
		if strings.TrimSpace(s) == "" {
			return errors.Newf("streams[%d] is empty", i)
		}
	}

	if c.Recorder == nil {
		c.Recorder = &RecorderConfig{}
	}
	if c.Recorder.InitialBackoff <= 0 {
		c.Recorder.InitialBackoff = DefaultInitialBackoff
	}
	if c.Recorder.MaxBackoff < c.Recorder.InitialBackoff {
		c.Recorder.MaxBackoff = DefaultMaxBackoff
	}

	if c.Storage == nil {
		c.Storage = &StorageConfig{}
	}
	if c.Storage.Redis != nil {
		if err := c.Storage.Redis.Validate(); err != nil {
			return errors.Wrap(err, "storage.redis")
		}
	}
	if c.Storage.QuestDB != nil {
		if err := c.Storage.QuestDB.Validate(); err != nil {
			return errors.Wrap(err, "storage.questdb")
		}
	}
	return nil
}

// APIConfig 把 Network 解析为入口地址，并应用覆盖项
func (c *Config) APIConfig() binance.APIConfig {
	api := binance.MainnetConfig()
	if c.Binance == nil {
		return api
	}
	if c.Binance.Network == NetworkTestnet {
		api = binance.TestnetConfig()
	}
	if c.Binance.RestAPIEndpoint != "" {
		api.RestAPIEndpoint = c.Binance.RestAPIEndpoint
	}
	if c.Binance.WsEndpoint != "" {
		api.WsEndpoint = c.Binance.WsEndpoint
	}
	if c.Binance.FuturesRestAPIEndpoint != "" {
		api.FuturesRestAPIEndpoint = c.Binance.FuturesRestAPIEndpoint
	}
	if c.Binance.FuturesWsEndpoint != "" {
		api.FuturesWsEndpoint = c.Binance.FuturesWsEndpoint
	}
	if c.Binance.RecvWindow != 0 {
		api.RecvWindow = c.Binance.RecvWindow
	}
	return api
}

// Clone 深拷贝
func (c *Config) Clone() *Config {
	out := *c
	if c.Log != nil {
		l := *c.Log
		out.Log = &l
	}
	if c.Binance != nil {
		b := *c.Binance
		out.Binance = &b
	}
	if c.Streams != nil {
		out.Streams = append([]string(nil), c.Streams...)
	}
	if c.Recorder != nil {
		r := *c.Recorder
		out.Recorder = &r
	}
	if c.Storage != nil {
		s := StorageConfig{}
		if c.Storage.Redis != nil {
			r := *c.Storage.Redis
			s.Redis = &r
		}
		if c.Storage.QuestDB != nil {
			q := *c.Storage.QuestDB
			s.QuestDB = &q
		}
		out.Storage = &s
	}
	return &out
}
