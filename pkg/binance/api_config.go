package binance

import "github.com/cockroachdb/errors"

const (
	DefaultRecvWindow = 5000 // 毫秒
	MaxRecvWindow     = 60000

	DefaultUserAgent = "binance-cex"
)

// APIConfig REST 与 WebSocket 入口地址，显式传给构造函数
type APIConfig struct {
	RestAPIEndpoint        string `yaml:"rest_api_endpoint" json:"rest_api_endpoint" mapstructure:"rest_api_endpoint"`
	WsEndpoint             string `yaml:"ws_endpoint" json:"ws_endpoint" mapstructure:"ws_endpoint"`
	FuturesRestAPIEndpoint string `yaml:"futures_rest_api_endpoint" json:"futures_rest_api_endpoint" mapstructure:"futures_rest_api_endpoint"`
	FuturesWsEndpoint      string `yaml:"futures_ws_endpoint" json:"futures_ws_endpoint" mapstructure:"futures_ws_endpoint"`
	RecvWindow             uint64 `yaml:"recv_window" json:"recv_window" mapstructure:"recv_window"`
}

// MainnetConfig 主网地址
func MainnetConfig() APIConfig {
	return APIConfig{
		RestAPIEndpoint:        "https://api.binance.com",
		WsEndpoint:             "wss://stream.binance.com:9443",
		FuturesRestAPIEndpoint: "https://fapi.binance.com",
		FuturesWsEndpoint:      "wss://fstream.binance.com",
		RecvWindow:             DefaultRecvWindow,
	}
}

// TestnetConfig 测试网地址
func TestnetConfig() APIConfig {
	return APIConfig{
		RestAPIEndpoint:        "https://testnet.binance.vision",
		WsEndpoint:             "wss://testnet.binance.vision",
		FuturesRestAPIEndpoint: "https://testnet.binancefuture.com",
		FuturesWsEndpoint:      "wss://stream.binancefuture.com",
		RecvWindow:             DefaultRecvWindow,
	}
}

// Validate 验证配置
func (c APIConfig) Validate() error {
	if c.RestAPIEndpoint == "" {
		return errors.New("rest_api_endpoint is required")
	}
	if c.WsEndpoint == "" {
		return errors.New("ws_endpoint is required")
	}
	if c.RecvWindow > MaxRecvWindow {
		return errors.Newf("recv_window cannot exceed %dms", MaxRecvWindow)
	}
	return nil
}
