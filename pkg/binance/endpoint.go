package binance

import "net/http"

// SecurityType 接口鉴权等级
type SecurityType int

const (
	SecurityNone SecurityType = iota
	SecurityTrade
	SecurityMargin
	SecurityUserData
	SecurityUserStream
	SecurityMarketData
)

func (s SecurityType) String() string {
	switch s {
	case SecurityNone:
		return "None"
	case SecurityTrade:
		return "Trade"
	case SecurityMargin:
		return "Margin"
	case SecurityUserData:
		return "UserData"
	case SecurityUserStream:
		return "UserStream"
	case SecurityMarketData:
		return "MarketData"
	default:
		return "Unknown"
	}
}

// Signed 是否需要 HMAC 签名
func (s SecurityType) Signed() bool {
	return s == SecurityTrade || s == SecurityMargin || s == SecurityUserData
}

// KeyOnly 只携带 X-MBX-APIKEY 不签名
func (s SecurityType) KeyOnly() bool {
	return s == SecurityUserStream || s == SecurityMarketData
}

// Endpoint 把一个逻辑操作映射到 (method, tier, path)
type Endpoint interface {
	ActionParams() (method string, security SecurityType, path string)
}

// EndpointDescriptor 不属于任何目录的临时端点
type EndpointDescriptor struct {
	Method   string
	Security SecurityType
	Path     string
}

func (d EndpointDescriptor) ActionParams() (string, SecurityType, string) {
	return d.Method, d.Security, d.Path
}

// Get 构造 GET 描述
func Get(security SecurityType, path string) EndpointDescriptor {
	return EndpointDescriptor{Method: http.MethodGet, Security: security, Path: path}
}

// Post 构造 POST 描述
func Post(security SecurityType, path string) EndpointDescriptor {
	return EndpointDescriptor{Method: http.MethodPost, Security: security, Path: path}
}
