package endpoints

// ========== 公共枚举 ==========

type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
	// 仅合约
	TimeInForceGTD TimeInForce = "GTD"
	TimeInForceGTX TimeInForce = "GTX"
)

type ResponseType string

const (
	ResponseAck    ResponseType = "ACK"
	ResponseResult ResponseType = "RESULT"
	ResponseFull   ResponseType = "FULL"
)

type SelfTradePreventionMode string

const (
	STPNone        SelfTradePreventionMode = "NONE"
	STPExpireTaker SelfTradePreventionMode = "EXPIRE_TAKER"
	STPExpireMaker SelfTradePreventionMode = "EXPIRE_MAKER"
	STPExpireBoth  SelfTradePreventionMode = "EXPIRE_BOTH"
)

// KlineInterval K线周期
type KlineInterval string

const (
	Interval1s  KlineInterval = "1s"
	Interval1m  KlineInterval = "1m"
	Interval3m  KlineInterval = "3m"
	Interval5m  KlineInterval = "5m"
	Interval15m KlineInterval = "15m"
	Interval30m KlineInterval = "30m"
	Interval1h  KlineInterval = "1h"
	Interval2h  KlineInterval = "2h"
	Interval4h  KlineInterval = "4h"
	Interval6h  KlineInterval = "6h"
	Interval8h  KlineInterval = "8h"
	Interval12h KlineInterval = "12h"
	Interval1d  KlineInterval = "1d"
	Interval3d  KlineInterval = "3d"
	Interval1w  KlineInterval = "1w"
	Interval1M  KlineInterval = "1M"
)

// Ticker24hType 24hr 统计返回粒度
type Ticker24hType string

const (
	Ticker24hFull Ticker24hType = "FULL"
	Ticker24hMini Ticker24hType = "MINI"
)
