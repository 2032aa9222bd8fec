package stream

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riven-blade/binance-cex/pkg/binance"
)

// DepthLevel 部分深度档位
type DepthLevel int

const (
	Level5  DepthLevel = 5
	Level10 DepthLevel = 10
	Level20 DepthLevel = 20
)

func (l DepthLevel) String() string {
	return strconv.Itoa(int(l))
}

// Valid 只接受 5/10/20
func (l DepthLevel) Valid() bool {
	return l == Level5 || l == Level10 || l == Level20
}

// MarketStream 行情流名称，大小写与交易所要求一致
type MarketStream string

func (s MarketStream) String() string {
	return string(s)
}

// Validate 名称不能为空，部分深度档位只能是 5/10/20
func (s MarketStream) Validate() error {
	name := string(s)
	if strings.TrimSpace(name) == "" {
		return binance.NewValidationError("stream", "stream name is empty")
	}
	for _, part := range strings.Split(name, "@")[1:] {
		digits := strings.TrimPrefix(part, "depth")
		if digits == part || digits == "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		if !DepthLevel(n).Valid() {
			return binance.NewValidationError("stream", fmt.Sprintf("unsupported partial depth level %d in %s", n, name))
		}
	}
	return nil
}

// DiffDepth1s <symbol>@depth
func DiffDepth1s(symbol string) MarketStream {
	return MarketStream(strings.ToLower(symbol) + "@depth")
}

// DiffDepth100ms <symbol>@depth@100ms
func DiffDepth100ms(symbol string) MarketStream {
	return MarketStream(strings.ToLower(symbol) + "@depth@100ms")
}

// PartialBookDepth1s <symbol>@depth<levels>
func PartialBookDepth1s(symbol string, level DepthLevel) MarketStream {
	return MarketStream(strings.ToLower(symbol) + "@depth" + level.String())
}

// PartialBookDepth100ms <symbol>@depth<levels>@100ms
func PartialBookDepth100ms(symbol string, level DepthLevel) MarketStream {
	return MarketStream(strings.ToLower(symbol) + "@depth" + level.String() + "@100ms")
}

// TradeStream <SYMBOL>@trade，交易对保持大写
func TradeStream(symbol string) MarketStream {
	return MarketStream(strings.ToUpper(symbol) + "@trade")
}

func AggTradeStream(symbol string) MarketStream {
	return MarketStream(strings.ToLower(symbol) + "@aggTrade")
}

// KlineStream <symbol>@kline_<interval>，interval 如 1m、1h、1d
func KlineStream(symbol, interval string) MarketStream {
	return MarketStream(strings.ToLower(symbol) + "@kline_" + interval)
}

func BookTickerStream(symbol string) MarketStream {
	return MarketStream(strings.ToLower(symbol) + "@bookTicker")
}

func TickerStream(symbol string) MarketStream {
	return MarketStream(strings.ToLower(symbol) + "@ticker")
}

// AllTickerStream 全市场 24hr ticker 数组
func AllTickerStream() MarketStream {
	return MarketStream("!ticker@arr")
}

// JoinNames 组合流名称，用 / 连接
func JoinNames(streams []MarketStream) string {
	names := make([]string, len(streams))
	for i, s := range streams {
		names[i] = string(s)
	}
	return strings.Join(names, "/")
}

// ParseMarketStream 从配置字符串构造，原样保留大小写
func ParseMarketStream(name string) MarketStream {
	return MarketStream(strings.TrimSpace(name))
}
