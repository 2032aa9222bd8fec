package binance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type nestedRequest struct {
	Symbol   string
	Limit    *uint64
	Price    *decimal.Decimal
	Reduce   *bool
	Symbols  *OneOrManySymbol
	Base     BaseRequest
	Trailing string
}

func (r nestedRequest) Encode() string {
	q := NewQuery().Add("symbol", r.Symbol).
		OptUint("limit", r.Limit).
		OptDecimal("price", r.Price).
		OptBool("reduceOnly", r.Reduce)
	if r.Symbols != nil {
		q.Merge(r.Symbols)
	}
	return q.Merge(r.Base).AddNonEmpty("trailing", r.Trailing).String()
}

func TestEncodeOmitsAbsentFields(t *testing.T) {
	r := nestedRequest{Symbol: "BTCUSDT", Base: BaseRequest{Timestamp: 42}}
	assert.Equal(t, "symbol=BTCUSDT&timestamp=42", r.Encode())
}

func TestEncodeKeepsDeclaredOrder(t *testing.T) {
	price := decimal.RequireFromString("50000.10")
	r := nestedRequest{
		Symbol: "BTCUSDT",
		Limit:  Ptr[uint64](100),
		Price:  &price,
		Reduce: Ptr(true),
		Base:   BaseRequest{Timestamp: 42}.WithRecvWindow(5000),
	}
	assert.Equal(t, "symbol=BTCUSDT&limit=100&price=50000.1&reduceOnly=true&recvWindow=5000&timestamp=42", r.Encode())
}

func TestEncodeDeterministic(t *testing.T) {
	r := nestedRequest{
		Symbol:  "ETHUSDT",
		Symbols: ManySymbols("BTCUSDT", "ETHUSDT"),
		Base:    BaseRequest{Timestamp: 1}.WithRecvWindow(10),
	}
	first := r.Encode()
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, r.Encode())
	}
}

func TestOneOrManySymbolEncoding(t *testing.T) {
	assert.Equal(t, "symbol=BTCUSDT", NewQuery().Merge(OneSymbol("BTCUSDT")).String())
	assert.Equal(t, "symbols=%5B%22BTCUSDT%22%2C%22BNBUSDT%22%5D",
		NewQuery().Merge(ManySymbols("BTCUSDT", "BNBUSDT")).String())
	assert.Equal(t, "symbols=%5B%22BTCUSDT%22%5D", NewQuery().Merge(ManySymbols("BTCUSDT")).String())
}

func TestBaseRequestStampsTimestamp(t *testing.T) {
	before := NowMillis()
	b := NewBaseRequest()
	after := NowMillis()

	assert.GreaterOrEqual(t, b.Timestamp, before)
	assert.LessOrEqual(t, b.Timestamp, after)
	assert.Nil(t, b.RecvWindow)
	assert.Equal(t, "recvWindow=30&timestamp=7", BaseRequest{Timestamp: 7}.WithRecvWindow(30).Encode())
}

func TestQueryEscapesValues(t *testing.T) {
	q := NewQuery().Add("newClientOrderId", "a b&c=d")
	assert.Equal(t, "newClientOrderId=a+b%26c%3Dd", q.String())
	assert.Equal(t, 1, q.Len())
}
