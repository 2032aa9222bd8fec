package stream

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riven-blade/binance-cex/pkg/binance"
)

const (
	tradeFrame       = `{"e":"trade","E":1672515782136,"s":"BNBBTC","t":12345,"p":"0.001","q":"100","T":1672515782136,"m":true,"M":true}`
	aggTradeFrame    = `{"e":"aggTrade","E":1672515782136,"s":"BNBBTC","a":12345,"p":"0.001","q":"100","f":100,"l":105,"T":1672515782136,"m":true,"M":true}`
	bookTickerFrame  = `{"u":400900217,"s":"BNBUSDT","b":"25.35190000","B":"31.21000000","a":"25.36520000","A":"40.66000000"}`
	futuresBookFrame = `{"e":"bookTicker","u":400900217,"E":1568014460893,"T":1568014460891,"s":"BNBUSDT","b":"25.35190000","B":"31.21000000","a":"25.36520000","A":"40.66000000"}`
	depthFrame       = `{"e":"depthUpdate","E":1672515782136,"s":"BNBBTC","U":157,"u":160,"b":[["0.0024","10"]],"a":[["0.0026","100"]]}`
	partialFrame     = `{"lastUpdateId":160,"bids":[["0.0024","10"]],"asks":[["0.0026","100"]]}`
	klineFrame       = `{"e":"kline","E":1672515782136,"s":"BNBBTC","k":{"t":1672515780000,"T":1672515839999,"s":"BNBBTC","i":"1m","f":100,"L":200,"o":"0.0010","c":"0.0020","h":"0.0025","l":"0.0015","v":"1000","n":100,"x":true,"q":"1.0000","V":"500","Q":"0.500","B":"123456"}}`
	dayTickerFrame   = `{"e":"24hrTicker","E":1672515782136,"s":"BNBBTC","p":"0.0015","P":"250.00","w":"0.0018","x":"0.0009","c":"0.0025","Q":"10","b":"0.0024","B":"10","a":"0.0026","A":"100","o":"0.0010","h":"0.0025","l":"0.0010","v":"10000","q":"18","O":0,"C":86400000,"F":0,"L":18150,"n":18151}`
	windowFrame      = `{"e":"1hTicker","E":1672515782136,"s":"BNBBTC","p":"0.0015","P":"250.00","o":"0.0010","h":"0.0025","l":"0.0010","c":"0.0025","w":"0.0018","v":"10000","q":"18","O":0,"C":1675216573749,"F":0,"L":18150,"n":18151}`
	accountFrame     = `{"e":"outboundAccountPosition","E":1564034571105,"u":1564034571073,"B":[{"a":"ETH","f":"10000.000000","l":"0.000000"}]}`
	balanceFrame     = `{"e":"balanceUpdate","E":1573200697110,"a":"BTC","d":"100.00000000","T":1573200697068}`
	executionFrame   = `{"e":"executionReport","E":1499405658658,"s":"ETHBTC","c":"mUvoqJxFIILMdfAW5iGSOW","S":"BUY","o":"LIMIT","f":"GTC","q":"1.00000000","p":"0.10264410","P":"0.00000000","F":"0.00000000","g":-1,"C":"","x":"NEW","X":"NEW","r":"NONE","i":4293153,"l":"0.00000000","z":"0.00000000","L":"0.00000000","n":"0","N":null,"T":1499405658657,"t":-1,"I":8641984,"w":true,"m":false,"M":true,"O":1499405658657,"Z":"0.00000000","Y":"0.00000000","Q":"0.00000000","W":1499405658657,"V":"NONE"}`
)

func TestDecodeEventShapes(t *testing.T) {
	cases := []struct {
		name  string
		frame string
		kind  EventKind
	}{
		{"account", accountFrame, KindAccountUpdate},
		{"balance", balanceFrame, KindBalanceUpdate},
		{"execution report", executionFrame, KindOrderTrade},
		{"agg trade", aggTradeFrame, KindAggrTrades},
		{"trade", tradeFrame, KindTrade},
		{"partial depth", partialFrame, KindOrderBook},
		{"day ticker", dayTickerFrame, KindDayTicker},
		{"day ticker all", "[" + dayTickerFrame + "]", KindDayTickerAll},
		{"window ticker", windowFrame, KindWindowTicker},
		{"window ticker all", "[" + windowFrame + "," + windowFrame + "]", KindWindowTickerAll},
		{"kline", klineFrame, KindKline},
		{"diff depth", depthFrame, KindDepthOrderBook},
		{"book ticker", bookTickerFrame, KindBookTicker},
		{"futures book ticker", futuresBookFrame, KindBookTicker},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := DecodeEvent([]byte(tc.frame))
			require.NoError(t, err)
			assert.Equal(t, tc.kind, ev.Kind())
		})
	}
}

func TestDecodeEventFields(t *testing.T) {
	ev, err := DecodeEvent([]byte(executionFrame))
	require.NoError(t, err)
	report := ev.(OrderTradeEvent)
	assert.Equal(t, int64(4293153), report.OrderID)
	assert.Equal(t, int64(-1), report.TradeID)
	assert.False(t, report.IsMaker)
	assert.Equal(t, "BUY", report.Side)
	assert.Equal(t, "0.1026441", report.Price.String())
	assert.Empty(t, report.CommissionAsset)

	ev, err = DecodeEvent([]byte(klineFrame))
	require.NoError(t, err)
	k := ev.(KlineEvent).Kline
	assert.True(t, k.IsFinal)
	assert.Equal(t, "1m", k.Interval)
	assert.Equal(t, "500", k.TakerBuyBaseAssetVolume.String())
	assert.Equal(t, "0.5", k.TakerBuyQuoteAssetVolume.String())

	ev, err = DecodeEvent([]byte(depthFrame))
	require.NoError(t, err)
	depth := ev.(DepthOrderBookEvent)
	require.Len(t, depth.Bids, 1)
	assert.Equal(t, "0.0024", depth.Bids[0].Price.String())
	assert.Equal(t, "100", depth.Asks[0].Quantity.String())
	assert.Equal(t, int64(157), depth.FirstUpdateID)
	assert.Equal(t, int64(160), depth.FinalUpdateID)

	ev, err = DecodeEvent([]byte(bookTickerFrame))
	require.NoError(t, err)
	book := ev.(BookTickerEvent)
	assert.Equal(t, "25.3519", book.BidPrice.String())
	assert.Equal(t, "31.21", book.BidQty.String())
}

func TestShapeTrialOrder(t *testing.T) {
	want := []EventKind{
		KindAccountUpdate, KindBalanceUpdate, KindOrderTrade, KindAggrTrades, KindTrade,
		KindOrderBook, KindDayTicker, KindDayTickerAll, KindWindowTicker, KindWindowTickerAll,
		KindKline, KindDepthOrderBook, KindBookTicker,
	}
	got := make([]EventKind, len(shapes))
	for i, s := range shapes {
		got[i] = s.kind
	}
	assert.Equal(t, want, got)
}

func TestFirstMatchWins(t *testing.T) {
	// 同时满足 AggrTrades 和 Trade
	both := `{"e":"trade","E":1,"s":"X","a":1,"t":2,"p":"1","q":"1","f":1,"l":2,"T":1,"m":true}`
	ev, err := DecodeEvent([]byte(both))
	require.NoError(t, err)
	assert.Equal(t, KindAggrTrades, ev.Kind())

	// 24hr ticker 同时满足 WindowTicker
	ev, err = DecodeEvent([]byte(dayTickerFrame))
	require.NoError(t, err)
	assert.Equal(t, KindDayTicker, ev.Kind())

	ev, err = DecodeEvent([]byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, KindDayTickerAll, ev.Kind())
	assert.Empty(t, ev.(DayTickerAll))
}

func TestTypeMismatchFallsThrough(t *testing.T) {
	// 合约 bookTicker 带 e/E/u/B，但 B 是字符串，不能解成 AccountUpdate
	ev, err := DecodeEvent([]byte(futuresBookFrame))
	require.NoError(t, err)
	require.Equal(t, KindBookTicker, ev.Kind())
	assert.Equal(t, int64(400900217), ev.(BookTickerEvent).UpdateID)

	// 字段齐全但类型不对，没有任何形状匹配
	_, err = DecodeEvent([]byte(`{"u":"x","s":"BNBUSDT","b":"1","B":"1","a":"1","A":"1"}`))
	require.Error(t, err)
}

func TestDecodeEventRejects(t *testing.T) {
	for _, frame := range []string{``, `{}`, `{"foo":1}`, `"text"`, `[1,2]`, `{"e":"trade"`, `null`} {
		_, err := DecodeEvent([]byte(frame))
		require.Error(t, err, frame)
		var decodeErr *binance.DecodeError
		assert.True(t, errors.As(err, &decodeErr), frame)
	}
}

func TestDecodeStreamEventPing(t *testing.T) {
	ev, err := DecodeStreamEvent([]byte(`1690000000000`))
	require.NoError(t, err)
	assert.Equal(t, FramePing, ev.Kind)
	assert.Equal(t, int64(1690000000000), ev.Ping)

	ev, err = DecodeStreamEvent([]byte(` {"ping": 42} `))
	require.NoError(t, err)
	assert.Equal(t, FramePing, ev.Kind)
	assert.Equal(t, int64(42), ev.Ping)

	_, err = DecodeStreamEvent([]byte(`{"ping":42,"extra":1}`))
	assert.Error(t, err)
	_, err = DecodeStreamEvent([]byte(`{"ping":null}`))
	assert.Error(t, err)
	_, err = DecodeStreamEvent([]byte(`1.5`))
	assert.Error(t, err)
	_, err = DecodeStreamEvent([]byte(`null`))
	assert.Error(t, err)
}

func TestDecodeStreamEventCombined(t *testing.T) {
	ev, err := DecodeStreamEvent([]byte(`{"stream":"bnbbtc@aggTrade","data":` + aggTradeFrame + `}`))
	require.NoError(t, err)
	require.Equal(t, FrameCombined, ev.Kind)
	assert.Equal(t, "bnbbtc@aggTrade", ev.Combined.Stream)
	assert.Equal(t, KindAggrTrades, ev.Combined.Data.Kind())

	_, err = DecodeStreamEvent([]byte(`{"stream":"bnbbtc@aggTrade","data":{"foo":1}}`))
	assert.Error(t, err)
	_, err = DecodeStreamEvent([]byte(`{"stream":7,"data":` + aggTradeFrame + `}`))
	assert.Error(t, err)
}

func TestDecodeStreamEventRaw(t *testing.T) {
	ev, err := DecodeStreamEvent([]byte(tradeFrame))
	require.NoError(t, err)
	require.Equal(t, FrameRaw, ev.Kind)
	trade := ev.Raw.(TradeEvent)
	assert.Equal(t, int64(12345), trade.TradeID)
	assert.True(t, trade.IsBuyerMaker)
	assert.Equal(t, "raw", ev.Kind.String())
}

func TestIsReconnect(t *testing.T) {
	assert.True(t, IsReconnect(Reconnect))
	assert.Equal(t, KindReconnect, Reconnect.Kind())
	assert.False(t, IsReconnect(TradeEvent{}))
}

func TestUnmarshalIsCaseSensitive(t *testing.T) {
	var ev BookTickerEvent
	require.NoError(t, Unmarshal([]byte(bookTickerFrame), &ev))
	assert.Equal(t, "25.3519", ev.BidPrice.String())
	assert.Equal(t, "31.21", ev.BidQty.String())
	assert.Equal(t, "25.3652", ev.AskPrice.String())
	assert.Equal(t, "40.66", ev.AskQty.String())
}
