package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamNames(t *testing.T) {
	cases := []struct {
		got  MarketStream
		want string
	}{
		{DiffDepth1s("BNBbtc"), "bnbbtc@depth"},
		{DiffDepth100ms("BNBBTC"), "bnbbtc@depth@100ms"},
		{PartialBookDepth1s("BNBBTC", Level5), "bnbbtc@depth5"},
		{PartialBookDepth1s("BNBBTC", Level10), "bnbbtc@depth10"},
		{PartialBookDepth100ms("BNBBTC", Level20), "bnbbtc@depth20@100ms"},
		{TradeStream("bnbbtc"), "BNBBTC@trade"},
		{AggTradeStream("BTCUSDT"), "btcusdt@aggTrade"},
		{KlineStream("BTCUSDT", "1m"), "btcusdt@kline_1m"},
		{BookTickerStream("BTCUSDT"), "btcusdt@bookTicker"},
		{TickerStream("BTCUSDT"), "btcusdt@ticker"},
		{AllTickerStream(), "!ticker@arr"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.got.String())
	}
}

func TestDepthLevel(t *testing.T) {
	assert.True(t, Level5.Valid())
	assert.True(t, Level20.Valid())
	assert.False(t, DepthLevel(15).Valid())
	assert.Equal(t, "10", Level10.String())
}

func TestMarketStreamValidate(t *testing.T) {
	valid := []MarketStream{
		PartialBookDepth1s("BNBBTC", Level5),
		PartialBookDepth100ms("BNBBTC", Level20),
		DiffDepth1s("BNBBTC"),
		DiffDepth100ms("BNBBTC"),
		KlineStream("BTCUSDT", "1m"),
		AllTickerStream(),
	}
	for _, s := range valid {
		assert.NoError(t, s.Validate(), s.String())
	}

	invalid := []MarketStream{
		PartialBookDepth1s("BNBBTC", DepthLevel(15)),
		PartialBookDepth100ms("BNBBTC", DepthLevel(0)),
		ParseMarketStream("btcusdt@depth50@100ms"),
		ParseMarketStream(""),
	}
	for _, s := range invalid {
		assert.Error(t, s.Validate(), s.String())
	}
}

func TestJoinNames(t *testing.T) {
	joined := JoinNames([]MarketStream{DiffDepth1s("BTCUSDT"), TradeStream("btcusdt")})
	assert.Equal(t, "btcusdt@depth/BTCUSDT@trade", joined)
	assert.Equal(t, "", JoinNames(nil))
	assert.Equal(t, MarketStream("ethusdt@trade"), ParseMarketStream("  ethusdt@trade "))
}
