package models

import (
	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ========== 行情数据模型 ==========

// PriceLevel 盘口档位，线上格式为 ["price", "qty"]
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

func (p *PriceLevel) UnmarshalJSON(data []byte) error {
	var pair []decimal.Decimal
	if err := json.Unmarshal(data, &pair); err != nil {
		return errors.Wrap(err, "price level")
	}
	if len(pair) != 2 {
		return errors.Newf("price level: expected 2 elements, got %d", len(pair))
	}
	p.Price, p.Quantity = pair[0], pair[1]
	return nil
}

func (p PriceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{p.Price.String(), p.Quantity.String()})
}

// OrderBook 深度快照
type OrderBook struct {
	LastUpdateID int64        `json:"lastUpdateId"`
	Bids         []PriceLevel `json:"bids"`
	Asks         []PriceLevel `json:"asks"`
}

// ServerTime /api/v3/time
type ServerTime struct {
	ServerTime int64 `json:"serverTime"`
}

// SymbolPrice 最新价格
type SymbolPrice struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// AvgPrice 当前平均价格
type AvgPrice struct {
	Mins      int64           `json:"mins"`
	Price     decimal.Decimal `json:"price"`
	CloseTime int64           `json:"closeTime"`
}

// BookTicker 最优挂单
type BookTicker struct {
	Symbol   string          `json:"symbol"`
	BidPrice decimal.Decimal `json:"bidPrice"`
	BidQty   decimal.Decimal `json:"bidQty"`
	AskPrice decimal.Decimal `json:"askPrice"`
	AskQty   decimal.Decimal `json:"askQty"`
}

// PriceStats 24 小时价格统计，MINI 类型时部分字段为空
type PriceStats struct {
	Symbol             string           `json:"symbol"`
	PriceChange        *decimal.Decimal `json:"priceChange,omitempty"`
	PriceChangePercent *decimal.Decimal `json:"priceChangePercent,omitempty"`
	WeightedAvgPrice   *decimal.Decimal `json:"weightedAvgPrice,omitempty"`
	PrevClosePrice     *decimal.Decimal `json:"prevClosePrice,omitempty"`
	LastPrice          decimal.Decimal  `json:"lastPrice"`
	LastQty            *decimal.Decimal `json:"lastQty,omitempty"`
	BidPrice           *decimal.Decimal `json:"bidPrice,omitempty"`
	BidQty             *decimal.Decimal `json:"bidQty,omitempty"`
	AskPrice           *decimal.Decimal `json:"askPrice,omitempty"`
	AskQty             *decimal.Decimal `json:"askQty,omitempty"`
	OpenPrice          decimal.Decimal  `json:"openPrice"`
	HighPrice          decimal.Decimal  `json:"highPrice"`
	LowPrice           decimal.Decimal  `json:"lowPrice"`
	Volume             decimal.Decimal  `json:"volume"`
	QuoteVolume        decimal.Decimal  `json:"quoteVolume"`
	OpenTime           int64            `json:"openTime"`
	CloseTime          int64            `json:"closeTime"`
	FirstID            int64            `json:"firstId"`
	LastID             int64            `json:"lastId"`
	Count              int64            `json:"count"`
}

// AggTrade 归集成交
type AggTrade struct {
	AggTradeID   int64           `json:"a"`
	Price        decimal.Decimal `json:"p"`
	Quantity     decimal.Decimal `json:"q"`
	FirstTradeID int64           `json:"f"`
	LastTradeID  int64           `json:"l"`
	Time         int64           `json:"T"`
	IsBuyerMaker bool            `json:"m"`
	IsBestMatch  bool            `json:"M"`
}

// Trade 近期成交
type Trade struct {
	ID           int64           `json:"id"`
	Price        decimal.Decimal `json:"price"`
	Qty          decimal.Decimal `json:"qty"`
	QuoteQty     decimal.Decimal `json:"quoteQty"`
	Time         int64           `json:"time"`
	IsBuyerMaker bool            `json:"isBuyerMaker"`
	IsBestMatch  bool            `json:"isBestMatch"`
}

// ExchangeInformation 交易规则和交易对信息
type ExchangeInformation struct {
	Timezone   string       `json:"timezone"`
	ServerTime int64        `json:"serverTime"`
	RateLimits []RateLimit  `json:"rateLimits"`
	Symbols    []SymbolInfo `json:"symbols"`
}

// RateLimit 交易所声明的限频规则
type RateLimit struct {
	RateLimitType string `json:"rateLimitType"`
	Interval      string `json:"interval"`
	IntervalNum   int64  `json:"intervalNum"`
	Limit         int64  `json:"limit"`
}

// SymbolInfo 单个交易对规则
type SymbolInfo struct {
	Symbol               string                   `json:"symbol"`
	Status               string                   `json:"status"`
	BaseAsset            string                   `json:"baseAsset"`
	BaseAssetPrecision   int                      `json:"baseAssetPrecision"`
	QuoteAsset           string                   `json:"quoteAsset"`
	QuoteAssetPrecision  int                      `json:"quoteAssetPrecision"`
	OrderTypes           []string                 `json:"orderTypes"`
	IsSpotTradingAllowed bool                     `json:"isSpotTradingAllowed"`
	Permissions          []string                 `json:"permissions"`
	Filters              []map[string]interface{} `json:"filters"`
}

// ========== K线 ==========

// KlineSummary REST K线的一行
type KlineSummary struct {
	OpenTime                 int64
	Open                     decimal.Decimal
	High                     decimal.Decimal
	Low                      decimal.Decimal
	Close                    decimal.Decimal
	Volume                   decimal.Decimal
	CloseTime                int64
	QuoteAssetVolume         decimal.Decimal
	NumberOfTrades           int64
	TakerBuyBaseAssetVolume  decimal.Decimal
	TakerBuyQuoteAssetVolume decimal.Decimal
}

// KlineSummaryFromRow 把 [openTime, "open", ..., "takerBuyQuote", "ignore"] 转为结构体
func KlineSummaryFromRow(row []interface{}) (KlineSummary, error) {
	var k KlineSummary
	if len(row) < 11 {
		return k, errors.Newf("kline row: expected at least 11 columns, got %d", len(row))
	}

	var err error
	if k.OpenTime, err = cast.ToInt64E(row[0]); err != nil {
		return k, errors.Wrap(err, "kline open time")
	}
	if k.CloseTime, err = cast.ToInt64E(row[6]); err != nil {
		return k, errors.Wrap(err, "kline close time")
	}
	if k.NumberOfTrades, err = cast.ToInt64E(row[8]); err != nil {
		return k, errors.Wrap(err, "kline number of trades")
	}

	decimals := []struct {
		idx int
		dst *decimal.Decimal
	}{
		{1, &k.Open}, {2, &k.High}, {3, &k.Low}, {4, &k.Close}, {5, &k.Volume},
		{7, &k.QuoteAssetVolume}, {9, &k.TakerBuyBaseAssetVolume}, {10, &k.TakerBuyQuoteAssetVolume},
	}
	for _, d := range decimals {
		s, err := cast.ToStringE(row[d.idx])
		if err != nil {
			return k, errors.Wrapf(err, "kline column %d", d.idx)
		}
		if *d.dst, err = decimal.NewFromString(s); err != nil {
			return k, errors.Wrapf(err, "kline column %d", d.idx)
		}
	}
	return k, nil
}
