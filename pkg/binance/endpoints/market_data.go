package endpoints

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/riven-blade/binance-cex/pkg/binance"
	"github.com/riven-blade/binance-cex/pkg/binance/models"
)

// MarketDataEP 现货行情接口
type MarketDataEP int

const (
	MarketDataPing MarketDataEP = iota
	MarketDataTime
	MarketDataExchangeInfo
	MarketDataOrderBook
	MarketDataPriceTicker
	MarketDataAvgPrice
	MarketDataSymbolOrderBookTicker
	MarketDataTicker24hr
	MarketDataAggTrades
	MarketDataKlines
	MarketDataTrades
	MarketDataHistoricalTrades
)

var marketDataPaths = map[MarketDataEP]string{
	MarketDataPing:                  "/api/v3/ping",
	MarketDataTime:                  "/api/v3/time",
	MarketDataExchangeInfo:          "/api/v3/exchangeInfo",
	MarketDataOrderBook:             "/api/v3/depth",
	MarketDataPriceTicker:           "/api/v3/ticker/price",
	MarketDataAvgPrice:              "/api/v3/avgPrice",
	MarketDataSymbolOrderBookTicker: "/api/v3/ticker/bookTicker",
	MarketDataTicker24hr:            "/api/v3/ticker/24hr",
	MarketDataAggTrades:             "/api/v3/aggTrades",
	MarketDataKlines:                "/api/v3/klines",
	MarketDataTrades:                "/api/v3/trades",
	MarketDataHistoricalTrades:      "/api/v3/historicalTrades",
}

func (ep MarketDataEP) String() string {
	return marketDataPaths[ep]
}

func (ep MarketDataEP) ActionParams() (string, binance.SecurityType, string) {
	if ep == MarketDataHistoricalTrades {
		return http.MethodGet, binance.SecurityMarketData, ep.String()
	}
	return http.MethodGet, binance.SecurityNone, ep.String()
}

// ========== 请求 ==========

type ExchangeInfoRequest struct {
	Symbols     *binance.OneOrManySymbol
	Permissions string
}

func (r ExchangeInfoRequest) Encode() string {
	q := binance.NewQuery()
	if r.Symbols != nil {
		q.Merge(r.Symbols)
	}
	return q.AddNonEmpty("permissions", r.Permissions).String()
}

type OrderBookRequest struct {
	Symbol string
	Limit  *uint64
}

func (r OrderBookRequest) Encode() string {
	return binance.NewQuery().Add("symbol", r.Symbol).OptUint("limit", r.Limit).String()
}

// PriceTickerRequest Symbols 为空时返回全部交易对
type PriceTickerRequest struct {
	Symbols *binance.OneOrManySymbol
}

func (r PriceTickerRequest) Encode() string {
	if r.Symbols == nil {
		return ""
	}
	return binance.NewQuery().Merge(r.Symbols).String()
}

type AvgPriceRequest struct {
	Symbol string
}

func (r AvgPriceRequest) Encode() string {
	return binance.NewQuery().Add("symbol", r.Symbol).String()
}

type BookTickerRequest struct {
	Symbols *binance.OneOrManySymbol
}

func (r BookTickerRequest) Encode() string {
	if r.Symbols == nil {
		return ""
	}
	return binance.NewQuery().Merge(r.Symbols).String()
}

type Ticker24hRequest struct {
	Symbols *binance.OneOrManySymbol
	Type    Ticker24hType
}

func (r Ticker24hRequest) Encode() string {
	q := binance.NewQuery()
	if r.Symbols != nil {
		q.Merge(r.Symbols)
	}
	return q.AddNonEmpty("type", string(r.Type)).String()
}

type KlinesRequest struct {
	Symbol    string
	Interval  KlineInterval
	StartTime *uint64
	EndTime   *uint64
	TimeZone  *string
	Limit     *uint64
}

func (r KlinesRequest) Encode() string {
	return binance.NewQuery().
		Add("symbol", r.Symbol).
		Add("interval", string(r.Interval)).
		OptUint("startTime", r.StartTime).
		OptUint("endTime", r.EndTime).
		OptString("timeZone", r.TimeZone).
		OptUint("limit", r.Limit).
		String()
}

func (r KlinesRequest) Validate() error {
	if r.Limit != nil && (*r.Limit == 0 || *r.Limit > 1000) {
		return binance.NewValidationError("limit", "klines limit must be within 1..1000")
	}
	return nil
}

type AggTradesRequest struct {
	Symbol    string
	FromID    *uint64
	StartTime *uint64
	EndTime   *uint64
	Limit     *uint64
}

func (r AggTradesRequest) Encode() string {
	return binance.NewQuery().
		Add("symbol", r.Symbol).
		OptUint("fromId", r.FromID).
		OptUint("startTime", r.StartTime).
		OptUint("endTime", r.EndTime).
		OptUint("limit", r.Limit).
		String()
}

type TradesRequest struct {
	Symbol string
	Limit  *uint64
}

func (r TradesRequest) Encode() string {
	return binance.NewQuery().Add("symbol", r.Symbol).OptUint("limit", r.Limit).String()
}

type HistoricalTradesRequest struct {
	Symbol string
	Limit  *uint64
	FromID *uint64
}

func (r HistoricalTradesRequest) Encode() string {
	return binance.NewQuery().
		Add("symbol", r.Symbol).
		OptUint("limit", r.Limit).
		OptUint("fromId", r.FromID).
		String()
}

// ========== 服务 ==========

// MarketData 现货行情接口集合
type MarketData struct {
	client *binance.Client
}

func NewMarketData(client *binance.Client) *MarketData {
	return &MarketData{client: client}
}

// Ping 测试连通性
func (m *MarketData) Ping(ctx context.Context) error {
	_, err := binance.Call[struct{}](ctx, m.client, MarketDataPing, nil)
	return err
}

// ServerTime 服务器时间（毫秒）
func (m *MarketData) ServerTime(ctx context.Context) (int64, error) {
	resp, err := binance.Call[models.ServerTime](ctx, m.client, MarketDataTime, nil)
	if err != nil {
		return 0, err
	}
	return resp.ServerTime, nil
}

func (m *MarketData) ExchangeInfo(ctx context.Context, req ExchangeInfoRequest) (models.ExchangeInformation, error) {
	return binance.Call[models.ExchangeInformation](ctx, m.client, MarketDataExchangeInfo, req)
}

func (m *MarketData) OrderBook(ctx context.Context, req OrderBookRequest) (models.OrderBook, error) {
	return binance.Call[models.OrderBook](ctx, m.client, MarketDataOrderBook, req)
}

// PriceTicker 单个交易对返回对象，多个或全部返回数组
func (m *MarketData) PriceTicker(ctx context.Context, req PriceTickerRequest) ([]models.SymbolPrice, error) {
	resp, err := binance.Call[binance.OneOrMany[models.SymbolPrice]](ctx, m.client, MarketDataPriceTicker, req)
	if err != nil {
		return nil, err
	}
	return resp.Items(), nil
}

func (m *MarketData) AvgPrice(ctx context.Context, req AvgPriceRequest) (models.AvgPrice, error) {
	return binance.Call[models.AvgPrice](ctx, m.client, MarketDataAvgPrice, req)
}

func (m *MarketData) BookTicker(ctx context.Context, req BookTickerRequest) ([]models.BookTicker, error) {
	resp, err := binance.Call[binance.OneOrMany[models.BookTicker]](ctx, m.client, MarketDataSymbolOrderBookTicker, req)
	if err != nil {
		return nil, err
	}
	return resp.Items(), nil
}

func (m *MarketData) Ticker24h(ctx context.Context, req Ticker24hRequest) ([]models.PriceStats, error) {
	resp, err := binance.Call[binance.OneOrMany[models.PriceStats]](ctx, m.client, MarketDataTicker24hr, req)
	if err != nil {
		return nil, err
	}
	return resp.Items(), nil
}

func (m *MarketData) AggTrades(ctx context.Context, req AggTradesRequest) ([]models.AggTrade, error) {
	return binance.Call[[]models.AggTrade](ctx, m.client, MarketDataAggTrades, req)
}

// Klines 返回的每一行是异构数组，逐行转换
func (m *MarketData) Klines(ctx context.Context, req KlinesRequest) ([]models.KlineSummary, error) {
	rows, err := binance.Call[[][]interface{}](ctx, m.client, MarketDataKlines, req)
	if err != nil {
		return nil, err
	}
	klines := make([]models.KlineSummary, 0, len(rows))
	for i, row := range rows {
		k, err := models.KlineSummaryFromRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "kline row %d", i)
		}
		klines = append(klines, k)
	}
	return klines, nil
}

func (m *MarketData) Trades(ctx context.Context, req TradesRequest) ([]models.Trade, error) {
	return binance.Call[[]models.Trade](ctx, m.client, MarketDataTrades, req)
}

func (m *MarketData) HistoricalTrades(ctx context.Context, req HistoricalTradesRequest) ([]models.Trade, error) {
	return binance.Call[[]models.Trade](ctx, m.client, MarketDataHistoricalTrades, req)
}
