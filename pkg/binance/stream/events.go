package stream

import (
	"github.com/shopspring/decimal"

	"github.com/riven-blade/binance-cex/pkg/binance/models"
)

// EventKind 事件类别，与分类顺序一一对应
type EventKind string

const (
	KindAccountUpdate   EventKind = "AccountUpdate"
	KindBalanceUpdate   EventKind = "BalanceUpdate"
	KindOrderTrade      EventKind = "OrderTrade"
	KindAggrTrades      EventKind = "AggrTrades"
	KindTrade           EventKind = "Trade"
	KindOrderBook       EventKind = "OrderBook"
	KindDayTicker       EventKind = "DayTicker"
	KindDayTickerAll    EventKind = "DayTickerAll"
	KindWindowTicker    EventKind = "WindowTicker"
	KindWindowTickerAll EventKind = "WindowTickerAll"
	KindKline           EventKind = "Kline"
	KindDepthOrderBook  EventKind = "DepthOrderBook"
	KindBookTicker      EventKind = "BookTicker"
	KindReconnect       EventKind = "Reconnect"
)

// Event 原始流事件
type Event interface {
	Kind() EventKind
}

// ========== 用户数据 ==========

// AccountBalance outboundAccountPosition 中的单个资产
type AccountBalance struct {
	Asset  string          `json:"a"`
	Free   decimal.Decimal `json:"f"`
	Locked decimal.Decimal `json:"l"`
}

// AccountUpdateEvent outboundAccountPosition
type AccountUpdateEvent struct {
	EventType      string           `json:"e"`
	EventTime      int64            `json:"E"`
	LastUpdateTime int64            `json:"u"`
	Balances       []AccountBalance `json:"B"`
}

// BalanceUpdateEvent 充提或划转导致的余额变化
type BalanceUpdateEvent struct {
	EventType    string          `json:"e"`
	EventTime    int64           `json:"E"`
	Asset        string          `json:"a"`
	BalanceDelta decimal.Decimal `json:"d"`
	ClearTime    int64           `json:"T"`
}

// OrderTradeEvent executionReport
type OrderTradeEvent struct {
	EventType                string          `json:"e"`
	EventTime                int64           `json:"E"`
	Symbol                   string          `json:"s"`
	ClientOrderID            string          `json:"c"`
	Side                     string          `json:"S"`
	OrderType                string          `json:"o"`
	TimeInForce              string          `json:"f"`
	Quantity                 decimal.Decimal `json:"q"`
	Price                    decimal.Decimal `json:"p"`
	StopPrice                decimal.Decimal `json:"P"`
	IcebergQuantity          decimal.Decimal `json:"F"`
	OrderListID              int64           `json:"g"`
	OrigClientOrderID        string          `json:"C"`
	ExecutionType            string          `json:"x"`
	OrderStatus              string          `json:"X"`
	RejectReason             string          `json:"r"`
	OrderID                  int64           `json:"i"`
	LastExecutedQuantity     decimal.Decimal `json:"l"`
	CumulativeFilledQuantity decimal.Decimal `json:"z"`
	LastExecutedPrice        decimal.Decimal `json:"L"`
	Commission               decimal.Decimal `json:"n"`
	CommissionAsset          string          `json:"N"`
	TradeTime                int64           `json:"T"`
	TradeID                  int64           `json:"t"`
	IsOnBook                 bool            `json:"w"`
	IsMaker                  bool            `json:"m"`
	CreationTime             int64           `json:"O"`
	CumulativeQuoteQuantity  decimal.Decimal `json:"Z"`
	LastQuoteQuantity        decimal.Decimal `json:"Y"`
	QuoteOrderQuantity       decimal.Decimal `json:"Q"`
}

// ========== 成交 ==========

// AggrTradesEvent <symbol>@aggTrade
type AggrTradesEvent struct {
	EventType    string          `json:"e"`
	EventTime    int64           `json:"E"`
	Symbol       string          `json:"s"`
	AggTradeID   int64           `json:"a"`
	Price        decimal.Decimal `json:"p"`
	Quantity     decimal.Decimal `json:"q"`
	FirstTradeID int64           `json:"f"`
	LastTradeID  int64           `json:"l"`
	TradeTime    int64           `json:"T"`
	IsBuyerMaker bool            `json:"m"`
}

// TradeEvent <symbol>@trade
type TradeEvent struct {
	EventType    string          `json:"e"`
	EventTime    int64           `json:"E"`
	Symbol       string          `json:"s"`
	TradeID      int64           `json:"t"`
	Price        decimal.Decimal `json:"p"`
	Quantity     decimal.Decimal `json:"q"`
	TradeTime    int64           `json:"T"`
	IsBuyerMaker bool            `json:"m"`
}

// ========== 深度 ==========

// OrderBookEvent <symbol>@depth<levels> 的部分深度快照
type OrderBookEvent struct {
	LastUpdateID int64               `json:"lastUpdateId"`
	Bids         []models.PriceLevel `json:"bids"`
	Asks         []models.PriceLevel `json:"asks"`
}

// DepthOrderBookEvent <symbol>@depth 增量深度
type DepthOrderBookEvent struct {
	EventType     string              `json:"e"`
	EventTime     int64               `json:"E"`
	Symbol        string              `json:"s"`
	FirstUpdateID int64               `json:"U"`
	FinalUpdateID int64               `json:"u"`
	Bids          []models.PriceLevel `json:"b"`
	Asks          []models.PriceLevel `json:"a"`
}

// BookTickerEvent <symbol>@bookTicker
type BookTickerEvent struct {
	UpdateID int64           `json:"u"`
	Symbol   string          `json:"s"`
	BidPrice decimal.Decimal `json:"b"`
	BidQty   decimal.Decimal `json:"B"`
	AskPrice decimal.Decimal `json:"a"`
	AskQty   decimal.Decimal `json:"A"`
}

// ========== Ticker ==========

// DayTickerEvent <symbol>@ticker
type DayTickerEvent struct {
	EventType          string          `json:"e"`
	EventTime          int64           `json:"E"`
	Symbol             string          `json:"s"`
	PriceChange        decimal.Decimal `json:"p"`
	PriceChangePercent decimal.Decimal `json:"P"`
	WeightedAvgPrice   decimal.Decimal `json:"w"`
	PrevClosePrice     decimal.Decimal `json:"x"`
	LastPrice          decimal.Decimal `json:"c"`
	LastQty            decimal.Decimal `json:"Q"`
	BestBid            decimal.Decimal `json:"b"`
	BestBidQty         decimal.Decimal `json:"B"`
	BestAsk            decimal.Decimal `json:"a"`
	BestAskQty         decimal.Decimal `json:"A"`
	Open               decimal.Decimal `json:"o"`
	High               decimal.Decimal `json:"h"`
	Low                decimal.Decimal `json:"l"`
	Volume             decimal.Decimal `json:"v"`
	QuoteVolume        decimal.Decimal `json:"q"`
	OpenTime           int64           `json:"O"`
	CloseTime          int64           `json:"C"`
	FirstTradeID       int64           `json:"F"`
	LastTradeID        int64           `json:"L"`
	NumTrades          int64           `json:"n"`
}

// DayTickerAll !ticker@arr
type DayTickerAll []DayTickerEvent

// WindowTickerEvent <symbol>@ticker_<window>，合约 24hr ticker 也是这个形状
type WindowTickerEvent struct {
	EventType          string          `json:"e"`
	EventTime          int64           `json:"E"`
	Symbol             string          `json:"s"`
	PriceChange        decimal.Decimal `json:"p"`
	PriceChangePercent decimal.Decimal `json:"P"`
	Open               decimal.Decimal `json:"o"`
	High               decimal.Decimal `json:"h"`
	Low                decimal.Decimal `json:"l"`
	LastPrice          decimal.Decimal `json:"c"`
	WeightedAvgPrice   decimal.Decimal `json:"w"`
	Volume             decimal.Decimal `json:"v"`
	QuoteVolume        decimal.Decimal `json:"q"`
	OpenTime           int64           `json:"O"`
	CloseTime          int64           `json:"C"`
	FirstTradeID       int64           `json:"F"`
	LastTradeID        int64           `json:"L"`
	NumTrades          int64           `json:"n"`
}

type WindowTickerAll []WindowTickerEvent

// ========== K线 ==========

type KlineData struct {
	StartTime                int64           `json:"t"`
	CloseTime                int64           `json:"T"`
	Symbol                   string          `json:"s"`
	Interval                 string          `json:"i"`
	FirstTradeID             int64           `json:"f"`
	LastTradeID              int64           `json:"L"`
	Open                     decimal.Decimal `json:"o"`
	Close                    decimal.Decimal `json:"c"`
	High                     decimal.Decimal `json:"h"`
	Low                      decimal.Decimal `json:"l"`
	Volume                   decimal.Decimal `json:"v"`
	NumberOfTrades           int64           `json:"n"`
	IsFinal                  bool            `json:"x"`
	QuoteAssetVolume         decimal.Decimal `json:"q"`
	TakerBuyBaseAssetVolume  decimal.Decimal `json:"V"`
	TakerBuyQuoteAssetVolume decimal.Decimal `json:"Q"`
}

// KlineEvent <symbol>@kline_<interval>
type KlineEvent struct {
	EventType string    `json:"e"`
	EventTime int64     `json:"E"`
	Symbol    string    `json:"s"`
	Kline     KlineData `json:"k"`
}

// ReconnectEvent 连接不可用，调用方应重新建立连接
type ReconnectEvent struct{}

// Reconnect 唯一的重连信号值
var Reconnect Event = ReconnectEvent{}

func (AccountUpdateEvent) Kind() EventKind { return KindAccountUpdate }
func (BalanceUpdateEvent) Kind() EventKind { return KindBalanceUpdate }
func (OrderTradeEvent) Kind() EventKind { return KindOrderTrade }
func (AggrTradesEvent) Kind() EventKind { return KindAggrTrades }
func (TradeEvent) Kind() EventKind { return KindTrade }
func (OrderBookEvent) Kind() EventKind { return KindOrderBook }
func (DayTickerEvent) Kind() EventKind { return KindDayTicker }
func (DayTickerAll) Kind() EventKind { return KindDayTickerAll }
func (WindowTickerEvent) Kind() EventKind { return KindWindowTicker }
func (WindowTickerAll) Kind() EventKind { return KindWindowTickerAll }
func (KlineEvent) Kind() EventKind { return KindKline }
func (DepthOrderBookEvent) Kind() EventKind { return KindDepthOrderBook }
func (BookTickerEvent) Kind() EventKind { return KindBookTicker }
func (ReconnectEvent) Kind() EventKind { return KindReconnect }

// IsReconnect 判断是否为重连信号
func IsReconnect(ev Event) bool {
	_, ok := ev.(ReconnectEvent)
	return ok
}
