package models

import "github.com/shopspring/decimal"

// ========== 账户与订单 ==========

// Balance 账户余额
type Balance struct {
	Asset  string          `json:"asset"`
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
}

// AccountInformation 现货账户信息
type AccountInformation struct {
	MakerCommission  int64     `json:"makerCommission"`
	TakerCommission  int64     `json:"takerCommission"`
	BuyerCommission  int64     `json:"buyerCommission"`
	SellerCommission int64     `json:"sellerCommission"`
	CanTrade         bool      `json:"canTrade"`
	CanWithdraw      bool      `json:"canWithdraw"`
	CanDeposit       bool      `json:"canDeposit"`
	UpdateTime       int64     `json:"updateTime"`
	AccountType      string    `json:"accountType"`
	Balances         []Balance `json:"balances"`
	Permissions      []string  `json:"permissions"`
}

// Fill 成交明细
type Fill struct {
	Price           decimal.Decimal `json:"price"`
	Qty             decimal.Decimal `json:"qty"`
	Commission      decimal.Decimal `json:"commission"`
	CommissionAsset string          `json:"commissionAsset"`
	TradeID         int64           `json:"tradeId"`
}

// SpotOrder 现货下单返回，ACK 只有前几个字段
type SpotOrder struct {
	Symbol                  string          `json:"symbol"`
	OrderID                 int64           `json:"orderId"`
	OrderListID             int64           `json:"orderListId"`
	ClientOrderID           string          `json:"clientOrderId"`
	TransactTime            int64           `json:"transactTime"`
	Price                   decimal.Decimal `json:"price"`
	OrigQty                 decimal.Decimal `json:"origQty"`
	ExecutedQty             decimal.Decimal `json:"executedQty"`
	CummulativeQuoteQty     decimal.Decimal `json:"cummulativeQuoteQty"`
	Status                  string          `json:"status"`
	TimeInForce             string          `json:"timeInForce"`
	Type                    string          `json:"type"`
	Side                    string          `json:"side"`
	SelfTradePreventionMode string          `json:"selfTradePreventionMode"`
	Fills                   []Fill          `json:"fills"`
}

// FuturesOrder 合约下单返回
type FuturesOrder struct {
	ClientOrderID string          `json:"clientOrderId"`
	CumQty        decimal.Decimal `json:"cumQty"`
	CumQuote      decimal.Decimal `json:"cumQuote"`
	ExecutedQty   decimal.Decimal `json:"executedQty"`
	OrderID       int64           `json:"orderId"`
	AvgPrice      decimal.Decimal `json:"avgPrice"`
	OrigQty       decimal.Decimal `json:"origQty"`
	Price         decimal.Decimal `json:"price"`
	ReduceOnly    bool            `json:"reduceOnly"`
	Side          string          `json:"side"`
	PositionSide  string          `json:"positionSide"`
	Status        string          `json:"status"`
	StopPrice     decimal.Decimal `json:"stopPrice"`
	ClosePosition bool            `json:"closePosition"`
	Symbol        string          `json:"symbol"`
	TimeInForce   string          `json:"timeInForce"`
	Type          string          `json:"type"`
	OrigType      string          `json:"origType"`
	WorkingType   string          `json:"workingType"`
	PriceProtect  bool            `json:"priceProtect"`
	PriceMatch    string          `json:"priceMatch"`
	UpdateTime    int64           `json:"updateTime"`
}

// LeverageResponse 调整杠杆返回
type LeverageResponse struct {
	Leverage         int64           `json:"leverage"`
	MaxNotionalValue decimal.Decimal `json:"maxNotionalValue"`
	Symbol           string          `json:"symbol"`
}

// PositionRisk 合约持仓风险
type PositionRisk struct {
	Symbol           string          `json:"symbol"`
	PositionSide     string          `json:"positionSide"`
	PositionAmt      decimal.Decimal `json:"positionAmt"`
	EntryPrice       decimal.Decimal `json:"entryPrice"`
	BreakEvenPrice   decimal.Decimal `json:"breakEvenPrice"`
	MarkPrice        decimal.Decimal `json:"markPrice"`
	UnRealizedProfit decimal.Decimal `json:"unRealizedProfit"`
	LiquidationPrice decimal.Decimal `json:"liquidationPrice"`
	Notional         decimal.Decimal `json:"notional"`
	MarginAsset      string          `json:"marginAsset"`
	InitialMargin    decimal.Decimal `json:"initialMargin"`
	MaintMargin      decimal.Decimal `json:"maintMargin"`
	UpdateTime       int64           `json:"updateTime"`
}

// ListenKey 用户数据流 key
type ListenKey struct {
	ListenKey string `json:"listenKey"`
}

// ConvertAssetInfo 闪兑资产精度
type ConvertAssetInfo struct {
	Asset    string `json:"asset"`
	Fraction int64  `json:"fraction"`
}

// ConvertPair 闪兑交易对
type ConvertPair struct {
	FromAsset          string          `json:"fromAsset"`
	ToAsset            string          `json:"toAsset"`
	FromAssetMinAmount decimal.Decimal `json:"fromAssetMinAmount"`
	FromAssetMaxAmount decimal.Decimal `json:"fromAssetMaxAmount"`
	ToAssetMinAmount   decimal.Decimal `json:"toAssetMinAmount"`
	ToAssetMaxAmount   decimal.Decimal `json:"toAssetMaxAmount"`
}
