package endpoints

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/riven-blade/binance-cex/pkg/binance"
	"github.com/riven-blade/binance-cex/pkg/binance/models"
)

// UsdMFuturesEP U本位合约行情接口，需要 api key
type UsdMFuturesEP int

const (
	UsdMSymbolPriceTicker UsdMFuturesEP = iota
	UsdMSymbolOrderBookTicker
)

func (ep UsdMFuturesEP) ActionParams() (string, binance.SecurityType, string) {
	if ep == UsdMSymbolOrderBookTicker {
		return http.MethodGet, binance.SecurityMarketData, "/fapi/v1/ticker/bookTicker"
	}
	return http.MethodGet, binance.SecurityMarketData, "/fapi/v2/ticker/price"
}

// SymbolTickerRequest Symbol 为空时返回全部
type SymbolTickerRequest struct {
	Symbol string
}

func (r SymbolTickerRequest) Encode() string {
	return binance.NewQuery().AddNonEmpty("symbol", r.Symbol).String()
}

// FuturesSymbolPrice 合约最新价
type FuturesSymbolPrice struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Time   int64           `json:"time"`
}

// FuturesBookTicker 合约最优挂单
type FuturesBookTicker struct {
	models.BookTicker
	Time int64 `json:"time"`
}

// UsdMFutures U本位合约行情接口集合
type UsdMFutures struct {
	client *binance.Client
}

func NewUsdMFutures(client *binance.Client) *UsdMFutures {
	return &UsdMFutures{client: client}
}

func (u *UsdMFutures) PriceTicker(ctx context.Context, req SymbolTickerRequest) ([]FuturesSymbolPrice, error) {
	resp, err := binance.Call[binance.OneOrMany[FuturesSymbolPrice]](ctx, u.client, UsdMSymbolPriceTicker, req)
	if err != nil {
		return nil, err
	}
	return resp.Items(), nil
}

func (u *UsdMFutures) BookTicker(ctx context.Context, req SymbolTickerRequest) ([]FuturesBookTicker, error) {
	resp, err := binance.Call[binance.OneOrMany[FuturesBookTicker]](ctx, u.client, UsdMSymbolOrderBookTicker, req)
	if err != nil {
		return nil, err
	}
	return resp.Items(), nil
}
