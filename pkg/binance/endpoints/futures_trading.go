package endpoints

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/riven-blade/binance-cex/pkg/binance"
	"github.com/riven-blade/binance-cex/pkg/binance/models"
)

// FuturesTradingEP U本位合约交易接口
type FuturesTradingEP int

const (
	FuturesOrder FuturesTradingEP = iota
	FuturesOrderTest
	FuturesLeverage
	FuturesPositionRiskV3
)

func (ep FuturesTradingEP) ActionParams() (string, binance.SecurityType, string) {
	switch ep {
	case FuturesOrder:
		return http.MethodPost, binance.SecurityTrade, "/fapi/v1/order"
	case FuturesOrderTest:
		return http.MethodPost, binance.SecurityTrade, "/fapi/v1/order/test"
	case FuturesLeverage:
		return http.MethodPost, binance.SecurityTrade, "/fapi/v1/leverage"
	default:
		return http.MethodGet, binance.SecurityUserData, "/fapi/v3/positionRisk"
	}
}

type FuturesOrderType string

const (
	FuturesLimit              FuturesOrderType = "LIMIT"
	FuturesMarket             FuturesOrderType = "MARKET"
	FuturesStop               FuturesOrderType = "STOP"
	FuturesTakeProfit         FuturesOrderType = "TAKE_PROFIT"
	FuturesStopMarket         FuturesOrderType = "STOP_MARKET"
	FuturesTakeProfitMarket   FuturesOrderType = "TAKE_PROFIT_MARKET"
	FuturesTrailingStopMarket FuturesOrderType = "TRAILING_STOP_MARKET"
)

type PositionSide string

const (
	PositionBoth  PositionSide = "BOTH"
	PositionLong  PositionSide = "LONG"
	PositionShort PositionSide = "SHORT"
)

type WorkingType string

const (
	WorkingMarkPrice     WorkingType = "MARK_PRICE"
	WorkingContractPrice WorkingType = "CONTRACT_PRICE"
)

type PriceMatch string

const (
	PriceMatchNone       PriceMatch = "NONE"
	PriceMatchOpponent   PriceMatch = "OPPONENT"
	PriceMatchOpponent5  PriceMatch = "OPPONENT_5"
	PriceMatchOpponent10 PriceMatch = "OPPONENT_10"
	PriceMatchOpponent20 PriceMatch = "OPPONENT_20"
	PriceMatchQueue      PriceMatch = "QUEUE"
	PriceMatchQueue5     PriceMatch = "QUEUE_5"
	PriceMatchQueue10    PriceMatch = "QUEUE_10"
	PriceMatchQueue20    PriceMatch = "QUEUE_20"
)

// FuturesNewOrderRequest 合约下单
type FuturesNewOrderRequest struct {
	Symbol                  string
	Side                    OrderSide
	PositionSide            PositionSide
	Type                    FuturesOrderType
	TimeInForce             TimeInForce
	Quantity                *decimal.Decimal
	ReduceOnly              *bool
	Price                   *decimal.Decimal
	NewClientOrderID        string
	StopPrice               *decimal.Decimal
	ClosePosition           *bool
	ActivationPrice         *decimal.Decimal
	CallbackRate            *decimal.Decimal
	WorkingType             WorkingType
	PriceProtect            *bool
	NewOrderRespType        ResponseType
	PriceMatch              PriceMatch
	SelfTradePreventionMode SelfTradePreventionMode
	GoodTillDate            *uint64
	Base                    binance.BaseRequest
}

// NewFuturesOrder 填写必填字段并打上时间戳
func NewFuturesOrder(symbol string, side OrderSide, orderType FuturesOrderType) FuturesNewOrderRequest {
	return FuturesNewOrderRequest{
		Symbol: symbol,
		Side:   side,
		Type:   orderType,
		Base:   binance.NewBaseRequest(),
	}
}

func (r FuturesNewOrderRequest) Encode() string {
	return binance.NewQuery().
		Add("symbol", r.Symbol).
		Add("side", string(r.Side)).
		AddNonEmpty("positionSide", string(r.PositionSide)).
		Add("type", string(r.Type)).
		AddNonEmpty("timeInForce", string(r.TimeInForce)).
		OptDecimal("quantity", r.Quantity).
		OptBool("reduceOnly", r.ReduceOnly).
		OptDecimal("price", r.Price).
		AddNonEmpty("newClientOrderId", r.NewClientOrderID).
		OptDecimal("stopPrice", r.StopPrice).
		OptBool("closePosition", r.ClosePosition).
		OptDecimal("activationPrice", r.ActivationPrice).
		OptDecimal("callbackRate", r.CallbackRate).
		AddNonEmpty("workingType", string(r.WorkingType)).
		OptBool("priceProtect", r.PriceProtect).
		AddNonEmpty("newOrderRespType", string(r.NewOrderRespType)).
		AddNonEmpty("priceMatch", string(r.PriceMatch)).
		AddNonEmpty("selfTradePreventionMode", string(r.SelfTradePreventionMode)).
		OptUint("goodTillDate", r.GoodTillDate).
		Merge(r.Base).
		String()
}

// Validate 按订单类型检查必填参数
//
//	LIMIT                           timeInForce, quantity, price
//	MARKET                          quantity
//	STOP/TAKE_PROFIT                quantity, price, stopPrice
//	STOP_MARKET/TAKE_PROFIT_MARKET  stopPrice
//	TRAILING_STOP_MARKET            callbackRate
func (r FuturesNewOrderRequest) Validate() error {
	if r.Symbol == "" {
		return binance.NewValidationError("symbol", "symbol is required")
	}
	switch r.Type {
	case FuturesLimit:
		return requireFields(string(r.Type),
			field{"quantity", r.Quantity != nil},
			field{"timeInForce", r.TimeInForce != ""},
			field{"price", r.Price != nil})
	case FuturesMarket:
		return requireFields(string(r.Type), field{"quantity", r.Quantity != nil})
	case FuturesStop, FuturesTakeProfit:
		return requireFields(string(r.Type),
			field{"quantity", r.Quantity != nil},
			field{"stopPrice", r.StopPrice != nil},
			field{"price", r.Price != nil})
	case FuturesStopMarket, FuturesTakeProfitMarket:
		return requireFields(string(r.Type), field{"stopPrice", r.StopPrice != nil})
	case FuturesTrailingStopMarket:
		return requireFields(string(r.Type), field{"callbackRate", r.CallbackRate != nil})
	default:
		return binance.NewValidationError("type", "unknown order type "+string(r.Type))
	}
}

// LeverageRequest 调整开仓杠杆
type LeverageRequest struct {
	Symbol   string
	Leverage int
	Base     binance.BaseRequest
}

func (r LeverageRequest) Encode() string {
	return binance.NewQuery().
		Add("symbol", r.Symbol).
		Add("leverage", strconv.Itoa(r.Leverage)).
		Merge(r.Base).
		String()
}

func (r LeverageRequest) Validate() error {
	if r.Leverage < 1 || r.Leverage > 125 {
		return binance.NewValidationError("leverage", "leverage must be within 1..125")
	}
	return nil
}

// PositionRiskRequest Symbol 为空时返回全部持仓
type PositionRiskRequest struct {
	Symbol string
	Base   binance.BaseRequest
}

func (r PositionRiskRequest) Encode() string {
	return binance.NewQuery().AddNonEmpty("symbol", r.Symbol).Merge(r.Base).String()
}

// ========== 服务 ==========

// FuturesTrading U本位合约交易接口集合，client 的 host 应为合约 REST 地址
type FuturesTrading struct {
	client *binance.Client
}

func NewFuturesTrading(client *binance.Client) *FuturesTrading {
	return &FuturesTrading{client: client}
}

func (f *FuturesTrading) NewOrder(ctx context.Context, req FuturesNewOrderRequest) (models.FuturesOrder, error) {
	req.Base = f.client.ApplyRecvWindow(req.Base)
	return binance.Call[models.FuturesOrder](ctx, f.client, FuturesOrder, req)
}

func (f *FuturesTrading) TestOrder(ctx context.Context, req FuturesNewOrderRequest) error {
	req.Base = f.client.ApplyRecvWindow(req.Base)
	_, err := binance.Call[struct{}](ctx, f.client, FuturesOrderTest, req)
	return err
}

func (f *FuturesTrading) ChangeLeverage(ctx context.Context, req LeverageRequest) (models.LeverageResponse, error) {
	req.Base = f.client.ApplyRecvWindow(req.Base)
	return binance.Call[models.LeverageResponse](ctx, f.client, FuturesLeverage, req)
}

func (f *FuturesTrading) PositionRisk(ctx context.Context, req PositionRiskRequest) ([]models.PositionRisk, error) {
	req.Base = f.client.ApplyRecvWindow(req.Base)
	return binance.Call[[]models.PositionRisk](ctx, f.client, FuturesPositionRiskV3, req)
}
