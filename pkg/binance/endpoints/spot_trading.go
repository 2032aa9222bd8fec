package endpoints

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riven-blade/binance-cex/pkg/binance"
	"github.com/riven-blade/binance-cex/pkg/binance/models"
)

// SpotTradingEP 现货交易接口
type SpotTradingEP int

const (
	SpotOrder SpotTradingEP = iota
	SpotOrderTest
	SpotAccount
)

func (ep SpotTradingEP) ActionParams() (string, binance.SecurityType, string) {
	switch ep {
	case SpotOrder:
		return http.MethodPost, binance.SecurityTrade, "/api/v3/order"
	case SpotOrderTest:
		return http.MethodPost, binance.SecurityTrade, "/api/v3/order/test"
	default:
		return http.MethodGet, binance.SecurityUserData, "/api/v3/account"
	}
}

type SpotOrderType string

const (
	SpotLimit           SpotOrderType = "LIMIT"
	SpotMarket          SpotOrderType = "MARKET"
	SpotStopLoss        SpotOrderType = "STOP_LOSS"
	SpotStopLossLimit   SpotOrderType = "STOP_LOSS_LIMIT"
	SpotTakeProfit      SpotOrderType = "TAKE_PROFIT"
	SpotTakeProfitLimit SpotOrderType = "TAKE_PROFIT_LIMIT"
	SpotLimitMaker      SpotOrderType = "LIMIT_MAKER"
)

// NewClientOrderID 生成满足 ^[.A-Z:/a-z0-9_-]{1,36}$ 的客户端订单号
func NewClientOrderID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SpotNewOrderRequest 现货下单
type SpotNewOrderRequest struct {
	Symbol                  string
	Side                    OrderSide
	Type                    SpotOrderType
	TimeInForce             TimeInForce
	Quantity                *decimal.Decimal
	QuoteOrderQty           *decimal.Decimal
	Price                   *decimal.Decimal
	NewClientOrderID        string
	StrategyID              *int64
	StrategyType            *int64
	StopPrice               *decimal.Decimal
	TrailingDelta           *int64
	IcebergQty              *decimal.Decimal
	NewOrderRespType        ResponseType
	SelfTradePreventionMode SelfTradePreventionMode
	Base                    binance.BaseRequest
}

// NewSpotOrder 填写必填字段并打上时间戳
func NewSpotOrder(symbol string, side OrderSide, orderType SpotOrderType) SpotNewOrderRequest {
	return SpotNewOrderRequest{
		Symbol: symbol,
		Side:   side,
		Type:   orderType,
		Base:   binance.NewBaseRequest(),
	}
}

func (r SpotNewOrderRequest) Encode() string {
	return binance.NewQuery().
		Add("symbol", r.Symbol).
		Add("side", string(r.Side)).
		Add("type", string(r.Type)).
		AddNonEmpty("timeInForce", string(r.TimeInForce)).
		OptDecimal("quantity", r.Quantity).
		OptDecimal("quoteOrderQty", r.QuoteOrderQty).
		OptDecimal("price", r.Price).
		AddNonEmpty("newClientOrderId", r.NewClientOrderID).
		OptInt("strategyId", r.StrategyID).
		OptInt("strategyType", r.StrategyType).
		OptDecimal("stopPrice", r.StopPrice).
		OptInt("trailingDelta", r.TrailingDelta).
		OptDecimal("icebergQty", r.IcebergQty).
		AddNonEmpty("newOrderRespType", string(r.NewOrderRespType)).
		AddNonEmpty("selfTradePreventionMode", string(r.SelfTradePreventionMode)).
		Merge(r.Base).
		String()
}

// Validate 按订单类型检查必填参数
func (r SpotNewOrderRequest) Validate() error {
	if r.Symbol == "" {
		return binance.NewValidationError("symbol", "symbol is required")
	}
	switch r.Type {
	case SpotLimit:
		return requireFields(string(r.Type),
			field{"timeInForce", r.TimeInForce != ""},
			field{"quantity", r.Quantity != nil},
			field{"price", r.Price != nil})
	case SpotMarket:
		if r.Quantity == nil && r.QuoteOrderQty == nil {
			return binance.NewValidationError("quantity", "order type MARKET requires quantity or quoteOrderQty")
		}
	case SpotStopLoss, SpotTakeProfit:
		return requireFields(string(r.Type),
			field{"quantity", r.Quantity != nil},
			field{"stopPrice", r.StopPrice != nil || r.TrailingDelta != nil})
	case SpotStopLossLimit, SpotTakeProfitLimit:
		return requireFields(string(r.Type),
			field{"timeInForce", r.TimeInForce != ""},
			field{"quantity", r.Quantity != nil},
			field{"price", r.Price != nil},
			field{"stopPrice", r.StopPrice != nil || r.TrailingDelta != nil})
	case SpotLimitMaker:
		return requireFields(string(r.Type),
			field{"quantity", r.Quantity != nil},
			field{"price", r.Price != nil})
	default:
		return binance.NewValidationError("type", "unknown order type "+string(r.Type))
	}
	return nil
}

// AccountRequest 账户信息
type AccountRequest struct {
	OmitZeroBalances *bool
	Base             binance.BaseRequest
}

func (r AccountRequest) Encode() string {
	return binance.NewQuery().OptBool("omitZeroBalances", r.OmitZeroBalances).Merge(r.Base).String()
}

// ========== 服务 ==========

// SpotTrading 现货交易接口集合
type SpotTrading struct {
	client *binance.Client
}

func NewSpotTrading(client *binance.Client) *SpotTrading {
	return &SpotTrading{client: client}
}

func (s *SpotTrading) NewOrder(ctx context.Context, req SpotNewOrderRequest) (models.SpotOrder, error) {
	req.Base = s.client.ApplyRecvWindow(req.Base)
	return binance.Call[models.SpotOrder](ctx, s.client, SpotOrder, req)
}

// TestOrder 只校验不撮合，成功时返回空对象
func (s *SpotTrading) TestOrder(ctx context.Context, req SpotNewOrderRequest) error {
	req.Base = s.client.ApplyRecvWindow(req.Base)
	_, err := binance.Call[struct{}](ctx, s.client, SpotOrderTest, req)
	return err
}

func (s *SpotTrading) Account(ctx context.Context, req AccountRequest) (models.AccountInformation, error) {
	req.Base = s.client.ApplyRecvWindow(req.Base)
	return binance.Call[models.AccountInformation](ctx, s.client, SpotAccount, req)
}

// ========== 校验辅助 ==========

type field struct {
	name    string
	present bool
}

func requireFields(orderType string, fields ...field) error {
	var missing []string
	for _, f := range fields {
		if !f.present {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return binance.NewValidationError(missing[0],
		"order type "+orderType+" requires "+strings.Join(missing, ", "))
}
