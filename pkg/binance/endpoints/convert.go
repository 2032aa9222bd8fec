package endpoints

import (
	"context"
	"net/http"

	"github.com/riven-blade/binance-cex/pkg/binance"
	"github.com/riven-blade/binance-cex/pkg/binance/models"
)

// ConvertEP 闪兑接口
type ConvertEP int

const (
	ConvertExchangeInfo ConvertEP = iota
	ConvertAssetInfo
)

func (ep ConvertEP) ActionParams() (string, binance.SecurityType, string) {
	if ep == ConvertAssetInfo {
		return http.MethodGet, binance.SecurityUserData, "/sapi/v1/convert/assetInfo"
	}
	return http.MethodGet, binance.SecurityNone, "/sapi/v1/convert/exchangeInfo"
}

// ConvertPairsRequest fromAsset 与 toAsset 至少填一个
type ConvertPairsRequest struct {
	FromAsset string
	ToAsset   string
}

func (r ConvertPairsRequest) Encode() string {
	return binance.NewQuery().AddNonEmpty("fromAsset", r.FromAsset).AddNonEmpty("toAsset", r.ToAsset).String()
}

func (r ConvertPairsRequest) Validate() error {
	if r.FromAsset == "" && r.ToAsset == "" {
		return binance.NewValidationError("fromAsset", "either fromAsset or toAsset is required")
	}
	return nil
}

// AssetInfoRequest 只有公共字段
type AssetInfoRequest struct {
	Base binance.BaseRequest
}

func (r AssetInfoRequest) Encode() string {
	return r.Base.Encode()
}

// Convert 闪兑接口集合
type Convert struct {
	client *binance.Client
}

func NewConvert(client *binance.Client) *Convert {
	return &Convert{client: client}
}

func (c *Convert) ExchangeInfo(ctx context.Context, req ConvertPairsRequest) ([]models.ConvertPair, error) {
	return binance.Call[[]models.ConvertPair](ctx, c.client, ConvertExchangeInfo, req)
}

func (c *Convert) AssetInfo(ctx context.Context, req AssetInfoRequest) ([]models.ConvertAssetInfo, error) {
	req.Base = c.client.ApplyRecvWindow(req.Base)
	return binance.Call[[]models.ConvertAssetInfo](ctx, c.client, ConvertAssetInfo, req)
}
