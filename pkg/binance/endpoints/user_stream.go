package endpoints

import (
	"context"
	"net/http"

	"github.com/riven-blade/binance-cex/pkg/binance"
	"github.com/riven-blade/binance-cex/pkg/binance/models"
)

// UserDataStreamEP 用户数据流 listenKey
type UserDataStreamEP int

const (
	SpotUserDataStream UserDataStreamEP = iota
	FuturesUserDataStream
)

func (ep UserDataStreamEP) path() string {
	if ep == FuturesUserDataStream {
		return "/fapi/v1/listenKey"
	}
	return "/api/v3/userDataStream"
}

func (ep UserDataStreamEP) ActionParams() (string, binance.SecurityType, string) {
	return http.MethodPost, binance.SecurityUserStream, ep.path()
}

// UserDataStream 创建、续期、关闭 listenKey
type UserDataStream struct {
	client *binance.Client
	ep     UserDataStreamEP
}

func NewUserDataStream(client *binance.Client, ep UserDataStreamEP) *UserDataStream {
	return &UserDataStream{client: client, ep: ep}
}

// Start 创建 listenKey，有效期 60 分钟
func (u *UserDataStream) Start(ctx context.Context) (string, error) {
	resp, err := binance.Call[models.ListenKey](ctx, u.client, u.ep, nil)
	if err != nil {
		return "", err
	}
	return resp.ListenKey, nil
}

// KeepAlive 延长 listenKey 有效期
func (u *UserDataStream) KeepAlive(ctx context.Context, listenKey string) error {
	return u.client.KeepAliveListenKey(ctx, u.ep.path(), listenKey)
}

// Close 关闭 listenKey
func (u *UserDataStream) Close(ctx context.Context, listenKey string) error {
	return u.client.CloseListenKey(ctx, u.ep.path(), listenKey)
}
