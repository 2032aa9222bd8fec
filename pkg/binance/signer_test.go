package binance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignKnownVector(t *testing.T) {
	// Binance API 文档中的示例
	secret := "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j"
	query := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"

	signed := Sign(query, secret)
	assert.Equal(t, query+"&signature=c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71", signed)
}

func TestSignEmptyQuery(t *testing.T) {
	signed := Sign("", "secret")
	assert.Equal(t, "signature="+hmacSHA256("", "secret"), signed)
	assert.NotContains(t, signed, "&")

	// 同一个 secret 对空消息的签名是常量
	assert.Equal(t, signed, Sign("", "secret"))
	assert.NotEqual(t, signed, Sign("", "other"))
}

func TestSignEmptySecretStillSigns(t *testing.T) {
	signed := Sign("a=1", "")
	assert.Equal(t, "a=1&signature="+hmacSHA256("a=1", ""), signed)
	assert.Len(t, hmacSHA256("a=1", ""), 64)
}
