package binance

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type symbolPrice struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

type codedPayload struct {
	Code int64  `json:"code"`
	Msg  string `json:"msg"`
	Data string `json:"data"`
}

func TestDecodeResponseErrorShape(t *testing.T) {
	_, err := DecodeResponse[symbolPrice]([]byte(`{"code": -1121, "msg": "Invalid symbol."}`))
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, int64(-1121), apiErr.Code)
	assert.Equal(t, "Invalid symbol.", apiErr.Msg)
}

func TestDecodeResponseData(t *testing.T) {
	got, err := DecodeResponse[symbolPrice]([]byte(`{"symbol":"BTCUSDT","price":"50000.00"}`))
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", got.Symbol)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("50000")))
}

// code/msg 之外还有其它字段时按数据处理
func TestDecodeResponseCodeMsgWithExtraFieldsIsData(t *testing.T) {
	got, err := DecodeResponse[codedPayload]([]byte(`{"code":200,"msg":"ok","data":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, codedPayload{Code: 200, Msg: "ok", Data: "x"}, got)
}

// 恰好是 {code:int, msg:string} 时总是错误，即使 T 也能接收
func TestDecodeResponseExactCodeMsgAlwaysError(t *testing.T) {
	_, err := DecodeResponse[codedPayload]([]byte(`{"code":200,"msg":"ok"}`))
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, int64(200), apiErr.Code)
}

func TestDecodeResponseNonIntegerCodeIsData(t *testing.T) {
	type stringCode struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
	}
	got, err := DecodeResponse[stringCode]([]byte(`{"code":"000000","msg":"success"}`))
	require.NoError(t, err)
	assert.Equal(t, "000000", got.Code)
}

func TestDecodeResponseMalformed(t *testing.T) {
	_, err := DecodeResponse[symbolPrice]([]byte(`{"symbol":`))
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, `{"symbol":`, decodeErr.Body)

	_, err = DecodeResponse[symbolPrice]([]byte(`[1,2,3]`))
	require.True(t, errors.As(err, &decodeErr))
}

func TestDecodeResponseArrays(t *testing.T) {
	got, err := DecodeResponse[[]symbolPrice]([]byte(`[{"symbol":"A","price":"1"},{"symbol":"B","price":"2"}]`))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestOneOrMany(t *testing.T) {
	one, err := DecodeResponse[OneOrMany[symbolPrice]]([]byte(`{"symbol":"BTCUSDT","price":"1.5"}`))
	require.NoError(t, err)
	require.NotNil(t, one.One)
	assert.Len(t, one.Items(), 1)

	many, err := DecodeResponse[OneOrMany[symbolPrice]]([]byte(`[{"symbol":"A","price":"1"},{"symbol":"B","price":"2"}]`))
	require.NoError(t, err)
	assert.Nil(t, many.One)
	assert.Equal(t, "B", many.Items()[1].Symbol)

	_, err = DecodeResponse[OneOrMany[symbolPrice]]([]byte(`"nope"`))
	assert.Error(t, err)
}
