package binance

import (
	"bytes"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeResponse 解析响应体
//
// 先尝试错误结构：顶层对象的 key 恰好是 code(整数) 和 msg(字符串)，返回 *APIError；
// 否则按 T 解析，失败返回 *DecodeError。带有 code/msg 之外字段的对象一律按 T 处理。
func DecodeResponse[T any](body []byte) (T, error) {
	var zero T

	if code, msg, ok := asErrorShape(body); ok {
		return zero, NewAPIError(code, msg)
	}

	var data T
	if err := json.Unmarshal(body, &data); err != nil {
		return zero, NewDecodeError(string(body), errors.Wrap(err, "unmarshal response"))
	}
	return data, nil
}

func asErrorShape(body []byte) (int64, string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return 0, "", false
	}

	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return 0, "", false
	}
	if len(fields) != 2 {
		return 0, "", false
	}
	rawCode, hasCode := fields["code"]
	rawMsg, hasMsg := fields["msg"]
	if !hasCode || !hasMsg {
		return 0, "", false
	}

	var code int64
	if err := json.Unmarshal(rawCode, &code); err != nil {
		return 0, "", false
	}
	var msg string
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		return 0, "", false
	}
	return code, msg, true
}

// ========== 单个或数组响应 ==========

// OneOrMany 响应可能是单个对象也可能是数组，先按单个解析
type OneOrMany[T any] struct {
	One  *T
	Many []T
}

func (o *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	var one T
	if err := json.Unmarshal(data, &one); err == nil {
		o.One, o.Many = &one, nil
		return nil
	}
	var many []T
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.Wrap(err, "neither object nor array")
	}
	o.One, o.Many = nil, many
	return nil
}

// Items 统一返回切片
func (o OneOrMany[T]) Items() []T {
	if o.One != nil {
		return []T{*o.One}
	}
	return o.Many
}
