package binance

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ========== 错误类型层次结构 ==========

var (
	// ErrStreamClosed 连接已关闭或已被 Disconnect 消费
	ErrStreamClosed = errors.New("binance: stream closed")
	// ErrUnsupportedDispatch 当前 (method, tier) 组合没有实现
	ErrUnsupportedDispatch = errors.New("binance: unsupported dispatch")
)

// Error 基础错误接口
type Error interface {
	error
	GetType() string
	GetCode() int64
	GetDetails() string
}

// BaseError 基础错误结构
type BaseError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details"`
	Code    int64  `json:"code"`

	cause error
}

func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *BaseError) Unwrap() error {
	return e.cause
}

func (e *BaseError) GetType() string {
	return e.Type
}

func (e *BaseError) GetCode() int64 {
	return e.Code
}

func (e *BaseError) GetDetails() string {
	return e.Details
}

// ========== 传输与编码 ==========

// TransportError TCP/TLS/DNS 或握手失败
type TransportError struct {
	*BaseError
}

func NewTransportError(message string, cause error) *TransportError {
	return &TransportError{
		BaseError: &BaseError{
			Type:    "TransportError",
			Message: message,
			cause:   errors.WithStack(cause),
		},
	}
}

// EncodingError 在任何 I/O 之前发现的 URL 或 header 问题
type EncodingError struct {
	*BaseError
}

func NewEncodingError(message string, cause error) *EncodingError {
	return &EncodingError{
		BaseError: &BaseError{
			Type:    "EncodingError",
			Message: message,
			cause:   cause,
		},
	}
}

// DecodeError 响应体既不是错误结构也不是期望的数据结构
type DecodeError struct {
	*BaseError
	Body string
}

func NewDecodeError(body string, cause error) *DecodeError {
	return &DecodeError{
		BaseError: &BaseError{
			Type:    "DecodeError",
			Message: "failed to decode response body",
			Details: body,
			cause:   cause,
		},
		Body: body,
	}
}

// ValidationError 请求在发送前未通过前置校验
type ValidationError struct {
	*BaseError
	Field string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		BaseError: &BaseError{
			Type:    "ValidationError",
			Message: message,
			Details: field,
		},
		Field: field,
	}
}

// UnsupportedError 未实现的 (method, tier) 组合
type UnsupportedError struct {
	*BaseError
	Method   string
	Security SecurityType
}

func NewUnsupportedError(method string, security SecurityType) *UnsupportedError {
	return &UnsupportedError{
		BaseError: &BaseError{
			Type:    "UnsupportedError",
			Message: fmt.Sprintf("%s with security %s is not supported", method, security),
			cause:   ErrUnsupportedDispatch,
		},
		Method:   method,
		Security: security,
	}
}

// ========== 交易所返回的业务错误 ==========

// APIError 交易所返回的 {code, msg}
type APIError struct {
	*BaseError
	Msg string
}

func NewAPIError(code int64, msg string) *APIError {
	return &APIError{
		BaseError: &BaseError{
			Type:    "APIError",
			Message: msg,
			Code:    code,
		},
		Msg: msg,
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("APIError(code=%d): %s", e.Code, e.Msg)
}

// IsRateLimited 请求过多或下单频率超限
func (e *APIError) IsRateLimited() bool {
	return e.Code == -1003 || e.Code == -1015
}

// IsTimestampOutsideRecvWindow 时间戳超出 recvWindow
func (e *APIError) IsTimestampOutsideRecvWindow() bool {
	return e.Code == -1021
}

// IsInvalidSignature 签名无效
func (e *APIError) IsInvalidSignature() bool {
	return e.Code == -1022
}

// IsInvalidSymbol 交易对无效
func (e *APIError) IsInvalidSymbol() bool {
	return e.Code == -1121
}

// IsUnknownOrder 撤单或查询时订单不存在
func (e *APIError) IsUnknownOrder() bool {
	return e.Code == -2011 || e.Code == -2013
}

// AsAPIError 从错误链中取出 APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
