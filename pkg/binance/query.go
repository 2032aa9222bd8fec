package binance

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Encoder 请求序列化为 query string，签名和发送使用同一份结果
type Encoder interface {
	Encode() string
}

// Validator 请求在发送前的本地前置校验，不能依赖网络
type Validator interface {
	Validate() error
}

// QueryAppender 可以把字段平铺进外层请求的子结构
type QueryAppender interface {
	AppendQuery(q *QueryBuilder)
}

// QueryBuilder 按调用顺序拼接 key=value，不做排序
type QueryBuilder struct {
	parts []string
}

// NewQuery 创建空的 QueryBuilder
func NewQuery() *QueryBuilder {
	return &QueryBuilder{}
}

// Add 追加一个参数，value 做 URL 转义
func (q *QueryBuilder) Add(key, value string) *QueryBuilder {
	q.parts = append(q.parts, key+"="+url.QueryEscape(value))
	return q
}

// AddNonEmpty value 为空时跳过
func (q *QueryBuilder) AddNonEmpty(key, value string) *QueryBuilder {
	if value == "" {
		return q
	}
	return q.Add(key, value)
}

func (q *QueryBuilder) AddInt(key string, v int64) *QueryBuilder {
	return q.Add(key, strconv.FormatInt(v, 10))
}

func (q *QueryBuilder) AddUint(key string, v uint64) *QueryBuilder {
	return q.Add(key, strconv.FormatUint(v, 10))
}

func (q *QueryBuilder) AddDecimal(key string, v decimal.Decimal) *QueryBuilder {
	return q.Add(key, v.String())
}

func (q *QueryBuilder) OptString(key string, v *string) *QueryBuilder {
	if v == nil {
		return q
	}
	return q.Add(key, *v)
}

func (q *QueryBuilder) OptInt(key string, v *int64) *QueryBuilder {
	if v == nil {
		return q
	}
	return q.AddInt(key, *v)
}

func (q *QueryBuilder) OptUint(key string, v *uint64) *QueryBuilder {
	if v == nil {
		return q
	}
	return q.AddUint(key, *v)
}

func (q *QueryBuilder) OptBool(key string, v *bool) *QueryBuilder {
	if v == nil {
		return q
	}
	return q.Add(key, strconv.FormatBool(*v))
}

func (q *QueryBuilder) OptDecimal(key string, v *decimal.Decimal) *QueryBuilder {
	if v == nil {
		return q
	}
	return q.AddDecimal(key, *v)
}

// Merge 把子结构的字段平铺进当前 query，不加前缀
func (q *QueryBuilder) Merge(a QueryAppender) *QueryBuilder {
	a.AppendQuery(q)
	return q
}

// Len 已追加的参数个数
func (q *QueryBuilder) Len() int {
	return len(q.parts)
}

func (q *QueryBuilder) String() string {
	return strings.Join(q.parts, "&")
}

// Ptr 返回 v 的指针，方便填写可选字段
func Ptr[T any](v T) *T {
	return &v
}

// ========== 公共请求字段 ==========

// BaseRequest 大多数签名接口共享的 recvWindow/timestamp
type BaseRequest struct {
	RecvWindow *uint64
	Timestamp  uint64
}

// NewBaseRequest 使用当前毫秒时间戳
func NewBaseRequest() BaseRequest {
	return BaseRequest{Timestamp: NowMillis()}
}

// WithRecvWindow 设置 recvWindow（毫秒）
func (b BaseRequest) WithRecvWindow(ms uint64) BaseRequest {
	b.RecvWindow = &ms
	return b
}

func (b BaseRequest) AppendQuery(q *QueryBuilder) {
	q.OptUint("recvWindow", b.RecvWindow)
	q.AddUint("timestamp", b.Timestamp)
}

func (b BaseRequest) Encode() string {
	return NewQuery().Merge(b).String()
}

// NowMillis 当前 Unix 毫秒
func NowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}

// ========== 单个或多个交易对 ==========

// OneOrManySymbol 编码为 symbol=X 或 symbols=["A","B"]
type OneOrManySymbol struct {
	symbols []string
	many    bool
}

// OneSymbol 单个交易对
func OneSymbol(symbol string) *OneOrManySymbol {
	return &OneOrManySymbol{symbols: []string{symbol}}
}

// ManySymbols 多个交易对，即使只有一个也编码成数组
func ManySymbols(symbols ...string) *OneOrManySymbol {
	return &OneOrManySymbol{symbols: symbols, many: true}
}

// Symbols 返回包含的交易对
func (o *OneOrManySymbol) Symbols() []string {
	return o.symbols
}

func (o *OneOrManySymbol) AppendQuery(q *QueryBuilder) {
	if !o.many {
		q.Add("symbol", o.symbols[0])
		return
	}
	quoted := make([]string, len(o.symbols))
	for i, s := range o.symbols {
		quoted[i] = `"` + s + `"`
	}
	q.Add("symbols", "["+strings.Join(quoted, ",")+"]")
}
