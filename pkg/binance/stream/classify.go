package stream

import (
	"bytes"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/riven-blade/binance-cex/pkg/binance"
)

// 事件字段名只靠大小写区分（e/E、b/B、m/M），必须大小写敏感
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

var errNoShape = errors.New("frame matches no known event shape")

// FrameKind 帧的外层形态
type FrameKind int

const (
	FramePing FrameKind = iota
	FrameCombined
	FrameRaw
)

func (k FrameKind) String() string {
	switch k {
	case FramePing:
		return "ping"
	case FrameCombined:
		return "combined"
	default:
		return "raw"
	}
}

// CombinedStreamPayload /stream 连接的外层包装
type CombinedStreamPayload struct {
	Stream string
	Data   Event
}

// StreamEvent 单帧分类结果，只有与 Kind 对应的字段有值
type StreamEvent struct {
	Kind     FrameKind
	Ping     int64
	Combined *CombinedStreamPayload
	Raw      Event
}

// shape 一种原始事件形状：所需字段全部存在且能解码才算匹配
type shape struct {
	kind   EventKind
	array  bool
	keys   []string
	decode func([]byte) (Event, error)
}

var (
	accountUpdateKeys  = []string{"e", "E", "u", "B"}
	balanceUpdateKeys  = []string{"e", "E", "a", "d", "T"}
	orderTradeKeys     = []string{"e", "E", "s", "c", "S", "o", "f", "q", "p", "x", "X", "i", "l", "z", "L", "T", "t", "m"}
	aggrTradesKeys     = []string{"e", "E", "s", "a", "p", "q", "f", "l", "T", "m"}
	tradeKeys          = []string{"e", "E", "s", "t", "p", "q", "T", "m"}
	orderBookKeys      = []string{"lastUpdateId", "bids", "asks"}
	dayTickerKeys      = []string{"e", "E", "s", "p", "P", "w", "x", "c", "Q", "b", "B", "a", "A", "o", "h", "l", "v", "q", "O", "C", "F", "L", "n"}
	windowTickerKeys   = []string{"e", "E", "s", "p", "P", "o", "h", "l", "c", "w", "v", "q", "O", "C", "F", "L", "n"}
	klineKeys          = []string{"e", "E", "s", "k"}
	depthOrderBookKeys = []string{"e", "E", "s", "U", "u", "b", "a"}
	bookTickerKeys     = []string{"u", "s", "b", "B", "a", "A"}
)

// shapes 按固定顺序尝试，第一个匹配的胜出
var shapes = []shape{
	{kind: KindAccountUpdate, keys: accountUpdateKeys, decode: decodeAs[AccountUpdateEvent]},
	{kind: KindBalanceUpdate, keys: balanceUpdateKeys, decode: decodeAs[BalanceUpdateEvent]},
	{kind: KindOrderTrade, keys: orderTradeKeys, decode: decodeAs[OrderTradeEvent]},
	{kind: KindAggrTrades, keys: aggrTradesKeys, decode: decodeAs[AggrTradesEvent]},
	{kind: KindTrade, keys: tradeKeys, decode: decodeAs[TradeEvent]},
	{kind: KindOrderBook, keys: orderBookKeys, decode: decodeAs[OrderBookEvent]},
	{kind: KindDayTicker, keys: dayTickerKeys, decode: decodeAs[DayTickerEvent]},
	{kind: KindDayTickerAll, array: true, keys: dayTickerKeys, decode: decodeAs[DayTickerAll]},
	{kind: KindWindowTicker, keys: windowTickerKeys, decode: decodeAs[WindowTickerEvent]},
	{kind: KindWindowTickerAll, array: true, keys: windowTickerKeys, decode: decodeAs[WindowTickerAll]},
	{kind: KindKline, keys: klineKeys, decode: decodeAs[KlineEvent]},
	{kind: KindDepthOrderBook, keys: depthOrderBookKeys, decode: decodeAs[DepthOrderBookEvent]},
	{kind: KindBookTicker, keys: bookTickerKeys, decode: decodeAs[BookTickerEvent]},
}

func decodeAs[T Event](data []byte) (Event, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Unmarshal 按大小写敏感的键名解码，事件中 e/E、b/B 等键只差大小写
func Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// DecodeStreamEvent 依次尝试 Ping、组合流包装、原始事件
func DecodeStreamEvent(frame []byte) (StreamEvent, error) {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return StreamEvent{}, binance.NewDecodeError("", errors.New("empty frame"))
	}

	switch frame[0] {
	case '{':
		fields, err := objectFields(frame)
		if err != nil {
			return StreamEvent{}, binance.NewDecodeError(string(frame), err)
		}
		if ts, ok := pingObject(fields); ok {
			return StreamEvent{Kind: FramePing, Ping: ts}, nil
		}
		if payload, ok := combinedPayload(fields); ok {
			return StreamEvent{Kind: FrameCombined, Combined: payload}, nil
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var ts int64
		if err := json.Unmarshal(frame, &ts); err == nil {
			return StreamEvent{Kind: FramePing, Ping: ts}, nil
		}
	}

	ev, err := DecodeEvent(frame)
	if err != nil {
		return StreamEvent{}, err
	}
	return StreamEvent{Kind: FrameRaw, Raw: ev}, nil
}

// DecodeEvent 按固定顺序匹配原始事件形状
func DecodeEvent(data []byte) (Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, binance.NewDecodeError("", errors.New("empty event"))
	}

	var (
		object   map[string]jsoniter.RawMessage
		elements []map[string]jsoniter.RawMessage
		isArray  bool
	)
	switch data[0] {
	case '{':
		if err := json.Unmarshal(data, &object); err != nil {
			return nil, binance.NewDecodeError(string(data), err)
		}
	case '[':
		if err := json.Unmarshal(data, &elements); err != nil {
			return nil, binance.NewDecodeError(string(data), err)
		}
		isArray = true
	default:
		return nil, binance.NewDecodeError(string(data), errNoShape)
	}

	for _, s := range shapes {
		if s.array != isArray {
			continue
		}
		if isArray {
			if !allHaveKeys(elements, s.keys) {
				continue
			}
		} else if !hasKeys(object, s.keys) {
			continue
		}
		if ev, err := s.decode(data); err == nil {
			return ev, nil
		}
	}
	return nil, binance.NewDecodeError(string(data), errNoShape)
}

func objectFields(frame []byte) (map[string]jsoniter.RawMessage, error) {
	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(frame, &fields); err != nil {
		return nil, errors.Wrap(err, "frame is not a JSON object")
	}
	return fields, nil
}

// pingObject {"ping": <int>}，不允许其他字段
func pingObject(fields map[string]jsoniter.RawMessage) (int64, bool) {
	raw, ok := fields["ping"]
	if !ok || len(fields) != 1 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, false
	}
	var ts int64
	if err := json.Unmarshal(raw, &ts); err != nil {
		return 0, false
	}
	return ts, true
}

func combinedPayload(fields map[string]jsoniter.RawMessage) (*CombinedStreamPayload, bool) {
	rawStream, ok := fields["stream"]
	if !ok {
		return nil, false
	}
	rawData, ok := fields["data"]
	if !ok {
		return nil, false
	}
	var name string
	if err := json.Unmarshal(rawStream, &name); err != nil {
		return nil, false
	}
	ev, err := DecodeEvent(rawData)
	if err != nil {
		return nil, false
	}
	return &CombinedStreamPayload{Stream: name, Data: ev}, true
}

func hasKeys(fields map[string]jsoniter.RawMessage, keys []string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return false
		}
	}
	return true
}

// allHaveKeys 空数组视为匹配
func allHaveKeys(elements []map[string]jsoniter.RawMessage, keys []string) bool {
	for _, el := range elements {
		if !hasKeys(el, keys) {
			return false
		}
	}
	return true
}
