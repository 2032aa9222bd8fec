package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/riven-blade/binance-cex/pkg/binance"
)

// CombinedStream 组合流连接 <ws>/stream?streams=a/b，每帧带 stream 名称
type CombinedStream struct {
	names  []MarketStream
	joined string
	c      *wsConn

	mu       sync.Mutex
	consumed bool
}

// ConnectCombined 建立组合流连接，至少需要一个流
func ConnectCombined(ctx context.Context, wsEndpoint string, names ...MarketStream) (*CombinedStream, error) {
	if len(names) == 0 {
		return nil, binance.NewValidationError("streams", "at least one stream is required")
	}
	for _, name := range names {
		if err := name.Validate(); err != nil {
			return nil, err
		}
	}
	joined := JoinNames(names)
	c, err := dial(ctx, streamURL(wsEndpoint, "/stream?streams="+joined))
	if err != nil {
		return nil, err
	}
	return &CombinedStream{
		names:  append([]MarketStream(nil), names...),
		joined: joined,
		c:      c,
	}, nil
}

func (s *CombinedStream) Names() []MarketStream {
	return append([]MarketStream(nil), s.names...)
}

// JoinedName 所有流名称用 / 连接，重连信号的 Stream 字段使用它
func (s *CombinedStream) JoinedName() string {
	return s.joined
}

// Next 读取一帧，语义同 RawStream.Next；失败时返回 {Stream: JoinedName, Data: Reconnect}
// 组合流连接上出现原始事件属于调用错误，直接 panic
func (s *CombinedStream) Next() (*CombinedStreamPayload, bool, error) {
	if s.isConsumed() {
		return nil, false, ErrStreamClosed
	}

	frame, err := s.c.read()
	if err != nil {
		if errors.Is(err, ErrStreamClosed) {
			return nil, false, ErrStreamClosed
		}
		return s.reconnect(), true, nil
	}

	ev, ok := s.c.classify(frame)
	if !ok {
		return s.reconnect(), true, nil
	}
	switch ev.Kind {
	case FramePing:
		s.c.stats.heartbeats.Inc()
		return nil, false, nil
	case FrameRaw:
		panic(fmt.Sprintf("combined stream %s received raw %s event", s.joined, ev.Raw.Kind()))
	default:
		s.c.stats.events.Inc()
		return ev.Combined, true, nil
	}
}

func (s *CombinedStream) reconnect() *CombinedStreamPayload {
	s.c.signalReconnect()
	return &CombinedStreamPayload{Stream: s.joined, Data: Reconnect}
}

// Disconnect 发送正常关闭帧并消费连接，再次调用返回 ErrStreamClosed
func (s *CombinedStream) Disconnect() error {
	s.mu.Lock()
	if s.consumed {
		s.mu.Unlock()
		return ErrStreamClosed
	}
	s.consumed = true
	s.mu.Unlock()
	return s.c.terminate(true)
}

func (s *CombinedStream) isConsumed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumed
}

func (s *CombinedStream) Stats() Stats {
	return s.c.stats.snapshot()
}
