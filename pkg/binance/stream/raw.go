package stream

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// RawStream 单流连接 <ws>/ws/<name>，帧内容直接是事件
type RawStream struct {
	name MarketStream
	c    *wsConn
}

// ConnectRaw 建立单流连接
func ConnectRaw(ctx context.Context, wsEndpoint string, name MarketStream) (*RawStream, error) {
	if err := name.Validate(); err != nil {
		return nil, err
	}
	c, err := dial(ctx, streamURL(wsEndpoint, "/ws/"+name.String()))
	if err != nil {
		return nil, err
	}
	return &RawStream{name: name, c: c}, nil
}

func (s *RawStream) Name() MarketStream {
	return s.name
}

// Next 读取一帧
//
//	(ev, true, nil)            事件
//	(nil, false, nil)          心跳，本帧无事件
//	(Reconnect, true, nil)     帧无法识别或连接异常断开
//	(nil, false, ErrStreamClosed)
//
// 单流连接上出现组合流包装属于调用错误，直接 panic
func (s *RawStream) Next() (Event, bool, error) {
	frame, err := s.c.read()
	if err != nil {
		if errors.Is(err, ErrStreamClosed) {
			return nil, false, ErrStreamClosed
		}
		s.c.signalReconnect()
		return Reconnect, true, nil
	}

	ev, ok := s.c.classify(frame)
	if !ok {
		s.c.signalReconnect()
		return Reconnect, true, nil
	}
	switch ev.Kind {
	case FramePing:
		s.c.stats.heartbeats.Inc()
		return nil, false, nil
	case FrameCombined:
		panic(fmt.Sprintf("raw stream %s received combined payload for %s", s.name, ev.Combined.Stream))
	default:
		s.c.stats.events.Inc()
		return ev.Raw, true, nil
	}
}

// Close 发送正常关闭帧并断开，可重复调用
func (s *RawStream) Close() error {
	return s.c.terminate(true)
}

func (s *RawStream) Closed() bool {
	return s.c.isClosed()
}

func (s *RawStream) Stats() Stats {
	return s.c.stats.snapshot()
}
