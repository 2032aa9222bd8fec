package storage

import (
	"context"
	"time"

	"go.uber.org/atomic"

	"github.com/riven-blade/binance-cex/pkg/binance/stream"
)

// EventStore 行情事件落地接口
// stream 为组合流中的流名，Reconnect 事件由调用方过滤
type EventStore interface {
	Name() string
	Store(ctx context.Context, streamName string, ev stream.Event) error
	Close() error
}

// Stats 存储统计
type Stats struct {
	Stored    int64
	Skipped   int64
	Failed    int64
	LastError string
	LastWrite time.Time
}

type storeStats struct {
	stored    atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
	lastError atomic.String
	lastWrite atomic.Time
}

func (s *storeStats) recordSuccess(n int) {
	s.stored.Add(int64(n))
	s.lastWrite.Store(time.Now())
}

func (s *storeStats) recordFailure(err error) {
	s.failed.Inc()
	s.lastError.Store(err.Error())
}

func (s *storeStats) snapshot() Stats {
	return Stats{
		Stored:    s.stored.Load(),
		Skipped:   s.skipped.Load(),
		Failed:    s.failed.Load(),
		LastError: s.lastError.Load(),
		LastWrite: s.lastWrite.Load(),
	}
}
