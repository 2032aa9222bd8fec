package core

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/riven-blade/binance-cex/config"
	"github.com/riven-blade/binance-cex/pkg/binance"
	"github.com/riven-blade/binance-cex/pkg/binance/stream"
	"github.com/riven-blade/binance-cex/pkg/logger"
	"github.com/riven-blade/binance-cex/storage"
)

// errReconnectSignal 连接发出了重连信号
var errReconnectSignal = errors.New("stream signalled reconnect")

// =============================================================================
// 组合流录制器
// =============================================================================

// RecorderStats 录制器统计
type RecorderStats struct {
	Connected   bool      `json:"connected"`
	Connects    int64     `json:"connects"`
	Reconnects  int64     `json:"reconnects"`
	Events      int64     `json:"events"`
	StoreErrors int64     `json:"store_errors"`
	Skipped     int64     `json:"skipped"`
	LastEvent   time.Time `json:"last_event"`
}

// Recorder 订阅组合流并把事件写入存储，连接断开后按指数退避重连
type Recorder struct {
	endpoint string
	names    []stream.MarketStream
	store    storage.EventStore

	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu      sync.Mutex
	running bool

	connected   atomic.Bool
	connects    atomic.Int64
	reconnects  atomic.Int64
	events      atomic.Int64
	storeErrors atomic.Int64
	skipped     atomic.Int64
	lastEvent   atomic.Time

	log *logger.MLogger
}

// NewRecorder 创建录制器，names 不能为空
func NewRecorder(wsEndpoint string, names []stream.MarketStream, store storage.EventStore, conf *config.RecorderConfig) (*Recorder, error) {
	if len(names) == 0 {
		return nil, binance.NewValidationError("streams", "at least one stream is required")
	}
	if store == nil {
		return nil, binance.NewValidationError("store", "store is required")
	}
	if conf == nil {
		conf = &config.RecorderConfig{}
	}

	r := &Recorder{
		endpoint:       wsEndpoint,
		names:          append([]stream.MarketStream(nil), names...),
		store:          store,
		initialBackoff: conf.InitialBackoff,
		maxBackoff:     conf.MaxBackoff,
		log:            logger.With(zap.String("streams", stream.JoinNames(names))),
	}
	if r.initialBackoff <= 0 {
		r.initialBackoff = config.DefaultInitialBackoff
	}
	if r.maxBackoff < r.initialBackoff {
		r.maxBackoff = config.DefaultMaxBackoff
	}
	return r, nil
}

// Run 阻塞直到 ctx 结束，返回 ctx.Err()；参数错误时立即返回
func (r *Recorder) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("recorder already running")
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s, err := stream.ConnectCombined(ctx, r.endpoint, r.names...)
		if err != nil {
			var validationErr *binance.ValidationError
			if errors.As(err, &validationErr) {
				return err
			}
			delay := r.backoff(attempt)
			attempt++
			r.log.Warn("组合流连接失败，稍后重试", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
			if !sleepCtx(ctx, delay) {
				return ctx.Err()
			}
			continue
		}

		attempt = 0
		r.connects.Inc()
		r.connected.Store(true)
		r.log.Info("组合流已连接", zap.String("stream", s.JoinedName()))

		err = r.consume(ctx, s)
		r.connected.Store(false)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		r.reconnects.Inc()
		delay := r.backoff(attempt)
		attempt++
		r.log.Warn("组合流断开，准备重连", zap.Duration("delay", delay), zap.Error(err))
		if !sleepCtx(ctx, delay) {
			return ctx.Err()
		}
	}
}

// consume 读取直到重连信号、连接关闭或 ctx 结束
func (r *Recorder) consume(ctx context.Context, s *stream.CombinedStream) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Disconnect()
		case <-done:
		}
	}()
	defer func() {
		if err := s.Disconnect(); err != nil && !errors.Is(err, stream.ErrStreamClosed) {
			r.log.Debug("断开组合流失败", zap.Error(err))
		}
	}()

	for {
		payload, ok, err := s.Next()
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if stream.IsReconnect(payload.Data) {
			return errReconnectSignal
		}

		r.events.Inc()
		r.lastEvent.Store(time.Now())
		if err := r.store.Store(ctx, payload.Stream, payload.Data); err != nil {
			r.storeFailed(payload, err)
		}
	}
}

// storeFailed 不落地的事件只计数；可重试错误记 Warn，其余记 Error，都不中断读取
func (r *Recorder) storeFailed(payload *stream.CombinedStreamPayload, err error) {
	if errors.Is(err, storage.ErrUnsupportedEvent) {
		r.skipped.Inc()
		return
	}

	r.storeErrors.Inc()
	fields := []zap.Field{
		zap.String("stream", payload.Stream),
		zap.String("kind", string(payload.Data.Kind())),
		zap.Error(err),
	}
	if storage.IsRetryableError(err) {
		r.log.Warn("事件写入存储失败，等待存储恢复", fields...)
		return
	}
	r.log.Error("事件写入存储失败，事件已丢弃", fields...)
}

// backoff initialBackoff * 2^attempt，不超过 maxBackoff
func (r *Recorder) backoff(attempt int) time.Duration {
	delay := r.initialBackoff
	for i := 0; i < attempt && delay < r.maxBackoff; i++ {
		delay *= 2
	}
	if delay > r.maxBackoff {
		delay = r.maxBackoff
	}
	return delay
}

func (r *Recorder) Stats() RecorderStats {
	return RecorderStats{
		Connected:   r.connected.Load(),
		Connects:    r.connects.Load(),
		Reconnects:  r.reconnects.Load(),
		Events:      r.events.Load(),
		StoreErrors: r.storeErrors.Load(),
		Skipped:     r.skipped.Load(),
		LastEvent:   r.lastEvent.Load(),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
