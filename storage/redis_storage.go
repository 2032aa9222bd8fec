package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/riven-blade/binance-cex/config"
	"github.com/riven-blade/binance-cex/pkg/binance/stream"
	"github.com/riven-blade/binance-cex/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// redisClient RedisStorage 用到的 *redis.Client 方法
type redisClient interface {
	Pipeline() redis.Pipeliner
	Get(ctx context.Context, key string) *redis.StringCmd
	Close() error
}

// RedisStorage 把事件发布到 <prefix>:<stream> 频道，并缓存最新的 bookTicker 和 kline
type RedisStorage struct {
	config *config.RedisConfig
	client redisClient
	isOpen atomic.Bool
	mu     sync.Mutex
	now    func() time.Time

	stats storeStats
}

// EventPayload 发布到 Redis 的消息体
type EventPayload struct {
	Stream     string           `json:"stream"`
	Kind       stream.EventKind `json:"kind"`
	ReceivedAt int64            `json:"receivedAt"`
	Data       stream.Event     `json:"data"`
}

// NewRedisStorage 创建并连接 Redis 存储实例
func NewRedisStorage(ctx context.Context, conf *config.RedisConfig) (*RedisStorage, error) {
	if conf == nil {
		conf = config.NewRedisConfig()
	}

	storage := &RedisStorage{
		config: conf,
		now:    time.Now,
	}

	if err := storage.Connect(ctx); err != nil {
		return nil, ErrConnectionError("failed to initialize Redis storage", err)
	}

	go func() {
		<-ctx.Done()
		if err := storage.Close(); err != nil {
			logger.Ctx(context.Background()).Error("Redis存储关闭失败", zap.Error(err))
		}
	}()

	return storage, nil
}

// Connect 连接到 Redis
func (r *RedisStorage) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isOpen.Load() {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:            r.config.Addr(),
		Password:        r.config.Password,
		DB:              r.config.Database,
		DialTimeout:     r.config.ConnectionTimeout,
		ReadTimeout:     r.config.QueryTimeout,
		WriteTimeout:    r.config.QueryTimeout,
		MaxRetries:      r.config.MaxRetries,
		MaxRetryBackoff: time.Second,
		PoolSize:        r.config.PoolSize,
		IdleTimeout:     5 * time.Minute,
	})

	pingCtx, cancel := context.WithTimeout(ctx, r.config.ConnectionTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return ErrConnectionError("failed to ping Redis", err)
	}

	r.client = client
	r.isOpen.Store(true)

	logger.Ctx(ctx).Info("Redis连接成功",
		zap.String("addr", r.config.Addr()),
		zap.Int("database", r.config.Database))

	return nil
}

func (r *RedisStorage) Name() string { return "redis" }

// Close 关闭连接
func (r *RedisStorage) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isOpen.CompareAndSwap(true, false) {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return ErrConnectionError("failed to close Redis client", err)
	}
	logger.Ctx(context.Background()).Info("Redis连接已关闭")
	return nil
}

// Store 发布事件，bookTicker 和 kline 额外写入最新值
func (r *RedisStorage) Store(ctx context.Context, streamName string, ev stream.Event) error {
	if !r.isOpen.Load() {
		return ErrConnectionClosed
	}
	if ev == nil || stream.IsReconnect(ev) {
		r.stats.skipped.Inc()
		return nil
	}

	payload, err := encodePayload(streamName, ev, r.now())
	if err != nil {
		r.stats.recordFailure(err)
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Publish(ctx, channelKey(r.config.KeyPrefix, streamName), payload)
	if key, ok := latestKey(r.config.KeyPrefix, ev); ok {
		pipe.Set(ctx, key, payload, r.config.LatestTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		err = ErrQueryError("failed to publish event to Redis", err)
		r.stats.recordFailure(err)
		return err
	}

	r.stats.recordSuccess(1)
	return nil
}

// LatestBookTicker 读取某个交易对最近一次的 bookTicker
func (r *RedisStorage) LatestBookTicker(ctx context.Context, symbol string) (*stream.BookTickerEvent, error) {
	if !r.isOpen.Load() {
		return nil, ErrConnectionClosed
	}

	data, err := r.client.Get(ctx, bookTickerKey(r.config.KeyPrefix, symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, ErrQueryError("failed to get latest bookTicker", err)
	}
	return decodeBookTickerPayload(data)
}

func (r *RedisStorage) Stats() Stats {
	return r.stats.snapshot()
}

// ========== 键与消息体 ==========

func channelKey(prefix, streamName string) string {
	return prefix + ":" + streamName
}

func bookTickerKey(prefix, symbol string) string {
	return prefix + ":bookTicker:" + strings.ToUpper(symbol)
}

func klineKey(prefix, symbol, interval string) string {
	return prefix + ":kline:" + strings.ToUpper(symbol) + ":" + interval
}

// latestKey 需要缓存最新值的事件返回对应的键
func latestKey(prefix string, ev stream.Event) (string, bool) {
	switch e := ev.(type) {
	case stream.BookTickerEvent:
		return bookTickerKey(prefix, e.Symbol), true
	case stream.KlineEvent:
		return klineKey(prefix, e.Symbol, e.Kline.Interval), true
	default:
		return "", false
	}
}

func encodePayload(streamName string, ev stream.Event, now time.Time) ([]byte, error) {
	data, err := json.Marshal(EventPayload{
		Stream:     streamName,
		Kind:       ev.Kind(),
		ReceivedAt: now.UnixMilli(),
		Data:       ev,
	})
	if err != nil {
		return nil, ErrInvalidData(errors.Wrapf(err, "failed to encode %s event", ev.Kind()).Error())
	}
	return data, nil
}

func decodeBookTickerPayload(data []byte) (*stream.BookTickerEvent, error) {
	var raw struct {
		Kind stream.EventKind       `json:"kind"`
		Data stream.BookTickerEvent `json:"data"`
	}
	if err := stream.Unmarshal(data, &raw); err != nil {
		return nil, ErrInvalidData("malformed bookTicker payload: " + err.Error())
	}
	if raw.Kind != stream.KindBookTicker {
		return nil, ErrInvalidData("unexpected payload kind " + string(raw.Kind))
	}
	return &raw.Data, nil
}
