package storage

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/lib/pq"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/riven-blade/binance-cex/config"
	"github.com/riven-blade/binance-cex/pkg/binance/stream"
	"github.com/riven-blade/binance-cex/pkg/logger"
)

// QuestDBStorage 成交、归集成交、已收盘 K 线和 bookTicker 的时序存储
type QuestDBStorage struct {
	config *config.QuestDBConfig
	db     *sql.DB
	isOpen atomic.Bool
	mu     sync.Mutex
	now    func() time.Time

	batch *BatchProcessor
	stats storeStats
}

// NewQuestDBStorage 创建并连接 QuestDB 存储实例
func NewQuestDBStorage(ctx context.Context, conf *config.QuestDBConfig) (*QuestDBStorage, error) {
	if conf == nil {
		conf = config.NewQuestDBConfig()
	}

	storage := &QuestDBStorage{
		config: conf,
		now:    time.Now,
	}

	if err := storage.Connect(ctx); err != nil {
		return nil, ErrConnectionError("failed to initialize QuestDB storage", err)
	}

	go func() {
		<-ctx.Done()
		if err := storage.Close(); err != nil {
			logger.Ctx(context.Background()).Error("QuestDB存储关闭失败", zap.Error(err))
		}
	}()

	return storage, nil
}

// Connect 连接到 QuestDB 并建表
func (q *QuestDBStorage) Connect(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.isOpen.Load() {
		return nil
	}

	db, err := sql.Open("postgres", q.config.DSN())
	if err != nil {
		return ErrConnectionError("failed to open database", err)
	}
	db.SetMaxOpenConns(q.config.MaxConnections)
	db.SetMaxIdleConns(q.config.MaxConnections / 2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, q.config.ConnectionTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return ErrConnectionError("failed to ping QuestDB", err)
	}
	if err := initTables(pingCtx, db); err != nil {
		_ = db.Close()
		return err
	}

	q.db = db
	q.batch = newBatchProcessor(db, q.config.BatchSize, q.config.FlushInterval, q.config.QueryTimeout)
	q.batch.onFlush = q.recordFlush
	q.batch.start()
	q.isOpen.Store(true)

	logger.Ctx(ctx).Info("QuestDB连接成功",
		zap.String("host", q.config.Host),
		zap.Int("port", q.config.Port),
		zap.String("database", q.config.Database))

	return nil
}

func initTables(ctx context.Context, db execer) error {
	for _, t := range allTables {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return ErrQueryError("failed to create table "+t.name, err)
		}
	}
	return nil
}

func (q *QuestDBStorage) Name() string { return "questdb" }

// Store 转换为行并缓冲，达到批量上限时立即写入；没有对应表的事件返回 ErrUnsupportedEvent
func (q *QuestDBStorage) Store(ctx context.Context, _ string, ev stream.Event) error {
	if !q.isOpen.Load() {
		return ErrConnectionClosed
	}
	if ev == nil {
		return nil
	}

	rows := rowsFor(ev, q.now())
	if len(rows) == 0 {
		q.stats.skipped.Inc()
		return errors.Wrapf(ErrUnsupportedEvent, "questdb does not persist %s", ev.Kind())
	}
	if q.batch.add(rows) {
		return q.batch.flush(ctx)
	}
	return nil
}

// Flush 立即写入缓冲
func (q *QuestDBStorage) Flush(ctx context.Context) error {
	if !q.isOpen.Load() {
		return ErrConnectionClosed
	}
	return q.batch.flush(ctx)
}

// Close 写入剩余数据后关闭连接
func (q *QuestDBStorage) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.isOpen.CompareAndSwap(true, false) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.config.QueryTimeout)
	defer cancel()

	flushErr := q.batch.stop(ctx)
	closeErr := q.db.Close()
	if closeErr != nil {
		closeErr = ErrConnectionError("failed to close database connection", closeErr)
	}

	logger.Ctx(context.Background()).Info("QuestDB连接已关闭")
	return errors.CombineErrors(flushErr, closeErr)
}

// RecentTrades 查询某交易对最近的成交，按时间倒序
func (q *QuestDBStorage) RecentTrades(ctx context.Context, symbol string, limit int) ([]stream.TradeEvent, error) {
	if !q.isOpen.Load() {
		return nil, ErrConnectionClosed
	}
	if symbol == "" {
		return nil, ErrInvalidData("symbol is required")
	}
	if limit <= 0 || limit > 10000 {
		limit = 1000
	}

	ctx, cancel := context.WithTimeout(ctx, q.config.QueryTimeout)
	defer cancel()

	rows, err := q.db.QueryContext(ctx,
		`SELECT symbol, trade_id, price, quantity, buyer_maker, ts FROM trades WHERE symbol = $1 ORDER BY ts DESC LIMIT $2`,
		symbol, limit)
	if err != nil {
		return nil, ErrQueryError("failed to query trades", err)
	}
	defer rows.Close()

	var trades []stream.TradeEvent
	for rows.Next() {
		var (
			t        stream.TradeEvent
			price    float64
			quantity float64
			ts       time.Time
		)
		if err := rows.Scan(&t.Symbol, &t.TradeID, &price, &quantity, &t.IsBuyerMaker, &ts); err != nil {
			return nil, ErrQueryError("failed to scan trade", err)
		}
		t.EventType = "trade"
		t.Price = decimalFromFloat(price)
		t.Quantity = decimalFromFloat(quantity)
		t.TradeTime = ts.UnixMilli()
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrQueryError("failed to iterate rows", err)
	}
	return trades, nil
}

func (q *QuestDBStorage) Stats() Stats {
	return q.stats.snapshot()
}

func (q *QuestDBStorage) recordFlush(tableName string, rows int, err error) {
	if err != nil {
		q.stats.recordFailure(err)
		logger.Ctx(context.Background()).Warn("QuestDB批量写入失败",
			zap.String("table", tableName), zap.Int("rows", rows), zap.Error(err))
		return
	}
	q.stats.recordSuccess(rows)
}
