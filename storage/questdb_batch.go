package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/riven-blade/binance-cex/pkg/logger"
)

// execer *sql.DB 的写入子集
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// BatchProcessor 按表缓冲行，数量达到 maxBatchSize 或定时器到期时写入
type BatchProcessor struct {
	db            execer
	flushInterval time.Duration
	maxBatchSize  int
	queryTimeout  time.Duration

	mu      sync.Mutex
	pending map[string][][]interface{}
	count   int

	// 每张表写入后回调，用于统计
	onFlush func(table string, rows int, err error)

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newBatchProcessor(db execer, maxBatchSize int, flushInterval, queryTimeout time.Duration) *BatchProcessor {
	return &BatchProcessor{
		db:            db,
		flushInterval: flushInterval,
		maxBatchSize:  maxBatchSize,
		queryTimeout:  queryTimeout,
		pending:       make(map[string][][]interface{}),
		stopChan:      make(chan struct{}),
	}
}

// add 缓冲行，返回是否已达到批量上限
func (bp *BatchProcessor) add(rows []row) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for _, r := range rows {
		bp.pending[r.table.name] = append(bp.pending[r.table.name], r.values)
		bp.count++
	}
	return bp.count >= bp.maxBatchSize
}

// size 当前缓冲的行数
func (bp *BatchProcessor) size() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.count
}

// flush 写入全部缓冲，失败的批次不会重新入队
func (bp *BatchProcessor) flush(ctx context.Context) error {
	bp.mu.Lock()
	pending := bp.pending
	bp.pending = make(map[string][][]interface{})
	bp.count = 0
	bp.mu.Unlock()

	var errs error
	for _, t := range allTables {
		rows := pending[t.name]
		if len(rows) == 0 {
			continue
		}
		err := bp.insert(ctx, t, rows)
		if bp.onFlush != nil {
			bp.onFlush(t.name, len(rows), err)
		}
		errs = errors.CombineErrors(errs, err)
	}
	return errs
}

func (bp *BatchProcessor) insert(ctx context.Context, t table, rows [][]interface{}) error {
	if bp.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bp.queryTimeout)
		defer cancel()
	}

	query, args := buildInsert(t, rows)
	if _, err := bp.db.ExecContext(ctx, query, args...); err != nil {
		return ErrQueryError(fmt.Sprintf("failed to batch insert %d rows to %s", len(rows), t.name), err)
	}
	return nil
}

// start 启动定时刷新
func (bp *BatchProcessor) start() {
	bp.wg.Add(1)
	go func() {
		defer bp.wg.Done()

		ticker := time.NewTicker(bp.flushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := bp.flush(context.Background()); err != nil {
					logger.Ctx(context.Background()).Error("定时批量写入失败", zap.Error(err))
				}
			case <-bp.stopChan:
				return
			}
		}
	}()
}

// stop 停止定时刷新并写入剩余数据
func (bp *BatchProcessor) stop(ctx context.Context) error {
	bp.stopOnce.Do(func() { close(bp.stopChan) })
	bp.wg.Wait()
	return bp.flush(ctx)
}
