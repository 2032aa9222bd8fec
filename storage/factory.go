package storage

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/riven-blade/binance-cex/config"
	"github.com/riven-blade/binance-cex/pkg/binance/stream"
	"github.com/riven-blade/binance-cex/pkg/logger"
)

// StorageManager 把事件扇出到全部已启用的存储
type StorageManager struct {
	mu     sync.RWMutex
	stores []EventStore
}

// NewStorageManager 按配置创建存储，未配置的存储不启用
func NewStorageManager(ctx context.Context, conf *config.StorageConfig) (*StorageManager, error) {
	manager := &StorageManager{}
	if conf == nil {
		return manager, nil
	}

	if conf.QuestDB != nil {
		questDB, err := NewQuestDBStorage(ctx, conf.QuestDB)
		if err != nil {
			return nil, err
		}
		manager.Add(questDB)
		logger.Ctx(ctx).Info("QuestDB存储初始化成功")
	}

	if conf.Redis != nil {
		redisStorage, err := NewRedisStorage(ctx, conf.Redis)
		if err != nil {
			_ = manager.Close()
			return nil, err
		}
		manager.Add(redisStorage)
		logger.Ctx(ctx).Info("Redis存储初始化成功")
	}

	return manager, nil
}

// NewStorageManagerWith 使用已创建的存储
func NewStorageManagerWith(stores ...EventStore) *StorageManager {
	return &StorageManager{stores: stores}
}

func (sm *StorageManager) Add(store EventStore) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.stores = append(sm.stores, store)
}

func (sm *StorageManager) Name() string { return "manager" }

func (sm *StorageManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.stores)
}

// Store 写入每个存储，单个存储失败不影响其他存储。
// 只有全部存储都不接受该事件时才返回 ErrUnsupportedEvent
func (sm *StorageManager) Store(ctx context.Context, streamName string, ev stream.Event) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var errs error
	unsupported := 0
	for _, s := range sm.stores {
		err := s.Store(ctx, streamName, ev)
		switch {
		case err == nil:
		case errors.Is(err, ErrUnsupportedEvent):
			unsupported++
		default:
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "%s", s.Name()))
		}
	}
	if errs == nil && unsupported > 0 && unsupported == len(sm.stores) {
		return errors.Wrapf(ErrUnsupportedEvent, "no store accepts %s", streamName)
	}
	return errs
}

// Close 关闭全部存储
func (sm *StorageManager) Close() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	var errs error
	for _, s := range sm.stores {
		if err := s.Close(); err != nil {
			logger.Ctx(context.Background()).Error("存储关闭失败", zap.String("store", s.Name()), zap.Error(err))
			errs = errors.CombineErrors(errs, err)
		}
	}
	sm.stores = nil
	return errs
}
