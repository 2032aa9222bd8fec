package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/riven-blade/binance-cex/config"
	"github.com/riven-blade/binance-cex/core"
	"github.com/riven-blade/binance-cex/pkg/binance"
	"github.com/riven-blade/binance-cex/pkg/binance/endpoints"
	"github.com/riven-blade/binance-cex/pkg/binance/stream"
	"github.com/riven-blade/binance-cex/pkg/logger"
	"github.com/riven-blade/binance-cex/storage"
)

func main() {
	ctx := context.Background()

	configPath := os.Getenv(config.EnvConfigPath)
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath, ".env")
	if err != nil {
		logger.Ctx(ctx).Fatal("Failed to load config", zap.String("path", configPath), zap.Error(err))
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Ctx(ctx).Fatal("Failed to init logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	logger.Ctx(ctx).Info("Starting "+cfg.Name,
		zap.String("network", string(cfg.Binance.Network)),
		zap.Strings("streams", cfg.Streams))

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		logger.Ctx(ctx).Fatal("Recorder stopped with error", zap.Error(err))
	}
	logger.Ctx(context.Background()).Info(cfg.Name + " stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	api := cfg.APIConfig()

	client, err := binance.NewClientFromConfig(cfg.Binance.APIKey, cfg.Binance.SecretKey, api)
	if err != nil {
		return err
	}
	if err := checkConnectivity(ctx, endpoints.NewMarketData(client)); err != nil {
		return err
	}

	if len(cfg.Streams) == 0 {
		logger.Ctx(ctx).Info("No streams configured, nothing to record")
		return nil
	}

	// 存储跟随 ctx 关闭，这里只负责失败时的清理
	stores, err := storage.NewStorageManager(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if stores.Len() == 0 {
		logger.Ctx(ctx).Warn("No storage configured, events are counted but not persisted")
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Ctx(context.Background()).Error("Failed to close storage", zap.Error(err))
		}
	}()

	names := make([]stream.MarketStream, 0, len(cfg.Streams))
	for _, s := range cfg.Streams {
		names = append(names, stream.ParseMarketStream(s))
	}

	recorder, err := core.NewRecorder(api.WsEndpoint, names, stores, cfg.Recorder)
	if err != nil {
		return err
	}

	go reportStats(ctx, recorder, time.Minute)
	return recorder.Run(ctx)
}

// checkConnectivity 启动前检查 REST 连通性和本地时钟偏差
func checkConnectivity(ctx context.Context, market *endpoints.MarketData) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := market.Ping(ctx); err != nil {
		return errors.Wrap(err, "binance ping")
	}
	serverTime, err := market.ServerTime(ctx)
	if err != nil {
		return errors.Wrap(err, "binance server time")
	}

	skew := time.Since(time.UnixMilli(serverTime))
	logger.Ctx(ctx).Info("Binance REST reachable", zap.Duration("clockSkew", skew))
	if skew > time.Second || skew < -time.Second {
		logger.Ctx(ctx).Warn("Local clock differs from server, signed requests may be rejected", zap.Duration("clockSkew", skew))
	}
	return nil
}

func reportStats(ctx context.Context, recorder *core.Recorder, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := recorder.Stats()
			logger.Ctx(ctx).Info("Recorder stats",
				zap.Bool("connected", s.Connected),
				zap.Int64("events", s.Events),
				zap.Int64("reconnects", s.Reconnects),
				zap.Int64("storeErrors", s.StoreErrors),
				zap.Int64("skipped", s.Skipped))
		}
	}
}
