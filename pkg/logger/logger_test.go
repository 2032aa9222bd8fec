package logger

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func replaceWithObserver(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	prevL, prevP := L(), _globalP.Load().(*ZapProperties)
	t.Cleanup(func() { ReplaceGlobals(prevL, prevP) })

	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	core, logs := observer.New(level)
	ReplaceGlobals(zap.New(core), &ZapProperties{Core: core, Level: level})
	return logs
}

func TestCtxCarriesFields(t *testing.T) {
	logs := replaceWithObserver(t)

	ctx := WithModule(context.Background(), "dispatcher")
	ctx = WithStream(ctx, "btcusdt@depth")
	Ctx(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "dispatcher", fields[FieldNameModule])
	assert.Equal(t, "btcusdt@depth", fields["stream"])
}

func TestCtxWithoutLogger(t *testing.T) {
	logs := replaceWithObserver(t)

	//nolint:staticcheck
	Ctx(nil).Warn("nil ctx")
	Ctx(context.Background()).Error("bare ctx")
	assert.Equal(t, 2, logs.Len())
}

func TestSetLevel(t *testing.T) {
	logs := replaceWithObserver(t)

	SetLevel(zapcore.WarnLevel)
	assert.Equal(t, zapcore.WarnLevel, GetLevel())

	Info("dropped")
	Warn("kept")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestInitWritesRotatedFile(t *testing.T) {
	prevL, prevP := L(), _globalP.Load().(*ZapProperties)
	t.Cleanup(func() { ReplaceGlobals(prevL, prevP) })

	file := filepath.Join(t.TempDir(), "binance.log")
	require.NoError(t, Init(&Config{
		Level:  "debug",
		Format: "json",
		File:   FileConfig{Filename: file, MaxSize: 1},
	}))

	Debug("written to file", zap.String("k", "v"))
	_ = Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestInitRejectsBadConfig(t *testing.T) {
	_, _, err := InitLogger(&Config{Level: "loud"})
	assert.Error(t, err)

	_, _, err = InitLogger(&Config{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestWithAttachesFieldsLazily(t *testing.T) {
	logs := replaceWithObserver(t)

	child := With(zap.String("streams", "btcusdt@trade"))
	grandchild := child.With(zap.Int("attempt", 2))
	assert.Equal(t, 0, logs.Len())

	child.Debug("connected")
	grandchild.Warn("reconnecting")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "btcusdt@trade", logs.All()[0].ContextMap()["streams"])
	fields := logs.All()[1].ContextMap()
	assert.Equal(t, "btcusdt@trade", fields["streams"])
	assert.Equal(t, int64(2), fields["attempt"])
}

func TestLazyWithConcurrentUse(t *testing.T) {
	logs := replaceWithObserver(t)

	child := With(zap.String("module", "recorder"))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			child.With(zap.Int("worker", i)).Info("tick")
		}(i)
	}
	wg.Wait()

	require.Equal(t, 8, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "recorder", entry.ContextMap()["module"])
	}
}

func TestLazyWithSkipsDisabledLevels(t *testing.T) {
	logs := replaceWithObserver(t)
	SetLevel(zapcore.ErrorLevel)

	child := With(zap.String("k", "v"))
	assert.False(t, child.Core().Enabled(zapcore.InfoLevel))
	child.Info("dropped")
	assert.Equal(t, 0, logs.Len())
}
