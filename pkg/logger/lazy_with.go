package logger

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// lazyWithCore 第一次写日志时才把字段编码进 core
type lazyWithCore struct {
	core   atomic.Pointer[zapcore.Core]
	once   sync.Once
	fields []zapcore.Field
}

var _ zapcore.Core = (*lazyWithCore)(nil)

// NewLazyWith 包装 core，fields 在首次 Check/With/Sync 时才附加
func NewLazyWith(core zapcore.Core, fields []zapcore.Field) zapcore.Core {
	c := &lazyWithCore{fields: fields}
	c.core.Store(&core)
	return c
}

// lazyWith 返回带延迟字段的子 logger
func lazyWith(l *zap.Logger, fields []zap.Field) *zap.Logger {
	if len(fields) == 0 {
		return l
	}
	return l.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return NewLazyWith(core, fields)
	}))
}

func (c *lazyWithCore) load() zapcore.Core {
	c.once.Do(func() {
		core := (*c.core.Load()).With(c.fields)
		c.core.Store(&core)
	})
	return *c.core.Load()
}

// Enabled 只看级别，不需要初始化
func (c *lazyWithCore) Enabled(level zapcore.Level) bool {
	return (*c.core.Load()).Enabled(level)
}

func (c *lazyWithCore) With(fields []zapcore.Field) zapcore.Core {
	return c.load().With(fields)
}

func (c *lazyWithCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return c.load().Check(e, ce)
}

func (c *lazyWithCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	return c.load().Write(e, fields)
}

func (c *lazyWithCore) Sync() error {
	return c.load().Sync()
}
