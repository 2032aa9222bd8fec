package logger

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// FieldNameModule 模块字段名
	FieldNameModule = "module"

	defaultLogMaxSize = 300 // MB
)

// Config 日志配置
type Config struct {
	Level  string     `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string     `yaml:"format" json:"format"` // json, console
	File   FileConfig `yaml:"file" json:"file"`
	// 是否输出调用位置
	DisableCaller bool `yaml:"disable_caller" json:"disable_caller"`
}

// FileConfig 日志文件滚动配置，Filename 为空时输出到 stdout
type FileConfig struct {
	Filename   string `yaml:"filename" json:"filename"`
	MaxSize    int    `yaml:"max_size" json:"max_size"` // MB
	MaxDays    int    `yaml:"max_days" json:"max_days"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
}

// ZapProperties records some information about zap.
type ZapProperties struct {
	Core   zapcore.Core
	Syncer zapcore.WriteSyncer
	Level  zap.AtomicLevel
}

// MLogger is a wrapper type of zap.Logger.
type MLogger struct {
	*zap.Logger
}

// With encapsulates zap.Logger With method to return MLogger instance.
// 字段在第一次实际写日志时才编码
func (l *MLogger) With(fields ...zap.Field) *MLogger {
	return &MLogger{Logger: lazyWith(l.Logger, fields)}
}

var (
	_globalL atomic.Value
	_globalP atomic.Value
	// 全局日志函数使用的 callerSkip 版本
	_skipL atomic.Value

	initMu sync.Mutex
)

func init() {
	l, p, err := InitLogger(&Config{Level: "info", Format: "console"})
	if err != nil {
		panic(err)
	}
	ReplaceGlobals(l, p)
}

// Init 根据配置初始化全局 logger
func Init(cfg *Config) error {
	initMu.Lock()
	defer initMu.Unlock()

	l, p, err := InitLogger(cfg)
	if err != nil {
		return err
	}
	ReplaceGlobals(l, p)
	return nil
}

// InitLogger 创建 zap logger 但不替换全局实例
func InitLogger(cfg *Config, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	if cfg == nil {
		cfg = &Config{Level: "info", Format: "console"}
	}

	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
		}
	}

	var output zapcore.WriteSyncer
	if cfg.File.Filename != "" {
		maxSize := cfg.File.MaxSize
		if maxSize <= 0 {
			maxSize = defaultLogMaxSize
		}
		output = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File.Filename,
			MaxSize:    maxSize,
			MaxAge:     cfg.File.MaxDays,
			MaxBackups: cfg.File.MaxBackups,
			LocalTime:  true,
		})
	} else {
		output = zapcore.Lock(os.Stdout)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "", "console", "text":
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, nil, errors.Newf("unsupported log format %q", cfg.Format)
	}

	core := zapcore.NewCore(encoder, output, level)
	if !cfg.DisableCaller {
		opts = append(opts, zap.AddCaller())
	}
	opts = append(opts, zap.AddStacktrace(zapcore.DPanicLevel))

	lg := zap.New(core, opts...)
	return lg, &ZapProperties{Core: core, Syncer: output, Level: level}, nil
}

// ReplaceGlobals replaces the global Logger and SugaredLogger.
func ReplaceGlobals(logger *zap.Logger, props *ZapProperties) {
	_globalL.Store(logger)
	_globalP.Store(props)
	_skipL.Store(logger.WithOptions(zap.AddCallerSkip(1)))
}

// Sync flushes any buffered log entries.
func Sync() error {
	return L().Sync()
}

// L returns the global Logger, which can be reconfigured with ReplaceGlobals.
func L() *zap.Logger {
	return _globalL.Load().(*zap.Logger)
}

func ctxL() *zap.Logger {
	return L()
}

func skipL() *zap.Logger {
	return _skipL.Load().(*zap.Logger)
}
