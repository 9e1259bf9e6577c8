package log

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type pair struct {
	base    *zap.Logger
	skipped *zap.Logger // 跳过本包的调用栈
}

var current atomic.Pointer[pair]

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	SetLogger(l)
}

// 替换全局logger，nil时关闭日志输出
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(&pair{base: l, skipped: l.WithOptions(zap.AddCallerSkip(1))})
}

// 按级别创建命令行用的logger
func New(verbose bool) (l *zap.Logger, err error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func Debug(msg string, fields ...zap.Field) {
	current.Load().skipped.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	current.Load().skipped.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	current.Load().skipped.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	current.Load().skipped.Error(msg, fields...)
}

func Sync() error {
	return current.Load().skipped.Sync()
}
