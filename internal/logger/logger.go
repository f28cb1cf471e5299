// Package logger provides a category-gated structured logger. The set of
// enabled categories is fixed at construction; nothing mutates it afterwards.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Categories recognized by the logger.
const (
	CategoryInfo    = "info"
	CategoryWarn    = "warn"
	CategoryError   = "error"
	CategorySuccess = "success"
)

// Interface is what the pipeline and crawlers log through.
type Interface interface {
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	Success(msg string, fields ...any)
	With(fields ...any) Interface
}

// Logger wraps zap with a per-category enable switch.
type Logger struct {
	zl      *zap.SugaredLogger
	enabled map[string]bool
}

// New builds a Logger writing console-encoded output to stdout. With no
// arguments every category is enabled.
func New(categories ...string) *Logger {
	if len(categories) == 0 {
		categories = []string{CategoryInfo, CategoryWarn, CategoryError, CategorySuccess}
	}
	enabled := make(map[string]bool, len(categories))
	for _, c := range categories {
		enabled[c] = true
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{"stdout"}
	zl := zap.Must(cfg.Build())

	return &Logger{zl: zl.Sugar(), enabled: enabled}
}

func (l *Logger) Info(msg string, fields ...any) {
	if l.enabled[CategoryInfo] {
		l.zl.Infow(msg, fields...)
	}
}

func (l *Logger) Warn(msg string, fields ...any) {
	if l.enabled[CategoryWarn] {
		l.zl.Warnw(msg, fields...)
	}
}

func (l *Logger) Error(msg string, fields ...any) {
	if l.enabled[CategoryError] {
		l.zl.Errorw(msg, fields...)
	}
}

// Success logs at info level under its own gate, so saved-item noise can be
// switched off independently of operational info.
func (l *Logger) Success(msg string, fields ...any) {
	if l.enabled[CategorySuccess] {
		l.zl.Infow(msg, fields...)
	}
}

func (l *Logger) With(fields ...any) Interface {
	return &Logger{zl: l.zl.With(fields...), enabled: l.enabled}
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}
