package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides leveled, printf-style logging throughout the application.
// It is backed by a zap SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// LoggerOptions selects the level and encoding of a Logger.
type LoggerOptions struct {
	Level       string
	Development bool
}

// NewLogger creates a Logger writing to stdout/stderr at info level.
func NewLogger() *Logger {
	l, err := NewLoggerWithOptions(LoggerOptions{Level: "info", Development: true})
	if err != nil {
		return NewNopLogger()
	}
	return l
}

// NewLoggerWithOptions builds a zap-backed Logger. Development mode uses the
// colored console encoder; otherwise entries are JSON.
func NewLoggerWithOptions(opts LoggerOptions) (*Logger, error) {
	var zapCfg zap.Config
	if opts.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.DisableStacktrace = true
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.Sampling = nil
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	zapCfg.DisableCaller = true
	zapCfg.Level = zap.NewAtomicLevelAt(parseLevel(opts.Level))

	z, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: build zap logger: %w", err)
	}
	return &Logger{sugar: z.Sugar()}, nil
}

// NewNopLogger returns a Logger that discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}
