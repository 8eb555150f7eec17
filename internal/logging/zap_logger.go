// file: internal/logging/zap_logger.go
package logging

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements Logger on top of a zap.SugaredLogger.
// All output goes to stderr so stdout stays free for protocol traffic.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger creates a ZapLogger writing to stderr at the given level.
// Unrecognized level strings fall back to info.
func NewZapLogger(level string) *ZapLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		parseLevel(level),
	)
	return &ZapLogger{sugar: zap.New(core).Sugar()}
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

// Debug logs a debug-level message with structured key-value pairs.
func (l *ZapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }

// Info logs an info-level message with structured key-value pairs.
func (l *ZapLogger) Info(msg string, args ...any) { l.sugar.Infow(msg, args...) }

// Warn logs a warning-level message with structured key-value pairs.
func (l *ZapLogger) Warn(msg string, args ...any) { l.sugar.Warnw(msg, args...) }

// Error logs an error-level message with structured key-value pairs.
func (l *ZapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// WithContext implements Logger. Context values are not currently extracted.
func (l *ZapLogger) WithContext(_ context.Context) Logger { return l }

// WithField returns a logger that includes the given field on every message.
func (l *ZapLogger) WithField(key string, value any) Logger {
	return &ZapLogger{sugar: l.sugar.With(key, value)}
}

// Sync flushes any buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

// SetupDefaultLogger installs a ZapLogger as the process-wide default
// and returns it.
func SetupDefaultLogger(level string) Logger {
	logger := NewZapLogger(level)
	SetDefaultLogger(logger)
	return logger
}
