// Package logger wraps zap behind a small interface so the rest of the
// application does not depend on a concrete logging backend.
package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used throughout the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// Field is a structured log field.
type Field struct {
	zap.Field
}

// String creates a string field.
func String(key, value string) Field {
	return Field{zap.String(key, value)}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{zap.Int(key, value)}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{zap.Int64(key, value)}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{zap.Duration(key, value)}
}

// Error creates an error field under the key "error".
func Error(err error) Field {
	return Field{zap.Error(err)}
}

type zapLogger struct {
	l *zap.Logger
}

// New creates a logger for the given environment and level. In "dev" the
// output is console-encoded; otherwise JSON with ISO8601 timestamps.
func New(environment, level, serviceName string) (Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zap.DebugLevel
	case "info":
		zapLevel = zap.InfoLevel
	case "warn":
		zapLevel = zap.WarnLevel
	case "error":
		zapLevel = zap.ErrorLevel
	default:
		zapLevel = zap.InfoLevel
	}

	var encoder zapcore.Encoder
	if environment == "dev" {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "time"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(
		encoder,
		zapcore.AddSync(os.Stdout),
		zap.NewAtomicLevelAt(zapLevel),
	)

	l := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)).
		With(zap.String("service", serviceName))

	return &zapLogger{l: l}, nil
}

// NewNop returns a logger that discards everything. Useful in tests.
func NewNop() Logger {
	return &zapLogger{l: zap.NewNop()}
}

func unwrap(fields []Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		zapFields[i] = f.Field
	}
	return zapFields
}

func (z *zapLogger) Debug(msg string, fields ...Field) { z.l.Debug(msg, unwrap(fields)...) }
func (z *zapLogger) Info(msg string, fields ...Field)  { z.l.Info(msg, unwrap(fields)...) }
func (z *zapLogger) Warn(msg string, fields ...Field)  { z.l.Warn(msg, unwrap(fields)...) }
func (z *zapLogger) Error(msg string, fields ...Field) { z.l.Error(msg, unwrap(fields)...) }

func (z *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{l: z.l.With(unwrap(fields)...)}
}

func (z *zapLogger) Sync() error { return z.l.Sync() }
