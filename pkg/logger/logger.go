package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It discards everything until Init runs.
var Log = zap.NewNop()

// Init replaces Log. Development mode writes colored console lines at debug
// level; otherwise entries are JSON at info level. Every entry carries the
// given fields, typically the binary name.
func Init(isDevelopment bool, fields ...zap.Field) error {
	cfg := zap.NewProductionConfig()
	if isDevelopment {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel), zap.Fields(fields...))
	if err != nil {
		return err
	}
	Log = built
	return nil
}

// Sync flushes buffered entries; call it before the process exits.
func Sync() {
	_ = Log.Sync()
}
