package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process wide logger. It discards everything until Init runs,
// so packages and tests can log unconditionally.
var Log = zap.NewNop().Sugar()

// Init installs a production logger at the given level ("debug", "info",
// "warn", "error"). An unknown level falls back to info.
func Init(level string) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}

// Sync flushes buffered entries; call it before the process exits.
func Sync() {
	_ = Log.Sync()
}
