package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initLogger starts at info; the level is returned so LOG_LEVEL can be
// applied once config is loaded, which itself needs a logger.
func initLogger() (*zap.Logger, zap.AtomicLevel) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = ""
	logger, _ := cfg.Build()
	return logger, cfg.Level
}

func setLevel(level zap.AtomicLevel, name string, logger *zap.Logger) {
	if err := level.UnmarshalText([]byte(name)); err != nil {
		logger.Warn("bad_log_level", zap.String("level", name), zap.Error(err))
	}
}
