package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger and installs it as zap's global.
// The returned func flushes buffered entries.
func NewLogger(e Env) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(e.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if e.LogFile != "" {
		cfg.OutputPaths = []string{e.LogFile}
		cfg.ErrorOutputPaths = []string{e.LogFile}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	undo := zap.ReplaceGlobals(logger)
	return logger, func() {
		_ = logger.Sync()
		undo()
	}, nil
}
