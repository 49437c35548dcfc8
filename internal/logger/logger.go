// Package logger holds the process-wide structured logger.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// ZapLogger wraps a *zap.Logger that can be reconfigured after construction.
type ZapLogger struct {
	Log *zap.Logger
}

// New returns a ZapLogger that discards everything until Init is called.
func New() *ZapLogger {
	return &ZapLogger{Log: zap.NewNop()}
}

// Init replaces the wrapped logger with a production JSON logger at the
// given level ("debug", "info", "warn", "error", ...). Level names are case-insensitive.
func (l *ZapLogger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	zl, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	l.Log = zl
	return nil
}
