// Package logging provides a process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

var (
	once   sync.Once
	logger *slog.Logger
)

// Configure initializes the singleton JSON logger. Safe to call more than
// once; only the first call's level takes effect.
func Configure(level slog.Level) *slog.Logger {
	once.Do(func() {
		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		logger = slog.New(handler)
	})
	return logger
}

// Logger returns the process logger, configuring it with default settings
// if no caller has done so yet.
func Logger() *slog.Logger {
	if logger == nil {
		return Configure(slog.LevelInfo)
	}
	return logger
}
