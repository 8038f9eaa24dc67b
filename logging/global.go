package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	globalLogger Logger
	globalMu     sync.RWMutex
)

// Global returns the process-wide logger, creating a default one on first use.
func Global() Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewLogger(DefaultConfig())
	}
	return globalLogger
}

// SetGlobal replaces the global logger.
func SetGlobal(logger Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// Init installs a logger built from config as the global logger.
func Init(config Config) Logger {
	l := NewLogger(config)
	SetGlobal(l)
	return l
}

func Debug(msg string, fields ...zap.Field) { Global().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Global().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Global().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Global().Error(msg, fields...) }

// Named creates a child of the global logger.
func Named(name string) Logger {
	return Global().Named(name)
}

// Sync flushes the global logger.
func Sync() error {
	return Global().Sync()
}
