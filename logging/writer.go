package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// stdout is swapped in tests to capture console output.
var stdout io.Writer = os.Stdout

var (
	openWriters   []*lumberjack.Logger
	openWritersMu sync.Mutex
)

// levelFile returns a rotating file writer for one level under config.Director.
func levelFile(config Config, level zapcore.Level) *lumberjack.Logger {
	_ = os.MkdirAll(config.Director, 0o755)

	w := &lumberjack.Logger{
		Filename:   filepath.Join(config.Director, level.String()+".log"),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
		LocalTime:  true,
	}

	openWritersMu.Lock()
	openWriters = append(openWriters, w)
	openWritersMu.Unlock()
	return w
}

// getWriteSyncer returns the sink for one level, teeing to stdout when
// LogInTerminal is set.
func getWriteSyncer(config Config, level zapcore.Level) zapcore.WriteSyncer {
	file := zapcore.AddSync(levelFile(config, level))
	if config.LogInTerminal {
		return zapcore.NewMultiWriteSyncer(zapcore.AddSync(stdout), file)
	}
	return file
}

// CloseAllWriters closes every log file opened by NewLogger.
func CloseAllWriters() error {
	openWritersMu.Lock()
	defer openWritersMu.Unlock()

	var lastErr error
	for _, w := range openWriters {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	openWriters = nil
	return lastErr
}
