package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.RWMutex
	current = log.NewWithOptions(io.Discard, log.Options{})
	logFile *os.File
)

func Init(w io.Writer, level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Level:           lvl,
		Prefix:          "lrcplay",
	})

	mu.Lock()
	current = l
	mu.Unlock()

	return nil
}

// empty path disables logging
func InitFile(path string, level string) error {
	if path == "" {
		return Init(io.Discard, level)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if err := Init(f, level); err != nil {
		f.Close()
		return err
	}

	mu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	mu.Unlock()

	return nil
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	current = log.NewWithOptions(io.Discard, log.Options{})
}

func get() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func Debug(msg string, keyvals ...any) { get().Debug(msg, keyvals...) }
func Info(msg string, keyvals ...any)  { get().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { get().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { get().Error(msg, keyvals...) }

func LogWithErr(msg string, err error, keyvals ...any) {
	if err == nil {
		Info(msg, keyvals...)
		return
	}
	Error(msg, append(keyvals, "err", err)...)
}
