package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/YuminosukeSato/unifit/pkg/errors"
)

var (
	loggerMu      sync.RWMutex
	defaultLogger Logger = NewZerologLogger(os.Stderr, LevelInfo)
)

// GetLogger returns the process-wide default logger.
func GetLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// SetLogger replaces the process-wide default logger.
func SetLogger(l Logger) {
	if l == nil {
		l = NewNopLogger()
	}
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = l
}

// SetupLogger function setup logger.
// It installs a zerolog logger writing to w as the default and routes library
// warnings (errors.Warn) into it.
func SetupLogger(loglevel string, w io.Writer, console bool) error {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return err
	}
	var l Logger
	if console {
		l = NewConsoleLogger(w, level)
	} else {
		l = NewZerologLogger(w, level)
	}
	SetLogger(l)
	BridgeWarnings(l)
	return nil
}

// BridgeWarnings routes warnings raised through errors.Warn to l at warn level.
func BridgeWarnings(l Logger) {
	errors.SetZerologWarnFunc(func(w error) {
		l.Warn(w.Error(), ErrorTypeKey, fmt.Sprintf("%T", w), "warning", w)
	})
}

// ToLogLevel parses a level name.
func ToLogLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValueError("log.ToLogLevel", fmt.Sprintf("invalid log level: %s", level))
	}
}

// NopLogger discards everything.
type NopLogger struct{}

// NewNopLogger returns a Logger that discards all records.
func NewNopLogger() NopLogger { return NopLogger{} }

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any) {}
func (NopLogger) Warn(string, ...any) {}
func (NopLogger) Error(string, ...any) {}
func (n NopLogger) With(...any) Logger { return n }
func (NopLogger) Enabled(context.Context, Level) bool { return false }
