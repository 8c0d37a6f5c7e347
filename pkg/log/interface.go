// Package log provides a structured logging interface for polycv.
//
// The Logger interface is slog-compatible (alternating key/value fields) so
// library code never depends on a concrete backend. Two backends ship with
// the package:
//
//   - NewSlogLogger wraps a *slog.Logger; SetupLogger configures the default
//     one with Cloud Logging field names and cockroachdb stack extraction.
//   - NewZerologLogger wraps a zerolog.Logger; errors implementing
//     zerolog.LogObjectMarshaler are emitted as structured objects.
//
// Example usage:
//
//	logger := log.GetLogger().With(log.ComponentKey, "model_selection")
//	logger.Info("sweep started",
//	    log.SamplesKey, 100,
//	    log.FoldsKey, 5,
//	)
package log

import (
	"context"
	"sync"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
type Logger interface {
	// Debug logs a debug-level message with optional key/value fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional key/value fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional key/value fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. If the first field is an error it
	// is attached under ErrAttrKey and the remaining fields are key/value
	// pairs:
	//
	//	logger.Error("fit failed", err, log.OrderKey, 3)
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = nopLogger{}
)

// GetLogger returns the process-wide default logger. Until SetLogger is
// called it discards everything.
func GetLogger() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetLogger replaces the process-wide default logger. A nil logger restores
// the discarding default.
func SetLogger(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if l == nil {
		l = nopLogger{}
	}
	defaultLogger = l
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
func (n nopLogger) With(...any) Logger { return n }
func (nopLogger) Enabled(context.Context, Level) bool { return false }

// splitError separates a leading error value from the key/value fields.
func splitError(fields []any) ([]any, error) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			return fields[1:], err
		}
	}
	return fields, nil
}
