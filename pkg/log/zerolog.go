package log

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/polycv/pkg/errors"
)

// ZerologLogger adapts a zerolog.Logger to Logger. Errors that implement
// zerolog.LogObjectMarshaler are logged as nested objects next to the
// plain error message.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps l.
func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: l}
}

// NewConsoleLogger returns a human-readable zerolog logger writing to w,
// with float fields rounded to three decimals.
func NewConsoleLogger(w io.Writer, level Level) *ZerologLogger {
	if w == nil {
		w = os.Stderr
	}
	writer := zerolog.ConsoleWriter{Out: w}
	writer.FormatFieldValue = func(i interface{}) string {
		switch v := i.(type) {
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return fmt.Sprintf("%.3g", f)
			}
			return v.String()
		default:
			return fmt.Sprintf("%v", i)
		}
	}
	l := zerolog.New(writer).Level(ToZerologLevel(level)).With().Timestamp().Logger()
	return NewZerologLogger(l)
}

// NewJSONLogger returns a zerolog logger emitting one JSON object per line.
func NewJSONLogger(w io.Writer, level Level) *ZerologLogger {
	l := zerolog.New(w).Level(ToZerologLevel(level)).With().Timestamp().Logger()
	return NewZerologLogger(l)
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", s)
	}
}

// ToZerologLevel maps a Level onto zerolog's level scale.
func ToZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// InstallWarnings routes errors.Warn through l at warn level.
func InstallWarnings(l *ZerologLogger) {
	if l == nil {
		errors.SetZerologWarnFunc(nil)
		return
	}
	errors.SetZerologWarnFunc(func(w error) {
		ev := l.logger.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.Object("warning", m)
		}
		ev.Msg(w.Error())
	})
}

func (z *ZerologLogger) Debug(msg string, fields ...any) {
	z.emit(z.logger.Debug(), msg, fields)
}

func (z *ZerologLogger) Info(msg string, fields ...any) {
	z.emit(z.logger.Info(), msg, fields)
}

func (z *ZerologLogger) Warn(msg string, fields ...any) {
	z.emit(z.logger.Warn(), msg, fields)
}

func (z *ZerologLogger) Error(msg string, fields ...any) {
	rest, err := splitError(fields)
	ev := z.logger.Error()
	if err != nil {
		ev = withError(ev, ErrAttrKey, err)
	}
	z.emit(ev, msg, rest)
}

func (z *ZerologLogger) With(fields ...any) Logger {
	return &ZerologLogger{logger: z.logger.With().Fields(pairs(fields)).Logger()}
}

func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return ToZerologLevel(level) >= z.logger.GetLevel() && ToZerologLevel(level) >= zerolog.GlobalLevel()
}

func (z *ZerologLogger) emit(ev *zerolog.Event, msg string, fields []any) {
	if ev == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		if err, ok := fields[i+1].(error); ok {
			ev = withError(ev, key, err)
			continue
		}
		ev = ev.Interface(key, fields[i+1])
	}
	ev.Msg(msg)
}

func withError(ev *zerolog.Event, key string, err error) *zerolog.Event {
	ev = ev.Str(key, err.Error())
	var m zerolog.LogObjectMarshaler
	if errors.As(err, &m) {
		ev = ev.Object(key+"_detail", m)
	}
	return ev
}

// pairs converts alternating key/value fields into a map for zerolog's Fields.
func pairs(fields []any) map[string]interface{} {
	m := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		if err, ok := fields[i+1].(error); ok {
			m[key] = err.Error()
			continue
		}
		m[key] = fields[i+1]
	}
	return m
}
