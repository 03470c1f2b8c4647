// Package obs is the runtime's logging seam: a thin, subsystem-tagged
// wrapper over log/slog, initialized once by the CLI entry point.
package obs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Level mirrors slog.Level but keeps callers from importing log/slog just
// to name a level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var defaultLogger *slog.Logger

// Init installs the process-wide logger, writing level-and-above records
// to output as text. Call once at startup.
func Init(level Level, output io.Writer) {
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: level.slogLevel()})
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func logf(level Level, subsystem string, err error, msg string, args ...any) {
	if defaultLogger == nil {
		return
	}
	slogLevel := level.slogLevel()
	if !defaultLogger.Enabled(context.Background(), slogLevel) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	defaultLogger.LogAttrs(context.Background(), slogLevel, msg, attrs...)
}

// Debug logs a debug-level message tagged with subsystem.
func Debug(subsystem, msg string, args ...any) {
	logf(LevelDebug, subsystem, nil, msg, args...)
}

// Info logs an info-level message tagged with subsystem.
func Info(subsystem, msg string, args ...any) {
	logf(LevelInfo, subsystem, nil, msg, args...)
}

// Warn logs a warn-level message tagged with subsystem.
func Warn(subsystem, msg string, args ...any) {
	logf(LevelWarn, subsystem, nil, msg, args...)
}

// Error logs an error-level message tagged with subsystem and err.
func Error(subsystem string, err error, msg string, args ...any) {
	logf(LevelError, subsystem, err, msg, args...)
}
