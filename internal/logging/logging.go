// =============================================================================
// Budget Analyzer - Logging
// =============================================================================
//
// Every package that logs takes a Logger. The interface is printf-style:
//
//   log.Info("Imported %s: %d budget items", name, n)
//
// The default implementation formats the message and hands it to log/slog,
// which adds the timestamp and level and filters by the configured level.
//
// CUSTOMIZATION: Implement Logger with another backend and pass it to the
// importer, the server and the commands.
//
// =============================================================================

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is an interface for leveled, printf-style logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// ParseLevel maps "debug", "info", "warn" and "error" (any case) to a slog
// level. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a Logger writing text records to w at or above level.
func New(w io.Writer, level string) Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &slogLogger{log: slog.New(h)}
}

// FromSlog wraps an existing slog.Logger.
func FromSlog(l *slog.Logger) Logger {
	return &slogLogger{log: l}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

// =============================================================================
// SLOG BACKEND
// =============================================================================

type slogLogger struct {
	log *slog.Logger
}

func (l *slogLogger) Debug(msg string, args ...interface{}) {
	l.logf(slog.LevelDebug, msg, args)
}

func (l *slogLogger) Info(msg string, args ...interface{}) {
	l.logf(slog.LevelInfo, msg, args)
}

func (l *slogLogger) Warn(msg string, args ...interface{}) {
	l.logf(slog.LevelWarn, msg, args)
}

func (l *slogLogger) Error(msg string, args ...interface{}) {
	l.logf(slog.LevelError, msg, args)
}

func (l *slogLogger) logf(level slog.Level, msg string, args []interface{}) {
	ctx := context.Background()
	if !l.log.Enabled(ctx, level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.log.Log(ctx, level, msg)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
