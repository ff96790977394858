package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var (
	disabled atomic.Bool
	level    = new(slog.LevelVar)
	logger   atomic.Pointer[slog.Logger]
)

func init() {
	logger.Store(newLogger(os.Stdout, "text"))
}

func newLogger(w io.Writer, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup replaces the process logger. format is "text" or "json";
// lvl is one of debug, info, warn, error.
func Setup(w io.Writer, format, lvl string) {
	level.Set(ParseLevel(lvl))
	l := newLogger(w, format)
	logger.Store(l)
	slog.SetDefault(l)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Disable turns off all logging
func Disable() {
	disabled.Store(true)
}

// Enable turns logging back on
func Enable() {
	disabled.Store(false)
}

// L returns the process logger. When logging is disabled the returned
// logger discards everything.
func L() *slog.Logger {
	if disabled.Load() {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger.Load()
}

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

// Info logs an info message
func Info(v ...any) {
	L().Info(fmt.Sprint(v...))
}

// Infof logs a formatted info message
func Infof(format string, v ...any) {
	L().Info(fmt.Sprintf(format, v...))
}

// Error logs an error message
func Error(v ...any) {
	L().Error(fmt.Sprint(v...))
}

// Errorf logs a formatted error message
func Errorf(format string, v ...any) {
	L().Error(fmt.Sprintf(format, v...))
}

// Warn logs a warning message
func Warn(v ...any) {
	L().Warn(fmt.Sprint(v...))
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...any) {
	L().Warn(fmt.Sprintf(format, v...))
}

// Debug logs a debug message
func Debug(v ...any) {
	L().Debug(fmt.Sprint(v...))
}

// Debugf logs a formatted debug message
func Debugf(format string, v ...any) {
	L().Debug(fmt.Sprintf(format, v...))
}

// Logger is a small logger that can be embedded in structs
type Logger struct {
	ctx context.Context
}

// WithContext creates a Logger bound to ctx.
func WithContext(ctx context.Context) Logger {
	return Logger{ctx: ctx}
}

func (l Logger) context() context.Context {
	if l.ctx == nil {
		return context.Background()
	}
	return l.ctx
}

// Info logs an info message
func (l Logger) Info(v ...any) {
	L().InfoContext(l.context(), fmt.Sprint(v...))
}

// Infof logs a formatted info message
func (l Logger) Infof(format string, v ...any) {
	L().InfoContext(l.context(), fmt.Sprintf(format, v...))
}

// Error logs an error message
func (l Logger) Error(v ...any) {
	L().ErrorContext(l.context(), fmt.Sprint(v...))
}

// Errorf logs a formatted error message
func (l Logger) Errorf(format string, v ...any) {
	L().ErrorContext(l.context(), fmt.Sprintf(format, v...))
}
