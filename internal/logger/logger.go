// Package logger provides structured logging utilities for the application.
// It wraps log/slog with JSON formatting, supports context-based logging
// with request IDs, and can ship records to Better Stack without blocking
// request paths.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// Logger is the application logger
type Logger struct {
	*slog.Logger
}

// ShutdownFunc flushes any buffered log output.
type ShutdownFunc func(context.Context) error

// Options configures the full log pipeline.
type Options struct {
	Level  string
	Writer io.Writer // defaults to os.Stdout

	// Better Stack log shipping, disabled when Token is empty.
	BetterstackToken    string
	BetterstackEndpoint string
}

// New creates a new logger instance with JSON formatting
func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter creates a new logger instance with JSON formatting writing to the provided writer
func NewWithWriter(level string, w io.Writer) *Logger {
	handler := slog.NewJSONHandler(w, jsonHandlerOptions(ParseLevel(level)))
	return &Logger{Logger: slog.New(handler)}
}

// NewWithOptions creates the full log pipeline: a console JSON handler, an
// optional asynchronous Better Stack shipper, and a context handler that
// stamps records with tracing values. The returned shutdown function
// flushes buffered remote records and must be called before exit.
func NewWithOptions(opts Options) (*Logger, ShutdownFunc) {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	level := ParseLevel(opts.Level)

	handlers := []slog.Handler{slog.NewJSONHandler(w, jsonHandlerOptions(level))}

	var async *AsyncHandler
	if opts.BetterstackToken != "" {
		remote := slogbetterstack.Option{
			Level:    level,
			Token:    opts.BetterstackToken,
			Endpoint: opts.BetterstackEndpoint,
		}.NewBetterstackHandler()
		async = NewAsyncHandler(remote, AsyncOptions{})
		handlers = append(handlers, async)
	}

	root := NewContextHandler(NewMultiHandler(handlers...))
	log := &Logger{Logger: slog.New(root)}

	shutdown := func(ctx context.Context) error {
		if async == nil {
			return nil
		}
		return async.Shutdown(ctx)
	}
	return log, shutdown
}

// ParseLevel maps a configuration string onto a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func jsonHandlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
				// slog uses RFC3339Nano by default, which is fine
			}
			if a.Key == slog.LevelKey {
				a.Key = "level"
				level := a.Value.String()
				if level == "WARN" {
					level = "warning"
				} else {
					level = strings.ToLower(level)
				}
				a.Value = slog.StringValue(level)
			}
			if a.Key == slog.MessageKey {
				a.Key = "message"
			}
			return a
		},
	}
}

// WithModule creates a new entry with module field
func (l *Logger) WithModule(module string) *Logger {
	return &Logger{Logger: l.With("module", module)}
}

// WithRequestID creates a new entry with request ID field
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.With("request_id", requestID)}
}

// WithError creates a new entry with error field
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.With("error", err)}
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.With(key, value)}
}

// WithFields creates a new entry with multiple fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.With(args...)}
}

// Compatibility methods for logrus-style formatting

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}

// Fatal logs the message at error level and exits the process.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}
