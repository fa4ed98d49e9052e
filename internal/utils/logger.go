// internal/utils/logger.go

package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger defines the interface for logging throughout the application.
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLogLevel converts a textual level into a LogLevel. Unknown values map to InfoLevel.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoggerOptions configures NewLoggerWithOptions.
type LoggerOptions struct {
	Level  LogLevel
	Format string // "text" or "json"
	Output io.Writer
}

// SlogLogger implements Logger on top of a slog.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewLogger creates a text logger writing to stderr at info level.
func NewLogger() Logger {
	return NewLoggerWithOptions(LoggerOptions{Level: InfoLevel})
}

// NewLoggerWithLevel creates a logger with the specified log level.
func NewLoggerWithLevel(level LogLevel) Logger {
	return NewLoggerWithOptions(LoggerOptions{Level: level})
}

// NewLoggerWithOptions creates a logger from explicit options.
func NewLoggerWithOptions(opts LoggerOptions) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level.slogLevel()}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return &SlogLogger{logger: slog.New(handler)}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return &SlogLogger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Implementation of Logger interface for SlogLogger

func (l *SlogLogger) Debug(msg string) {
	l.logger.Log(context.Background(), slog.LevelDebug, msg)
}

func (l *SlogLogger) Debugf(format string, args ...interface{}) {
	if !l.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Info(msg string) {
	l.logger.Info(msg)
}

func (l *SlogLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Warn(msg string) {
	l.logger.Warn(msg)
}

func (l *SlogLogger) Warnf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Error(msg string) {
	l.logger.Error(msg)
}

func (l *SlogLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) WithField(key string, value interface{}) Logger {
	return &SlogLogger{logger: l.logger.With(key, value)}
}

func (l *SlogLogger) WithFields(fields map[string]interface{}) Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &SlogLogger{logger: l.logger.With(args...)}
}

type loggerKey struct{}

// ContextWithLogger attaches a request-scoped logger to ctx
func ContextWithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the logger stored in ctx, or fallback
func LoggerFromContext(ctx context.Context, fallback Logger) Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(Logger); ok && logger != nil {
			return logger
		}
	}
	return fallback
}
