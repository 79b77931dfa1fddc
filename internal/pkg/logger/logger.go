package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Initialize creates and configures the default logger
func Initialize(env string) *slog.Logger {
	return InitializeWithWriter(env, "", os.Stdout)
}

// InitializeWithWriter builds the default logger writing to w. An empty level
// falls back to info in production and debug elsewhere.
func InitializeWithWriter(env, level string, w io.Writer) *slog.Logger {
	var handler slog.Handler

	if env == "production" {
		// JSON logging for production
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     parseLevel(level, slog.LevelInfo),
			AddSource: false,
		})
	} else {
		// Pretty text logging for development
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     parseLevel(level, slog.LevelDebug),
			AddSource: true,
		})
	}

	defaultLogger = slog.New(handler).With(slog.String("app", "cbam-emissions"))
	slog.SetDefault(defaultLogger)

	return defaultLogger
}

// Get returns the default logger instance
func Get() *slog.Logger {
	if defaultLogger == nil {
		return Initialize("development")
	}
	return defaultLogger
}

// NewServiceLogger creates a logger for a specific service
func NewServiceLogger(serviceName string) *slog.Logger {
	return Get().With(slog.String("service", serviceName))
}

// Err is the attribute used for errors across the codebase.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}

func parseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
