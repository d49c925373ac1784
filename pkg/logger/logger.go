package logger

import (
	"log/slog"
	"strings"
)

func New(level string, handler func(level slog.Level) slog.Handler) *slog.Logger {
	h := handler(getSlogLevel(level))
	return slog.New(h)
}

// HandlerFor picks the handler factory for a LOGFORMAT value.
func HandlerFor(format string) func(level slog.Level) slog.Handler {
	switch strings.ToLower(format) {
	case "console", "text":
		return NewConsoleHandler
	default:
		return NewCloudRunHandler
	}
}

func getSlogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
