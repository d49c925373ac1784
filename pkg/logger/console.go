package logger

import (
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// NewConsoleHandler is the human-readable handler used for local runs.
func NewConsoleHandler(level slog.Level) slog.Handler {
	return charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           charmlog.Level(level),
		ReportTimestamp: true,
	})
}
