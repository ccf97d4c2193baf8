package common

import (
	"io"
	"log/slog"
)

// NewLogger builds the JSON logger the commands share. Debug mode lowers the
// level so parser decisions show up.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}))
}
