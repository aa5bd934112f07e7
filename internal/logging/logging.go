package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Init creates and sets the package-level default slog logger writing to w.
// Stdout carries predictions, so callers pass stderr. format "json" selects
// the JSONHandler; anything else uses the TextHandler.
func Init(w io.Writer, format string, level slog.Level) {
	slog.SetDefault(New(w, format, level))
}

// New builds a logger without installing it as the default.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
