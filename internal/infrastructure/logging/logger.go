// Package logging builds the slog logger shared by the cascade worker
// and the outbox publisher. HTTP request logging uses zerolog and lives
// in the adapter middleware.
package logging

import (
	"log/slog"
	"os"
)

// New creates a structured logger writing to stdout. Every line carries
// the service name so worker and server output can be told apart from
// other processes shipping to the same sink.
func New(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("service", "leaveledger")
}

// ParseLevel maps a config string to a slog level, defaulting to info.
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
