package config

import (
	"log/slog"
	"os"
)

// NewLogger returns a slog.Logger configured from the environment and
// LOG_LEVEL. Production uses a JSON handler; otherwise text.
// LOG_LEVEL may be: debug, info, warn, error (default: info).
// Logs go to stderr so stdout stays clean for rendered output.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		switch s {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
