// Package slogx builds the process logger and threads request-scoped
// loggers through context, so handlers and services log with the request's
// attributes already attached.
package slogx

import (
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler, verbosity and the identity attributes every
// record carries.
type Config struct {
	Service string
	Version string
	Env     string // "dev" enables source locations
	Level   string // debug, info, warn, error
	Format  string // json (default) or text
}

// New builds the root logger, stamps it with the service identity and
// installs it as slog's default so stray slog calls land in the same place.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev",
		Level:     levelFrom(cfg.Level),
	}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger
}

// levelFrom maps a config string to a slog level, defaulting to info on
// anything unrecognized.
func levelFrom(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
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
