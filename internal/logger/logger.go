package logger

import (
	"os"
	"strings"

	"log/slog"

	"github.com/investpro/ledger/internal/config"
)

// NewLogger builds the process-wide JSON logger. Every line carries the
// service name and environment so the api and projector binaries can be told
// apart in shared log streams.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})

	log := slog.New(handler)
	if cfg.Application.Name != "" {
		log = log.With("service", cfg.Application.Name, "env", cfg.Application.Env)
	}

	log.Info("Logger initialized", "level", level)
	return log
}

// parseLevel maps the configured level name to a slog level, defaulting to
// info for anything unrecognized.
func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
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
