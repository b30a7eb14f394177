package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger from LOG_FORMAT and APP_ENV. "json"
// emits structured records for log shippers; anything else stays a readable
// text handler. Development runs at debug so permission denials and cache
// traffic show up locally.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg != nil && !cfg.IsProduction() {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "gudam"))
}
