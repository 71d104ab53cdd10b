package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Source locations are attached outside
// production, where the extra caller lookups are worth the cost.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{}
	if cfg == nil || !cfg.IsProduction() {
		opts.AddSource = true
	}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
