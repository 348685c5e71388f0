package app

import (
	"io"
	"log/slog"
)

// logLevels maps the -log-level flag values onto slog levels. Anything
// unrecognised falls back to info so a typo never silences the shell.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the shell's logger from the resolved configuration. The
// instance is carried through the context via ctxlog rather than installed
// globally, so embeddings and tests keep isolated loggers.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	level, ok := logLevels[cfg.LogLevel]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
