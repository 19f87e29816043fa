// Package logging builds the slog.Logger handed to every component of a run.
// Records go to a caller-supplied writer in text or JSON form.
package logging

import (
	"io"
	"log/slog"
)

var handlers = map[Format]func(io.Writer, *slog.HandlerOptions) slog.Handler{
	FormatText: func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, o) },
	FormatJSON: func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewJSONHandler(w, o) },
}

// New returns a logger writing cfg.Format records at or above cfg.Level to w.
// An unrecognized format falls back to text.
func New(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level.Slog(),
		AddSource: cfg.Source,
	}

	build, ok := handlers[cfg.Format]
	if !ok {
		build = handlers[FormatText]
	}
	return slog.New(build(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
