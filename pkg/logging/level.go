package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is a configured severity threshold.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var levels = map[Level]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// ParseLevel accepts a level name in any case. "warning" is read as warn.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if l == "warning" {
		l = LevelWarn
	}
	if _, ok := levels[l]; !ok {
		return "", fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", s)
	}
	return l, nil
}

// Slog returns the slog threshold for l; unknown levels map to info.
func (l Level) Slog() slog.Level {
	if sl, ok := levels[l]; ok {
		return sl
	}
	return slog.LevelInfo
}

// Format selects the record encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := handlers[f]; !ok {
		return "", fmt.Errorf("invalid log format %q (must be text or json)", s)
	}
	return f, nil
}
