package logging

import (
	"fmt"
	"os"
	"strconv"
)

// Env names the environment variables that override a Config.
// Empty names are not consulted.
type Env struct {
	Level  string
	Format string
	Source string
}

// Config is the [logging] section.
type Config struct {
	// Default: info
	Level Level `toml:"level"`

	// Default: text
	Format Format `toml:"format"`

	// Source adds the calling file and line to each record.
	Source bool `toml:"source"`
}

// Finalize fills defaults, applies env overrides, and normalizes Level and
// Format, rejecting values ParseLevel or ParseFormat do not accept.
func (c *Config) Finalize(env *Env) error {
	if c.Level == "" {
		c.Level = LevelInfo
	}
	if c.Format == "" {
		c.Format = FormatText
	}

	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}

	level, err := ParseLevel(string(c.Level))
	if err != nil {
		return err
	}
	format, err := ParseFormat(string(c.Format))
	if err != nil {
		return err
	}
	c.Level, c.Format = level, format
	return nil
}

// Merge copies the overlay's set fields. Source can only be switched on.
func (c *Config) Merge(overlay *Config) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	c.Source = c.Source || overlay.Source
}

func (c *Config) loadEnv(env *Env) error {
	if v := lookup(env.Level); v != "" {
		c.Level = Level(v)
	}
	if v := lookup(env.Format); v != "" {
		c.Format = Format(v)
	}
	if v := lookup(env.Source); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env.Source, err)
		}
		c.Source = b
	}
	return nil
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
