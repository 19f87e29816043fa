package storage

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
)

// Config contains the root and read limits of a storage system.
type Config struct {
	// BasePath is the root directory all keys resolve under.
	BasePath string `toml:"base_path"`

	// MaxReadSize bounds Retrieve. Empty or "0" disables the limit.
	MaxReadSize    string `toml:"max_read_size"`
	maxReadSizeVal int64
}

// Env maps environment variable names for storage configuration.
type Env struct {
	BasePath    string
	MaxReadSize string
}

// MaxReadSizeBytes returns the parsed read limit, or 0 when unlimited.
func (c *Config) MaxReadSizeBytes() int64 {
	return c.maxReadSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}

	if size, err := units.FromHumanSize(overlay.MaxReadSize); err == nil {
		c.MaxReadSize = overlay.MaxReadSize
		c.maxReadSizeVal = size
	}
}

func (c *Config) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "."
	}
	if c.MaxReadSize == "" {
		c.MaxReadSize = "0"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BasePath != "" {
		if v := os.Getenv(env.BasePath); v != "" {
			c.BasePath = v
		}
	}
	if env.MaxReadSize != "" {
		if v := os.Getenv(env.MaxReadSize); v != "" {
			c.MaxReadSize = v
		}
	}
}

func (c *Config) validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("base_path required")
	}

	size, err := units.FromHumanSize(c.MaxReadSize)
	if err != nil {
		return fmt.Errorf("invalid max_read_size: %w", err)
	}
	if size < 0 {
		return fmt.Errorf("max_read_size must not be negative")
	}
	c.maxReadSizeVal = size

	return nil
}
