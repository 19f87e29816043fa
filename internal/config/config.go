// Package config provides application configuration management with support for
// TOML files, environment variable overrides, and configuration overlays.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/yolo-folds/pkg/logging"
)

const (
	// BaseConfigFile is the primary configuration file name.
	BaseConfigFile = "config.toml"

	// OverlayConfigPattern is the file name pattern for environment-specific overlays.
	OverlayConfigPattern = "config.%s.toml"

	// EnvFoldsEnv specifies the environment name for configuration overlays.
	EnvFoldsEnv = "FOLDS_ENV"
)

var loggingEnv = &logging.Env{
	Level:  "FOLDS_LOG_LEVEL",
	Format: "FOLDS_LOG_FORMAT",
	Source: "FOLDS_LOG_SOURCE",
}

// Config represents the root configuration of a dataset build.
type Config struct {
	Dataset DatasetConfig  `toml:"dataset"`
	Output  OutputConfig   `toml:"output"`
	Logging logging.Config `toml:"logging"`
}

// Load reads the configuration file at path and applies any environment-specific
// overlay. An empty path, or the default file being absent, yields an empty
// configuration that Finalize fills with defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		loaded, err := load(path)
		switch {
		case err == nil:
			cfg = loaded
		case path == BaseConfigFile && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}
	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
// The output root defaults to the dataset root.
func (c *Config) Finalize() error {
	if err := c.Dataset.Finalize(); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	if c.Output.Storage.BasePath == "" {
		c.Output.Storage.BasePath = c.Dataset.Storage.BasePath
	}
	if err := c.Output.Finalize(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Logging.Finalize(loggingEnv); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	c.Dataset.Merge(&overlay.Dataset)
	c.Output.Merge(&overlay.Output)
	c.Logging.Merge(&overlay.Logging)
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvFoldsEnv); env != "" {
		overlayPath := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(overlayPath); err == nil {
			return overlayPath
		}
	}
	return ""
}
