package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/yolo-folds/pkg/storage"
)

const (
	// EnvOutputPrefix overrides the fold directory prefix.
	EnvOutputPrefix = "FOLDS_OUTPUT_PREFIX"

	// EnvOutputFolds overrides the number of folds.
	EnvOutputFolds = "FOLDS_OUTPUT_FOLDS"

	// EnvOutputWorkers overrides the number of concurrent image workers per split.
	EnvOutputWorkers = "FOLDS_OUTPUT_WORKERS"

	// EnvOutputDirect disables staged fold replacement when set to true.
	EnvOutputDirect = "FOLDS_OUTPUT_DIRECT"
)

var outputStorageEnv = &storage.Env{
	BasePath: "FOLDS_OUTPUT_PATH",
}

// OutputConfig controls where and how fold trees are generated.
type OutputConfig struct {
	// Storage.BasePath is the directory fold trees are created in.
	// Default: the dataset base path.
	Storage storage.Config `toml:"storage"`

	// Prefix names fold directories as <Prefix>_<FOLD_N>.
	// Default: "AKUDENTAL_YOLO"
	Prefix string `toml:"prefix"`

	// Folds is the number of folds, named fold_0 through fold_<Folds-1>.
	// Default: 5
	Folds int `toml:"folds"`

	// Workers bounds concurrent image processing within a split.
	// Default: 1
	Workers int `toml:"workers"`

	// Direct rebuilds folds in place instead of staging and swapping.
	Direct bool `toml:"direct"`
}

// FoldDir returns the directory name of fold.
func (c *OutputConfig) FoldDir(fold string) string {
	return c.Prefix + "_" + strings.ToUpper(fold)
}

// FoldName returns the manifest name of fold i.
func FoldName(i int) string {
	return "fold_" + strconv.Itoa(i)
}

// Finalize applies defaults, loads environment overrides, and validates the output configuration.
func (c *OutputConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}

	if err := c.Storage.Finalize(outputStorageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *OutputConfig) Merge(overlay *OutputConfig) {
	c.Storage.Merge(&overlay.Storage)
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.Folds > 0 {
		c.Folds = overlay.Folds
	}
	if overlay.Workers > 0 {
		c.Workers = overlay.Workers
	}
	if overlay.Direct {
		c.Direct = true
	}
}

func (c *OutputConfig) loadDefaults() {
	if c.Prefix == "" {
		c.Prefix = "AKUDENTAL_YOLO"
	}
	if c.Folds == 0 {
		c.Folds = 5
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
}

func (c *OutputConfig) loadEnv() error {
	if v := os.Getenv(EnvOutputPrefix); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv(EnvOutputFolds); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvOutputFolds, err)
		}
		c.Folds = n
	}
	if v := os.Getenv(EnvOutputWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvOutputWorkers, err)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvOutputDirect); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvOutputDirect, err)
		}
		c.Direct = b
	}
	return nil
}

func (c *OutputConfig) validate() error {
	if c.Prefix == "" || strings.ContainsAny(c.Prefix, `/\`) {
		return fmt.Errorf("invalid prefix: %q", c.Prefix)
	}
	if c.Folds < 1 {
		return fmt.Errorf("folds must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
