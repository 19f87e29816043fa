// Command folds converts a COCO polygon dataset into one YOLO training tree
// per cross-validation fold.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/JaimeStill/yolo-folds/internal/config"
	"github.com/JaimeStill/yolo-folds/pkg/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file (default config.toml when present)")
		dataset    = flag.String("dataset", "", "Dataset root holding images and metadata/")
		output     = flag.String("output", "", "Directory fold trees are written to (default: dataset root)")
		workers    = flag.Int("workers", 0, "Concurrent image workers per split")
		direct     = flag.Bool("direct", false, "Rebuild folds in place instead of staging")
		verbose    = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	bootstrap := slog.New(slog.NewTextHandler(os.Stderr, nil))

	path := *configPath
	if path == "" {
		path = config.BaseConfigFile
	}

	cfg, err := config.Load(path)
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	overrides := &config.Config{
		Output: config.OutputConfig{
			Workers: *workers,
			Direct:  *direct,
		},
	}
	overrides.Dataset.Storage.BasePath = *dataset
	overrides.Output.Storage.BasePath = *output
	if *verbose {
		overrides.Logging.Level = logging.LevelDebug
	}
	cfg.Merge(overrides)

	if err := cfg.Finalize(); err != nil {
		bootstrap.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(&cfg.Logging, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := run(ctx, cfg, afero.NewOsFs(), logger)
	if err != nil {
		logger.Error("fold creation failed", "error", err)
		stop()
		os.Exit(1)
	}

	for _, f := range report.Folds {
		if !f.Found() {
			fmt.Printf("%s: not found in split manifest, skipped\n", f.Name)
			continue
		}
		t := f.Totals()
		fmt.Printf("%s: %d images, %d skipped -> %s\n", f.Name, t.Copied, t.Skipped(), f.Dir)
	}
}
