package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/JaimeStill/yolo-folds/internal/classes"
	"github.com/JaimeStill/yolo-folds/internal/coco"
	"github.com/JaimeStill/yolo-folds/internal/config"
	"github.com/JaimeStill/yolo-folds/internal/folds"
	"github.com/JaimeStill/yolo-folds/pkg/storage"
)

// run loads the dataset once and materializes every fold.
func run(ctx context.Context, cfg *config.Config, fsys afero.Fs, logger *slog.Logger) (*folds.Report, error) {
	if ok, err := afero.DirExists(fsys, cfg.Dataset.Storage.BasePath); err != nil || !ok {
		return nil, fmt.Errorf("dataset path %q does not exist or is not a directory", cfg.Dataset.Storage.BasePath)
	}

	src, err := storage.New(fsys, &cfg.Dataset.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("dataset storage: %w", err)
	}
	dst, err := storage.New(fsys, &cfg.Output.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("output storage: %w", err)
	}

	logger.Info("loading annotation and split data", "annotations", cfg.Dataset.Annotations, "splits", cfg.Dataset.Splits)

	index, err := coco.Load(ctx, src, cfg.Dataset.Annotations)
	if err != nil {
		return nil, err
	}
	splits, err := coco.LoadSplits(ctx, src, cfg.Dataset.Splits)
	if err != nil {
		return nil, err
	}

	table := classes.New(index.Categories())
	logger.Info("dataset indexed", "images", index.Len(), "classes", table.Len())

	return folds.New(cfg, src, dst, index, table, logger).Run(ctx, splits)
}
