package config

import (
	"fmt"
	"os"
	"path"

	"github.com/JaimeStill/yolo-folds/pkg/storage"
)

const (
	// EnvDatasetAnnotations overrides the annotation set key.
	EnvDatasetAnnotations = "FOLDS_DATASET_ANNOTATIONS"

	// EnvDatasetSplits overrides the split manifest key.
	EnvDatasetSplits = "FOLDS_DATASET_SPLITS"

	// EnvDatasetImagesDir overrides the directory holding source images.
	EnvDatasetImagesDir = "FOLDS_DATASET_IMAGES_DIR"
)

var datasetStorageEnv = &storage.Env{
	BasePath:    "FOLDS_DATASET_PATH",
	MaxReadSize: "FOLDS_DATASET_MAX_READ_SIZE",
}

// DatasetConfig locates the source dataset. Annotations, Splits and
// ImagesDir are keys relative to Storage.BasePath.
type DatasetConfig struct {
	Storage     storage.Config `toml:"storage"`
	Annotations string         `toml:"annotations"`
	Splits      string         `toml:"splits"`
	ImagesDir   string         `toml:"images_dir"`
}

// ImageKey returns the storage key of a source image.
func (c *DatasetConfig) ImageKey(fileName string) string {
	if c.ImagesDir == "" {
		return fileName
	}
	return path.Join(c.ImagesDir, fileName)
}

// Finalize applies defaults, loads environment overrides, and validates the dataset configuration.
func (c *DatasetConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.Storage.Finalize(datasetStorageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *DatasetConfig) Merge(overlay *DatasetConfig) {
	c.Storage.Merge(&overlay.Storage)
	if overlay.Annotations != "" {
		c.Annotations = overlay.Annotations
	}
	if overlay.Splits != "" {
		c.Splits = overlay.Splits
	}
	if overlay.ImagesDir != "" {
		c.ImagesDir = overlay.ImagesDir
	}
}

func (c *DatasetConfig) loadDefaults() {
	if c.Annotations == "" {
		c.Annotations = "metadata/akudental_instances.json"
	}
	if c.Splits == "" {
		c.Splits = "metadata/split_info_recreated.json"
	}
	if c.Storage.MaxReadSize == "" {
		c.Storage.MaxReadSize = "1GB"
	}
}

func (c *DatasetConfig) loadEnv() {
	if v := os.Getenv(EnvDatasetAnnotations); v != "" {
		c.Annotations = v
	}
	if v := os.Getenv(EnvDatasetSplits); v != "" {
		c.Splits = v
	}
	if v := os.Getenv(EnvDatasetImagesDir); v != "" {
		c.ImagesDir = v
	}
}

func (c *DatasetConfig) validate() error {
	if c.Annotations == "" {
		return fmt.Errorf("annotations required")
	}
	if c.Splits == "" {
		return fmt.Errorf("splits required")
	}
	return nil
}
