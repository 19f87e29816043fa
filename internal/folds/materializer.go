// Package folds materializes per-fold YOLO training trees from an indexed
// COCO dataset and a fold-split manifest.
//
// Each fold is written to <output>/<prefix>_<FOLD_N> with images/{train,val,test},
// labels/{train,val,test} and dataset.yaml. A fold tree is always rebuilt from
// scratch; by default it is assembled in a staging directory and swapped in
// once complete.
package folds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/docker/go-units"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/yolo-folds/internal/classes"
	"github.com/JaimeStill/yolo-folds/internal/coco"
	"github.com/JaimeStill/yolo-folds/internal/config"
	"github.com/JaimeStill/yolo-folds/internal/yolo"
	"github.com/JaimeStill/yolo-folds/pkg/storage"
)

const stagingSuffix = ".staging-"

// Materializer builds fold trees. It is safe to reuse across runs.
type Materializer struct {
	dataset *config.DatasetConfig
	output  *config.OutputConfig
	src     storage.System
	dst     storage.System
	index   *coco.Dataset
	classes *classes.Table
	logger  *slog.Logger
}

// New creates a Materializer reading images from src and writing fold trees to dst.
func New(
	cfg *config.Config,
	src, dst storage.System,
	index *coco.Dataset,
	table *classes.Table,
	logger *slog.Logger,
) *Materializer {
	return &Materializer{
		dataset: &cfg.Dataset,
		output:  &cfg.Output,
		src:     src,
		dst:     dst,
		index:   index,
		classes: table,
		logger:  logger.With("system", "folds"),
	}
}

// Run materializes fold_0 through fold_<N-1> in order. A fold missing from
// splits is recorded in its result and skipped. Any other error stops the
// run; the returned report covers the folds completed before it.
func (m *Materializer) Run(ctx context.Context, splits coco.Splits) (*Report, error) {
	report := &Report{RunID: uuid.New()}
	logger := m.logger.With("run_id", report.RunID)

	logger.Info("starting fold creation", "folds", m.output.Folds, "output", m.dst.Root())

	for i := range m.output.Folds {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		name := config.FoldName(i)
		result, err := m.fold(ctx, logger, report.RunID, name, splits)
		if err != nil {
			return report, fmt.Errorf("%s: %w", name, err)
		}
		report.Folds = append(report.Folds, result)
	}

	totals := report.Totals()
	logger.Info("all folds processed",
		"copied", totals.Copied,
		"skipped", totals.Skipped(),
		"size", units.HumanSize(float64(totals.Bytes)),
	)

	return report, nil
}

func (m *Materializer) fold(ctx context.Context, logger *slog.Logger, runID uuid.UUID, name string, splits coco.Splits) (FoldResult, error) {
	dir := m.output.FoldDir(name)
	root, err := m.dst.Path(dir)
	if err != nil {
		return FoldResult{}, err
	}

	logger = logger.With("fold", name)
	logger.Info("processing fold", "output", root)

	work := dir
	if !m.output.Direct {
		work = dir + stagingSuffix + runID.String()
	}

	if err := m.sweep(ctx, logger, dir); err != nil {
		return FoldResult{}, err
	}

	result, err := m.build(ctx, logger, name, root, work, splits)
	if err != nil {
		if work != dir {
			if derr := m.dst.Delete(context.WithoutCancel(ctx), work); derr != nil {
				logger.Warn("failed to remove staging directory", "dir", work, "error", derr)
			}
		}
		return FoldResult{}, err
	}

	if work != dir {
		if err := m.swap(ctx, work, dir); err != nil {
			return FoldResult{}, err
		}
	}

	return result, nil
}

// sweep removes staging directories of dir left behind by interrupted runs.
func (m *Materializer) sweep(ctx context.Context, logger *slog.Logger, dir string) error {
	stale, err := m.dst.Glob(ctx, dir+stagingSuffix+"*")
	if err != nil {
		return fmt.Errorf("find stale staging directories: %w", err)
	}
	for _, key := range stale {
		logger.Warn("removing stale staging directory", "dir", key)
		if err := m.dst.Delete(ctx, key); err != nil {
			return fmt.Errorf("remove stale %s: %w", key, err)
		}
	}
	return nil
}

func (m *Materializer) build(ctx context.Context, logger *slog.Logger, name, root, work string, splits coco.Splits) (FoldResult, error) {
	result := FoldResult{Name: name, Dir: root}

	if err := m.reset(ctx, work); err != nil {
		return result, err
	}

	fold, ok := splits.Fold(name)
	if !ok {
		logger.Error("fold not found in split manifest, skipping")
		result.Problems = append(result.Problems, fmt.Errorf("%w: %s", ErrFoldNotFound, name))
		return result, nil
	}

	for _, split := range orderSplits(fold) {
		if !slices.Contains(yolo.Splits, split) {
			logger.Warn("unknown split, skipping", "split", split, "images", len(fold[split]))
			result.Problems = append(result.Problems, fmt.Errorf("%w: %s", ErrUnknownSplit, split))
			continue
		}

		sr, err := m.split(ctx, logger.With("split", split), work, split, fold[split])
		if err != nil {
			return result, fmt.Errorf("split %s: %w", split, err)
		}
		result.Splits = append(result.Splits, sr)
	}

	manifest, err := yolo.NewManifest(name, root, m.classes.Names()).Marshal()
	if err != nil {
		return result, err
	}
	if err := m.dst.Store(ctx, path.Join(work, yolo.ManifestFile), manifest); err != nil {
		return result, fmt.Errorf("write manifest: %w", err)
	}
	logger.Info("manifest written", "file", yolo.ManifestFile, "classes", m.classes.Len())

	return result, nil
}

// reset removes dir and recreates the empty split skeleton.
func (m *Materializer) reset(ctx context.Context, dir string) error {
	if err := m.dst.Delete(ctx, dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	for _, split := range yolo.Splits {
		for _, sub := range []string{yolo.ImagesDir(split), yolo.LabelsDir(split)} {
			if err := m.dst.Mkdir(ctx, path.Join(dir, sub)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Materializer) swap(ctx context.Context, work, dir string) error {
	if err := m.dst.Delete(ctx, dir); err != nil {
		return fmt.Errorf("remove previous %s: %w", dir, err)
	}
	if err := m.dst.Rename(ctx, work, dir); err != nil {
		return fmt.Errorf("swap staging directory: %w", err)
	}
	return nil
}

func (m *Materializer) split(ctx context.Context, logger *slog.Logger, work, split string, files []string) (SplitResult, error) {
	result := SplitResult{Name: split}

	unique := make([]string, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	claimed := make(map[string]string, len(files))
	for _, f := range files {
		if _, dup := seen[f]; dup {
			result.Duplicates++
			continue
		}
		seen[f] = struct{}{}

		// Names sharing a stem (a.jpg, a.png) map to one label file; the
		// first indexed name in list order owns it.
		if _, ok := m.index.Lookup(f); ok {
			label := path.Clean(LabelName(f))
			if owner, taken := claimed[label]; taken {
				result.Conflicts++
				logger.Warn("label name already claimed, skipping", "file", f, "label", label, "owner", owner)
				continue
			}
			claimed[label] = f
		}
		unique = append(unique, f)
	}

	logger.Info("processing split", "images", len(unique))

	outcomes := make([]outcome, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.output.Workers)

	for i, f := range unique {
		g.Go(func() error {
			o, err := m.image(gctx, work, split, f)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	for i, o := range outcomes {
		switch o.skip {
		case skipNone:
			result.Copied++
			result.Bytes += o.bytes
		case skipUnresolved:
			result.Unresolved++
		case skipMissing:
			result.Missing++
		case skipInvalid:
			result.Invalid++
		}
		if o.skip != skipNone {
			logger.Debug("image skipped", "file", unique[i], "reason", o.skip)
		}
	}

	logger.Info("split processed",
		"copied", result.Copied,
		"skipped", result.Skipped(),
		"size", units.HumanSize(float64(result.Bytes)),
	)

	return result, nil
}

type skipReason string

const (
	skipNone       skipReason = ""
	skipUnresolved skipReason = "unresolved"
	skipMissing    skipReason = "missing"
	skipInvalid    skipReason = "invalid"
)

type outcome struct {
	skip  skipReason
	bytes int64
}

// image copies one source image and writes its label file. Names absent from
// the index or from the source storage are skipped without error.
func (m *Materializer) image(ctx context.Context, work, split, fileName string) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}

	img, ok := m.index.Lookup(fileName)
	if !ok {
		return outcome{skip: skipUnresolved}, nil
	}

	srcKey := m.dataset.ImageKey(fileName)
	info, err := m.src.Stat(ctx, srcKey)
	switch {
	case errors.Is(err, storage.ErrInvalidKey):
		return outcome{skip: skipInvalid}, nil
	case errors.Is(err, storage.ErrNotFound):
		return outcome{skip: skipMissing}, nil
	case err != nil:
		return outcome{}, err
	case !info.Mode().IsRegular():
		return outcome{skip: skipMissing}, nil
	}

	imageDir := path.Join(work, yolo.ImagesDir(split))
	labelDir := path.Join(work, yolo.LabelsDir(split))
	imageKey := path.Join(imageDir, fileName)
	labelKey := path.Join(labelDir, LabelName(fileName))
	if !within(imageDir, imageKey) || !within(labelDir, labelKey) {
		return outcome{skip: skipInvalid}, nil
	}

	lines, err := yolo.Encode(img, m.index.Annotations(img.ID), m.classes)
	if err != nil {
		return outcome{}, err
	}

	r, err := m.src.Open(ctx, srcKey)
	if err != nil {
		return outcome{}, fmt.Errorf("open image: %w", err)
	}
	n, err := m.dst.StoreFrom(ctx, imageKey, r)
	r.Close()
	if err != nil {
		return outcome{}, fmt.Errorf("copy image: %w", err)
	}

	if err := m.dst.Store(ctx, labelKey, yolo.Render(lines)); err != nil {
		return outcome{}, fmt.Errorf("write label: %w", err)
	}

	return outcome{bytes: n}, nil
}

// LabelName returns the label file name of an image: its path with the
// extension replaced by .txt.
func LabelName(fileName string) string {
	return strings.TrimSuffix(fileName, path.Ext(fileName)) + ".txt"
}

// orderSplits returns train, val, test first, then any other split names sorted.
func orderSplits(fold coco.Fold) []string {
	names := make([]string, 0, len(fold))
	for _, s := range yolo.Splits {
		if _, ok := fold[s]; ok {
			names = append(names, s)
		}
	}

	var extra []string
	for s := range fold {
		if !slices.Contains(yolo.Splits, s) {
			extra = append(extra, s)
		}
	}
	slices.Sort(extra)

	return append(names, extra...)
}

func within(dir, key string) bool {
	return strings.HasPrefix(key, dir+"/")
}
