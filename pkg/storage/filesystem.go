package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// filesystem implements System on top of an afero.Fs,
// with keys mapping directly to paths under basePath.
type filesystem struct {
	fs          afero.Fs
	basePath    string
	maxReadSize int64
	logger      *slog.Logger
}

// New creates a storage system rooted at cfg.BasePath on fsys.
// The base path is resolved to an absolute path during construction.
func New(fsys afero.Fs, cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.BasePath == "" {
		return nil, fmt.Errorf("base_path required")
	}

	absPath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base_path: %w", err)
	}

	return &filesystem{
		fs:          fsys,
		basePath:    absPath,
		maxReadSize: cfg.MaxReadSizeBytes(),
		logger:      logger.With("system", "storage", "base_path", absPath),
	}, nil
}

func (f *filesystem) Root() string {
	return f.basePath
}

func (f *filesystem) Path(key string) (string, error) {
	return f.fullPath(key)
}

func (f *filesystem) Store(ctx context.Context, key string, data []byte) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}

	if err := f.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", mapErr(err))
	}

	tmp, err := afero.TempFile(f.fs, filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", mapErr(err))
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		f.fs.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", mapErr(err))
	}

	if err := f.fs.Rename(tmpPath, path); err != nil {
		f.fs.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", mapErr(err))
	}

	return nil
}

func (f *filesystem) StoreFrom(ctx context.Context, key string, r io.Reader) (int64, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return 0, err
	}

	if err := f.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("create directory: %w", mapErr(err))
	}

	dst, err := f.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", mapErr(err))
	}

	n, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		f.fs.Remove(path)
		return n, fmt.Errorf("write file: %w", err)
	}

	return n, nil
}

func (f *filesystem) Retrieve(ctx context.Context, key string) ([]byte, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return nil, err
	}

	if f.maxReadSize > 0 {
		info, err := f.fs.Stat(path)
		if err != nil {
			return nil, mapErr(err)
		}
		if info.Size() > f.maxReadSize {
			return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, key, info.Size())
		}
	}

	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return nil, mapErr(err)
	}

	return data, nil
}

func (f *filesystem) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return nil, err
	}

	file, err := f.fs.Open(path)
	if err != nil {
		return nil, mapErr(err)
	}
	return file, nil
}

func (f *filesystem) Stat(ctx context.Context, key string) (os.FileInfo, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return nil, err
	}

	info, err := f.fs.Stat(path)
	if err != nil {
		return nil, mapErr(err)
	}
	return info, nil
}

func (f *filesystem) Validate(ctx context.Context, key string) (bool, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return false, err
	}

	_, err = f.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return false, ErrPermissionDenied
		}
		return false, fmt.Errorf("stat file: %w", err)
	}

	return true, nil
}

func (f *filesystem) Glob(ctx context.Context, pattern string) ([]string, error) {
	full, err := f.fullPath(pattern)
	if err != nil {
		return nil, err
	}

	matches, err := afero.Glob(f.fs, full)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}

	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(f.basePath, m)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		keys = append(keys, filepath.ToSlash(rel))
	}
	return keys, nil
}

func (f *filesystem) Mkdir(ctx context.Context, key string) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}

	if err := f.fs.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("create directory: %w", mapErr(err))
	}
	return nil
}

func (f *filesystem) Delete(ctx context.Context, key string) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}

	if err := f.fs.RemoveAll(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove %s: %w", key, mapErr(err))
	}

	f.logger.Debug("removed", "key", key)
	return nil
}

func (f *filesystem) Rename(ctx context.Context, from, to string) error {
	src, err := f.fullPath(from)
	if err != nil {
		return err
	}
	dst, err := f.fullPath(to)
	if err != nil {
		return err
	}

	if err := f.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create directory: %w", mapErr(err))
	}

	if err := f.fs.Rename(src, dst); err != nil {
		return fmt.Errorf("rename %s: %w", from, mapErr(err))
	}
	return nil
}

func (f *filesystem) fullPath(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ErrInvalidKey
	}

	fullPath := filepath.Join(f.basePath, cleaned)

	if !strings.HasPrefix(fullPath, f.basePath) {
		return "", ErrInvalidKey
	}

	return fullPath, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	default:
		return err
	}
}
