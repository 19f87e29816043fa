// Package storage provides rooted filesystem access for dataset inputs and
// generated training trees. Keys are slash-separated paths relative to the
// system's base path; the backing filesystem is an afero.Fs so callers can
// swap the host filesystem for an in-memory one.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
)

// Storage errors returned by System implementations.
var (
	// ErrNotFound indicates the requested key does not exist in storage.
	ErrNotFound = errors.New("storage: key not found")

	// ErrPermissionDenied indicates insufficient permissions to access the key.
	ErrPermissionDenied = errors.New("storage: permission denied")

	// ErrInvalidKey indicates the key is malformed or contains invalid characters.
	// This includes empty keys and path traversal attempts.
	ErrInvalidKey = errors.New("storage: invalid key")

	// ErrTooLarge indicates the stored object exceeds the configured read limit.
	ErrTooLarge = errors.New("storage: object exceeds read limit")
)

// System defines the storage operations used by the dataset pipeline.
type System interface {
	// Root returns the absolute base path keys resolve under.
	Root() string

	// Path returns the absolute path for key.
	Path(key string) (string, error)

	// Store saves data at the specified key. If the key already exists,
	// its contents are overwritten. Parent directories are created as needed.
	Store(ctx context.Context, key string, data []byte) error

	// StoreFrom streams r into key and returns the number of bytes written.
	StoreFrom(ctx context.Context, key string, r io.Reader) (int64, error)

	// Retrieve returns the data stored at the specified key.
	// Returns ErrNotFound if the key does not exist and ErrTooLarge if it
	// exceeds the configured read limit.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Open returns a reader for the file at key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Stat returns file info for key.
	Stat(ctx context.Context, key string) (os.FileInfo, error)

	// Validate checks if a key exists and is accessible.
	// Returns (false, nil) if the key does not exist.
	// Directories count as existing; use Stat to tell them apart.
	Validate(ctx context.Context, key string) (bool, error)

	// Glob returns the keys matching a filepath.Match pattern, itself a key.
	Glob(ctx context.Context, pattern string) ([]string, error)

	// Mkdir creates the directory at key and any missing parents.
	Mkdir(ctx context.Context, key string) error

	// Delete removes the file or directory tree at key.
	// Returns nil if the key does not exist.
	Delete(ctx context.Context, key string) error

	// Rename moves from to to. The destination must not exist.
	Rename(ctx context.Context, from, to string) error
}
