package storage_test

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/yolo-folds/pkg/logging"
	"github.com/JaimeStill/yolo-folds/pkg/storage"
)

func newSystem(t *testing.T, cfg *storage.Config) (storage.System, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if cfg == nil {
		cfg = &storage.Config{BasePath: "/data"}
	}
	require.NoError(t, cfg.Finalize(nil))

	sys, err := storage.New(fsys, cfg, logging.Discard())
	require.NoError(t, err)
	return sys, fsys
}

func TestNew_EmptyBasePath(t *testing.T) {
	_, err := storage.New(afero.NewMemMapFs(), &storage.Config{}, logging.Discard())
	assert.Error(t, err)
}

func TestNew_ResolvesAbsoluteRoot(t *testing.T) {
	sys, err := storage.New(afero.NewMemMapFs(), &storage.Config{BasePath: "relative/root"}, logging.Discard())
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(sys.Root()))
	assert.Equal(t, "root", filepath.Base(sys.Root()))
}

func TestStore_Retrieve_RoundTrip(t *testing.T) {
	sys, _ := newSystem(t, nil)
	ctx := context.Background()

	require.NoError(t, sys.Store(ctx, "test/file.txt", []byte("hello world")))

	data, err := sys.Retrieve(ctx, "test/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestStore_CreatesNestedDirectories(t *testing.T) {
	sys, fsys := newSystem(t, nil)

	require.NoError(t, sys.Store(context.Background(), "deeply/nested/path/file.txt", []byte("nested")))

	ok, err := afero.Exists(fsys, "/data/deeply/nested/path/file.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	tmp, err := afero.Glob(fsys, "/data/deeply/nested/path/*.tmp")
	require.NoError(t, err)
	assert.Empty(t, tmp, "temp file should be renamed away")
}

func TestStore_ConcurrentWritersSameKey(t *testing.T) {
	sys, fsys := newSystem(t, nil)
	ctx := context.Background()

	var g errgroup.Group
	for i := range 16 {
		g.Go(func() error {
			return sys.Store(ctx, "labels/train/a.txt", []byte(strconv.Itoa(i)))
		})
	}
	require.NoError(t, g.Wait())

	data, err := sys.Retrieve(ctx, "labels/train/a.txt")
	require.NoError(t, err)
	n, err := strconv.Atoi(string(data))
	require.NoError(t, err, "content is one complete write")
	assert.True(t, n >= 0 && n < 16)

	tmp, err := afero.Glob(fsys, "/data/labels/train/*.tmp")
	require.NoError(t, err)
	assert.Empty(t, tmp)
}

func TestStore_EmptyDataAndOverwrite(t *testing.T) {
	sys, _ := newSystem(t, nil)
	ctx := context.Background()

	require.NoError(t, sys.Store(ctx, "label.txt", []byte("0 0.1 0.2")))
	require.NoError(t, sys.Store(ctx, "label.txt", []byte{}))

	data, err := sys.Retrieve(ctx, "label.txt")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestStoreFrom_CopiesStream(t *testing.T) {
	sys, _ := newSystem(t, nil)
	ctx := context.Background()
	payload := bytes.Repeat([]byte{0xff, 0xd8}, 1024)

	n, err := sys.StoreFrom(ctx, "images/train/a.jpg", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)

	r, err := sys.Open(ctx, "images/train/a.jpg")
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRetrieve_NotFound(t *testing.T) {
	sys, _ := newSystem(t, nil)

	_, err := sys.Retrieve(context.Background(), "nonexistent.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRetrieve_ExceedsReadLimit(t *testing.T) {
	sys, _ := newSystem(t, &storage.Config{BasePath: "/data", MaxReadSize: "8B"})
	ctx := context.Background()

	require.NoError(t, sys.Store(ctx, "small.json", []byte("{}")))
	require.NoError(t, sys.Store(ctx, "large.json", []byte(`{"images": []}`)))

	_, err := sys.Retrieve(ctx, "small.json")
	assert.NoError(t, err)

	_, err = sys.Retrieve(ctx, "large.json")
	assert.ErrorIs(t, err, storage.ErrTooLarge)
}

func TestValidate(t *testing.T) {
	sys, _ := newSystem(t, nil)
	ctx := context.Background()
	require.NoError(t, sys.Store(ctx, "exists.txt", []byte("content")))

	ok, err := sys.Validate(ctx, "exists.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = sys.Validate(ctx, "missing.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = sys.Validate(ctx, "")
	assert.ErrorIs(t, err, storage.ErrInvalidKey)
	assert.False(t, ok)
}

func TestGlob(t *testing.T) {
	sys, _ := newSystem(t, nil)
	ctx := context.Background()
	require.NoError(t, sys.Mkdir(ctx, "FOLD_0.staging-1"))
	require.NoError(t, sys.Mkdir(ctx, "FOLD_0.staging-2"))
	require.NoError(t, sys.Mkdir(ctx, "FOLD_0"))
	require.NoError(t, sys.Mkdir(ctx, "FOLD_1.staging-1"))

	keys, err := sys.Glob(ctx, "FOLD_0.staging-*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"FOLD_0.staging-1", "FOLD_0.staging-2"}, keys)

	keys, err = sys.Glob(ctx, "FOLD_9.staging-*")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = sys.Glob(ctx, "../*")
	assert.ErrorIs(t, err, storage.ErrInvalidKey)
}

func TestValidate_Directory(t *testing.T) {
	sys, _ := newSystem(t, nil)
	ctx := context.Background()
	require.NoError(t, sys.Mkdir(ctx, "c.jpg"))

	ok, err := sys.Validate(ctx, "c.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	info, err := sys.Stat(ctx, "c.jpg")
	require.NoError(t, err)
	assert.False(t, info.Mode().IsRegular())
}

func TestDelete_RemovesTree(t *testing.T) {
	sys, _ := newSystem(t, nil)
	ctx := context.Background()
	require.NoError(t, sys.Store(ctx, "fold/images/train/a.jpg", []byte("a")))
	require.NoError(t, sys.Store(ctx, "fold/labels/train/a.txt", []byte("")))

	require.NoError(t, sys.Delete(ctx, "fold"))

	ok, err := sys.Validate(ctx, "fold")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete_NonExistent_NoError(t *testing.T) {
	sys, _ := newSystem(t, nil)
	assert.NoError(t, sys.Delete(context.Background(), "nonexistent"))
}

func TestMkdir_Stat(t *testing.T) {
	sys, _ := newSystem(t, nil)
	ctx := context.Background()

	require.NoError(t, sys.Mkdir(ctx, "fold/images/val"))

	info, err := sys.Stat(ctx, "fold/images/val")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = sys.Stat(ctx, "fold/images/test")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRename_File(t *testing.T) {
	sys, _ := newSystem(t, nil)
	ctx := context.Background()
	require.NoError(t, sys.Store(ctx, "a.txt", []byte("a")))

	require.NoError(t, sys.Rename(ctx, "a.txt", "moved/b.txt"))

	data, err := sys.Retrieve(ctx, "moved/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	_, err = sys.Retrieve(ctx, "a.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInvalidKeys(t *testing.T) {
	sys, _ := newSystem(t, nil)
	ctx := context.Background()

	keys := []string{
		"",
		".",
		"../escape.txt",
		"foo/../../escape.txt",
		"/absolute/path.txt",
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			assert.ErrorIs(t, sys.Store(ctx, key, []byte("x")), storage.ErrInvalidKey)
			assert.ErrorIs(t, sys.Delete(ctx, key), storage.ErrInvalidKey)
			_, err := sys.Path(key)
			assert.ErrorIs(t, err, storage.ErrInvalidKey)
		})
	}
}

func TestErrors_Defined(t *testing.T) {
	assert.EqualError(t, storage.ErrNotFound, "storage: key not found")
	assert.EqualError(t, storage.ErrPermissionDenied, "storage: permission denied")
	assert.EqualError(t, storage.ErrInvalidKey, "storage: invalid key")
	assert.EqualError(t, storage.ErrTooLarge, "storage: object exceeds read limit")
}
