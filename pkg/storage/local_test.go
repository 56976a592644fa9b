package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mango/pkg/storage"
)

func TestLocalStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()

	s, err := storage.NewLocalStorage(root, "/uploads/")
	require.NoError(t, err)

	obj, err := s.Put(ctx, "/avatars/u1/a.png", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "avatars/u1/a.png", obj.Key)
	assert.Equal(t, int64(3), obj.Size)
	assert.Equal(t, "/uploads/avatars/u1/a.png", obj.URL)

	data, err := os.ReadFile(filepath.Join(root, "avatars", "u1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	ok, err := s.Exists(ctx, "avatars/u1/a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "avatars/u1")
	require.NoError(t, err)
	assert.False(t, ok, "directories are not objects")

	require.NoError(t, s.Delete(ctx, "avatars/u1/a.png"))
	ok, err = s.Exists(ctx, "avatars/u1/a.png")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.Delete(ctx, "avatars/u1/a.png"), storage.ErrObjectNotFound)
}

func TestLocalStorage_Rejects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "a/../../b", `a\b`} {
		_, err := s.Put(ctx, key, strings.NewReader("x"), 1, "text/plain")
		assert.ErrorIs(t, err, storage.ErrInvalidKey, key)
	}

	_, err = s.Put(ctx, "short.txt", strings.NewReader("abc"), 10, "text/plain")
	assert.ErrorIs(t, err, storage.ErrWriteFailed)
	ok, err := s.Exists(ctx, "short.txt")
	require.NoError(t, err)
	assert.False(t, ok, "partial writes must not be visible")

	_, err = storage.NewLocalStorage("", "/")
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)
}

func TestNew(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := storage.New(ctx, storage.Config{Driver: storage.DriverLocal, LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/k", s.URL("k"))

	_, err = storage.New(ctx, storage.Config{Driver: "ftp"})
	assert.ErrorIs(t, err, storage.ErrUnknownDriver)

	_, err = storage.New(ctx, storage.Config{Driver: storage.DriverS3})
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)
}

func TestDetectContentType(t *testing.T) {
	t.Parallel()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, "image/png", storage.DetectContentType(png))
	assert.Equal(t, "image/gif", storage.DetectContentType([]byte("GIF89a......")))
	assert.Equal(t, "text/plain", storage.DetectContentType([]byte("hello")))
}
