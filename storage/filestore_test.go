package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_DownloadBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\nbody"), 0o644))

	store := NewFileStore("")
	ctx := context.Background()

	data, err := store.DownloadBytes(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", string(data))

	data, err = store.DownloadBytes(ctx, "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", string(data))
}

func TestFileStore_RootRelative(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0o644))

	store := NewFileStore(dir)

	data, err := store.DownloadBytes(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestFileStore_NotFound(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.DownloadBytes(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_EmptyURI(t *testing.T) {
	store := NewFileStore("")

	_, err := store.DownloadBytes(context.Background(), "file://")
	assert.ErrorIs(t, err, ErrInvalidURI)
}

func TestFileStore_ContentType(t *testing.T) {
	store := NewFileStore("")

	ct, err := store.ContentType(context.Background(), "/tmp/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)

	ct, err = store.ContentType(context.Background(), "/tmp/unknown.zzz")
	require.NoError(t, err)
	assert.Empty(t, ct)
}
