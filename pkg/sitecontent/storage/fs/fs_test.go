package fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/site-console/pkg/sitecontent"
)

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	require.NoError(t, err)

	ctx := context.Background()
	key := "1700000000000-7-manual.pdf"
	data := []byte("%PDF-1.4 hello fs")

	require.NoError(t, backend.Upload(ctx, bytes.NewReader(data), sitecontent.UploadParams{ObjectKey: key}))

	meta, err := backend.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), meta.Size)
	assert.Equal(t, "application/pdf", meta.ContentType)

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	require.NoError(t, backend.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(tmp, key))
	assert.True(t, os.IsNotExist(err), "expected file removed, stat err=%v", err)
}

func TestFSBackend_LeavesNoTempFiles(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	require.NoError(t, err)

	require.NoError(t, backend.Upload(context.Background(), bytes.NewReader([]byte("x")), sitecontent.UploadParams{ObjectKey: "a.txt"}))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name())
}

func TestFSBackend_RejectsPathKeys(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "..", "../escape.txt", "nested/file.txt"} {
		err := backend.Upload(ctx, bytes.NewReader([]byte("x")), sitecontent.UploadParams{ObjectKey: key})
		assert.Error(t, err, "key %q", key)

		_, err = backend.Download(ctx, key)
		assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound, "key %q", key)
	}
}

func TestFSBackend_NotFound(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = backend.GetObjectMeta(ctx, "missing.png")
	assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
	_, err = backend.Download(ctx, "missing.png")
	assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
	assert.ErrorIs(t, backend.Delete(ctx, "missing.png"), sitecontent.ErrObjectNotFound)
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base directory is required")
}
