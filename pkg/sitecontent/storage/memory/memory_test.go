package memory_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/site-console/pkg/sitecontent"
	memorystorage "github.com/tendant/site-console/pkg/sitecontent/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()
	testKey := "1700000000000-1-photo.png"
	testData := "Hello, World! This is test data."

	t.Run("Upload", func(t *testing.T) {
		err := backend.Upload(ctx, strings.NewReader(testData), sitecontent.UploadParams{
			ObjectKey: testKey,
			MimeType:  "image/png",
		})
		assert.NoError(t, err)
	})

	t.Run("GetObjectMeta", func(t *testing.T) {
		meta, err := backend.GetObjectMeta(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, testKey, meta.Key)
		assert.Equal(t, int64(len(testData)), meta.Size)
		assert.Equal(t, "image/png", meta.ContentType)
		assert.False(t, meta.UpdatedAt.IsZero())
	})

	t.Run("SniffsMissingContentType", func(t *testing.T) {
		key := "sniffed.txt"
		require.NoError(t, backend.Upload(ctx, strings.NewReader("plain text"), sitecontent.UploadParams{ObjectKey: key}))
		meta, err := backend.GetObjectMeta(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "text/plain; charset=utf-8", meta.ContentType)
	})

	t.Run("Download", func(t *testing.T) {
		reader, err := backend.Download(ctx, testKey)
		require.NoError(t, err)
		defer reader.Close()

		downloadedData, err := io.ReadAll(reader)
		assert.NoError(t, err)
		assert.Equal(t, testData, string(downloadedData))
	})

	t.Run("Delete", func(t *testing.T) {
		err := backend.Delete(ctx, testKey)
		assert.NoError(t, err)

		_, err = backend.GetObjectMeta(ctx, testKey)
		assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
	})

	t.Run("ErrorCases", func(t *testing.T) {
		nonExistentKey := "missing.png"

		meta, err := backend.GetObjectMeta(ctx, nonExistentKey)
		assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
		assert.Nil(t, meta)

		reader, err := backend.Download(ctx, nonExistentKey)
		assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
		assert.Nil(t, reader)

		err = backend.Delete(ctx, nonExistentKey)
		assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
	})
}

func TestMemoryBackendConcurrency(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()

	const numGoroutines = 10
	const numOperations = 50

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				key := fmt.Sprintf("%d-%d-file.txt", goroutineID, j)
				data := fmt.Sprintf("data %d/%d", goroutineID, j)

				if !assert.NoError(t, backend.Upload(ctx, strings.NewReader(data), sitecontent.UploadParams{ObjectKey: key})) {
					return
				}
				rc, err := backend.Download(ctx, key)
				if !assert.NoError(t, err) {
					return
				}
				got, err := io.ReadAll(rc)
				rc.Close()
				assert.NoError(t, err)
				assert.Equal(t, data, string(got))
				assert.NoError(t, backend.Delete(ctx, key))
			}
		}(i)
	}
	wg.Wait()
}
