package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/tendant/site-console/pkg/sitecontent"
)

type object struct {
	data        []byte
	contentType string
	updatedAt   time.Time
}

// Backend is an in-memory implementation of the sitecontent.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
	}
}

// Upload stores the content of reader. The content type defaults to one
// sniffed from the data.
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params sitecontent.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return &sitecontent.StorageError{Backend: "memory", Key: params.ObjectKey, Op: "upload", Err: err}
	}
	contentType := params.MimeType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[params.ObjectKey] = object{data: data, contentType: contentType, updatedAt: time.Now().UTC()}
	return nil
}

// GetObjectMeta retrieves metadata for an object in memory
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*sitecontent.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, fmt.Errorf("%w: %s", sitecontent.ErrObjectNotFound, objectKey)
	}
	return &sitecontent.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		UpdatedAt:   obj.updatedAt,
	}, nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, fmt.Errorf("%w: %s", sitecontent.ErrObjectNotFound, objectKey)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return fmt.Errorf("%w: %s", sitecontent.ErrObjectNotFound, objectKey)
	}
	delete(b.objects, objectKey)
	return nil
}
