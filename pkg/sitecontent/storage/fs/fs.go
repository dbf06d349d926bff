package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tendant/site-console/pkg/sitecontent"
)

// Backend is a filesystem implementation of the sitecontent.BlobStore
// interface. Objects live as flat files in one directory, the layout the
// uploads folder has always had.
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Directory holding uploaded files
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: config.BaseDir}, nil
}

func (b *Backend) path(objectKey string) (string, error) {
	if objectKey == "" || filepath.Base(objectKey) != objectKey || objectKey == "." || objectKey == ".." {
		return "", fmt.Errorf("%w: invalid key %q", sitecontent.ErrObjectNotFound, objectKey)
	}
	return filepath.Join(b.baseDir, objectKey), nil
}

// Upload writes the content of reader to a temporary file and renames it
// into place, so readers never see a partial object.
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params sitecontent.UploadParams) error {
	filePath, err := b.path(params.ObjectKey)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.baseDir, ".upload-*")
	if err != nil {
		return &sitecontent.StorageError{Backend: "fs", Key: params.ObjectKey, Op: "upload", Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return &sitecontent.StorageError{Backend: "fs", Key: params.ObjectKey, Op: "upload", Err: fmt.Errorf("failed to write file: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return &sitecontent.StorageError{Backend: "fs", Key: params.ObjectKey, Op: "upload", Err: err}
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return &sitecontent.StorageError{Backend: "fs", Key: params.ObjectKey, Op: "upload", Err: err}
	}
	return nil
}

// GetObjectMeta retrieves metadata for an object in the filesystem
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*sitecontent.ObjectMeta, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", sitecontent.ErrObjectNotFound, objectKey)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	return &sitecontent.ObjectMeta{
		Key:         objectKey,
		Size:        info.Size(),
		ContentType: detectContentType(filePath),
		UpdatedAt:   info.ModTime(),
	}, nil
}

// detectContentType goes by extension first and sniffs the data otherwise.
func detectContentType(filePath string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filePath)); ct != "" {
		return ct
	}
	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}
	return contentType
}

// Download downloads content directly from the filesystem
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", sitecontent.ErrObjectNotFound, objectKey)
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete deletes content from the filesystem
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.path(objectKey)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", sitecontent.ErrObjectNotFound, objectKey)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
