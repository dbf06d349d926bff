package sitecontent

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for media storage backends
type BlobStore interface {
	// Upload stores the content of reader under params.ObjectKey
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download opens the stored object for reading
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the stored object
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// Repository defines the interface for document persistence. Documents are
// opaque JSON bodies grouped by collection.
type Repository interface {
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, collection string, id uuid.UUID) (*Document, error)
	UpdateDocument(ctx context.Context, doc *Document) error
	DeleteDocument(ctx context.Context, collection string, id uuid.UUID) error
	ListDocuments(ctx context.Context, collection string) ([]*Document, error)
}

// Uploader turns a local file into a media reference.
type Uploader interface {
	Upload(ctx context.Context, f File) (MediaRef, error)
}

// File is a local file picked for upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Document is one stored record of a collection.
type Document struct {
	ID         uuid.UUID       `json:"id"`
	Collection string          `json:"collection"`
	Body       json.RawMessage `json:"body"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
	Size      int64
}
