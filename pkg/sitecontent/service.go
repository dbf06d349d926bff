package sitecontent

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"
)

// Service defines the document and media operations behind the admin console
type Service interface {
	// Collection registry
	Collections() []string
	KindOf(collection string) (CollectionKind, error)

	// Document operations
	ListDocuments(ctx context.Context, collection string) ([]*Document, error)
	GetDocument(ctx context.Context, collection string, id uuid.UUID) (*Document, error)
	CreateDocument(ctx context.Context, collection string, body json.RawMessage) (*Document, error)
	UpdateDocument(ctx context.Context, collection string, id uuid.UUID, body json.RawMessage) (*Document, error)
	DeleteDocument(ctx context.Context, collection string, id uuid.UUID) error

	// List view projection for content collections
	Summaries(ctx context.Context, collection string) ([]DocumentSummary, error)

	// Media operations
	Upload(ctx context.Context, f File) (MediaRef, error)
	Download(ctx context.Context, ref MediaRef) (io.ReadCloser, *ObjectMeta, error)
}

// CollectionKind decides how a collection's documents are checked on write.
type CollectionKind string

// Collection kind constants (typed).
const (
	// KindContent documents carry Fields and a block list
	KindContent CollectionKind = "content"
	// KindFAQ documents are an FAQ category with questions
	KindFAQ CollectionKind = "faq"
	// KindPlain documents are stored as given
	KindPlain CollectionKind = "plain"
)

// DefaultCollections returns the collections served by the admin console.
func DefaultCollections() map[string]CollectionKind {
	return map[string]CollectionKind{
		"services":   KindContent,
		"solutions":  KindContent,
		"products":   KindContent,
		"blogs":      KindContent,
		"faqs":       KindFAQ,
		"heroSlides": KindPlain,
		"gallery":    KindPlain,
		"careers":    KindPlain,
		"contacts":   KindPlain,
		"events":     KindPlain,
	}
}

// DocumentSummary is one row of a content collection's list view.
type DocumentSummary struct {
	ID uuid.UUID `json:"_id"`
	Summary
}

// IDKey is the key under which a document's id is exposed in its JSON body.
const IDKey = "_id"

// Render returns the document body with its id and timestamps merged in.
func (d *Document) Render() (json.RawMessage, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(d.Body, &body); err != nil {
		return nil, err
	}
	if body == nil {
		body = make(map[string]json.RawMessage)
	}
	meta := map[string]any{
		IDKey:       d.ID,
		"createdAt": d.CreatedAt,
		"updatedAt": d.UpdatedAt,
	}
	for k, v := range meta {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		body[k] = raw
	}
	return json.Marshal(body)
}
