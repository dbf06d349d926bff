package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tendant/site-console/pkg/sitecontent"
)

type docKey struct {
	collection string
	id         uuid.UUID
}

// Repository implements sitecontent.Repository using in-memory storage
type Repository struct {
	mu        sync.RWMutex
	documents map[docKey]*sitecontent.Document
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		documents: make(map[docKey]*sitecontent.Document),
	}
}

func copyDocument(doc *sitecontent.Document) *sitecontent.Document {
	c := *doc
	c.Body = slices.Clone(doc.Body)
	return &c
}

func (r *Repository) CreateDocument(ctx context.Context, doc *sitecontent.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.documents[docKey{doc.Collection, doc.ID}] = copyDocument(doc)
	return nil
}

func (r *Repository) GetDocument(ctx context.Context, collection string, id uuid.UUID) (*sitecontent.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.documents[docKey{collection, id}]
	if !exists {
		return nil, sitecontent.ErrDocumentNotFound
	}
	return copyDocument(doc), nil
}

func (r *Repository) UpdateDocument(ctx context.Context, doc *sitecontent.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := docKey{doc.Collection, doc.ID}
	if _, exists := r.documents[key]; !exists {
		return sitecontent.ErrDocumentNotFound
	}
	r.documents[key] = copyDocument(doc)
	return nil
}

func (r *Repository) DeleteDocument(ctx context.Context, collection string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := docKey{collection, id}
	if _, exists := r.documents[key]; !exists {
		return sitecontent.ErrDocumentNotFound
	}
	delete(r.documents, key)
	return nil
}

// ListDocuments returns the documents of collection, oldest first.
func (r *Repository) ListDocuments(ctx context.Context, collection string) ([]*sitecontent.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*sitecontent.Document
	for key, doc := range r.documents {
		if key.collection == collection {
			result = append(result, copyDocument(doc))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID.String() < result[j].ID.String()
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
