package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tendant/site-console/pkg/sitecontent"
)

// ContentStore loads and saves content documents of one collection through
// the HTTP API.
type ContentStore struct {
	client     *Client
	collection string
}

// NewContentStore creates a store for collection.
func NewContentStore(c *Client, collection string) *ContentStore {
	return &ContentStore{client: c, collection: collection}
}

// Load fetches document id and decodes it.
func (s *ContentStore) Load(ctx context.Context, id uuid.UUID) (sitecontent.Fields, sitecontent.List, error) {
	body, err := s.client.GetDocument(ctx, s.collection, id)
	if err != nil {
		return sitecontent.Fields{}, nil, s.persistenceError("load", id, err)
	}
	f, l, err := sitecontent.FromWire(body)
	if err != nil {
		return sitecontent.Fields{}, nil, fmt.Errorf("failed to decode %s/%s: %w", s.collection, id, err)
	}
	delete(f.Extra, sitecontent.IDKey)
	delete(f.Extra, "createdAt")
	delete(f.Extra, "updatedAt")
	return f, l, nil
}

// Save checks the document and creates it when id is uuid.Nil, or replaces
// document id otherwise. Incomplete documents fail with a
// *sitecontent.ValidationError before any request is made.
func (s *ContentStore) Save(ctx context.Context, id uuid.UUID, f sitecontent.Fields, l sitecontent.List) (uuid.UUID, error) {
	if err := sitecontent.ValidateDocument(f, l); err != nil {
		return uuid.Nil, err
	}
	body, err := sitecontent.ToWire(f, l)
	if err != nil {
		return uuid.Nil, err
	}
	return s.save(ctx, id, body)
}

func (s *ContentStore) save(ctx context.Context, id uuid.UUID, body json.RawMessage) (uuid.UUID, error) {
	var stored json.RawMessage
	var err error
	if id == uuid.Nil {
		stored, err = s.client.CreateDocument(ctx, s.collection, body)
	} else {
		stored, err = s.client.UpdateDocument(ctx, s.collection, id, body)
	}
	if err != nil {
		op := "update"
		if id == uuid.Nil {
			op = "create"
		}
		return uuid.Nil, s.persistenceError(op, id, err)
	}

	var meta struct {
		ID uuid.UUID `json:"_id"`
	}
	if err := json.Unmarshal(stored, &meta); err != nil || meta.ID == uuid.Nil {
		return id, nil
	}
	return meta.ID, nil
}

// Delete removes document id.
func (s *ContentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.DeleteDocument(ctx, s.collection, id); err != nil {
		return s.persistenceError("delete", id, err)
	}
	return nil
}

// persistenceError wraps transport and server failures. Validation and
// not-found answers keep their own error so callers can tell them apart.
func (s *ContentStore) persistenceError(op string, id uuid.UUID, err error) error {
	var verr *sitecontent.ValidationError
	if errors.As(err, &verr) || errors.Is(err, sitecontent.ErrDocumentNotFound) {
		return err
	}
	pe := &sitecontent.PersistenceError{Collection: s.collection, Op: op, Err: err}
	if id != uuid.Nil {
		pe.ID = id.String()
	}
	return pe
}

// FAQStore loads and saves FAQ categories through the HTTP API.
type FAQStore struct {
	store ContentStore
}

// NewFAQStore creates a store for the FAQ collection.
func NewFAQStore(c *Client, collection string) *FAQStore {
	return &FAQStore{store: ContentStore{client: c, collection: collection}}
}

// LoadFAQ fetches category id.
func (s *FAQStore) LoadFAQ(ctx context.Context, id uuid.UUID) (string, sitecontent.Questions, error) {
	body, err := s.store.client.GetDocument(ctx, s.store.collection, id)
	if err != nil {
		return "", nil, s.store.persistenceError("load", id, err)
	}
	return sitecontent.FromFAQWire(body)
}

// SaveFAQ checks and stores an FAQ category.
func (s *FAQStore) SaveFAQ(ctx context.Context, id uuid.UUID, category string, q sitecontent.Questions) (uuid.UUID, error) {
	if err := sitecontent.ValidateFAQ(sitecontent.FAQDocument{CategoryName: category, Questions: q}); err != nil {
		return uuid.Nil, err
	}
	body, err := sitecontent.ToFAQWire(category, q)
	if err != nil {
		return uuid.Nil, err
	}
	return s.store.save(ctx, id, body)
}

// Delete removes category id.
func (s *FAQStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}
