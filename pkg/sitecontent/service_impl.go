package sitecontent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/site-console/pkg/sitecontent/objectkey"
)

// Keys the server owns. They are dropped from incoming bodies.
var serverKeys = []string{IDKey, "createdAt", "updatedAt", "__v"}

// service implements the Service interface
type service struct {
	repository  Repository
	blobStore   BlobStore
	keyGen      objectkey.Generator
	collections map[string]CollectionKind
	logger      *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the media storage backend
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithKeyGenerator sets the strategy used to name uploaded files
func WithKeyGenerator(gen objectkey.Generator) Option {
	return func(s *service) {
		s.keyGen = gen
	}
}

// WithCollections replaces the collection registry
func WithCollections(collections map[string]CollectionKind) Option {
	return func(s *service) {
		s.collections = collections
	}
}

// WithLogger sets the logger for the service
func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		s.logger = l
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		keyGen:      objectkey.NewTimestampGenerator(),
		collections: DefaultCollections(),
		logger:      slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	for name, kind := range s.collections {
		switch kind {
		case KindContent, KindFAQ, KindPlain:
		default:
			return nil, fmt.Errorf("collection %s: unknown kind %q", name, kind)
		}
	}

	return s, nil
}

// Collection registry

func (s *service) Collections() []string {
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *service) KindOf(collection string) (CollectionKind, error) {
	kind, ok := s.collections[collection]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return kind, nil
}

// Document operations

func (s *service) ListDocuments(ctx context.Context, collection string) ([]*Document, error) {
	if _, err := s.KindOf(collection); err != nil {
		return nil, err
	}
	docs, err := s.repository.ListDocuments(ctx, collection)
	if err != nil {
		return nil, &PersistenceError{Collection: collection, Op: "list", Err: err}
	}
	return docs, nil
}

func (s *service) GetDocument(ctx context.Context, collection string, id uuid.UUID) (*Document, error) {
	if _, err := s.KindOf(collection); err != nil {
		return nil, err
	}
	doc, err := s.repository.GetDocument(ctx, collection, id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Collection: collection, ID: id.String(), Op: "get", Err: err}
	}
	return doc, nil
}

func (s *service) CreateDocument(ctx context.Context, collection string, body json.RawMessage) (*Document, error) {
	kind, err := s.KindOf(collection)
	if err != nil {
		return nil, err
	}
	normalized, err := normalize(kind, body)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &Document{
		ID:         uuid.New(),
		Collection: collection,
		Body:       normalized,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repository.CreateDocument(ctx, doc); err != nil {
		return nil, &PersistenceError{Collection: collection, ID: doc.ID.String(), Op: "create", Err: err}
	}
	s.logger.Info("Document created", "collection", collection, "id", doc.ID)
	return doc, nil
}

func (s *service) UpdateDocument(ctx context.Context, collection string, id uuid.UUID, body json.RawMessage) (*Document, error) {
	kind, err := s.KindOf(collection)
	if err != nil {
		return nil, err
	}
	normalized, err := normalize(kind, body)
	if err != nil {
		return nil, err
	}

	doc, err := s.GetDocument(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	doc.Body = normalized
	doc.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateDocument(ctx, doc); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Collection: collection, ID: id.String(), Op: "update", Err: err}
	}
	s.logger.Info("Document updated", "collection", collection, "id", id)
	return doc, nil
}

func (s *service) DeleteDocument(ctx context.Context, collection string, id uuid.UUID) error {
	if _, err := s.KindOf(collection); err != nil {
		return err
	}
	if err := s.repository.DeleteDocument(ctx, collection, id); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return err
		}
		return &PersistenceError{Collection: collection, ID: id.String(), Op: "delete", Err: err}
	}
	s.logger.Info("Document deleted", "collection", collection, "id", id)
	return nil
}

func (s *service) Summaries(ctx context.Context, collection string) ([]DocumentSummary, error) {
	kind, err := s.KindOf(collection)
	if err != nil {
		return nil, err
	}
	if kind != KindContent {
		return nil, invariant("summaries", "collection %s does not hold content documents", collection)
	}
	docs, err := s.ListDocuments(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		f, l, err := FromWire(doc.Body)
		if err != nil {
			// One unreadable record should not hide the rest of the list.
			s.logger.Warn("Skipping unreadable document", "collection", collection, "id", doc.ID, "error", err)
			continue
		}
		out = append(out, DocumentSummary{ID: doc.ID, Summary: Summarize(f, l)})
	}
	return out, nil
}

// Media operations

func (s *service) Upload(ctx context.Context, f File) (MediaRef, error) {
	if f.Reader == nil {
		return "", &UploadError{Index: -1, File: f.Name, Err: errors.New("no content")}
	}
	key := s.keyGen.GenerateKey(f.Name)
	if !objectkey.Valid(key) {
		return "", &UploadError{Index: -1, File: f.Name, Err: fmt.Errorf("generated key %q is not a single path segment", key)}
	}
	params := UploadParams{ObjectKey: key, MimeType: f.ContentType, Size: f.Size}
	if err := s.blobStore.Upload(ctx, f.Reader, params); err != nil {
		return "", &UploadError{Index: -1, File: f.Name, Err: err}
	}
	s.logger.Info("Media uploaded", "key", key, "content_type", f.ContentType)
	return MediaRef(key), nil
}

func (s *service) Download(ctx context.Context, ref MediaRef) (io.ReadCloser, *ObjectMeta, error) {
	key := ref.Name()
	if !objectkey.Valid(key) {
		return nil, nil, fmt.Errorf("%w: %s", ErrObjectNotFound, ref)
	}
	meta, err := s.blobStore.GetObjectMeta(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobStore.Download(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	return rc, meta, nil
}

// normalize checks a document body against its collection kind and returns
// the body to store.
func normalize(kind CollectionKind, body json.RawMessage) (json.RawMessage, error) {
	switch kind {
	case KindContent:
		f, l, err := FromWire(body)
		if err != nil {
			return nil, invalidBody(err)
		}
		for _, k := range serverKeys {
			delete(f.Extra, k)
		}
		if err := ValidateDocument(f, l); err != nil {
			return nil, err
		}
		return ToWire(f, l)

	case KindFAQ:
		category, q, err := FromFAQWire(body)
		if err != nil {
			return nil, invalidBody(err)
		}
		if err := ValidateFAQ(FAQDocument{CategoryName: category, Questions: q}); err != nil {
			return nil, err
		}
		return ToFAQWire(category, q)

	default:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
			return nil, invalidBody(errors.New("document must be a JSON object"))
		}
		for _, k := range serverKeys {
			delete(obj, k)
		}
		return json.Marshal(obj)
	}
}

func invalidBody(err error) error {
	return &ValidationError{Problems: []BlockProblem{{Index: -1, Reason: err.Error()}}}
}
