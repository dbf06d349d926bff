package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/tendant/site-console/pkg/sitecontent"
)

// DefaultMaxDocumentBytes bounds a document body read from a request.
const DefaultMaxDocumentBytes = 4 << 20

// DocumentHandler serves the collection CRUD endpoints.
type DocumentHandler struct {
	service  sitecontent.Service
	maxBytes int64
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(service sitecontent.Service) *DocumentHandler {
	return &DocumentHandler{service: service, maxBytes: DefaultMaxDocumentBytes}
}

// Routes returns the routes for documents, mounted under a collection.
func (h *DocumentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListDocuments)
	r.Post("/", h.CreateDocument)
	r.Get("/summaries", h.ListSummaries)
	r.Get("/{id}", h.GetDocument)
	r.Put("/{id}", h.UpdateDocument)
	r.Delete("/{id}", h.DeleteDocument)

	return r
}

// CollectionResponse describes one registered collection.
type CollectionResponse struct {
	Name string                     `json:"name"`
	Kind sitecontent.CollectionKind `json:"kind"`
}

// ListCollections returns the registered collections and their kinds.
func (h *DocumentHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	names := h.service.Collections()
	resp := make([]CollectionResponse, 0, len(names))
	for _, name := range names {
		kind, err := h.service.KindOf(name)
		if err != nil {
			continue
		}
		resp = append(resp, CollectionResponse{Name: name, Kind: kind})
	}
	render.JSON(w, r, resp)
}

// ListDocuments returns every document of the collection, oldest first.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	docs, err := h.service.ListDocuments(r.Context(), collection)
	if err != nil {
		writeError(w, r, "Failed to list documents", err)
		return
	}

	resp := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		body, err := doc.Render()
		if err != nil {
			slog.Warn("Skipping unrenderable document", "collection", collection, "id", doc.ID, "error", err)
			continue
		}
		resp = append(resp, body)
	}
	render.JSON(w, r, resp)
}

// ListSummaries returns the list view rows of a content collection.
func (h *DocumentHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.Summaries(r.Context(), chi.URLParam(r, "collection"))
	if err != nil {
		writeError(w, r, "Failed to summarize documents", err)
		return
	}
	if summaries == nil {
		summaries = []sitecontent.DocumentSummary{}
	}
	render.JSON(w, r, summaries)
}

// GetDocument returns one document.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	doc, err := h.service.GetDocument(r.Context(), chi.URLParam(r, "collection"), id)
	if err != nil {
		writeError(w, r, "Failed to get document", err)
		return
	}
	h.writeDocument(w, r, http.StatusOK, doc)
}

// CreateDocument checks and stores a new document.
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	doc, err := h.service.CreateDocument(r.Context(), chi.URLParam(r, "collection"), body)
	if err != nil {
		writeError(w, r, "Failed to create document", err)
		return
	}
	h.writeDocument(w, r, http.StatusCreated, doc)
}

// UpdateDocument replaces the body of an existing document.
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	doc, err := h.service.UpdateDocument(r.Context(), chi.URLParam(r, "collection"), id, body)
	if err != nil {
		writeError(w, r, "Failed to update document", err)
		return
	}
	h.writeDocument(w, r, http.StatusOK, doc)
}

// DeleteDocument removes a document.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteDocument(r.Context(), chi.URLParam(r, "collection"), id); err != nil {
		writeError(w, r, "Failed to delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) writeDocument(w http.ResponseWriter, r *http.Request, status int, doc *sitecontent.Document) {
	body, err := doc.Render()
	if err != nil {
		writeError(w, r, "Failed to render document", err)
		return
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}

func (h *DocumentHandler) readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		writeError(w, r, "Failed to read request body", err)
		return nil, false
	}
	if !json.Valid(body) {
		writeMessage(w, r, http.StatusBadRequest, "Request body is not valid JSON")
		return nil, false
	}
	return body, true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "Invalid document ID")
		return uuid.Nil, false
	}
	return id, true
}
