package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/site-console/pkg/sitecontent"
	"github.com/tendant/site-console/pkg/sitecontent/urlstrategy"
)

// UploadField is the multipart form field carrying the file.
const UploadField = "file"

// Default upload limits.
const (
	DefaultMaxUploadBytes = 100 << 20
	DefaultMaxPDFBytes    = 10 << 20
)

// multipart parts beyond this size spill to temporary files
const uploadMemory = 8 << 20

// UploadHandler stores media files and serves them back by name.
type UploadHandler struct {
	service     sitecontent.Service
	metrics     *Metrics
	maxBytes    int64
	maxPDFBytes int64
	urls        urlstrategy.Strategy
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(service sitecontent.Service, metrics *Metrics) *UploadHandler {
	return &UploadHandler{
		service:     service,
		metrics:     metrics,
		maxBytes:    DefaultMaxUploadBytes,
		maxPDFBytes: DefaultMaxPDFBytes,
		urls:        urlstrategy.NewContentBased(""),
	}
}

// UploadResponse is returned for a stored file. Filename is the media
// reference to put into a document.
type UploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
}

// Upload stores the multipart "file" field and returns its reference.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxBytes {
		h.metrics.ObserveUpload(UploadRejected, 0)
		writeMessage(w, r, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		h.metrics.ObserveUpload(UploadRejected, 0)
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeMessage(w, r, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		writeMessage(w, r, http.StatusBadRequest, "Request must be multipart/form-data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		h.metrics.ObserveUpload(UploadRejected, 0)
		writeMessage(w, r, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if isPDF(header.Filename, contentType) && header.Size > h.maxPDFBytes {
		h.metrics.ObserveUpload(UploadRejected, 0)
		writeMessage(w, r, http.StatusRequestEntityTooLarge,
			"PDF files must be at most "+strconv.FormatInt(h.maxPDFBytes>>20, 10)+" MB")
		return
	}

	ref, err := h.service.Upload(r.Context(), sitecontent.File{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Reader:      file,
	})
	if err != nil {
		h.metrics.ObserveUpload(UploadFailed, 0)
		writeError(w, r, "Failed to upload file", err)
		return
	}
	h.metrics.ObserveUpload(UploadSucceeded, header.Size)

	resp := UploadResponse{Filename: string(ref)}
	if h.urls != nil {
		url, err := h.urls.MediaURL(ref)
		if err != nil {
			slog.Warn("Failed to build media URL", "filename", ref, "error", err)
		}
		resp.URL = url
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// Serve streams a stored file back under /uploads/{filename}.
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ref := sitecontent.MediaRef(chi.URLParam(r, "filename"))

	rc, meta, err := h.service.Download(r.Context(), ref)
	if err != nil {
		writeError(w, r, "Failed to download file", err)
		return
	}
	defer rc.Close()

	if meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	if meta.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}
	if meta.ETag != "" {
		w.Header().Set("ETag", `"`+meta.ETag+`"`)
	}
	if !meta.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", meta.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Failed to stream file", "filename", ref, "error", err)
	}
}

func isPDF(filename, contentType string) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "application/pdf" {
		return true
	}
	return strings.EqualFold(path.Ext(filename), ".pdf")
}
