package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/site-console/pkg/sitecontent"
)

// Client talks to the admin console HTTP API.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	retryAttempts int
	retryDelay    time.Duration
}

// Option is a functional option for configuring a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry configures retry behavior for idempotent requests and uploads
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retryAttempts = attempts
		}
		c.retryDelay = delay
	}
}

// New creates a client for the API rooted at baseURL, for example
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	c := &Client{
		httpClient:    &http.Client{Timeout: 5 * time.Minute},
		baseURL:       strings.TrimSuffix(u.String(), "/"),
		retryAttempts: 3,
		retryDelay:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Problems   []sitecontent.BlockProblem
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known statuses onto the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return sitecontent.ErrDocumentNotFound
	case http.StatusUnprocessableEntity:
		return &sitecontent.ValidationError{Problems: e.Problems}
	default:
		return nil
	}
}

func (e *APIError) temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// ListDocuments returns every document of collection.
func (c *Client) ListDocuments(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var docs []json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, c.collectionURL(collection), nil, &docs, true); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetDocument returns one document body, including its _id.
func (c *Client) GetDocument(ctx context.Context, collection string, id uuid.UUID) (json.RawMessage, error) {
	var doc json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, c.documentURL(collection, id), nil, &doc, true); err != nil {
		return nil, err
	}
	return doc, nil
}

// CreateDocument stores body as a new document and returns it as stored.
// Creation is not retried.
func (c *Client) CreateDocument(ctx context.Context, collection string, body json.RawMessage) (json.RawMessage, error) {
	var doc json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, c.collectionURL(collection), body, &doc, false); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDocument replaces the body of document id.
func (c *Client) UpdateDocument(ctx context.Context, collection string, id uuid.UUID, body json.RawMessage) (json.RawMessage, error) {
	var doc json.RawMessage
	if err := c.doJSON(ctx, http.MethodPut, c.documentURL(collection, id), body, &doc, true); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes document id.
func (c *Client) DeleteDocument(ctx context.Context, collection string, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, c.documentURL(collection, id), nil, nil, true)
}

// Upload sends f as the multipart "file" field and returns the stored
// reference. It satisfies sitecontent.Uploader.
func (c *Client) Upload(ctx context.Context, f sitecontent.File) (sitecontent.MediaRef, error) {
	if f.Reader == nil {
		return "", errors.New("no content")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	if f.ContentType != "" {
		h.Set("Content-Type", f.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, f.Reader); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close form: %w", err)
	}

	var resp struct {
		Filename string `json:"filename"`
	}
	err = c.retry(ctx, true, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(buf.Bytes()))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return c.send(req, &resp)
	})
	if err != nil {
		return "", err
	}
	if resp.Filename == "" {
		return "", errors.New("server returned no filename")
	}
	return sitecontent.MediaRef(resp.Filename), nil
}

func (c *Client) collectionURL(collection string) string {
	return c.baseURL + "/" + url.PathEscape(collection)
}

func (c *Client) documentURL(collection string, id uuid.UUID) string {
	return c.collectionURL(collection) + "/" + id.String()
}

func (c *Client) doJSON(ctx context.Context, method, target string, body json.RawMessage, out any, retryable bool) error {
	return c.retry(ctx, retryable, func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		return c.send(req, out)
	})
}

// retry runs fn until it succeeds, fails with a client error, or the
// attempts run out. Delays grow linearly.
func (c *Client) retry(ctx context.Context, retryable bool, fn func() error) error {
	attempts := c.retryAttempts
	if !retryable {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(lastErr, &apiErr) && !apiErr.temporary() {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		var body struct {
			Error    string                     `json:"error"`
			Problems []sitecontent.BlockProblem `json:"problems"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err == nil {
			if body.Error != "" {
				apiErr.Message = body.Error
			}
			apiErr.Problems = body.Problems
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
