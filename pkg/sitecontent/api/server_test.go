package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/site-console/pkg/sitecontent"
	"github.com/tendant/site-console/pkg/sitecontent/api"
	"github.com/tendant/site-console/pkg/sitecontent/presets"
	"github.com/tendant/site-console/pkg/sitecontent/urlstrategy"
)

func setupServer(t *testing.T, opts ...api.Option) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	svc := presets.NewTesting(t)

	reg := prometheus.NewRegistry()
	srv := api.NewServer(svc, append([]api.Option{api.WithRegistry(reg)}, opts...)...)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, reg
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &out))
	}
	return resp, out
}

func multipartBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

const serviceDoc = `{
	"title": "Boiler Repair",
	"category": "heating",
	"contents": [
		{"type": "content", "data": "<p>Hello world, this is long</p>", "order": 1},
		{"type": "title", "data": "Overview", "order": 0}
	]
}`

func TestDocumentLifecycle(t *testing.T) {
	ts, _ := setupServer(t)

	resp, created := doJSON(t, http.MethodPost, ts.URL+"/api/services", serviceDoc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, ok := created["_id"].(string)
	require.True(t, ok, "created document carries _id")
	assert.Equal(t, "Boiler Repair", created["title"])

	// Blocks come back sorted by order with contiguous positions.
	contents := created["contents"].([]any)
	require.Len(t, contents, 2)
	assert.Equal(t, "title", contents[0].(map[string]any)["type"])
	assert.EqualValues(t, 1, contents[1].(map[string]any)["order"])

	resp, got := doJSON(t, http.MethodGet, ts.URL+"/api/services/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, got["_id"])

	update := strings.Replace(serviceDoc, "Boiler Repair", "Boiler Service", 1)
	resp, updated := doJSON(t, http.MethodPut, ts.URL+"/api/services/"+id, update)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Boiler Service", updated["title"])

	resp, err := http.Get(ts.URL + "/api/services/summaries")
	require.NoError(t, err)
	defer resp.Body.Close()
	var summaries []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, id, summaries[0]["_id"])
	assert.Equal(t, "Boiler Service", summaries[0]["title"])

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/services/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/services/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestCreateIncompleteDocument(t *testing.T) {
	ts, _ := setupServer(t)

	doc := `{"title": "", "contents": [{"type": "image", "data": [], "order": 0}]}`
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/products", doc)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	problems, ok := body["problems"].([]any)
	require.True(t, ok)
	assert.Len(t, problems, 2)

	listResp, err := http.Get(ts.URL + "/api/products")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var docs []any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&docs))
	assert.Empty(t, docs, "rejected document is not stored")
}

func TestRequestErrors(t *testing.T) {
	ts, _ := setupServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown collection", http.MethodGet, "/api/widgets", "", http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/services/not-a-uuid", "", http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/services", "{", http.StatusBadRequest},
		{"faq without category", http.MethodPost, "/api/faqs", `{"questions": []}`, http.StatusUnprocessableEntity},
		{"plain must be object", http.MethodPost, "/api/events", `[1,2]`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, tt.method, ts.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestUploadAndServe(t *testing.T) {
	ts, reg := setupServer(t, api.WithPublicBaseURL("https://cdn.example.com"))
	data := []byte("\x89PNG\r\n\x1a\nfake image")

	body, contentType := multipartBody(t, "cover photo.png", "image/png", data)
	resp, err := http.Post(ts.URL+"/api/upload", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var up api.UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&up))
	require.NotEmpty(t, up.Filename)
	assert.True(t, strings.HasSuffix(up.Filename, "cover_photo.png"), up.Filename)
	assert.Equal(t, "https://cdn.example.com/uploads/"+up.Filename, up.URL)

	got, err := http.Get(ts.URL + "/uploads/" + up.Filename)
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, "image/png", got.Header.Get("Content-Type"))
	served, err := io.ReadAll(got.Body)
	require.NoError(t, err)
	assert.Equal(t, data, served)

	count, err := testutil.GatherAndCount(reg, "site_console_media_uploads_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUploadURLStrategy(t *testing.T) {
	ts, _ := setupServer(t, api.WithURLStrategy(urlstrategy.NewCDN("https://media.example.com")))

	body, contentType := multipartBody(t, "spec.pdf", "application/pdf", []byte("%PDF-1.4"))
	resp, err := http.Post(ts.URL+"/api/upload", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var up api.UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&up))
	assert.Equal(t, "https://media.example.com/"+up.Filename, up.URL)

	// Without any option, URLs are relative to the console itself.
	plain, _ := setupServer(t)
	body, contentType = multipartBody(t, "a.png", "image/png", []byte("png"))
	resp, err = http.Post(plain.URL+"/api/upload", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&up))
	assert.Equal(t, "/uploads/"+up.Filename, up.URL)
}

func TestUploadRejections(t *testing.T) {
	ts, _ := setupServer(t, api.WithUploadLimits(1024, 16))

	t.Run("missing file field", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("name", "x"))
		require.NoError(t, mw.Close())
		resp, err := http.Post(ts.URL+"/api/upload", mw.FormDataContentType(), &buf)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("pdf over limit", func(t *testing.T) {
		body, contentType := multipartBody(t, "manual.pdf", "application/pdf", bytes.Repeat([]byte("x"), 64))
		resp, err := http.Post(ts.URL+"/api/upload", contentType, body)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	t.Run("file over limit", func(t *testing.T) {
		body, contentType := multipartBody(t, "big.bin", "application/octet-stream", bytes.Repeat([]byte("x"), 4096))
		resp, err := http.Post(ts.URL+"/api/upload", contentType, body)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	t.Run("missing object", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/uploads/1-2-nothing.png")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := setupServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), `site_console_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestCollections(t *testing.T) {
	ts, _ := setupServer(t)

	resp, err := http.Get(ts.URL + "/api/collections")
	require.NoError(t, err)
	defer resp.Body.Close()
	var got []api.CollectionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))

	kinds := make(map[string]sitecontent.CollectionKind)
	for _, c := range got {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, sitecontent.KindFAQ, kinds["faqs"])
	assert.Equal(t, sitecontent.KindContent, kinds["products"])
}

func TestCORS(t *testing.T) {
	ts, _ := setupServer(t, api.WithCORS(true))

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/services", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	plain, _ := setupServer(t)
	resp, err = http.Get(plain.URL + "/api/services")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
