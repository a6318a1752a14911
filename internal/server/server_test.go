package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"draft-desk/internal/importer"
	"draft-desk/internal/model"
	"draft-desk/internal/service"
	"draft-desk/internal/store"
	"draft-desk/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Open(context.Background(), store.Options{
		Backend:  store.BackendFile,
		DataFile: filepath.Join(t.TempDir(), "drafts.json"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := service.NewDraftService(st, validation.DefaultRules(), validation.Options{EnforceImagePayloads: true}, zap.NewNop())
	imp := importer.NewImporter(svc, zap.NewNop(), time.Second)
	return NewServer(svc, imp, zap.NewNop(), 1<<20)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeDraft(t *testing.T, rec *httptest.ResponseRecorder) model.Draft {
	t.Helper()
	var d model.Draft
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	return d
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestServer_DraftLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, "POST", "/api/drafts",
		`{"title":"Hello World","description":"This is a sufficiently long description.","tags":["a","b"],"images":[]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	created := decodeDraft(t, rec)
	assert.False(t, created.Published)
	assert.Equal(t, []string{"a", "b"}, created.Tags)

	rec = do(t, s, "GET", "/api/content/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Content not found", decodeError(t, rec).Error)

	rec = do(t, s, "PUT", "/api/drafts/"+created.ID, `{"published":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeDraft(t, rec)
	assert.True(t, updated.Published)
	assert.Equal(t, created.Title, updated.Title)

	rec = do(t, s, "GET", "/api/content/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeDraft(t, rec).ID)

	rec = do(t, s, "DELETE", "/api/drafts/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	for _, path := range []string{"/api/drafts/", "/api/content/"} {
		rec = do(t, s, "GET", path+created.ID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec = do(t, s, "DELETE", "/api/drafts/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Draft not found", decodeError(t, rec).Error)
}

func TestServer_CreateValidationFailure(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, "POST", "/api/drafts", `{"title":"Hi","description":"This is a sufficiently long description."}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "Title must be at least 3 characters", e.Error)
	assert.Equal(t, map[string]string{"title": "Title must be at least 3 characters"}, e.Fields)

	rec = do(t, s, "GET", "/api/drafts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServer_UpdateValidationAndMissing(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, "POST", "/api/drafts", `{"title":"A title","description":"A long enough description"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeDraft(t, rec).ID

	rec = do(t, s, "PATCH", "/api/drafts/"+id, `{"images":["a","b","c","d","e","f"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Maximum 5 images allowed", decodeError(t, rec).Error)

	rec = do(t, s, "PUT", "/api/drafts/does-not-exist", `{"published":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, "POST", "/api/drafts", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeError(t, rec).Error)
}

func TestServer_BodyTooLarge(t *testing.T) {
	s := newTestServer(t)
	s.maxBodyBytes = 64

	body := fmt.Sprintf(`{"title":"Big","description":%q}`, strings.Repeat("x", 200))
	req := httptest.NewRequest("POST", "/api/drafts", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServer_ListKeepsInsertionOrder(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		rec := do(t, s, "POST", "/api/drafts", fmt.Sprintf(`{"title":"Draft %d","description":"Description number %d"}`, i, i))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, s, "GET", "/api/drafts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var drafts []model.Draft
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &drafts))
	require.Len(t, drafts, 3)
	for i, d := range drafts {
		assert.Equal(t, fmt.Sprintf("Draft %d", i), d.Title)
	}
}

func TestServer_ImportRejectsBadURL(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, "POST", "/api/drafts/import", `{"url":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, "POST", "/api/drafts/import", `{"url":"ftp://example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid article URL", decodeError(t, rec).Error)
}

func TestServer_HealthAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, s, "GET", "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, "POST", "/api/content/abc", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
