package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Aida-adzd/smart-news-summarizer/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
)

type fakeStore struct {
	digests []model.Digest
	total   int
	digest  *model.Digest
	err     error

	limit, offset int
}

func (f *fakeStore) GetDigests(ctx context.Context, limit, offset int) ([]model.Digest, error) {
	f.limit, f.offset = limit, offset
	return f.digests, f.err
}

func (f *fakeStore) GetDigestTotal(ctx context.Context) (int, error) {
	return f.total, f.err
}

func (f *fakeStore) GetDigestByID(ctx context.Context, id int64) (*model.Digest, error) {
	return f.digest, f.err
}

func newTestRouter(store DigestStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDigestHandler(store)
	r.GET("/digests", h.GetDigests)
	r.GET("/digests/:id", h.GetDigest)
	r.GET("/health", NewHealthHandler(store).GetHealth)
	return r
}

func sampleDigest() model.Digest {
	sent := time.Date(2025, time.October, 2, 9, 0, 0, 0, time.UTC)
	return model.Digest{
		ID:        7,
		Email:     "reader@example.com",
		Date:      "2025-10-02",
		Topics:    []model.DigestTopic{{Topic: "sports", Count: 2}},
		Body:      "=== Topic 1: SPORTS (2 news) ===",
		HTMLPath:  "output/news-digest-2025-10-02-abcd1234.html",
		Status:    model.StatusSent,
		ModelUsed: "gpt-4o-mini",
		CreatedAt: sent.Add(-time.Minute),
		SentAt:    &sent,
	}
}

func TestGetDigests_ReturnDigests(t *testing.T) {
	store := &fakeStore{
		digests: []model.Digest{sampleDigest()},
		total:   1,
	}

	r := newTestRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/digests?limit=5&offset=2", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res DigestsResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 5, res.Limit)
	assert.Equal(t, 2, res.Offset)
	assert.Equal(t, 1, len(res.Digests))
	assert.Equal(t, "reader@example.com", res.Digests[0].Email)
	assert.Equal(t, "", res.Digests[0].Body)
	assert.Equal(t, "2025-10-02T09:00:00Z", res.Digests[0].SentAt)
	assert.Equal(t, []TopicResponse{{Topic: "sports", Count: 2}}, res.Digests[0].Topics)
	assert.Equal(t, 5, store.limit)
	assert.Equal(t, 2, store.offset)
}

func TestGetDigests_DBError(t *testing.T) {
	store := &fakeStore{err: errors.New("DB down")}
	r := newTestRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/digests", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetDigests_QueryDefaults(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		limit  int
		offset int
	}{
		{name: "none", query: "", limit: 10, offset: 0},
		{name: "garbage", query: "?limit=abc&offset=xyz", limit: 10, offset: 0},
		{name: "too large", query: "?limit=1000", limit: 100, offset: 0},
		{name: "negative", query: "?limit=-1&offset=-5", limit: 10, offset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeStore{})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/digests"+tt.query, nil)
			r.ServeHTTP(w, req)

			var res DigestsResponse
			json.Unmarshal(w.Body.Bytes(), &res)
			assert.Equal(t, tt.limit, res.Limit)
			assert.Equal(t, tt.offset, res.Offset)
			assert.Equal(t, 0, len(res.Digests))
		})
	}
}

func TestGetDigest_Found(t *testing.T) {
	d := sampleDigest()
	r := newTestRouter(&fakeStore{digest: &d})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/digests/7", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res DigestResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, int64(7), res.ID)
	assert.Equal(t, "=== Topic 1: SPORTS (2 news) ===", res.Body)
	assert.Equal(t, model.StatusSent, res.Status)
}

func TestGetDigest_NotFound(t *testing.T) {
	r := newTestRouter(&fakeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/digests/999", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDigest_InvalidID(t *testing.T) {
	r := newTestRouter(&fakeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/digests/aaa", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name     string
		store    DigestStore
		code     int
		status   string
		database string
	}{
		{name: "healthy", store: &fakeStore{}, code: http.StatusOK, status: "healthy", database: "connected"},
		{name: "db down", store: &fakeStore{err: errors.New("DB down")}, code: http.StatusServiceUnavailable, status: "unhealthy", database: "disconnected"},
		{name: "no db", store: nil, code: http.StatusOK, status: "healthy", database: "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.GET("/health", NewHealthHandler(tt.store).GetHealth)

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/health", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)

			var res map[string]string
			json.Unmarshal(w.Body.Bytes(), &res)
			assert.Equal(t, tt.status, res["status"])
			assert.Equal(t, tt.database, res["database"])
		})
	}
}
