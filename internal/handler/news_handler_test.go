package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
)

func newTestNewsRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/smart-news", NewNewsHandler(newTestService(t, nil)).SmartNews)
	return r
}

func TestSmartNews(t *testing.T) {
	r := newTestNewsRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/smart-news", strings.NewReader(`{"message":"two sports stories please"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res SmartNewsResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "=== Topic 1: SPORTS (2 news) ===\n\n## Derby win\n**Summary:** short.\n---\n\n", res.NewsText)
}

func TestSmartNews_MissingMessage(t *testing.T) {
	r := newTestNewsRouter(t)

	for _, body := range []string{`{}`, `{"message":""}`, `not json`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/smart-news", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}
