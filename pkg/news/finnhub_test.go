package news

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

type finnhubCall struct {
	calls    int
	path     string
	category string
	token    string
}

func newTestFinnHubServer(t *testing.T, payload interface{}) (*FinnHubClient, *finnhubCall) {
	t.Helper()

	got := &finnhubCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.calls++
		got.path = r.URL.Path
		got.category = r.URL.Query().Get("category")
		got.token = r.Header.Get("X-Finnhub-Token")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)

	httpClient := srv.Client()
	httpClient.Transport = &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}

	return newFinnHubClient("test-key", httpClient), got
}

func finnhubItem(id int64, headline string, at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"id":       id,
		"category": "top news",
		"headline": headline,
		"summary":  headline + " in detail.",
		"url":      "https://example.com/" + headline,
		"source":   "Reuters",
		"datetime": at.Unix(),
	}
}

func TestFinnHubSearch(t *testing.T) {
	from, to, _ := ParseDay("2025-10-02")
	payload := []map[string]interface{}{
		finnhubItem(1, "Stocks rally", from.Add(14*time.Hour)),
		finnhubItem(2, "Bonds slip", from.Add(10*time.Hour)),
	}

	client, got := newTestFinnHubServer(t, payload)

	articles, err := client.Search(context.Background(), Query{Topic: "Business", PageSize: 5, From: from, To: to})

	assert.Equal(t, nil, err)
	assert.Equal(t, "/api/v1/news", got.path)
	assert.Equal(t, "general", got.category)
	assert.Equal(t, "test-key", got.token)
	assert.Equal(t, 2, len(articles))

	a := articles[0]
	assert.Equal(t, "1", a.ExternalID)
	assert.Equal(t, "Stocks rally", a.Headline)
	assert.Equal(t, "Stocks rally in detail.", a.Detail)
	assert.Equal(t, "https://example.com/Stocks rally", a.URL)
	assert.Equal(t, "Reuters", a.Publisher)
	assert.Equal(t, "FinnHub", a.Source)
	assert.Equal(t, true, a.PublishedAt.Equal(from.Add(14*time.Hour)))
}

func TestFinnHubSearch_CategoryMapping(t *testing.T) {
	tests := []struct {
		topic    string
		category string
	}{
		{topic: "finance", category: "general"},
		{topic: " Stock Market ", category: "general"},
		{topic: "currencies", category: "forex"},
		{topic: "Bitcoin", category: "crypto"},
		{topic: "acquisitions", category: "merger"},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			client, got := newTestFinnHubServer(t, []map[string]interface{}{})

			_, err := client.Search(context.Background(), Query{Topic: tt.topic, PageSize: 1})

			assert.Equal(t, nil, err)
			assert.Equal(t, tt.category, got.category)
		})
	}
}

func TestFinnHubSearch_UnsupportedTopic(t *testing.T) {
	client, got := newTestFinnHubServer(t, []map[string]interface{}{})

	_, err := client.Search(context.Background(), Query{Topic: "sports", PageSize: 3})

	assert.Equal(t, true, errors.Is(err, ErrUnsupportedQuery))
	assert.Equal(t, 0, got.calls)
}

func TestFinnHubSearch_PageSizeCap(t *testing.T) {
	now := time.Now().UTC()
	payload := []map[string]interface{}{
		finnhubItem(1, "One", now),
		finnhubItem(2, "Two", now),
		finnhubItem(3, "Three", now),
	}

	client, _ := newTestFinnHubServer(t, payload)

	articles, err := client.Search(context.Background(), Query{Topic: "crypto", PageSize: 2})

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(articles))
	assert.Equal(t, "Two", articles[1].Headline)
}

func TestFinnHubSearch_DayFilter(t *testing.T) {
	from, to, _ := ParseDay("2025-10-02")
	payload := []map[string]interface{}{
		finnhubItem(1, "Day before", from.Add(-2*time.Hour)),
		finnhubItem(2, "On the day", from.Add(8*time.Hour)),
		finnhubItem(3, "Day after", to.Add(2*time.Hour)),
		finnhubItem(4, "", from.Add(9*time.Hour)),
	}

	client, _ := newTestFinnHubServer(t, payload)

	articles, err := client.Search(context.Background(), Query{Topic: "forex", PageSize: 10, From: from, To: to})

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(articles))
	assert.Equal(t, "On the day", articles[0].Headline)
}

func TestFinnHubSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	httpClient := srv.Client()
	httpClient.Transport = &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}

	_, err := newFinnHubClient("test-key", httpClient).Search(context.Background(), Query{Topic: "economy", PageSize: 2})

	assert.NotEqual(t, nil, err)
}
