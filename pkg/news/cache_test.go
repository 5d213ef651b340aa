package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

type memoryCache struct {
	data   map[string]string
	ttl    time.Duration
	getErr error
	setErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttl = ttl
	return nil
}

func TestCachedClient_ReadThrough(t *testing.T) {
	upstream := &fakeClient{name: "NewsAPI", articles: []Article{{Headline: "Derby win", URL: "https://example.com/derby"}}}
	cache := newMemoryCache()
	client := NewCachedClient(upstream, cache, 10*time.Minute)
	q := Query{Topic: "Sports", PageSize: 2}

	first, err := client.Search(context.Background(), q)
	assert.Equal(t, nil, err)

	second, err := client.Search(context.Background(), q)
	assert.Equal(t, nil, err)

	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, first[0].Headline, second[0].Headline)
	assert.Equal(t, 10*time.Minute, cache.ttl)
	assert.Equal(t, "NewsAPI", client.Name())
}

func TestCachedClient_EmptyResultsAreNotCached(t *testing.T) {
	upstream := &fakeClient{name: "NewsAPI"}
	cache := newMemoryCache()
	client := NewCachedClient(upstream, cache, time.Minute)

	client.Search(context.Background(), Query{Topic: "Sports", PageSize: 2})
	client.Search(context.Background(), Query{Topic: "Sports", PageSize: 2})

	assert.Equal(t, 2, upstream.calls)
	assert.Equal(t, 0, len(cache.data))
}

func TestCachedClient_CacheErrorsAreIgnored(t *testing.T) {
	upstream := &fakeClient{name: "NewsAPI", articles: []Article{{Headline: "Derby win"}}}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")

	articles, err := NewCachedClient(upstream, cache, time.Minute).Search(context.Background(), Query{Topic: "Sports", PageSize: 2})

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(articles))
}

func TestCachedClient_UpstreamErrorPassesThrough(t *testing.T) {
	upstream := &fakeClient{name: "NewsAPI", err: ErrTimeout}

	_, err := NewCachedClient(upstream, newMemoryCache(), time.Minute).Search(context.Background(), Query{Topic: "Sports"})

	assert.Equal(t, true, errors.Is(err, ErrTimeout))
}

func TestCacheKey(t *testing.T) {
	from, to, _ := ParseDay("2025-10-02")

	assert.Equal(t,
		"smartnews:news:newsapi:sports:2:en:2025-10-02T00:00:00Z:2025-10-02T23:59:59Z",
		cacheKey("NewsAPI", Query{Topic: " Sports ", PageSize: 2, From: from, To: to}))

	assert.Equal(t,
		"smartnews:news:newsapi:sports:2:de:-:-",
		cacheKey("NewsAPI", Query{Topic: "sports", PageSize: 2, Language: "de"}))
}
