package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const cacheKeyPrefix = "smartnews:news:"

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedClient is a read-through cache in front of another Client. Cache
// failures never fail a search.
type CachedClient struct {
	next  Client
	cache Cache
	ttl   time.Duration
}

func NewCachedClient(next Client, cache Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{next: next, cache: cache, ttl: ttl}
}

func (c *CachedClient) Name() string {
	return c.next.Name()
}

func (c *CachedClient) Search(ctx context.Context, q Query) ([]Article, error) {
	key := cacheKey(c.next.Name(), q)

	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("news cache read failed", "key", key, "error", err)
	}

	if ok {
		var articles []Article
		if err := json.Unmarshal([]byte(cached), &articles); err == nil {
			slog.Debug("news cache hit", "key", key, "count", len(articles))
			return articles, nil
		}
		slog.Warn("news cache entry is corrupt, refetching", "key", key)
	}

	articles, err := c.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if len(articles) == 0 {
		return articles, nil
	}

	data, err := json.Marshal(articles)
	if err != nil {
		slog.Warn("error encoding articles for cache", "key", key, "error", err)
		return articles, nil
	}

	if err := c.cache.Set(ctx, key, string(data), c.ttl); err != nil {
		slog.Warn("news cache write failed", "key", key, "error", err)
	}

	return articles, nil
}

func cacheKey(source string, q Query) string {
	stamp := func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	}

	return fmt.Sprintf("%s%s:%s:%d:%s:%s:%s",
		cacheKeyPrefix,
		strings.ToLower(source),
		strings.ToLower(strings.TrimSpace(q.Topic)),
		q.PageSize,
		q.language(),
		stamp(q.From),
		stamp(q.To),
	)
}
