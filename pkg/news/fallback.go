package news

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// FallbackClient asks each source in turn and returns the first non-empty
// result. Sources that cannot serve the topic are skipped silently. A source
// that answered with nothing outranks a later failure.
type FallbackClient struct {
	clients []Client
}

func NewFallbackClient(clients ...Client) *FallbackClient {
	return &FallbackClient{clients: clients}
}

func (c *FallbackClient) Name() string {
	names := make([]string, 0, len(c.clients))
	for _, client := range c.clients {
		names = append(names, client.Name())
	}
	return strings.Join(names, "+")
}

func (c *FallbackClient) Search(ctx context.Context, q Query) ([]Article, error) {
	var firstErr error
	answered := false

	for _, client := range c.clients {
		articles, err := client.Search(ctx, q)
		if err != nil {
			if errors.Is(err, ErrUnsupportedQuery) {
				continue
			}
			slog.Warn("news source failed", "source", client.Name(), "topic", q.Topic, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if len(articles) > 0 {
			return articles, nil
		}
		answered = true
	}

	if answered {
		return nil, nil
	}
	return nil, firstErr
}
