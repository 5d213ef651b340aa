package news

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

// finnhubCategories maps topics onto Finnhub's market news categories.
var finnhubCategories = map[string]string{
	"business":       "general",
	"finance":        "general",
	"markets":        "general",
	"stock market":   "general",
	"economy":        "general",
	"forex":          "forex",
	"currencies":     "forex",
	"crypto":         "crypto",
	"cryptocurrency": "crypto",
	"bitcoin":        "crypto",
	"merger":         "merger",
	"mergers":        "merger",
	"acquisitions":   "merger",
}

type FinnHubClient struct {
	client *finnhub.DefaultApiService
}

func NewFinnHubClient(apiKey string) *FinnHubClient {
	return newFinnHubClient(apiKey, nil)
}

func newFinnHubClient(apiKey string, httpClient *http.Client) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{client: client}
}

func (c *FinnHubClient) Search(ctx context.Context, q Query) ([]Article, error) {
	category, ok := finnhubCategories[strings.ToLower(strings.TrimSpace(q.Topic))]
	if !ok {
		return nil, fmt.Errorf("finnhub %q: %w", q.Topic, ErrUnsupportedQuery)
	}

	res, _, err := c.client.MarketNews(ctx).Category(category).Execute()
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("finnhub fetch: %w", ErrTimeout)
		}
		return nil, fmt.Errorf("finnhub fetch: %w", err)
	}

	var articles []Article

	for _, news := range res {
		if len(articles) == q.PageSize {
			break
		}

		a := Article{
			Source: c.Name(),
		}

		if news.Id != nil {
			a.ExternalID = strconv.FormatInt(*news.Id, 10)
		}

		if news.Headline != nil {
			a.Headline = *news.Headline
		}

		if news.Summary != nil {
			a.Detail = *news.Summary
		}

		if news.Url != nil {
			a.URL = *news.Url
		}

		if news.Datetime != nil {
			a.PublishedAt = time.Unix(*news.Datetime, 0).UTC()
		}

		if news.Source != nil {
			a.Publisher = *news.Source
		}

		if a.Headline == "" || !within(a.PublishedAt, q.From, q.To) {
			continue
		}

		articles = append(articles, a)
	}

	return articles, nil
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}
