package news

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const alphaVantageURL = "https://www.alphavantage.co/query"

// avTopics maps free-text topics onto the fixed topic codes NEWS_SENTIMENT accepts.
var avTopics = map[string]string{
	"technology":    "technology",
	"tech":          "technology",
	"blockchain":    "blockchain",
	"crypto":        "blockchain",
	"earnings":      "earnings",
	"ipo":           "ipo",
	"mergers":       "mergers_and_acquisitions",
	"acquisitions":  "mergers_and_acquisitions",
	"finance":       "finance",
	"financial":     "financial_markets",
	"markets":       "financial_markets",
	"stock market":  "financial_markets",
	"economy":       "economy_macro",
	"inflation":     "economy_monetary",
	"monetary":      "economy_monetary",
	"fiscal":        "economy_fiscal",
	"energy":        "energy_transportation",
	"manufacturing": "manufacturing",
	"real estate":   "real_estate",
	"retail":        "retail_wholesale",
	"healthcare":    "life_sciences",
	"life sciences": "life_sciences",
}

type AlphaVantageClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewAlphaVantageClient(apiKey string) *AlphaVantageClient {
	return &AlphaVantageClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *AlphaVantageClient) Name() string {
	return "AlphaVantage"
}

func (c *AlphaVantageClient) Search(ctx context.Context, q Query) ([]Article, error) {
	topic, ok := avTopics[strings.ToLower(strings.TrimSpace(q.Topic))]
	if !ok {
		return nil, fmt.Errorf("alphavantage %q: %w", q.Topic, ErrUnsupportedQuery)
	}

	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("topics", topic)
	params.Set("sort", "LATEST")
	params.Set("limit", strconv.Itoa(max(q.PageSize, 50)))
	params.Set("apikey", c.apiKey)
	if !q.From.IsZero() {
		params.Set("time_from", q.From.UTC().Format("20060102T1504"))
	}
	if !q.To.IsZero() {
		params.Set("time_to", q.To.UTC().Format("20060102T1504"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, alphaVantageURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("alphavantage fetch: %w", ErrTimeout)
		}
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("alphavantage: status %d", resp.StatusCode)
	}

	var raw avResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}

	// Rate limits and bad keys come back as 200 with a note instead of a feed.
	if raw.Information != "" && len(raw.Feed) == 0 {
		return nil, fmt.Errorf("alphavantage: %s", raw.Information)
	}

	articles := make([]Article, 0, len(raw.Feed))
	for _, item := range raw.Feed {
		if len(articles) == q.PageSize {
			break
		}

		publishedAt, err := time.Parse("20060102T150405", item.TimePublished)
		if err != nil {
			publishedAt = time.Time{}
		}

		articles = append(articles, Article{
			ExternalID:  generateExternalID(item.URL),
			Headline:    item.Title,
			Detail:      item.Summary,
			URL:         item.URL,
			Publisher:   item.Source,
			PublishedAt: publishedAt,
			Source:      c.Name(),
		})
	}

	return articles, nil
}

func generateExternalID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", sum)[:16]
}

type avResponse struct {
	Information string       `json:"Information"`
	Feed        []avFeedItem `json:"feed"`
}

type avFeedItem struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	TimePublished string `json:"time_published"`
}
