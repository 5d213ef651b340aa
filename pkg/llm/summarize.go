package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const summarySystemPrompt = `You are a helpful assistant. Summarize each news item in 2-3 sentences. Format result in Markdown as:

## Title
**Summary:** ...
[Read More](link)
---
`

const maxDetailChars = 2000

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}

func FormatArticles(articles []SummaryInput) string {
	blocks := make([]string, 0, len(articles))
	for _, a := range articles {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nContent: %s\nLink: %s",
			a.Headline, truncate(a.Detail, maxDetailChars), a.URL))
	}
	return strings.Join(blocks, "\n\n")
}

func Summarize(ctx context.Context, c Client, articles []SummaryInput) (string, error) {
	if len(articles) == 0 {
		return "", fmt.Errorf("no articles to summarize")
	}

	content, err := c.Complete(ctx, summarySystemPrompt, FormatArticles(articles))
	if err != nil {
		return "", err
	}

	if content == "" {
		return "", fmt.Errorf("empty summary from %s", c.Model())
	}

	return content, nil
}
