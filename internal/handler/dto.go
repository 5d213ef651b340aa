package handler

import (
	"time"

	"github.com/Aida-adzd/smart-news-summarizer/internal/model"
	"github.com/Aida-adzd/smart-news-summarizer/pkg/llm"
	"github.com/Aida-adzd/smart-news-summarizer/pkg/news"
)

type SmartNewsRequest struct {
	Message string `json:"message" binding:"required"`
}

type SmartNewsResponse struct {
	NewsText string `json:"news_text"`
}

type TopicResponse struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type DigestResponse struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	Date      string          `json:"date"`
	Topics    []TopicResponse `json:"topics"`
	Body      string          `json:"body,omitempty"`
	HTMLPath  string          `json:"html_path"`
	Status    string          `json:"status"`
	Error     string          `json:"error,omitempty"`
	ModelUsed string          `json:"model_used"`
	CreatedAt string          `json:"created_at"`
	SentAt    string          `json:"sent_at,omitempty"`
}

type DigestsResponse struct {
	Digests []DigestResponse `json:"digests"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

func toDigestResponse(d model.Digest, withBody bool) DigestResponse {
	topics := make([]TopicResponse, len(d.Topics))
	for i, t := range d.Topics {
		topics[i] = TopicResponse{Topic: t.Topic, Count: t.Count}
	}

	res := DigestResponse{
		ID:        d.ID,
		Email:     d.Email,
		Date:      d.Date,
		Topics:    topics,
		HTMLPath:  d.HTMLPath,
		Status:    d.Status,
		Error:     d.Error,
		ModelUsed: d.ModelUsed,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}

	if withBody {
		res.Body = d.Body
	}

	if d.SentAt != nil {
		res.SentAt = d.SentAt.Format(time.RFC3339)
	}

	return res
}

func toTopicResponses(topics []llm.TopicCount) []TopicResponse {
	res := make([]TopicResponse, len(topics))
	for i, t := range topics {
		res[i] = TopicResponse{Topic: t.Topic, Count: t.Count}
	}
	return res
}

type ArticleResponse struct {
	Headline    string `json:"headline"`
	Detail      string `json:"detail"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Publisher   string `json:"publisher"`
	PublishedAt string `json:"published_at"`
}

func toArticleResponses(articles []news.Article) []ArticleResponse {
	res := make([]ArticleResponse, len(articles))
	for i, a := range articles {
		res[i] = ArticleResponse{
			Headline:    a.Headline,
			Detail:      a.Detail,
			URL:         a.URL,
			Source:      a.Source,
			Publisher:   a.Publisher,
			PublishedAt: a.PublishedAt.Format(time.RFC3339),
		}
	}
	return res
}
