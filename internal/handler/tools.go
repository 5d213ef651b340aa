package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Aida-adzd/smart-news-summarizer/internal/digest"
	"github.com/Aida-adzd/smart-news-summarizer/internal/rpc"
	"github.com/Aida-adzd/smart-news-summarizer/pkg/llm"
)

type AnalyzeTopicsParams struct {
	Message string `json:"message" binding:"required" jsonschema:"free-form description of the news the user wants"`
}

type AnalyzeTopicsResult struct {
	Topics []TopicResponse `json:"topics"`
}

type TopicParams struct {
	Topic string `json:"topic" binding:"required"`
	Count int    `json:"count" binding:"required,min=1,max=100" jsonschema:"number of articles, 1 to 100"`
}

type FetchNewsParams struct {
	Topic string `json:"topic" binding:"required"`
	Count int    `json:"count" binding:"required,min=1,max=100" jsonschema:"number of articles, 1 to 100"`
	Date  string `json:"date,omitempty" binding:"omitempty,datetime=2006-01-02" jsonschema:"only articles published on this day, YYYY-MM-DD"`
}

type FetchNewsResult struct {
	Topic    string            `json:"topic"`
	Articles []ArticleResponse `json:"articles"`
}

type SummarizeNewsResult struct {
	Topic   string `json:"topic"`
	Summary string `json:"summary"`
}

type SmartNewsParams struct {
	Message string `json:"message" binding:"required" jsonschema:"free-form description of the news the user wants"`
}

type SmartNewsEmailParams struct {
	Date    string        `json:"date" binding:"required,datetime=2006-01-02" jsonschema:"day of the news, YYYY-MM-DD"`
	Email   string        `json:"email" binding:"required,email" jsonschema:"recipient address"`
	Topics  []TopicParams `json:"topics" binding:"required,min=1,max=10,dive"`
	Subject string        `json:"subject,omitempty"`
}

type SmartNewsEmailResult struct {
	File     string `json:"file"`
	Email    string `json:"email"`
	Sent     bool   `json:"sent"`
	DigestID int64  `json:"digest_id,omitempty"`
}

type SendEmailParams struct {
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required" jsonschema:"Markdown body, rendered as HTML"`
}

type SendEmailResult struct {
	Sent bool `json:"sent"`
}

type ListDigestsParams struct {
	Limit  int `json:"limit,omitempty" binding:"omitempty,min=1,max=100"`
	Offset int `json:"offset,omitempty" binding:"omitempty,min=0"`
}

type toolSet struct {
	svc     *digest.Service
	history DigestStore
}

// RegisterTools exposes the digest service as JSON-RPC tools. tool.list_digests
// is only registered when history is not nil.
func RegisterTools(reg *rpc.Registry, svc *digest.Service, history DigestStore) error {
	t := &toolSet{svc: svc, history: history}

	register := []func() error{
		func() error {
			return rpc.Register(reg, "tool.analyze_topics",
				"Work out which news topics, and how many articles of each, a message asks for.", t.analyzeTopics)
		},
		func() error {
			return rpc.Register(reg, "tool.fetch_news",
				"Search recent articles for one topic.", t.fetchNews)
		},
		func() error {
			return rpc.Register(reg, "tool.summarize_news",
				"Fetch articles for one topic and summarize them in Markdown.", t.summarizeNews)
		},
		func() error {
			return rpc.Register(reg, "tool.smart_news",
				"Answer a free-form request with a summarized digest of the topics it mentions.", t.smartNews)
		},
		func() error {
			return rpc.Register(reg, "tool.smart_news_email",
				"Build a digest for the given topics and day and email it as HTML.", t.smartNewsEmail)
		},
		func() error {
			return rpc.Register(reg, "tool.send_email",
				"Email a Markdown body rendered as HTML.", t.sendEmail)
		},
	}

	if history != nil {
		register = append(register, func() error {
			return rpc.Register(reg, "tool.list_digests",
				"List previously emailed digests, newest first.", t.listDigests)
		})
	}

	for _, fn := range register {
		if err := fn(); err != nil {
			return err
		}
	}

	return nil
}

func (t *toolSet) analyzeTopics(ctx context.Context, p AnalyzeTopicsParams) (AnalyzeTopicsResult, error) {
	topics := t.svc.AnalyzeTopics(ctx, p.Message)
	return AnalyzeTopicsResult{Topics: toTopicResponses(topics)}, nil
}

func (t *toolSet) fetchNews(ctx context.Context, p FetchNewsParams) (FetchNewsResult, error) {
	articles, err := t.svc.FetchNews(ctx, p.Topic, p.Count, p.Date)
	if err != nil {
		return FetchNewsResult{}, rpc.ToolError(err.Error())
	}
	return FetchNewsResult{Topic: p.Topic, Articles: toArticleResponses(articles)}, nil
}

func (t *toolSet) summarizeNews(ctx context.Context, p FetchNewsParams) (SummarizeNewsResult, error) {
	summary := t.svc.SummarizeTopic(ctx, p.Topic, p.Count, p.Date)
	return SummarizeNewsResult{Topic: p.Topic, Summary: summary}, nil
}

func (t *toolSet) smartNews(ctx context.Context, p SmartNewsParams) (SmartNewsResponse, error) {
	return SmartNewsResponse{NewsText: t.svc.SmartNews(ctx, p.Message)}, nil
}

func (t *toolSet) smartNewsEmail(ctx context.Context, p SmartNewsEmailParams) (SmartNewsEmailResult, error) {
	topics := make([]llm.TopicCount, len(p.Topics))
	for i, tp := range p.Topics {
		topics[i] = llm.TopicCount{Topic: tp.Topic, Count: tp.Count}
	}

	res, err := t.svc.EmailDigest(ctx, digest.EmailRequest{
		Email:   p.Email,
		Date:    p.Date,
		Subject: p.Subject,
		Topics:  topics,
	})
	if errors.Is(err, digest.ErrMailDisabled) {
		return SmartNewsEmailResult{}, rpc.ToolError(err.Error())
	}
	if err != nil && res != nil {
		// the digest was built and saved, only delivery failed
		return SmartNewsEmailResult{}, rpc.NewError(rpc.CodeToolError, "failed to send email", map[string]any{
			"file":  res.File,
			"error": err.Error(),
		})
	}
	if err != nil {
		return SmartNewsEmailResult{}, err
	}

	return SmartNewsEmailResult{
		File:     res.File,
		Email:    res.Email,
		Sent:     res.Sent,
		DigestID: res.DigestID,
	}, nil
}

func (t *toolSet) sendEmail(ctx context.Context, p SendEmailParams) (SendEmailResult, error) {
	err := t.svc.SendEmail(ctx, p.Email, p.Subject, p.Body)
	if err != nil {
		slog.Error("error sending email", "email", p.Email, "error", err)
		return SendEmailResult{}, rpc.ToolError(err.Error())
	}
	return SendEmailResult{Sent: true}, nil
}

func (t *toolSet) listDigests(ctx context.Context, p ListDigestsParams) (DigestsResponse, error) {
	limit := p.Limit
	if limit == 0 {
		limit = defaultLimit
	}

	digests, total, err := listDigests(ctx, t.history, limit, p.Offset)
	if err != nil {
		return DigestsResponse{}, err
	}

	return DigestsResponse{Digests: digests, Total: total, Limit: limit, Offset: p.Offset}, nil
}
