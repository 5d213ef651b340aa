package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Aida-adzd/smart-news-summarizer/internal/model"
	"github.com/Aida-adzd/smart-news-summarizer/pkg/llm"
	"github.com/Aida-adzd/smart-news-summarizer/pkg/mail"
	"github.com/Aida-adzd/smart-news-summarizer/pkg/news"
	"github.com/google/uuid"
)

var ErrMailDisabled = errors.New("email delivery is not configured")

type Store interface {
	SaveDigest(ctx context.Context, digest *model.Digest) error
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
}

type Options struct {
	LLM         llm.Client
	News        news.Client
	Mailer      mail.Mailer
	Store       Store
	TopicPrompt string
	OutputDir   string
	Language    string
}

type Service struct {
	llm         llm.Client
	news        news.Client
	mailer      mail.Mailer
	store       Store
	topicPrompt string
	outputDir   string
	language    string
	now         func() time.Time
}

func NewService(opts Options) *Service {
	if opts.TopicPrompt == "" {
		opts.TopicPrompt = llm.LoadTopicPrompt("")
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	if opts.Language == "" {
		opts.Language = news.DefaultLanguage
	}

	return &Service{
		llm:         opts.LLM,
		news:        opts.News,
		mailer:      opts.Mailer,
		store:       opts.Store,
		topicPrompt: opts.TopicPrompt,
		outputDir:   opts.OutputDir,
		language:    opts.Language,
		now:         time.Now,
	}
}

func (s *Service) MailEnabled() bool {
	return s.mailer != nil
}

func (s *Service) AnalyzeTopics(ctx context.Context, message string) []llm.TopicCount {
	topics, err := llm.AnalyzeTopics(ctx, s.llm, s.topicPrompt, message)
	if err != nil {
		slog.Error("topic extraction error, using fallback", "error", err)
		return llm.FallbackTopics()
	}
	return topics
}

func (s *Service) FetchNews(ctx context.Context, topic string, count int, date string) ([]news.Article, error) {
	q := news.Query{
		Topic:    topic,
		PageSize: llm.ClampCount(count),
		Language: s.language,
	}

	if date != "" {
		from, to, err := news.ParseDay(date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", date, err)
		}
		q.From, q.To = from, to
	}

	return s.news.Search(ctx, q)
}

func (s *Service) SummarizeArticles(ctx context.Context, articles []news.Article) (string, error) {
	inputs := make([]llm.SummaryInput, len(articles))
	for i, a := range articles {
		inputs[i] = llm.SummaryInput{
			Headline: a.Headline,
			Detail:   a.Text(),
			URL:      a.URL,
		}
	}

	return llm.Summarize(ctx, s.llm, inputs)
}

func (s *Service) SummarizeTopic(ctx context.Context, topic string, count int, date string) string {
	articles, err := s.FetchNews(ctx, topic, count, date)
	if err != nil {
		slog.Error("error fetching news", "topic", topic, "error", err)
		if errors.Is(err, news.ErrTimeout) {
			return fmt.Sprintf("Timeout while fetching news for '%s'", topic)
		}
		return fmt.Sprintf("Failed to fetch news for '%s': %v", topic, err)
	}

	if len(articles) == 0 {
		return "No news found."
	}

	summary, err := s.SummarizeArticles(ctx, articles)
	if err != nil {
		slog.Error("error summarizing news", "topic", topic, "error", err)
		return fmt.Sprintf("Failed to summarize: %v", err)
	}

	return summary
}

func (s *Service) BuildDigest(ctx context.Context, topics []llm.TopicCount, date string) string {
	var sb strings.Builder

	for i, t := range topics {
		sb.WriteString(TopicHeader(i+1, t.Topic, t.Count))
		sb.WriteString(s.SummarizeTopic(ctx, t.Topic, t.Count, date))
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func TopicHeader(index int, topic string, count int) string {
	return fmt.Sprintf("=== Topic %d: %s (%d news) ===\n\n", index, strings.ToUpper(topic), count)
}

func (s *Service) SmartNews(ctx context.Context, message string) string {
	topics := s.AnalyzeTopics(ctx, message)
	slog.Info("topics extracted", "topics", topics)
	return s.BuildDigest(ctx, topics, "")
}

type EmailRequest struct {
	Email   string
	Date    string
	Subject string
	Topics  []llm.TopicCount
}

type EmailResult struct {
	File     string
	Email    string
	Sent     bool
	DigestID int64
}

// The HTML file is written even when delivery fails.
func (s *Service) EmailDigest(ctx context.Context, req EmailRequest) (*EmailResult, error) {
	if s.mailer == nil {
		return nil, ErrMailDisabled
	}

	subject := req.Subject
	if subject == "" {
		subject = DefaultSubject(req.Date)
	}

	body := s.BuildDigest(ctx, req.Topics, req.Date)

	html, err := mail.RenderHTML(subject, body)
	if err != nil {
		return nil, err
	}

	path, err := s.writeHTML(req.Date, html)
	if err != nil {
		return nil, err
	}

	result := &EmailResult{File: path, Email: req.Email}

	record := &model.Digest{
		Email:     req.Email,
		Date:      req.Date,
		Topics:    toDigestTopics(req.Topics),
		Body:      body,
		HTMLPath:  path,
		Status:    model.StatusPending,
		ModelUsed: s.llm.Model(),
	}
	s.saveDigest(ctx, record)
	result.DigestID = record.ID

	err = s.mailer.Send(ctx, mail.Message{
		To:      []string{req.Email},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		slog.Error("error sending digest email", "email", req.Email, "file", path, "error", err)
		s.markFailed(ctx, record.ID, err)
		return result, err
	}

	s.markSent(ctx, record.ID)
	result.Sent = true

	slog.Info("digest email sent", "email", req.Email, "file", path, "digest_id", record.ID)
	return result, nil
}

func (s *Service) SendEmail(ctx context.Context, to, subject, body string) error {
	if s.mailer == nil {
		return ErrMailDisabled
	}

	html, err := mail.RenderHTML(subject, body)
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, mail.Message{To: []string{to}, Subject: subject, HTML: html})
}

func DefaultSubject(date string) string {
	if date == "" {
		return "Your news digest"
	}
	return "Your news digest for " + date
}

func (s *Service) writeHTML(date, html string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	if date == "" {
		date = s.now().Format(time.DateOnly)
	}

	name := fmt.Sprintf("news-digest-%s-%s.html", date, uuid.NewString()[:8])
	path := filepath.Join(s.outputDir, name)

	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("write digest file: %w", err)
	}

	return path, nil
}

func (s *Service) saveDigest(ctx context.Context, d *model.Digest) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveDigest(ctx, d); err != nil {
		slog.Error("error saving digest", "email", d.Email, "error", err)
	}
}

func (s *Service) markSent(ctx context.Context, id int64) {
	if s.store == nil || id == 0 {
		return
	}
	if err := s.store.MarkSent(ctx, id); err != nil {
		slog.Error("error marking digest sent", "digest_id", id, "error", err)
	}
}

func (s *Service) markFailed(ctx context.Context, id int64, sendErr error) {
	if s.store == nil || id == 0 {
		return
	}
	if err := s.store.MarkFailed(ctx, id, sendErr.Error()); err != nil {
		slog.Error("error marking digest failed", "digest_id", id, "error", err)
	}
}

func toDigestTopics(topics []llm.TopicCount) []model.DigestTopic {
	res := make([]model.DigestTopic, len(topics))
	for i, t := range topics {
		res[i] = model.DigestTopic{Topic: t.Topic, Count: t.Count}
	}
	return res
}
