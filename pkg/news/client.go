package news

import (
	"context"
	"errors"
	"net"
	"time"
)

var (
	// ErrTimeout wraps every failure caused by the provider not answering in time.
	ErrTimeout = errors.New("news request timed out")

	// ErrUnsupportedQuery is returned by providers that cannot search for the
	// requested topic at all, so a fallback chain can move on.
	ErrUnsupportedQuery = errors.New("query not supported by provider")
)

const DefaultLanguage = "en"

type Article struct {
	ExternalID  string    `json:"external_id,omitempty"`
	Headline    string    `json:"headline"`
	Detail      string    `json:"detail"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Publisher   string    `json:"publisher"`
	PublishedAt time.Time `json:"published_at"`
}

func (a Article) Text() string {
	if a.Content != "" {
		return a.Content
	}
	return a.Detail
}

type Query struct {
	Topic    string
	PageSize int
	Language string
	From     time.Time
	To       time.Time
}

func (q Query) language() string {
	if q.Language == "" {
		return DefaultLanguage
	}
	return q.Language
}

type Client interface {
	Search(ctx context.Context, q Query) ([]Article, error)
	Name() string
}

func ParseDay(day string) (time.Time, time.Time, error) {
	from, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, from.Add(24*time.Hour - time.Second), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func within(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}
