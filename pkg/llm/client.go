package llm

import "context"

type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Model() string
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type SummaryInput struct {
	Headline string
	Detail   string
	URL      string
}
