package model

import "time"

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

type DigestTopic struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type Digest struct {
	ID        int64
	Email     string
	Date      string
	Topics    []DigestTopic
	Body      string
	HTMLPath  string
	Status    string
	Error     string
	ModelUsed string
	CreatedAt time.Time
	SentAt    *time.Time
}
