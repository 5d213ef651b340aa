package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultTopic = "technology"
	DefaultCount = 5
	MaxCount     = 100
	MaxTopics    = 10
)

const defaultTopicPrompt = `You are a news assistant. Read the user's message and decide which news topics they want and how many articles they want for each topic.

Rules:
- Use short search-friendly topic names in English (e.g. "technology", "sports", "climate change")
- If the user gives a number for a topic, use it; otherwise use 5
- Never return more than 10 topics
- Keep the topics in the order the user mentioned them

Output JSON only, no other text, mapping each topic to its article count:
{
  "technology": 5,
  "sports": 3
}`

func LoadTopicPrompt(path string) string {
	if path == "" {
		return defaultTopicPrompt
	}

	data, err := os.ReadFile(path)
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return defaultTopicPrompt
	}

	return string(data)
}

func FallbackTopics() []TopicCount {
	return []TopicCount{{Topic: DefaultTopic, Count: DefaultCount}}
}

func AnalyzeTopics(ctx context.Context, c Client, systemPrompt, message string) ([]TopicCount, error) {
	content, err := c.Complete(ctx, systemPrompt, message)
	if err != nil {
		return nil, err
	}

	topics, err := parseTopicCounts(cleanJSONResponse(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, content: %s", err, content)
	}

	return topics, nil
}

// parseTopicCounts decodes a {"topic": count} object keeping key order, which
// encoding into a map would lose.
func parseTopicCounts(content string) ([]TopicCount, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected a JSON object")
	}

	var topics []TopicCount
	seen := make(map[string]bool)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}

		topic := strings.TrimSpace(key)
		if topic == "" || seen[strings.ToLower(topic)] {
			continue
		}

		count, err := parseCount(raw)
		if err != nil {
			return nil, fmt.Errorf("count for %q: %w", topic, err)
		}

		seen[strings.ToLower(topic)] = true
		topics = append(topics, TopicCount{Topic: topic, Count: ClampCount(count)})

		if len(topics) == MaxTopics {
			break
		}
	}

	if len(topics) == 0 {
		return nil, errors.New("no topics in response")
	}

	return topics, nil
}

func parseCount(raw json.RawMessage) (int, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errors.New("count is neither a number nor a string")
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

func ClampCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}
