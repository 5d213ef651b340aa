package llm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"
)

type fakeClient struct {
	reply  string
	err    error
	system string
	user   string
}

func (f *fakeClient) Complete(ctx context.Context, system, user string) (string, error) {
	f.system = system
	f.user = user
	return f.reply, f.err
}

func (f *fakeClient) Model() string {
	return "fake-model"
}

func TestParseTopicCounts(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []TopicCount
		wantErr bool
	}{
		{
			name:  "keeps model order",
			input: `{"sports": 2, "crime": 3, "art": 1}`,
			want:  []TopicCount{{"sports", 2}, {"crime", 3}, {"art", 1}},
		},
		{
			name:  "clamps counts",
			input: `{"sports": 0, "crime": 500}`,
			want:  []TopicCount{{"sports", 1}, {"crime", MaxCount}},
		},
		{
			name:  "accepts numeric strings",
			input: `{"sports": "4"}`,
			want:  []TopicCount{{"sports", 4}},
		},
		{
			name:  "skips blank and duplicate topics",
			input: `{" ": 2, "Sports": 2, "sports": 9}`,
			want:  []TopicCount{{"Sports", 2}},
		},
		{
			name:    "empty object",
			input:   `{}`,
			wantErr: true,
		},
		{
			name:    "array instead of object",
			input:   `["sports"]`,
			wantErr: true,
		},
		{
			name:    "non numeric count",
			input:   `{"sports": "many"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTopicCounts(tt.input)
			if tt.wantErr {
				assert.NotEqual(t, nil, err)
				return
			}
			assert.Equal(t, nil, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTopicCounts_MaxTopics(t *testing.T) {
	input := `{"a":1,"b":1,"c":1,"d":1,"e":1,"f":1,"g":1,"h":1,"i":1,"j":1,"k":1,"l":1}`

	got, err := parseTopicCounts(input)

	assert.Equal(t, nil, err)
	assert.Equal(t, MaxTopics, len(got))
	assert.Equal(t, "j", got[MaxTopics-1].Topic)
}

func TestAnalyzeTopics(t *testing.T) {
	client := &fakeClient{reply: "```json\n{\"Sports\": 2, \"Crime\": 3}\n```"}

	topics, err := AnalyzeTopics(context.Background(), client, "prompt", "2 sports and 3 crime stories please")

	assert.Equal(t, nil, err)
	assert.Equal(t, []TopicCount{{"Sports", 2}, {"Crime", 3}}, topics)
	assert.Equal(t, "prompt", client.system)
	assert.Equal(t, "2 sports and 3 crime stories please", client.user)
}

func TestAnalyzeTopics_ClientError(t *testing.T) {
	client := &fakeClient{err: errors.New("rate limited")}

	_, err := AnalyzeTopics(context.Background(), client, "prompt", "anything")

	assert.NotEqual(t, nil, err)
}

func TestAnalyzeTopics_Unparseable(t *testing.T) {
	client := &fakeClient{reply: "Sorry, I can't help with that."}

	_, err := AnalyzeTopics(context.Background(), client, "prompt", "anything")

	assert.NotEqual(t, nil, err)
}

func TestLoadTopicPrompt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "system_prompt.txt")

	assert.Equal(t, defaultTopicPrompt, LoadTopicPrompt(""))
	assert.Equal(t, defaultTopicPrompt, LoadTopicPrompt(path))

	err := os.WriteFile(path, []byte("custom prompt"), 0o644)
	assert.Equal(t, nil, err)
	assert.Equal(t, "custom prompt", LoadTopicPrompt(path))
}

func TestFallbackTopics(t *testing.T) {
	assert.Equal(t, []TopicCount{{Topic: "technology", Count: 5}}, FallbackTopics())
}
