package llm

import "testing"

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON unchanged",
			input: `{"technology":5}`,
			want:  `{"technology":5}`,
		},
		{
			name:  "strips json fenced block",
			input: "```json\n{\"technology\":5}\n```",
			want:  `{"technology":5}`,
		},
		{
			name:  "strips plain fenced block",
			input: "```\n{\"crime\":3}\n```",
			want:  `{"crime":3}`,
		},
		{
			name:  "drops prose around object",
			input: "Here you go:\n{\"sports\": 2}\nHope that helps.",
			want:  `{"sports": 2}`,
		},
		{
			name:  "trims surrounding whitespace",
			input: "  {\"sports\":2}  ",
			want:  `{"sports":2}`,
		},
		{
			name:  "no object left as is",
			input: "I could not find any topics.",
			want:  "I could not find any topics.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanJSONResponse(tt.input)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
