package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKind string
		wantJSON string
	}{
		{
			name:     "object",
			text:     `{"answer": "Paris", "references": ["https://en.wikipedia.org/wiki/Paris"]}`,
			wantKind: "structured",
			wantJSON: `{"answer":"Paris","references":["https://en.wikipedia.org/wiki/Paris"]}`,
		},
		{
			name:     "fenced object",
			text:     "```json\n{\"answer\": \"Paris\"}\n```",
			wantKind: "structured",
			wantJSON: `{"answer":"Paris"}`,
		},
		{
			name:     "bare fence",
			text:     "```\n{\"b\": 1, \"a\": 2}\n```",
			wantKind: "structured",
			wantJSON: `{"b":1,"a":2}`,
		},
		{
			name:     "prose",
			text:     "The capital of France is Paris.",
			wantKind: "raw_text",
			wantJSON: `{"validation":"The capital of France is Paris."}`,
		},
		{
			name:     "array",
			text:     `["Paris"]`,
			wantKind: "raw_text",
			wantJSON: `{"validation":"[\"Paris\"]"}`,
		},
		{
			name:     "scalar",
			text:     `42`,
			wantKind: "raw_text",
			wantJSON: `{"validation":"42"}`,
		},
		{
			name:     "null",
			text:     `null`,
			wantKind: "raw_text",
			wantJSON: `{"validation":"null"}`,
		},
		{
			name:     "truncated object",
			text:     `{"answer": "Par`,
			wantKind: "raw_text",
			wantJSON: `{"validation":"{\"answer\": \"Par"}`,
		},
		{
			name:     "object followed by prose",
			text:     `{"answer": "Paris"} hope this helps`,
			wantKind: "raw_text",
			wantJSON: `{"validation":"{\"answer\": \"Paris\"} hope this helps"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ParseOutcome(tt.text)
			assert.Equal(t, tt.wantKind, outcomeKind(outcome))

			data, err := json.Marshal(outcome)
			require.NoError(t, err)
			assert.Equal(t, tt.wantJSON, string(data))
		})
	}
}

func TestStructuredOutcomeFields(t *testing.T) {
	outcome, ok := ParseOutcome(`{"answer": "Paris", "confidence": 0.9}`).(StructuredOutcome)
	require.True(t, ok)
	assert.Equal(t, "Paris", outcome.Fields["answer"])
	assert.Equal(t, 0.9, outcome.Fields["confidence"])
}

func TestStructuredOutcomeWithoutRaw(t *testing.T) {
	data, err := json.Marshal(StructuredOutcome{Fields: map[string]any{"answer": "Paris"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"Paris"}`, string(data))
}

func TestFailureOutcomeJSON(t *testing.T) {
	data, err := json.Marshal(NewFailureOutcome("connection refused"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"summary": "Error in validation process",
		"validation": "connection refused",
		"inconsistencies": [],
		"references": []
	}`, string(data))

	data, err = json.Marshal(FailureOutcome{Summary: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"x","validation":"","inconsistencies":[],"references":[]}`, string(data))
}
