package pipeline

import (
	"bytes"
	"encoding/json"
	"strings"
)

const failureSummary = "Error in validation process"

// ValidationOutcome is the synthesizer's verdict. It is exactly one of
// StructuredOutcome, RawTextOutcome or FailureOutcome.
type ValidationOutcome interface {
	json.Marshaler
	outcome()
}

// StructuredOutcome is an LLM completion that decoded as a JSON object. It
// serializes back to the object as received.
type StructuredOutcome struct {
	Fields map[string]any
	raw    json.RawMessage
}

func (StructuredOutcome) outcome() {}

func (o StructuredOutcome) MarshalJSON() ([]byte, error) {
	if len(o.raw) > 0 {
		return o.raw, nil
	}
	if o.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(o.Fields)
}

// RawTextOutcome keeps a completion that was not a JSON object.
type RawTextOutcome struct {
	Text string
}

func (RawTextOutcome) outcome() {}

func (o RawTextOutcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Validation string `json:"validation"`
	}{o.Text})
}

type FailureOutcome struct {
	Summary         string   `json:"summary"`
	Validation      string   `json:"validation"`
	Inconsistencies []string `json:"inconsistencies"`
	References      []string `json:"references"`
}

func (FailureOutcome) outcome() {}

func (o FailureOutcome) MarshalJSON() ([]byte, error) {
	type plain FailureOutcome
	p := plain(o)
	if p.Inconsistencies == nil {
		p.Inconsistencies = []string{}
	}
	if p.References == nil {
		p.References = []string{}
	}
	return json.Marshal(p)
}

func NewFailureOutcome(validation string) FailureOutcome {
	return FailureOutcome{
		Summary:         failureSummary,
		Validation:      validation,
		Inconsistencies: []string{},
		References:      []string{},
	}
}

// ParseOutcome decodes an LLM completion. A JSON object, optionally wrapped
// in a markdown code fence, becomes a StructuredOutcome; anything else is kept
// verbatim as a RawTextOutcome.
func ParseOutcome(text string) ValidationOutcome {
	candidate := []byte(stripCodeFence(text))
	if len(candidate) == 0 || candidate[0] != '{' {
		return RawTextOutcome{Text: text}
	}

	var fields map[string]any
	if err := json.Unmarshal(candidate, &fields); err != nil || fields == nil {
		return RawTextOutcome{Text: text}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, candidate); err != nil {
		return RawTextOutcome{Text: text}
	}
	return StructuredOutcome{Fields: fields, raw: compact.Bytes()}
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// drop the info string, e.g. ```json
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.HasPrefix(strings.TrimSpace(s[:i]), "{") {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
