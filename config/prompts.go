package config

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const DefaultTransformPrompt = `Transform the following query into a more suitable format for a web search engine. Reply with the search query only.

Query: {{.Query}}`

const DefaultSynthesisPrompt = `
Query: {{.Query}}

Context from multiple sources:
{{.Context}}

Please analyze the above information and provide the answer for the query, and list any references if any.
Respond with a JSON object containing an "answer" string and a "references" array of source URLs.
`

// Prompts holds the templates sent to the LLM service.
type Prompts struct {
	Transform string `yaml:"transform"`
	Synthesis string `yaml:"synthesis"`

	transform *template.Template
	synthesis *template.Template
}

type PromptData struct {
	Query   string
	Context string
}

func DefaultPrompts() *Prompts {
	p, err := newPrompts(DefaultTransformPrompt, DefaultSynthesisPrompt)
	if err != nil {
		panic(err)
	}
	return p
}

// LoadPrompts reads prompt templates from a YAML file. Missing keys keep the
// built-in defaults. An empty path returns the defaults.
func LoadPrompts(path string) (*Prompts, error) {
	if path == "" {
		return DefaultPrompts(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var raw Prompts
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	if raw.Transform == "" {
		raw.Transform = DefaultTransformPrompt
	}
	if raw.Synthesis == "" {
		raw.Synthesis = DefaultSynthesisPrompt
	}

	return newPrompts(raw.Transform, raw.Synthesis)
}

func newPrompts(transform, synthesis string) (*Prompts, error) {
	tt, err := template.New("transform").Parse(transform)
	if err != nil {
		return nil, fmt.Errorf("invalid transform prompt: %w", err)
	}
	st, err := template.New("synthesis").Parse(synthesis)
	if err != nil {
		return nil, fmt.Errorf("invalid synthesis prompt: %w", err)
	}
	return &Prompts{
		Transform: transform,
		Synthesis: synthesis,
		transform: tt,
		synthesis: st,
	}, nil
}

func (p *Prompts) RenderTransform(query string) (string, error) {
	return render(p.transform, PromptData{Query: query})
}

func (p *Prompts) RenderSynthesis(query, context string) (string, error) {
	return render(p.synthesis, PromptData{Query: query, Context: context})
}

func render(t *template.Template, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
