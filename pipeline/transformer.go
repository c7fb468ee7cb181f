package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"verisearch/client"
	"verisearch/config"
)

var errEmptyTransform = errors.New("transformed query is empty")

// Transformer rewrites a user query into a search engine friendly form.
type Transformer interface {
	Transform(ctx context.Context, query string) (string, error)
}

type TransformerConfig struct {
	Temperature float64
	MaxTokens   int
}

type LLMTransformer struct {
	completer client.Completer
	prompts   *config.Prompts
	config    TransformerConfig
}

func NewLLMTransformer(completer client.Completer, prompts *config.Prompts, cfg TransformerConfig) *LLMTransformer {
	if prompts == nil {
		prompts = config.DefaultPrompts()
	}
	return &LLMTransformer{completer: completer, prompts: prompts, config: cfg}
}

func (t *LLMTransformer) Transform(ctx context.Context, query string) (string, error) {
	prompt, err := t.prompts.RenderTransform(query)
	if err != nil {
		return "", fmt.Errorf("failed to render transform prompt: %w", err)
	}

	text, err := t.completer.Complete(ctx, client.CompletionRequest{
		Prompt:      prompt,
		Temperature: t.config.Temperature,
		MaxTokens:   t.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to transform query: %w", err)
	}

	transformed := cleanTransformed(text)
	if transformed == "" {
		return "", errEmptyTransform
	}
	return transformed, nil
}

func cleanTransformed(text string) string {
	s := strings.TrimSpace(text)
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}

// identityTransformer is used when query transformation is disabled.
type identityTransformer struct{}

func (identityTransformer) Transform(_ context.Context, query string) (string, error) {
	return query, nil
}
