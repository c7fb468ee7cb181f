package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"verisearch/config"
)

var ErrEmptyCompletion = errors.New("Empty response from LLM service")

type CompletionRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer sends a single user prompt to a chat completion endpoint and
// returns the first choice's text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// NewCompleter builds the completer selected by cfg.Backend. Both backends
// talk to an OpenAI compatible API at cfg.BaseURL.
func NewCompleter(cfg config.LLMConfig, httpClient *http.Client) (Completer, error) {
	switch cfg.Backend {
	case config.BackendLangchain, "":
		return NewLangchainClient(cfg, httpClient)
	case config.BackendOpenAI:
		return NewOpenAIClient(cfg, httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported llm backend %q", cfg.Backend)
	}
}
