package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"verisearch/client"
	"verisearch/config"
	"verisearch/crawler"
	"verisearch/pkg/runctx"
	"verisearch/search"

	"go.uber.org/zap"
)

const noResultsToAnalyze = "No valid search results to analyze"

type Synthesizer interface {
	Synthesize(ctx context.Context, query string, results search.ResultSet) ValidationOutcome
}

type SynthesizerConfig struct {
	Temperature  float64
	MaxTokens    int
	ContextChars int
}

// LLMSynthesizer asks the LLM service to answer a query from retrieved
// results. Service failures are reported inside the returned outcome.
type LLMSynthesizer struct {
	completer client.Completer
	prompts   *config.Prompts
	config    SynthesizerConfig
	logger    *zap.Logger
}

func NewLLMSynthesizer(completer client.Completer, prompts *config.Prompts, cfg SynthesizerConfig, logger *zap.Logger) *LLMSynthesizer {
	if prompts == nil {
		prompts = config.DefaultPrompts()
	}
	if cfg.ContextChars <= 0 {
		cfg.ContextChars = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMSynthesizer{
		completer: completer,
		prompts:   prompts,
		config:    cfg,
		logger:    logger,
	}
}

func (s *LLMSynthesizer) Synthesize(ctx context.Context, query string, results search.ResultSet) ValidationOutcome {
	if len(results) == 0 {
		return NewFailureOutcome(noResultsToAnalyze)
	}
	logger := runctx.Logger(ctx, s.logger)

	prompt, err := s.prompts.RenderSynthesis(query, BuildContext(results, s.config.ContextChars))
	if err != nil {
		logger.Error("synthesis_prompt_failed", zap.Error(err))
		return NewFailureOutcome(err.Error())
	}

	text, err := s.completer.Complete(ctx, client.CompletionRequest{
		Prompt:      prompt,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if errors.Is(err, client.ErrEmptyCompletion) {
		logger.Warn("synthesis_empty_response")
		return NewFailureOutcome(client.ErrEmptyCompletion.Error())
	}
	if err != nil {
		logger.Warn("synthesis_failed", zap.Error(err))
		return NewFailureOutcome(err.Error())
	}

	outcome := ParseOutcome(text)
	if _, ok := outcome.(RawTextOutcome); ok {
		logger.Debug("synthesis_not_structured", zap.Int("response_length", len(text)))
	}
	return outcome
}

// BuildContext renders one numbered block per result for the synthesis prompt.
func BuildContext(results search.ResultSet, descChars int) string {
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		desc, _ := crawler.Truncate(r.Description, descChars)
		blocks = append(blocks, fmt.Sprintf("Source %d (%s):\nTitle: %s\nDescription: %s...", i+1, r.URL, r.Title, desc))
	}
	return strings.Join(blocks, "\n")
}
