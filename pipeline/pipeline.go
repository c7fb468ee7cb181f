package pipeline

import (
	"context"
	"errors"
	"time"

	"verisearch/pkg/runctx"
	"verisearch/search"

	"go.uber.org/zap"
)

var ErrNoResults = errors.New("No search results found")

// CompositeResponse is the result of one pipeline run. Query is always the
// caller's original query.
type CompositeResponse struct {
	Query         string            `json:"query"`
	Timestamp     time.Time         `json:"timestamp"`
	SearchResults search.ResultSet  `json:"search_results"`
	Validation    ValidationOutcome `json:"validation"`
}

// Pipeline runs transform, retrieve and synthesize in sequence and caches
// completed responses by the original query.
type Pipeline struct {
	transformer Transformer
	retriever   search.Retriever
	synthesizer Synthesizer
	cache       Cache
	maxResults  int
	logger      *zap.Logger
	now         func() time.Time
}

// New builds a Pipeline. A nil transformer searches with the query as given,
// a nil cache gets a fresh MemoryCache.
func New(transformer Transformer, retriever search.Retriever, synthesizer Synthesizer, cache Cache, maxResults int, logger *zap.Logger) *Pipeline {
	if transformer == nil {
		transformer = identityTransformer{}
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		transformer: transformer,
		retriever:   retriever,
		synthesizer: synthesizer,
		cache:       cache,
		maxResults:  maxResults,
		logger:      logger,
		now:         time.Now,
	}
}

// Run answers query. ErrNoResults is the only error returned; every other
// stage failure degrades and the run continues.
func (p *Pipeline) Run(ctx context.Context, query string) (CompositeResponse, error) {
	if runctx.RunID(ctx) == "" {
		ctx = runctx.WithRunID(ctx, runctx.NewRunID())
	}
	ctx = runctx.WithQuery(ctx, query)
	logger := runctx.Logger(ctx, p.logger)

	if cached, ok := p.cache.Get(query); ok {
		logger.Info("using_cached_results")
		return cached, nil
	}

	searchQuery, err := p.transformer.Transform(ctx, query)
	if err != nil || searchQuery == "" {
		logger.Warn("query_transform_failed", zap.Error(err))
		searchQuery = query
	} else if searchQuery != query {
		logger.Info("query_transformed", zap.String("search_query", searchQuery))
	}

	results, err := p.retriever.Retrieve(ctx, searchQuery, p.maxResults)
	if err != nil {
		logger.Warn("retrieval_failed", zap.String("search_query", searchQuery), zap.Error(err))
		results = nil
	}
	if len(results) == 0 {
		logger.Warn("no_search_results", zap.String("search_query", searchQuery))
		return CompositeResponse{}, ErrNoResults
	}
	if len(results) > p.maxResults && p.maxResults > 0 {
		results = results[:p.maxResults]
	}

	validation := p.synthesizer.Synthesize(ctx, query, results)

	resp := CompositeResponse{
		Query:         query,
		Timestamp:     p.now(),
		SearchResults: results,
		Validation:    validation,
	}
	p.cache.Put(query, resp)

	logger.Info("pipeline_completed",
		zap.Int("result_count", len(results)),
		zap.String("outcome", outcomeKind(validation)))

	return resp, nil
}

func outcomeKind(o ValidationOutcome) string {
	switch o.(type) {
	case StructuredOutcome:
		return "structured"
	case RawTextOutcome:
		return "raw_text"
	case FailureOutcome:
		return "failure"
	default:
		return "unknown"
	}
}
