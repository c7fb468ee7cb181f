package search

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"verisearch/pkg/runctx"

	"go.uber.org/zap"
)

// HTMLRetriever scrapes a search engine results page. With an Enricher set it
// runs in enriched mode, otherwise descriptions are the inline snippets.
type HTMLRetriever struct {
	searchURL string
	fetcher   Fetcher
	parser    *Parser
	enricher  *Enricher
	logger    *zap.Logger
}

func NewHTMLRetriever(searchURL string, fetcher Fetcher, parser *Parser, enricher *Enricher, logger *zap.Logger) *HTMLRetriever {
	if parser == nil {
		parser = NewParser(BingPattern, 0, time.Now)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLRetriever{
		searchURL: searchURL,
		fetcher:   fetcher,
		parser:    parser,
		enricher:  enricher,
		logger:    logger,
	}
}

func (r *HTMLRetriever) Retrieve(ctx context.Context, query string, maxResults int) (ResultSet, error) {
	logger := runctx.Logger(ctx, r.logger)

	searchURL, err := r.buildURL(query)
	if err != nil {
		return nil, err
	}

	body, err := r.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results page: %w", err)
	}

	results, err := r.parser.Parse(bytes.NewReader(body), maxResults)
	if err != nil {
		return nil, err
	}

	logger.Info("search_results_parsed",
		zap.String("search_query", query),
		zap.Int("count", len(results)),
		zap.Bool("enriched", r.enricher != nil))

	if len(results) == 0 {
		logger.Debug("empty_results_page", zap.Int("body_length", len(body)))
		return results, nil
	}

	if r.enricher != nil {
		results = r.enricher.Enrich(ctx, results)
	}

	return results, nil
}

func (r *HTMLRetriever) buildURL(query string) (string, error) {
	u, err := url.Parse(r.searchURL)
	if err != nil {
		return "", fmt.Errorf("invalid search url: %w", err)
	}
	params := u.Query()
	params.Set("q", query)
	u.RawQuery = params.Encode()
	return u.String(), nil
}
