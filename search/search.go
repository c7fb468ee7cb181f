package search

import (
	"context"
	"errors"
	"time"
)

var ErrBadStatus = errors.New("search engine returned unexpected status")

type SearchResult struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// ResultSet is ordered by engine ranking.
type ResultSet []SearchResult

// Retriever turns a search query into at most maxResults ranked results.
type Retriever interface {
	Retrieve(ctx context.Context, query string, maxResults int) (ResultSet, error)
}

// Fetcher downloads a results page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}
