package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"verisearch/crawler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLRetrieverSnippetMode(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, resultsPage)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(srv.Client(), "test-browser/1.0", time.Second)
	retriever := NewHTMLRetriever(srv.URL+"/search", fetcher, NewParser(BingPattern, 0, fixedNow), nil, nil)

	results, err := retriever.Retrieve(context.Background(), "capital of France", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "capital of France", gotQuery)
	assert.Equal(t, "test-browser/1.0", gotUA)
	assert.Equal(t, "Paris is the capital and largest city of France.", results[0].Description)
}

func TestHTMLRetrieverEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	retriever := NewHTMLRetriever(srv.URL, NewHTTPFetcher(srv.Client(), "ua", time.Second), nil, nil, nil)

	results, err := retriever.Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHTMLRetrieverBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	retriever := NewHTMLRetriever(srv.URL, NewHTTPFetcher(srv.Client(), "ua", time.Second), nil, nil, nil)

	results, err := retriever.Retrieve(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadStatus))
	assert.Empty(t, results)
}

func TestHTMLRetrieverInvalidSearchURL(t *testing.T) {
	retriever := NewHTMLRetriever("://bad", NewHTTPFetcher(nil, "ua", time.Second), nil, nil, nil)

	_, err := retriever.Retrieve(context.Background(), "q", 5)
	require.Error(t, err)
}

func TestHTMLRetrieverEnrichedMode(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><main><p>Full article at %s</p></main></body></html>", r.URL.Path)
	}))
	defer pages.Close()

	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<ol>
<li class="b_algo"><h2><a href="%[1]s/one">One</a></h2><p>snippet one</p></li>
<li class="b_algo"><h2><a href="%[1]s/two">Two</a></h2><p>snippet two</p></li>
</ol>`, pages.URL)
	}))
	defer engine.Close()

	extractor := crawler.NewExtractor(nil, nil, nil, nil)
	enricher := NewEnricher(extractor, EnricherConfig{UserAgent: "ua", Timeout: time.Second, ExcerptChars: 150}, nil, nil)
	retriever := NewHTMLRetriever(engine.URL, NewHTTPFetcher(engine.Client(), "ua", time.Second), nil, enricher, nil)

	results, err := retriever.Retrieve(context.Background(), "numbers", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Full article at /one", results[0].Description)
	assert.Equal(t, "Full article at /two", results[1].Description)
}
