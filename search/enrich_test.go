package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"verisearch/crawler"
	"verisearch/pkg/runctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newPageServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func resultsFor(base string, paths ...string) ResultSet {
	rs := make(ResultSet, 0, len(paths))
	for _, p := range paths {
		rs = append(rs, SearchResult{
			URL:         base + p,
			Title:       "title " + p,
			Description: "snippet " + p,
			Timestamp:   fixedTime,
		})
	}
	return rs
}

func TestEnricherKeepsOrderAndTruncates(t *testing.T) {
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			time.Sleep(50 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<body><p>%s %s</p></body>", r.URL.Path, strings.Repeat("x", 300))
	})

	e := NewEnricher(crawler.NewExtractor(nil, nil, nil, nil), EnricherConfig{
		UserAgent:    "ua",
		Timeout:      time.Second,
		Parallelism:  3,
		ExcerptChars: 20,
	}, nil, nil)

	in := resultsFor(srv.URL, "/slow", "/fast", "/other")
	out := e.Enrich(context.Background(), in)

	require.Len(t, out, 3)
	assert.True(t, strings.HasPrefix(out[0].Description, "/slow xxxx"))
	assert.True(t, strings.HasPrefix(out[1].Description, "/fast xxxx"))
	assert.True(t, strings.HasPrefix(out[2].Description, "/other xxx"))
	for _, r := range out {
		assert.Equal(t, 23, len(r.Description))
		assert.True(t, strings.HasSuffix(r.Description, "..."))
		assert.True(t, r.Timestamp.After(fixedTime))
	}

	// input is not modified
	assert.Equal(t, "snippet /slow", in[0].Description)
}

func TestEnricherFallsBackToSnippet(t *testing.T) {
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4"))
		default:
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<body><p>short page</p></body>")
		}
	})

	e := NewEnricher(crawler.NewExtractor(nil, nil, nil, nil), EnricherConfig{
		UserAgent:    "ua",
		Timeout:      time.Second,
		ExcerptChars: 150,
	}, nil, nil)

	out := e.Enrich(context.Background(), resultsFor(srv.URL, "/missing", "/pdf", "/ok"))

	require.Len(t, out, 3)
	assert.Equal(t, "snippet /missing", out[0].Description)
	assert.Equal(t, "snippet /pdf", out[1].Description)
	assert.Equal(t, "short page", out[2].Description)
}

func TestEnricherPacesRequestsPerHost(t *testing.T) {
	var mu sync.Mutex
	var hits []time.Time
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, time.Now())
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<body><p>page</p></body>")
	})

	const delay = 80 * time.Millisecond
	e := NewEnricher(crawler.NewExtractor(nil, nil, nil, nil), EnricherConfig{
		UserAgent:    "ua",
		Timeout:      time.Second,
		Delay:        delay,
		Parallelism:  4,
		ExcerptChars: 150,
	}, nil, nil)

	e.Enrich(context.Background(), resultsFor(srv.URL, "/a", "/b", "/c"))

	require.Len(t, hits, 3)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i].Sub(hits[i-1]), delay-5*time.Millisecond)
	}
}

func TestEnricherParallelAcrossHosts(t *testing.T) {
	var inFlight, peak int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<body><p>page</p></body>")
	}
	a := newPageServer(t, handler)
	b := newPageServer(t, handler)

	e := NewEnricher(crawler.NewExtractor(nil, nil, nil, nil), EnricherConfig{
		UserAgent:    "ua",
		Timeout:      time.Second,
		Parallelism:  2,
		ExcerptChars: 150,
	}, nil, nil)

	in := append(resultsFor(a.URL, "/1"), resultsFor(b.URL, "/2")...)
	out := e.Enrich(context.Background(), in)

	assert.Equal(t, "page", out[0].Description)
	assert.Equal(t, "page", out[1].Description)
	assert.Equal(t, int32(2), atomic.LoadInt32(&peak))
}

func TestEnricherEmpty(t *testing.T) {
	e := NewEnricher(crawler.NewExtractor(nil, nil, nil, nil), EnricherConfig{}, nil, nil)
	assert.Empty(t, e.Enrich(context.Background(), nil))
}

func TestDecodedContentType(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", decodedContentType("text/html; charset=ISO-8859-1"))
	assert.Equal(t, "text/html", decodedContentType("text/html"))
	assert.Equal(t, "", decodedContentType(""))
}

func TestEnricherLogsCarryRunID(t *testing.T) {
	srv := newPageServer(t, http.NotFound)
	core, logs := observer.New(zap.WarnLevel)

	e := NewEnricher(crawler.NewExtractor(nil, nil, nil, nil), EnricherConfig{
		UserAgent:    "ua",
		Timeout:      time.Second,
		ExcerptChars: 150,
	}, nil, zap.New(core))

	ctx := runctx.WithRunID(context.Background(), "run-42")
	out := e.Enrich(ctx, resultsFor(srv.URL, "/gone"))
	assert.Equal(t, "snippet /gone", out[0].Description)

	failures := logs.FilterMessage("page_fetch_failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "run-42", failures[0].ContextMap()["run_id"])
	assert.Equal(t, int64(http.StatusNotFound), failures[0].ContextMap()["status_code"])
}
