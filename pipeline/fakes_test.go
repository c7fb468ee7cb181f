package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"verisearch/client"
	"verisearch/search"
)

type fakeCompleter struct {
	mu       sync.Mutex
	requests []client.CompletionRequest
	reply    func(req client.CompletionRequest) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, req client.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.reply(req)
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func replyWith(text string, err error) func(client.CompletionRequest) (string, error) {
	return func(client.CompletionRequest) (string, error) { return text, err }
}

type fakeTransformer struct {
	calls  atomic.Int32
	result string
	err    error
}

func (f *fakeTransformer) Transform(_ context.Context, query string) (string, error) {
	f.calls.Add(1)
	return f.result, f.err
}

type fakeRetriever struct {
	calls     atomic.Int32
	mu        sync.Mutex
	lastQuery string
	results   search.ResultSet
	err       error
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, maxResults int) (search.ResultSet, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastQuery = query
	f.mu.Unlock()
	if len(f.results) > maxResults {
		return f.results[:maxResults], f.err
	}
	return f.results, f.err
}

func (f *fakeRetriever) query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func parisResults() search.ResultSet {
	return search.ResultSet{
		{URL: "https://en.wikipedia.org/wiki/Paris", Title: "Paris - Wikipedia", Description: "Paris is the capital and largest city of France.", Timestamp: testTime},
		{URL: "https://www.britannica.com/place/Paris", Title: "Paris | Britannica", Description: "Paris, city and capital of France.", Timestamp: testTime},
		{URL: "https://www.france.fr/en/paris", Title: "Paris travel guide", Description: "Visit the French capital.", Timestamp: testTime},
	}
}
