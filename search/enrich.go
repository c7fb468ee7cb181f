package search

import (
	"context"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"verisearch/crawler"
	"verisearch/pkg/runctx"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const indexKey = "result_index"

// BodyExtractor extracts readable text from an already downloaded page.
type BodyExtractor interface {
	ExtractBody(body []byte, contentType, pageURL string) (string, error)
}

type EnricherConfig struct {
	UserAgent    string
	Timeout      time.Duration
	Delay        time.Duration
	Parallelism  int
	ExcerptChars int
}

// Enricher replaces each result's snippet with an excerpt of its target page.
// Pages are fetched politely: with one worker every fetch waits Delay after the
// previous one, with more workers the delay is enforced per host.
type Enricher struct {
	extractor BodyExtractor
	config    EnricherConfig
	transport http.RoundTripper
	logger    *zap.Logger
	now       func() time.Time
}

func NewEnricher(extractor BodyExtractor, config EnricherConfig, transport http.RoundTripper, logger *zap.Logger) *Enricher {
	if config.Parallelism <= 0 {
		config.Parallelism = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		extractor: extractor,
		config:    config,
		transport: transport,
		logger:    logger,
		now:       time.Now,
	}
}

// Enrich returns a copy of results in the same order. A result whose page
// could not be fetched or yielded no text keeps its inline snippet.
func (e *Enricher) Enrich(ctx context.Context, results ResultSet) ResultSet {
	out := make(ResultSet, len(results))
	copy(out, results)
	if len(results) == 0 {
		return out
	}

	logger := runctx.Logger(ctx, e.logger)

	c, err := e.newCollector(ctx, results)
	if err != nil {
		logger.Error("collector_config_failed", zap.Error(err))
		return out
	}

	excerpts := make([]string, len(results))
	var mu sync.Mutex

	c.OnResponse(func(r *colly.Response) {
		idx, ok := r.Ctx.GetAny(indexKey).(int)
		if !ok {
			return
		}
		pageURL := r.Request.URL.String()
		text, err := e.extractor.ExtractBody(r.Body, decodedContentType(r.Headers.Get("Content-Type")), pageURL)
		if err != nil {
			logger.Warn("page_extraction_failed", zap.String("url", pageURL), zap.Error(err))
			return
		}
		mu.Lock()
		excerpts[idx] = text
		mu.Unlock()
	})

	c.OnError(func(r *colly.Response, err error) {
		pageURL := ""
		if r.Request != nil {
			pageURL = r.Request.URL.String()
		}
		logger.Warn("page_fetch_failed",
			zap.String("url", pageURL),
			zap.Int("status_code", r.StatusCode),
			zap.Error(err))
	})

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(e.config.Parallelism, len(results)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				cctx := colly.NewContext()
				cctx.Put(indexKey, i)
				if err := c.Request(http.MethodGet, results[i].URL, nil, cctx, nil); err != nil {
					logger.Debug("page_request_failed", zap.String("url", results[i].URL), zap.Error(err))
				}
			}
		}()
	}
	for i := range results {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i := range out {
		if excerpts[i] == "" {
			continue
		}
		desc, cut := crawler.Truncate(excerpts[i], e.config.ExcerptChars)
		if cut {
			desc += "..."
		}
		out[i].Description = desc
		out[i].Timestamp = e.now()
	}

	return out
}

func (e *Enricher) newCollector(ctx context.Context, results ResultSet) (*colly.Collector, error) {
	c := colly.NewCollector(
		colly.UserAgent(e.config.UserAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	if e.transport != nil {
		c.WithTransport(e.transport)
	}
	if e.config.Timeout > 0 {
		c.SetRequestTimeout(e.config.Timeout)
	}
	return c, c.Limits(e.limitRules(results))
}

func (e *Enricher) limitRules(results ResultSet) []*colly.LimitRule {
	if e.config.Parallelism == 1 {
		return []*colly.LimitRule{{DomainGlob: "*", Parallelism: 1, Delay: e.config.Delay}}
	}

	seen := make(map[string]struct{})
	var rules []*colly.LimitRule
	for _, r := range results {
		u, err := url.Parse(r.URL)
		if err != nil || u.Host == "" {
			continue
		}
		if _, ok := seen[u.Host]; ok {
			continue
		}
		seen[u.Host] = struct{}{}
		rules = append(rules, &colly.LimitRule{
			DomainRegexp: "^" + regexp.QuoteMeta(u.Host) + "$",
			Parallelism:  1,
			Delay:        e.config.Delay,
		})
	}
	return rules
}

// decodedContentType accounts for colly having already converted bodies that
// declare a non UTF-8 charset.
func decodedContentType(contentType string) string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	if _, ok := params["charset"]; ok {
		return mediaType + "; charset=utf-8"
	}
	return strings.TrimSpace(contentType)
}
