package main

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"verisearch/client"
	"verisearch/config"
	"verisearch/crawler"
	"verisearch/pipeline"
	"verisearch/search"

	"go.uber.org/zap"
)

type app struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
}

func newApp(path string, logger *zap.Logger) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	prompts, err := config.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		return nil, err
	}

	httpClient, httpTransport, err := NewHttpClient(cfg.ProxyURL)
	if err != nil {
		return nil, err
	}

	retriever, err := newRetriever(cfg, httpClient, httpTransport, logger)
	if err != nil {
		return nil, err
	}

	completer, err := client.NewCompleter(cfg.LLM, httpClient)
	if err != nil {
		return nil, err
	}

	var transformer pipeline.Transformer
	if cfg.LLM.QueryTransform {
		transformer = pipeline.NewLLMTransformer(completer, prompts, pipeline.TransformerConfig{
			Temperature: cfg.LLM.TransformTemperature,
			MaxTokens:   cfg.LLM.TransformMaxTokens,
		})
	}

	synthesizer := pipeline.NewLLMSynthesizer(completer, prompts, pipeline.SynthesizerConfig{
		Temperature:  cfg.LLM.SynthTemperature,
		MaxTokens:    cfg.LLM.SynthMaxTokens,
		ContextChars: cfg.LLM.ContextChars,
	}, logger)

	p := pipeline.New(transformer, retriever, synthesizer, pipeline.NewMemoryCache(), cfg.Search.MaxResults, logger)
	return &app{cfg: cfg, pipeline: p}, nil
}

func newRetriever(cfg *config.Config, httpClient *http.Client, transport http.RoundTripper, logger *zap.Logger) (*search.HTMLRetriever, error) {
	var fetcher search.Fetcher
	switch cfg.Search.Fetcher {
	case config.FetcherBrowser:
		fetcher = search.NewBrowserFetcher(logger, cfg.Search.UserAgent, cfg.ProxyURL, cfg.Search.Timeout)
	default:
		fetcher = search.NewHTTPFetcher(httpClient, cfg.Search.UserAgent, cfg.Search.Timeout)
	}

	var enricher *search.Enricher
	if cfg.Search.Mode == config.SearchModeEnriched {
		extractor, err := newExtractor(cfg, httpClient, logger)
		if err != nil {
			return nil, err
		}
		enricher = search.NewEnricher(extractor, search.EnricherConfig{
			UserAgent:    cfg.Search.UserAgent,
			Timeout:      cfg.Extractor.Timeout,
			Delay:        cfg.Search.CrawlDelay,
			Parallelism:  cfg.Search.CrawlParallelism,
			ExcerptChars: cfg.Search.ExcerptChars,
		}, transport, logger)
	}

	return search.NewHTMLRetriever(cfg.Search.URL, fetcher, search.NewParser(search.BingPattern, cfg.Search.ExcerptChars, time.Now), enricher, logger), nil
}

// newExtractor builds the page extractor. The enricher only uses its body
// extraction; Extract fetches through httpClient.
func newExtractor(cfg *config.Config, httpClient *http.Client, logger *zap.Logger) (*crawler.Extractor, error) {
	strategy, err := crawler.NewStrategy(cfg.Extractor.Strategy)
	if err != nil {
		return nil, err
	}
	extractorConfig := crawler.DefaultConfig()
	extractorConfig.Timeout = cfg.Extractor.Timeout
	extractorConfig.UserAgent = cfg.Search.UserAgent
	extractorConfig.MaxChars = cfg.Extractor.MaxChars

	return crawler.NewExtractor(httpClient, strategy, extractorConfig, logger), nil
}

// NewHttpClient returns the client shared by every outbound call. Per-call
// timeouts are applied by the callers.
func NewHttpClient(proxyUrl string) (*http.Client, *http.Transport, error) {
	proxy := http.ProxyFromEnvironment
	if proxyUrl != "" {
		proxyURL, err := url.Parse(proxyUrl)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		proxy = http.ProxyURL(proxyURL)
	}

	transport := &http.Transport{
		Proxy:                 proxy,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: 120 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}

	return client, transport, nil
}
