package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

var (
	ErrBadStatus = errors.New("unexpected status code")
	ErrNotHTML   = errors.New("content is not html")
)

// TextExtractor turns an HTML document into plain text.
type TextExtractor interface {
	ExtractText(body io.Reader, pageURL string) (string, error)
}

// Extractor fetches arbitrary pages and returns a bounded plain-text excerpt.
type Extractor struct {
	httpClient *http.Client
	strategy   TextExtractor
	config     *ExtractorConfig
	logger     *zap.Logger
}

func NewExtractor(httpClient *http.Client, strategy TextExtractor, config *ExtractorConfig, logger *zap.Logger) *Extractor {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if strategy == nil {
		strategy = NewSelectorExtractor()
	}
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		httpClient: httpClient,
		strategy:   strategy,
		config:     config,
		logger:     logger,
	}
}

// Extract fetches pageURL and extracts its readable text. Any failure is
// returned to the caller; the text is empty in that case.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.config.MaxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}

	return e.ExtractBody(body, resp.Header.Get("Content-Type"), pageURL)
}

// ExtractBody runs the configured strategy over an already fetched page.
func (e *Extractor) ExtractBody(body []byte, contentType, pageURL string) (string, error) {
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	if !isHTML(contentType) {
		return "", fmt.Errorf("%w: %s", ErrNotHTML, contentType)
	}

	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("failed to decode charset: %w", err)
	}

	text, err := e.strategy.ExtractText(reader, pageURL)
	if err != nil {
		return "", err
	}

	text, cut := Truncate(CollapseSpaces(text), e.config.MaxChars)
	e.logger.Debug("page_extracted",
		zap.String("url", pageURL),
		zap.Int("text_length", len(text)),
		zap.Bool("truncated", cut))

	return text, nil
}

func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

// SelectorExtractor strips non-content markup and concatenates headings and
// paragraphs of the primary content region in document order.
type SelectorExtractor struct {
	RemoveSelector  string
	RootSelectors   []string
	ContentSelector string
}

func NewSelectorExtractor() *SelectorExtractor {
	return &SelectorExtractor{
		RemoveSelector:  "script, style, nav, header, footer",
		RootSelectors:   []string{"main", "article", "body"},
		ContentSelector: "p, h1, h2, h3, h4, h5, h6",
	}
}

func (se *SelectorExtractor) ExtractText(body io.Reader, _ string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}

	doc.Find(se.RemoveSelector).Remove()

	var root *goquery.Selection
	for _, sel := range se.RootSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			root = s
			break
		}
	}
	if root == nil {
		return "", nil
	}

	var texts []string
	root.Find(se.ContentSelector).Each(func(_ int, s *goquery.Selection) {
		if text := CollapseSpaces(s.Text()); text != "" {
			texts = append(texts, text)
		}
	})

	return strings.Join(texts, " "), nil
}
