package crawler

import (
	"fmt"
	"io"
	"net/url"

	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
)

type ReadabilityExtractor struct{}

func NewReadabilityExtractor() *ReadabilityExtractor {
	return &ReadabilityExtractor{}
}

func (re *ReadabilityExtractor) ExtractText(body io.Reader, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("readability: failed to parse URL: %w", err)
	}

	article, err := readability.FromReader(body, parsedURL)
	if err != nil {
		return "", fmt.Errorf("readability: extraction failed: %w", err)
	}

	return article.TextContent, nil
}

type TrafilaturaExtractor struct{}

func NewTrafilaturaExtractor() *TrafilaturaExtractor {
	return &TrafilaturaExtractor{}
}

func (te *TrafilaturaExtractor) ExtractText(body io.Reader, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("trafilatura: failed to parse URL: %w", err)
	}

	result, err := trafilatura.Extract(body, trafilatura.Options{
		OriginalURL: parsedURL,
	})
	if err != nil {
		return "", fmt.Errorf("trafilatura: extraction failed: %w", err)
	}
	if result == nil {
		return "", nil
	}

	return result.ContentText, nil
}

// NewStrategy maps a configured strategy name to its TextExtractor.
func NewStrategy(name string) (TextExtractor, error) {
	switch name {
	case "", "selector":
		return NewSelectorExtractor(), nil
	case "readability":
		return NewReadabilityExtractor(), nil
	case "trafilatura":
		return NewTrafilaturaExtractor(), nil
	default:
		return nil, fmt.Errorf("unsupported extract strategy %q", name)
	}
}
