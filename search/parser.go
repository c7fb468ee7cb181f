package search

import (
	"fmt"
	"io"
	"strings"
	"time"

	"verisearch/crawler"

	"github.com/PuerkitoBio/goquery"
)

// ResultPattern locates organic results in an engine's HTML.
type ResultPattern struct {
	Item    string
	Title   string
	Link    string
	Snippet string
}

// BingPattern matches the organic result markup of www.bing.com.
var BingPattern = ResultPattern{
	Item:    "li.b_algo",
	Title:   "h2",
	Link:    "h2 a[href]",
	Snippet: "p",
}

// DefaultDescriptionChars bounds snippet descriptions when no limit is given.
const DefaultDescriptionChars = 150

type Parser struct {
	pattern   ResultPattern
	descChars int
	now       func() time.Time
}

func NewParser(pattern ResultPattern, descChars int, now func() time.Time) *Parser {
	if descChars <= 0 {
		descChars = DefaultDescriptionChars
	}
	if now == nil {
		now = time.Now
	}
	return &Parser{pattern: pattern, descChars: descChars, now: now}
}

// Parse returns up to maxResults entries in document order. Entries without a
// title or a target URL are skipped and do not count toward the limit.
func (p *Parser) Parse(body io.Reader, maxResults int) (ResultSet, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	results := make(ResultSet, 0, max(maxResults, 0))
	doc.Find(p.pattern.Item).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(results) >= maxResults {
			return false
		}

		title := crawler.CollapseSpaces(s.Find(p.pattern.Title).First().Text())
		link := p.link(s)
		if title == "" || link == "" {
			return true
		}

		results = append(results, SearchResult{
			URL:         link,
			Title:       title,
			Description: p.description(s),
			Timestamp:   p.now(),
		})
		return true
	})

	return results, nil
}

func (p *Parser) description(s *goquery.Selection) string {
	desc, cut := crawler.Truncate(crawler.CollapseSpaces(s.Find(p.pattern.Snippet).First().Text()), p.descChars)
	if cut {
		desc += "..."
	}
	return desc
}

func (p *Parser) link(s *goquery.Selection) string {
	href, ok := s.Find(p.pattern.Link).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		href, _ = s.Find("a[href]").First().Attr("href")
	}
	return strings.TrimSpace(href)
}
