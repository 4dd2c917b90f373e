// Package readability implements content extraction using go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements harvest.Extractor at compile time.
var _ harvest.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content as plain text.
func (e *Extractor) Extract(rawHTML, pageURL string) (*harvest.Extraction, error) {
	if rawHTML == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "empty HTML input")
	}

	var base *url.URL
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			base = u
		}
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), base)
	if err != nil {
		return nil, err
	}

	return &harvest.Extraction{
		Title: article.Title,
		Text:  strings.TrimSpace(article.TextContent),
	}, nil
}
