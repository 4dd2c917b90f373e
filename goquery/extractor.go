// Package goquery implements a simple DOM-based content extractor.
//
// It is a deterministic fallback for pages where heuristic extractors
// return nothing: boilerplate elements are stripped and the remaining
// body text is collapsed into whitespace-normalized plain text.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/harvest"
)

// boilerplateSelector matches elements that never carry article text.
const boilerplateSelector = "script, style, noscript, template, nav, header, footer, aside"

// Ensure Extractor implements harvest.Extractor at compile time.
var _ harvest.Extractor = (*Extractor)(nil)

// Extractor extracts visible body text from HTML using CSS selectors.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract strips boilerplate elements and returns the remaining body text.
func (e *Extractor) Extract(rawHTML, pageURL string) (*harvest.Extraction, error) {
	if rawHTML == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "failed to parse HTML: %v", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find(boilerplateSelector).Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	return &harvest.Extraction{
		Title: title,
		Text:  collapseWhitespace(body.Text()),
	}, nil
}

// collapseWhitespace joins all whitespace runs into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
