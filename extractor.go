package harvest

import "context"

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch retrieves the page at url and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// Extraction holds the readable content extracted from a page.
type Extraction struct {
	// Title is the page title extracted from metadata.
	Title string

	// Text is the main content as plain text, boilerplate removed.
	// An empty Text means the page yielded no extractable content.
	Text string
}

// Extractor extracts readable text from HTML pages, removing boilerplate.
// Implementations are black-box heuristics (readability, trafilatura, plain
// DOM text); the job runner treats them uniformly.
type Extractor interface {
	// Extract processes raw HTML and returns the readable content.
	// The pageURL is used to resolve relative references in the page.
	Extract(html, pageURL string) (*Extraction, error)
}

// URLSource expands a seed location into a list of target URLs, e.g. by
// reading a sitemap.
type URLSource interface {
	Discover(ctx context.Context, sourceURL string) ([]string, error)
}

// DomainLimiter rate-limits requests per target domain so concurrent
// extraction never hammers a single server.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled before the wait completes.
	Wait(ctx context.Context, domain string) error
}
