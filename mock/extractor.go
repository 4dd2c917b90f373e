package mock

import "github.com/fwojciec/harvest"

var _ harvest.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of harvest.Extractor.
type Extractor struct {
	ExtractFn func(html, pageURL string) (*harvest.Extraction, error)
}

func (e *Extractor) Extract(html, pageURL string) (*harvest.Extraction, error) {
	return e.ExtractFn(html, pageURL)
}
