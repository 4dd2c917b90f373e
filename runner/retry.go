package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Compile-time interface verification.
var _ harvest.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher wraps a Fetcher with exponential backoff retries. A fetch
// is attempted once plus once per delay; the last error is returned when
// every attempt fails.
type RetryFetcher struct {
	next   harvest.Fetcher
	delays []time.Duration
	logger *slog.Logger
}

// NewRetryFetcher creates a RetryFetcher with the default delays.
func NewRetryFetcher(next harvest.Fetcher, logger *slog.Logger) *RetryFetcher {
	return NewRetryFetcherWithDelays(next, logger, DefaultRetryDelays())
}

// NewRetryFetcherWithDelays is like NewRetryFetcher with configurable
// delays, useful for testing without waiting for real backoff.
func NewRetryFetcherWithDelays(next harvest.Fetcher, logger *slog.Logger, delays []time.Duration) *RetryFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryFetcher{next: next, delays: delays, logger: logger}
}

// Fetch retrieves the URL, retrying transient failures with backoff.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	maxAttempts := len(f.delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := f.next.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		f.logger.Warn("retrying fetch", "url", url, "attempt", attempt+2, "err", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delays[attempt]):
		}
	}

	return "", lastErr
}

// Close delegates to the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.next.Close()
}
