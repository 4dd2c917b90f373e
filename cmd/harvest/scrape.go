package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/harvest"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	urls := c.URLs
	if c.Sitemap {
		expanded, err := expandSitemaps(deps.Ctx, deps.Sitemaps, c.URLs)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
			return err
		}
		urls = expanded
	}

	job, outcomes, err := deps.Runner.Run(deps.Ctx, c.Label, urls)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	var succeeded, failed int
	for _, o := range outcomes {
		if o.Status == harvest.OutcomeSuccess {
			succeeded++
		} else {
			failed++
		}
	}

	fmt.Fprintf(deps.Stdout, "Job %s completed: %d succeeded, %d failed (%d URLs)\n",
		job.ID, succeeded, failed, job.TotalURLs)
	for _, o := range outcomes {
		if o.Status == harvest.OutcomeSuccess {
			fmt.Fprintf(deps.Stdout, "  ok    %s  %q  %d words\n", o.URL, o.Title, o.WordCount)
		} else {
			fmt.Fprintf(deps.Stdout, "  fail  %s  %s\n", o.URL, o.FailureReason)
		}
	}

	return nil
}

// expandSitemaps replaces each sitemap URL with the page URLs it lists.
func expandSitemaps(ctx context.Context, source harvest.URLSource, sitemapURLs []string) ([]string, error) {
	var urls []string
	for _, s := range sitemapURLs {
		discovered, err := source.Discover(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("expanding sitemap %s: %w", s, err)
		}
		urls = append(urls, discovered...)
	}
	if len(urls) == 0 {
		return nil, harvest.Errorf(harvest.EINVALID, "sitemaps contained no URLs")
	}
	return urls, nil
}
