// Package runner executes extraction jobs. It drives a job's URL list
// against the fetcher and extractor with bounded concurrency, records one
// outcome per URL regardless of individual failures, and marks the job
// completed once every URL has been attempted.
package runner

import (
	"context"
	"errors"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/fwojciec/harvest"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds per-URL extraction workers within one job.
// Kept low so a batch never hammers target servers.
const DefaultConcurrency = 3

// DefaultTimeout is the per-URL extraction timeout.
const DefaultTimeout = 30 * time.Second

// ReasonNoContent is the failure reason recorded when extraction succeeds
// but yields no content. Empty extraction is a failure, not a success with
// zero metrics.
const ReasonNoContent = "no content extracted"

// ReasonTimeout is the failure reason recorded when a per-URL deadline
// expires.
const ReasonTimeout = "timeout"

// Compile-time interface verification.
var _ harvest.JobRunner = (*Runner)(nil)

// Runner orchestrates the execution of one job at a time. It is safe to
// share a Runner between callers; each Run owns its job exclusively.
type Runner struct {
	Jobs        harvest.JobService
	Fetcher     harvest.Fetcher
	Extractor   harvest.Extractor
	RateLimiter harvest.DomainLimiter
	Concurrency int
	Timeout     time.Duration
}

// ProgressEvent reports progress during a job run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Err       error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

// Run implements harvest.JobRunner.
func (r *Runner) Run(ctx context.Context, label string, urls []string) (*harvest.Job, []*harvest.Outcome, error) {
	return r.RunWithProgress(ctx, label, urls, nil)
}

// RunWithProgress executes a job, reporting per-URL progress through the
// optional callback. URLs are deduplicated preserving order so exactly one
// outcome exists per URL. Per-URL failures never abort the run; only an
// unavailable store does, in which case the job is left in its last durable
// state and never marked completed.
func (r *Runner) RunWithProgress(ctx context.Context, label string, urls []string, progress ProgressFunc) (*harvest.Job, []*harvest.Outcome, error) {
	urls = dedupe(urls)
	if len(urls) == 0 {
		return nil, nil, harvest.Errorf(harvest.EINVALID, "job requires at least one URL")
	}

	job := &harvest.Job{
		Label:     label,
		TotalURLs: len(urls),
	}
	if err := r.Jobs.CreateJob(ctx, job); err != nil {
		return nil, nil, err
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	total := len(urls)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	outcomes := make([]*harvest.Outcome, total)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			outcome := r.processURL(gctx, job.ID, u, timeout)

			// A store failure is the one error that aborts the run:
			// losing an outcome silently would corrupt the job's
			// progress accounting.
			if err := r.Jobs.RecordOutcome(gctx, outcome); err != nil {
				return err
			}
			outcomes[i] = outcome

			done := int(completed.Add(1))
			if progress != nil {
				event := ProgressEvent{
					Type:      ProgressCompleted,
					Completed: done,
					Total:     total,
					URL:       u,
				}
				if outcome.Status == harvest.OutcomeFailure {
					event.Type = ProgressFailed
					event.Err = errors.New(outcome.FailureReason)
				}
				progress(event)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if err := r.Jobs.CompleteJob(ctx, job.ID); err != nil {
		return nil, nil, err
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	final, err := r.Jobs.FindJobByID(ctx, job.ID)
	if err != nil {
		return nil, nil, err
	}

	return final, outcomes, nil
}

// processURL attempts extraction for a single URL and always returns an
// outcome, absorbing extraction errors into failure outcomes.
func (r *Runner) processURL(ctx context.Context, jobID, rawURL string, timeout time.Duration) *harvest.Outcome {
	if r.RateLimiter != nil {
		if u, err := url.Parse(rawURL); err == nil {
			if err := r.RateLimiter.Wait(ctx, u.Host); err != nil {
				return harvest.FailureOutcome(jobID, rawURL, err.Error())
			}
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	html, err := r.Fetcher.Fetch(fetchCtx, rawURL)
	if err != nil {
		return harvest.FailureOutcome(jobID, rawURL, failureReason(err))
	}

	extracted, err := r.Extractor.Extract(html, rawURL)
	if err != nil {
		return harvest.FailureOutcome(jobID, rawURL, failureReason(err))
	}
	if extracted.Text == "" {
		return harvest.FailureOutcome(jobID, rawURL, ReasonNoContent)
	}

	return harvest.SuccessOutcome(jobID, rawURL, extracted.Title, extracted.Text)
}

// failureReason stringifies an extraction error, normalizing deadline
// expiry to a stable reason.
func failureReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return err.Error()
}

// dedupe removes duplicate URLs preserving first-seen order.
func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	var out []string
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
