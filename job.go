package harvest

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

// JobStatus represents the lifecycle state of a Job.
type JobStatus string

// Job lifecycle states. A job is completed regardless of how many of its
// URLs failed; failure is tracked per Outcome, not per Job.
const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
)

// Job represents one execution of extraction over an ordered list of URLs,
// submitted ad hoc or spawned by a recurring task.
type Job struct {
	ID            string     `json:"id"`
	Label         string     `json:"label"`
	TotalURLs     int        `json:"totalUrls"`
	CompletedURLs int        `json:"completedUrls"`
	Status        JobStatus  `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt"`
}

// Validate returns an error if the job contains invalid fields.
func (j *Job) Validate() error {
	if j.Label == "" {
		return Errorf(EINVALID, "job label required")
	}
	if j.TotalURLs < 1 {
		return Errorf(EINVALID, "job requires at least one URL")
	}
	return nil
}

// OutcomeStatus represents the result of extracting a single URL.
type OutcomeStatus string

// Outcome statuses.
const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
)

// Outcome records the result of attempting extraction for one URL within a
// job. Exactly one outcome exists per URL per job execution, and outcomes
// are immutable once recorded.
type Outcome struct {
	ID            string        `json:"id"`
	JobID         string        `json:"jobId"`
	URL           string        `json:"url"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	ContentHash   string        `json:"contentHash"`
	WordCount     int           `json:"wordCount"`
	CharCount     int           `json:"charCount"`
	Status        OutcomeStatus `json:"status"`
	FailureReason string        `json:"failureReason"`
	ScrapedAt     time.Time     `json:"scrapedAt"`
}

// Validate returns an error if the outcome contains invalid fields.
// Content and failure reason are mutually exclusive: a success carries
// non-empty content and no reason, a failure carries a reason and no content.
func (o *Outcome) Validate() error {
	if o.JobID == "" {
		return Errorf(EINVALID, "outcome job ID required")
	}
	if o.URL == "" {
		return Errorf(EINVALID, "outcome URL required")
	}
	switch o.Status {
	case OutcomeSuccess:
		if o.Content == "" {
			return Errorf(EINVALID, "success outcome requires content")
		}
		if o.FailureReason != "" {
			return Errorf(EINVALID, "success outcome cannot carry a failure reason")
		}
	case OutcomeFailure:
		if o.FailureReason == "" {
			return Errorf(EINVALID, "failure outcome requires a reason")
		}
		if o.Content != "" {
			return Errorf(EINVALID, "failure outcome cannot carry content")
		}
	default:
		return Errorf(EINVALID, "invalid outcome status %q", o.Status)
	}
	return nil
}

// SuccessOutcome builds a success outcome for a URL, computing word and
// character counts from the extracted content. Word count is the number of
// whitespace-delimited tokens; character count is the number of runes.
func SuccessOutcome(jobID, url, title, content string) *Outcome {
	return &Outcome{
		JobID:     jobID,
		URL:       url,
		Title:     title,
		Content:   content,
		WordCount: len(strings.Fields(content)),
		CharCount: utf8.RuneCountInString(content),
		Status:    OutcomeSuccess,
	}
}

// FailureOutcome builds a failure outcome for a URL.
func FailureOutcome(jobID, url, reason string) *Outcome {
	return &Outcome{
		JobID:         jobID,
		URL:           url,
		Status:        OutcomeFailure,
		FailureReason: reason,
	}
}

// JobFilter represents a filter for FindJobs.
type JobFilter struct {
	ID     *string    `json:"id"`
	Status *JobStatus `json:"status"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// OutcomeFilter represents a filter for FindOutcomes. Search matches a
// case-insensitive substring against URL, title and content.
type OutcomeFilter struct {
	JobID  *string        `json:"jobId"`
	Status *OutcomeStatus `json:"status"`
	Search *string        `json:"search"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// JobService represents the durable result store for jobs and their
// per-URL outcomes.
type JobService interface {
	// CreateJob allocates a new job in status running with a zero
	// completed count.
	CreateJob(ctx context.Context, job *Job) error

	// RecordOutcome appends an outcome and atomically increments the
	// owning job's completed count. Safe to call concurrently from
	// multiple workers finishing URLs of the same job.
	RecordOutcome(ctx context.Context, outcome *Outcome) error

	// CompleteJob transitions a job to completed and sets its completion
	// time. Idempotent: completing an already-completed job is a no-op.
	// Returns ENOTFOUND if the job does not exist.
	CompleteJob(ctx context.Context, id string) error

	// FindJobByID retrieves a job by ID.
	// Returns ENOTFOUND if the job does not exist.
	FindJobByID(ctx context.Context, id string) (*Job, error)

	// FindJobs retrieves jobs matching the filter, most recent first.
	FindJobs(ctx context.Context, filter JobFilter) ([]*Job, error)

	// FindOutcomes retrieves outcomes matching the filter.
	FindOutcomes(ctx context.Context, filter OutcomeFilter) ([]*Outcome, error)

	// DeleteJob permanently removes a job and all its outcomes.
	// Returns ENOTFOUND if the job does not exist.
	DeleteJob(ctx context.Context, id string) error
}

// JobRunner executes one job against the content extractor, driving it to
// completion and recording per-URL outcomes. Per-URL failures never abort
// the job; the returned error reports only conditions outside normal
// operation, such as an unavailable store.
type JobRunner interface {
	Run(ctx context.Context, label string, urls []string) (*Job, []*Outcome, error)
}
