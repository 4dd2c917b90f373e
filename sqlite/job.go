package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/harvest"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ harvest.JobService = (*JobService)(nil)

// JobService implements harvest.JobService using SQLite.
type JobService struct {
	db *DB
}

// NewJobService creates a new JobService.
func NewJobService(db *DB) *JobService {
	return &JobService{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	b[0] = byte(h >> 56)
	b[1] = byte(h >> 48)
	b[2] = byte(h >> 40)
	b[3] = byte(h >> 32)
	b[4] = byte(h >> 24)
	b[5] = byte(h >> 16)
	b[6] = byte(h >> 8)
	b[7] = byte(h)
	return hex.EncodeToString(b)
}

// CreateJob allocates a new job in status running with a zero completed count.
func (s *JobService) CreateJob(ctx context.Context, job *harvest.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	job.ID = uuid.New().String()
	job.Status = harvest.JobRunning
	job.CompletedURLs = 0
	job.CreatedAt = time.Now().UTC()
	job.CompletedAt = nil

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, label, total_urls, completed_urls, status, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL)
	`, job.ID, job.Label, job.TotalURLs, job.CompletedURLs, string(job.Status),
		job.CreatedAt.Format(time.RFC3339))

	return storeErr("create job", err)
}

// RecordOutcome appends an outcome and increments the owning job's completed
// count. Both writes happen in one transaction so an outcome is never
// recorded without its progress increment, even with concurrent workers.
func (s *JobService) RecordOutcome(ctx context.Context, outcome *harvest.Outcome) error {
	if err := outcome.Validate(); err != nil {
		return err
	}

	outcome.ID = uuid.New().String()
	outcome.ScrapedAt = time.Now().UTC()
	if outcome.Status == harvest.OutcomeSuccess {
		outcome.ContentHash = hashContent(outcome.Content)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("record outcome", err)
	}
	defer tx.Rollback()

	// The increment doubles as the existence check: zero affected rows
	// means the job is gone, before the outcome insert can trip the
	// foreign key.
	result, err := tx.ExecContext(ctx, `
		UPDATE jobs SET completed_urls = completed_urls + 1 WHERE id = ?
	`, outcome.JobID)
	if err != nil {
		return storeErr("record outcome", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("record outcome", err)
	}
	if rows == 0 {
		return harvest.Errorf(harvest.ENOTFOUND, "job not found")
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO outcomes (id, job_id, url, title, content, content_hash, word_count, char_count, status, failure_reason, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, outcome.ID, outcome.JobID, outcome.URL, outcome.Title, outcome.Content,
		outcome.ContentHash, outcome.WordCount, outcome.CharCount,
		string(outcome.Status), outcome.FailureReason,
		outcome.ScrapedAt.Format(time.RFC3339)); err != nil {
		return storeErr("record outcome", err)
	}

	return storeErr("record outcome", tx.Commit())
}

// CompleteJob transitions a job to completed. Idempotent: a second call
// leaves the status and completion time unchanged.
func (s *JobService) CompleteJob(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = ?,
		    completed_at = COALESCE(completed_at, ?)
		WHERE id = ?
	`, string(harvest.JobCompleted), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return storeErr("complete job", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("complete job", err)
	}
	if rows == 0 {
		return harvest.Errorf(harvest.ENOTFOUND, "job not found")
	}

	return nil
}

// FindJobByID retrieves a job by ID.
func (s *JobService) FindJobByID(ctx context.Context, id string) (*harvest.Job, error) {
	var job harvest.Job
	var status, createdAt string
	var completedAt *string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, label, total_urls, completed_urls, status, created_at, completed_at
		FROM jobs
		WHERE id = ?
	`, id).Scan(&job.ID, &job.Label, &job.TotalURLs, &job.CompletedURLs, &status,
		&createdAt, &completedAt)

	if err == sql.ErrNoRows {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "job not found")
	}
	if err != nil {
		return nil, storeErr("find job", err)
	}

	job.Status = harvest.JobStatus(status)
	if job.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if job.CompletedAt, err = parseNullableRFC3339(completedAt, "completed_at"); err != nil {
		return nil, err
	}

	return &job, nil
}

// FindJobs retrieves jobs matching the filter, most recent first.
func (s *JobService) FindJobs(ctx context.Context, filter harvest.JobFilter) ([]*harvest.Job, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, label, total_urls, completed_urls, status, created_at, completed_at FROM jobs WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, storeErr("find jobs", err)
	}
	defer rows.Close()

	var jobs []*harvest.Job
	for rows.Next() {
		var job harvest.Job
		var status, createdAt string
		var completedAt *string

		if err := rows.Scan(&job.ID, &job.Label, &job.TotalURLs, &job.CompletedURLs,
			&status, &createdAt, &completedAt); err != nil {
			return nil, storeErr("find jobs", err)
		}

		job.Status = harvest.JobStatus(status)
		if job.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if job.CompletedAt, err = parseNullableRFC3339(completedAt, "completed_at"); err != nil {
			return nil, err
		}

		jobs = append(jobs, &job)
	}

	return jobs, storeErr("find jobs", rows.Err())
}

// FindOutcomes retrieves outcomes matching the filter. Search matches a
// case-insensitive substring against URL, title and content.
func (s *JobService) FindOutcomes(ctx context.Context, filter harvest.OutcomeFilter) ([]*harvest.Outcome, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT id, job_id, url, title, content, content_hash, word_count, char_count, status, failure_reason, scraped_at
		FROM outcomes WHERE 1=1`)

	if filter.JobID != nil {
		query.WriteString(" AND job_id = ?")
		args = append(args, *filter.JobID)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Search != nil {
		term := "%" + strings.ToLower(*filter.Search) + "%"
		query.WriteString(" AND (lower(url) LIKE ? OR lower(title) LIKE ? OR lower(content) LIKE ?)")
		args = append(args, term, term, term)
	}

	query.WriteString(" ORDER BY scraped_at DESC, id")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, storeErr("find outcomes", err)
	}
	defer rows.Close()

	var outcomes []*harvest.Outcome
	for rows.Next() {
		var o harvest.Outcome
		var status, scrapedAt string

		if err := rows.Scan(&o.ID, &o.JobID, &o.URL, &o.Title, &o.Content, &o.ContentHash,
			&o.WordCount, &o.CharCount, &status, &o.FailureReason, &scrapedAt); err != nil {
			return nil, storeErr("find outcomes", err)
		}

		o.Status = harvest.OutcomeStatus(status)
		if o.ScrapedAt, err = parseRFC3339(scrapedAt, "scraped_at"); err != nil {
			return nil, err
		}

		outcomes = append(outcomes, &o)
	}

	return outcomes, storeErr("find outcomes", rows.Err())
}

// DeleteJob permanently removes a job. Its outcomes cascade via the
// foreign key constraint.
func (s *JobService) DeleteJob(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return storeErr("delete job", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("delete job", err)
	}
	if rows == 0 {
		return harvest.Errorf(harvest.ENOTFOUND, "job not found")
	}

	return nil
}
