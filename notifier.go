package harvest

import "context"

// PreviewItems is the number of successful extractions included in a
// notification summary.
const PreviewItems = 5

// PreviewChars is the maximum snippet length of previewed content.
const PreviewChars = 200

// PreviewItem is one successful extraction included in a summary.
type PreviewItem struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	WordCount int    `json:"wordCount"`
	Snippet   string `json:"snippet"`
}

// Summary describes a completed job for notification purposes.
type Summary struct {
	TaskName     string        `json:"taskName"`
	JobLabel     string        `json:"jobLabel"`
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	Preview      []PreviewItem `json:"preview"`
}

// Total returns the number of URLs covered by the summary.
func (s *Summary) Total() int {
	return s.SuccessCount + s.FailureCount
}

// NewSummary builds a summary from a job's outcomes, previewing the first
// PreviewItems successful extractions with snippets capped at PreviewChars
// runes.
func NewSummary(taskName string, job *Job, outcomes []*Outcome) *Summary {
	s := &Summary{
		TaskName: taskName,
		JobLabel: job.Label,
	}
	for _, o := range outcomes {
		if o.Status != OutcomeSuccess {
			s.FailureCount++
			continue
		}
		s.SuccessCount++
		if len(s.Preview) < PreviewItems {
			s.Preview = append(s.Preview, PreviewItem{
				URL:       o.URL,
				Title:     o.Title,
				WordCount: o.WordCount,
				Snippet:   Snippet(o.Content, PreviewChars),
			})
		}
	}
	return s
}

// Snippet truncates text to at most n runes, appending "..." when truncated.
func Snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

// Notifier delivers completion summaries to a destination. Delivery is
// best-effort: callers log failures and never roll back job or task state
// because of them.
type Notifier interface {
	Notify(ctx context.Context, target, subject string, summary *Summary) error
}
