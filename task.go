package harvest

import (
	"context"
	"time"
)

// Task is a persisted definition of a job to run on a recurrence rule.
// A task accumulates no extracted content, only scheduling metadata; each
// fire spawns one Job whose outcomes are recorded under the job's identity.
type Task struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// URLs is the ordered list of targets extracted on each fire.
	URLs []string `json:"urls"`

	Rule Rule `json:"rule"`

	// NotifyTarget, when set, receives a completion summary after each
	// fire (e.g., an email address). Notification is best-effort.
	NotifyTarget string `json:"notifyTarget"`

	// Active tasks have a pending trigger; paused tasks have none and
	// their NextFireAt is cleared.
	Active bool `json:"active"`

	CreatedAt   time.Time  `json:"createdAt"`
	LastFiredAt *time.Time `json:"lastFiredAt"`
	NextFireAt  *time.Time `json:"nextFireAt"`
}

// Validate returns an error if the task contains invalid fields.
func (t *Task) Validate() error {
	if t.Name == "" {
		return Errorf(EINVALID, "task name required")
	}
	if len(t.URLs) == 0 {
		return Errorf(EINVALID, "task requires at least one URL")
	}
	for _, u := range t.URLs {
		if u == "" {
			return Errorf(EINVALID, "task URLs cannot be empty")
		}
	}
	return t.Rule.Validate()
}

// TaskFilter represents a filter for FindTasks.
type TaskFilter struct {
	ID     *string `json:"id"`
	Name   *string `json:"name"`
	Active *bool   `json:"active"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// TaskService represents the durable store for recurring task definitions.
// The scheduler owns task lifecycle; this store is its persistence backing.
type TaskService interface {
	// CreateTask persists a new task. The task is validated, including
	// its recurrence rule.
	CreateTask(ctx context.Context, task *Task) error

	// FindTaskByID retrieves a task by ID.
	// Returns ENOTFOUND if the task does not exist.
	FindTaskByID(ctx context.Context, id string) (*Task, error)

	// FindTasks retrieves tasks matching the filter.
	FindTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)

	// SetTaskActive toggles the active flag. Idempotent.
	// Returns ENOTFOUND if the task does not exist.
	SetTaskActive(ctx context.Context, id string, active bool) error

	// SetTaskNextFire persists the computed next fire time, or clears it
	// when next is nil. Returns ENOTFOUND if the task does not exist.
	SetTaskNextFire(ctx context.Context, id string, next *time.Time) error

	// RecordTaskFired sets the task's last fired time.
	// Returns ENOTFOUND if the task does not exist.
	RecordTaskFired(ctx context.Context, id string, firedAt time.Time) error

	// DeleteTask permanently removes a task. Historical jobs the task
	// spawned are independent records and are not removed.
	// Returns ENOTFOUND if the task does not exist.
	DeleteTask(ctx context.Context, id string) error
}
