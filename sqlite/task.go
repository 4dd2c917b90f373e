package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ harvest.TaskService = (*TaskService)(nil)

// TaskService implements harvest.TaskService using SQLite.
type TaskService struct {
	db *DB
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *DB) *TaskService {
	return &TaskService{db: db}
}

// urlSeparator joins a task's ordered URL list into a single column.
// Newlines cannot appear inside a URL, so the encoding is unambiguous.
const urlSeparator = "\n"

// CreateTask persists a new task. The task and its recurrence rule are
// validated before any write happens.
func (s *TaskService) CreateTask(ctx context.Context, task *harvest.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	task.ID = uuid.New().String()
	task.Active = true
	task.CreatedAt = time.Now().UTC()
	task.LastFiredAt = nil

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, name, urls, rule_kind, rule_weekday, rule_day, rule_hour, rule_minute, rule_every_hours, notify_target, active, created_at, last_fired_at, next_fire_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, NULL, ?)
	`, task.ID, task.Name, strings.Join(task.URLs, urlSeparator),
		string(task.Rule.Kind), int(task.Rule.Weekday), task.Rule.Day,
		task.Rule.Hour, task.Rule.Minute, task.Rule.EveryHours,
		task.NotifyTarget, task.CreatedAt.Format(time.RFC3339),
		formatNullableRFC3339(task.NextFireAt))

	return storeErr("create task", err)
}

// FindTaskByID retrieves a task by ID.
func (s *TaskService) FindTaskByID(ctx context.Context, id string) (*harvest.Task, error) {
	tasks, err := s.FindTasks(ctx, harvest.TaskFilter{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "task not found")
	}
	return tasks[0], nil
}

// FindTasks retrieves tasks matching the filter.
func (s *TaskService) FindTasks(ctx context.Context, filter harvest.TaskFilter) ([]*harvest.Task, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT id, name, urls, rule_kind, rule_weekday, rule_day, rule_hour, rule_minute, rule_every_hours, notify_target, active, created_at, last_fired_at, next_fire_at
		FROM tasks WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}
	if filter.Active != nil {
		query.WriteString(" AND active = ?")
		args = append(args, boolToInt(*filter.Active))
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, storeErr("find tasks", err)
	}
	defer rows.Close()

	var tasks []*harvest.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, storeErr("find tasks", rows.Err())
}

// SetTaskActive toggles the active flag.
func (s *TaskService) SetTaskActive(ctx context.Context, id string, active bool) error {
	return s.updateTask(ctx, "UPDATE tasks SET active = ? WHERE id = ?", boolToInt(active), id)
}

// SetTaskNextFire persists the computed next fire time; nil clears it.
func (s *TaskService) SetTaskNextFire(ctx context.Context, id string, next *time.Time) error {
	return s.updateTask(ctx, "UPDATE tasks SET next_fire_at = ? WHERE id = ?", formatNullableRFC3339(next), id)
}

// RecordTaskFired sets the task's last fired time.
func (s *TaskService) RecordTaskFired(ctx context.Context, id string, firedAt time.Time) error {
	return s.updateTask(ctx, "UPDATE tasks SET last_fired_at = ? WHERE id = ?", firedAt.UTC().Format(time.RFC3339), id)
}

// DeleteTask permanently removes a task. Jobs the task previously spawned
// are independent records and remain untouched.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return storeErr("delete task", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("delete task", err)
	}
	if rows == 0 {
		return harvest.Errorf(harvest.ENOTFOUND, "task not found")
	}

	return nil
}

// updateTask runs a single-row update and maps zero affected rows to ENOTFOUND.
func (s *TaskService) updateTask(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storeErr("update task", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("update task", err)
	}
	if rows == 0 {
		return harvest.Errorf(harvest.ENOTFOUND, "task not found")
	}

	return nil
}

// scanTask scans one task row.
func scanTask(rows *sql.Rows) (*harvest.Task, error) {
	var task harvest.Task
	var urls, ruleKind, createdAt string
	var ruleWeekday, active int
	var lastFiredAt, nextFireAt *string

	if err := rows.Scan(&task.ID, &task.Name, &urls, &ruleKind, &ruleWeekday,
		&task.Rule.Day, &task.Rule.Hour, &task.Rule.Minute, &task.Rule.EveryHours,
		&task.NotifyTarget, &active, &createdAt, &lastFiredAt, &nextFireAt); err != nil {
		return nil, storeErr("scan task", err)
	}

	task.URLs = strings.Split(urls, urlSeparator)
	task.Rule.Kind = harvest.RuleKind(ruleKind)
	task.Rule.Weekday = time.Weekday(ruleWeekday)
	task.Active = active != 0

	var err error
	if task.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if task.LastFiredAt, err = parseNullableRFC3339(lastFiredAt, "last_fired_at"); err != nil {
		return nil, err
	}
	if task.NextFireAt, err = parseNullableRFC3339(nextFireAt, "next_fire_at"); err != nil {
		return nil, err
	}

	return &task, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
