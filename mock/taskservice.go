package mock

import (
	"context"
	"time"

	"github.com/fwojciec/harvest"
)

var _ harvest.TaskService = (*TaskService)(nil)

// TaskService is a mock implementation of harvest.TaskService.
type TaskService struct {
	CreateTaskFn      func(ctx context.Context, task *harvest.Task) error
	FindTaskByIDFn    func(ctx context.Context, id string) (*harvest.Task, error)
	FindTasksFn       func(ctx context.Context, filter harvest.TaskFilter) ([]*harvest.Task, error)
	SetTaskActiveFn   func(ctx context.Context, id string, active bool) error
	SetTaskNextFireFn func(ctx context.Context, id string, next *time.Time) error
	RecordTaskFiredFn func(ctx context.Context, id string, firedAt time.Time) error
	DeleteTaskFn      func(ctx context.Context, id string) error
}

func (s *TaskService) CreateTask(ctx context.Context, task *harvest.Task) error {
	return s.CreateTaskFn(ctx, task)
}

func (s *TaskService) FindTaskByID(ctx context.Context, id string) (*harvest.Task, error) {
	return s.FindTaskByIDFn(ctx, id)
}

func (s *TaskService) FindTasks(ctx context.Context, filter harvest.TaskFilter) ([]*harvest.Task, error) {
	return s.FindTasksFn(ctx, filter)
}

func (s *TaskService) SetTaskActive(ctx context.Context, id string, active bool) error {
	return s.SetTaskActiveFn(ctx, id, active)
}

func (s *TaskService) SetTaskNextFire(ctx context.Context, id string, next *time.Time) error {
	return s.SetTaskNextFireFn(ctx, id, next)
}

func (s *TaskService) RecordTaskFired(ctx context.Context, id string, firedAt time.Time) error {
	return s.RecordTaskFiredFn(ctx, id, firedAt)
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	return s.DeleteTaskFn(ctx, id)
}
