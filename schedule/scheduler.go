// Package schedule provides the recurring task scheduler. It owns task
// lifecycle (register, pause, resume, delete), keeps one trigger armed per
// active task, and dispatches fires to the job runner through a bounded
// worker pool. Trigger state is always reconstructible from the task store:
// on startup the scheduler reloads active tasks and re-arms triggers from
// their stored rules, so schedules survive process restarts.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fwojciec/harvest"
)

// DefaultMaxConcurrent bounds the number of task fires executing at once,
// independent of how many tasks are registered.
const DefaultMaxConcurrent = 4

// labelTimeFormat is the fire timestamp embedded in generated job labels.
const labelTimeFormat = "20060102_150405"

// Scheduler owns recurring task definitions and triggers job runs at the
// times their rules prescribe. Construct with New; the exported fields may
// be replaced before Start is called.
type Scheduler struct {
	Tasks    harvest.TaskService
	Runner   harvest.JobRunner
	Notifier harvest.Notifier // optional; nil disables notifications
	Clock    clock.Clock
	Logger   *slog.Logger

	// MaxConcurrent caps concurrently executing fires across all tasks.
	MaxConcurrent int

	mu       sync.Mutex
	entries  map[string]*entry
	sem      chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	stopping chan struct{}
	wg       sync.WaitGroup
	started  bool
	stopped  bool
}

// entry tracks the live trigger state for one task. A task never runs two
// fires concurrently: running guards overlap, and the trigger is only
// re-armed after a fire finishes.
type entry struct {
	timer   *clock.Timer
	running bool
}

// New creates a Scheduler with a real clock and default logger.
func New(tasks harvest.TaskService, runner harvest.JobRunner) *Scheduler {
	return &Scheduler{
		Tasks:         tasks,
		Runner:        runner,
		Clock:         clock.New(),
		Logger:        slog.Default(),
		MaxConcurrent: DefaultMaxConcurrent,
		entries:       make(map[string]*entry),
	}
}

// Start reloads all active tasks from the store and arms their triggers.
// Paused tasks remain dormant. Start must be called before triggers fire;
// lifecycle operations work without it and only persist state.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return harvest.Errorf(harvest.EINVALID, "scheduler already started")
	}
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.sem = make(chan struct{}, s.MaxConcurrent)
	s.stopping = make(chan struct{})
	s.started = true
	s.mu.Unlock()

	active := true
	tasks, err := s.Tasks.FindTasks(ctx, harvest.TaskFilter{Active: &active})
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if err := s.arm(ctx, task); err != nil {
			return err
		}
		s.Logger.Info("armed task", "task", task.Name, "id", task.ID, "next", task.NextFireAt)
	}

	s.Logger.Info("scheduler started", "tasks", len(tasks))
	return nil
}

// Stop cancels all pending triggers and waits for in-flight fires to
// finish before releasing the scheduler context, so a fire started before
// Stop always runs with a live context. The scheduler cannot be restarted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for _, e := range s.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	s.entries = make(map[string]*entry)
	if s.stopping != nil {
		close(s.stopping)
	}
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.Logger.Info("scheduler stopped")
}

// Register validates and persists a new task and, if the scheduler is
// running, arms its trigger. Invalid recurrence rules are rejected here,
// never at fire time.
func (s *Scheduler) Register(ctx context.Context, task *harvest.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	next := task.Rule.Next(s.Clock.Now().UTC())
	task.NextFireAt = &next

	if err := s.Tasks.CreateTask(ctx, task); err != nil {
		return err
	}

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		return s.arm(ctx, task)
	}
	return nil
}

// Pause deactivates a task and cancels its pending trigger. Pausing an
// already-paused task is a no-op. An in-flight fire is not interrupted;
// only future fires are prevented.
func (s *Scheduler) Pause(ctx context.Context, id string) error {
	if err := s.Tasks.SetTaskActive(ctx, id, false); err != nil {
		return err
	}
	s.disarm(id)
	return s.Tasks.SetTaskNextFire(ctx, id, nil)
}

// Resume reactivates a paused task and arms a fresh trigger computed from
// the stored rule. Returns ENOTFOUND if the task was deleted.
func (s *Scheduler) Resume(ctx context.Context, id string) error {
	task, err := s.Tasks.FindTaskByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Tasks.SetTaskActive(ctx, id, true); err != nil {
		return err
	}
	task.Active = true

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		return s.arm(ctx, task)
	}

	next := task.Rule.Next(s.Clock.Now().UTC())
	return s.Tasks.SetTaskNextFire(ctx, id, &next)
}

// Delete cancels any pending trigger and removes the task. Jobs the task
// previously spawned are untouched, and an in-flight fire runs to
// completion.
func (s *Scheduler) Delete(ctx context.Context, id string) error {
	s.disarm(id)
	return s.Tasks.DeleteTask(ctx, id)
}

// arm computes the task's next fire time, persists it, and schedules the
// trigger.
func (s *Scheduler) arm(ctx context.Context, task *harvest.Task) error {
	now := s.Clock.Now().UTC()
	next := task.Rule.Next(now)
	task.NextFireAt = &next

	if err := s.Tasks.SetTaskNextFire(ctx, task.ID, &next); err != nil {
		return err
	}

	id := task.ID
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}

	e, ok := s.entries[id]
	if !ok {
		e = &entry{}
		s.entries[id] = e
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = s.Clock.AfterFunc(next.Sub(now), func() {
		s.fire(id)
	})
	return nil
}

// disarm stops the task's pending trigger, if any.
func (s *Scheduler) disarm(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(s.entries, id)
	}
}

// fire handles a trigger going off. The actual work is dispatched to a
// goroutine so timer callbacks never block; the semaphore bounds how many
// fires execute concurrently across all tasks.
func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		// Task was paused or deleted after the trigger fired.
		s.mu.Unlock()
		return
	}
	if e.running {
		// Coalesce: never run two fires of the same task in parallel.
		// The trigger is re-armed and this occurrence is skipped.
		s.mu.Unlock()
		s.Logger.Warn("skipping overlapping fire", "id", id)
		s.rearm(id)
		return
	}
	e.running = true
	stopping := s.stopping
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// A fire still queued for the pool when Stop arrives is dropped;
		// fires already executing run to completion with a live context.
		select {
		case s.sem <- struct{}{}:
		case <-stopping:
			return
		}
		defer func() { <-s.sem }()

		s.runTask(id)

		s.mu.Lock()
		if e, ok := s.entries[id]; ok {
			e.running = false
		}
		s.mu.Unlock()

		s.rearm(id)
	}()
}

// rearm schedules the next trigger for a task that just fired, unless the
// task was deleted or paused in the meantime, or the scheduler is
// shutting down.
func (s *Scheduler) rearm(id string) {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return
	}

	task, err := s.Tasks.FindTaskByID(s.ctx, id)
	if err != nil {
		s.disarm(id)
		if harvest.ErrorCode(err) != harvest.ENOTFOUND {
			s.Logger.Error("failed to reload task", "id", id, "err", err)
		}
		return
	}
	if !task.Active {
		s.disarm(id)
		return
	}
	if err := s.arm(s.ctx, task); err != nil {
		s.Logger.Error("failed to re-arm task", "task", task.Name, "id", id, "err", err)
	}
}

// runTask executes one fire: records the fire time, spawns a job with a
// generated label, and sends a best-effort notification when the task has
// a target configured.
func (s *Scheduler) runTask(id string) {
	ctx := s.ctx

	task, err := s.Tasks.FindTaskByID(ctx, id)
	if err != nil {
		s.Logger.Error("fired task not found", "id", id, "err", err)
		return
	}
	if !task.Active {
		s.Logger.Info("skipping fire of paused task", "task", task.Name, "id", id)
		return
	}

	firedAt := s.Clock.Now().UTC()
	if err := s.Tasks.RecordTaskFired(ctx, id, firedAt); err != nil {
		s.Logger.Error("failed to record fire", "task", task.Name, "id", id, "err", err)
		return
	}

	label := fmt.Sprintf("Scheduled_%s_%s", task.Name, firedAt.Format(labelTimeFormat))
	s.Logger.Info("running scheduled job", "task", task.Name, "label", label, "urls", len(task.URLs))

	job, outcomes, err := s.Runner.Run(ctx, label, task.URLs)
	if err != nil {
		s.Logger.Error("scheduled job failed", "task", task.Name, "label", label, "err", err)
		return
	}

	summary := harvest.NewSummary(task.Name, job, outcomes)
	s.Logger.Info("scheduled job completed",
		"task", task.Name,
		"label", label,
		"success", summary.SuccessCount,
		"failed", summary.FailureCount)

	// Notification is best-effort: a failure is logged and never rolls
	// back the completed job or the task's fire record.
	if task.NotifyTarget != "" && s.Notifier != nil {
		subject := "Scraping Results - " + task.Name
		if err := s.Notifier.Notify(ctx, task.NotifyTarget, subject, summary); err != nil {
			s.Logger.Warn("notification failed", "task", task.Name, "target", task.NotifyTarget, "err", err)
		}
	}
}

// NextFire reports the armed next fire time for a task, if any. Intended
// for status displays.
func (s *Scheduler) NextFire(ctx context.Context, id string) (*time.Time, error) {
	task, err := s.Tasks.FindTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return task.NextFireAt, nil
}
