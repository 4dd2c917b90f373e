package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
)

// Run executes the task add command.
func (c *TaskAddCmd) Run(deps *Dependencies) error {
	rule, err := c.rule()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	urls := c.URLs
	if c.Sitemap {
		urls, err = expandSitemaps(deps.Ctx, deps.Sitemaps, c.URLs)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
			return err
		}
	}

	next := rule.Next(time.Now().UTC())
	task := &harvest.Task{
		Name:         c.Name,
		URLs:         urls,
		Rule:         rule,
		NotifyTarget: c.Notify,
		NextFireAt:   &next,
	}
	if err := deps.Tasks.CreateTask(deps.Ctx, task); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Registered task %s (%s), next fire %s\n",
		task.Name, task.ID, next.Format(time.RFC3339))
	return nil
}

// rule builds the recurrence rule from the mutually exclusive flags.
func (c *TaskAddCmd) rule() (harvest.Rule, error) {
	set := 0
	for _, on := range []bool{c.Daily != "", c.Weekly != "", c.Monthly != "", c.Every != 0} {
		if on {
			set++
		}
	}
	if set != 1 {
		return harvest.Rule{}, harvest.Errorf(harvest.EINVALID,
			"exactly one of --daily, --weekly, --monthly, --every is required")
	}

	switch {
	case c.Daily != "":
		hour, minute, err := parseClock(c.Daily)
		if err != nil {
			return harvest.Rule{}, err
		}
		return harvest.Daily(hour, minute), nil

	case c.Weekly != "":
		fields := strings.Fields(c.Weekly)
		if len(fields) != 2 {
			return harvest.Rule{}, harvest.Errorf(harvest.EINVALID,
				"weekly rule must be 'DAY HH:MM', got %q", c.Weekly)
		}
		weekday, err := parseWeekday(fields[0])
		if err != nil {
			return harvest.Rule{}, err
		}
		hour, minute, err := parseClock(fields[1])
		if err != nil {
			return harvest.Rule{}, err
		}
		return harvest.Weekly(weekday, hour, minute), nil

	case c.Monthly != "":
		fields := strings.Fields(c.Monthly)
		if len(fields) != 2 {
			return harvest.Rule{}, harvest.Errorf(harvest.EINVALID,
				"monthly rule must be 'DAY HH:MM', got %q", c.Monthly)
		}
		day, err := strconv.Atoi(fields[0])
		if err != nil {
			return harvest.Rule{}, harvest.Errorf(harvest.EINVALID,
				"invalid day of month %q", fields[0])
		}
		hour, minute, err := parseClock(fields[1])
		if err != nil {
			return harvest.Rule{}, err
		}
		return harvest.Monthly(day, hour, minute), nil

	default:
		return harvest.EveryHours(c.Every), nil
	}
}

// parseClock parses "HH:MM" in 24-hour time.
func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, harvest.Errorf(harvest.EINVALID, "time must be HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, harvest.Errorf(harvest.EINVALID, "time must be HH:MM, got %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, harvest.Errorf(harvest.EINVALID, "time must be HH:MM, got %q", s)
	}
	return hour, minute, nil
}

// parseWeekday accepts full weekday names, case-insensitive.
func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, harvest.Errorf(harvest.EINVALID, "unknown weekday %q", s)
}

// Run executes the task list command.
func (c *TaskListCmd) Run(deps *Dependencies) error {
	tasks, err := deps.Tasks.FindTasks(deps.Ctx, harvest.TaskFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if len(tasks) == 0 {
		fmt.Fprintln(deps.Stdout, "No tasks found. Use 'harvest task add' to create one.")
		return nil
	}

	for _, t := range tasks {
		state := "active"
		if !t.Active {
			state = "paused"
		}
		next := "-"
		if t.NextFireAt != nil {
			next = t.NextFireAt.Format(time.RFC3339)
		}
		fmt.Fprintf(deps.Stdout, "%s  %-6s  %-8s  next %s  %s\n",
			t.ID, state, t.Rule.Kind, next, t.Name)
	}

	return nil
}

// Run executes the task pause command.
func (c *TaskPauseCmd) Run(deps *Dependencies) error {
	if err := deps.Tasks.SetTaskActive(deps.Ctx, c.ID, false); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}
	if err := deps.Tasks.SetTaskNextFire(deps.Ctx, c.ID, nil); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Paused task %s\n", c.ID)
	return nil
}

// Run executes the task resume command.
func (c *TaskResumeCmd) Run(deps *Dependencies) error {
	task, err := deps.Tasks.FindTaskByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if err := deps.Tasks.SetTaskActive(deps.Ctx, c.ID, true); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}
	next := task.Rule.Next(time.Now().UTC())
	if err := deps.Tasks.SetTaskNextFire(deps.Ctx, c.ID, &next); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Resumed task %s, next fire %s\n", c.ID, next.Format(time.RFC3339))
	return nil
}

// Run executes the task delete command.
func (c *TaskDeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return harvest.Errorf(harvest.EINVALID, "use --force to confirm deletion")
	}

	if _, err := deps.Tasks.FindTaskByID(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if err := deps.Tasks.DeleteTask(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted task %s\n", c.ID)
	return nil
}
