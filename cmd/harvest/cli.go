package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	DB       *sqlite.DB
	Jobs     harvest.JobService
	Tasks    harvest.TaskService
	Sitemaps harvest.URLSource
	Runner   harvest.JobRunner
	Notifier harvest.Notifier
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Scrape ScrapeCmd `cmd:"" help:"Run an ad hoc extraction job"`
	Jobs   JobsCmd   `cmd:"" help:"List and inspect extraction jobs"`
	Search SearchCmd `cmd:"" help:"Search stored extraction results"`
	Task   TaskCmd   `cmd:"" help:"Manage scheduled tasks"`
	Serve  ServeCmd  `cmd:"" help:"Run the task scheduler until interrupted"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	Label       string   `arg:"" help:"Job label"`
	URLs        []string `arg:"" help:"URLs to extract"`
	Sitemap     bool     `short:"s" help:"Treat URL arguments as sitemaps and expand them"`
	Extractor   string   `short:"e" default:"trafilatura" enum:"trafilatura,readability,plain" help:"Content extractor (trafilatura, readability, plain)"`
	Concurrency int      `short:"c" default:"3" help:"Concurrent fetch limit"`
}

// JobsCmd groups job inspection subcommands.
type JobsCmd struct {
	List   JobsListCmd   `cmd:"" default:"1" help:"List jobs with progress"`
	Show   JobsShowCmd   `cmd:"" help:"Show a job's per-URL outcomes"`
	Delete JobsDeleteCmd `cmd:"" help:"Delete a job and its results"`
}

// JobsListCmd is the "jobs list" subcommand.
type JobsListCmd struct{}

// JobsShowCmd is the "jobs show" subcommand.
type JobsShowCmd struct {
	ID   string `arg:"" help:"Job ID"`
	Full bool   `help:"Show full extracted content"`
}

// JobsDeleteCmd is the "jobs delete" subcommand.
type JobsDeleteCmd struct {
	ID    string `arg:"" help:"Job ID"`
	Force bool   `help:"Confirm deletion"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Case-insensitive search term"`
	Job   string `help:"Restrict search to one job ID"`
}

// TaskCmd groups scheduled-task subcommands.
type TaskCmd struct {
	Add    TaskAddCmd    `cmd:"" help:"Register a recurring task"`
	List   TaskListCmd   `cmd:"" default:"1" help:"List scheduled tasks"`
	Pause  TaskPauseCmd  `cmd:"" help:"Pause a task"`
	Resume TaskResumeCmd `cmd:"" help:"Resume a paused task"`
	Delete TaskDeleteCmd `cmd:"" help:"Delete a task"`
}

// TaskAddCmd is the "task add" subcommand. Exactly one recurrence flag
// must be provided.
type TaskAddCmd struct {
	Name    string   `arg:"" help:"Task name"`
	URLs    []string `arg:"" help:"URLs the task extracts"`
	Daily   string   `help:"Fire daily at HH:MM (24h)" placeholder:"HH:MM"`
	Weekly  string   `help:"Fire weekly, e.g. 'monday 09:00'" placeholder:"DAY HH:MM"`
	Monthly string   `help:"Fire monthly, e.g. '15 09:00' (day 1-28)" placeholder:"DAY HH:MM"`
	Every   int      `help:"Fire every N hours" placeholder:"N"`
	Notify  string   `help:"Email address for completion summaries"`
	Sitemap bool     `short:"s" help:"Treat URL arguments as sitemaps and expand them"`
}

// TaskListCmd is the "task list" subcommand.
type TaskListCmd struct{}

// TaskPauseCmd is the "task pause" subcommand.
type TaskPauseCmd struct {
	ID string `arg:"" help:"Task ID"`
}

// TaskResumeCmd is the "task resume" subcommand.
type TaskResumeCmd struct {
	ID string `arg:"" help:"Task ID"`
}

// TaskDeleteCmd is the "task delete" subcommand.
type TaskDeleteCmd struct {
	ID    string `arg:"" help:"Task ID"`
	Force bool   `help:"Confirm deletion"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	MaxConcurrent int `default:"4" help:"Maximum simultaneously running scheduled jobs"`
}
