package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/schedule"
)

// Run executes the serve command. It arms every active task and blocks
// until interrupted.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := schedule.New(deps.Tasks, deps.Runner)
	s.Notifier = deps.Notifier
	s.Logger = deps.Logger
	if c.MaxConcurrent > 0 {
		s.MaxConcurrent = c.MaxConcurrent
	}

	if err := s.Start(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Scheduler running. Press Ctrl-C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
	case <-deps.Ctx.Done():
	}

	fmt.Fprintln(deps.Stdout, "Shutting down, waiting for in-flight jobs...")
	s.Stop()
	return nil
}
