package main

import (
	"fmt"

	"github.com/fwojciec/harvest"
)

// Run executes the jobs list command.
func (c *JobsListCmd) Run(deps *Dependencies) error {
	jobs, err := deps.Jobs.FindJobs(deps.Ctx, harvest.JobFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if len(jobs) == 0 {
		fmt.Fprintln(deps.Stdout, "No jobs found. Use 'harvest scrape' to run one.")
		return nil
	}

	for _, j := range jobs {
		fmt.Fprintf(deps.Stdout, "%s  %-9s  %d/%d  %s\n",
			j.ID, j.Status, j.CompletedURLs, j.TotalURLs, j.Label)
	}

	return nil
}

// Run executes the jobs show command.
func (c *JobsShowCmd) Run(deps *Dependencies) error {
	job, err := deps.Jobs.FindJobByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Job %s  %s  %d/%d  %s\n",
		job.ID, job.Status, job.CompletedURLs, job.TotalURLs, job.Label)

	outcomes, err := deps.Jobs.FindOutcomes(deps.Ctx, harvest.OutcomeFilter{JobID: &c.ID})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	for _, o := range outcomes {
		if o.Status == harvest.OutcomeSuccess {
			fmt.Fprintf(deps.Stdout, "  ok    %s  %q  %d words, %d chars\n",
				o.URL, o.Title, o.WordCount, o.CharCount)
			if c.Full {
				fmt.Fprintln(deps.Stdout, o.Content)
			}
		} else {
			fmt.Fprintf(deps.Stdout, "  fail  %s  %s\n", o.URL, o.FailureReason)
		}
	}

	return nil
}

// Run executes the jobs delete command.
func (c *JobsDeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return harvest.Errorf(harvest.EINVALID, "use --force to confirm deletion")
	}

	if _, err := deps.Jobs.FindJobByID(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if err := deps.Jobs.DeleteJob(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted job %s\n", c.ID)
	return nil
}
