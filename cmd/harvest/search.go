package main

import (
	"fmt"

	"github.com/fwojciec/harvest"
)

// searchSnippetChars bounds the content excerpt shown per match.
const searchSnippetChars = 120

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	filter := harvest.OutcomeFilter{Search: &c.Query}
	if c.Job != "" {
		filter.JobID = &c.Job
	}

	outcomes, err := deps.Jobs.FindOutcomes(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if len(outcomes) == 0 {
		fmt.Fprintf(deps.Stdout, "No results for %q\n", c.Query)
		return nil
	}

	for _, o := range outcomes {
		fmt.Fprintf(deps.Stdout, "%s  %s  %q\n", o.JobID, o.URL, o.Title)
		if o.Content != "" {
			fmt.Fprintf(deps.Stdout, "  %s\n", harvest.Snippet(o.Content, searchSnippetChars))
		}
	}
	fmt.Fprintf(deps.Stdout, "%d result(s)\n", len(outcomes))

	return nil
}
