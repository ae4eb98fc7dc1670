package main

import (
	"fmt"

	"github.com/fwojciec/docsearch"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	info, err := deps.Service.BuildIndex(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Indexed %d pages from %d sources.\n", info.TotalPages, len(info.Sources))
	printSources(deps, info.Sources)
	return nil
}

func printSources(deps *Dependencies, sources []*docsearch.SourceSummary) {
	for _, s := range sources {
		kind := "online"
		if s.IsLocal {
			kind = "local"
		}
		fmt.Fprintf(deps.Stdout, "  %-20s %5d pages  %s, %s\n", s.ID, s.PageCount, s.Type, kind)
	}
}
