package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/docsearch/crawl"
)

// Run executes the info command.
func (c *InfoCmd) Run(deps *Dependencies) error {
	info := deps.Service.IndexInfo(deps.Ctx)

	updated := "never"
	if !info.LastUpdated.IsZero() {
		updated = info.LastUpdated.Local().Format(time.DateTime)
	}
	fmt.Fprintf(deps.Stdout, "Pages:        %d\n", info.TotalPages)
	fmt.Fprintf(deps.Stdout, "Last updated: %s\n", updated)

	if deps.Store != nil {
		if meta, err := deps.Store.Meta(deps.Ctx); err == nil {
			fmt.Fprintf(deps.Stdout, "Index file:   %s (%s)\n", deps.Store.Path(), crawl.FormatBytes(meta.SizeBytes))
		}
	}

	if len(info.Sources) == 0 {
		fmt.Fprintln(deps.Stdout, "No sources indexed. Use 'docsearch build' to build the index.")
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Sources (%d):\n", len(info.Sources))
	printSources(deps, info.Sources)
	return nil
}
