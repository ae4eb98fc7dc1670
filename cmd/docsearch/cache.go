package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/crawl"
)

// Run executes the cache command.
func (c *CacheCmd) Run(deps *Dependencies) error {
	batch, err := deps.Service.CacheSources(deps.Ctx, c.SourceIDs)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}
	if batch.Rejected {
		fmt.Fprintf(deps.Stderr, "error: %s\n", batch.Message)
		return docsearch.Errorf(docsearch.EINVALID, "%s", batch.Message)
	}

	for _, r := range batch.Results {
		fmt.Fprintf(deps.Stdout, "%s: %d cached, %d failed, %s\n", r.SourceID, r.Cached, r.Failed, crawl.FormatBytes(r.SizeBytes))
	}
	return nil
}

// Run executes the cache-status command.
func (c *CacheStatusCmd) Run(deps *Dependencies) error {
	status, err := deps.Service.CacheStatus(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	if len(status) == 0 {
		fmt.Fprintln(deps.Stdout, "No cached sources. Use 'docsearch cache <source-id>' to cache one.")
		return nil
	}

	for _, m := range status {
		fmt.Fprintf(deps.Stdout, "%-20s %d/%d pages  %s  %s\n",
			m.SourceID, m.CachedPages, m.TotalPages, crawl.FormatBytes(m.TotalSizeBytes), m.CachedAt.Local().Format(time.DateTime))
	}
	return nil
}

// Run executes the cached command.
func (c *CachedCmd) Run(deps *Dependencies) error {
	md, err := deps.Service.CachedPage(deps.Ctx, c.SourceID, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, md)
	return nil
}
