package main

import (
	"fmt"

	"github.com/fwojciec/docsearch"
)

// Run executes the update command.
func (c *UpdateCmd) Run(deps *Dependencies) error {
	ok, err := deps.Service.UpdateLocalFile(deps.Ctx, c.Path)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}
	if !ok {
		fmt.Fprintf(deps.Stderr, "error: %s is not inside any enabled local source. Check offline_sources in the source configuration.\n", c.Path)
		return docsearch.Errorf(docsearch.ENOTFOUND, "no local source owns %s", c.Path)
	}

	fmt.Fprintf(deps.Stdout, "Updated %s (%d pages indexed).\n", c.Path, deps.Service.IndexInfo(deps.Ctx).TotalPages)
	return nil
}

// Run executes the remove command.
func (c *RemoveCmd) Run(deps *Dependencies) error {
	ok, err := deps.Service.RemoveLocalFile(deps.Ctx, c.Path)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}
	if !ok {
		fmt.Fprintf(deps.Stdout, "%s was not indexed, nothing to remove.\n", c.Path)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Removed %s (%d pages indexed).\n", c.Path, deps.Service.IndexInfo(deps.Ctx).TotalPages)
	return nil
}

// Run executes the preview command.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	html, err := deps.Service.PreviewLocalFile(deps.Ctx, c.Path)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, html)
	return nil
}
