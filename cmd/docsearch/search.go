package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/crawl"
)

const maxURLDisplay = 70

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	query := strings.TrimSpace(strings.Join(c.Query, " "))
	if query == "" {
		fmt.Fprintln(deps.Stderr, "error: search query required")
		return docsearch.Errorf(docsearch.EINVALID, "search query required")
	}

	results, err := deps.Service.Search(deps.Ctx, query, docsearch.SearchOptions{
		Fuzzy: !c.NoFuzzy,
		Limit: c.Limit,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintf(deps.Stdout, "No results for %q.\n", query)
		return nil
	}

	for i, r := range results {
		doc := r.Document
		title := doc.Title
		if title == "" {
			title = doc.PageName
		}
		fmt.Fprintf(deps.Stdout, "%d. %s [%s] score=%d match=%s\n", i+1, title, doc.SourceName, r.Score, r.MatchType)
		fmt.Fprintf(deps.Stdout, "   %s\n", crawl.TruncateURL(doc.URL, maxURLDisplay))
		if text := strings.Join(strings.Fields(r.Snippet.Text), " "); text != "" {
			fmt.Fprintf(deps.Stdout, "   %s\n", text)
		}
	}
	return nil
}
