package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceCrawler_ImplementsInterface(t *testing.T) {
	t.Parallel()

	// Verify mock can be used where SourceCrawler is expected
	var _ docsearch.SourceCrawler = &mock.SourceCrawler{}
}

func TestSourceCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("delegates to CrawlFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *docsearch.Source
		want := []*docsearch.Document{{SourceID: "owasp", URL: "https://example.com/a"}}
		c := &mock.SourceCrawler{
			CrawlFn: func(_ context.Context, src *docsearch.Source) ([]*docsearch.Document, error) {
				calledWith = src
				return want, nil
			},
		}

		src := &docsearch.Source{ID: "owasp", Type: docsearch.SourceTypeGitBook}

		docs, err := c.Crawl(context.Background(), src)

		require.NoError(t, err)
		assert.Equal(t, src, calledWith)
		assert.Equal(t, want, docs)
	})
}
