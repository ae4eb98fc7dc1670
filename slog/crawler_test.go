package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/mock"
	dsslog "github.com/fwojciec/docsearch/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSourceCrawler_Crawl(t *testing.T) {
	t.Parallel()

	src := &docsearch.Source{ID: "owasp", Type: docsearch.SourceTypeGitBook}

	t.Run("logs start and document count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SourceCrawler{
			CrawlFn: func(ctx context.Context, src *docsearch.Source) ([]*docsearch.Document, error) {
				return []*docsearch.Document{{URL: "https://a"}, {URL: "https://b"}, {URL: "https://c"}}, nil
			},
		}

		docs, err := dsslog.NewLoggingSourceCrawler(inner, logger).Crawl(context.Background(), src)

		require.NoError(t, err)
		assert.Len(t, docs, 3)
		output := buf.String()
		assert.Contains(t, output, "crawl started")
		assert.Contains(t, output, "crawl finished")
		assert.Contains(t, output, "source=owasp")
		assert.Contains(t, output, "type=gitbook")
		assert.Contains(t, output, "documents=3")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SourceCrawler{
			CrawlFn: func(ctx context.Context, src *docsearch.Source) ([]*docsearch.Document, error) {
				return nil, errors.New("index page unreachable")
			},
		}

		_, err := dsslog.NewLoggingSourceCrawler(inner, logger).Crawl(context.Background(), src)

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"index page unreachable\"")
	})
}
