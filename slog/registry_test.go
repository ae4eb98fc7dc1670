package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/mock"
	dsslog "github.com/fwojciec/docsearch/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingRegistry(t *testing.T) {
	t.Parallel()

	t.Run("logs source counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SourceRegistry{
			LoadFn: func(ctx context.Context) (*docsearch.SourceSet, error) {
				return &docsearch.SourceSet{
					Online:  []*docsearch.Source{{ID: "a"}, {ID: "b"}},
					Offline: []*docsearch.Source{{ID: "c"}},
				}, nil
			},
			ResolvePathFn: func(path string) string { return "/root/" + path },
		}
		registry := dsslog.NewLoggingRegistry(inner, logger)

		set, err := registry.Load(context.Background())

		require.NoError(t, err)
		assert.Len(t, set.All(), 3)
		assert.Contains(t, buf.String(), "online=2")
		assert.Contains(t, buf.String(), "offline=1")
		assert.Equal(t, "/root/notes", registry.ResolvePath("notes"))
	})

	t.Run("logs load failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SourceRegistry{
			LoadFn: func(ctx context.Context) (*docsearch.SourceSet, error) {
				return nil, docsearch.Errorf(docsearch.ECONFIG, "source configuration not found")
			},
		}

		_, err := dsslog.NewLoggingRegistry(inner, logger).Load(context.Background())

		require.Error(t, err)
		assert.Contains(t, buf.String(), "level=ERROR")
		assert.Contains(t, buf.String(), "load sources")
	})
}
