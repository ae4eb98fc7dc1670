package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/fsnotify"
	dshttp "github.com/fwojciec/docsearch/http"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Run executes the serve command. The API server, the optional file
// watcher and the optional rebuild schedule stop together when the
// context is canceled or any of them fails.
func (c *ServeCmd) Run(deps *Dependencies) error {
	var schedule cron.Schedule
	if c.Schedule != "" {
		s, err := cron.ParseStandard(c.Schedule)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: invalid schedule %q: %v\n", c.Schedule, err)
			return docsearch.Errorf(docsearch.EINVALID, "invalid schedule %q", c.Schedule)
		}
		schedule = s
	}

	var watcher *fsnotify.Watcher
	if c.Watch {
		w, err := c.watcher(deps.Ctx, deps)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
			return err
		}
		watcher = w
	}

	g, ctx := errgroup.WithContext(deps.Ctx)

	server := dshttp.NewServer(deps.Service, deps.Logger)
	g.Go(func() error {
		return server.Run(ctx, c.Addr)
	})

	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	if schedule != nil {
		scheduler := cron.New()
		scheduler.Schedule(schedule, cron.FuncJob(func() {
			c.rebuild(ctx, deps)
		}))
		scheduler.Start()
		deps.Logger.Info("scheduled rebuilds", "schedule", c.Schedule)

		g.Go(func() error {
			<-ctx.Done()
			<-scheduler.Stop().Done()
			return nil
		})
	}

	return g.Wait()
}

// watcher watches the roots of every enabled local source.
func (c *ServeCmd) watcher(ctx context.Context, deps *Dependencies) (*fsnotify.Watcher, error) {
	if deps.Registry == nil {
		return nil, docsearch.Errorf(docsearch.ECONFIG, "source registry not configured")
	}
	set, err := deps.Registry.Load(ctx)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher(deps.Service, fsnotify.WithLogger(deps.Logger))
	if err != nil {
		return nil, err
	}
	for _, src := range set.Offline {
		root := deps.Registry.ResolvePath(src.Path)
		if err := w.Add(root, src.Extensions()); err != nil {
			return nil, fmt.Errorf("watching %s: %w", root, err)
		}
		deps.Logger.Info("watching local source", "source", src.ID, "path", root)
	}
	return w, nil
}

func (c *ServeCmd) rebuild(ctx context.Context, deps *Dependencies) {
	info, err := deps.Service.BuildIndex(ctx)
	if docsearch.ErrorCode(err) == docsearch.EBUSY {
		deps.Logger.Info("scheduled rebuild skipped, another operation is running")
		return
	} else if err != nil {
		deps.Logger.Error("scheduled rebuild failed", "error", err)
		return
	}
	deps.Logger.Info("scheduled rebuild finished", "pages", info.TotalPages)
}
