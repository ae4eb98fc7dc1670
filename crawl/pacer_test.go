package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/docsearch/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJitterPacer_Delay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    float64
		want time.Duration
	}{
		{"lower bound", 0, 400 * time.Millisecond},
		{"midpoint", 0.5, 500 * time.Millisecond},
		{"near upper bound", 0.999, 599800 * time.Microsecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &crawl.JitterPacer{Base: 500 * time.Millisecond, Rand: func() float64 { return tt.r }}

			assert.InDelta(t, float64(tt.want), float64(p.Delay()), float64(time.Microsecond))
		})
	}
}

func TestJitterPacer_Wait(t *testing.T) {
	t.Parallel()

	t.Run("sleeps for the jittered delay", func(t *testing.T) {
		t.Parallel()

		var slept time.Duration
		p := &crawl.JitterPacer{
			Base: time.Second,
			Rand: func() float64 { return 0.5 },
			Sleep: func(_ context.Context, d time.Duration) error {
				slept = d
				return nil
			},
		}

		require.NoError(t, p.Wait(context.Background()))
		assert.Equal(t, time.Second, slept)
	})

	t.Run("zero base does not sleep", func(t *testing.T) {
		t.Parallel()

		p := &crawl.JitterPacer{
			Sleep: func(_ context.Context, _ time.Duration) error {
				t.Fatal("unexpected sleep")
				return nil
			},
		}

		require.NoError(t, p.Wait(context.Background()))
	})

	t.Run("zero base reports cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := (&crawl.JitterPacer{}).Wait(ctx)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSleepContext(t *testing.T) {
	t.Parallel()

	t.Run("returns after the delay", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, crawl.SleepContext(context.Background(), time.Millisecond))
	})

	t.Run("returns early when canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := crawl.SleepContext(ctx, time.Hour)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})
}
