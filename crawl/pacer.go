package crawl

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/fwojciec/docsearch"
)

// DefaultPaceBase is the nominal delay between fetches.
const DefaultPaceBase = 500 * time.Millisecond

// Jitter bounds applied to the base delay.
const (
	JitterMin = 0.8
	JitterMax = 1.2
)

var _ docsearch.Pacer = (*JitterPacer)(nil)

// JitterPacer sleeps for the base delay scaled by a uniform factor in
// [JitterMin, JitterMax) on every Wait.
type JitterPacer struct {
	Base time.Duration

	// Rand returns a value in [0, 1). Defaults to math/rand/v2.
	Rand func() float64

	// Sleep blocks for d or until ctx is done. Defaults to SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewJitterPacer creates a JitterPacer around base.
func NewJitterPacer(base time.Duration) *JitterPacer {
	return &JitterPacer{
		Base:  base,
		Rand:  rand.Float64,
		Sleep: SleepContext,
	}
}

// Delay returns the next jittered delay.
func (p *JitterPacer) Delay() time.Duration {
	r := rand.Float64
	if p.Rand != nil {
		r = p.Rand
	}
	factor := JitterMin + (JitterMax-JitterMin)*r()
	return time.Duration(float64(p.Base) * factor)
}

// Wait sleeps for a jittered delay.
func (p *JitterPacer) Wait(ctx context.Context) error {
	if p.Base <= 0 {
		return ctx.Err()
	}
	sleep := SleepContext
	if p.Sleep != nil {
		sleep = p.Sleep
	}
	return sleep(ctx, p.Delay())
}

// SleepContext blocks for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
