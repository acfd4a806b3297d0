package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// progressTick is how often a cooldown wait reports progress
const progressTick = time.Second

// Governor suspends all request issuance for a fixed cooldown window after a
// rate-limit signal and paces requests outside of cooldowns. Callers block
// cooperatively in Acquire; none of them ever observes the rate-limit error.
type Governor struct {
	window time.Duration
	pacer  *rate.Limiter

	mu    sync.Mutex
	until time.Time

	// onCooldown, if set, is called about once a second during a cooldown
	// wait with the remaining and total durations. Display only.
	onCooldown func(remaining, total time.Duration)
}

// NewGovernor creates a governor with the given cooldown window and a pacing
// budget of requestsPerMinute for normal operation.
func NewGovernor(window time.Duration, requestsPerMinute int) *Governor {
	return &Governor{
		window: window,
		pacer:  rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

// SetProgressFunc installs a cooldown progress callback.
func (g *Governor) SetProgressFunc(f func(remaining, total time.Duration)) {
	g.mu.Lock()
	g.onCooldown = f
	g.mu.Unlock()
}

// Window returns the configured cooldown window.
func (g *Governor) Window() time.Duration {
	return g.window
}

// Trip starts a cooldown. Tripping again inside an active window is a no-op,
// so concurrent classification of the same burst extends nothing.
func (g *Governor) Trip() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if g.until.After(now) {
		return
	}
	g.until = now.Add(g.window)
}

// Cooling reports whether issuance is currently suspended.
func (g *Governor) Cooling() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.until.After(time.Now())
}

// Remaining returns how much of the current cooldown is left, zero if none.
func (g *Governor) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r := time.Until(g.until); r > 0 {
		return r
	}
	return 0
}

// Acquire blocks until issuing a request is permitted: first it waits out
// any active cooldown, then it takes a pacing token. Returns early only on
// context cancellation.
func (g *Governor) Acquire(ctx context.Context) error {
	if err := g.waitCooldown(ctx); err != nil {
		return err
	}
	return g.pacer.Wait(ctx)
}

// waitCooldown sleeps in short slices so progress can be surfaced and the
// context honored.
func (g *Governor) waitCooldown(ctx context.Context) error {
	for {
		g.mu.Lock()
		remaining := time.Until(g.until)
		report := g.onCooldown
		g.mu.Unlock()

		if remaining <= 0 {
			return nil
		}

		if report != nil {
			report(remaining, g.window)
		}

		slice := remaining
		if slice > progressTick {
			slice = progressTick
		}

		timer := time.NewTimer(slice)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
