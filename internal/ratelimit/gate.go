// Package ratelimit provides a blocking sliding-window admission gate for
// outbound operations shared by multiple goroutines.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidConfig is returned by the constructors when the window or
// capacity cannot form a working gate. Not retriable.
var ErrInvalidConfig = errors.New("ratelimit: invalid configuration")

// ErrCancelled is returned when a caller blocked inside Admit is cancelled
// before its wait completes. The gate records nothing for such a call, so
// retrying is always safe.
var ErrCancelled = errors.New("ratelimit: admission cancelled")

// Gate admits callers at most capacity times per rolling window. Admit
// blocks the caller until admission is legal; the bound is enforced by
// comparing admission timestamps against a window that moves continuously
// with time, not by a counter that resets on tick boundaries.
//
// Each Gate owns its own log and lock. Instances are independent and a
// process may host any number of them.
type Gate struct {
	window   time.Duration
	capacity int

	now func() time.Time

	onAdmit  func(wait time.Duration)
	onCancel func()

	mu  sync.Mutex
	log []time.Time // admission timestamps, oldest first, len <= capacity
}

// Option tweaks a Gate at construction.
type Option func(*Gate)

// WithNow overrides the clock used to stamp admissions. For tests.
func WithNow(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithOnAdmit installs a callback fired after every successful admission
// with the time the caller spent blocked (zero on the fast path).
func WithOnAdmit(fn func(wait time.Duration)) Option {
	return func(g *Gate) { g.onAdmit = fn }
}

// WithOnCancel installs a callback fired when a waiting caller gives up.
func WithOnCancel(fn func()) Option {
	return func(g *Gate) { g.onCancel = fn }
}

// New builds a gate allowing capacity admissions per rolling window.
func New(window time.Duration, capacity int, opts ...Option) (*Gate, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, capacity)
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %s", ErrInvalidConfig, window)
	}
	g := &Gate{
		window:   window,
		capacity: capacity,
		now:      time.Now,
		log:      make([]time.Time, 0, capacity),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NewPerUnit builds a gate from the "count per unit" configuration surface:
// the window is one unit long and count is the capacity.
func NewPerUnit(unit Unit, count int, opts ...Option) (*Gate, error) {
	d := unit.Duration()
	if d == 0 {
		return nil, fmt.Errorf("%w: unknown window unit %q", ErrInvalidConfig, string(unit))
	}
	return New(d, count, opts...)
}

// Window reports the configured rolling window length.
func (g *Gate) Window() time.Duration { return g.window }

// Capacity reports the configured admissions-per-window bound.
func (g *Gate) Capacity() int { return g.capacity }

// Admit blocks until one more admission fits inside the rolling window,
// records it, and returns nil. It returns an error matching ErrCancelled
// (and the ctx cause) if ctx ends first; in that case the log is exactly
// as it was before the call.
func (g *Gate) Admit(ctx context.Context) error {
	start := g.now()

	g.mu.Lock()
	for {
		if err := ctx.Err(); err != nil {
			g.mu.Unlock()
			return g.cancelled(err)
		}

		now := g.now()
		if len(g.log) < g.capacity {
			g.log = append(g.log, now)
			g.mu.Unlock()
			g.admitted(now.Sub(start))
			return nil
		}

		age := now.Sub(g.log[0])
		if age >= g.window {
			// Oldest entry has left the window: one out, one in. Only the
			// single oldest entry goes, even if more are stale after an
			// idle gap; each admission pays for at most one eviction and
			// the remainder self-correct on later calls.
			copy(g.log, g.log[1:])
			g.log[len(g.log)-1] = now
			g.mu.Unlock()
			g.admitted(now.Sub(start))
			return nil
		}

		// Window full. Wait out the remainder with the lock released, then
		// re-validate from scratch: another caller or a spurious early wake
		// may have changed what the front of the log looks like.
		wait := g.window - age
		g.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return g.cancelled(ctx.Err())
		case <-timer.C:
		}
		g.mu.Lock()
	}
}

// Do admits one unit of work and then runs op. The operation's error is
// propagated unchanged and its admission is consumed either way: the gate
// throttles attempts, not successes. If admission fails, op never runs.
func (g *Gate) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if err := g.Admit(ctx); err != nil {
		return err
	}
	return op(ctx)
}

func (g *Gate) admitted(wait time.Duration) {
	if g.onAdmit != nil {
		g.onAdmit(wait)
	}
}

func (g *Gate) cancelled(cause error) error {
	if g.onCancel != nil {
		g.onCancel()
	}
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
