// Package events provides event bit groups: fixed-width bitmasks shared between
// producers (input, radio and storage watchers) and the tasks that wait on them.
package events

import (
	"context"
	"sync"
	"time"
)

// Bits is a set of event flags.
type Bits uint32

// Has reports whether every bit in mask is set.
func (b Bits) Has(mask Bits) bool {
	return b&mask == mask
}

// Any reports whether at least one bit in mask is set.
func (b Bits) Any(mask Bits) bool {
	return b&mask != 0
}

// WaitOptions controls how Wait matches and consumes bits.
type WaitOptions struct {
	// All requires every bit in the mask; otherwise any one bit satisfies the wait.
	All bool
	// Clear clears the masked bits atomically with a satisfied wait.
	Clear bool
}

// Group is an event bit group. The zero value is not usable; use NewGroup.
type Group struct {
	name string

	mu      sync.Mutex
	bits    Bits
	changed chan struct{}
}

// NewGroup creates an empty group. The name is used in log messages only.
func NewGroup(name string) *Group {
	return &Group{name: name, changed: make(chan struct{})}
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

// Set sets bits and wakes every waiter.
func (g *Group) Set(bits Bits) {
	g.mu.Lock()
	g.bits |= bits
	close(g.changed)
	g.changed = make(chan struct{})
	g.mu.Unlock()
}

// Clear clears bits and returns the value before clearing.
func (g *Group) Clear(bits Bits) Bits {
	g.mu.Lock()
	prev := g.bits
	g.bits &^= bits
	g.mu.Unlock()
	return prev
}

// Get returns the current value.
func (g *Group) Get() Bits {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bits
}

// Wait blocks until the bits in mask satisfy opts, the timeout elapses or ctx
// is done. It returns the value observed when the condition was met (before
// any clearing), or the current value on timeout. Callers test the returned
// value against mask to tell the two apart.
//
// A non-positive timeout polls once without blocking.
func (g *Group) Wait(ctx context.Context, mask Bits, opts WaitOptions, timeout time.Duration) Bits {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		g.mu.Lock()
		value := g.bits
		if satisfied(value, mask, opts.All) {
			if opts.Clear {
				g.bits &^= mask
			}
			g.mu.Unlock()
			return value
		}
		changed := g.changed
		g.mu.Unlock()

		if deadline == nil {
			return value
		}

		select {
		case <-changed:
		case <-deadline:
			return g.Get()
		case <-ctx.Done():
			return g.Get()
		}
	}
}

func satisfied(value, mask Bits, all bool) bool {
	if all {
		return value.Has(mask)
	}
	return value.Any(mask)
}
