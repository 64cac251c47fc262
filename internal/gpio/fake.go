package gpio

import (
	"errors"
	"sync"
	"time"

	"github.com/sweeney/devpanel/internal/logic"
)

// FakeButton is a test double that delivers scripted edges.
type FakeButton struct {
	edges chan logic.Edge

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeButton creates a FakeButton with a buffered edge channel.
func NewFakeButton() *FakeButton {
	return &FakeButton{edges: make(chan logic.Edge, edgeBuffer)}
}

// Press delivers a press edge at t.
func (f *FakeButton) Press(t time.Time) {
	f.edges <- logic.Edge{Pressed: true, Time: t}
}

// Release delivers a release edge at t.
func (f *FakeButton) Release(t time.Time) {
	f.edges <- logic.Edge{Pressed: false, Time: t}
}

// Edges returns the edge channel.
func (f *FakeButton) Edges() <-chan logic.Edge {
	return f.edges
}

// Close closes the edge channel.
func (f *FakeButton) Close() error {
	if !f.Closed {
		f.Closed = true
		close(f.edges)
	}
	return nil
}

// FakeOutput records values driven onto a line.
type FakeOutput struct {
	mu sync.Mutex

	// Values contains every value set, in order.
	Values []int

	// SetError, if set, will be returned by SetValue.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// SetValue records v.
func (f *FakeOutput) SetValue(v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	if v != 0 && v != 1 {
		return errors.New("gpio: value must be 0 or 1")
	}
	f.Values = append(f.Values, v)
	return nil
}

// Close marks the line as closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
