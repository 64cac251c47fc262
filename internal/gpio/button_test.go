package gpio

import (
	"context"
	"testing"
	"time"

	"github.com/sweeney/devpanel/internal/events"
	"github.com/sweeney/devpanel/internal/logic"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

// runButton starts RunButton and returns the tick channel and a stop func
// that waits for the goroutine to exit.
func runButton(t *testing.T, src EdgeSource, keys *events.Group, now func() time.Time) (chan time.Time, func()) {
	t.Helper()
	tick := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunButton(ctx, src, logic.NewClassifier(300*time.Millisecond, time.Second), keys, tick, now)
		close(done)
	}()
	return tick, func() {
		cancel()
		<-done
	}
}

// drain waits until RunButton has taken every queued edge, so a following
// tick is observed after those edges.
func drain(t *testing.T, btn *FakeButton) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for len(btn.edges) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("edges not consumed")
		}
		time.Sleep(time.Millisecond)
	}
}

func waitBits(t *testing.T, keys *events.Group, mask events.Bits) events.Bits {
	t.Helper()
	return keys.Wait(context.Background(), mask, events.WaitOptions{Clear: true}, time.Second)
}

func TestRunButtonDoubleClick(t *testing.T) {
	btn := NewFakeButton()
	keys := events.NewGroup("keys")
	_, stop := runButton(t, btn, keys, func() time.Time { return at(0) })
	defer stop()

	btn.Press(at(0))
	btn.Release(at(50))
	btn.Press(at(120))
	btn.Release(at(170))

	if got := waitBits(t, keys, events.KeyGestures); got != events.KeyDoubleClick {
		t.Errorf("bits: got %b, want double click", got)
	}
}

func TestRunButtonSingleClickAfterWindow(t *testing.T) {
	btn := NewFakeButton()
	keys := events.NewGroup("keys")
	clock := make(chan time.Time, 1)
	now := func() time.Time { return <-clock }
	tick, stop := runButton(t, btn, keys, now)
	defer stop()

	btn.Press(at(0))
	btn.Release(at(60))
	drain(t, btn)

	clock <- at(100)
	tick <- time.Time{}
	if keys.Get() != 0 {
		t.Fatalf("single click reported inside the window: %b", keys.Get())
	}

	clock <- at(400)
	tick <- time.Time{}
	if got := waitBits(t, keys, events.KeyGestures); got != events.KeySingleClick {
		t.Errorf("bits: got %b, want single click", got)
	}
}

func TestRunButtonLongPressWhileHeld(t *testing.T) {
	btn := NewFakeButton()
	keys := events.NewGroup("keys")
	clock := make(chan time.Time, 1)
	tick, stop := runButton(t, btn, keys, func() time.Time { return <-clock })
	defer stop()

	btn.Press(at(0))
	drain(t, btn)
	clock <- at(1100)
	tick <- time.Time{}

	if got := waitBits(t, keys, events.KeyGestures); got != events.KeyLongPress {
		t.Errorf("bits: got %b, want long press", got)
	}
}

func TestRunButtonStopsOnClose(t *testing.T) {
	btn := NewFakeButton()
	keys := events.NewGroup("keys")
	done := make(chan struct{})
	go func() {
		RunButton(context.Background(), btn, logic.NewClassifier(0, 0), keys, nil, time.Now)
		close(done)
	}()

	btn.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunButton did not return after the edge channel closed")
	}
}
