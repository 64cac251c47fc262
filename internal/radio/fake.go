package radio

import (
	"context"
	"sync"
	"time"
)

// FakeWiFi is a test double for the Wi-Fi stack.
type FakeWiFi struct {
	mu sync.Mutex

	// APs is returned by APCount.
	APs int

	// ReleaseError, if set, will be returned by Release.
	ReleaseError error

	// Released counts Release calls.
	Released int

	// Log, if set, receives "wifi.release".
	Log *CallLog
}

// APCount returns APs.
func (f *FakeWiFi) APCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.APs
}

// Release records the call.
func (f *FakeWiFi) Release(ctx context.Context) error {
	f.mu.Lock()
	f.Released++
	f.mu.Unlock()
	f.Log.add("wifi.release")
	return f.ReleaseError
}

// FakeBLE is a test double for the BLE stack. Devices sent on Found are
// returned by Next.
type FakeBLE struct {
	Found chan Device

	// Errors returned by the matching calls, if set.
	AcquireError error
	StartError   error
	StopError    error
	ReleaseError error

	// Log, if set, receives "ble.acquire", "ble.start", "ble.stop", "ble.release".
	Log *CallLog
}

// NewFakeBLE creates a FakeBLE with a queue of the given capacity.
func NewFakeBLE(capacity int) *FakeBLE {
	return &FakeBLE{Found: make(chan Device, capacity)}
}

// Acquire records the call.
func (f *FakeBLE) Acquire(ctx context.Context) error {
	f.Log.add("ble.acquire")
	return f.AcquireError
}

// Start records the call.
func (f *FakeBLE) Start(ctx context.Context) error {
	f.Log.add("ble.start")
	return f.StartError
}

// Next receives from Found with the given timeout.
func (f *FakeBLE) Next(ctx context.Context, timeout time.Duration) (Device, error) {
	return receive(ctx, f.Found, timeout)
}

// Stop records the call.
func (f *FakeBLE) Stop(ctx context.Context) error {
	f.Log.add("ble.stop")
	return f.StopError
}

// Release records the call.
func (f *FakeBLE) Release(ctx context.Context) error {
	f.Log.add("ble.release")
	return f.ReleaseError
}

// CallLog records calls across fakes in order. A nil *CallLog ignores calls.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *CallLog) add(call string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()
}

// Add records an external call, e.g. from a test observer.
func (l *CallLog) Add(call string) {
	l.add(call)
}

// Calls returns a copy of the recorded calls.
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}
