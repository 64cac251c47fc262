package ui

import (
	"fmt"
	"sync"
)

// FakeBackend records display operations for test assertions.
type FakeBackend struct {
	mu sync.Mutex

	// Ops contains every operation in call order, e.g. "text clock=...",
	// "image /sdcard/1.jpg", "scrollable false", "slide 2", "scroll -320 true".
	Ops []string

	// Texts holds the latest text per field.
	Texts map[Field]string

	// Images contains every ShowImage path.
	Images []string
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{Texts: make(map[Field]string)}
}

func (f *FakeBackend) record(op string) {
	f.Ops = append(f.Ops, op)
}

// SetText records a text update.
func (f *FakeBackend) SetText(field Field, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Texts[field] = text
	f.record(fmt.Sprintf("text %s=%s", field, text))
}

// ShowImage records an image update.
func (f *FakeBackend) ShowImage(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Images = append(f.Images, path)
	f.record("image " + path)
}

// SetScrollable records a scroll toggle.
func (f *FakeBackend) SetScrollable(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("scrollable %v", on))
}

// ShowSlide records a slide change.
func (f *FakeBackend) ShowSlide(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("slide %d", n))
}

// ScrollBy records a scroll.
func (f *FakeBackend) ScrollBy(dx int, animate bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("scroll %d %v", dx, animate))
}

// Text returns the latest text for field.
func (f *FakeBackend) Text(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Texts[field]
}

// TextUpdates returns every recorded text for field, in order.
func (f *FakeBackend) TextUpdates(field Field) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := fmt.Sprintf("text %s=", field)
	var out []string
	for _, op := range f.Ops {
		if len(op) >= len(prefix) && op[:len(prefix)] == prefix {
			out = append(out, op[len(prefix):])
		}
	}
	return out
}

// Snapshot returns a copy of the recorded operations.
func (f *FakeBackend) Snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Ops...)
}

// ImageCount returns the number of ShowImage calls.
func (f *FakeBackend) ImageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Images)
}
