package ui

import (
	"log"
	"sync"
)

// Surface is the single image surface shared by every image update.
type Surface struct {
	Path string
}

// Display serialises every display mutation behind one lock and fans it out
// to the configured backends. Tasks run in parallel, so the lock replaces the
// one-handler-at-a-time scheduling a single-core display loop would give.
type Display struct {
	mu       sync.Mutex
	backends []Backend
	texts    map[Field]string
	surface  *Surface
	allocs   int
	slide    int
	scroll   bool
}

// NewDisplay creates a display rendering to the given backends.
func NewDisplay(backends ...Backend) *Display {
	return &Display{
		backends: backends,
		texts:    make(map[Field]string),
		scroll:   true,
	}
}

// Attach adds a backend. Existing text is replayed to it.
func (d *Display) Attach(b Backend) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.backends = append(d.backends, b)
	for _, f := range Fields {
		if text, ok := d.texts[f]; ok {
			b.SetText(f, text)
		}
	}
	if d.surface != nil {
		b.ShowImage(d.surface.Path)
	}
}

// SetText sets a field, clipped to its display limit.
func (d *Display) SetText(f Field, text string) {
	text = Clip(f, text)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.texts[f] = text
	for _, b := range d.backends {
		b.SetText(f, text)
	}
}

// ShowImage points the image surface at path, allocating the surface on
// first use and reusing it afterwards.
func (d *Display) ShowImage(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.surface == nil {
		d.surface = &Surface{}
		d.allocs++
		log.Printf("ui: image surface created")
	}
	d.surface.Path = path
	for _, b := range d.backends {
		b.ShowImage(path)
	}
}

// SetScrollable enables or disables carousel scrolling.
func (d *Display) SetScrollable(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scroll = on
	for _, b := range d.backends {
		b.SetScrollable(on)
	}
}

// ShowSlide reveals slide n and hides the others.
func (d *Display) ShowSlide(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slide = n
	for _, b := range d.backends {
		b.ShowSlide(n)
	}
}

// ScrollBy scrolls the carousel horizontally.
func (d *Display) ScrollBy(dx int, animate bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range d.backends {
		b.ScrollBy(dx, animate)
	}
}

// Text returns the current text of f.
func (d *Display) Text(f Field) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.texts[f]
}

// Image returns the path shown on the image surface, or "" if none.
func (d *Display) Image() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.surface == nil {
		return ""
	}
	return d.surface.Path
}

// Carousel returns the visible slide and whether scrolling is enabled.
func (d *Display) Carousel() (slide int, scrollable bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slide, d.scroll
}

// SurfaceAllocs returns how many image surfaces have been allocated.
func (d *Display) SurfaceAllocs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocs
}
