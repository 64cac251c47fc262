// Package anim plays the start-up slide sequence on the display carousel.
package anim

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/devpanel/internal/ui"
)

// Sequence defaults.
const (
	DefaultDwell  = 1500 * time.Millisecond
	DefaultSlides = 3
	ScrollOffset  = -320
)

// Intro shows each slide in turn with scrolling disabled, then re-enables
// scrolling and slides the carousel one page.
type Intro struct {
	Carousel ui.Carousel
	Dwell    time.Duration
	Slides   int
	Offset   int

	// After, if set, replaces time.After for the dwell waits.
	After func(time.Duration) <-chan time.Time
}

// NewIntro creates the default three-slide intro.
func NewIntro(c ui.Carousel) *Intro {
	return &Intro{
		Carousel: c,
		Dwell:    DefaultDwell,
		Slides:   DefaultSlides,
		Offset:   ScrollOffset,
	}
}

// Run plays the sequence once. It stops early, leaving scrolling enabled,
// when ctx is done.
func (a *Intro) Run(ctx context.Context) {
	after := a.After
	if after == nil {
		after = time.After
	}

	a.Carousel.SetScrollable(false)
	for n := 1; n <= a.Slides; n++ {
		a.Carousel.ShowSlide(n)
		select {
		case <-after(a.Dwell):
		case <-ctx.Done():
			log.Printf("anim: interrupted at slide %d", n)
			a.Carousel.SetScrollable(true)
			return
		}
	}
	a.Carousel.SetScrollable(true)
	a.Carousel.ScrollBy(a.Offset, true)
	log.Printf("anim: intro done")
}
