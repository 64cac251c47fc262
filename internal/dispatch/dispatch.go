// Package dispatch routes button gestures to their handlers: show the
// stored image, toggle the backlight, or run the storage self-test.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/devpanel/internal/backlight"
	"github.com/sweeney/devpanel/internal/events"
	"github.com/sweeney/devpanel/internal/logic"
	"github.com/sweeney/devpanel/internal/storage"
	"github.com/sweeney/devpanel/internal/ui"
)

// Self-test result texts.
const (
	TextPass = "sd Test Pass"
	TextFail = "sd Test Fail"
)

// DefaultWait bounds each wait for a gesture.
const DefaultWait = 2500 * time.Millisecond

// DefaultPattern is the self-test payload prefix.
const DefaultPattern = "devpanel self test"

// readLimit caps the self-test read back.
const readLimit = 50

// ErrMismatch reports a self-test read back that differs from what was written.
var ErrMismatch = errors.New("dispatch: read back mismatch")

// Config holds the dispatcher's paths and timing.
type Config struct {
	Wait      time.Duration
	ImagePath string
	TestPath  string
	Pattern   string
}

func (c *Config) applyDefaults() {
	if c.Wait <= 0 {
		c.Wait = DefaultWait
	}
	if c.ImagePath == "" {
		c.ImagePath = storage.DefaultImagePath
	}
	if c.TestPath == "" {
		c.TestPath = storage.DefaultTestPath
	}
	if c.Pattern == "" {
		c.Pattern = DefaultPattern
	}
}

// Dispatcher waits on the key bits and runs one handler per cycle.
type Dispatcher struct {
	cfg   Config
	keys  *events.Group
	sink  ui.Sink
	store storage.Store
	light backlight.Driver

	// OnGesture, if set, is called with the gesture of every cycle,
	// including GestureNone for idle cycles.
	OnGesture func(logic.Gesture)

	duty    uint8
	counter uint32
}

// New creates a dispatcher. The backlight is assumed to start fully on.
func New(cfg Config, keys *events.Group, sink ui.Sink, store storage.Store, light backlight.Driver) *Dispatcher {
	cfg.applyDefaults()
	return &Dispatcher{
		cfg:   cfg,
		keys:  keys,
		sink:  sink,
		store: store,
		light: light,
		duty:  backlight.DutyMax,
	}
}

// Run loops until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for ctx.Err() == nil {
		d.Step(ctx)
	}
}

// Step runs one wait cycle and returns the gesture it handled.
// Only the highest priority gesture is handled when several are pending;
// the others are cleared with it.
func (d *Dispatcher) Step(ctx context.Context) logic.Gesture {
	bits := d.keys.Wait(ctx, events.KeyGestures, events.WaitOptions{Clear: true}, d.cfg.Wait)
	if ctx.Err() != nil {
		return logic.GestureNone
	}
	g := events.Decode(bits)
	switch g {
	case logic.GestureSingleClick:
		if err := d.ShowImage(); err != nil {
			log.Printf("dispatch: show image: %v", err)
		}
	case logic.GestureDoubleClick:
		if err := d.ToggleBacklight(); err != nil {
			log.Printf("dispatch: backlight: %v", err)
		}
	case logic.GestureLongPress:
		if err := d.SelfTest(); err != nil {
			log.Printf("dispatch: self test: %v", err)
		}
	default:
		d.sink.SetText(ui.FieldSelfTest, "")
	}
	if d.OnGesture != nil {
		d.OnGesture(g)
	}
	return g
}

// ShowImage displays the configured image. A missing file leaves the
// current image in place.
func (d *Dispatcher) ShowImage() error {
	if !d.store.Exists(d.cfg.ImagePath) {
		return fmt.Errorf("%s: %w", d.cfg.ImagePath, storage.ErrNotExist)
	}
	d.sink.ShowImage(d.cfg.ImagePath)
	return nil
}

// ToggleBacklight switches between full duty and off.
func (d *Dispatcher) ToggleBacklight() error {
	next := backlight.DutyOff
	if d.duty != backlight.DutyMax {
		next = backlight.DutyMax
	}
	if err := d.light.SetDuty(next); err != nil {
		return err
	}
	d.duty = next
	log.Printf("dispatch: backlight duty %d", next)
	return nil
}

// Duty returns the last duty written to the backlight.
func (d *Dispatcher) Duty() uint8 {
	return d.duty
}

// SelfTest writes the pattern with the next counter value, reads it back
// and reports the outcome on the self-test field.
func (d *Dispatcher) SelfTest() error {
	d.counter++
	want := fmt.Sprintf("%s : %d", d.cfg.Pattern, d.counter)

	err := d.store.WriteText(d.cfg.TestPath, want)
	if err == nil {
		var got string
		got, err = d.store.ReadText(d.cfg.TestPath, readLimit)
		if err == nil && got != want {
			err = fmt.Errorf("wrote %q, read %q: %w", want, got, ErrMismatch)
		}
	}
	if err != nil {
		d.sink.SetText(ui.FieldSelfTest, TextFail)
		return err
	}
	log.Printf("dispatch: self test %d passed", d.counter)
	d.sink.SetText(ui.FieldSelfTest, TextPass)
	return nil
}
