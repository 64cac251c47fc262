//go:build linux

package gpio

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/devpanel/internal/logic"
)

// RealButton reads a push button from the Linux GPIO character device.
type RealButton struct {
	line  *gpiocdev.Line
	edges chan logic.Edge

	mu     sync.Mutex
	closed bool
}

// NewRealButton requests pin on chip as an input with both-edge events.
// The kernel debounces the line; activeLow inverts a button wired to ground.
func NewRealButton(chip string, pin int, debounce time.Duration, activeLow bool) (*RealButton, error) {
	b := &RealButton{edges: make(chan logic.Edge, edgeBuffer)}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(b.handle),
	}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow, gpiocdev.WithPullUp)
	} else {
		opts = append(opts, gpiocdev.WithPullDown)
	}
	if debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(debounce))
	}

	line, err := gpiocdev.RequestLine(chip, pin, opts...)
	if err != nil {
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}
	b.line = line
	return b, nil
}

// handle runs on the gpiocdev watcher goroutine. It never blocks: edges are
// dropped when the consumer falls behind.
func (b *RealButton) handle(evt gpiocdev.LineEvent) {
	e := logic.Edge{
		Pressed: evt.Type == gpiocdev.LineEventRisingEdge,
		Time:    time.Now(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.edges <- e:
	default:
		log.Printf("gpio: edge buffer full, dropping edge")
	}
}

// Edges returns the edge channel.
func (b *RealButton) Edges() <-chan logic.Edge {
	return b.edges
}

// Close releases the line and closes the edge channel.
func (b *RealButton) Close() error {
	err := b.line.Close()

	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.edges)
	}
	b.mu.Unlock()

	if err != nil {
		return fmt.Errorf("close button line: %w", err)
	}
	return nil
}

// RealOutput is an output line on the Linux GPIO character device.
type RealOutput struct {
	line *gpiocdev.Line
}

// NewRealOutput requests pin on chip as an output driven to initial.
func NewRealOutput(chip string, pin int, initial int) (*RealOutput, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(initial))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	return &RealOutput{line: line}, nil
}

// SetValue drives the line.
func (o *RealOutput) SetValue(v int) error {
	return o.line.SetValue(v)
}

// Close returns the line to an input with pull-down (the boot default) before
// releasing it, so the backlight is left in a known state.
func (o *RealOutput) Close() error {
	var errs []error
	if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure output pin: %w", err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close output pin: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
