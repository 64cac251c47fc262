// Package gpio provides the panel's button input and backlight output lines
// with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

import "github.com/sweeney/devpanel/internal/logic"

// EdgeSource delivers debounced button transitions in logical form
// (Pressed = true when the button is held down).
type EdgeSource interface {
	Edges() <-chan logic.Edge

	// Close releases GPIO resources and closes the edge channel.
	Close() error
}

// Output is a GPIO output line.
type Output interface {
	SetValue(v int) error
	Close() error
}

// Defaults (BCM numbering on gpiochip0).
const (
	DefaultChip         = "gpiochip0"
	DefaultPinButton    = 17
	DefaultPinBacklight = 18
	edgeBuffer          = 16
)
