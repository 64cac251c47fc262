//go:build !linux

package gpio

import (
	"errors"
	"time"

	"github.com/sweeney/devpanel/internal/logic"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealButton is not available on non-Linux platforms.
type RealButton struct{}

// NewRealButton returns an error on non-Linux platforms.
func NewRealButton(chip string, pin int, debounce time.Duration, activeLow bool) (*RealButton, error) {
	return nil, errUnsupported
}

// Edges is not implemented on non-Linux platforms.
func (b *RealButton) Edges() <-chan logic.Edge { return nil }

// Close is not implemented on non-Linux platforms.
func (b *RealButton) Close() error { return nil }

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// NewRealOutput returns an error on non-Linux platforms.
func NewRealOutput(chip string, pin int, initial int) (*RealOutput, error) {
	return nil, errUnsupported
}

// SetValue is not implemented on non-Linux platforms.
func (o *RealOutput) SetValue(v int) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (o *RealOutput) Close() error { return nil }
