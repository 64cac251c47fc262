//go:build !linux

package sensors

import (
	"errors"

	"periph.io/x/conn/v3/i2c"
)

// OpenBus is not supported on non-Linux platforms.
func OpenBus(name string) (i2c.BusCloser, error) {
	return nil, errors.New("i2c not supported on this platform")
}
