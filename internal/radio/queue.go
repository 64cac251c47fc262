package radio

import (
	"context"
	"time"
)

// receive takes one device from q, waiting at most timeout.
func receive(ctx context.Context, q <-chan Device, timeout time.Duration) (Device, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case d, ok := <-q:
		if !ok {
			return Device{}, ErrTimeout
		}
		return d, nil
	case <-timer.C:
		return Device{}, ErrTimeout
	case <-ctx.Done():
		return Device{}, ctx.Err()
	}
}

// offer enqueues d without blocking and reports whether it fit.
func offer(q chan<- Device, d Device) bool {
	select {
	case q <- d:
		return true
	default:
		return false
	}
}
