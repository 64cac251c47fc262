//go:build !linux

package storage

import "errors"

// Capacity is not available on non-Linux platforms.
func Capacity(path string) (uint64, error) {
	return 0, errors.New("storage: statfs not supported on this platform")
}
