//go:build linux

package storage

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Capacity returns the total size of the filesystem holding path.
func Capacity(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return st.Blocks * uint64(st.Bsize), nil
}
