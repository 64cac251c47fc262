// Package backlight drives the display backlight level.
package backlight

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Duty extremes toggled by the double-click gesture.
const (
	DutyMax uint8 = 255
	DutyOff uint8 = 0
)

// Driver sets the backlight duty (0 = off, 255 = full).
type Driver interface {
	SetDuty(duty uint8) error
}

// Sysfs drives a Linux backlight class device, e.g.
// /sys/class/backlight/10-0045. Duty is scaled to max_brightness.
type Sysfs struct {
	fs  afero.Fs
	dir string
	max int
}

// NewSysfs opens the backlight device directory and reads max_brightness.
func NewSysfs(fs afero.Fs, dir string) (*Sysfs, error) {
	raw, err := afero.ReadFile(fs, filepath.Join(dir, "max_brightness"))
	if err != nil {
		return nil, fmt.Errorf("read max_brightness: %w", err)
	}
	max, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || max <= 0 {
		return nil, fmt.Errorf("invalid max_brightness %q", strings.TrimSpace(string(raw)))
	}
	return &Sysfs{fs: fs, dir: dir, max: max}, nil
}

// SetDuty writes the scaled brightness.
func (s *Sysfs) SetDuty(duty uint8) error {
	level := int(duty) * s.max / int(DutyMax)
	path := filepath.Join(s.dir, "brightness")
	if err := afero.WriteFile(s.fs, path, []byte(strconv.Itoa(level)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write brightness: %w", err)
	}
	return nil
}

// LineSetter is a GPIO output line (see gpio.Output).
type LineSetter interface {
	SetValue(v int) error
}

// Line drives a backlight enable line: any non-zero duty switches it on.
type Line struct {
	line LineSetter
}

// NewLine creates a line driver.
func NewLine(line LineSetter) *Line {
	return &Line{line: line}
}

// SetDuty switches the line.
func (l *Line) SetDuty(duty uint8) error {
	v := 0
	if duty > 0 {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("set backlight line: %w", err)
	}
	return nil
}

// Fake records duty changes for test assertions.
type Fake struct {
	mu     sync.Mutex
	Duties []uint8
	Err    error
}

// SetDuty records duty, or returns Err when set.
func (f *Fake) SetDuty(duty uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Duties = append(f.Duties, duty)
	return nil
}

// History returns a copy of the recorded duties.
func (f *Fake) History() []uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint8(nil), f.Duties...)
}
