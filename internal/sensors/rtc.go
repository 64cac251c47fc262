package sensors

import (
	"fmt"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"
)

// RTC is a DS3231 real-time clock.
type RTC struct {
	dev ds3231.Device
}

// NewRTC configures a DS3231 on bus.
func NewRTC(bus drivers.I2C) (*RTC, error) {
	dev := ds3231.New(bus)
	if !dev.Configure() {
		return nil, fmt.Errorf("ds3231: %w", ErrNotPresent)
	}
	return &RTC{dev: dev}, nil
}

// Now reads the current time.
func (r *RTC) Now() (DateTime, error) {
	t, err := r.dev.ReadTime()
	if err != nil {
		return DateTime{}, fmt.Errorf("ds3231 read: %w", err)
	}
	return FromTime(t), nil
}

// Seed sets the clock to t and starts the oscillator.
func (r *RTC) Seed(t time.Time) error {
	if err := r.dev.SetTime(t.UTC()); err != nil {
		return fmt.Errorf("ds3231 set time: %w", err)
	}
	if err := r.dev.SetRunning(true); err != nil {
		return fmt.Errorf("ds3231 start: %w", err)
	}
	return nil
}

// SystemClock reads the host clock. It stands in when no RTC is fitted.
type SystemClock struct {
	now func() time.Time
}

// NewSystemClock returns a clock backed by now, or time.Now when nil.
func NewSystemClock(now func() time.Time) *SystemClock {
	if now == nil {
		now = time.Now
	}
	return &SystemClock{now: now}
}

// Now returns the host time.
func (c *SystemClock) Now() (DateTime, error) {
	return FromTime(c.now()), nil
}
