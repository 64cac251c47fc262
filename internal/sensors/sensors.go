// Package sensors reads the board's clock, motion and battery sensors.
package sensors

import (
	"errors"
	"time"
)

// ErrNotPresent reports a sensor that did not answer at start-up.
var ErrNotPresent = errors.New("sensors: device not present")

// DateTime is a broken-down calendar time as kept by the RTC.
type DateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// FromTime converts t to a DateTime.
func FromTime(t time.Time) DateTime {
	return DateTime{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// Vec3 is a three-axis reading.
type Vec3 struct {
	X, Y, Z float64
}

// Clock reads wall-clock time.
type Clock interface {
	Now() (DateTime, error)
}

// Motion reads acceleration in g and angular rate in degrees per second.
type Motion interface {
	Accel() (Vec3, error)
	Gyro() (Vec3, error)
}

// Battery reads the battery voltage in volts. Zero means no battery.
type Battery interface {
	Voltage() (float64, error)
}
