// Package logic contains pure decision logic for the panel daemon.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Gesture is a semantic button gesture produced from raw press/release edges.
type Gesture int

const (
	GestureNone Gesture = iota
	GestureSingleClick
	GestureDoubleClick
	GestureLongPress
)

func (g Gesture) String() string {
	switch g {
	case GestureSingleClick:
		return "SINGLE_CLICK"
	case GestureDoubleClick:
		return "DOUBLE_CLICK"
	case GestureLongPress:
		return "LONG_PRESS"
	default:
		return "NONE"
	}
}

// Edge is a single debounced button transition.
type Edge struct {
	Pressed bool
	Time    time.Time
}

// GestureCounts tracks the number of each gesture since startup.
type GestureCounts struct {
	SingleClick int
	DoubleClick int
	LongPress   int
	Idle        int
}

// Add increments the counter for g. GestureNone counts as an idle cycle.
func (c *GestureCounts) Add(g Gesture) {
	switch g {
	case GestureSingleClick:
		c.SingleClick++
	case GestureDoubleClick:
		c.DoubleClick++
	case GestureLongPress:
		c.LongPress++
	default:
		c.Idle++
	}
}
