package logic

import "time"

// Default gesture timings.
const (
	DefaultDoubleClickWindow = 300 * time.Millisecond
	DefaultLongPress         = 1 * time.Second
)

// Classifier turns debounced press/release edges into gestures.
//
// A release completes a click. A second click within the double-click window
// yields a double click; a lone click yields a single click once the window
// has expired (observed through Tick). Holding the button past the long-press
// threshold yields a long press, and the release that ends it is swallowed.
type Classifier struct {
	doubleWindow time.Duration
	longPress    time.Duration

	pressed     bool
	pressedAt   time.Time
	longFired   bool
	clicks      int
	lastRelease time.Time
}

// NewClassifier creates a classifier. Non-positive durations fall back to the defaults.
func NewClassifier(doubleWindow, longPress time.Duration) *Classifier {
	if doubleWindow <= 0 {
		doubleWindow = DefaultDoubleClickWindow
	}
	if longPress <= 0 {
		longPress = DefaultLongPress
	}
	return &Classifier{doubleWindow: doubleWindow, longPress: longPress}
}

// Edge feeds one transition and returns the gesture it completes, if any.
func (c *Classifier) Edge(e Edge) Gesture {
	if e.Pressed {
		if c.pressed {
			return GestureNone
		}
		// A press arriving after the window closed starts a fresh sequence;
		// the pending single click is resolved by Tick first.
		g := c.Tick(e.Time)
		c.pressed = true
		c.pressedAt = e.Time
		c.longFired = false
		return g
	}

	if !c.pressed {
		return GestureNone
	}
	c.pressed = false

	if c.longFired || e.Time.Sub(c.pressedAt) >= c.longPress {
		fired := c.longFired
		c.longFired = false
		c.clicks = 0
		if fired {
			return GestureNone
		}
		return GestureLongPress
	}

	c.clicks++
	c.lastRelease = e.Time
	if c.clicks >= 2 {
		c.clicks = 0
		return GestureDoubleClick
	}
	return GestureNone
}

// Tick advances time without an edge. It reports a long press while the
// button is still held and a single click once the double-click window
// closes without a second click.
func (c *Classifier) Tick(now time.Time) Gesture {
	if c.pressed {
		if !c.longFired && now.Sub(c.pressedAt) >= c.longPress {
			c.longFired = true
			c.clicks = 0
			return GestureLongPress
		}
		return GestureNone
	}
	if c.clicks == 1 && now.Sub(c.lastRelease) >= c.doubleWindow {
		c.clicks = 0
		return GestureSingleClick
	}
	return GestureNone
}

// Pending reports whether a click is waiting for the double-click window.
func (c *Classifier) Pending() bool {
	return c.clicks > 0 || c.pressed
}
