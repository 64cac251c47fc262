// Package status provides a thread-safe status tracker for the devpanel daemon.
// The tracker is a display backend, so it always holds what the panel shows,
// and is read by the HTTP handlers and the MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/devpanel/internal/logic"
	"github.com/sweeney/devpanel/internal/ui"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Session       string
	Broker        string
	Prefix        string
	HTTPAddr      string
	WSBroker      string // Websocket broker URL for browser MQTT (empty = disabled)
	UI            string
	ButtonPin     int
	DoubleClickMs int
	LongPressMs   int
	StepMs        int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Fields        map[ui.Field]string
	Image         string
	Slide         int
	Scrollable    bool
	Radio         string
	Gestures      logic.GestureCounts
	Devices       []string
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Field returns the text of f.
func (s Snapshot) Field(f ui.Field) string {
	return s.Fields[f]
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Fields:     make(map[ui.Field]string),
			Scrollable: true,
			Radio:      "UNKNOWN",
			StartTime:  startTime,
			Config:     cfg,
		},
	}
}

// SetText records a field update.
func (t *Tracker) SetText(f ui.Field, text string) {
	t.mu.Lock()
	t.snap.Fields[f] = text
	t.mu.Unlock()
}

// ShowImage records the image path.
func (t *Tracker) ShowImage(path string) {
	t.mu.Lock()
	t.snap.Image = path
	t.mu.Unlock()
}

// SetScrollable records the carousel scroll state.
func (t *Tracker) SetScrollable(on bool) {
	t.mu.Lock()
	t.snap.Scrollable = on
	t.mu.Unlock()
}

// ShowSlide records the visible slide.
func (t *Tracker) ShowSlide(n int) {
	t.mu.Lock()
	t.snap.Slide = n
	t.mu.Unlock()
}

// ScrollBy is a transition only; there is no state to record.
func (t *Tracker) ScrollBy(dx int, animate bool) {}

// SetRadio records the radio ownership state.
func (t *Tracker) SetRadio(state string) {
	t.mu.Lock()
	t.snap.Radio = state
	t.mu.Unlock()
}

// RecordGesture counts a handled gesture (or an idle cycle).
func (t *Tracker) RecordGesture(g logic.Gesture) {
	t.mu.Lock()
	t.snap.Gestures.Add(g)
	t.mu.Unlock()
}

// SetDevices records the addresses found by the BLE survey.
func (t *Tracker) SetDevices(addrs []string) {
	t.mu.Lock()
	t.snap.Devices = append([]string(nil), addrs...)
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Fields = make(map[ui.Field]string, len(t.snap.Fields))
	for f, text := range t.snap.Fields {
		s.Fields[f] = text
	}
	s.Devices = append([]string(nil), t.snap.Devices...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
