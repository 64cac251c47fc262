// Package mqtt mirrors the panel display and lifecycle events to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/devpanel/internal/ui"
)

// Topic suffixes below the configured prefix.
const (
	topicUI     = "ui"
	topicSystem = "system"
)

// Topics builds topic names below a prefix, e.g. "devpanel/ui/clock".
type Topics struct {
	Prefix string
}

// Field returns the retained text topic for f.
func (t Topics) Field(f ui.Field) string {
	return t.Prefix + "/" + topicUI + "/" + string(f)
}

// Image returns the retained image path topic.
func (t Topics) Image() string {
	return t.Prefix + "/" + topicUI + "/image"
}

// Carousel returns the carousel state topic.
func (t Topics) Carousel() string {
	return t.Prefix + "/" + topicUI + "/carousel"
}

// System returns the lifecycle event topic.
func (t Topics) System() string {
	return t.Prefix + "/" + topicSystem
}

// Message is one MQTT publication.
type Message struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

// Publisher publishes messages to MQTT.
type Publisher interface {
	// Publish sends a message to the broker. Failures are returned, never fatal.
	Publish(msg Message) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// CarouselPayload is the JSON body of a carousel update.
type CarouselPayload struct {
	Slide      int  `json:"slide"`
	Scrollable bool `json:"scrollable"`
	ScrollBy   int  `json:"scroll_by,omitempty"`
	Animate    bool `json:"animate,omitempty"`
}

// FormatCarousel creates the JSON payload for a carousel update.
func FormatCarousel(p CarouselPayload) []byte {
	b, _ := json.Marshal(p)
	return b
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
