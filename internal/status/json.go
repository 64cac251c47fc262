package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/devpanel/internal/ui"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string            `json:"event,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Session       string            `json:"session"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	StartTime     string            `json:"start_time"`
	Timestamp     string            `json:"timestamp"`
	Radio         string            `json:"radio"`
	Fields        map[string]string `json:"fields"`
	Image         string            `json:"image,omitempty"`
	Carousel      CarouselJSON      `json:"carousel"`
	Gestures      GesturesJSON      `json:"gestures"`
	Devices       []string          `json:"ble_devices,omitempty"`
	MQTT          MQTTStatus        `json:"mqtt"`
	Network       *NetworkJSON      `json:"network,omitempty"`
	Config        *ConfigJSON       `json:"config,omitempty"`
}

// CarouselJSON reports the carousel state.
type CarouselJSON struct {
	Slide      int  `json:"slide"`
	Scrollable bool `json:"scrollable"`
}

// GesturesJSON is the JSON representation of gesture counts.
type GesturesJSON struct {
	SingleClick int `json:"single_click"`
	DoubleClick int `json:"double_click"`
	LongPress   int `json:"long_press"`
	Idle        int `json:"idle"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Broker        string `json:"broker"`
	Prefix        string `json:"prefix"`
	HTTPAddr      string `json:"http_addr"`
	WSBroker      string `json:"ws_broker,omitempty"`
	UI            string `json:"ui"`
	ButtonPin     int    `json:"button_pin"`
	DoubleClickMs int    `json:"double_click_ms"`
	LongPressMs   int    `json:"long_press_ms"`
	StepMs        int    `json:"step_ms"`
}

func buildInner(snap Snapshot) StatusInner {
	fields := make(map[string]string, len(ui.Fields))
	for _, f := range ui.Fields {
		fields[string(f)] = snap.Fields[f]
	}

	inner := StatusInner{
		Session:       snap.Config.Session,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Radio:         snap.Radio,
		Fields:        fields,
		Image:         snap.Image,
		Carousel:      CarouselJSON{Slide: snap.Slide, Scrollable: snap.Scrollable},
		Gestures: GesturesJSON{
			SingleClick: snap.Gestures.SingleClick,
			DoubleClick: snap.Gestures.DoubleClick,
			LongPress:   snap.Gestures.LongPress,
			Idle:        snap.Gestures.Idle,
		},
		Devices: snap.Devices,
		MQTT:    MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

func buildConfig(snap Snapshot) *ConfigJSON {
	return &ConfigJSON{
		Broker:        snap.Config.Broker,
		Prefix:        snap.Config.Prefix,
		HTTPAddr:      snap.Config.HTTPAddr,
		WSBroker:      snap.Config.WSBroker,
		UI:            snap.Config.UI,
		ButtonPin:     snap.Config.ButtonPin,
		DoubleClickMs: snap.Config.DoubleClickMs,
		LongPressMs:   snap.Config.LongPressMs,
		StepMs:        snap.Config.StepMs,
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	inner.Config = buildConfig(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
// Only STARTUP carries the config.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	if event == "STARTUP" {
		inner.Config = buildConfig(snap)
	}

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
