package config

import (
	"strings"
	"time"

	"github.com/sweeney/devpanel/internal/anim"
	"github.com/sweeney/devpanel/internal/dispatch"
	"github.com/sweeney/devpanel/internal/gpio"
	"github.com/sweeney/devpanel/internal/radio"
	"github.com/sweeney/devpanel/internal/scan"
	"github.com/sweeney/devpanel/internal/sensors"
	"github.com/sweeney/devpanel/internal/storage"
	"github.com/sweeney/devpanel/internal/telemetry"
)

// Disabled turns off an optional radio stack.
const Disabled = "none"

// Default values not owned by another package.
const (
	DefaultHTTP          = ":80"
	DefaultPrefix        = "devpanel"
	DefaultBuffer        = 100
	DefaultDebounceMs    = 10
	DefaultDoubleClickMs = 300
	DefaultLongPressMs   = 1000
	DefaultModbusTimeout = 1000
)

// Normalize fills in defaults. It must be called only after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Panel.HTTP == "" {
		cfg.Panel.HTTP = DefaultHTTP
	}
	if cfg.Panel.UI == "" {
		cfg.Panel.UI = UIHeadless
	}

	if cfg.MQTT.Prefix == "" {
		cfg.MQTT.Prefix = DefaultPrefix
	}
	cfg.MQTT.Prefix = strings.TrimSuffix(cfg.MQTT.Prefix, "/")
	if cfg.MQTT.Buffer == 0 {
		cfg.MQTT.Buffer = DefaultBuffer
	}

	b := &cfg.Button
	if b.Chip == "" {
		b.Chip = gpio.DefaultChip
	}
	b.Pin = buttonPin(b.Pin)
	if b.DebounceMs == 0 {
		b.DebounceMs = DefaultDebounceMs
	}
	if b.DoubleClickMs == 0 {
		b.DoubleClickMs = DefaultDoubleClickMs
	}
	if b.LongPressMs == 0 {
		b.LongPressMs = DefaultLongPressMs
	}

	s := &cfg.Storage
	if s.Root == "" {
		s.Root = storage.DefaultRoot
	}
	if s.Image == "" {
		s.Image = storage.DefaultImagePath
	}
	if s.TestFile == "" {
		s.TestFile = storage.DefaultTestPath
	}
	if s.Pattern == "" {
		s.Pattern = dispatch.DefaultPattern
	}
	if s.MountWaitMs == 0 {
		s.MountWaitMs = int(storage.DefaultMountWait / time.Millisecond)
	}

	r := &cfg.Radio
	if r.WifiInterface == "" {
		r.WifiInterface = radio.DefaultInterface
	}
	if r.BLEAdapter == "" {
		r.BLEAdapter = radio.DefaultAdapter
	}
	if r.QueueSize == 0 {
		r.QueueSize = radio.DefaultQueueSize
	}
	if r.WifiWaitMs == 0 {
		r.WifiWaitMs = int(scan.DefaultWifiWait / time.Millisecond)
	}
	if r.ItemWaitMs == 0 {
		r.ItemWaitMs = int(scan.DefaultItemWait / time.Millisecond)
	}
	if r.PacingMs == 0 {
		r.PacingMs = int(scan.DefaultPacing / time.Millisecond)
	}

	sn := &cfg.Sensors
	if sn.IMUAddress == 0 {
		sn.IMUAddress = sensors.QMI8658Address
	}
	bat := &sn.Battery
	if bat.Source == "" {
		bat.Source = BatteryNone
	}
	if bat.IIODevice == "" {
		bat.IIODevice = sensors.DefaultIIODevice
	}
	if bat.Divider == 0 {
		bat.Divider = 1
	}
	if bat.ModbusTimeoutMs == 0 {
		bat.ModbusTimeoutMs = DefaultModbusTimeout
	}

	if cfg.Telemetry.StepMs == 0 {
		cfg.Telemetry.StepMs = int(telemetry.DefaultStep / time.Millisecond)
	}
	if cfg.Intro.DwellMs == 0 {
		cfg.Intro.DwellMs = int(anim.DefaultDwell / time.Millisecond)
	}
}

// Millis converts a millisecond count from the file to a duration.
func Millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
