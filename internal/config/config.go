// Package config loads the devpanel YAML configuration.
package config

// Config is the root of the configuration file.
type Config struct {
	Panel     PanelConfig     `yaml:"panel"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Button    ButtonConfig    `yaml:"button"`
	Backlight BacklightConfig `yaml:"backlight"`
	Storage   StorageConfig   `yaml:"storage"`
	Radio     RadioConfig     `yaml:"radio"`
	Sensors   SensorsConfig   `yaml:"sensors"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Intro     IntroConfig     `yaml:"intro"`
}

// ---- PANEL ----

// PanelConfig selects the local display and status surfaces.
type PanelConfig struct {
	HTTP string `yaml:"http"` // status server address, "none" disables
	UI   string `yaml:"ui"`   // "tui" or "headless"
}

// UI modes.
const (
	UITerminal = "tui"
	UIHeadless = "headless"
)

// ---- MQTT ----

// MQTTConfig configures the display mirror.
type MQTTConfig struct {
	Broker string `yaml:"broker"` // "" disables
	Prefix string `yaml:"prefix"`
	Buffer int    `yaml:"buffer"` // messages held while disconnected
}

// ---- BUTTON ----

// ButtonConfig configures the gesture button line.
type ButtonConfig struct {
	Chip          string `yaml:"chip"`
	Pin           int    `yaml:"pin"`
	ActiveLow     bool   `yaml:"active_low"`
	DebounceMs    int    `yaml:"debounce_ms"`
	DoubleClickMs int    `yaml:"double_click_ms"`
	LongPressMs   int    `yaml:"long_press_ms"`
}

// ---- BACKLIGHT ----

// BacklightConfig selects the backlight driver. Sysfs wins over GPIO.
type BacklightConfig struct {
	Sysfs   string `yaml:"sysfs"`    // e.g. /sys/class/backlight/10-0045
	GPIOPin *int   `yaml:"gpio_pin"` // enable line on Button.Chip
}

// ---- STORAGE ----

// StorageConfig holds the storage paths and the self-test payload.
type StorageConfig struct {
	Root        string `yaml:"root"`
	Image       string `yaml:"image"`
	TestFile    string `yaml:"test_file"`
	Pattern     string `yaml:"pattern"`
	MountWaitMs int    `yaml:"mount_wait_ms"`
}

// ---- RADIO ----

// RadioConfig configures both radio stacks and the survey timing.
type RadioConfig struct {
	WifiInterface  string `yaml:"wifi_interface"` // "none" disables Wi-Fi
	WifiDisconnect bool   `yaml:"wifi_disconnect"`
	BLEAdapter     string `yaml:"ble_adapter"` // "none" disables BLE
	QueueSize      int    `yaml:"queue_size"`
	WifiWaitMs     int    `yaml:"wifi_wait_ms"`
	ItemWaitMs     int    `yaml:"item_wait_ms"`
	PacingMs       int    `yaml:"pacing_ms"`
}

// ---- SENSORS ----

// SensorsConfig configures the I2C sensors and the battery source.
type SensorsConfig struct {
	I2CBus     string        `yaml:"i2c_bus"` // periph bus name, "" for the first
	RTC        bool          `yaml:"rtc"`
	SeedRTC    bool          `yaml:"seed_rtc"`
	IMU        bool          `yaml:"imu"`
	IMUAddress uint16        `yaml:"imu_address"`
	Battery    BatteryConfig `yaml:"battery"`
}

// BatteryConfig selects the battery voltage source.
type BatteryConfig struct {
	Source string `yaml:"source"` // "iio", "modbus" or "none"

	IIODevice  string  `yaml:"iio_device"`
	IIOChannel int     `yaml:"iio_channel"`
	Divider    float64 `yaml:"divider"`

	ModbusEndpoint  string `yaml:"modbus_endpoint"`
	ModbusUnitID    uint8  `yaml:"modbus_unit_id"`
	ModbusRegister  uint16 `yaml:"modbus_register"`
	ModbusTimeoutMs int    `yaml:"modbus_timeout_ms"`
}

// Battery sources.
const (
	BatteryNone   = "none"
	BatteryIIO    = "iio"
	BatteryModbus = "modbus"
)

// ---- TELEMETRY / INTRO ----

// TelemetryConfig sets the telemetry tick period.
type TelemetryConfig struct {
	StepMs int `yaml:"step_ms"`
}

// IntroConfig sets the start-up slide dwell.
type IntroConfig struct {
	DwellMs int `yaml:"dwell_ms"`
}
