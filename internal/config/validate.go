package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sweeney/devpanel/internal/gpio"
)

// maxPatternLen keeps the self-test payload within one read back.
const maxPatternLen = 32

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	switch cfg.Panel.UI {
	case "", UITerminal, UIHeadless:
	default:
		return fmt.Errorf("panel.ui %q: want %q or %q", cfg.Panel.UI, UITerminal, UIHeadless)
	}

	if err := ValidateBroker(cfg.MQTT.Broker); err != nil {
		return fmt.Errorf("mqtt.broker %w", err)
	}
	if strings.ContainsAny(cfg.MQTT.Prefix, "#+") {
		return fmt.Errorf("mqtt.prefix %q: wildcards not allowed", cfg.MQTT.Prefix)
	}
	if cfg.MQTT.Buffer < 0 {
		return fmt.Errorf("mqtt.buffer must be >= 0")
	}

	if cfg.Button.Pin < 0 {
		return fmt.Errorf("button.pin must be >= 0")
	}
	if cfg.Backlight.GPIOPin != nil {
		if *cfg.Backlight.GPIOPin < 0 {
			return fmt.Errorf("backlight.gpio_pin must be >= 0")
		}
		if button := buttonPin(cfg.Button.Pin); *cfg.Backlight.GPIOPin == button {
			return fmt.Errorf("backlight.gpio_pin %d is the button pin", button)
		}
	}

	if len(cfg.Storage.Pattern) > maxPatternLen {
		return fmt.Errorf("storage.pattern longer than %d characters", maxPatternLen)
	}

	for name, v := range map[string]int{
		"button.debounce_ms":                cfg.Button.DebounceMs,
		"button.double_click_ms":            cfg.Button.DoubleClickMs,
		"button.long_press_ms":              cfg.Button.LongPressMs,
		"storage.mount_wait_ms":             cfg.Storage.MountWaitMs,
		"radio.queue_size":                  cfg.Radio.QueueSize,
		"radio.wifi_wait_ms":                cfg.Radio.WifiWaitMs,
		"radio.item_wait_ms":                cfg.Radio.ItemWaitMs,
		"radio.pacing_ms":                   cfg.Radio.PacingMs,
		"sensors.battery.modbus_timeout_ms": cfg.Sensors.Battery.ModbusTimeoutMs,
		"telemetry.step_ms":                 cfg.Telemetry.StepMs,
		"intro.dwell_ms":                    cfg.Intro.DwellMs,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}

	if cfg.Button.DoubleClickMs > 0 && cfg.Button.LongPressMs > 0 && cfg.Button.DoubleClickMs >= cfg.Button.LongPressMs {
		return fmt.Errorf("button.double_click_ms must be shorter than button.long_press_ms")
	}

	b := cfg.Sensors.Battery
	switch b.Source {
	case "", BatteryNone, BatteryIIO:
	case BatteryModbus:
		if b.ModbusEndpoint == "" {
			return fmt.Errorf("sensors.battery: modbus source requires modbus_endpoint")
		}
	default:
		return fmt.Errorf("sensors.battery.source %q: want iio, modbus or none", b.Source)
	}
	if b.Divider < 0 {
		return fmt.Errorf("sensors.battery.divider must be >= 0")
	}
	return nil
}

// ValidateBroker checks an MQTT broker URL. Empty means no broker.
func ValidateBroker(broker string) error {
	if broker == "" {
		return nil
	}
	u, err := url.Parse(broker)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q: want scheme://host:port", broker)
	}
	return nil
}

// buttonPin is the line the button ends up on once defaults are applied.
func buttonPin(pin int) int {
	if pin == 0 {
		return gpio.DefaultPinButton
	}
	return pin
}
