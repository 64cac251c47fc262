package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

const sample = `
panel:
  http: ":8080"
  ui: tui
mqtt:
  broker: tcp://192.168.1.200:1883
  prefix: lab/panel/
button:
  pin: 22
  active_low: true
backlight:
  gpio_pin: 18
storage:
  pattern: "factory check"
radio:
  wifi_interface: wlan1
  item_wait_ms: 2000
sensors:
  rtc: true
  imu: true
  battery:
    source: modbus
    modbus_endpoint: 10.0.0.5:502
    modbus_unit_id: 3
    modbus_register: 30
`

func TestLoadSample(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/etc/devpanel.yaml", []byte(sample), 0o644)

	cfg, err := LoadFs(fs, "/etc/devpanel.yaml")
	if err != nil {
		t.Fatalf("LoadFs: %v", err)
	}
	if cfg.Panel.HTTP != ":8080" || cfg.Panel.UI != UITerminal {
		t.Errorf("panel = %+v", cfg.Panel)
	}
	if cfg.MQTT.Prefix != "lab/panel" {
		t.Errorf("prefix = %q, want trailing slash trimmed", cfg.MQTT.Prefix)
	}
	if cfg.MQTT.Buffer != DefaultBuffer {
		t.Errorf("buffer = %d, want default", cfg.MQTT.Buffer)
	}
	if cfg.Button.Pin != 22 || !cfg.Button.ActiveLow || cfg.Button.Chip != "gpiochip0" {
		t.Errorf("button = %+v", cfg.Button)
	}
	if cfg.Backlight.GPIOPin == nil || *cfg.Backlight.GPIOPin != 18 {
		t.Errorf("backlight = %+v", cfg.Backlight)
	}
	if cfg.Storage.Pattern != "factory check" || cfg.Storage.Image != "/sdcard/1.jpg" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Radio.WifiInterface != "wlan1" || Millis(cfg.Radio.ItemWaitMs) != 2*time.Second {
		t.Errorf("radio = %+v", cfg.Radio)
	}
	if Millis(cfg.Radio.WifiWaitMs) != 30*time.Second {
		t.Errorf("wifi wait = %d ms, want 30000", cfg.Radio.WifiWaitMs)
	}
	b := cfg.Sensors.Battery
	if b.Source != BatteryModbus || b.ModbusUnitID != 3 || b.ModbusRegister != 30 {
		t.Errorf("battery = %+v", b)
	}
	if cfg.Sensors.IMUAddress != 0x6B {
		t.Errorf("imu address = 0x%x, want 0x6b", cfg.Sensors.IMUAddress)
	}
}

func TestLoadEmptyPathGivesDefaults(t *testing.T) {
	cfg, err := LoadFs(afero.NewMemMapFs(), "")
	if err != nil {
		t.Fatal(err)
	}
	checks := map[string]bool{
		"http":      cfg.Panel.HTTP == DefaultHTTP,
		"ui":        cfg.Panel.UI == UIHeadless,
		"pin":       cfg.Button.Pin == 17,
		"double":    cfg.Button.DoubleClickMs == 300,
		"long":      cfg.Button.LongPressMs == 1000,
		"root":      cfg.Storage.Root == "/sdcard",
		"mount":     cfg.Storage.MountWaitMs == 15000,
		"wifi":      cfg.Radio.WifiInterface == "wlan0",
		"adapter":   cfg.Radio.BLEAdapter == "hci0",
		"pacing":    cfg.Radio.PacingMs == 20,
		"item wait": cfg.Radio.ItemWaitMs == 3500,
		"battery":   cfg.Sensors.Battery.Source == BatteryNone,
		"step":      cfg.Telemetry.StepMs == 200,
		"dwell":     cfg.Intro.DwellMs == 1500,
	}
	for name, ok := range checks {
		if !ok {
			t.Errorf("default %s not applied: %+v", name, cfg)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFs(afero.NewMemMapFs(), "/nope.yaml"); err == nil {
		t.Error("expected error")
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse([]byte("panel:\n  colour: red\n")); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestValidate(t *testing.T) {
	pin := func(n int) *int { return &n }
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty ok", Config{}, ""},
		{"bad ui", Config{Panel: PanelConfig{UI: "gtk"}}, "panel.ui"},
		{"bad broker", Config{MQTT: MQTTConfig{Broker: "192.168.1.200"}}, "mqtt.broker"},
		{"wildcard prefix", Config{MQTT: MQTTConfig{Prefix: "a/#"}}, "wildcards"},
		{"negative buffer", Config{MQTT: MQTTConfig{Buffer: -1}}, "mqtt.buffer"},
		{"backlight on button pin", Config{Button: ButtonConfig{Pin: 5}, Backlight: BacklightConfig{GPIOPin: pin(5)}}, "button pin"},
		{"backlight on default button pin", Config{Backlight: BacklightConfig{GPIOPin: pin(17)}}, "button pin"},
		{"backlight beside default button pin", Config{Backlight: BacklightConfig{GPIOPin: pin(18)}}, ""},
		{"long pattern", Config{Storage: StorageConfig{Pattern: strings.Repeat("x", 33)}}, "storage.pattern"},
		{"negative wait", Config{Radio: RadioConfig{ItemWaitMs: -1}}, "radio.item_wait_ms"},
		{"double >= long", Config{Button: ButtonConfig{DoubleClickMs: 1000, LongPressMs: 1000}}, "double_click_ms"},
		{"modbus without endpoint", Config{Sensors: SensorsConfig{Battery: BatteryConfig{Source: BatteryModbus}}}, "modbus_endpoint"},
		{"unknown battery", Config{Sensors: SensorsConfig{Battery: BatteryConfig{Source: "solar"}}}, "sensors.battery.source"},
		{"negative divider", Config{Sensors: SensorsConfig{Battery: BatteryConfig{Divider: -2}}}, "divider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateBroker(t *testing.T) {
	for _, broker := range []string{"", "tcp://10.0.0.5:1883", "ws://broker:9001"} {
		if err := ValidateBroker(broker); err != nil {
			t.Errorf("ValidateBroker(%q): %v", broker, err)
		}
	}
	for _, broker := range []string{"10.0.0.5:1883", "tcp://", "broker"} {
		if err := ValidateBroker(broker); err == nil {
			t.Errorf("ValidateBroker(%q): expected error", broker)
		}
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	cfg := Config{MQTT: MQTTConfig{Prefix: "x/"}}
	if err := Validate(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.MQTT.Prefix != "x/" || cfg.Panel.HTTP != "" {
		t.Errorf("Validate mutated config: %+v", cfg)
	}
}
