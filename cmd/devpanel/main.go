// Command devpanel runs the peripheral orchestration of a small display panel:
// button gestures, the Wi-Fi/BLE survey, periodic telemetry and the intro
// animation, rendered to a terminal panel, MQTT and an HTTP status page.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"tinygo.org/x/drivers"

	"github.com/sweeney/devpanel/internal/anim"
	"github.com/sweeney/devpanel/internal/backlight"
	"github.com/sweeney/devpanel/internal/config"
	"github.com/sweeney/devpanel/internal/dispatch"
	"github.com/sweeney/devpanel/internal/events"
	"github.com/sweeney/devpanel/internal/gpio"
	"github.com/sweeney/devpanel/internal/logic"
	"github.com/sweeney/devpanel/internal/mqtt"
	"github.com/sweeney/devpanel/internal/radio"
	"github.com/sweeney/devpanel/internal/scan"
	"github.com/sweeney/devpanel/internal/sensors"
	"github.com/sweeney/devpanel/internal/status"
	"github.com/sweeney/devpanel/internal/storage"
	"github.com/sweeney/devpanel/internal/telemetry"
	"github.com/sweeney/devpanel/internal/ui"
	"github.com/sweeney/devpanel/internal/web"
)

const (
	buttonTick    = 20 * time.Millisecond
	mountPoll     = 500 * time.Millisecond
	statusRefresh = 5 * time.Second
	tuiLogFile    = "devpanel.log"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (empty for defaults)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config, "none" disables)`)
	uiMode := flag.String("ui", "", `Display mode, "tui" or "headless" (overrides config)`)
	printState := flag.Bool("print-state", false, "Print current sensor readings and exit")
	wsBroker := flag.String("ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := applyFlags(cfg, *broker, *httpAddr, *uiMode); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	ws := resolveWSBroker(*wsBroker, cfg.MQTT.Broker)
	if err := run(cfg, *printState, ws); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyFlags overrides config values with non-empty command-line flags.
func applyFlags(cfg *config.Config, broker, httpAddr, uiMode string) error {
	if broker != "" {
		if err := config.ValidateBroker(broker); err != nil {
			return fmt.Errorf("--broker %w", err)
		}
		cfg.MQTT.Broker = broker
	}
	if httpAddr != "" {
		cfg.Panel.HTTP = httpAddr
	}
	if uiMode != "" {
		if uiMode != config.UITerminal && uiMode != config.UIHeadless {
			return fmt.Errorf("--ui: unknown mode %q", uiMode)
		}
		cfg.Panel.UI = uiMode
	}
	return nil
}

func run(cfg *config.Config, printState bool, wsBroker string) error {
	start := time.Now()
	session := uuid.New()

	sens := openSensors(cfg.Sensors)
	defer sens.Close()

	// Print state mode
	if printState {
		printReadings(os.Stdout, sens)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(start, status.Config{
		Session:       session.String(),
		Broker:        cfg.MQTT.Broker,
		Prefix:        cfg.MQTT.Prefix,
		HTTPAddr:      cfg.Panel.HTTP,
		WSBroker:      wsBroker,
		UI:            cfg.Panel.UI,
		ButtonPin:     cfg.Button.Pin,
		DoubleClickMs: cfg.Button.DoubleClickMs,
		LongPressMs:   cfg.Button.LongPressMs,
		StepMs:        cfg.Telemetry.StepMs,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	display := ui.NewDisplay(tracker)
	keys := events.NewGroup("keys")
	wifiEvents := events.NewGroup("wifi")
	storageEvents := events.NewGroup("storage")

	var wg sync.WaitGroup
	spawn := func(name string, fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
			log.Printf("%s: stopped", name)
		}()
	}

	// Initialize MQTT
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		topics := mqtt.Topics{Prefix: cfg.MQTT.Prefix}
		rp, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, topics, session, cfg.MQTT.Buffer)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer rp.Close()
		publisher, mqttStatus = rp, rp
		tracker.SetMQTTConnected(rp.IsConnected())

		mirror := mqtt.NewMirror(rp, topics, 0)
		display.Attach(mirror)
		spawn("mqtt mirror", func() { mirror.Run(ctx) })
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Terminal panel doubles as a keyboard button.
	var panel *ui.Panel
	if cfg.Panel.UI == config.UITerminal {
		f, err := tea.LogToFile(tuiLogFile, "devpanel")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		panel = ui.NewPanel(func(g logic.Gesture) { events.Emit(keys, g) })
		display.Attach(panel)
		go func() {
			if err := panel.Run(); err != nil {
				log.Printf("ui: %v", err)
			}
			select {
			case sigCh <- syscall.SIGINT:
			default:
			}
		}()
		defer panel.Quit()
	}

	// Button
	btn, err := gpio.NewRealButton(cfg.Button.Chip, cfg.Button.Pin, config.Millis(cfg.Button.DebounceMs), cfg.Button.ActiveLow)
	switch {
	case err == nil:
		defer btn.Close()
		classifier := logic.NewClassifier(config.Millis(cfg.Button.DoubleClickMs), config.Millis(cfg.Button.LongPressMs))
		ticker := time.NewTicker(buttonTick)
		defer ticker.Stop()
		spawn("button", func() { gpio.RunButton(ctx, btn, classifier, keys, ticker.C, time.Now) })
	case panel != nil:
		log.Printf("gpio: button unavailable, keyboard only: %v", err)
	default:
		return fmt.Errorf("init button: %w", err)
	}

	light, closeLight := openBacklight(cfg)
	defer closeLight()

	// Storage
	store := storage.NewOSStore()
	spawn("storage watch", func() { storage.WatchMount(ctx, store, cfg.Storage.Root, storageEvents, mountPoll) })
	spawn("storage report", func() {
		storage.Report(ctx, storageEvents, cfg.Storage.Root, storage.Capacity, display, config.Millis(cfg.Storage.MountWaitMs))
	})

	// Radio
	ctrl, aps := openRadio(ctx, cfg.Radio, wifiEvents, func(s radio.State) { tracker.SetRadio(s.String()) })
	tracker.SetRadio(ctrl.State().String())

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if cfg.Panel.HTTP != config.Disabled {
		srv := web.New(cfg.Panel.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.Panel.HTTP)
	}

	// System ready: spawn the panel tasks.
	intro := anim.NewIntro(display)
	intro.Dwell = config.Millis(cfg.Intro.DwellMs)
	spawn("intro", func() { intro.Run(ctx) })

	disp := dispatch.New(dispatch.Config{
		ImagePath: cfg.Storage.Image,
		TestPath:  cfg.Storage.TestFile,
		Pattern:   cfg.Storage.Pattern,
	}, keys, display, store, light)
	disp.OnGesture = tracker.RecordGesture
	spawn("dispatch", func() { disp.Run(ctx) })

	seq := scan.New(scan.Config{
		WifiWait: config.Millis(cfg.Radio.WifiWaitMs),
		ItemWait: config.Millis(cfg.Radio.ItemWaitMs),
		Pacing:   config.Millis(cfg.Radio.PacingMs),
	}, wifiEvents, ctrl, aps, display)
	spawn("scan", func() {
		sum, err := seq.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("scan: %v", err)
		}
		tracker.SetDevices(deviceAddresses(sum.Devices))
	})

	mux := telemetry.New(sens.clock, sens.motion, sens.battery, display)
	step := time.NewTicker(config.Millis(cfg.Telemetry.StepMs))
	defer step.Stop()
	spawn("telemetry", func() { mux.Run(ctx, step.C) })

	log.Printf("started: session=%s ui=%s broker=%q http=%s", session, cfg.Panel.UI, cfg.MQTT.Broker, cfg.Panel.HTTP)

	refresh := time.NewTicker(statusRefresh)
	defer refresh.Stop()

	err = runLoop(publisher, mqttStatus, tracker, time.Now, refresh.C, sigCh)
	cancel()
	wg.Wait()
	return err
}

// runLoop keeps the tracker's connectivity current until a signal arrives,
// then publishes SHUTDOWN.
func runLoop(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if publisher == nil {
				return nil
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			if tracker == nil {
				continue
			}
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
		}
	}
}

// sensorSet holds the opened telemetry sources. Absent sources are nil.
type sensorSet struct {
	clock   sensors.Clock
	motion  sensors.Motion
	battery sensors.Battery
	closers []io.Closer
}

func (s *sensorSet) Close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			log.Printf("sensors: close: %v", err)
		}
	}
}

// openSensors opens every configured sensor. A sensor that fails to open is
// logged and left out; the clock falls back to the system time.
func openSensors(cfg config.SensorsConfig) *sensorSet {
	s := &sensorSet{}

	if cfg.RTC || cfg.IMU {
		bus, err := sensors.OpenBus(cfg.I2CBus)
		if err != nil {
			log.Printf("sensors: i2c bus: %v", err)
		} else {
			s.closers = append(s.closers, bus)
			if cfg.RTC {
				s.clock = openRTC(bus, cfg.SeedRTC)
			}
			if cfg.IMU {
				imu, err := sensors.NewQMI8658(bus, cfg.IMUAddress)
				if err != nil {
					log.Printf("sensors: imu: %v", err)
				} else {
					s.motion = imu
				}
			}
		}
	}
	if s.clock == nil {
		s.clock = sensors.NewSystemClock(time.Now)
	}

	bat := cfg.Battery
	switch bat.Source {
	case config.BatteryIIO:
		s.battery = sensors.NewIIOBattery(afero.NewOsFs(), bat.IIODevice, bat.IIOChannel, bat.Divider)
	case config.BatteryModbus:
		mb, err := sensors.DialModbusBattery(bat.ModbusEndpoint, bat.ModbusUnitID, bat.ModbusRegister, config.Millis(bat.ModbusTimeoutMs))
		if err != nil {
			log.Printf("sensors: battery: %v", err)
		} else {
			s.battery = mb
			s.closers = append(s.closers, mb)
		}
	}
	return s
}

func openRTC(bus drivers.I2C, seed bool) sensors.Clock {
	rtc, err := sensors.NewRTC(bus)
	if err != nil {
		log.Printf("sensors: rtc: %v", err)
		return nil
	}
	if seed {
		if err := rtc.Seed(time.Now()); err != nil {
			log.Printf("sensors: seed rtc: %v", err)
		} else {
			log.Printf("sensors: rtc seeded from system time")
		}
	}
	return rtc
}

// printReadings writes one reading of every sensor to w.
func printReadings(w io.Writer, s *sensorSet) {
	if dt, err := s.clock.Now(); err != nil {
		fmt.Fprintf(w, "clock: %v\n", err)
	} else {
		fmt.Fprintln(w, telemetry.FormatClock(dt))
	}
	if s.motion != nil {
		if v, err := s.motion.Accel(); err != nil {
			fmt.Fprintf(w, "accel: %v\n", err)
		} else {
			fmt.Fprintln(w, telemetry.FormatAccel(v))
		}
		if v, err := s.motion.Gyro(); err != nil {
			fmt.Fprintf(w, "gyro: %v\n", err)
		} else {
			fmt.Fprintln(w, telemetry.FormatGyro(v))
		}
	}
	if s.battery != nil {
		if v, err := s.battery.Voltage(); err != nil {
			fmt.Fprintf(w, "battery: %v\n", err)
		} else {
			fmt.Fprintln(w, telemetry.FormatBattery(v))
		}
	}
}

// openBacklight selects a backlight driver and switches it fully on, which
// is the duty the dispatcher starts from.
func openBacklight(cfg *config.Config) (backlight.Driver, func()) {
	light, closeLight := selectBacklight(cfg)
	if err := light.SetDuty(backlight.DutyMax); err != nil {
		log.Printf("backlight: initial duty: %v", err)
	}
	return light, closeLight
}

// selectBacklight tries the sysfs device, then the GPIO enable line. With
// neither configured the dispatcher still tracks the duty on a fake.
func selectBacklight(cfg *config.Config) (backlight.Driver, func()) {
	if cfg.Backlight.Sysfs != "" {
		d, err := backlight.NewSysfs(afero.NewOsFs(), cfg.Backlight.Sysfs)
		if err == nil {
			return d, func() {}
		}
		log.Printf("backlight: %v", err)
	}
	if cfg.Backlight.GPIOPin != nil {
		out, err := gpio.NewRealOutput(cfg.Button.Chip, *cfg.Backlight.GPIOPin, 1)
		if err == nil {
			return backlight.NewLine(out), func() { out.Close() }
		}
		log.Printf("backlight: %v", err)
	}
	log.Printf("backlight: no driver, duty is tracked only")
	return &backlight.Fake{}, func() {}
}

// openRadio builds the radio controller. Wi-Fi comes up first and starts its
// scan; BLE stays down until the survey asks for it.
func openRadio(ctx context.Context, cfg config.RadioConfig, wifiEvents *events.Group, onChange func(radio.State)) (*radio.Controller, scan.APCounter) {
	var wifi radio.WiFi
	var aps scan.APCounter
	if cfg.WifiInterface != config.Disabled {
		w, err := radio.NewWPA(ctx, cfg.WifiInterface, cfg.WifiDisconnect)
		if err != nil {
			log.Printf("radio: wifi unavailable: %v", err)
		} else {
			if err := w.Scan(ctx, wifiEvents); err != nil {
				log.Printf("radio: %v", err)
			}
			wifi, aps = w, w
		}
	}

	var ble radio.BLE
	if cfg.BLEAdapter != config.Disabled {
		ble = radio.NewBlueZ(cfg.BLEAdapter, cfg.QueueSize)
	}
	return radio.NewController(wifi, ble, onChange), aps
}

func deviceAddresses(devs []radio.Device) []string {
	addrs := make([]string, 0, len(devs))
	for _, d := range devs {
		addrs = append(addrs, d.Address)
	}
	return addrs
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	if broker == "" {
		return ""
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
