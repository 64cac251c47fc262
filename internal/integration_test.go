package internal

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/sweeney/devpanel/internal/anim"
	"github.com/sweeney/devpanel/internal/backlight"
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
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// rig is a display wired to the status tracker and an MQTT mirror, as the
// daemon wires it.
type rig struct {
	display *ui.Display
	tracker *status.Tracker
	pub     *mqtt.FakePublisher
	mirror  *mqtt.Mirror
}

func newRig(t *testing.T) *rig {
	t.Helper()
	tracker := status.NewTracker(t0, status.Config{Session: "test", Prefix: "devpanel"})
	pub := mqtt.NewFakePublisher()
	mirror := mqtt.NewMirror(pub, mqtt.Topics{Prefix: "devpanel"}, 256)
	return &rig{
		display: ui.NewDisplay(tracker, mirror),
		tracker: tracker,
		pub:     pub,
		mirror:  mirror,
	}
}

// flush drains the mirror queue into the fake publisher.
func (r *rig) flush() []mqtt.Message {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.mirror.Run(ctx)
	return r.pub.Published()
}

func lastPayload(msgs []mqtt.Message, topic string) (mqtt.Message, bool) {
	var found mqtt.Message
	ok := false
	for _, m := range msgs {
		if m.Topic == topic {
			found, ok = m, true
		}
	}
	return found, ok
}

// TestIntegrationButtonGestures drives the button through a double click, a
// long press and a single click and checks every handler's effect.
func TestIntegrationButtonGestures(t *testing.T) {
	r := newRig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/sdcard", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, storage.DefaultImagePath, []byte{0xff, 0xd8}, 0o644); err != nil {
		t.Fatal(err)
	}
	light := &backlight.Fake{}
	keys := events.NewGroup("keys")
	d := dispatch.New(dispatch.Config{}, keys, r.display, storage.NewFileStore(fs), light)
	d.OnGesture = r.tracker.RecordGesture

	btn := gpio.NewFakeButton()
	tick := make(chan time.Time)
	classifier := logic.NewClassifier(300*time.Millisecond, time.Second)
	go gpio.RunButton(ctx, btn, classifier, keys, tick, func() time.Time { return t0.Add(10 * time.Second) })

	// Double click toggles the backlight off.
	btn.Press(t0)
	btn.Release(t0.Add(50 * time.Millisecond))
	btn.Press(t0.Add(100 * time.Millisecond))
	btn.Release(t0.Add(150 * time.Millisecond))
	if g := d.Step(ctx); g != logic.GestureDoubleClick {
		t.Fatalf("step 1: got %s, want DOUBLE_CLICK", g)
	}
	if got := light.History(); len(got) != 1 || got[0] != backlight.DutyOff {
		t.Errorf("backlight history: got %v, want [0]", got)
	}

	// Long press runs the storage self-test.
	btn.Press(t0.Add(time.Second))
	btn.Release(t0.Add(2500 * time.Millisecond))
	if g := d.Step(ctx); g != logic.GestureLongPress {
		t.Fatalf("step 2: got %s, want LONG_PRESS", g)
	}
	if got := r.display.Text(ui.FieldSelfTest); got != dispatch.TextPass {
		t.Errorf("selftest field: got %q, want %q", got, dispatch.TextPass)
	}

	// Single click shows the image once the double-click window has passed.
	btn.Press(t0.Add(3 * time.Second))
	btn.Release(t0.Add(3050 * time.Millisecond))
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case tick <- t0:
			case <-stop:
				return
			}
		}
	}()
	g := d.Step(ctx)
	close(stop)
	if g != logic.GestureSingleClick {
		t.Fatalf("step 3: got %s, want SINGLE_CLICK", g)
	}

	snap := r.tracker.Snapshot()
	if snap.Image != storage.DefaultImagePath {
		t.Errorf("tracker image: got %q", snap.Image)
	}
	want := logic.GestureCounts{SingleClick: 1, DoubleClick: 1, LongPress: 1}
	if snap.Gestures != want {
		t.Errorf("gestures: got %+v, want %+v", snap.Gestures, want)
	}

	msgs := r.flush()
	if m, ok := lastPayload(msgs, "devpanel/ui/selftest"); !ok || string(m.Payload) != dispatch.TextPass || !m.Retained {
		t.Errorf("selftest message: got %+v (found=%v)", m, ok)
	}
	if m, ok := lastPayload(msgs, "devpanel/ui/image"); !ok || string(m.Payload) != storage.DefaultImagePath {
		t.Errorf("image message: got %+v (found=%v)", m, ok)
	}
}

// TestIntegrationIdleClearsSelfTest checks that an idle cycle blanks the
// self-test result everywhere it is rendered.
func TestIntegrationIdleClearsSelfTest(t *testing.T) {
	r := newRig(t)
	keys := events.NewGroup("keys")
	d := dispatch.New(dispatch.Config{Wait: 10 * time.Millisecond}, keys, r.display, storage.NewFileStore(afero.NewMemMapFs()), &backlight.Fake{})
	d.OnGesture = r.tracker.RecordGesture

	r.display.SetText(ui.FieldSelfTest, dispatch.TextFail)
	if g := d.Step(context.Background()); g != logic.GestureNone {
		t.Fatalf("got %s, want NONE", g)
	}

	snap := r.tracker.Snapshot()
	if snap.Field(ui.FieldSelfTest) != "" {
		t.Errorf("selftest field: got %q, want empty", snap.Field(ui.FieldSelfTest))
	}
	if snap.Gestures.Idle != 1 {
		t.Errorf("idle count: got %d, want 1", snap.Gestures.Idle)
	}
}

// TestIntegrationSurvey runs the radio handoff end to end.
func TestIntegrationSurvey(t *testing.T) {
	r := newRig(t)
	calls := &radio.CallLog{}
	wifi := &radio.FakeWiFi{APs: 5, Log: calls}
	ble := radio.NewFakeBLE(4)
	ble.Log = calls
	ble.Found <- radio.Device{Address: "AA:BB:CC:DD:EE:01", RSSI: -40}
	ble.Found <- radio.Device{Address: "AA:BB:CC:DD:EE:02", RSSI: -70}

	ctrl := radio.NewController(wifi, ble, func(s radio.State) { r.tracker.SetRadio(s.String()) })
	wifiEvents := events.NewGroup("wifi")
	wifiEvents.Set(events.WifiStarted | events.WifiScanDone)

	seq := scan.New(scan.Config{WifiWait: time.Second, ItemWait: 20 * time.Millisecond}, wifiEvents, ctrl, wifi, r.display)
	sum, err := seq.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Text() != "ble : 2 wifi : 5" {
		t.Errorf("summary: got %q", sum.Text())
	}

	wantCalls := []string{"wifi.release", "ble.acquire", "ble.start", "ble.stop", "ble.release"}
	got := calls.Calls()
	if len(got) != len(wantCalls) {
		t.Fatalf("calls: got %v, want %v", got, wantCalls)
	}
	for i := range wantCalls {
		if got[i] != wantCalls[i] {
			t.Errorf("call %d: got %q, want %q", i, got[i], wantCalls[i])
		}
	}

	snap := r.tracker.Snapshot()
	if snap.Radio != "IDLE" {
		t.Errorf("radio: got %q, want IDLE", snap.Radio)
	}
	if snap.Field(ui.FieldScan) != "ble : 2 wifi : 5" {
		t.Errorf("scan field: got %q", snap.Field(ui.FieldScan))
	}
	if m, ok := lastPayload(r.flush(), "devpanel/ui/scan"); !ok || string(m.Payload) != "ble : 2 wifi : 5" {
		t.Errorf("scan message: got %+v (found=%v)", m, ok)
	}

	if _, err := seq.Run(context.Background()); !errors.Is(err, scan.ErrAlreadyRan) {
		t.Errorf("second run: got %v, want ErrAlreadyRan", err)
	}
}

// TestIntegrationTelemetryStatusJSON feeds telemetry through the display and
// reads it back from the status JSON.
func TestIntegrationTelemetryStatusJSON(t *testing.T) {
	r := newRig(t)
	battery := &sensors.FakeBattery{}
	battery.SetVolts(3.7)
	m := telemetry.New(
		&sensors.FakeClock{Time: sensors.DateTime{Year: 2026, Month: 1, Day: 2, Hour: 3, Minute: 4, Second: 5}},
		&sensors.FakeMotion{AccelValue: sensors.Vec3{Z: 1}},
		battery,
		r.display,
	)
	for i := 0; i < 20; i++ {
		m.Step()
	}

	var parsed status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(r.tracker.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	fields := parsed.Status.Fields
	if fields["clock"] != "rtc : \n2026/1/2\n03:04:05" {
		t.Errorf("clock: got %q", fields["clock"])
	}
	if fields["battery"] != "vbat : 3.70V" {
		t.Errorf("battery: got %q", fields["battery"])
	}
	if fields["motion"] == "" {
		t.Error("motion field never published")
	}
}

// TestIntegrationIntroCarousel plays the intro without waiting and checks
// the carousel state on every surface.
func TestIntegrationIntroCarousel(t *testing.T) {
	r := newRig(t)
	intro := anim.NewIntro(r.display)
	intro.After = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- t0
		return ch
	}
	intro.Run(context.Background())

	slide, scrollable := r.display.Carousel()
	if slide != anim.DefaultSlides || !scrollable {
		t.Errorf("display carousel: slide %d scrollable %v", slide, scrollable)
	}
	snap := r.tracker.Snapshot()
	if snap.Slide != anim.DefaultSlides || !snap.Scrollable {
		t.Errorf("tracker carousel: slide %d scrollable %v", snap.Slide, snap.Scrollable)
	}

	msg, ok := lastPayload(r.flush(), "devpanel/ui/carousel")
	if !ok {
		t.Fatal("no carousel message")
	}
	var p mqtt.CarouselPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatalf("invalid carousel JSON: %v", err)
	}
	if p.ScrollBy != anim.ScrollOffset || !p.Animate {
		t.Errorf("last carousel update: got %+v", p)
	}
}

// TestIntegrationStartupThenShutdown publishes both lifecycle events with
// status snapshots.
func TestIntegrationStartupThenShutdown(t *testing.T) {
	r := newRig(t)
	r.tracker.SetRadio("WIFI_ACTIVE")

	snap := r.tracker.Snapshot()
	if err := r.pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}); err != nil {
		t.Fatal(err)
	}

	r.display.SetText(ui.FieldScan, "ble : 0 wifi : unknown")
	snap = r.tracker.Snapshot()
	if err := r.pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "SHUTDOWN",
		Reason:     "SIGTERM",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM"),
	}); err != nil {
		t.Fatal(err)
	}

	if len(r.pub.SystemPayloads) != 2 {
		t.Fatalf("expected 2 system payloads, got %d", len(r.pub.SystemPayloads))
	}
	var start, stop status.StatusJSON
	if err := json.Unmarshal(r.pub.SystemPayloads[0], &start); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(r.pub.SystemPayloads[1], &stop); err != nil {
		t.Fatal(err)
	}
	if start.Status.Event != "STARTUP" || start.Status.Config == nil {
		t.Errorf("startup: got event %q config %v", start.Status.Event, start.Status.Config)
	}
	if stop.Status.Event != "SHUTDOWN" || stop.Status.Reason != "SIGTERM" || stop.Status.Config != nil {
		t.Errorf("shutdown: got %+v", stop.Status)
	}
	if stop.Status.Fields["scan"] != "ble : 0 wifi : unknown" {
		t.Errorf("shutdown scan field: got %q", stop.Status.Fields["scan"])
	}
}
