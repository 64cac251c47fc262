// Package telemetry samples the clock, motion and battery sensors on a
// shared tick and publishes each reading to its display field.
package telemetry

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/devpanel/internal/logic"
	"github.com/sweeney/devpanel/internal/sensors"
	"github.com/sweeney/devpanel/internal/ui"
)

// DefaultStep is the tick period.
const DefaultStep = 200 * time.Millisecond

// Per-feed thresholds in ticks. A feed fires when more than this many ticks
// have passed since it last fired.
const (
	ClockEvery   = 4
	MotionEvery  = 4
	BatteryEvery = 9
)

// FormatClock renders an RTC reading.
func FormatClock(dt sensors.DateTime) string {
	return fmt.Sprintf("rtc : \n%d/%d/%d\n%02d:%02d:%02d", dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
}

// FormatAccel renders an acceleration reading.
func FormatAccel(v sensors.Vec3) string {
	return fmt.Sprintf("acc : \n%.2fg \n%.2fg \n%.2fg", v.X, v.Y, v.Z)
}

// FormatGyro renders an angular rate reading.
func FormatGyro(v sensors.Vec3) string {
	return fmt.Sprintf("gyro : \n%.2fdps \n%.2fdps \n%.2fdps", v.X, v.Y, v.Z)
}

// FormatBattery renders a battery voltage.
func FormatBattery(volts float64) string {
	return fmt.Sprintf("vbat : %.2fV", volts)
}

// Multiplexer drives the three feeds from one tick counter.
type Multiplexer struct {
	clock   sensors.Clock
	motion  sensors.Motion
	battery sensors.Battery
	sink    ui.Sink

	tick       uint32
	clockDue   *logic.Schedule
	motionDue  *logic.Schedule
	batteryDue *logic.Schedule
	showGyro   bool
}

// New creates a multiplexer. A nil source is never sampled.
func New(clock sensors.Clock, motion sensors.Motion, battery sensors.Battery, sink ui.Sink) *Multiplexer {
	return &Multiplexer{
		clock:      clock,
		motion:     motion,
		battery:    battery,
		sink:       sink,
		clockDue:   logic.NewSchedule(ClockEvery),
		motionDue:  logic.NewSchedule(MotionEvery),
		batteryDue: logic.NewSchedule(BatteryEvery),
	}
}

// Run calls Step for every value received on tick until ctx is done or
// tick is closed.
func (m *Multiplexer) Run(ctx context.Context, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-tick:
			if !ok {
				return
			}
			m.Step()
		}
	}
}

// Step runs every feed due at the current tick, then advances the counter.
func (m *Multiplexer) Step() {
	if m.clock != nil && m.clockDue.Due(m.tick) {
		m.sampleClock()
	}
	if m.motion != nil && m.motionDue.Due(m.tick) {
		m.sampleMotion()
	}
	if m.battery != nil && m.batteryDue.Due(m.tick) {
		m.sampleBattery()
	}
	m.tick++
}

// Tick returns the current tick counter.
func (m *Multiplexer) Tick() uint32 {
	return m.tick
}

func (m *Multiplexer) sampleClock() {
	dt, err := m.clock.Now()
	if err != nil {
		log.Printf("telemetry: clock: %v", err)
		return
	}
	m.sink.SetText(ui.FieldClock, FormatClock(dt))
}

// sampleMotion alternates between acceleration and angular rate. The mode
// only advances when a reading was published.
func (m *Multiplexer) sampleMotion() {
	read, format := m.motion.Accel, FormatAccel
	if m.showGyro {
		read, format = m.motion.Gyro, FormatGyro
	}
	v, err := read()
	if err != nil {
		log.Printf("telemetry: motion: %v", err)
		return
	}
	m.sink.SetText(ui.FieldMotion, format(v))
	m.showGyro = !m.showGyro
}

func (m *Multiplexer) sampleBattery() {
	v, err := m.battery.Voltage()
	if err != nil {
		log.Printf("telemetry: battery: %v", err)
		return
	}
	if v == 0 {
		return
	}
	m.sink.SetText(ui.FieldBattery, FormatBattery(v))
}
