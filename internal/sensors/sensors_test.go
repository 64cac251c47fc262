package sensors

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/spf13/afero"
	"tinygo.org/x/drivers"
)

var _ drivers.I2C = (*FakeI2C)(nil)

const ds3231Addr = 0x68

func TestRTC_Now(t *testing.T) {
	bus := NewFakeI2C()
	// 2026-10-18 12:34:56, BCD, 24 h mode.
	bus.Set(ds3231Addr, 0x00, 0x56, 0x34, 0x12, 0x07, 0x18, 0x10, 0x26)

	rtc, err := NewRTC(bus)
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}
	got, err := rtc.Now()
	if err != nil {
		t.Fatalf("Now: %v", err)
	}
	want := DateTime{Year: 2026, Month: 10, Day: 18, Hour: 12, Minute: 34, Second: 56}
	if got != want {
		t.Errorf("Now = %+v, want %+v", got, want)
	}
}

func TestRTC_SeedRoundTrip(t *testing.T) {
	bus := NewFakeI2C()
	rtc, err := NewRTC(bus)
	if err != nil {
		t.Fatal(err)
	}
	seed := time.Date(2024, time.August, 1, 12, 0, 0, 0, time.UTC)
	if err := rtc.Seed(seed); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	got, err := rtc.Now()
	if err != nil {
		t.Fatal(err)
	}
	if got != FromTime(seed) {
		t.Errorf("Now after Seed = %+v, want %+v", got, FromTime(seed))
	}
}

func TestRTC_BusError(t *testing.T) {
	bus := NewFakeI2C()
	rtc, err := NewRTC(bus)
	if err != nil {
		t.Fatal(err)
	}
	bus.Err = errors.New("nack")
	if _, err := rtc.Now(); err == nil {
		t.Error("expected error")
	}
}

func TestSystemClock(t *testing.T) {
	c := NewSystemClock(func() time.Time {
		return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	})
	got, _ := c.Now()
	want := DateTime{Year: 2025, Month: 1, Day: 2, Hour: 3, Minute: 4, Second: 5}
	if got != want {
		t.Errorf("Now = %+v, want %+v", got, want)
	}
}

func newQMIBus() *FakeI2C {
	bus := NewFakeI2C()
	bus.Set(QMI8658Address, qmiWhoAmI, qmiChipID)
	return bus
}

func TestQMI8658_Init(t *testing.T) {
	bus := newQMIBus()
	if _, err := NewQMI8658(bus, 0); err != nil {
		t.Fatalf("NewQMI8658: %v", err)
	}
	want := map[byte]byte{
		qmiCtrl1: ctrl1AutoIncrement,
		qmiCtrl2: ctrl2Accel4g1kHz,
		qmiCtrl3: ctrl3Gyro512dps1k,
		qmiCtrl7: ctrl7EnableAG,
	}
	for reg, v := range want {
		if got := bus.Get(QMI8658Address, reg); got != v {
			t.Errorf("reg 0x%02x = 0x%02x, want 0x%02x", reg, got, v)
		}
	}
}

func TestQMI8658_WrongID(t *testing.T) {
	bus := NewFakeI2C()
	bus.Set(QMI8658Address, qmiWhoAmI, 0x42)
	if _, err := NewQMI8658(bus, 0); !errors.Is(err, ErrNotPresent) {
		t.Errorf("err = %v, want ErrNotPresent", err)
	}
}

func TestQMI8658_Readings(t *testing.T) {
	bus := newQMIBus()
	imu, err := NewQMI8658(bus, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Accel: +1 g, -0.5 g, +0.25 g (8192 LSB/g), little endian.
	bus.Set(QMI8658Address, qmiAccelXL, 0x00, 0x20, 0x00, 0xF0, 0x00, 0x08)
	// Gyro: 1 dps, -2 dps, 0.5 dps (64 LSB/dps).
	bus.Set(QMI8658Address, qmiGyroXL, 0x40, 0x00, 0x80, 0xFF, 0x20, 0x00)

	a, err := imu.Accel()
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, "accel", a, Vec3{1, -0.5, 0.25})

	g, err := imu.Gyro()
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, "gyro", g, Vec3{1, -2, 0.5})
}

func assertVec(t *testing.T, name string, got, want Vec3) {
	t.Helper()
	const eps = 1e-9
	if math.Abs(got.X-want.X) > eps || math.Abs(got.Y-want.Y) > eps || math.Abs(got.Z-want.Z) > eps {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func TestIIOBattery(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/sys/bus/iio/devices/iio:device0"
	afero.WriteFile(fs, dir+"/in_voltage2_raw", []byte("2048\n"), 0o644)
	afero.WriteFile(fs, dir+"/in_voltage2_scale", []byte("0.805664062\n"), 0o644)

	b := NewIIOBattery(fs, dir, 2, 2)
	v, err := b.Voltage()
	if err != nil {
		t.Fatalf("Voltage: %v", err)
	}
	// 2048 × 0.805664062 mV × 2 = 3.3 V
	if math.Abs(v-3.3) > 0.001 {
		t.Errorf("Voltage = %v, want ~3.3", v)
	}
}

func TestIIOBattery_Missing(t *testing.T) {
	b := NewIIOBattery(afero.NewMemMapFs(), DefaultIIODevice, 0, 0)
	if _, err := b.Voltage(); err == nil {
		t.Error("expected error for missing channel")
	}
}

func TestIIOBattery_Garbage(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/iio/in_voltage0_raw", []byte("abc"), 0o644)
	afero.WriteFile(fs, "/iio/in_voltage0_scale", []byte("1"), 0o644)
	if _, err := NewIIOBattery(fs, "/iio", 0, 0).Voltage(); err == nil {
		t.Error("expected parse error")
	}
}

type fakeRegisters struct {
	addr, qty uint16
	res       []byte
	err       error
}

func (f *fakeRegisters) ReadInputRegisters(addr, qty uint16) ([]byte, error) {
	f.addr, f.qty = addr, qty
	return f.res, f.err
}

func TestModbusBattery(t *testing.T) {
	regs := &fakeRegisters{res: []byte{0x0F, 0xA0}} // 4000 mV
	b := NewModbusBattery(regs, 30)
	v, err := b.Voltage()
	if err != nil {
		t.Fatal(err)
	}
	if v != 4.0 {
		t.Errorf("Voltage = %v, want 4.0", v)
	}
	if regs.addr != 30 || regs.qty != 1 {
		t.Errorf("read addr=%d qty=%d, want 30/1", regs.addr, regs.qty)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestModbusBattery_Errors(t *testing.T) {
	if _, err := NewModbusBattery(&fakeRegisters{err: errors.New("timeout")}, 0).Voltage(); err == nil {
		t.Error("expected read error")
	}
	if _, err := NewModbusBattery(&fakeRegisters{res: []byte{1}}, 0).Voltage(); err == nil {
		t.Error("expected short response error")
	}
}
