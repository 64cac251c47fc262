package sensors

import (
	"sync"
)

// FakeClock is a test double for Clock.
type FakeClock struct {
	mu   sync.Mutex
	Time DateTime
	Err  error
}

// Now returns Time or Err.
func (f *FakeClock) Now() (DateTime, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Time, f.Err
}

// FakeMotion is a test double for Motion.
type FakeMotion struct {
	mu sync.Mutex

	AccelValue Vec3
	GyroValue  Vec3
	Err        error

	AccelReads int
	GyroReads  int
}

// Accel returns AccelValue or Err.
func (f *FakeMotion) Accel() (Vec3, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AccelReads++
	return f.AccelValue, f.Err
}

// Gyro returns GyroValue or Err.
func (f *FakeMotion) Gyro() (Vec3, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GyroReads++
	return f.GyroValue, f.Err
}

// FakeBattery is a test double for Battery.
type FakeBattery struct {
	mu    sync.Mutex
	Volts float64
	Err   error
}

// Voltage returns Volts or Err.
func (f *FakeBattery) Voltage() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Volts, f.Err
}

// SetVolts changes the reported voltage.
func (f *FakeBattery) SetVolts(v float64) {
	f.mu.Lock()
	f.Volts = v
	f.mu.Unlock()
}

// FakeI2C is a register-file I2C device. A write of one byte selects a
// register for the following read; longer writes store bytes starting at
// the register in w[0].
type FakeI2C struct {
	mu   sync.Mutex
	Regs map[uint16]*[256]byte
	Err  error
}

// NewFakeI2C creates an empty fake bus.
func NewFakeI2C() *FakeI2C {
	return &FakeI2C{Regs: make(map[uint16]*[256]byte)}
}

// Set stores bytes at reg on device addr.
func (f *FakeI2C) Set(addr uint16, reg byte, data ...byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set(addr, reg, data)
}

// Get returns the byte at reg on device addr.
func (f *FakeI2C) Get(addr uint16, reg byte) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dev(addr)[reg]
}

func (f *FakeI2C) dev(addr uint16) *[256]byte {
	d, ok := f.Regs[addr]
	if !ok {
		d = new([256]byte)
		f.Regs[addr] = d
	}
	return d
}

func (f *FakeI2C) set(addr uint16, reg byte, data []byte) {
	d := f.dev(addr)
	for i, b := range data {
		d[(int(reg)+i)&0xFF] = b
	}
}

// Tx implements drivers.I2C.
func (f *FakeI2C) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if len(w) == 0 {
		return nil
	}
	reg := w[0]
	if len(w) > 1 {
		f.set(addr, reg, w[1:])
	}
	d := f.dev(addr)
	for i := range r {
		r[i] = d[(int(reg)+i)&0xFF]
	}
	return nil
}
