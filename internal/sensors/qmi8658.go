package sensors

import (
	"encoding/binary"
	"fmt"

	"tinygo.org/x/drivers"
)

// QMI8658 registers.
const (
	QMI8658Address = 0x6B

	qmiWhoAmI  = 0x00
	qmiCtrl1   = 0x02
	qmiCtrl2   = 0x03
	qmiCtrl3   = 0x04
	qmiCtrl7   = 0x08
	qmiAccelXL = 0x35
	qmiGyroXL  = 0x3B

	qmiChipID = 0x05

	ctrl1AutoIncrement = 0x40
	ctrl2Accel4g1kHz   = 0x13
	ctrl3Gyro512dps1k  = 0x53
	ctrl7EnableAG      = 0x03

	accelLSBPerG  = 8192.0
	gyroLSBPerDPS = 64.0
)

// QMI8658 is a six-axis IMU on I2C.
type QMI8658 struct {
	bus  drivers.I2C
	addr uint16
	w    [2]byte
	r    [6]byte
}

// NewQMI8658 checks the chip id and enables the accelerometer (±4 g) and
// gyroscope (±512 dps).
func NewQMI8658(bus drivers.I2C, addr uint16) (*QMI8658, error) {
	if addr == 0 {
		addr = QMI8658Address
	}
	d := &QMI8658{bus: bus, addr: addr}
	id, err := d.readReg(qmiWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("qmi8658 who_am_i: %w", err)
	}
	if id != qmiChipID {
		return nil, fmt.Errorf("qmi8658 id 0x%02x: %w", id, ErrNotPresent)
	}
	for _, rv := range [][2]byte{
		{qmiCtrl1, ctrl1AutoIncrement},
		{qmiCtrl2, ctrl2Accel4g1kHz},
		{qmiCtrl3, ctrl3Gyro512dps1k},
		{qmiCtrl7, ctrl7EnableAG},
	} {
		if err := d.writeReg(rv[0], rv[1]); err != nil {
			return nil, fmt.Errorf("qmi8658 write 0x%02x: %w", rv[0], err)
		}
	}
	return d, nil
}

// Accel returns acceleration in g.
func (d *QMI8658) Accel() (Vec3, error) {
	return d.readVec(qmiAccelXL, accelLSBPerG)
}

// Gyro returns angular rate in degrees per second.
func (d *QMI8658) Gyro() (Vec3, error) {
	return d.readVec(qmiGyroXL, gyroLSBPerDPS)
}

func (d *QMI8658) readVec(reg byte, scale float64) (Vec3, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:6]); err != nil {
		return Vec3{}, fmt.Errorf("qmi8658 read 0x%02x: %w", reg, err)
	}
	axis := func(i int) float64 {
		return float64(int16(binary.LittleEndian.Uint16(d.r[i:]))) / scale
	}
	return Vec3{X: axis(0), Y: axis(2), Z: axis(4)}, nil
}

func (d *QMI8658) readReg(reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

func (d *QMI8658) writeReg(reg, val byte) error {
	d.w[0], d.w[1] = reg, val
	return d.bus.Tx(d.addr, d.w[:2], nil)
}
