package sensors

import (
	"encoding/binary"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/spf13/afero"
)

// DefaultIIODevice is the ADC used for the battery divider.
const DefaultIIODevice = "/sys/bus/iio/devices/iio:device0"

// IIOBattery reads a battery voltage from an IIO ADC channel in sysfs.
// The voltage is raw × scale (millivolts) × divider.
type IIOBattery struct {
	fs      afero.Fs
	raw     string
	scale   string
	divider float64
}

// NewIIOBattery reads channel ch of the IIO device at dir. divider is the
// ratio of the external resistor divider; zero means 1.
func NewIIOBattery(fs afero.Fs, dir string, ch int, divider float64) *IIOBattery {
	if divider == 0 {
		divider = 1
	}
	return &IIOBattery{
		fs:      fs,
		raw:     path.Join(dir, fmt.Sprintf("in_voltage%d_raw", ch)),
		scale:   path.Join(dir, fmt.Sprintf("in_voltage%d_scale", ch)),
		divider: divider,
	}
}

// Voltage returns the battery voltage in volts.
func (b *IIOBattery) Voltage() (float64, error) {
	raw, err := readFloat(b.fs, b.raw)
	if err != nil {
		return 0, err
	}
	scale, err := readFloat(b.fs, b.scale)
	if err != nil {
		return 0, err
	}
	return raw * scale / 1000 * b.divider, nil
}

func readFloat(fs afero.Fs, name string) (float64, error) {
	b, err := afero.ReadFile(fs, name)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

// RegisterReader reads Modbus input registers. modbus.Client satisfies it.
type RegisterReader interface {
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
}

// ModbusBattery reads a battery voltage from one input register of a
// Modbus battery monitor, in millivolts.
type ModbusBattery struct {
	mu      sync.Mutex
	client  RegisterReader
	handler *modbus.TCPClientHandler
	reg     uint16
}

// DialModbusBattery connects to a Modbus TCP battery monitor.
func DialModbusBattery(endpoint string, unitID uint8, reg uint16, timeout time.Duration) (*ModbusBattery, error) {
	h := modbus.NewTCPClientHandler(endpoint)
	h.Timeout = timeout
	h.SlaveId = unitID
	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("modbus connect %s: %w", endpoint, err)
	}
	return &ModbusBattery{client: modbus.NewClient(h), handler: h, reg: reg}, nil
}

// NewModbusBattery reads register reg through client.
func NewModbusBattery(client RegisterReader, reg uint16) *ModbusBattery {
	return &ModbusBattery{client: client, reg: reg}
}

// Voltage returns the battery voltage in volts.
func (b *ModbusBattery) Voltage() (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, err := b.client.ReadInputRegisters(b.reg, 1)
	if err != nil {
		return 0, fmt.Errorf("modbus read %d: %w", b.reg, err)
	}
	if len(res) < 2 {
		return 0, fmt.Errorf("modbus read %d: short response (%d bytes)", b.reg, len(res))
	}
	return float64(binary.BigEndian.Uint16(res)) / 1000, nil
}

// Close drops the TCP connection, if one was dialled.
func (b *ModbusBattery) Close() error {
	if b.handler == nil {
		return nil
	}
	return b.handler.Close()
}
