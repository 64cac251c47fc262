// Package radio sequences the mutually exclusive Wi-Fi and BLE radio stacks
// that share one antenna.
package radio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// State is the radio ownership state.
type State int

const (
	StateIdle State = iota
	StateWifiActive
	StateTransitioning
	StateBLEActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateWifiActive:
		return "WIFI_ACTIVE"
	case StateTransitioning:
		return "TRANSITIONING"
	case StateBLEActive:
		return "BLE_ACTIVE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrTimeout reports that no discovery record arrived within the wait.
	ErrTimeout = errors.New("radio: timeout")

	// ErrInvalidTransition reports a call made from the wrong ownership state.
	ErrInvalidTransition = errors.New("radio: invalid transition")

	// ErrUnavailable reports that no BLE stack is configured.
	ErrUnavailable = errors.New("radio: stack unavailable")
)

// Device is one discovered BLE advertiser.
type Device struct {
	Address string
	Name    string
	RSSI    int16
}

// WiFi is the Wi-Fi stack.
type WiFi interface {
	// APCount returns the number of access points found by the last
	// completed scan.
	APCount() int

	// Release tears the stack down. It returns once the radio is free.
	Release(ctx context.Context) error
}

// BLE is the BLE stack.
type BLE interface {
	// Acquire brings the stack up. Calling it on an active stack is undefined.
	Acquire(ctx context.Context) error
	// Start begins discovery.
	Start(ctx context.Context) error
	// Next returns the next discovered device, or ErrTimeout.
	Next(ctx context.Context, timeout time.Duration) (Device, error)
	// Stop ends discovery.
	Stop(ctx context.Context) error
	// Release tears the stack down.
	Release(ctx context.Context) error
}

// Controller owns both stacks and enforces that at most one is active.
// Every transition blocks until the underlying stack has finished; a call
// made from the wrong state fails with ErrInvalidTransition and touches no
// hardware.
type Controller struct {
	wifi WiFi
	ble  BLE

	mu       sync.Mutex
	state    State
	onChange func(State)
}

// NewController creates a controller. Wi-Fi is brought up at boot, so the
// initial state is WifiActive when wifi is non-nil and Idle otherwise.
// onChange, if non-nil, is called after every state change.
func NewController(wifi WiFi, ble BLE, onChange func(State)) *Controller {
	c := &Controller{wifi: wifi, ble: ble, onChange: onChange}
	if wifi != nil {
		c.state = StateWifiActive
	}
	return c
}

// State returns the current ownership state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// begin moves from want to Transitioning.
func (c *Controller) begin(op string, want State) error {
	c.mu.Lock()
	if c.state != want {
		got := c.state
		c.mu.Unlock()
		return fmt.Errorf("%s from %s: %w", op, got, ErrInvalidTransition)
	}
	c.state = StateTransitioning
	c.mu.Unlock()
	c.notify(StateTransitioning)
	return nil
}

func (c *Controller) finish(to State) {
	c.mu.Lock()
	c.state = to
	c.mu.Unlock()
	c.notify(to)
}

func (c *Controller) notify(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

// ReleaseWifi tears down Wi-Fi. The controller ends Idle even when the
// stack reports an error, since no further Wi-Fi use is attempted.
func (c *Controller) ReleaseWifi(ctx context.Context) error {
	if err := c.begin("release wifi", StateWifiActive); err != nil {
		return err
	}
	err := c.wifi.Release(ctx)
	c.finish(StateIdle)
	if err != nil {
		return fmt.Errorf("release wifi: %w", err)
	}
	log.Printf("radio: wifi released")
	return nil
}

// AcquireBLE brings BLE up and starts discovery. On failure anything that
// was brought up is released again and the controller returns to Idle.
func (c *Controller) AcquireBLE(ctx context.Context) error {
	if c.ble == nil {
		return fmt.Errorf("acquire ble: %w", ErrUnavailable)
	}
	if err := c.begin("acquire ble", StateIdle); err != nil {
		return err
	}
	if err := c.ble.Acquire(ctx); err != nil {
		c.finish(StateIdle)
		return fmt.Errorf("acquire ble: %w", err)
	}
	if err := c.ble.Start(ctx); err != nil {
		if rerr := c.ble.Release(ctx); rerr != nil {
			log.Printf("radio: release after failed start: %v", rerr)
		}
		c.finish(StateIdle)
		return fmt.Errorf("start ble discovery: %w", err)
	}
	c.finish(StateBLEActive)
	log.Printf("radio: ble discovery started")
	return nil
}

// Next returns the next discovered device, or ErrTimeout once timeout
// elapses without one.
func (c *Controller) Next(ctx context.Context, timeout time.Duration) (Device, error) {
	if s := c.State(); s != StateBLEActive {
		return Device{}, fmt.Errorf("next from %s: %w", s, ErrInvalidTransition)
	}
	return c.ble.Next(ctx, timeout)
}

// ReleaseBLE stops discovery and tears BLE down. Both steps are attempted;
// the controller ends Idle.
func (c *Controller) ReleaseBLE(ctx context.Context) error {
	if err := c.begin("release ble", StateBLEActive); err != nil {
		return err
	}
	stopErr := c.ble.Stop(ctx)
	relErr := c.ble.Release(ctx)
	c.finish(StateIdle)
	if err := errors.Join(stopErr, relErr); err != nil {
		return fmt.Errorf("release ble: %w", err)
	}
	log.Printf("radio: ble released")
	return nil
}
