// Package scan runs the one-shot radio survey: wait for the Wi-Fi scan,
// hand the radio over to BLE, count advertisers, and publish a summary.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/sweeney/devpanel/internal/events"
	"github.com/sweeney/devpanel/internal/radio"
	"github.com/sweeney/devpanel/internal/ui"
)

// Default timings.
const (
	DefaultWifiWait = 30 * time.Second
	DefaultItemWait = 3500 * time.Millisecond
	DefaultPacing   = 20 * time.Millisecond
)

// ErrAlreadyRan reports a second Run on the same sequencer.
var ErrAlreadyRan = errors.New("scan: already ran")

// Radio is the radio handoff the sequencer drives. *radio.Controller
// implements it.
type Radio interface {
	ReleaseWifi(ctx context.Context) error
	AcquireBLE(ctx context.Context) error
	Next(ctx context.Context, timeout time.Duration) (radio.Device, error)
	ReleaseBLE(ctx context.Context) error
}

// APCounter reports the access point count of the finished Wi-Fi scan.
type APCounter interface {
	APCount() int
}

// Summary is the outcome of one survey.
type Summary struct {
	BLECount  int
	BLEFailed bool
	WifiCount int
	WifiKnown bool
	Devices   []radio.Device
}

// Text renders the summary for the scan field.
func (s Summary) Text() string {
	ble := fmt.Sprint(s.BLECount)
	if s.BLEFailed {
		ble = "err"
	}
	if !s.WifiKnown {
		return fmt.Sprintf("ble : %s wifi : unknown", ble)
	}
	return fmt.Sprintf("ble : %s wifi : %d", ble, s.WifiCount)
}

// Config holds the survey timings.
type Config struct {
	WifiWait time.Duration
	ItemWait time.Duration
	Pacing   time.Duration
}

func (c *Config) applyDefaults() {
	if c.WifiWait <= 0 {
		c.WifiWait = DefaultWifiWait
	}
	if c.ItemWait <= 0 {
		c.ItemWait = DefaultItemWait
	}
	if c.Pacing < 0 {
		c.Pacing = 0
	}
}

// Sequencer runs the survey once.
type Sequencer struct {
	cfg   Config
	wifi  *events.Group
	radio Radio
	aps   APCounter
	sink  ui.Sink
	ran   atomic.Bool
}

// New creates a sequencer. aps may be nil when no Wi-Fi stack is present;
// the Wi-Fi count is then reported as unknown.
func New(cfg Config, wifi *events.Group, r Radio, aps APCounter, sink ui.Sink) *Sequencer {
	cfg.applyDefaults()
	return &Sequencer{cfg: cfg, wifi: wifi, radio: r, aps: aps, sink: sink}
}

// Run performs the survey, publishes its summary and returns it.
// The Wi-Fi stack is always released before BLE is acquired.
func (s *Sequencer) Run(ctx context.Context) (Summary, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return Summary{}, ErrAlreadyRan
	}

	var sum Summary
	bits := s.wifi.Wait(ctx, events.WifiScanDone, events.WaitOptions{All: true, Clear: true}, s.cfg.WifiWait)
	if bits.Has(events.WifiScanDone) && s.aps != nil {
		sum.WifiKnown = true
		sum.WifiCount = s.aps.APCount()
	} else {
		log.Printf("scan: wifi scan not done after %v", s.cfg.WifiWait)
	}

	// Teardown runs to completion even when ctx is cancelled.
	teardown := context.WithoutCancel(ctx)

	if err := s.radio.ReleaseWifi(teardown); err != nil && !errors.Is(err, radio.ErrInvalidTransition) {
		log.Printf("scan: %v", err)
	}

	if err := s.radio.AcquireBLE(ctx); err != nil {
		log.Printf("scan: %v", err)
		sum.BLEFailed = true
		s.publish(sum)
		return sum, nil
	}

	sum.Devices = s.drain(ctx)
	sum.BLECount = len(sum.Devices)
	s.publish(sum)

	if err := s.radio.ReleaseBLE(teardown); err != nil {
		log.Printf("scan: %v", err)
	}
	return sum, ctx.Err()
}

// drain collects devices until one per-item wait passes without a record.
func (s *Sequencer) drain(ctx context.Context) []radio.Device {
	var found []radio.Device
	for {
		d, err := s.radio.Next(ctx, s.cfg.ItemWait)
		if err != nil {
			if !errors.Is(err, radio.ErrTimeout) {
				log.Printf("scan: discovery ended: %v", err)
			}
			return found
		}
		found = append(found, d)
		if !sleep(ctx, s.cfg.Pacing) {
			return found
		}
	}
}

func (s *Sequencer) publish(sum Summary) {
	text := sum.Text()
	log.Printf("scan: %s", text)
	s.sink.SetText(ui.FieldScan, text)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
