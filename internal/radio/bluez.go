package radio

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	bluezBus        = "org.bluez"
	adapterIface    = "org.bluez.Adapter1"
	deviceIface     = "org.bluez.Device1"
	propsIface      = "org.freedesktop.DBus.Properties"
	objManagerIface = "org.freedesktop.DBus.ObjectManager"
	ifacesAdded     = objManagerIface + ".InterfacesAdded"

	// DefaultAdapter is the BlueZ adapter used when none is configured.
	DefaultAdapter = "hci0"

	// DefaultQueueSize bounds the discovery queue.
	DefaultQueueSize = 64
)

// BlueZ is the BLE stack backed by BlueZ on the system bus. The bus
// connection is opened by Acquire and closed by Release, so nothing is held
// while Wi-Fi owns the radio.
type BlueZ struct {
	adapter dbus.ObjectPath
	size    int

	mu      sync.Mutex
	conn    *dbus.Conn
	signals chan *dbus.Signal
	done    chan struct{}
	queue   chan Device
	dropped atomic.Int64
}

// NewBlueZ creates a BLE stack for the named adapter (e.g. "hci0").
func NewBlueZ(adapter string, queueSize int) *BlueZ {
	if adapter == "" {
		adapter = DefaultAdapter
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &BlueZ{
		adapter: dbus.ObjectPath("/org/bluez/" + adapter),
		size:    queueSize,
	}
}

// Dropped returns how many discovery records were dropped on a full queue.
func (b *BlueZ) Dropped() int64 {
	return b.dropped.Load()
}

// Acquire connects to the system bus and powers the adapter on.
func (b *BlueZ) Acquire(ctx context.Context) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("connect to system bus: %w", err)
	}
	var names []string
	if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		conn.Close()
		return fmt.Errorf("list bus names: %w", err)
	}
	if !hasName(names, bluezBus) {
		conn.Close()
		return fmt.Errorf("%s not found on system bus", bluezBus)
	}
	adapter := conn.Object(bluezBus, b.adapter)
	if err := adapter.CallWithContext(ctx, propsIface+".Set", 0, adapterIface, "Powered", dbus.MakeVariant(true)).Err; err != nil {
		conn.Close()
		return fmt.Errorf("power on %s: %w", b.adapter, err)
	}

	b.mu.Lock()
	b.conn = conn
	b.queue = make(chan Device, b.size)
	b.mu.Unlock()
	return nil
}

// Start subscribes to new device objects and starts LE discovery.
func (b *BlueZ) Start(ctx context.Context) error {
	b.mu.Lock()
	conn, queue := b.conn, b.queue
	b.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("start discovery: not acquired")
	}

	if err := conn.AddMatchSignalContext(ctx, b.matchOptions()...); err != nil {
		return fmt.Errorf("subscribe InterfacesAdded: %w", err)
	}
	ch := make(chan *dbus.Signal, 16)
	done := make(chan struct{})
	conn.Signal(ch)
	b.mu.Lock()
	b.signals, b.done = ch, done
	b.mu.Unlock()
	go b.watch(ch, done, queue)

	adapter := conn.Object(bluezBus, b.adapter)
	filter := map[string]dbus.Variant{"Transport": dbus.MakeVariant("le")}
	if err := adapter.CallWithContext(ctx, adapterIface+".SetDiscoveryFilter", 0, filter).Err; err != nil {
		b.unsubscribe(ctx, conn)
		return fmt.Errorf("set discovery filter: %w", err)
	}
	if err := adapter.CallWithContext(ctx, adapterIface+".StartDiscovery", 0).Err; err != nil {
		b.unsubscribe(ctx, conn)
		return fmt.Errorf("start discovery: %w", err)
	}
	return nil
}

// unsubscribe drops the InterfacesAdded subscription and stops watch, if
// one is running.
func (b *BlueZ) unsubscribe(ctx context.Context, conn *dbus.Conn) {
	b.mu.Lock()
	ch, done := b.signals, b.done
	b.signals, b.done = nil, nil
	b.mu.Unlock()
	if ch == nil {
		return
	}
	conn.RemoveSignal(ch)
	if err := conn.RemoveMatchSignalContext(ctx, b.matchOptions()...); err != nil {
		log.Printf("radio: remove match: %v", err)
	}
	close(done)
}

// matchOptions selects InterfacesAdded from the BlueZ object manager, which
// lives at the root path.
func (b *BlueZ) matchOptions() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchObjectPath("/"),
		dbus.WithMatchInterface(objManagerIface),
		dbus.WithMatchMember("InterfacesAdded"),
	}
}

func (b *BlueZ) watch(ch <-chan *dbus.Signal, done <-chan struct{}, queue chan<- Device) {
	for {
		var sig *dbus.Signal
		select {
		case s, ok := <-ch:
			if !ok {
				return
			}
			sig = s
		case <-done:
			return
		}
		if sig == nil || sig.Name != ifacesAdded || len(sig.Body) < 2 {
			continue
		}
		path, ok := sig.Body[0].(dbus.ObjectPath)
		if !ok || !strings.HasPrefix(string(path), string(b.adapter)+"/") {
			continue
		}
		ifaces, ok := sig.Body[1].(map[string]map[string]dbus.Variant)
		if !ok {
			continue
		}
		props, ok := ifaces[deviceIface]
		if !ok {
			continue
		}
		if !offer(queue, deviceFromProps(path, props)) {
			b.dropped.Add(1)
		}
	}
}

// Next returns the next discovered device.
func (b *BlueZ) Next(ctx context.Context, timeout time.Duration) (Device, error) {
	b.mu.Lock()
	queue := b.queue
	b.mu.Unlock()
	if queue == nil {
		return Device{}, ErrTimeout
	}
	return receive(ctx, queue, timeout)
}

// Stop ends discovery and the signal subscription.
func (b *BlueZ) Stop(ctx context.Context) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return nil
	}
	err := conn.Object(bluezBus, b.adapter).CallWithContext(ctx, adapterIface+".StopDiscovery", 0).Err
	b.unsubscribe(ctx, conn)
	if err != nil {
		return fmt.Errorf("stop discovery: %w", err)
	}
	return nil
}

// Release powers the adapter off and closes the bus connection.
func (b *BlueZ) Release(ctx context.Context) error {
	b.mu.Lock()
	conn := b.conn
	b.conn = nil
	b.queue = nil
	b.mu.Unlock()
	if conn == nil {
		return nil
	}
	defer conn.Close()
	b.unsubscribe(ctx, conn)
	adapter := conn.Object(bluezBus, b.adapter)
	if err := adapter.CallWithContext(ctx, propsIface+".Set", 0, adapterIface, "Powered", dbus.MakeVariant(false)).Err; err != nil {
		return fmt.Errorf("power off %s: %w", b.adapter, err)
	}
	if n := b.dropped.Load(); n > 0 {
		log.Printf("radio: %d discovery records dropped", n)
	}
	return nil
}

// deviceFromProps builds a Device from an org.bluez.Device1 property map.
func deviceFromProps(path dbus.ObjectPath, props map[string]dbus.Variant) Device {
	d := Device{Address: macFromPath(path)}
	if v, ok := props["Address"]; ok {
		if s, ok := v.Value().(string); ok {
			d.Address = s
		}
	}
	if v, ok := props["Name"]; ok {
		if s, ok := v.Value().(string); ok {
			d.Name = s
		}
	}
	if v, ok := props["RSSI"]; ok {
		if n, ok := v.Value().(int16); ok {
			d.RSSI = n
		}
	}
	return d
}

// macFromPath extracts a MAC address from a BlueZ device object path.
func macFromPath(path dbus.ObjectPath) string {
	s := string(path)
	i := strings.LastIndex(s, "/dev_")
	if i < 0 {
		return ""
	}
	return strings.ReplaceAll(s[i+len("/dev_"):], "_", ":")
}

func hasName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
