package radio

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"

	"github.com/sweeney/devpanel/internal/events"
)

const (
	wpaBus       = "fi.w1.wpa_supplicant1"
	wpaPath      = "/fi/w1/wpa_supplicant1"
	wpaIface     = "fi.w1.wpa_supplicant1.Interface"
	scanDoneName = wpaIface + ".ScanDone"

	// DefaultInterface is the wireless interface used when none is configured.
	DefaultInterface = "wlan0"
)

// WPA is the Wi-Fi stack backed by wpa_supplicant on the system bus.
type WPA struct {
	conn       *dbus.Conn
	path       dbus.ObjectPath
	disconnect bool

	mu      sync.Mutex
	signals chan *dbus.Signal
	done    chan struct{}
	aps     atomic.Int32
}

// NewWPA connects to wpa_supplicant and looks up the named interface.
// When disconnect is set, Release also drops the current association.
func NewWPA(ctx context.Context, ifname string, disconnect bool) (*WPA, error) {
	if ifname == "" {
		ifname = DefaultInterface
	}
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}
	var path dbus.ObjectPath
	root := conn.Object(wpaBus, wpaPath)
	if err := root.CallWithContext(ctx, wpaBus+".GetInterface", 0, ifname).Store(&path); err != nil {
		conn.Close()
		return nil, fmt.Errorf("get interface %s: %w", ifname, err)
	}
	return &WPA{conn: conn, path: path, disconnect: disconnect}, nil
}

// Scan starts an active scan. WifiStarted is set once the request is
// accepted and WifiScanDone once wpa_supplicant reports a successful scan.
func (w *WPA) Scan(ctx context.Context, group *events.Group) error {
	if err := w.conn.AddMatchSignalContext(ctx,
		dbus.WithMatchInterface(wpaIface),
		dbus.WithMatchMember("ScanDone"),
		dbus.WithMatchObjectPath(w.path),
	); err != nil {
		return fmt.Errorf("subscribe ScanDone: %w", err)
	}
	ch := make(chan *dbus.Signal, 4)
	done := make(chan struct{})
	w.conn.Signal(ch)
	w.mu.Lock()
	w.signals, w.done = ch, done
	w.mu.Unlock()
	go w.watch(ch, done, group)

	args := map[string]dbus.Variant{"Type": dbus.MakeVariant("active")}
	if err := w.conn.Object(wpaBus, w.path).CallWithContext(ctx, wpaIface+".Scan", 0, args).Err; err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	group.Set(events.WifiStarted)
	log.Printf("radio: wifi scan started")
	return nil
}

func (w *WPA) watch(ch <-chan *dbus.Signal, done <-chan struct{}, group *events.Group) {
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
		if sig == nil || sig.Name != scanDoneName || sig.Path != w.path || len(sig.Body) < 1 {
			continue
		}
		if ok, _ := sig.Body[0].(bool); !ok {
			log.Printf("radio: wifi scan failed")
			continue
		}
		n, err := w.bssCount()
		if err != nil {
			log.Printf("radio: read BSSs: %v", err)
			continue
		}
		w.aps.Store(int32(n))
		group.Set(events.WifiScanDone)
	}
}

func (w *WPA) bssCount() (int, error) {
	v, err := w.conn.Object(wpaBus, w.path).GetProperty(wpaIface + ".BSSs")
	if err != nil {
		return 0, err
	}
	paths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return 0, fmt.Errorf("unexpected BSSs type %T", v.Value())
	}
	return len(paths), nil
}

// APCount returns the access point count from the last successful scan.
func (w *WPA) APCount() int {
	return int(w.aps.Load())
}

// Release aborts any scan in progress, optionally disconnects, and closes
// the bus connection.
func (w *WPA) Release(ctx context.Context) error {
	w.mu.Lock()
	ch, done := w.signals, w.done
	w.signals, w.done = nil, nil
	w.mu.Unlock()

	obj := w.conn.Object(wpaBus, w.path)
	if err := obj.CallWithContext(ctx, wpaIface+".AbortScan", 0).Err; err != nil {
		log.Printf("radio: abort scan: %v", err)
	}
	var err error
	if w.disconnect {
		if derr := obj.CallWithContext(ctx, wpaIface+".Disconnect", 0).Err; derr != nil {
			err = fmt.Errorf("disconnect: %w", derr)
		}
	}
	if ch != nil {
		w.conn.RemoveSignal(ch)
		close(done)
	}
	if cerr := w.conn.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close bus: %w", cerr)
	}
	return err
}
