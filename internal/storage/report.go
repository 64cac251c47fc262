package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/devpanel/internal/events"
	"github.com/sweeney/devpanel/internal/ui"
)

// DefaultMountWait bounds the wait for the storage mount at start-up.
const DefaultMountWait = 15 * time.Second

// CapacityFunc returns the total size of the filesystem holding path, in bytes.
type CapacityFunc func(path string) (uint64, error)

// FormatCapacity renders a byte count for the storage field.
func FormatCapacity(bytes uint64) string {
	return fmt.Sprintf("sdcard : %.2fG", float64(bytes)/(1<<30))
}

// Report waits for the mount bit, then publishes the storage capacity once.
// On timeout (or when the capacity cannot be read) the field shows "null".
func Report(ctx context.Context, group *events.Group, root string, capacity CapacityFunc, sink ui.Sink, wait time.Duration) {
	bits := group.Wait(ctx, events.StorageMounted, events.WaitOptions{All: true, Clear: true}, wait)
	if !bits.Has(events.StorageMounted) {
		log.Printf("storage: %s not mounted after %v", root, wait)
		sink.SetText(ui.FieldStorage, "null")
		return
	}

	size, err := capacity(root)
	if err != nil {
		log.Printf("storage: capacity of %s: %v", root, err)
		sink.SetText(ui.FieldStorage, "null")
		return
	}
	text := FormatCapacity(size)
	log.Printf("storage: %s", text)
	sink.SetText(ui.FieldStorage, text)
}

// WatchMount polls s for root and sets the mount bit once
// it exists. It returns when the bit is set or ctx is done.
func WatchMount(ctx context.Context, s Store, root string, group *events.Group, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if s.Exists(root) {
			log.Printf("storage: %s mounted", root)
			group.Set(events.StorageMounted)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
