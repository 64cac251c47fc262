package events

import "github.com/sweeney/devpanel/internal/logic"

// Key group bits, set by input sources.
const (
	KeySingleClick Bits = 1 << 0
	KeyDoubleClick Bits = 1 << 1
	KeyLongPress   Bits = 1 << 5

	KeyGestures = KeySingleClick | KeyDoubleClick | KeyLongPress
)

// Wi-Fi group bits, set by the Wi-Fi backend.
const (
	WifiStarted  Bits = 1 << 0
	WifiScanDone Bits = 1 << 1
)

// Storage group bits.
const (
	StorageMounted Bits = 1 << 0
)

// KeyBit returns the key bit for a gesture, or 0 for GestureNone.
func KeyBit(g logic.Gesture) Bits {
	switch g {
	case logic.GestureSingleClick:
		return KeySingleClick
	case logic.GestureDoubleClick:
		return KeyDoubleClick
	case logic.GestureLongPress:
		return KeyLongPress
	default:
		return 0
	}
}

// Decode picks one gesture from a key bit value in fixed priority order:
// single click, then double click, then long press. Lower priority bits set
// in the same value are dropped; one gesture is handled per wait cycle.
func Decode(b Bits) logic.Gesture {
	switch {
	case b.Any(KeySingleClick):
		return logic.GestureSingleClick
	case b.Any(KeyDoubleClick):
		return logic.GestureDoubleClick
	case b.Any(KeyLongPress):
		return logic.GestureLongPress
	default:
		return logic.GestureNone
	}
}

// Emit sets the key bit for g. GestureNone is ignored.
func Emit(keys *Group, g logic.Gesture) {
	if bit := KeyBit(g); bit != 0 {
		keys.Set(bit)
	}
}
