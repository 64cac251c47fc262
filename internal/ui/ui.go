// Package ui defines the display sink the panel tasks write to and the
// Display that serialises those writes onto one or more rendering backends.
package ui

import "unicode/utf8"

// Field identifies a text element on the panel.
type Field string

const (
	FieldClock    Field = "clock"
	FieldMotion   Field = "motion"
	FieldBattery  Field = "battery"
	FieldScan     Field = "scan"
	FieldSelfTest Field = "selftest"
	FieldStorage  Field = "storage"
)

// Fields lists every field in display order.
var Fields = []Field{FieldClock, FieldMotion, FieldBattery, FieldStorage, FieldScan, FieldSelfTest}

// maxLen is the longest text each field displays, in characters.
var maxLen = map[Field]int{
	FieldClock:    44,
	FieldMotion:   49,
	FieldBattery:  29,
	FieldScan:     44,
	FieldSelfTest: 49,
	FieldStorage:  44,
}

// MaxLen returns the display limit for f. Unknown fields get 49.
func MaxLen(f Field) int {
	if n, ok := maxLen[f]; ok {
		return n
	}
	return 49
}

// Clip shortens text to the display limit of f without splitting a rune.
func Clip(f Field, text string) string {
	limit := MaxLen(f)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}

// Sink accepts display updates. Tasks only ever write; they never query UI state.
type Sink interface {
	SetText(f Field, text string)
	ShowImage(path string)
}

// Carousel controls the start-up slide carousel.
type Carousel interface {
	SetScrollable(on bool)
	ShowSlide(n int)
	ScrollBy(dx int, animate bool)
}

// Backend renders display updates. Backends are called with the Display lock
// held and must not block for long.
type Backend interface {
	Sink
	Carousel
}
