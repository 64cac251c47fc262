package mqtt

import (
	"fmt"
	"testing"
)

func seq(i int) Message {
	return Message{Topic: "devpanel/ui/clock", Payload: []byte{byte(i)}}
}

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(10)
	got := rb.drainAll()
	if got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingBufferPushAndDrain(t *testing.T) {
	rb := newRingBuffer(10)
	for i := 0; i < 5; i++ {
		rb.push(seq(i))
	}

	got := rb.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].Payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].Payload[0])
		}
	}

	// Second drain should be empty
	if got2 := rb.drainAll(); got2 != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got2))
	}
}

func TestRingBufferOverflow(t *testing.T) {
	size := 5
	rb := newRingBuffer(size)

	// Push 8 items (0..7); the most recent 5 (3..7) survive.
	for i := 0; i < size+3; i++ {
		rb.push(seq(i))
	}

	got := rb.drainAll()
	if len(got) != size {
		t.Fatalf("expected %d items, got %d", size, len(got))
	}
	for i, m := range got {
		if want := byte(i + 3); m.Payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, m.Payload[0])
		}
	}
	if rb.dropped != 0 {
		t.Errorf("dropped not reset by drain: %d", rb.dropped)
	}
}

func TestRingBufferMultipleCycles(t *testing.T) {
	rb := newRingBuffer(3)
	for cycle := 0; cycle < 3; cycle++ {
		for i := 0; i < 4; i++ {
			rb.push(seq(cycle*10 + i))
		}
		got := rb.drainAll()
		if len(got) != 3 {
			t.Fatalf("cycle %d: expected 3 items, got %d", cycle, len(got))
		}
		if first := got[0].Payload[0]; first != byte(cycle*10+1) {
			t.Errorf("cycle %d: oldest payload %d, want %d", cycle, first, cycle*10+1)
		}
	}
}

func TestRingBufferRetainedCoalesce(t *testing.T) {
	rb := newRingBuffer(10)
	rb.push(Message{Topic: "devpanel/ui/clock", Payload: []byte("a"), Retained: true})
	rb.push(Message{Topic: "devpanel/system", Payload: []byte("startup"), QoS: 1, Retained: true})
	rb.push(Message{Topic: "devpanel/ui/clock", Payload: []byte("b"), Retained: true})
	rb.push(Message{Topic: "devpanel/ui/clock", Payload: []byte("c"), Retained: true})

	if rb.len() != 2 {
		t.Fatalf("len: got %d, want 2", rb.len())
	}
	got := rb.drainAll()
	if got[0].Topic != "devpanel/ui/clock" || string(got[0].Payload) != "c" {
		t.Errorf("item 0: got %s %q, want latest clock in first slot", got[0].Topic, got[0].Payload)
	}
	if got[1].Topic != "devpanel/system" {
		t.Errorf("item 1: got %s", got[1].Topic)
	}
}

func TestRingBufferNonRetainedKept(t *testing.T) {
	rb := newRingBuffer(10)
	for i := 0; i < 3; i++ {
		rb.push(Message{Topic: "devpanel/ui/carousel", Payload: []byte(fmt.Sprint(i))})
	}
	if rb.len() != 3 {
		t.Errorf("len: got %d, want 3", rb.len())
	}
}

func TestRingBufferRetainedAfterWrap(t *testing.T) {
	rb := newRingBuffer(3)
	for i := 0; i < 4; i++ {
		rb.push(Message{Topic: fmt.Sprintf("t/%d", i), Payload: []byte{byte(i)}, Retained: true})
	}
	// Buffer holds t/1, t/2, t/3 with head wrapped; update t/1 in place.
	rb.push(Message{Topic: "t/1", Payload: []byte{9}, Retained: true})

	got := rb.drainAll()
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	if got[0].Topic != "t/1" || got[0].Payload[0] != 9 {
		t.Errorf("item 0: got %s %v", got[0].Topic, got[0].Payload)
	}
}

func TestRingBufferPreservesFields(t *testing.T) {
	rb := newRingBuffer(10)
	rb.push(Message{
		Topic:    "devpanel/ui/scan",
		Payload:  []byte("ble : 1 wifi : 2"),
		QoS:      1,
		Retained: true,
	})

	got := rb.drainAll()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].Topic != "devpanel/ui/scan" {
		t.Errorf("topic: got %s, want devpanel/ui/scan", got[0].Topic)
	}
	if string(got[0].Payload) != "ble : 1 wifi : 2" {
		t.Errorf("payload: got %s", got[0].Payload)
	}
	if got[0].QoS != 1 {
		t.Errorf("qos: got %d, want 1", got[0].QoS)
	}
	if !got[0].Retained {
		t.Error("retained: got false, want true")
	}
}
