package mqtt

import "log"

// ringBuffer is a fixed-capacity FIFO of messages held while disconnected.
// A retained message replaces a buffered retained message on the same topic,
// since the broker keeps only the last one; the slot keeps its place in the
// queue. When full, the oldest message is dropped.
// Not safe for concurrent use; the caller must synchronize.
type ringBuffer struct {
	buf      []Message
	capacity int
	head     int // next write position
	count    int
	dropped  int // dropped since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		buf:      make([]Message, capacity),
		capacity: capacity,
	}
}

// start is the index of the oldest message.
func (r *ringBuffer) start() int {
	return (r.head - r.count + r.capacity) % r.capacity
}

func (r *ringBuffer) push(msg Message) {
	if msg.Retained {
		for i, s := 0, r.start(); i < r.count; i++ {
			idx := (s + i) % r.capacity
			if r.buf[idx].Retained && r.buf[idx].Topic == msg.Topic {
				r.buf[idx] = msg
				return
			}
		}
	}

	if r.count == r.capacity {
		if r.dropped == 0 {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", r.capacity)
		}
		r.dropped++
		// head points at the oldest message when full.
		r.buf[r.head] = msg
		r.head = (r.head + 1) % r.capacity
		return
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % r.capacity
	r.count++
}

func (r *ringBuffer) drainAll() []Message {
	if r.count == 0 {
		return nil
	}

	result := make([]Message, r.count)
	s := r.start()
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(s+i)%r.capacity]
	}

	if r.dropped > 0 {
		log.Printf("mqtt: %d buffered messages were dropped", r.dropped)
	}
	r.count = 0
	r.head = 0
	r.dropped = 0
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}
