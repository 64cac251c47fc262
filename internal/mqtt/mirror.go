package mqtt

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/sweeney/devpanel/internal/ui"
)

// DefaultQueueSize bounds the mirror's outgoing queue.
const DefaultQueueSize = 64

// Mirror is a display backend that republishes every display change to MQTT.
// Display calls only enqueue; Run does the publishing, so a slow broker never
// stalls the display.
type Mirror struct {
	pub    Publisher
	topics Topics
	queue  chan Message

	mu         sync.Mutex
	slide      int
	scrollable bool

	dropped atomic.Int64
}

// NewMirror creates a mirror publishing through pub.
func NewMirror(pub Publisher, topics Topics, size int) *Mirror {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Mirror{pub: pub, topics: topics, queue: make(chan Message, size), scrollable: true}
}

// Run publishes queued messages until ctx is done, then flushes what is left.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case msg := <-m.queue:
			m.publish(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-m.queue:
					m.publish(msg)
				default:
					return
				}
			}
		}
	}
}

func (m *Mirror) publish(msg Message) {
	if err := m.pub.Publish(msg); err != nil {
		log.Printf("mqtt: %v", err)
	}
}

func (m *Mirror) enqueue(msg Message) {
	select {
	case m.queue <- msg:
	default:
		if m.dropped.Add(1) == 1 {
			log.Printf("mqtt: mirror queue full, dropping updates")
		}
	}
}

// Dropped returns how many updates were dropped on a full queue.
func (m *Mirror) Dropped() int64 {
	return m.dropped.Load()
}

// SetText publishes the field text, retained.
func (m *Mirror) SetText(f ui.Field, text string) {
	m.enqueue(Message{Topic: m.topics.Field(f), Payload: []byte(text), QoS: 1, Retained: true})
}

// ShowImage publishes the image path, retained.
func (m *Mirror) ShowImage(path string) {
	m.enqueue(Message{Topic: m.topics.Image(), Payload: []byte(path), QoS: 1, Retained: true})
}

// SetScrollable publishes the carousel state.
func (m *Mirror) SetScrollable(on bool) {
	m.mu.Lock()
	m.scrollable = on
	p := CarouselPayload{Slide: m.slide, Scrollable: on}
	m.mu.Unlock()
	m.carousel(p)
}

// ShowSlide publishes the carousel state.
func (m *Mirror) ShowSlide(n int) {
	m.mu.Lock()
	m.slide = n
	p := CarouselPayload{Slide: n, Scrollable: m.scrollable}
	m.mu.Unlock()
	m.carousel(p)
}

// ScrollBy publishes a scroll transition.
func (m *Mirror) ScrollBy(dx int, animate bool) {
	m.mu.Lock()
	p := CarouselPayload{Slide: m.slide, Scrollable: m.scrollable, ScrollBy: dx, Animate: animate}
	m.mu.Unlock()
	m.carousel(p)
}

func (m *Mirror) carousel(p CarouselPayload) {
	m.enqueue(Message{Topic: m.topics.Carousel(), Payload: FormatCarousel(p), QoS: 0, Retained: true})
}
