package status

import (
	"sync"
	"time"
)

// Event is one human-readable status line published during library work.
type Event struct {
	Sequence  uint64    `json:"seq"`
	Timestamp time.Time `json:"ts"`
	Text      string    `json:"text"`
}

// Sink receives every published event.
type Sink interface {
	Append(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Append implements Sink.
func (f SinkFunc) Append(evt Event) { f(evt) }

// Hub stores recent status events and fans them out to sinks. Publishing is
// synchronous so that batch progress lines reach sinks in emission order.
type Hub struct {
	mu       sync.Mutex
	capacity int
	buffer   []Event
	nextSeq  uint64
	sinks    []Sink
}

// NewHub constructs a bounded in-memory status buffer.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 256
	}
	return &Hub{capacity: capacity}
}

// AddSink wires an additional sink that receives every published event.
func (h *Hub) AddSink(sink Sink) {
	if h == nil || sink == nil {
		return
	}
	h.mu.Lock()
	h.sinks = append(h.sinks, sink)
	h.mu.Unlock()
}

// Publish appends a new status line to the hub and delivers it to sinks.
func (h *Hub) Publish(text string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.nextSeq++
	evt := Event{Sequence: h.nextSeq, Timestamp: time.Now().UTC(), Text: text}
	if len(h.buffer) == h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:h.capacity-1]
	}
	h.buffer = append(h.buffer, evt)
	sinks := append([]Sink(nil), h.sinks...)
	h.mu.Unlock()

	for _, sink := range sinks {
		sink.Append(evt)
	}
}

// Tail returns the most recent limit events without blocking.
func (h *Hub) Tail(limit int) []Event {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 || limit > len(h.buffer) {
		limit = len(h.buffer)
	}
	out := make([]Event, limit)
	copy(out, h.buffer[len(h.buffer)-limit:])
	return out
}
