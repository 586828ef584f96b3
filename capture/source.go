// Package capture acquires landmark frames: either from the recognizer
// sidecar, which owns the camera, or from a local pointer fallback
package capture

import (
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/inktrail/hand"
)

// Source delivers recognizer frames
// Frames is closed when the source ends
type Source interface {
	Frames() <-chan hand.Frame
	Stats() Stats
	Close() error
}

// Stats counts delivered and dropped frames
type Stats struct {
	Delivered uint64
	Dropped   uint64
}

// gesture is the pinch state a frame carries
type gesture uint8

const (
	gestureNone  gesture = iota // no hand visible
	gestureOpen                 // hand visible, not pinching
	gesturePinch
)

// classify returns the gesture of the frame's primary hand
func classify(f hand.Frame, threshold float64) gesture {
	h, ok := f.Primary()
	switch {
	case !ok:
		return gestureNone
	case hand.IsPinching(&h, threshold):
		return gesturePinch
	default:
		return gestureOpen
	}
}

// mailboxDepth bounds the queued pinch transitions
const mailboxDepth = 8

// mailbox is a latest-wins queue that never loses a pinch transition
// An unconsumed frame is replaced only by a newer frame with the same gesture,
// so a slow consumer still sees every press and release in order
type mailbox struct {
	ch     chan hand.Frame
	mu     sync.Mutex
	closed bool

	// keys holds the gesture of every queued frame, oldest first
	keys []gesture
	buf  []hand.Frame

	delivered atomic.Uint64
	dropped   atomic.Uint64
}

func newMailbox() *mailbox {
	return &mailbox{
		ch:   make(chan hand.Frame, mailboxDepth),
		keys: make([]gesture, 0, mailboxDepth+1),
		buf:  make([]hand.Frame, 0, mailboxDepth),
	}
}

// publish queues f, coalescing it with the newest queued frame when the
// gesture is unchanged
func (m *mailbox) publish(f hand.Frame, g gesture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	// Take back what the consumer has not read; it only ever removes from the front
	pending := m.buf[:0]
	for drained := false; !drained; {
		select {
		case p := <-m.ch:
			pending = append(pending, p)
		default:
			drained = true
		}
	}
	m.keys = append(m.keys[:0], m.keys[len(m.keys)-len(pending):]...)

	if n := len(pending); n > 0 {
		last := m.keys[n-1]
		switch {
		case last == g || last == gestureNone:
			pending = pending[:n-1]
			m.keys = m.keys[:n-1]
			m.dropped.Add(1)
		case g == gestureNone:
			// A frame without a hand leaves the trail untouched
			m.dropped.Add(1)
			m.refill(pending)
			return
		}
	}

	// Queued gestures alternate, dropping the oldest pair keeps the order of
	// presses and releases intact
	if len(pending) == mailboxDepth {
		pending = pending[2:]
		m.keys = append(m.keys[:0], m.keys[2:]...)
		m.dropped.Add(2)
	}

	m.refill(pending)
	m.ch <- f
	m.keys = append(m.keys, g)
	m.delivered.Add(1)
}

// refill puts frames back in order, must hold mu
func (m *mailbox) refill(frames []hand.Frame) {
	for _, p := range frames {
		m.ch <- p
	}
}

func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.ch)
	}
}

func (m *mailbox) stats() Stats {
	return Stats{Delivered: m.delivered.Load(), Dropped: m.dropped.Load()}
}
