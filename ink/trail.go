// Package ink holds the trail buffer and fade scheduler
//
// A Trail is fed by two independent drivers: the recognizer callback calls
// Observe (or AddPoint) to append, and the redraw loop calls Tick to age and
// evict. Trail is not safe for concurrent use; the owner serializes both
// drivers on one goroutine.
package ink

import (
	"time"

	"github.com/lixenwraith/inktrail/constants"
	"github.com/lixenwraith/inktrail/hand"
)

// Config controls buffering and fade behaviour
type Config struct {
	WindowCapacity   int
	MinWindowDepth   int
	SegmentLookback  int
	InterpolationGap float64
	FadeHorizon      time.Duration
	PinchThreshold   float64
	Surface          hand.Surface
}

// DefaultConfig returns the stock trail behaviour
func DefaultConfig() Config {
	return Config{
		WindowCapacity:   constants.WindowCapacity,
		MinWindowDepth:   constants.MinWindowDepth,
		SegmentLookback:  constants.SegmentLookback,
		InterpolationGap: constants.InterpolationGap,
		FadeHorizon:      constants.FadeHorizon,
		PinchThreshold:   constants.PinchThreshold,
		Surface:          hand.DefaultSurface(),
	}
}

// Stats are lifetime counters for the status line
type Stats struct {
	Live         int
	Created      uint64
	Expired      uint64
	Cleared      uint64
	Interpolated uint64
}

// Update describes what a single Observe call did
type Update struct {
	Visible  bool // a hand was present in the frame
	Pinching bool
	Started  bool // pinch began on this frame
	Released bool // pinch ended on this frame
	Segment  *Segment
}

// Trail owns the smoothing window and the segment buffer
type Trail struct {
	config   Config
	window   *Window
	segments []Segment
	drawing  bool
	stats    Stats
}

// NewTrail creates an empty trail
func NewTrail(cfg Config) *Trail {
	return &Trail{
		config:   cfg,
		window:   NewWindow(cfg.WindowCapacity),
		segments: make([]Segment, 0, 256),
	}
}

// Config returns the trail configuration
func (t *Trail) Config() Config {
	return t.config
}

// Observe consumes one recognizer frame
// Missing hands leave all state untouched; a released pinch empties the window
func (t *Trail) Observe(f hand.Frame, now time.Time) Update {
	h, ok := f.Primary()
	if !ok {
		return Update{Pinching: t.drawing}
	}

	pinching := hand.IsPinching(&h, t.config.PinchThreshold)
	u := Update{
		Visible:  true,
		Pinching: pinching,
		Started:  pinching && !t.drawing,
		Released: !pinching && t.drawing,
	}
	t.drawing = pinching

	if !pinching {
		t.window.Reset()
		return u
	}

	x, y := t.config.Surface.Project(h.Index())
	if seg, ok := t.AddPoint(Point{X: x, Y: y}, now); ok {
		u.Segment = &seg
	}
	return u
}

// AddPoint appends a smoothed point and synthesizes a segment once the window
// is deep enough
// Returns the created segment, if any
func (t *Trail) AddPoint(p Point, now time.Time) (Segment, bool) {
	t.window.Push(p)

	n := t.window.Len()
	if n < t.config.MinWindowDepth || n < t.config.SegmentLookback {
		return Segment{}, false
	}

	prev := t.window.At(n - t.config.SegmentLookback)

	// Missed frames leave visible jumps, bridge them with a midpoint
	if prev.Dist(p) > t.config.InterpolationGap {
		t.window.Insert(n-2, prev.Midpoint(p))
		t.stats.Interpolated++
	}

	seg := newSegment(prev, p, now)
	t.segments = append(t.segments, seg)
	t.stats.Created++
	return seg, true
}

// Tick evicts segments older than the fade horizon and refreshes opacity on
// the rest
// The returned slice is in creation order and is only valid until the next
// call that mutates the trail
func (t *Trail) Tick(now time.Time) []Segment {
	horizon := t.config.FadeHorizon
	live := t.segments[:0]
	for _, s := range t.segments {
		if s.Expired(now, horizon) {
			t.stats.Expired++
			continue
		}
		s.Opacity = s.OpacityAt(now, horizon)
		live = append(live, s)
	}
	// Release references held past the new length
	clear(t.segments[len(live):])
	t.segments = live
	return t.segments
}

// Clear drops every segment regardless of age
func (t *Trail) Clear() {
	t.stats.Cleared += uint64(len(t.segments))
	clear(t.segments)
	t.segments = t.segments[:0]
}

// Segments returns a copy of the live segment buffer
func (t *Trail) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Len returns the number of buffered segments
func (t *Trail) Len() int {
	return len(t.segments)
}

// Window returns a copy of the smoothing window, oldest first
func (t *Trail) Window() []Point {
	return t.window.Points()
}

// Drawing reports whether the last visible hand was pinching
func (t *Trail) Drawing() bool {
	return t.drawing
}

// Stats returns a snapshot of the trail counters
func (t *Trail) Stats() Stats {
	s := t.stats
	s.Live = len(t.segments)
	return s
}
