// Package hand models the output of the external hand-landmark recognizer and
// classifies the single gesture the trail reacts to
package hand

import (
	"math"
	"time"

	"github.com/lixenwraith/inktrail/constants"
)

// Landmark is a recognizer keypoint in normalized image space
// X and Y are in [0,1], Z is relative depth and ignored by the trail
type Landmark struct {
	X, Y, Z float64
}

// Hand is one detected hand in MediaPipe topology
type Hand [constants.LandmarkCount]Landmark

// Frame is one recognizer result
// Zero hands means no hand is currently visible, which is a normal state
type Frame struct {
	Seq      uint32
	Captured time.Time
	Hands    []Hand
}

// Primary returns the first detected hand, single-hand detection ignores the rest
func (f Frame) Primary() (Hand, bool) {
	if len(f.Hands) == 0 {
		return Hand{}, false
	}
	return f.Hands[0], true
}

// Thumb returns the thumb tip landmark
func (h *Hand) Thumb() Landmark {
	return h[constants.ThumbTip]
}

// Index returns the index fingertip landmark
func (h *Hand) Index() Landmark {
	return h[constants.IndexTip]
}

// PinchDistance is the thumb-index distance in normalized X/Y
func PinchDistance(h *Hand) float64 {
	t, i := h.Thumb(), h.Index()
	return math.Hypot(i.X-t.X, i.Y-t.Y)
}

// IsPinching reports whether the hand is in the drawing gesture
// Distance equal to the threshold counts as released
func IsPinching(h *Hand, threshold float64) bool {
	return PinchDistance(h) < threshold
}
