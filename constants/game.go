package constants

import "time"

// Trail Buffer
const (
	// WindowCapacity is the number of recent fingertip points kept for smoothing
	WindowCapacity = 7

	// MinWindowDepth is the number of buffered points required before a segment is emitted
	MinWindowDepth = 5

	// SegmentLookback is how many positions back from the end the segment start is taken
	SegmentLookback = 4

	// InterpolationGap is the pixel distance above which a midpoint is inserted
	InterpolationGap = 50.0

	// FadeHorizon is the age after which a segment is removed
	FadeHorizon = 6000 * time.Millisecond
)

// Gesture
const (
	// PinchThreshold is the normalized thumb-index distance below which drawing is enabled
	PinchThreshold = 0.04

	// LandmarkCount is the number of landmarks per detected hand
	LandmarkCount = 21

	// ThumbTip is the landmark index of the thumb tip
	ThumbTip = 4

	// IndexTip is the landmark index of the index fingertip
	IndexTip = 8
)
