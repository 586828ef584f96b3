package constants

import "time"

// Frame Loop Timing
const (
	// FrameUpdateInterval is the redraw interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// EventQueueSize is the buffered capacity of the terminal event channel
	EventQueueSize = 256
)

// Drawing Surface
const (
	// SurfaceWidth is the logical drawing width in pixels (camera resolution hint)
	SurfaceWidth = 1920

	// SurfaceHeight is the logical drawing height in pixels
	SurfaceHeight = 1080

	// LineWidth is the stroke width in surface pixels
	LineWidth = 6.0

	// StatusBarRows is the number of terminal rows reserved below the canvas
	StatusBarRows = 1
)
