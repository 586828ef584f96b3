package constants

import "time"

// Audio Timing
const (
	// AudioBufferDuration is the speaker buffer length
	AudioBufferDuration = 100 * time.Millisecond

	// MinCueGap is the minimum gap between consecutive cues of the same kind
	MinCueGap = 80 * time.Millisecond
)

// Pen Down Cue
const (
	PenSoundDuration = 40 * time.Millisecond
	PenSoundAttack   = 3 * time.Millisecond
	PenSoundRelease  = 25 * time.Millisecond
	PenSoundFreq     = 880.0
)

// Clear Whoosh Cue
const (
	WhooshSoundDuration = 300 * time.Millisecond
	WhooshSoundAttack   = 150 * time.Millisecond
	WhooshSoundRelease  = 150 * time.Millisecond
)
