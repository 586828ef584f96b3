package hand

import "github.com/lixenwraith/inktrail/constants"

// Surface is the pixel space segments are recorded in
type Surface struct {
	Width  float64
	Height float64
}

// DefaultSurface matches the camera resolution hint
func DefaultSurface() Surface {
	return Surface{Width: constants.SurfaceWidth, Height: constants.SurfaceHeight}
}

// Project maps a normalized landmark to mirrored pixel coordinates so the trail
// follows the hand like a mirror would
func (s Surface) Project(l Landmark) (x, y float64) {
	return s.Width - l.X*s.Width, l.Y * s.Height
}

// Unproject is the inverse of Project, used by synthetic sources that start from
// screen positions
func (s Surface) Unproject(x, y float64) Landmark {
	if s.Width == 0 || s.Height == 0 {
		return Landmark{}
	}
	return Landmark{X: (s.Width - x) / s.Width, Y: y / s.Height}
}

// Synthesize builds a hand whose index tip sits at l and whose thumb is either
// touching it (pinched) or held well apart
func Synthesize(l Landmark, pinched bool) Hand {
	var h Hand
	for i := range h {
		h[i] = l
	}
	thumb := l
	if !pinched {
		thumb.Y += 0.2
	}
	h[constants.ThumbTip] = thumb
	return h
}
