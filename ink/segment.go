package ink

import "time"

// Segment is a timestamped stroke between two smoothed points
// Endpoints never change after creation, only Opacity is refreshed on each tick
type Segment struct {
	X1, Y1    float64
	X2, Y2    float64
	CreatedAt time.Time
	Opacity   float64
}

// newSegment creates a fully opaque segment from a to b
func newSegment(a, b Point, now time.Time) Segment {
	return Segment{
		X1:        a.X,
		Y1:        a.Y,
		X2:        b.X,
		Y2:        b.Y,
		CreatedAt: now,
		Opacity:   1,
	}
}

// Start returns the first endpoint
func (s Segment) Start() Point {
	return Point{X: s.X1, Y: s.Y1}
}

// End returns the second endpoint
func (s Segment) End() Point {
	return Point{X: s.X2, Y: s.Y2}
}

// Control returns the quadratic curve control point (the endpoint midpoint)
func (s Segment) Control() Point {
	return s.Start().Midpoint(s.End())
}

// Age returns the time elapsed since creation
func (s Segment) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// Expired reports whether the segment outlived the horizon
func (s Segment) Expired(now time.Time, horizon time.Duration) bool {
	return s.Age(now) > horizon
}

// OpacityAt returns the linear fade value, 1 at creation and 0 at the horizon
func (s Segment) OpacityAt(now time.Time, horizon time.Duration) float64 {
	return FadeOpacity(s.Age(now), horizon)
}

// FadeOpacity maps an age to opacity on a linear ramp clamped to [0,1]
func FadeOpacity(age, horizon time.Duration) float64 {
	if horizon <= 0 {
		return 0
	}
	if age <= 0 {
		return 1
	}
	if age >= horizon {
		return 0
	}
	return 1 - float64(age)/float64(horizon)
}
