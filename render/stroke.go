package render

import (
	"math"

	"github.com/lixenwraith/inktrail/hand"
	"github.com/lixenwraith/inktrail/ink"
)

// curveSteps is the number of line pieces a quadratic curve is flattened into
const curveSteps = 8

// Mapping converts surface pixels to canvas dots
type Mapping struct {
	ScaleX float64 // dots per surface pixel, horizontal
	ScaleY float64 // dots per surface pixel, vertical
}

// NewMapping fits surface onto a canvas of dotW x dotH
func NewMapping(surface hand.Surface, dotW, dotH int) Mapping {
	if surface.Width <= 0 || surface.Height <= 0 {
		return Mapping{}
	}
	return Mapping{
		ScaleX: float64(dotW) / surface.Width,
		ScaleY: float64(dotH) / surface.Height,
	}
}

// quadPoints flattens the quadratic curve p0 -> ctrl -> p1 into out
func quadPoints(p0, ctrl, p1 ink.Point, out []ink.Point) []ink.Point {
	out = out[:0]
	for i := 0; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		out = append(out, ink.Point{
			X: u*u*p0.X + 2*u*t*ctrl.X + t*t*p1.X,
			Y: u*u*p0.Y + 2*u*t*ctrl.Y + t*t*p1.Y,
		})
	}
	return out
}

// distToSegment returns the distance from p to the line piece a-b
func distToSegment(p, a, b ink.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Dist(ink.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// Stroker rasterizes segments with round caps and joins
// Distances are measured in surface pixels so the stroke keeps its width
// regardless of terminal aspect
type Stroker struct {
	pts []ink.Point
}

// Stroke draws seg as a quadratic curve through its midpoint with the
// segment's opacity as alpha
func (s *Stroker) Stroke(c *Canvas, seg ink.Segment, style Style, m Mapping) {
	if seg.Opacity <= 0 || m.ScaleX <= 0 || m.ScaleY <= 0 {
		return
	}

	s.pts = quadPoints(seg.Start(), seg.Control(), seg.End(), s.pts)

	// One dot in surface pixels; strokes never get thinner than a dot
	edge := math.Max(1/m.ScaleX, 1/m.ScaleY)
	radius := math.Max(style.LineWidth/2, edge/2)
	pad := radius + edge

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range s.pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	w, h := c.Bounds()
	x0 := max(int(math.Floor((minX-pad)*m.ScaleX)), 0)
	x1 := min(int(math.Ceil((maxX+pad)*m.ScaleX)), w-1)
	y0 := max(int(math.Floor((minY-pad)*m.ScaleY)), 0)
	y1 := min(int(math.Ceil((maxY+pad)*m.ScaleY)), h-1)

	for dy := y0; dy <= y1; dy++ {
		py := (float64(dy) + 0.5) / m.ScaleY
		for dx := x0; dx <= x1; dx++ {
			p := ink.Point{X: (float64(dx) + 0.5) / m.ScaleX, Y: py}

			d := math.Inf(1)
			for i := 1; i < len(s.pts); i++ {
				d = math.Min(d, distToSegment(p, s.pts[i-1], s.pts[i]))
			}

			coverage := (radius-d)/edge + 0.5
			if coverage <= 0 {
				continue
			}
			c.Blend(dx, dy, style.Ink, math.Min(coverage, 1)*seg.Opacity)
		}
	}
}
