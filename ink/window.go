package ink

import "math"

// Point is a screen-space pixel coordinate
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance between two points
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Midpoint returns the point halfway between p and q
func (p Point) Midpoint(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Window is a bounded FIFO of recent smoothed points
// Oldest entries are evicted once capacity is exceeded
type Window struct {
	points   []Point
	capacity int
}

// NewWindow creates a window holding at most capacity points
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{
		points:   make([]Point, 0, capacity+1),
		capacity: capacity,
	}
}

// Push appends p and evicts the oldest entry on overflow
func (w *Window) Push(p Point) {
	w.points = append(w.points, p)
	w.trim()
}

// Insert places p at index i, shifting later entries toward the end
// Index is clamped to [0, Len]
func (w *Window) Insert(i int, p Point) {
	if i < 0 {
		i = 0
	}
	if i > len(w.points) {
		i = len(w.points)
	}
	w.points = append(w.points, Point{})
	copy(w.points[i+1:], w.points[i:])
	w.points[i] = p
	w.trim()
}

// trim evicts from the front until the window fits its capacity
func (w *Window) trim() {
	if over := len(w.points) - w.capacity; over > 0 {
		// Shift in place to keep the backing array
		n := copy(w.points, w.points[over:])
		w.points = w.points[:n]
	}
}

// At returns the point at index i, 0 is the oldest
func (w *Window) At(i int) Point {
	return w.points[i]
}

// Newest returns the most recently pushed point
func (w *Window) Newest() (Point, bool) {
	if len(w.points) == 0 {
		return Point{}, false
	}
	return w.points[len(w.points)-1], true
}

// Len returns the current depth
func (w *Window) Len() int {
	return len(w.points)
}

// Points returns a copy of the buffered points, oldest first
func (w *Window) Points() []Point {
	out := make([]Point, len(w.points))
	copy(out, w.points)
	return out
}

// Reset drops all buffered points
func (w *Window) Reset() {
	w.points = w.points[:0]
}
