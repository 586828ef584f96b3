package render

import "github.com/lucasb-eyer/go-colorful"

// Canvas is a dot grid twice as tall as the terminal area it covers
// Each terminal cell shows two vertically stacked dots through a half block
type Canvas struct {
	dots   []colorful.Color
	width  int // dots, equals terminal columns
	height int // dots, twice the terminal rows
	bg     colorful.Color
}

// NewCanvas creates a canvas covering cols x rows terminal cells
func NewCanvas(cols, rows int, bg colorful.Color) *Canvas {
	c := &Canvas{bg: bg}
	c.Resize(cols, rows)
	return c
}

// Resize adjusts dimensions, reallocating only if capacity is insufficient
func (c *Canvas) Resize(cols, rows int) {
	c.width = max(cols, 0)
	c.height = max(rows, 0) * 2
	size := c.width * c.height
	if cap(c.dots) < size {
		c.dots = make([]colorful.Color, size)
	} else {
		c.dots = c.dots[:size]
	}
	c.Clear()
}

// Clear resets every dot to the background using exponential copy
func (c *Canvas) Clear() {
	if len(c.dots) == 0 {
		return
	}
	c.dots[0] = c.bg
	for filled := 1; filled < len(c.dots); filled *= 2 {
		copy(c.dots[filled:], c.dots[:filled])
	}
}

// Bounds returns the dot dimensions
func (c *Canvas) Bounds() (width, height int) {
	return c.width, c.height
}

// At returns the dot colour, background when out of bounds
func (c *Canvas) At(x, y int) colorful.Color {
	if !c.inBounds(x, y) {
		return c.bg
	}
	return c.dots[y*c.width+x]
}

// Blend composites src over the dot with the given alpha
func (c *Canvas) Blend(x, y int, src colorful.Color, alpha float64) {
	if alpha <= 0 || !c.inBounds(x, y) {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	i := y*c.width + x
	c.dots[i] = c.dots[i].BlendRgb(src, alpha)
}

func (c *Canvas) inBounds(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}
