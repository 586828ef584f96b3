// Package render draws the fading trail to the terminal
package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/inktrail/constants"
	"github.com/lixenwraith/inktrail/hand"
	"github.com/lixenwraith/inktrail/ink"
)

// Renderer owns the canvas and redraws it from scratch every frame
type Renderer struct {
	canvas    *Canvas
	stroker   Stroker
	style     Style
	surface   hand.Surface
	mapping   Mapping
	statusBar bool
	cols      int
	rows      int
}

// NewRenderer creates a renderer for a cols x rows terminal
func NewRenderer(surface hand.Surface, style Style, statusBar bool, cols, rows int) *Renderer {
	r := &Renderer{
		canvas:    NewCanvas(0, 0, style.Background),
		style:     style,
		surface:   surface,
		statusBar: statusBar,
	}
	r.Resize(cols, rows)
	return r
}

// Resize adapts the canvas to a new terminal size
func (r *Renderer) Resize(cols, rows int) {
	r.cols, r.rows = cols, rows
	cw, ch := r.CanvasCells()
	r.canvas.Resize(cw, ch)
	dw, dh := r.canvas.Bounds()
	r.mapping = NewMapping(r.surface, dw, dh)
}

// CanvasCells returns the terminal area the trail is drawn in
func (r *Renderer) CanvasCells() (cols, rows int) {
	rows = r.rows
	if r.statusBar {
		rows -= constants.StatusBarRows
	}
	return max(r.cols, 0), max(rows, 0)
}

// Draw clears the canvas and strokes every live segment in order
func (r *Renderer) Draw(segs []ink.Segment) {
	r.canvas.Clear()
	for i := range segs {
		r.stroker.Stroke(r.canvas, segs[i], r.style, r.mapping)
	}
}

// Canvas exposes the dot grid
func (r *Renderer) Canvas() *Canvas {
	return r.canvas
}

// Present writes the canvas and status line to screen and shows it
func (r *Renderer) Present(screen tcell.Screen, status Status) {
	cols, rows := r.CanvasCells()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := r.canvas.At(x, y*2)
			bottom := r.canvas.At(x, y*2+1)
			st := tcell.StyleDefault.Foreground(toTcell(top)).Background(toTcell(bottom))
			screen.SetContent(x, y, '▀', nil, st)
		}
	}

	if r.statusBar && r.rows > rows {
		drawStatus(screen, rows, r.cols, status)
	}

	screen.Show()
}
