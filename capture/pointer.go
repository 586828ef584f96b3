package capture

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/inktrail/hand"
)

// PointerSource turns terminal mouse input into synthetic recognizer frames
// Holding the primary button is the pinch
type PointerSource struct {
	box     *mailbox
	surface hand.Surface
	cols    int
	rows    int
	seq     uint32
	pressed bool
}

// NewPointerSource creates a pointer source mapping a cols x rows cell area onto surface
func NewPointerSource(surface hand.Surface, cols, rows int) *PointerSource {
	p := &PointerSource{
		box:     newMailbox(),
		surface: surface,
	}
	p.Resize(cols, rows)
	return p
}

// Resize updates the cell area the pointer moves over
func (p *PointerSource) Resize(cols, rows int) {
	p.cols = max(cols, 1)
	p.rows = max(rows, 1)
}

// HandleMouse converts a mouse event into a frame
// Positions outside the cell area (the status bar) are clamped to its edge
func (p *PointerSource) HandleMouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	col = min(max(col, 0), p.cols-1)
	row = min(max(row, 0), p.rows-1)

	p.pressed = ev.Buttons()&tcell.Button1 != 0
	p.emit(col, row, ev.When())
}

// emit publishes a frame with the fingertip at the centre of the cell
func (p *PointerSource) emit(col, row int, when time.Time) {
	x := (float64(col) + 0.5) / float64(p.cols) * p.surface.Width
	y := (float64(row) + 0.5) / float64(p.rows) * p.surface.Height

	g := gestureOpen
	if p.pressed {
		g = gesturePinch
	}

	p.seq++
	p.box.publish(hand.Frame{
		Seq:      p.seq,
		Captured: when,
		Hands:    []hand.Hand{hand.Synthesize(p.surface.Unproject(x, y), p.pressed)},
	}, g)
}

// Frames implements Source
func (p *PointerSource) Frames() <-chan hand.Frame {
	return p.box.ch
}

// Stats implements Source
func (p *PointerSource) Stats() Stats {
	return p.box.stats()
}

// Close implements Source
func (p *PointerSource) Close() error {
	p.box.close()
	return nil
}
