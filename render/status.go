package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// SourceState describes the landmark input for the status line
type SourceState uint8

const (
	SourcePointer SourceState = iota
	SourceConnecting
	SourceLive
	SourceUnavailable
)

func (s SourceState) String() string {
	switch s {
	case SourcePointer:
		return "pointer"
	case SourceConnecting:
		return "connecting"
	case SourceLive:
		return "camera"
	case SourceUnavailable:
		return "camera unavailable"
	default:
		return "unknown"
	}
}

// Status is the information shown below the canvas
type Status struct {
	Source   SourceState
	Drawing  bool
	Segments int
	Dropped  uint64
	FPS      int
}

var (
	statusStyle  = tcell.StyleDefault.Background(tcell.NewRGBColor(24, 24, 30)).Foreground(tcell.NewRGBColor(180, 180, 190))
	drawingStyle = tcell.StyleDefault.Background(tcell.NewRGBColor(40, 140, 70)).Foreground(tcell.ColorWhite).Bold(true)
	idleStyle    = tcell.StyleDefault.Background(tcell.NewRGBColor(70, 70, 80)).Foreground(tcell.ColorWhite)
	errorStyle   = tcell.StyleDefault.Background(tcell.NewRGBColor(170, 40, 40)).Foreground(tcell.ColorWhite).Bold(true)
)

// drawStatus renders the status line on row y
func drawStatus(screen tcell.Screen, y, width int, st Status) {
	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, statusStyle)
	}

	x := 0
	switch {
	case st.Source == SourceUnavailable:
		x = drawText(screen, x, y, width, " NO CAMERA ", errorStyle)
	case st.Drawing:
		x = drawText(screen, x, y, width, " DRAWING ", drawingStyle)
	default:
		x = drawText(screen, x, y, width, " IDLE ", idleStyle)
	}

	line := fmt.Sprintf(" %s | segments %d | dropped %d | %d fps | c clear  q quit", st.Source, st.Segments, st.Dropped, st.FPS)
	drawText(screen, x, y, width, line, statusStyle)
}

// drawText writes s from x and returns the column after it, clipped to width
func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) int {
	for _, r := range s {
		if x >= width {
			break
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
