package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Style is the ink appearance
type Style struct {
	Ink        colorful.Color
	Background colorful.Color
	LineWidth  float64 // surface pixels
}

// NewStyle parses hex colours such as "#f5f5f0"
func NewStyle(inkHex, backgroundHex string, lineWidth float64) (Style, error) {
	ink, err := colorful.Hex(inkHex)
	if err != nil {
		return Style{}, errors.Wrapf(err, "ink colour %q", inkHex)
	}
	bg, err := colorful.Hex(backgroundHex)
	if err != nil {
		return Style{}, errors.Wrapf(err, "background colour %q", backgroundHex)
	}
	if lineWidth <= 0 {
		return Style{}, errors.Errorf("line width must be positive, got %v", lineWidth)
	}
	return Style{Ink: ink, Background: bg, LineWidth: lineWidth}, nil
}

// toTcell converts to a truecolor terminal colour
func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
