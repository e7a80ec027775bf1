package anydisplay

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is the canonical in-memory color: 8-bit RGB with a
// non-premultiplied alpha channel. Panels that have no alpha channel show a
// translucent color composited over black.
type Color = color.NRGBA

var (
	Black = Color{A: 0xFF}
	White = Color{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// RGB returns an opaque Color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xFF}
}

// ColorOf converts any color.Color to a Color.
func ColorOf(c color.Color) Color {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// ParseColor parses an opaque color written as "#rgb" or "#rrggbb".
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("anydisplay: invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB(r, g, b), nil
}
