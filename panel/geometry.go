package panel

import (
	"fmt"
	"image"

	"github.com/flavioheleno/anydisplay/pixfmt"
)

// Order is the direction in which consecutive frame pixels advance.
type Order uint8

const (
	// RowMajor advances along x first, then y.
	RowMajor Order = iota
	// ColumnMajor advances along y first, then x.
	ColumnMajor
)

func (o Order) String() string {
	switch o {
	case RowMajor:
		return "row-major"
	case ColumnMajor:
		return "column-major"
	}
	return fmt.Sprintf("panel.Order(%d)", uint8(o))
}

// Origin is the corner of the visible panel where frame pixel 0 lands.
type Origin uint8

const (
	TopLeft Origin = iota
	TopRight
	BottomLeft
	BottomRight
)

func (o Origin) String() string {
	switch o {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	}
	return fmt.Sprintf("panel.Origin(%d)", uint8(o))
}

// Geometry describes the physical pixel grid of a panel. Width and Height
// are measured as seen by the viewer, with (0, 0) at the top left corner;
// Order and Origin describe how the frame sequence is laid onto that grid.
type Geometry struct {
	Width  int
	Height int
	Format pixfmt.Format
	Order  Order
	Origin Origin
}

// Validate checks that the geometry can be rendered to.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return Configf("panel size %dx%d must be positive", g.Width, g.Height)
	}
	if !g.Format.Valid() {
		return Configf("unsupported pixel format %v", g.Format)
	}
	if g.Order > ColumnMajor {
		return Configf("unsupported addressing order %v", g.Order)
	}
	if g.Origin > BottomRight {
		return Configf("unsupported origin %v", g.Origin)
	}
	return nil
}

// Bounds returns the physical rectangle of the panel.
func (g Geometry) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// Len returns the number of pixels in a frame.
func (g Geometry) Len() int {
	return g.Width * g.Height
}

// FrameSize returns the size in bytes of a full native frame.
func (g Geometry) FrameSize() int {
	return g.Format.FrameSize(g.Len())
}

// Position returns the physical point of frame pixel i.
func (g Geometry) Position(i int) image.Point {
	var x, y int
	if g.Order == ColumnMajor {
		x, y = i/g.Height, i%g.Height
	} else {
		x, y = i%g.Width, i/g.Width
	}
	switch g.Origin {
	case TopRight:
		x = g.Width - 1 - x
	case BottomLeft:
		y = g.Height - 1 - y
	case BottomRight:
		x = g.Width - 1 - x
		y = g.Height - 1 - y
	}
	return image.Point{X: x, Y: y}
}

// Index returns the frame index of the physical point (x, y). It is the
// inverse of Position.
func (g Geometry) Index(x, y int) int {
	switch g.Origin {
	case TopRight:
		x = g.Width - 1 - x
	case BottomLeft:
		y = g.Height - 1 - y
	case BottomRight:
		x = g.Width - 1 - x
		y = g.Height - 1 - y
	}
	if g.Order == ColumnMajor {
		return x*g.Height + y
	}
	return y*g.Width + x
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d %v %v %v", g.Width, g.Height, g.Format, g.Order, g.Origin)
}
