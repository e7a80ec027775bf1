package anydisplay

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Every primitive checks its whole footprint before touching a pixel: if any
// part falls outside the buffer it fails with ErrOutOfBounds and draws
// nothing. Rasterization is integer only.

// Point sets a single pixel.
func (b *Buffer) Point(x, y int, c Color) error {
	return b.Set(x, y, c)
}

// Line draws a line from (x0, y0) to (x1, y1), both ends included.
func (b *Buffer) Line(x0, y0, x1, y1 int, c Color) error {
	if err := b.check(image.Rect(min(x0, x1), min(y0, y1), max(x0, x1)+1, max(y0, y1)+1)); err != nil {
		return err
	}

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		b.pix[y0*b.w+x0] = c
		if x0 == x1 && y0 == y1 {
			return nil
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Rect draws the outline of r. An empty r draws nothing.
func (b *Buffer) Rect(r image.Rectangle, c Color) error {
	if r.Empty() {
		return nil
	}
	if err := b.check(r); err != nil {
		return err
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		b.pix[r.Min.Y*b.w+x] = c
		b.pix[(r.Max.Y-1)*b.w+x] = c
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		b.pix[y*b.w+r.Min.X] = c
		b.pix[y*b.w+r.Max.X-1] = c
	}
	return nil
}

// FillRect fills r. An empty r draws nothing.
func (b *Buffer) FillRect(r image.Rectangle, c Color) error {
	if r.Empty() {
		return nil
	}
	if err := b.check(r); err != nil {
		return err
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.pix[y*b.w+r.Min.X : y*b.w+r.Max.X]
		for i := range row {
			row[i] = c
		}
	}
	return nil
}

// Circle draws the outline of a circle centered on (cx, cy).
func (b *Buffer) Circle(cx, cy, radius int, c Color) error {
	if err := b.checkCircle(cx, cy, radius); err != nil {
		return err
	}
	midpoint(radius, func(x, y int) {
		octants := [...]image.Point{
			{cx + x, cy + y}, {cx - x, cy + y}, {cx + x, cy - y}, {cx - x, cy - y},
			{cx + y, cy + x}, {cx - y, cy + x}, {cx + y, cy - x}, {cx - y, cy - x},
		}
		for _, p := range octants {
			b.pix[p.Y*b.w+p.X] = c
		}
	})
	return nil
}

// FillCircle draws a filled circle centered on (cx, cy).
func (b *Buffer) FillCircle(cx, cy, radius int, c Color) error {
	if err := b.checkCircle(cx, cy, radius); err != nil {
		return err
	}
	midpoint(radius, func(x, y int) {
		b.hline(cx-x, cx+x, cy+y, c)
		b.hline(cx-x, cx+x, cy-y, c)
		b.hline(cx-y, cx+y, cy+x, c)
		b.hline(cx-y, cx+y, cy-x, c)
	})
	return nil
}

func (b *Buffer) checkCircle(cx, cy, radius int) error {
	if radius < 0 {
		return fmt.Errorf("anydisplay: negative radius %d", radius)
	}
	return b.check(image.Rect(cx-radius, cy-radius, cx+radius+1, cy+radius+1))
}

func (b *Buffer) hline(x0, x1, y int, c Color) {
	row := b.pix[y*b.w+x0 : y*b.w+x1+1]
	for i := range row {
		row[i] = c
	}
}

// midpoint walks one octant of a circle of the given radius.
func midpoint(radius int, plot func(x, y int)) {
	x, y := radius, 0
	e := 1 - radius
	for x >= y {
		plot(x, y)
		y++
		if e < 0 {
			e += 2*y + 1
		} else {
			x--
			e += 2*(y-x) + 1
		}
	}
}

// DefaultFace is the face used by Text when none is given.
var DefaultFace font.Face = basicfont.Face7x13

// TextBounds returns the rectangle inked by s when drawn by Text at (x, y).
func TextBounds(face font.Face, x, y int, s string) image.Rectangle {
	if face == nil {
		face = DefaultFace
	}
	ink, _ := font.BoundString(face, s)
	dot := fixed.P(x, y+face.Metrics().Ascent.Ceil())
	return image.Rect(
		(ink.Min.X + dot.X).Floor(),
		(ink.Min.Y + dot.Y).Floor(),
		(ink.Max.X + dot.X).Ceil(),
		(ink.Max.Y + dot.Y).Ceil(),
	)
}

// Text draws s with its top left corner at (x, y). A nil face selects
// DefaultFace. Glyph coverage is composited over the existing pixels.
func (b *Buffer) Text(x, y int, s string, face font.Face, c Color) error {
	if face == nil {
		face = DefaultFace
	}
	r := TextBounds(face, x, y, s)
	if r.Empty() {
		return nil
	}
	if err := b.check(r); err != nil {
		return err
	}
	d := font.Drawer{
		Dst:  target{b},
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
	return nil
}

// Image scales src into dst with nearest neighbor sampling and composites
// it over the existing pixels. An empty dst draws nothing.
func (b *Buffer) Image(dst image.Rectangle, src image.Image) error {
	if dst.Empty() {
		return nil
	}
	if err := b.check(dst); err != nil {
		return err
	}
	xdraw.NearestNeighbor.Scale(target{b}, dst, src, src.Bounds(), xdraw.Over, nil)
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
