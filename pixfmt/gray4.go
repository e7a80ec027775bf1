package pixfmt

import (
	"image"
	"image/color"
)

// Gray4Color represents a 4-bit grayscale color (0-15 intensity levels).
// Only the lower 4 bits of Y are used.
type Gray4Color struct {
	Y uint8
}

// NRGBA expands c to an opaque 8-bit gray.
func (c Gray4Color) NRGBA() color.NRGBA {
	y := (c.Y & 0x0F) * 0x11
	return color.NRGBA{y, y, y, 0xFF}
}

// Gray4Of quantizes c, composited over black, to a 4-bit gray level.
func Gray4Of(c color.NRGBA) Gray4Color {
	return Gray4Color{Y: Luma(c) >> 4}
}

// HorizontalNibble is a 4-bit grayscale layout where each byte contains 2
// pixels: high nibble = left pixel, low nibble = right pixel.
//
// A row-major, top-left Gray4 frame of even width is exactly the Pix of a
// HorizontalNibble of the same size. A Gray4 sequence of n pixels is a
// single row n pixels wide.
type HorizontalNibble struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

// nibbleRow views pix as one row of n Gray4 pixels.
func nibbleRow(pix []byte, n int) HorizontalNibble {
	return HorizontalNibble{Pix: pix, Stride: len(pix), Rect: image.Rect(0, 0, n, 1)}
}

// Gray4At returns the color of the pixel at (x, y), or zero when the point
// is outside the image.
func (p *HorizontalNibble) Gray4At(x, y int) Gray4Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Gray4Color{}
	}
	offset, shift := p.pixOffset(x, y)
	return Gray4Color{Y: (p.Pix[offset] >> shift) & 0x0F}
}

// SetGray4 sets the color of the pixel at (x, y). Points outside the image
// are ignored.
func (p *HorizontalNibble) SetGray4(x, y int, c Gray4Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, shift := p.pixOffset(x, y)
	p.Pix[offset] = (p.Pix[offset] &^ (0x0F << shift)) | ((c.Y & 0x0F) << shift)
}

// Region copies the bytes covering r into dst and returns the extended
// slice. r is widened to even column boundaries first; the widened rectangle
// is returned as well.
func (p *HorizontalNibble) Region(dst []byte, r image.Rectangle) ([]byte, image.Rectangle) {
	r = AlignNibble(r.Intersect(p.Rect), p.Rect)
	if r.Empty() {
		return dst, r
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		start, _ := p.pixOffset(r.Min.X, y)
		dst = append(dst, p.Pix[start:start+r.Dx()/2]...)
	}
	return dst, r
}

// AlignNibble widens r so that it starts and ends on byte boundaries of a
// Gray4 row that begins at bounds.Min.X.
func AlignNibble(r, bounds image.Rectangle) image.Rectangle {
	if (r.Min.X-bounds.Min.X)%2 != 0 {
		r.Min.X--
	}
	if (r.Max.X-bounds.Min.X)%2 != 0 {
		r.Max.X++
	}
	return r
}

// pixOffset returns the byte offset and bit shift for the pixel at (x, y).
// Even x uses the high nibble, odd x the low nibble.
func (p *HorizontalNibble) pixOffset(x, y int) (offset int, shift uint) {
	offset = (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)/2
	shift = uint(4 * (1 - ((x - p.Rect.Min.X) & 1)))
	return
}
