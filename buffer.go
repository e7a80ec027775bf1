package anydisplay

import (
	"image"
	"image/color"
)

// Buffer is a fixed size grid of colors at a logical resolution. It is the
// drawing surface of a Canvas and knows nothing about the panel it will be
// shown on.
//
// Writes outside the buffer fail with ErrOutOfBounds; they are never
// clamped or wrapped around.
type Buffer struct {
	w, h int
	pix  []Color // row-major
	bg   Color
}

// NewBuffer returns a w×h buffer filled with bg.
func NewBuffer(w, h int, bg Color) (*Buffer, error) {
	if w <= 0 || h <= 0 {
		return nil, configf("logical size %dx%d must be positive", w, h)
	}
	b := &Buffer{w: w, h: h, pix: make([]Color, w*h), bg: bg}
	b.Clear()
	return b, nil
}

// Width returns the logical width.
func (b *Buffer) Width() int { return b.w }

// Height returns the logical height.
func (b *Buffer) Height() int { return b.h }

// Bounds returns the logical rectangle of the buffer.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.w, b.h)
}

// Background returns the color of never written pixels.
func (b *Buffer) Background() Color { return b.bg }

// Set sets the pixel at (x, y). The buffer is unchanged on failure.
func (b *Buffer) Set(x, y int, c Color) error {
	if err := b.check(image.Rect(x, y, x+1, y+1)); err != nil {
		return err
	}
	b.pix[y*b.w+x] = c
	return nil
}

// Get returns the last color written at (x, y), or the background.
func (b *Buffer) Get(x, y int) (Color, error) {
	if err := b.check(image.Rect(x, y, x+1, y+1)); err != nil {
		return Color{}, err
	}
	return b.pix[y*b.w+x], nil
}

// Clear resets every pixel to the background color.
func (b *Buffer) Clear() {
	b.Fill(b.bg)
}

// Fill sets every pixel to c.
func (b *Buffer) Fill(c Color) {
	for i := range b.pix {
		b.pix[i] = c
	}
}

// Pix returns the row-major pixel slice. It must not be modified.
func (b *Buffer) Pix() []Color {
	return b.pix
}

// check fails unless r lies entirely inside the buffer.
func (b *Buffer) check(r image.Rectangle) error {
	if r.Empty() || !r.In(b.Bounds()) {
		return &BoundsError{Rect: r, Bounds: b.Bounds()}
	}
	return nil
}

// target adapts a Buffer to draw.Image for the x/image rasterizers. Callers
// validate the footprint first; out of range writes are ignored here.
type target struct {
	b *Buffer
}

func (t target) ColorModel() color.Model { return color.NRGBAModel }

func (t target) Bounds() image.Rectangle { return t.b.Bounds() }

func (t target) At(x, y int) color.Color {
	if uint(x) >= uint(t.b.w) || uint(y) >= uint(t.b.h) {
		return Color{}
	}
	return t.b.pix[y*t.b.w+x]
}

func (t target) Set(x, y int, c color.Color) {
	if uint(x) >= uint(t.b.w) || uint(y) >= uint(t.b.h) {
		return
	}
	t.b.pix[y*t.b.w+x] = ColorOf(c)
}
