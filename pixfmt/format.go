package pixfmt

import (
	"errors"
	"fmt"
	"image/color"
)

// Format identifies a native panel pixel format.
type Format uint8

const (
	Invalid Format = iota
	Mono1
	Gray4
	Gray8
	RGB565
	RGB888
	RGBA8888
)

// ErrFrameSize is returned when a destination or source slice does not match
// the size required by the format.
var ErrFrameSize = errors.New("pixfmt: invalid frame size")

var formatNames = [...]string{
	Invalid:  "invalid",
	Mono1:    "mono1",
	Gray4:    "gray4",
	Gray8:    "gray8",
	RGB565:   "rgb565",
	RGB888:   "rgb888",
	RGBA8888: "rgba8888",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("pixfmt.Format(%d)", uint8(f))
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f > Invalid && f <= RGBA8888
}

// BitsPerPixel returns the storage size of a single pixel.
func (f Format) BitsPerPixel() int {
	switch f {
	case Mono1:
		return 1
	case Gray4:
		return 4
	case Gray8:
		return 8
	case RGB565:
		return 16
	case RGB888:
		return 24
	case RGBA8888:
		return 32
	}
	return 0
}

// FrameSize returns the number of bytes needed to store n pixels.
// Partial trailing bytes are zero padded.
func (f Format) FrameSize(n int) int {
	bpp := f.BitsPerPixel()
	if bpp == 0 || n <= 0 {
		return 0
	}
	return (n*bpp + 7) / 8
}

// Encode packs src into dst. len(dst) must be exactly f.FrameSize(len(src)).
// Encode does not allocate.
func (f Format) Encode(dst []byte, src []color.NRGBA) error {
	if !f.Valid() {
		return fmt.Errorf("pixfmt: cannot encode %v", f)
	}
	if len(dst) != f.FrameSize(len(src)) {
		return ErrFrameSize
	}
	switch f {
	case Mono1:
		clear(dst)
		for i, c := range src {
			if Luma(c) >= 0x80 {
				dst[i>>3] |= 0x80 >> uint(i&7)
			}
		}
	case Gray4:
		clear(dst)
		row := nibbleRow(dst, len(src))
		for i, c := range src {
			row.SetGray4(i, 0, Gray4Of(c))
		}
	case Gray8:
		for i, c := range src {
			dst[i] = Luma(c)
		}
	case RGB565:
		for i, c := range src {
			c = opaque(c)
			v := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
			dst[2*i] = uint8(v >> 8)
			dst[2*i+1] = uint8(v)
		}
	case RGB888:
		for i, c := range src {
			c = opaque(c)
			dst[3*i] = c.R
			dst[3*i+1] = c.G
			dst[3*i+2] = c.B
		}
	case RGBA8888:
		for i, c := range src {
			dst[4*i] = c.R
			dst[4*i+1] = c.G
			dst[4*i+2] = c.B
			dst[4*i+3] = c.A
		}
	}
	return nil
}

// Decode unpacks len(dst) pixels from src. It is the inverse of Encode up to
// the precision of the format. len(src) must be exactly f.FrameSize(len(dst)).
func (f Format) Decode(dst []color.NRGBA, src []byte) error {
	if !f.Valid() {
		return fmt.Errorf("pixfmt: cannot decode %v", f)
	}
	if len(src) != f.FrameSize(len(dst)) {
		return ErrFrameSize
	}
	for i := range dst {
		dst[i] = f.At(src, i)
	}
	return nil
}

// At decodes the pixel at sequence index i of a packed frame. It does not
// check bounds beyond what slice indexing does.
func (f Format) At(src []byte, i int) color.NRGBA {
	switch f {
	case Mono1:
		if src[i>>3]&(0x80>>uint(i&7)) != 0 {
			return color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}
		}
		return color.NRGBA{A: 0xFF}
	case Gray4:
		row := nibbleRow(src, 2*len(src))
		return row.Gray4At(i, 0).NRGBA()
	case Gray8:
		y := src[i]
		return color.NRGBA{y, y, y, 0xFF}
	case RGB565:
		v := uint16(src[2*i])<<8 | uint16(src[2*i+1])
		r := uint8(v>>11) & 0x1F
		g := uint8(v>>5) & 0x3F
		b := uint8(v) & 0x1F
		return color.NRGBA{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2, 0xFF}
	case RGB888:
		return color.NRGBA{src[3*i], src[3*i+1], src[3*i+2], 0xFF}
	case RGBA8888:
		return color.NRGBA{src[4*i], src[4*i+1], src[4*i+2], src[4*i+3]}
	}
	return color.NRGBA{}
}

// Luma returns the Rec. 601 luminance of c composited over black.
func Luma(c color.NRGBA) uint8 {
	c = opaque(c)
	return uint8((299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B) + 500) / 1000)
}

// opaque composites c over black.
func opaque(c color.NRGBA) color.NRGBA {
	if c.A == 0xFF {
		return c
	}
	a := uint32(c.A)
	return color.NRGBA{
		R: uint8((uint32(c.R)*a + 127) / 255),
		G: uint8((uint32(c.G)*a + 127) / 255),
		B: uint8((uint32(c.B)*a + 127) / 255),
		A: 0xFF,
	}
}
