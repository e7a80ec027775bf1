// Package unicornhd drives the Pimoroni Unicorn HAT HD, a 16x16 RGB LED
// matrix behind an SPI microcontroller, as a panel.Panel.
//
// A frame is a start byte followed by 768 bytes of 8-bit RGB. The HAT has no
// notion of rotation: it is expressed through the reported geometry, so the
// canvas lays frames out for the orientation the HAT is mounted in.
package unicornhd

import (
	"fmt"
	"math"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/flavioheleno/anydisplay/panel"
	"github.com/flavioheleno/anydisplay/pixfmt"
)

const (
	size       = 16
	startFrame = 0x72
)

// Opts is the configuration for the HAT.
type Opts struct {
	Rotation   int     // Clockwise rotation in degrees: 0, 90, 180 or 270
	Brightness float64 // 0 to 1 (default: 0.5 when zero)
}

// Dev is a handle to a Unicorn HAT HD.
type Dev struct {
	c     conn.Conn
	g     panel.Geometry
	scale uint32 // brightness in 1/256
	buf   []byte // start byte and scaled frame

	halted bool
}

// NewSPI returns a HAT connected via SPI at 9MHz, Mode0.
//
// opts can be nil for an unrotated HAT at half brightness.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	g, err := geometry(opts.Rotation)
	if err != nil {
		return nil, err
	}
	b := opts.Brightness
	if b == 0 {
		b = 0.5
	}
	scale, err := brightness(b)
	if err != nil {
		return nil, err
	}

	c, err := p.Connect(9*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, panel.WrapIO("unicornhd: connect", err)
	}
	d := &Dev{
		c:     c,
		g:     g,
		scale: scale,
		buf:   make([]byte, 1+g.FrameSize()),
	}
	d.buf[0] = startFrame
	if err := d.Commit(make([]byte, g.FrameSize())); err != nil {
		return nil, err
	}
	return d, nil
}

// geometry maps a mounting rotation onto the addressing order of the LEDs
// as seen by the viewer.
func geometry(rotation int) (panel.Geometry, error) {
	g := panel.Geometry{Width: size, Height: size, Format: pixfmt.RGB888}
	g, err := g.Rotate(rotation)
	if err != nil {
		return g, fmt.Errorf("unicornhd: %w", err)
	}
	return g, nil
}

func brightness(b float64) (uint32, error) {
	if !(b >= 0 && b <= 1) {
		return 0, panel.Configf("unicornhd: brightness %v must be between 0 and 1", b)
	}
	return uint32(math.Round(b * 256)), nil
}

// Geometry implements panel.Panel.
func (d *Dev) Geometry() panel.Geometry {
	return d.g
}

// Commit implements panel.Panel. The frame is sent in a single transfer.
func (d *Dev) Commit(frame []byte) error {
	if d.halted {
		return fmt.Errorf("unicornhd: %w", panel.ErrHalted)
	}
	if len(frame) != d.g.FrameSize() {
		return fmt.Errorf("unicornhd: %w: got %d bytes, want %d", pixfmt.ErrFrameSize, len(frame), d.g.FrameSize())
	}
	out := d.buf[1:]
	for i, v := range frame {
		out[i] = byte(uint32(v) * d.scale >> 8)
	}
	return panel.WrapIO("unicornhd: frame", d.c.Tx(d.buf, nil))
}

// SetBrightness changes the brightness applied to the following commits,
// from 0 (off) to 1.
func (d *Dev) SetBrightness(b float64) error {
	if d.halted {
		return fmt.Errorf("unicornhd: %w", panel.ErrHalted)
	}
	scale, err := brightness(b)
	if err != nil {
		return err
	}
	d.scale = scale
	return nil
}

// Halt turns every LED off.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	clear(d.buf[1:])
	d.halted = true
	return panel.WrapIO("unicornhd: frame", d.c.Tx(d.buf, nil))
}

func (d *Dev) String() string {
	return fmt.Sprintf("unicornhd.Dev{%v}", d.g)
}

var _ panel.Panel = &Dev{}
