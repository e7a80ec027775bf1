// Package max7219 drives a chain of MAX7219 8x8 LED matrix modules over SPI
// as a panel.Panel.
//
// Modules are cascaded left to right: the module wired to the controller's
// DIN is the leftmost one. Frames are pixfmt.Mono1, row-major from the top
// left corner; a lit LED is a set bit.
package max7219

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/flavioheleno/anydisplay/panel"
	"github.com/flavioheleno/anydisplay/pixfmt"
)

// Registers
const (
	regDigit0      = 0x01
	regDecodeMode  = 0x09
	regIntensity   = 0x0A
	regScanLimit   = 0x0B
	regShutdown    = 0x0C
	regDisplayTest = 0x0F
)

const moduleSize = 8

// Opts is the configuration for the LED chain.
type Opts struct {
	Modules   int  // Number of cascaded modules (default: 1)
	Intensity byte // LED intensity, 0-15 (default: 0, the dimmest)
}

// Dev is a handle to a chain of MAX7219 modules.
type Dev struct {
	c spi.Conn
	g panel.Geometry
	n int

	pkts []spi.Packet // one per row, each latched by CS
	buf  []byte

	halted bool
}

// NewSPI returns a chain of modules connected via SPI at 10MHz, Mode0.
//
// opts can be nil for a single module.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{Modules: 1}
	}
	if opts.Modules <= 0 || opts.Modules > 32 {
		return nil, panel.Configf("max7219: %d modules, must be between 1 and 32", opts.Modules)
	}
	if opts.Intensity > 15 {
		return nil, panel.Configf("max7219: intensity %d must be between 0 and 15", opts.Intensity)
	}
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, panel.WrapIO("max7219: connect", err)
	}

	n := opts.Modules
	d := &Dev{
		c: c,
		g: panel.Geometry{
			Width:  n * moduleSize,
			Height: moduleSize,
			Format: pixfmt.Mono1,
		},
		n:    n,
		pkts: make([]spi.Packet, moduleSize),
		buf:  make([]byte, moduleSize*2*n),
	}
	for r := range d.pkts {
		d.pkts[r].W = d.buf[r*2*n : (r+1)*2*n]
	}
	if err := d.init(opts.Intensity); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) init(intensity byte) error {
	for _, cmd := range [][2]byte{
		{regDisplayTest, 0},
		{regDecodeMode, 0},
		{regScanLimit, 7},
		{regIntensity, intensity},
	} {
		if err := d.broadcast(cmd[0], cmd[1]); err != nil {
			return err
		}
	}
	if err := d.Commit(make([]byte, d.g.FrameSize())); err != nil {
		return err
	}
	return d.broadcast(regShutdown, 1)
}

// broadcast writes the same register of every module.
func (d *Dev) broadcast(reg, v byte) error {
	w := d.buf[:2*d.n]
	for i := 0; i < d.n; i++ {
		w[2*i], w[2*i+1] = reg, v
	}
	return panel.WrapIO("max7219: command", d.c.Tx(w, nil))
}

// Geometry implements panel.Panel.
func (d *Dev) Geometry() panel.Geometry {
	return d.g
}

// Commit implements panel.Panel. The 8 rows are sent in one transaction.
func (d *Dev) Commit(frame []byte) error {
	if d.halted {
		return fmt.Errorf("max7219: %w", panel.ErrHalted)
	}
	if len(frame) != d.g.FrameSize() {
		return fmt.Errorf("max7219: %w: got %d bytes, want %d", pixfmt.ErrFrameSize, len(frame), d.g.FrameSize())
	}
	// frame rows are n bytes wide, MSB is the leftmost LED of each module.
	// The first pair shifted out ends up in the last module of the chain.
	for r := 0; r < moduleSize; r++ {
		w := d.pkts[r].W
		for m := 0; m < d.n; m++ {
			w[2*m] = byte(regDigit0 + r)
			w[2*m+1] = frame[r*d.n+d.n-1-m]
		}
	}
	return panel.WrapIO("max7219: rows", d.c.TxPackets(d.pkts))
}

// SetIntensity sets the brightness of every module, 0-15.
func (d *Dev) SetIntensity(v byte) error {
	if d.halted {
		return fmt.Errorf("max7219: %w", panel.ErrHalted)
	}
	if v > 15 {
		return panel.Configf("max7219: intensity %d must be between 0 and 15", v)
	}
	return d.broadcast(regIntensity, v)
}

// Halt puts every module in shutdown mode.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true
	return d.broadcast(regShutdown, 0)
}

func (d *Dev) String() string {
	return fmt.Sprintf("max7219.Dev{%dx%d}", d.g.Width, d.g.Height)
}

var _ panel.Panel = &Dev{}
