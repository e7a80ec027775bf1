// Package ssd1322 drives a SSD1322 OLED display over SPI as a panel.Panel.
//
// The SSD1322 is a 4-bit grayscale OLED controller supporting up to 480x128
// pixels. Common display resolutions are 256x64 and 128x64. Frames are
// pixfmt.Gray4, row-major from the top left corner, which is the layout of
// the controller's RAM.
//
// The controller addresses its RAM in columns of 4 pixels, so partial
// updates are widened to 4 pixel boundaries.
package ssd1322

import (
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/flavioheleno/anydisplay/panel"
	"github.com/flavioheleno/anydisplay/pixfmt"
)

const (
	ramWidth    = 480 // pixels
	columnWidth = 4   // pixels per RAM column address
)

// Opts is the configuration for the SSD1322 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 256, must be a multiple of 4 and ≤480)
	H int // Height (default: 64, must be ≤128)

	// Rotation and mirroring, applied by the controller
	Rotated       bool // 180° rotation
	Sequential    bool // Sequential COM pin configuration
	SwapTopBottom bool // Swap top/bottom display halves

	// Optional hardware reset pin
	RST gpio.PinOut
}

// Dev is the device handle for the SSD1322 display.
type Dev struct {
	c   conn.Conn
	dc  gpio.PinOut
	rst gpio.PinOut

	g         panel.Geometry
	colOffset int // first RAM column, centers the display in the 480 pixel RAM

	next   pixfmt.HorizontalNibble // view over the frame being committed
	region []byte                  // scratch for partial updates

	halted bool
}

// NewSPI creates a new SSD1322 device connected via SPI.
//
// The SPI port is configured for 10MHz, Mode0 (CPOL=0, CPHA=0), 8-bit
// transfers. The dc (Data/Command) GPIO pin must be provided.
//
// opts can be nil to use defaults (256x64 display).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: 256, H: 64}
	}
	if err := validate(opts); err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, panel.Configf("ssd1322: a D/C pin is required")
	}

	// SSD1322 supports Mode0 or Mode3 and up to 20MHz
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, panel.WrapIO("ssd1322: connect", err)
	}
	return newDev(c, dc, opts)
}

func validate(opts *Opts) error {
	if opts.W <= 0 || opts.W%columnWidth != 0 || opts.W > ramWidth {
		return panel.Configf("ssd1322: width %d must be a multiple of 4 between 4 and 480", opts.W)
	}
	if opts.H <= 0 || opts.H > 128 {
		return panel.Configf("ssd1322: height %d must be between 1 and 128", opts.H)
	}
	return nil
}

func newDev(c conn.Conn, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	d := &Dev{
		c:   c,
		dc:  dc,
		rst: opts.RST,
		g: panel.Geometry{
			Width:  opts.W,
			Height: opts.H,
			Format: pixfmt.Gray4,
			Order:  panel.RowMajor,
			Origin: panel.TopLeft,
		},
		colOffset: (ramWidth/columnWidth - opts.W/columnWidth) / 2,
	}
	d.next = pixfmt.HorizontalNibble{Stride: opts.W / 2, Rect: d.g.Bounds()}
	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

// init sends the initialization sequence to the display.
func (d *Dev) init(opts *Opts) error {
	if d.rst != nil {
		if err := d.rst.Out(gpio.Low); err != nil {
			return panel.WrapIO("ssd1322: pull RST low", err)
		}
		time.Sleep(resetDelay)
		if err := d.rst.Out(gpio.High); err != nil {
			return panel.WrapIO("ssd1322: pull RST high", err)
		}
		time.Sleep(resetDelay)
	}

	cmds := []byte{
		0xFD, 0x12, // Unlock command codes
		0xAE,       // Display OFF
		0xB3, 0xF2, // Clock divider and oscillator frequency
		0xCA, byte(opts.H - 1), // MUX ratio
		0xA2, 0x00, // Display offset
		0xA1, 0x00, // Start line
	}

	// Nibble remap is required for the high nibble to be the left pixel
	remap1, remap2 := byte(0x14), byte(0x11)
	if opts.Rotated {
		remap1 = 0x06
	}
	if opts.Sequential {
		remap2 &^= 0x10 // Single COM mode
	}
	if opts.SwapTopBottom {
		remap2 |= 0x02
	}

	cmds = append(cmds,
		0xA0, remap1, remap2, // Remap and dual COM mode
		0xAB, 0x01, // Function selection (enable internal VDD)
		0xB4, 0xA0, 0xFD, // VSL (display enhancement)
		0xC1, 0xFF, // Contrast (max)
		0xC7, 0x0F, // Master contrast
		0xB9,       // Use default grayscale table
		0xB1, 0xE2, // Phase length
		0xD1, 0x82, 0x20, // Display enhancements
		0xBB, 0x1F, // Pre-charge voltage
		0xB6, 0x08, // Second pre-charge period
		0xBE, 0x07, // VCOMH voltage
		0xA6, // Normal display mode
		0xA9, // Exit partial display mode
	)
	if err := d.sendCommands(cmds); err != nil {
		return err
	}

	if err := d.writeRect(d.g.Bounds(), make([]byte, d.g.FrameSize())); err != nil {
		return err
	}
	return d.sendCommand(0xAF) // Display ON
}

var resetDelay = 200 * time.Millisecond

// Geometry implements panel.Panel.
func (d *Dev) Geometry() panel.Geometry {
	return d.g
}

// Commit implements panel.Panel.
func (d *Dev) Commit(frame []byte) error {
	if err := d.check(frame); err != nil {
		return err
	}
	return d.writeRect(d.g.Bounds(), frame)
}

// CommitRect implements panel.PartialPanel. r is widened to RAM column
// boundaries.
func (d *Dev) CommitRect(frame []byte, r image.Rectangle) error {
	if err := d.check(frame); err != nil {
		return err
	}
	r = alignColumns(r.Intersect(d.g.Bounds()))
	if r.Empty() {
		return nil
	}
	if r == d.g.Bounds() {
		return d.writeRect(r, frame)
	}
	d.next.Pix = frame
	d.region, r = d.next.Region(d.region[:0], r)
	return d.writeRect(r, d.region)
}

func (d *Dev) check(frame []byte) error {
	if d.halted {
		return fmt.Errorf("ssd1322: %w", panel.ErrHalted)
	}
	if len(frame) != d.g.FrameSize() {
		return fmt.Errorf("ssd1322: %w: got %d bytes, want %d", pixfmt.ErrFrameSize, len(frame), d.g.FrameSize())
	}
	return nil
}

// alignColumns widens r to multiples of the RAM column width.
func alignColumns(r image.Rectangle) image.Rectangle {
	r.Min.X -= r.Min.X % columnWidth
	if rem := r.Max.X % columnWidth; rem != 0 {
		r.Max.X += columnWidth - rem
	}
	return r
}

// writeRect writes pixel data to a rectangular region of the display. r
// must be aligned to RAM columns.
func (d *Dev) writeRect(r image.Rectangle, pixels []byte) error {
	commands := []byte{
		0x15, byte(d.colOffset + r.Min.X/columnWidth), byte(d.colOffset + r.Max.X/columnWidth - 1), // Column address
		0x75, byte(r.Min.Y), byte(r.Max.Y - 1), // Row address
		0x5C, // Enable write to RAM
	}
	if err := d.sendCommands(commands); err != nil {
		return err
	}
	return d.sendData(pixels)
}

func (d *Dev) sendCommand(cmd byte) error {
	return d.sendCommands([]byte{cmd})
}

func (d *Dev) sendCommands(cmds []byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return panel.WrapIO("ssd1322: D/C low", err)
	}
	return panel.WrapIO("ssd1322: command", d.c.Tx(cmds, nil))
}

func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return panel.WrapIO("ssd1322: D/C high", err)
	}
	return panel.WrapIO("ssd1322: data", d.c.Tx(data, nil))
}

// SetContrast sets the display contrast (0-255).
func (d *Dev) SetContrast(contrast byte) error {
	if d.halted {
		return fmt.Errorf("ssd1322: %w", panel.ErrHalted)
	}
	return d.sendCommands([]byte{0xC1, contrast})
}

// Invert inverts the display colors (black becomes white and vice versa).
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return fmt.Errorf("ssd1322: %w", panel.ErrHalted)
	}
	mode := byte(0xA6) // Normal display
	if invert {
		mode = 0xA7 // Inverted display
	}
	return d.sendCommand(mode)
}

// Halt powers off the display. Every later call fails with
// panel.ErrHalted; halting twice is a no-op.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true
	return d.sendCommand(0xAE) // Display OFF
}

func (d *Dev) String() string {
	return fmt.Sprintf("ssd1322.Dev{%dx%d}", d.g.Width, d.g.Height)
}

var _ panel.PartialPanel = &Dev{}
