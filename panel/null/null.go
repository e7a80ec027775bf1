// Package null provides a panel that accepts frames and discards them.
//
// It is useful for running drawing code without hardware and for measuring
// the cost of the software pipeline alone.
package null

import (
	"fmt"

	"github.com/flavioheleno/anydisplay/panel"
	"github.com/flavioheleno/anydisplay/pixfmt"
)

// Opts configures the null panel.
type Opts struct {
	W      int           // Width (default: 64)
	H      int           // Height (default: 64)
	Format pixfmt.Format // Native format (default: RGB888)
}

// Dev is a panel that goes nowhere.
type Dev struct {
	g      panel.Geometry
	frames int
	last   []byte
	halted bool
}

// New returns a null panel.
func New(opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: 64, H: 64}
	}
	g := panel.Geometry{Width: opts.W, Height: opts.H, Format: opts.Format}
	if g.Format == pixfmt.Invalid {
		g.Format = pixfmt.RGB888
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("null: %w", err)
	}
	return &Dev{g: g, last: make([]byte, g.FrameSize())}, nil
}

// Geometry implements panel.Panel.
func (d *Dev) Geometry() panel.Geometry {
	return d.g
}

// Commit implements panel.Panel.
func (d *Dev) Commit(frame []byte) error {
	if d.halted {
		return fmt.Errorf("null: %w", panel.ErrHalted)
	}
	if len(frame) != len(d.last) {
		return fmt.Errorf("null: %w", pixfmt.ErrFrameSize)
	}
	copy(d.last, frame)
	d.frames++
	return nil
}

// Frames returns the number of frames committed so far.
func (d *Dev) Frames() int {
	return d.frames
}

// Last returns the last committed frame. The slice is owned by the panel.
func (d *Dev) Last() []byte {
	return d.last
}

// Halt stops accepting frames.
func (d *Dev) Halt() error {
	d.halted = true
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("null.Dev{%dx%d}", d.g.Width, d.g.Height)
}
