// Package term shows frames in a terminal through tcell.
//
// Every character cell displays two vertically stacked pixels with the
// upper half block: the foreground color is the top pixel, the background
// color the bottom one. The terminal must support 24-bit color for the
// colors to be exact; tcell picks the closest palette entry otherwise.
package term

import (
	"fmt"
	"image"

	"github.com/gdamore/tcell/v2"

	"github.com/flavioheleno/anydisplay/panel"
	"github.com/flavioheleno/anydisplay/pixfmt"
)

const halfBlock = '▀'

// Opts is the size of the emulated panel, in pixels.
type Opts struct {
	W int // Width (default: the terminal width)
	H int // Height (default: twice the terminal height)
}

// Dev is a panel drawn in a terminal screen.
type Dev struct {
	s    tcell.Screen
	g    panel.Geometry
	owns bool

	halted bool
}

// Open takes over the controlling terminal. Close restores it.
func Open(opts *Opts) (*Dev, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, panel.WrapIO("term: open", err)
	}
	if err := s.Init(); err != nil {
		return nil, panel.WrapIO("term: init", err)
	}
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset))
	s.HideCursor()
	d, err := New(s, opts)
	if err != nil {
		s.Fini()
		return nil, err
	}
	d.owns = true
	return d, nil
}

// New draws on an initialized screen owned by the caller.
func New(s tcell.Screen, opts *Opts) (*Dev, error) {
	cols, rows := s.Size()
	w, h := cols, rows*2
	if opts != nil && opts.W != 0 {
		w = opts.W
	}
	if opts != nil && opts.H != 0 {
		h = opts.H
	}
	if w <= 0 || h <= 0 {
		return nil, panel.Configf("term: panel size %dx%d must be positive", w, h)
	}
	if w > cols || (h+1)/2 > rows {
		return nil, panel.Configf("term: %dx%d pixels do not fit a %dx%d terminal", w, h, cols, rows)
	}
	return &Dev{
		s: s,
		g: panel.Geometry{Width: w, Height: h, Format: pixfmt.RGB888},
	}, nil
}

// Geometry implements panel.Panel.
func (d *Dev) Geometry() panel.Geometry {
	return d.g
}

// Commit implements panel.Panel.
func (d *Dev) Commit(frame []byte) error {
	return d.CommitRect(frame, d.g.Bounds())
}

// CommitRect implements panel.PartialPanel. r is widened to whole character
// rows.
func (d *Dev) CommitRect(frame []byte, r image.Rectangle) error {
	if d.halted {
		return fmt.Errorf("term: %w", panel.ErrHalted)
	}
	if len(frame) != d.g.FrameSize() {
		return fmt.Errorf("term: %w: got %d bytes, want %d", pixfmt.ErrFrameSize, len(frame), d.g.FrameSize())
	}
	r = r.Intersect(d.g.Bounds())
	if r.Empty() {
		return nil
	}
	for row := r.Min.Y / 2; row < (r.Max.Y+1)/2; row++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			st := tcell.StyleDefault.Foreground(d.color(frame, x, 2*row))
			if y := 2*row + 1; y < d.g.Height {
				st = st.Background(d.color(frame, x, y))
			} else {
				st = st.Background(tcell.ColorReset)
			}
			d.s.SetContent(x, row, halfBlock, nil, st)
		}
	}
	d.s.Show()
	return nil
}

func (d *Dev) color(frame []byte, x, y int) tcell.Color {
	i := 3 * (y*d.g.Width + x)
	return tcell.NewRGBColor(int32(frame[i]), int32(frame[i+1]), int32(frame[i+2]))
}

// Halt clears the screen.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true
	d.s.Clear()
	d.s.Show()
	return nil
}

// Close halts the panel and restores the terminal when it was opened by
// Open.
func (d *Dev) Close() error {
	err := d.Halt()
	if d.owns {
		d.s.Fini()
		d.owns = false
	}
	return err
}

func (d *Dev) String() string {
	return fmt.Sprintf("term.Dev{%dx%d}", d.g.Width, d.g.Height)
}

var _ panel.PartialPanel = &Dev{}
