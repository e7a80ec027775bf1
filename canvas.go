package anydisplay

import (
	"fmt"
	"image"
	"log/slog"

	"golang.org/x/image/font"

	"github.com/flavioheleno/anydisplay/panel"
)

// Opts is the configuration of a Canvas.
type Opts struct {
	// Logical resolution; a zero axis defaults to the panel's physical one
	Width  int
	Height int

	// Buffer to panel mapping (default: Stretch, AreaAverage)
	Transform Transform

	// Color of never drawn pixels and of Clear
	Background Color

	// Optional logger (default: discard)
	Logger *slog.Logger
}

// Canvas binds a logical Buffer to one Panel.
//
// Drawing happens on the buffer only; Flush maps it onto the panel grid and
// commits the frame. A Canvas is not safe for concurrent use: drive it from
// one goroutine or serialize access.
type Canvas struct {
	p       panel.Panel
	partial panel.PartialPanel // nil when the panel only takes full frames
	g       panel.Geometry

	buf  *Buffer
	plan *Plan

	out   []Color // frame being flushed
	last  []Color // frame the panel is showing
	frame []byte  // native encoding of out
	shown bool    // last is valid

	closed bool
	log    *slog.Logger
}

// New binds a canvas to p. The panel geometry is queried once here.
//
// opts can be nil to draw at the panel's own resolution with the default
// transform.
func New(p panel.Panel, opts *Opts) (*Canvas, error) {
	if p == nil {
		return nil, configf("nil panel")
	}
	if opts == nil {
		opts = &Opts{}
	}

	g := p.Geometry()
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("anydisplay: %w", err)
	}

	w, h := opts.Width, opts.Height
	if w == 0 {
		w = g.Width
	}
	if h == 0 {
		h = g.Height
	}
	buf, err := NewBuffer(w, h, opts.Background)
	if err != nil {
		return nil, err
	}
	plan, err := NewPlan(w, h, g, opts.Transform)
	if err != nil {
		return nil, err
	}

	c := &Canvas{
		p:     p,
		g:     g,
		buf:   buf,
		plan:  plan,
		out:   make([]Color, g.Len()),
		last:  make([]Color, g.Len()),
		frame: make([]byte, g.FrameSize()),
		log:   opts.Logger,
	}
	if pp, ok := p.(panel.PartialPanel); ok {
		c.partial = pp
	}
	if c.log == nil {
		c.log = newNopLogger()
	}
	c.log.Debug("anydisplay: canvas bound",
		"logical", fmt.Sprintf("%dx%d", w, h),
		"panel", g.String(),
		"policy", opts.Transform.Policy.String(),
		"interpolation", opts.Transform.Interpolation.String(),
		"partial", c.partial != nil,
	)
	return c, nil
}

// Width returns the logical width.
func (c *Canvas) Width() int { return c.buf.w }

// Height returns the logical height.
func (c *Canvas) Height() int { return c.buf.h }

// Geometry returns the geometry the panel reported at bind time.
func (c *Canvas) Geometry() panel.Geometry { return c.g }

// Transform returns the active transform.
func (c *Canvas) Transform() Transform { return c.plan.t }

// SetTransform replaces the transform used by the following flushes. On
// error the previous transform stays in effect.
func (c *Canvas) SetTransform(t Transform) error {
	if c.closed {
		return ErrClosed
	}
	plan, err := NewPlan(c.buf.w, c.buf.h, c.g, t)
	if err != nil {
		return err
	}
	c.plan = plan
	c.log.Debug("anydisplay: transform changed", "policy", t.Policy.String(), "interpolation", t.Interpolation.String())
	return nil
}

// Set sets the logical pixel at (x, y).
func (c *Canvas) Set(x, y int, col Color) error {
	if c.closed {
		return ErrClosed
	}
	return c.buf.Set(x, y, col)
}

// Get returns the logical pixel at (x, y).
func (c *Canvas) Get(x, y int) (Color, error) {
	if c.closed {
		return Color{}, ErrClosed
	}
	return c.buf.Get(x, y)
}

// Clear resets the buffer to the background color.
func (c *Canvas) Clear() error {
	if c.closed {
		return ErrClosed
	}
	c.buf.Clear()
	return nil
}

// Fill paints the whole buffer.
func (c *Canvas) Fill(col Color) error {
	if c.closed {
		return ErrClosed
	}
	c.buf.Fill(col)
	return nil
}

// Point is Set.
func (c *Canvas) Point(x, y int, col Color) error {
	return c.Set(x, y, col)
}

// Line draws a line between two logical points, both included.
func (c *Canvas) Line(x0, y0, x1, y1 int, col Color) error {
	if c.closed {
		return ErrClosed
	}
	return c.buf.Line(x0, y0, x1, y1, col)
}

// Rect draws the outline of r.
func (c *Canvas) Rect(r image.Rectangle, col Color) error {
	if c.closed {
		return ErrClosed
	}
	return c.buf.Rect(r, col)
}

// FillRect fills r.
func (c *Canvas) FillRect(r image.Rectangle, col Color) error {
	if c.closed {
		return ErrClosed
	}
	return c.buf.FillRect(r, col)
}

// Circle draws the outline of a circle.
func (c *Canvas) Circle(cx, cy, radius int, col Color) error {
	if c.closed {
		return ErrClosed
	}
	return c.buf.Circle(cx, cy, radius, col)
}

// FillCircle draws a filled circle.
func (c *Canvas) FillCircle(cx, cy, radius int, col Color) error {
	if c.closed {
		return ErrClosed
	}
	return c.buf.FillCircle(cx, cy, radius, col)
}

// Text draws s with its top left corner at (x, y).
func (c *Canvas) Text(x, y int, s string, face font.Face, col Color) error {
	if c.closed {
		return ErrClosed
	}
	return c.buf.Text(x, y, s, face, col)
}

// Image scales src into the logical rectangle dst.
func (c *Canvas) Image(dst image.Rectangle, src image.Image) error {
	if c.closed {
		return ErrClosed
	}
	return c.buf.Image(dst, src)
}

// Flush maps the buffer onto the panel and commits the frame.
//
// Panels implementing panel.PartialPanel only receive the bounding
// rectangle of physical pixels that changed since the last successful
// flush, and nothing at all when none did. Other panels always receive the
// full frame.
//
// A failed commit wraps ErrDriverIO and leaves the canvas usable: the
// buffer is untouched and retrying reproduces the same frame.
func (c *Canvas) Flush() error {
	if c.closed {
		return ErrClosed
	}
	if err := c.plan.Apply(c.out, c.buf); err != nil {
		return err
	}
	if err := c.g.Format.Encode(c.frame, c.out); err != nil {
		return fmt.Errorf("anydisplay: %w", err)
	}

	var err error
	switch r := c.dirty(); {
	case r.Empty():
		return nil
	case c.partial != nil && r != c.g.Bounds():
		err = c.partial.CommitRect(c.frame, r)
	default:
		err = c.p.Commit(c.frame)
	}
	if err != nil {
		err = panel.WrapIO("anydisplay: flush", err)
		c.log.Warn("anydisplay: commit failed", "error", err)
		return err
	}

	copy(c.last, c.out)
	c.shown = true
	return nil
}

// dirty returns the rectangle to commit: the whole panel unless the panel
// takes partial updates and a previous frame was committed.
func (c *Canvas) dirty() image.Rectangle {
	if c.partial == nil || !c.shown {
		return c.g.Bounds()
	}
	var r image.Rectangle
	for i := range c.out {
		if c.out[i] == c.last[i] {
			continue
		}
		p := c.plan.Position(i)
		r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
	}
	return r
}

// Frame returns a copy of the last committed frame, one color per physical
// pixel in the panel's addressing order, or nil before the first successful
// flush and after Close.
func (c *Canvas) Frame() []Color {
	if c.closed || !c.shown {
		return nil
	}
	return append([]Color(nil), c.last...)
}

// Close releases the panel. Every later call fails with ErrClosed, except
// the accessors Width, Height, Geometry, Transform and String, which keep
// describing the canvas as it was bound. The panel itself is not halted;
// its lifetime belongs to the caller.
func (c *Canvas) Close() error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.p = nil
	c.partial = nil
	c.log.Debug("anydisplay: canvas closed")
	return nil
}

func (c *Canvas) String() string {
	return fmt.Sprintf("anydisplay.Canvas{%dx%d on %v}", c.buf.w, c.buf.h, c.g)
}
