// Package anydisplay draws on small, heterogeneous display panels through a
// single canvas.
//
// Client code draws at a logical resolution of its choice. On Flush the
// canvas maps the logical buffer onto the panel's physical grid, converts
// colors to the panel's native pixel format and commits the frame through
// the panel.Panel contract. The same drawing code can target a 16×16 RGB
// HAT, a 32×32 LED matrix or a 256×64 grayscale OLED unchanged.
//
// # Buffer and Primitives
//
// A Buffer holds one Color per logical pixel. Point, Line, Rect, FillRect,
// Circle, FillCircle, Text and Image rasterize with integer arithmetic and
// fail with ErrOutOfBounds, without drawing anything, when their footprint
// leaves the buffer:
//
//	if err := c.Line(0, 0, 31, 31, anydisplay.White); err != nil {
//		// caller bug: the canvas is smaller than expected
//	}
//
// # Transform
//
// A Transform selects how the buffer is fitted onto the panel:
//
//	Stretch     each axis scaled independently to fill the panel
//	CropCenter  the centered panel-sized part of the buffer is shown
//	Letterbox   uniform scale, remaining pixels filled with Border
//
// and how pixels are sampled:
//
//	AreaAverage area weighted mean of every covered logical pixel
//	Nearest     a single logical pixel (upsampling only)
//
// Axes that shrink always use area weights: nearest sampling at 32×32 drops
// whole features. The sampling plan is computed once when the canvas is
// bound, or when SetTransform is called, and reused by every flush.
//
// # Basic Usage
//
//	dev, _ := null.New(&null.Opts{W: 32, H: 32})
//
//	c, err := anydisplay.New(dev, &anydisplay.Opts{
//		Width:  128,
//		Height: 128,
//		Transform: anydisplay.Transform{
//			Policy: anydisplay.Letterbox,
//			Border: anydisplay.RGB(0x20, 0x20, 0x20),
//		},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	c.FillCircle(64, 64, 40, anydisplay.RGB(0xFF, 0x80, 0x00))
//	c.Text(2, 2, "hi", nil, anydisplay.White)
//	if err := c.Flush(); errors.Is(err, anydisplay.ErrDriverIO) {
//		// transport failure; the canvas is still usable, retry later
//	}
//
// # Errors
//
//	ErrOutOfBounds    drawing outside the logical buffer
//	ErrConfiguration  invalid sizes, formats or transforms, at bind time
//	ErrDriverIO       the panel failed to accept a frame; retry is allowed
//	ErrClosed         any call after Close
//
// # Concurrency
//
// A Canvas does no locking. Flush blocks until the panel returns and is
// never retried automatically.
package anydisplay
