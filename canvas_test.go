package anydisplay

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"strings"
	"testing"

	"github.com/flavioheleno/anydisplay/panel"
	"github.com/flavioheleno/anydisplay/pixfmt"
)

// recorder is a Panel keeping a copy of every committed frame.
type recorder struct {
	g      panel.Geometry
	frames [][]byte
	err    error // returned, without recording, while set
}

func (r *recorder) Geometry() panel.Geometry { return r.g }

func (r *recorder) Commit(frame []byte) error {
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, append([]byte(nil), frame...))
	return nil
}

func (r *recorder) last() []byte {
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

// partialRecorder additionally records dirty rectangles.
type partialRecorder struct {
	recorder
	rects []image.Rectangle
}

func (r *partialRecorder) CommitRect(frame []byte, rect image.Rectangle) error {
	if r.err != nil {
		return r.err
	}
	r.rects = append(r.rects, rect)
	r.frames = append(r.frames, append([]byte(nil), frame...))
	return nil
}

func newRecorder(w, h int, f pixfmt.Format) *recorder {
	return &recorder{g: panel.Geometry{Width: w, Height: h, Format: f}}
}

func TestNewDefaults(t *testing.T) {
	p := newRecorder(16, 8, pixfmt.RGB565)
	c, err := New(p, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.Width() != 16 || c.Height() != 8 {
		t.Errorf("logical size = %dx%d, want the panel size", c.Width(), c.Height())
	}
	if c.Transform() != (Transform{}) {
		t.Errorf("Transform() = %+v, want the zero value", c.Transform())
	}
	if c.Geometry() != p.g {
		t.Errorf("Geometry() = %v", c.Geometry())
	}
	if c.Frame() != nil {
		t.Error("Frame() before the first flush should be nil")
	}
	if got := c.String(); got != "anydisplay.Canvas{16x8 on 16x8 rgb565 row-major top-left}" {
		t.Errorf("String() = %q", got)
	}
}

func TestNewDefaultsEachAxis(t *testing.T) {
	tests := []struct {
		name         string
		opts         *Opts
		wantW, wantH int
	}{
		{"width only", &Opts{Width: 32}, 32, 8},
		{"height only", &Opts{Height: 4}, 16, 4},
		{"both", &Opts{Width: 3, Height: 5}, 3, 5},
		{"neither", &Opts{}, 16, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(newRecorder(16, 8, pixfmt.RGB888), tt.opts)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if c.Width() != tt.wantW || c.Height() != tt.wantH {
				t.Errorf("logical size = %dx%d, want %dx%d", c.Width(), c.Height(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestNewConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		p    panel.Panel
		opts *Opts
	}{
		{"nil panel", nil, nil},
		{"zero panel size", newRecorder(0, 8, pixfmt.RGB888), nil},
		{"no pixel format", newRecorder(8, 8, pixfmt.Invalid), nil},
		{"negative logical size", newRecorder(8, 8, pixfmt.RGB888), &Opts{Width: -4, Height: 4}},
		{"bad policy", newRecorder(8, 8, pixfmt.RGB888), &Opts{Transform: Transform{Policy: 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.p, tt.opts)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("New() error = %v, want ErrConfiguration", err)
			}
			if c != nil {
				t.Error("New() returned a canvas on error")
			}
		})
	}
}

func TestFlushEncodesNativeFormat(t *testing.T) {
	p := newRecorder(4, 1, pixfmt.Gray8)
	c, err := New(p, &Opts{Background: Black})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(1, 0, White); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(3, 0, RGB(0xFF, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if want := []byte{0x00, 0xFF, 0x00, 0x4C}; !bytes.Equal(p.last(), want) {
		t.Errorf("frame = % x, want % x", p.last(), want)
	}
	frame := c.Frame()
	if len(frame) != 4 || frame[1] != White {
		t.Errorf("Frame() = %v", frame)
	}
	frame[1] = Black
	if c.Frame()[1] != White {
		t.Error("Frame() must return a copy")
	}
}

func TestFlushFollowsAddressingOrder(t *testing.T) {
	p := newRecorder(2, 2, pixfmt.Gray8)
	p.g.Order = panel.ColumnMajor
	p.g.Origin = panel.TopRight
	c, err := New(p, &Opts{Background: Black})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(1, 0, White); err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	// index 0 is the top right corner
	if want := []byte{0xFF, 0x00, 0x00, 0x00}; !bytes.Equal(p.last(), want) {
		t.Errorf("frame = % x, want % x", p.last(), want)
	}
}

func TestFlushRotatedPanel(t *testing.T) {
	p := newRecorder(4, 2, pixfmt.Gray8)
	rp, err := panel.Rotate(p, 90)
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(rp, &Opts{Background: Black})
	if err != nil {
		t.Fatal(err)
	}
	if c.Width() != 2 || c.Height() != 4 {
		t.Fatalf("logical size = %dx%d, want 2x4", c.Width(), c.Height())
	}
	// The viewer's top left corner is the bottom left LED of the panel.
	if err := c.Set(0, 0, White); err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	if want := []byte{0, 0, 0, 0, 0xFF, 0, 0, 0}; !bytes.Equal(p.last(), want) {
		t.Errorf("frame = % x, want % x", p.last(), want)
	}
}

func TestFlushFullFramePanel(t *testing.T) {
	p := newRecorder(4, 4, pixfmt.RGB888)
	c, err := New(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := c.Flush(); err != nil {
			t.Fatal(err)
		}
	}
	if len(p.frames) != 3 {
		t.Errorf("panel got %d frames, want one per flush", len(p.frames))
	}
}

func TestFlushDirtyRect(t *testing.T) {
	p := &partialRecorder{recorder: *newRecorder(8, 4, pixfmt.RGB888)}
	c, err := New(p, &Opts{Background: Black})
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(p.frames) != 1 || len(p.rects) != 0 {
		t.Fatalf("first flush should be a full commit, got %d frames and rects %v", len(p.frames), p.rects)
	}

	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(p.frames) != 1 {
		t.Errorf("unchanged flush committed a frame")
	}

	if err := c.Set(2, 1, White); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(5, 2, White); err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	if want := image.Rect(2, 1, 6, 3); len(p.rects) != 1 || p.rects[0] != want {
		t.Errorf("dirty rects = %v, want [%v]", p.rects, want)
	}

	if err := c.Fill(White); err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(p.rects) != 1 || len(p.frames) != 3 {
		t.Errorf("whole frame change should use Commit, rects %v", p.rects)
	}
}

func TestFlushDriverError(t *testing.T) {
	var logs bytes.Buffer
	bus := errors.New("spi: bus error")
	p := newRecorder(4, 2, pixfmt.RGB565)
	c, err := New(p, &Opts{
		Background: Black,
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.FillRect(image.Rect(0, 0, 2, 2), RGB(0, 0x80, 0xFF)); err != nil {
		t.Fatal(err)
	}

	p.err = bus
	err = c.Flush()
	if !errors.Is(err, ErrDriverIO) || !errors.Is(err, bus) {
		t.Fatalf("Flush() error = %v, want ErrDriverIO wrapping the bus error", err)
	}
	var ioe *panel.IOError
	if !errors.As(err, &ioe) {
		t.Errorf("Flush() error %T is not a *panel.IOError", err)
	}
	if !strings.Contains(logs.String(), "commit failed") {
		t.Errorf("failed commit not logged: %q", logs.String())
	}
	if c.Frame() != nil {
		t.Error("failed flush must not update Frame()")
	}
	if got, _ := c.Get(1, 1); got != RGB(0, 0x80, 0xFF) {
		t.Error("failed flush modified the buffer")
	}

	// A reference canvas flushed without failure produces the same frame as
	// the retry.
	ref := newRecorder(4, 2, pixfmt.RGB565)
	rc, err := New(ref, &Opts{Background: Black})
	if err != nil {
		t.Fatal(err)
	}
	if err := rc.FillRect(image.Rect(0, 0, 2, 2), RGB(0, 0x80, 0xFF)); err != nil {
		t.Fatal(err)
	}
	if err := rc.Flush(); err != nil {
		t.Fatal(err)
	}

	p.err = nil
	if err := c.Flush(); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if !bytes.Equal(p.last(), ref.last()) {
		t.Errorf("retried frame % x, want % x", p.last(), ref.last())
	}
}

func TestFlushPartialRetry(t *testing.T) {
	p := &partialRecorder{recorder: *newRecorder(4, 4, pixfmt.RGB888)}
	c, err := New(p, &Opts{Background: Black})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(3, 3, White); err != nil {
		t.Fatal(err)
	}

	p.err = errors.New("timeout")
	if err := c.Flush(); !errors.Is(err, ErrDriverIO) {
		t.Fatalf("Flush() error = %v, want ErrDriverIO", err)
	}
	p.err = nil
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	// the failed rectangle is still dirty
	if want := image.Rect(3, 3, 4, 4); len(p.rects) != 1 || p.rects[0] != want {
		t.Errorf("dirty rects = %v, want [%v]", p.rects, want)
	}
}

func TestSetTransform(t *testing.T) {
	p := newRecorder(4, 4, pixfmt.RGB888)
	c, err := New(p, &Opts{Width: 4, Height: 2, Background: White})
	if err != nil {
		t.Fatal(err)
	}

	if err := c.SetTransform(Transform{Interpolation: 5}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("SetTransform() error = %v, want ErrConfiguration", err)
	}
	if c.Transform() != (Transform{}) {
		t.Error("failed SetTransform() replaced the transform")
	}

	lb := Transform{Policy: Letterbox, Border: RGB(0, 0, 0xFF)}
	if err := c.SetTransform(lb); err != nil {
		t.Fatal(err)
	}
	if c.Transform() != lb {
		t.Errorf("Transform() = %+v, want %+v", c.Transform(), lb)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	frame := c.Frame()
	// rows 0 and 3 are border, rows 1 and 2 show the buffer
	for i, col := range frame {
		want := White
		if y := i / 4; y == 0 || y == 3 {
			want = lb.Border
		}
		if col != want {
			t.Errorf("pixel %d = %v, want %v", i, col, want)
		}
	}
}

func TestClosed(t *testing.T) {
	p := newRecorder(4, 4, pixfmt.Mono1)
	c, err := New(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	calls := map[string]func() error{
		"Close":        c.Close,
		"Flush":        c.Flush,
		"Clear":        c.Clear,
		"Fill":         func() error { return c.Fill(White) },
		"Set":          func() error { return c.Set(0, 0, White) },
		"Point":        func() error { return c.Point(0, 0, White) },
		"Line":         func() error { return c.Line(0, 0, 1, 1, White) },
		"Rect":         func() error { return c.Rect(image.Rect(0, 0, 2, 2), White) },
		"FillRect":     func() error { return c.FillRect(image.Rect(0, 0, 2, 2), White) },
		"Circle":       func() error { return c.Circle(1, 1, 1, White) },
		"FillCircle":   func() error { return c.FillCircle(1, 1, 1, White) },
		"Text":         func() error { return c.Text(0, 0, "x", nil, White) },
		"Image":        func() error { return c.Image(image.Rect(0, 0, 1, 1), image.Black) },
		"SetTransform": func() error { return c.SetTransform(Transform{}) },
		"Get": func() error {
			_, err := c.Get(0, 0)
			return err
		},
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrClosed) {
			t.Errorf("%s() after Close error = %v, want ErrClosed", name, err)
		}
	}
	if len(p.frames) != 0 {
		t.Error("closed canvas committed a frame")
	}
}

func TestFrameAfterClose(t *testing.T) {
	p := newRecorder(2, 2, pixfmt.RGB888)
	c, err := New(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	if c.Frame() == nil {
		t.Fatal("Frame() after a flush should not be nil")
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if f := c.Frame(); f != nil {
		t.Errorf("Frame() after Close = %v, want nil", f)
	}
	if c.Width() != 2 || c.Geometry() != p.g {
		t.Error("accessors should keep describing the bound canvas after Close")
	}
}

func TestDrawErrorsDoNotFlush(t *testing.T) {
	p := newRecorder(4, 4, pixfmt.RGB888)
	c, err := New(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Line(0, 0, 4, 4, White); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Line() error = %v, want ErrOutOfBounds", err)
	}
	if len(p.frames) != 0 {
		t.Error("drawing committed a frame")
	}
}
