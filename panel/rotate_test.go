package panel

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/flavioheleno/anydisplay/pixfmt"
)

// fakePanel records what is committed to it.
type fakePanel struct {
	g      Geometry
	frames [][]byte
	halted bool
}

func (f *fakePanel) Geometry() Geometry { return f.g }

func (f *fakePanel) Commit(frame []byte) error {
	f.frames = append(f.frames, append([]byte(nil), frame...))
	return nil
}

func (f *fakePanel) Halt() error {
	f.halted = true
	return nil
}

type fakePartial struct {
	fakePanel
	rects []image.Rectangle
}

func (f *fakePartial) CommitRect(frame []byte, r image.Rectangle) error {
	f.rects = append(f.rects, r)
	return nil
}

// turn rotates the point p of a w×h panel clockwise by deg degrees.
func turn(p image.Point, deg, w, h int) image.Point {
	switch deg {
	case 90:
		return image.Point{X: h - 1 - p.Y, Y: p.X}
	case 180:
		return image.Point{X: w - 1 - p.X, Y: h - 1 - p.Y}
	case 270:
		return image.Point{X: p.Y, Y: w - 1 - p.X}
	}
	return p
}

func TestGeometryRotate(t *testing.T) {
	for _, order := range []Order{RowMajor, ColumnMajor} {
		for _, orig := range []Origin{TopLeft, TopRight, BottomLeft, BottomRight} {
			g := Geometry{Width: 3, Height: 2, Format: pixfmt.RGB888, Order: order, Origin: orig}
			for _, deg := range []int{0, 90, 180, 270} {
				rg, err := g.Rotate(deg)
				if err != nil {
					t.Fatalf("%v: Rotate(%d) error = %v", g, deg, err)
				}
				if err := rg.Validate(); err != nil {
					t.Fatalf("%v: Rotate(%d) = invalid %v", g, deg, rg)
				}
				wantW, wantH := 3, 2
				if deg == 90 || deg == 270 {
					wantW, wantH = 2, 3
				}
				if rg.Width != wantW || rg.Height != wantH {
					t.Errorf("%v: Rotate(%d) size = %dx%d, want %dx%d", g, deg, rg.Width, rg.Height, wantW, wantH)
				}
				for i := 0; i < g.Len(); i++ {
					want := turn(g.Position(i), deg, g.Width, g.Height)
					if got := rg.Position(i); got != want {
						t.Errorf("%v: Rotate(%d) pixel %d at %v, want %v", g, deg, i, got, want)
					}
				}
			}
		}
	}
}

func TestGeometryRotateInvalid(t *testing.T) {
	g := Geometry{Width: 4, Height: 2, Format: pixfmt.Mono1}
	for _, deg := range []int{45, -90, 360} {
		if _, err := g.Rotate(deg); !errors.Is(err, ErrConfiguration) {
			t.Errorf("Rotate(%d) error = %v, want ErrConfiguration", deg, err)
		}
	}
	if _, err := Rotate(&fakePanel{g: g}, 45); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Rotate(panel, 45) error = %v, want ErrConfiguration", err)
	}
}

func TestRotatePanel(t *testing.T) {
	inner := &fakePanel{g: Geometry{Width: 4, Height: 2, Format: pixfmt.Gray8}}

	if p, err := Rotate(inner, 0); err != nil || p != Panel(inner) {
		t.Errorf("Rotate(0) = %v, %v, want the panel itself", p, err)
	}

	p, err := Rotate(inner, 90)
	if err != nil {
		t.Fatal(err)
	}
	want := Geometry{Width: 2, Height: 4, Format: pixfmt.Gray8, Order: ColumnMajor, Origin: TopRight}
	if got := p.Geometry(); got != want {
		t.Errorf("Geometry() = %v, want %v", got, want)
	}
	if _, ok := p.(PartialPanel); ok {
		t.Error("rotated full frame panel should not take partial updates")
	}

	frame := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := p.Commit(frame); err != nil {
		t.Fatal(err)
	}
	if len(inner.frames) != 1 || !bytes.Equal(inner.frames[0], frame) {
		t.Errorf("frames = %v, want the frame unchanged", inner.frames)
	}

	h, ok := Capability[interface{ Halt() error }](p)
	if !ok {
		t.Fatal("Capability() did not find Halt behind the rotation")
	}
	if err := h.Halt(); err != nil || !inner.halted {
		t.Errorf("Halt() = %v, halted = %v", err, inner.halted)
	}
	if _, ok := Capability[interface{ SetContrast(byte) error }](p); ok {
		t.Error("Capability() found a method nobody implements")
	}
}

func TestRotateCommitRect(t *testing.T) {
	tests := []struct {
		deg  int
		r    image.Rectangle
		want image.Rectangle
	}{
		{90, image.Rect(0, 0, 1, 2), image.Rect(0, 1, 2, 2)},
		{270, image.Rect(1, 2, 2, 4), image.Rect(0, 1, 2, 2)},
		{180, image.Rect(0, 0, 1, 1), image.Rect(3, 1, 4, 2)},
		{90, image.Rect(0, 0, 2, 4), image.Rect(0, 0, 4, 2)},
	}

	for _, tt := range tests {
		inner := &fakePartial{fakePanel: fakePanel{g: Geometry{Width: 4, Height: 2, Format: pixfmt.Gray8}}}
		p, err := Rotate(inner, tt.deg)
		if err != nil {
			t.Fatal(err)
		}
		pp, ok := p.(PartialPanel)
		if !ok {
			t.Fatalf("Rotate(%d) lost CommitRect", tt.deg)
		}
		if err := pp.CommitRect(make([]byte, 8), tt.r); err != nil {
			t.Fatal(err)
		}
		if len(inner.rects) != 1 || inner.rects[0] != tt.want {
			t.Errorf("Rotate(%d).CommitRect(%v) sent %v, want %v", tt.deg, tt.r, inner.rects, tt.want)
		}
		if err := pp.CommitRect(make([]byte, 8), image.Rect(10, 10, 12, 12)); err != nil {
			t.Fatal(err)
		}
		if len(inner.rects) != 1 {
			t.Errorf("Rotate(%d).CommitRect outside the panel reached the driver", tt.deg)
		}
	}
}

// A one pixel update must land on the pixel that frame index occupies on
// the unrotated panel, whatever the panel's own addressing.
func TestRotateCommitRectMatchesGeometry(t *testing.T) {
	for _, orig := range []Origin{TopLeft, TopRight, BottomLeft, BottomRight} {
		for _, deg := range []int{90, 180, 270} {
			ig := Geometry{Width: 4, Height: 2, Format: pixfmt.Gray8, Order: ColumnMajor, Origin: orig}
			inner := &fakePartial{fakePanel: fakePanel{g: ig}}
			p, err := Rotate(inner, deg)
			if err != nil {
				t.Fatal(err)
			}
			g := p.Geometry()
			pp := p.(PartialPanel)
			for y := 0; y < g.Height; y++ {
				for x := 0; x < g.Width; x++ {
					inner.rects = nil
					if err := pp.CommitRect(make([]byte, 8), image.Rect(x, y, x+1, y+1)); err != nil {
						t.Fatal(err)
					}
					r := inner.rects[0]
					if r.Dx() != 1 || r.Dy() != 1 {
						t.Fatalf("%v %d: (%d, %d) mapped to %v", orig, deg, x, y, r)
					}
					if got, want := ig.Index(r.Min.X, r.Min.Y), g.Index(x, y); got != want {
						t.Errorf("%v %d: (%d, %d) mapped to index %d, want %d", orig, deg, x, y, got, want)
					}
				}
			}
		}
	}
}
