package anydisplay

import (
	"fmt"
	"image"
	"strings"

	"github.com/flavioheleno/anydisplay/panel"
)

// Policy selects how the logical buffer is fitted onto the panel.
type Policy uint8

const (
	// Stretch scales each axis independently to fill the panel.
	Stretch Policy = iota
	// CropCenter keeps the centered panel-sized part of the buffer. An axis
	// where the panel is larger than the buffer is stretched instead.
	CropCenter
	// Letterbox scales both axes by the same factor so that the whole buffer
	// fits, and fills the remaining border.
	Letterbox
)

var policyNames = [...]string{Stretch: "stretch", CropCenter: "crop", Letterbox: "letterbox"}

func (p Policy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("anydisplay.Policy(%d)", uint8(p))
}

// ParsePolicy parses the String form of a Policy.
func ParsePolicy(s string) (Policy, error) {
	for i, n := range policyNames {
		if strings.EqualFold(s, n) {
			return Policy(i), nil
		}
	}
	return 0, configf("unknown transform policy %q", s)
}

// Interpolation selects how physical pixels are sampled from the buffer.
type Interpolation uint8

const (
	// AreaAverage weights every logical pixel by how much of the physical
	// pixel footprint it covers.
	AreaAverage Interpolation = iota
	// Nearest picks a single logical pixel. It only applies to axes that
	// are upsampled or kept at the same scale; downsampled axes always use
	// area weights.
	Nearest
)

var interpolationNames = [...]string{AreaAverage: "area", Nearest: "nearest"}

func (i Interpolation) String() string {
	if int(i) < len(interpolationNames) {
		return interpolationNames[i]
	}
	return fmt.Sprintf("anydisplay.Interpolation(%d)", uint8(i))
}

// ParseInterpolation parses the String form of an Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	for i, n := range interpolationNames {
		if strings.EqualFold(s, n) {
			return Interpolation(i), nil
		}
	}
	return 0, configf("unknown interpolation %q", s)
}

// Transform describes how a buffer is mapped onto a panel. The zero value
// is Stretch with AreaAverage.
type Transform struct {
	Policy        Policy
	Interpolation Interpolation
	Border        Color // Letterbox only
}

// tap is one weighted logical sample along an axis.
type tap struct {
	src int32
	w   uint32
}

// axis holds the taps of every physical coordinate along one dimension.
// The taps of coordinate p are taps[start[p]:start[p+1]]; an empty range
// is border. Weights of a non-empty range always sum to total.
type axis struct {
	start []int32
	taps  []tap
	total uint64
}

func (a *axis) span(p int32) []tap {
	return a.taps[a.start[p]:a.start[p+1]]
}

// Plan is a precomputed sampling plan from a logical buffer to a panel
// frame. Apply does not allocate and is deterministic, so a plan can be
// reused for every flush.
type Plan struct {
	w, h    int
	g       panel.Geometry
	t       Transform
	x, y    axis
	cells   []image.Point // physical position of each frame index
	content image.Rectangle
}

// NewPlan builds the plan mapping a w×h buffer onto g.
func NewPlan(w, h int, g panel.Geometry, t Transform) (*Plan, error) {
	if w <= 0 || h <= 0 {
		return nil, configf("logical size %dx%d must be positive", w, h)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if t.Policy > Letterbox {
		return nil, configf("unknown transform policy %v", t.Policy)
	}
	if t.Interpolation > Nearest {
		return nil, configf("unknown interpolation %v", t.Interpolation)
	}

	p := &Plan{w: w, h: h, g: g, t: t}
	pw, ph := g.Width, g.Height
	switch t.Policy {
	case Stretch:
		p.x = scaleAxis(w, pw, 0, pw, t.Interpolation)
		p.y = scaleAxis(h, ph, 0, ph, t.Interpolation)
		p.content = image.Rect(0, 0, pw, ph)
	case CropCenter:
		p.x = cropAxis(w, pw, t.Interpolation)
		p.y = cropAxis(h, ph, t.Interpolation)
		p.content = image.Rect(0, 0, pw, ph)
	case Letterbox:
		cw, ch := letterbox(w, h, pw, ph)
		ox, oy := (pw-cw)/2, (ph-ch)/2
		p.x = scaleAxis(w, cw, ox, pw, t.Interpolation)
		p.y = scaleAxis(h, ch, oy, ph, t.Interpolation)
		p.content = image.Rect(ox, oy, ox+cw, oy+ch)
	}

	p.cells = make([]image.Point, g.Len())
	for i := range p.cells {
		p.cells[i] = g.Position(i)
	}
	return p, nil
}

// letterbox returns the size of the content region when a w×h buffer is
// scaled by min(pw/w, ph/h). The constrained axis matches the panel, the
// other is rounded to the nearest pixel and never collapses to zero.
func letterbox(w, h, pw, ph int) (cw, ch int) {
	if pw*h <= ph*w {
		cw = pw
		ch = (2*h*pw + w) / (2 * w)
		ch = min(max(ch, 1), ph)
	} else {
		ch = ph
		cw = (2*w*ph + h) / (2 * h)
		cw = min(max(cw, 1), pw)
	}
	return cw, ch
}

// cropAxis keeps the centered n physical pixels of l logical ones, or
// stretches when the panel is the larger of the two.
func cropAxis(l, n int, interp Interpolation) axis {
	if n > l {
		return scaleAxis(l, n, 0, n, interp)
	}
	a := axis{start: make([]int32, n+1), taps: make([]tap, n), total: 1}
	off := (l - n) / 2
	for q := 0; q < n; q++ {
		a.start[q] = int32(q)
		a.taps[q] = tap{src: int32(off + q), w: 1}
	}
	a.start[n] = int32(n)
	return a
}

// scaleAxis maps l logical pixels onto c physical pixels placed at offset
// off inside an axis of n physical pixels. Coordinates outside [off, off+c)
// receive no taps.
//
// Area weights are exact: positions are measured in units of 1/c of a
// logical pixel, so logical pixel i spans [i*c, (i+1)*c) and physical pixel
// k spans [k*l, (k+1)*l). Every physical pixel's weights sum to l.
func scaleAxis(l, c, off, n int, interp Interpolation) axis {
	nearest := interp == Nearest && c >= l
	a := axis{start: make([]int32, n+1)}
	if nearest {
		a.total = 1
		a.taps = make([]tap, 0, c)
	} else {
		a.total = uint64(l)
		a.taps = make([]tap, 0, c+l)
	}
	for q := 0; q < n; q++ {
		a.start[q] = int32(len(a.taps))
		k := q - off
		if k < 0 || k >= c {
			continue
		}
		if nearest {
			a.taps = append(a.taps, tap{src: int32(k * l / c), w: 1})
			continue
		}
		lo, hi := k*l, (k+1)*l
		for i := lo / c; i*c < hi; i++ {
			w := min(hi, (i+1)*c) - max(lo, i*c)
			a.taps = append(a.taps, tap{src: int32(i), w: uint32(w)})
		}
	}
	a.start[n] = int32(len(a.taps))
	return a
}

// Len returns the number of colors Apply writes.
func (p *Plan) Len() int { return len(p.cells) }

// Geometry returns the panel geometry the plan was built for.
func (p *Plan) Geometry() panel.Geometry { return p.g }

// Transform returns the transform the plan implements.
func (p *Plan) Transform() Transform { return p.t }

// Content returns the physical rectangle showing the buffer. It is the whole
// panel except under Letterbox.
func (p *Plan) Content() image.Rectangle { return p.content }

// Position returns the physical point of frame index i.
func (p *Plan) Position(i int) image.Point { return p.cells[i] }

// Apply samples src into dst, one color per physical pixel in the panel's
// addressing order. len(dst) must equal p.Len() and src must have the
// logical size of the plan.
func (p *Plan) Apply(dst []Color, src *Buffer) error {
	if len(dst) != len(p.cells) {
		return fmt.Errorf("anydisplay: plan needs %d colors, got %d", len(p.cells), len(dst))
	}
	if src.w != p.w || src.h != p.h {
		return fmt.Errorf("anydisplay: plan is for a %dx%d buffer, got %dx%d", p.w, p.h, src.w, src.h)
	}
	div := p.x.total * p.y.total
	half := div / 2
	pix, stride := src.pix, int32(src.w)
	for i, cell := range p.cells {
		xs := p.x.span(int32(cell.X))
		ys := p.y.span(int32(cell.Y))
		if len(xs) == 0 || len(ys) == 0 {
			dst[i] = p.t.Border
			continue
		}
		if len(xs) == 1 && len(ys) == 1 {
			dst[i] = pix[ys[0].src*stride+xs[0].src]
			continue
		}
		// Color channels are averaged premultiplied by alpha so that
		// transparent pixels do not contribute their color.
		var r, g, b, a uint64
		for _, ty := range ys {
			row := ty.src * stride
			for _, tx := range xs {
				c := pix[row+tx.src]
				if c.A == 0 {
					continue
				}
				w := uint64(ty.w) * uint64(tx.w) * uint64(c.A)
				r += w * uint64(c.R)
				g += w * uint64(c.G)
				b += w * uint64(c.B)
				a += w
			}
		}
		if a == 0 {
			dst[i] = Color{}
			continue
		}
		ha := a / 2
		dst[i] = Color{
			R: uint8((r + ha) / a),
			G: uint8((g + ha) / a),
			B: uint8((b + ha) / a),
			A: uint8((a + half) / div),
		}
	}
	return nil
}
