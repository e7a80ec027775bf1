package panel

import "image"

// Rotate returns the geometry of g as seen by a viewer when the panel is
// mounted rotated clockwise by deg degrees: 0, 90, 180 or 270. The frame
// layout does not change; only its description does, so frame pixel i of
// the result lands where the rotated panel shows frame pixel i of g.
func (g Geometry) Rotate(deg int) (Geometry, error) {
	right := g.Origin == TopRight || g.Origin == BottomRight
	bottom := g.Origin == BottomLeft || g.Origin == BottomRight
	switch deg {
	case 0:
		return g, nil
	case 90:
		right, bottom = !bottom, right
	case 180:
		right, bottom = !right, !bottom
	case 270:
		right, bottom = bottom, !right
	default:
		return g, Configf("rotation %d must be 0, 90, 180 or 270", deg)
	}
	if deg != 180 {
		g.Width, g.Height = g.Height, g.Width
		if g.Order == RowMajor {
			g.Order = ColumnMajor
		} else {
			g.Order = RowMajor
		}
	}
	switch {
	case right && bottom:
		g.Origin = BottomRight
	case right:
		g.Origin = TopRight
	case bottom:
		g.Origin = BottomLeft
	default:
		g.Origin = TopLeft
	}
	return g, nil
}

// Rotate wraps p so that it reports the geometry of the panel mounted
// rotated clockwise by deg degrees. Frames pass through untouched. When p
// is a PartialPanel the result is one too, with rectangles mapped back to
// p's own coordinates. p is returned as is for 0 degrees.
func Rotate(p Panel, deg int) (Panel, error) {
	g, err := p.Geometry().Rotate(deg)
	if err != nil {
		return nil, err
	}
	if deg == 0 {
		return p, nil
	}
	r := rotated{p: p, g: g, inner: p.Geometry(), deg: deg}
	if pp, ok := p.(PartialPanel); ok {
		return &rotatedPartial{rotated: r, pp: pp}, nil
	}
	return &r, nil
}

type rotated struct {
	p     Panel
	g     Geometry // as seen by the viewer
	inner Geometry
	deg   int
}

func (r *rotated) Geometry() Geometry {
	return r.g
}

func (r *rotated) Commit(frame []byte) error {
	return r.p.Commit(frame)
}

// Unwrap returns the panel being rotated.
func (r *rotated) Unwrap() Panel {
	return r.p
}

// toInner maps a viewer point back onto the unrotated panel.
func (r *rotated) toInner(x, y int) image.Point {
	w, h := r.inner.Width, r.inner.Height
	switch r.deg {
	case 90:
		return image.Point{X: y, Y: h - 1 - x}
	case 180:
		return image.Point{X: w - 1 - x, Y: h - 1 - y}
	case 270:
		return image.Point{X: w - 1 - y, Y: x}
	}
	return image.Point{X: x, Y: y}
}

type rotatedPartial struct {
	rotated
	pp PartialPanel
}

func (r *rotatedPartial) CommitRect(frame []byte, rect image.Rectangle) error {
	rect = rect.Intersect(r.g.Bounds())
	if rect.Empty() {
		return nil
	}
	a := r.toInner(rect.Min.X, rect.Min.Y)
	b := r.toInner(rect.Max.X-1, rect.Max.Y-1)
	return r.pp.CommitRect(frame, image.Rect(min(a.X, b.X), min(a.Y, b.Y), max(a.X, b.X)+1, max(a.Y, b.Y)+1))
}

// Capability returns the first panel in the chain p, p.Unwrap(), ... that
// implements T. Wrappers such as Rotate hide the driver's own methods.
func Capability[T any](p Panel) (T, bool) {
	for p != nil {
		if c, ok := p.(T); ok {
			return c, true
		}
		u, ok := p.(interface{ Unwrap() Panel })
		if !ok {
			break
		}
		p = u.Unwrap()
	}
	var zero T
	return zero, false
}
