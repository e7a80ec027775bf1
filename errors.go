package anydisplay

import (
	"errors"
	"fmt"
	"image"

	"github.com/flavioheleno/anydisplay/panel"
)

var (
	// ErrOutOfBounds is returned when drawing outside the logical buffer.
	ErrOutOfBounds = errors.New("anydisplay: out of bounds")
	// ErrClosed is returned by every Canvas operation after Close.
	ErrClosed = errors.New("anydisplay: canvas closed")

	// ErrConfiguration is returned for invalid dimensions or transforms.
	ErrConfiguration = panel.ErrConfiguration
	// ErrDriverIO is returned when the panel fails to accept a frame.
	ErrDriverIO = panel.ErrDriverIO
)

// BoundsError describes a draw operation whose footprint does not fit in
// the buffer. It matches ErrOutOfBounds with errors.Is.
type BoundsError struct {
	Rect   image.Rectangle // footprint of the rejected operation
	Bounds image.Rectangle // buffer bounds
}

func (e *BoundsError) Error() string {
	if e.Rect.Dx() == 1 && e.Rect.Dy() == 1 {
		return fmt.Sprintf("anydisplay: point %v outside %dx%d buffer", e.Rect.Min, e.Bounds.Dx(), e.Bounds.Dy())
	}
	return fmt.Sprintf("anydisplay: %v outside %dx%d buffer", e.Rect, e.Bounds.Dx(), e.Bounds.Dy())
}

// Is reports whether target is ErrOutOfBounds.
func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

func configf(format string, args ...any) error {
	return panel.Configf("anydisplay: "+format, args...)
}
