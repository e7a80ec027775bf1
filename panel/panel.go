// Package panel defines the capability contract every display panel driver
// implements, and the geometry a driver reports about itself.
//
// A driver exposes its physical size, native pixel format and addressing
// order through Geometry, and accepts whole frames through Commit. Drivers
// that can transfer a sub-rectangle of the frame additionally implement
// PartialPanel; callers detect it with a type assertion.
package panel

import (
	"errors"
	"fmt"
	"image"
)

// Panel is a physical display with a fixed pixel grid.
type Panel interface {
	// Geometry describes the panel. It is pure and stable for the lifetime of
	// the driver.
	Geometry() Geometry

	// Commit pushes a full frame to the panel. frame holds
	// Geometry().FrameSize() bytes in the panel's native format, pixels in
	// the panel's addressing order.
	//
	// On failure the returned error wraps ErrDriverIO and the previously
	// committed frame is presumed to still be displayed.
	Commit(frame []byte) error
}

// PartialPanel is a Panel that can update a dirty rectangle only.
type PartialPanel interface {
	Panel

	// CommitRect pushes the pixels of frame that lie inside r, in physical
	// coordinates. frame is the complete new frame, as for Commit. Drivers
	// may enlarge r to their own transfer alignment.
	CommitRect(frame []byte, r image.Rectangle) error
}

var (
	// ErrDriverIO reports a failure to communicate with the panel.
	ErrDriverIO = errors.New("driver I/O error")
	// ErrConfiguration reports invalid panel or canvas configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrHalted is returned by drivers used after Halt.
	ErrHalted = errors.New("panel halted")
)

// IOError wraps a transport error returned while talking to a panel.
type IOError struct {
	Op  string
	Err error
}

// WrapIO returns err wrapped in an IOError, or nil when err is nil. Errors
// that already report ErrDriverIO are returned unchanged.
func WrapIO(op string, err error) error {
	if err == nil || errors.Is(err, ErrDriverIO) {
		return err
	}
	return &IOError{Op: op, Err: err}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrDriverIO, e.Err)
}

// Unwrap exposes both ErrDriverIO and the transport error.
func (e *IOError) Unwrap() []error {
	return []error{ErrDriverIO, e.Err}
}

// Configf returns an error wrapping ErrConfiguration.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
