// Package panelreg resolves panel drivers by name.
//
// Drivers are registered explicitly with Register, usually through
// drivers.Register, and opened with a typed Opts. Unknown names, invalid
// options and missing hardware are reported as panel.ErrConfiguration when
// the panel is opened.
package panelreg

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/flavioheleno/anydisplay/panel"
)

// Opts is the configuration of the panel to open. Each driver documents the
// fields it reads and ignores the others.
type Opts struct {
	// Physical size in pixels (default: driver specific)
	Width  int
	Height int

	// Bus and pins, as known to periph.io's spireg and gpioreg
	SPI string // SPI port (default: the first registered port)
	DC  string // Data/Command pin
	RST string // Reset pin (optional)

	Chain      int     // Number of cascaded modules
	Rotation   int     // Clockwise mounting rotation in degrees
	Brightness float64 // 0 to 1 (default: driver specific when zero)
}

// Opener builds a panel. The returned closer, which can be nil, releases
// the bus the panel was opened on.
type Opener func(opts *Opts) (panel.Panel, io.Closer, error)

// Device is an opened panel.
type Device struct {
	panel.Panel
	name   string
	closer io.Closer
}

// Name returns the driver name the device was opened with.
func (d *Device) Name() string {
	return d.name
}

// Close halts the panel, when it supports halting, and releases its bus.
func (d *Device) Close() error {
	var errs []error
	if h, ok := panel.Capability[interface{ Halt() error }](d.Panel); ok {
		errs = append(errs, h.Halt())
	}
	if d.closer != nil {
		errs = append(errs, d.closer.Close())
	}
	return errors.Join(errs...)
}

func (d *Device) String() string {
	return fmt.Sprintf("%s: %v", d.name, d.Panel.Geometry())
}

// Registry maps driver names to openers. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	openers map[string]Opener
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{openers: make(map[string]Opener)}
}

// Register adds a driver. Registering a name twice is an error.
func (r *Registry) Register(name string, o Opener) error {
	if name == "" || o == nil {
		return panel.Configf("panelreg: driver needs a name and an opener")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.openers[name]; ok {
		return panel.Configf("panelreg: driver %q registered twice", name)
	}
	r.openers[name] = o
	return nil
}

// Open builds the panel registered as name. opts can be nil.
func (r *Registry) Open(name string, opts *Opts) (*Device, error) {
	r.mu.RLock()
	o, ok := r.openers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, panel.Configf("panelreg: unknown driver %q (known: %v)", name, r.Names())
	}
	if opts == nil {
		opts = &Opts{}
	}
	p, c, err := o(opts)
	if err != nil {
		if c != nil {
			c.Close()
		}
		return nil, fmt.Errorf("panelreg: %s: %w", name, err)
	}
	if err := p.Geometry().Validate(); err != nil {
		if c != nil {
			c.Close()
		}
		return nil, fmt.Errorf("panelreg: %s: %w", name, err)
	}
	return &Device{Panel: p, name: name, closer: c}, nil
}

// Names returns the registered driver names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.openers))
}
