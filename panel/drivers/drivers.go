// Package drivers registers the built-in panel drivers.
//
// SPI drivers resolve their bus through spireg and their pins through
// gpioreg, so periph.io's host drivers must be loaded with host.Init before
// a panel is opened.
package drivers

import (
	"errors"
	"fmt"
	"io"
	"math"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"

	"github.com/flavioheleno/anydisplay/panel"
	"github.com/flavioheleno/anydisplay/panel/max7219"
	"github.com/flavioheleno/anydisplay/panel/null"
	"github.com/flavioheleno/anydisplay/panel/panelreg"
	"github.com/flavioheleno/anydisplay/panel/ssd1322"
	"github.com/flavioheleno/anydisplay/panel/term"
	"github.com/flavioheleno/anydisplay/panel/unicornhd"
)

// Register adds null, ssd1322, max7219, unicornhd and term to r.
func Register(r *panelreg.Registry) error {
	return errors.Join(
		r.Register("null", openNull),
		r.Register("ssd1322", openSSD1322),
		r.Register("max7219", openMAX7219),
		r.Register("unicornhd", openUnicornHD),
		r.Register("term", openTerm),
	)
}

func openNull(opts *panelreg.Opts) (panel.Panel, io.Closer, error) {
	o := &null.Opts{W: opts.Width, H: opts.Height}
	if o.W == 0 && o.H == 0 {
		o.W, o.H = 64, 64
	}
	d, err := null.New(o)
	if err != nil {
		return nil, nil, err
	}
	p, err := panel.Rotate(d, opts.Rotation)
	if err != nil {
		return nil, nil, err
	}
	return p, nil, nil
}

func openSSD1322(opts *panelreg.Opts) (panel.Panel, io.Closer, error) {
	dc, err := pin("D/C", opts.DC, true)
	if err != nil {
		return nil, nil, err
	}
	rst, err := pin("RST", opts.RST, false)
	if err != nil {
		return nil, nil, err
	}
	// 180 degrees is done by the controller, quarter turns by the canvas
	o := &ssd1322.Opts{W: opts.Width, H: opts.Height, RST: rst}
	if o.W == 0 && o.H == 0 {
		o.W, o.H = 256, 64
	}
	rotation := opts.Rotation
	switch rotation {
	case 180:
		o.Rotated, rotation = true, 0
	case 270:
		o.Rotated, rotation = true, 90
	}
	if _, err := (panel.Geometry{}).Rotate(rotation); err != nil {
		return nil, nil, fmt.Errorf("ssd1322: %w", err)
	}
	port, err := openSPI(opts.SPI)
	if err != nil {
		return nil, nil, err
	}
	d, err := ssd1322.NewSPI(port, dc, o)
	if err != nil {
		return nil, port, err
	}
	p, err := panel.Rotate(d, rotation)
	if err != nil {
		return nil, port, err
	}
	return p, port, nil
}

func openMAX7219(opts *panelreg.Opts) (panel.Panel, io.Closer, error) {
	if opts.Brightness < 0 || opts.Brightness > 1 {
		return nil, nil, panel.Configf("max7219: brightness %v must be between 0 and 1", opts.Brightness)
	}
	o := &max7219.Opts{Modules: opts.Chain, Intensity: byte(math.Round(opts.Brightness * 15))}
	if o.Modules == 0 {
		o.Modules = 1
	}
	port, err := openSPI(opts.SPI)
	if err != nil {
		return nil, nil, err
	}
	d, err := max7219.NewSPI(port, o)
	if err != nil {
		return nil, port, err
	}
	p, err := panel.Rotate(d, opts.Rotation)
	if err != nil {
		return nil, port, err
	}
	return p, port, nil
}

func openUnicornHD(opts *panelreg.Opts) (panel.Panel, io.Closer, error) {
	port, err := openSPI(opts.SPI)
	if err != nil {
		return nil, nil, err
	}
	d, err := unicornhd.NewSPI(port, &unicornhd.Opts{Rotation: opts.Rotation, Brightness: opts.Brightness})
	if err != nil {
		return nil, port, err
	}
	return d, port, nil
}

func openTerm(opts *panelreg.Opts) (panel.Panel, io.Closer, error) {
	if _, err := (panel.Geometry{}).Rotate(opts.Rotation); err != nil {
		return nil, nil, fmt.Errorf("term: %w", err)
	}
	d, err := term.Open(&term.Opts{W: opts.Width, H: opts.Height})
	if err != nil {
		return nil, nil, err
	}
	p, err := panel.Rotate(d, opts.Rotation)
	if err != nil {
		return nil, d, err
	}
	return p, d, nil
}

func openSPI(name string) (spi.PortCloser, error) {
	p, err := spireg.Open(name)
	if err != nil {
		return nil, panel.Configf("SPI port %q: %v", name, err)
	}
	return p, nil
}

// pin resolves a GPIO pin by name. An empty name is only valid for
// optional pins.
func pin(role, name string, required bool) (gpio.PinIO, error) {
	if name == "" {
		if required {
			return nil, panel.Configf("%s pin is required", role)
		}
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, panel.Configf("%s pin %q not found", role, name)
	}
	return p, nil
}
