// Package paneltest implements a fake SPI port that records the traffic of
// panel drivers.
package paneltest

import (
	"errors"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// ErrInjected is the error returned by a Conn once its failure budget is
// exhausted.
var ErrInjected = errors.New("paneltest: injected failure")

// Op is one recorded write.
type Op struct {
	DC gpio.Level // level of the D/C pin during the write, Low when unwired
	W  []byte
}

// Port is a spi.Port handing out a single Conn.
type Port struct {
	Conn *Conn

	// Set by Connect
	Freq physic.Frequency
	Mode spi.Mode
	Bits int

	Err error // returned by Connect when set

	Closed int // number of Close calls
}

// NewPort returns a port recording into a new Conn. dc can be nil.
func NewPort(dc *gpiotest.Pin) *Port {
	return &Port{Conn: &Conn{DC: dc, FailAfter: -1}}
}

func (p *Port) String() string { return "paneltest" }

// Connect implements spi.Port.
func (p *Port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	p.Freq, p.Mode, p.Bits = f, mode, bits
	return p.Conn, nil
}

// LimitSpeed implements spi.Port.
func (p *Port) LimitSpeed(f physic.Frequency) error {
	return nil
}

// Close implements spi.PortCloser.
func (p *Port) Close() error {
	p.Closed++
	return nil
}

// Conn is a spi.Conn recording every write.
type Conn struct {
	DC *gpiotest.Pin

	// FailAfter is the number of transactions that succeed before every
	// following one fails with ErrInjected. Negative never fails.
	FailAfter int

	mu  sync.Mutex
	ops []Op
	txs int
}

func (c *Conn) String() string { return "paneltest.Conn" }

// Duplex implements conn.Conn.
func (c *Conn) Duplex() conn.Duplex { return conn.Half }

// Tx implements conn.Conn. Reads are not supported.
func (c *Conn) Tx(w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(); err != nil {
		return err
	}
	c.record(w)
	return nil
}

// TxPackets implements spi.Conn. All packets belong to one transaction.
func (c *Conn) TxPackets(p []spi.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(); err != nil {
		return err
	}
	for i := range p {
		c.record(p[i].W)
	}
	return nil
}

func (c *Conn) fail() error {
	if c.FailAfter >= 0 && c.txs >= c.FailAfter {
		return ErrInjected
	}
	c.txs++
	return nil
}

func (c *Conn) record(w []byte) {
	op := Op{W: append([]byte(nil), w...)}
	if c.DC != nil {
		op.DC = c.DC.Read()
	}
	c.ops = append(c.ops, op)
}

// Ops returns the recorded writes.
func (c *Conn) Ops() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Op(nil), c.ops...)
}

// Transactions returns the number of successful Tx and TxPackets calls.
func (c *Conn) Transactions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txs
}

// Reset forgets the recorded writes.
func (c *Conn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = nil
	c.txs = 0
}

var _ spi.PortCloser = &Port{}
var _ spi.Conn = &Conn{}
