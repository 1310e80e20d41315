package runtime

// ports.go defines the I/O port abstraction. The three current ports
// (current-input/current-output/current-error) are process-wide roots alongside the oblist and
// base environment; platform adapters (serial, file, a raw terminal) plug concrete
// io.Reader/io.Writer implementations in underneath. This core only defines the generic port; it
// does not implement any platform adapter beyond stdio and the terminal console.

import (
	"bufio"
	"io"
)

// Port wraps a host io.Reader/io.Writer (or both) as a Lisp port value. File and socket ports
// are finalized at GC sweep ; Close is idempotent.
type Port struct {
	name     string
	reader   io.Reader
	buffered *bufio.Reader // created lazily by RuneReader; shared by every read on this port
	writer   io.Writer
	closer   io.Closer
	closed   bool
}

// NewInputPort wraps r as a read-only port.
func NewInputPort(name string, r io.Reader) *Port {
	p := &Port{name: name, reader: r}
	if c, ok := r.(io.Closer); ok {
		p.closer = c
	}

	return p
}

// NewOutputPort wraps w as a write-only port.
func NewOutputPort(name string, w io.Writer) *Port {
	p := &Port{name: name, writer: w}
	if c, ok := w.(io.Closer); ok {
		p.closer = c
	}

	return p
}

func (p *Port) Name() string { return p.name }

func (p *Port) Reader() io.Reader { return p.reader }

// RuneReader returns the port's buffered reader, creating it on first use. All rune-at-a-time
// reads on a port must go through the same buffer, or bytes read ahead by one call would be
// lost to the next.
func (p *Port) RuneReader() *bufio.Reader {
	if p.buffered == nil {
		p.buffered = bufio.NewReader(p.reader)
	}

	return p.buffered
}

func (p *Port) Writer() io.Writer { return p.writer }

func (p *Port) Readable() bool { return p.reader != nil }

func (p *Port) Writable() bool { return p.writer != nil }

// Close is idempotent, per the design "closing is idempotent".
func (p *Port) Close() error {
	if p.closed {
		return nil
	}

	p.closed = true

	if p.closer != nil {
		return p.closer.Close()
	}

	return nil
}

func (p *Port) Closed() bool { return p.closed }

// NewPortCell wraps a Port in a Cell of type port.
func (vm *VM) NewPortCell(p *Port) *Cell {
	c := vm.Heap.Allocate(TagPort)
	c.ext = p

	return c
}

// PortOf returns the Port a cell wraps, or nil.
func (c *Cell) PortOf() *Port {
	if p, ok := c.ext.(*Port); ok {
		return p
	}

	return nil
}

// CurrentPorts are the three process-wide ports named in the design and §4.2.
type CurrentPorts struct {
	Input  *Cell
	Output *Cell
	Error  *Cell
}
