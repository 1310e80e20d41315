// Package console adapts a Unix terminal as the current-input and current-output ports, for a
// REPL harness run interactively rather than
// piped: put the terminal in raw mode so the reader sees every keystroke (no host-level line
// editing fighting the Lisp reader's own atom/delimiter scanning), and restore it unconditionally
// on exit.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNoTTY is returned by New when stdin is not a terminal. A host harness should fall back to
// plain stdin/stdout (line-buffered, no raw mode) in that case -- piped input/output, redirected
// files, and CI runs are all not TTYs.
var ErrNoTTY = errors.New("console: not a TTY")

// Console is a raw-mode terminal console, wired in as the REPL's current-input/current-output
// port pair. The evaluator here is synchronous, so Console just exposes plain io.Reader/io.Writer
// and leaves read scheduling to the caller -- there is no separate mutator/device boundary to
// bridge, unlike an emulated keyboard/display device driven asynchronously over channels.
type Console struct {
	in    *os.File
	out   *os.File
	fd    int
	state *term.State
}

// New puts stdin into raw mode and returns a Console wrapping it. If stdin is not a terminal,
// ErrNoTTY is returned and the caller should fall back to unadorned stdin/stdout. Callers must
// call Restore to return the terminal to its original state.
func New(in, out *os.File) (*Console, error) {
	fd := int(in.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	c := &Console{in: in, out: out, fd: fd, state: saved}

	if err := c.setTerminalParams(1, 0); err != nil {
		_ = term.Restore(fd, saved)
		return nil, err
	}

	return c, nil
}

// Reader returns the raw-mode input stream.
func (c *Console) Reader() io.Reader { return c.in }

// Writer returns the terminal's output stream.
func (c *Console) Writer() io.Writer { return c.out }

// Restore returns the terminal to the state it was in before New, and is idempotent.
func (c *Console) Restore() {
	if c.state == nil {
		return
	}

	_ = term.Restore(c.fd, c.state)
	c.state = nil
}

// setTerminalParams configures VMIN/VTIME on the underlying termios struct via ioctl: vmin=1
// blocks a read until at least one byte is available, vtime=0 disables the inter-byte timeout,
// so Read behaves like an ordinary blocking read of raw keystrokes rather than canonical
// line-buffered input.
func (c *Console) setTerminalParams(vmin, vtime byte) error {
	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	if err := unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO); err != nil {
		return err
	}

	_ = syscall.SetNonblock(c.fd, false)

	return nil
}
