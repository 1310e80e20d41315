// Package console_test exercises Console against a real terminal.
//
// The test is skipped when stdin is not a terminal (ErrNoTTY), which is always the case under
// `go test` (it redirects the test binary's standard streams). Run it directly against a TTY
// with `go test -c && ./console.test` to exercise it for real.
package console_test

import (
	"errors"
	"os"
	"testing"

	"github.com/lamblisp/lamb/internal/console"
)

func TestNew(t *testing.T) {
	c, err := console.New(os.Stdin, os.Stdout)
	if errors.Is(err, console.ErrNoTTY) {
		t.Skipf("error: %s", err)
	}

	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	defer c.Restore()

	if c.Reader() == nil {
		t.Error("Reader() is nil")
	}

	if c.Writer() == nil {
		t.Error("Writer() is nil")
	}
}
