package syntax

// printer.go is the reader-facing printer: it restores quote abbreviations ('x, `x, ,x, ,@x)
// that internal/runtime's WriteString prints as plain (quote x) forms, and guards against
// printing circular structure forever. It is the printer a REPL or `write` at the top level
// should use; internal/runtime's WriteString remains the leaf-level primitive every native
// procedure calls directly, per that file's own doc comment.

import (
	"strconv"
	"strings"

	"github.com/lamblisp/lamb/internal/runtime"
)

var abbrevFor = map[string]string{
	"quote":            "'",
	"quasiquote":       "`",
	"unquote":          ",",
	"unquote-splicing": ",@",
}

// Options control Write's rendering: Display selects raw string/character content over the
// quoted/escaped literal forms, and MaxDepth overrides the default bound on traversal (zero
// keeps the default). Environments always print opaquely, so there is no separate depth knob
// for them.
type Options struct {
	Display  bool
	MaxDepth int
}

// Write renders c as a reader-roundtrippable string: display selects raw string/character
// content, write selects the quoted/escaped literal forms, matching runtime.WriteString's
// display flag, plus the abbreviation and cycle-guard handling this package adds.
func Write(vm *runtime.VM, c *runtime.Cell, display bool) string {
	return WriteOpts(vm, c, Options{Display: display})
}

// WriteOpts is Write with explicit Options.
func WriteOpts(vm *runtime.VM, c *runtime.Cell, o Options) string {
	var b strings.Builder

	max := o.MaxDepth
	if max <= 0 {
		max = maxPrintDepth
	}

	p := &printer{vm: vm, b: &b, display: o.Display, max: max}
	p.write(c, 0)

	return b.String()
}

// maxPrintDepth bounds traversal of unexpectedly deep or cyclic structure. R5RS datum labels
// (#0=...#0#) are not implemented here (not named by the design and no example in the corpus builds
// one) — a cycle instead prints as `...` once the bound is hit, which is always safe, just
// not a faithful round-trip of shared structure.
const maxPrintDepth = 100000

type printer struct {
	vm      *runtime.VM
	b       *strings.Builder
	display bool
	max     int
}

func (p *printer) write(c *runtime.Cell, depth int) {
	if depth > p.max {
		p.b.WriteString("...")
		return
	}

	if c != nil && c.Tag == runtime.TagPair {
		if sym, datum, ok := quoteAbbrev(c); ok {
			if abbr, ok := abbrevFor[sym]; ok {
				p.b.WriteString(abbr)
				p.write(datum, depth+1)

				return
			}
		}

		p.writeList(c, depth)

		return
	}

	p.b.WriteString(p.vm.WriteString(c, p.display))
}

// quoteAbbrev reports whether c is a two-element list (symbol datum) naming one of the four
// abbreviable special forms, returning the symbol's name and the datum.
func quoteAbbrev(c *runtime.Cell) (name string, datum *runtime.Cell, ok bool) {
	if c.Car == nil || !c.Car.Tag.IsSymbol() {
		return "", nil, false
	}

	rest := c.Cdr
	if rest == nil || rest.Tag != runtime.TagPair || rest.Cdr == nil || rest.Cdr.Tag != runtime.TagNil {
		return "", nil, false
	}

	return c.Car.Name(), rest.Car, true
}

func (p *printer) writeList(c *runtime.Cell, depth int) {
	p.b.WriteByte('(')
	p.write(c.Car, depth+1)

	// Each element counts against the bound, so a circular cdr chain terminates at the cap
	// instead of walking forever.
	n := 0
	cur := c.Cdr

	for cur != nil && cur.Tag == runtime.TagPair {
		if n++; depth+n > p.max {
			p.b.WriteString(" ...")
			cur = nil

			break
		}

		p.b.WriteByte(' ')
		p.write(cur.Car, depth+1)
		cur = cur.Cdr
	}

	if cur != nil && cur.Tag != runtime.TagNil {
		p.b.WriteString(" . ")
		p.write(cur, depth+1)
	}

	p.b.WriteByte(')')
}

// WriteQuoted renders s as a double-quoted Go-syntax string literal, for log messages and error
// text that embed source fragments.
func WriteQuoted(s string) string { return strconv.Quote(s) }
