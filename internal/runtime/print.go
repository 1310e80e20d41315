package runtime

// print.go is the minimal printer the display/write natives in native.go need directly. It lives
// in this package (rather than internal/syntax, which depends on runtime and so cannot be
// depended on in turn) because every native procedure that prints or builds an error message
// needs it. internal/syntax's printer handles the fuller, reader-facing surface syntax (quote
// abbreviations, a depth bound) and calls through to WriteString for the leaves.

import (
	"strconv"
	"strings"
)

// WriteString renders c as text. display selects `display` semantics (strings and characters
// print their raw content); otherwise `write` semantics are used (strings are quoted, characters
// use the #\ syntax), per R5RS.
func (vm *VM) WriteString(c *Cell, display bool) string {
	var b strings.Builder

	vm.writeTo(&b, c, display)

	return b.String()
}

func (vm *VM) writeTo(b *strings.Builder, c *Cell, display bool) {
	switch {
	case c == nil || c == vm.Singletons.Nil:
		b.WriteString("()")
	case c == vm.Singletons.True:
		b.WriteString("#t")
	case c == vm.Singletons.False:
		b.WriteString("#f")
	case c == vm.Singletons.Void:
		b.WriteString("#<void>")
	case vm.Singletons.IsEOF(c):
		b.WriteString("#<eof>")
	case c == vm.Singletons.Undef:
		b.WriteString("#<undefined>")
	case c.Tag.IsSymbol():
		b.WriteString(c.Name())
	case c.Tag.IsNumber():
		b.WriteString(vm.writeNumber(c))
	case c.Tag.IsString():
		if display {
			b.WriteString(c.Text())
		} else {
			b.WriteString(strconv.Quote(c.Text()))
		}
	case c.Tag == TagChar:
		if display {
			b.WriteRune(c.Char())
		} else {
			b.WriteString("#\\")
			b.WriteRune(c.Char())
		}
	case c.Tag.IsBytevector():
		b.WriteString("#u8(")

		for i, by := range c.Bytes() {
			if i > 0 {
				b.WriteByte(' ')
			}

			b.WriteString(strconv.Itoa(int(by)))
		}

		b.WriteByte(')')
	case c.Tag.NeedsVectorMarking():
		b.WriteString("#(")

		for i, e := range c.Elements() {
			if i > 0 {
				b.WriteByte(' ')
			}

			vm.writeTo(b, e, display)
		}

		b.WriteByte(')')
	case c.Tag == TagPair:
		b.WriteByte('(')
		vm.writeTo(b, c.Car, display)

		cur := c.Cdr
		for cur != nil && cur.Tag == TagPair {
			b.WriteByte(' ')
			vm.writeTo(b, cur.Car, display)
			cur = cur.Cdr
		}

		if cur != nil && cur != vm.Singletons.Nil {
			b.WriteString(" . ")
			vm.writeTo(b, cur, display)
		}

		b.WriteByte(')')
	case c.Tag == TagProc || c.Tag == TagNProc:
		b.WriteString("#<procedure " + c.ProcName() + ">")
	case c.Tag == TagNativeProc || c.Tag == TagNativeNProc:
		b.WriteString("#<procedure>")
	case c.Tag == TagMacro:
		b.WriteString("#<macro " + c.ProcName() + ">")
	case c.Tag == TagError:
		b.WriteString("#<" + c.Kind().String() + ": " + c.Message() + ">")
	case c.Tag == TagPort:
		b.WriteString("#<port>")
	case c.Tag == TagDict:
		b.WriteString("#<environment>")
	default:
		b.WriteString("#<" + c.TypeName() + ">")
	}
}

func (vm *VM) writeNumber(c *Cell) string {
	switch c.Tag {
	case TagInt:
		return strconv.FormatInt(c.Int(), 10)
	case TagReal:
		return strconv.FormatFloat(c.Real(), 'g', -1, 64)
	case TagRational:
		n, d := c.Rational()
		return strconv.FormatInt(n, 10) + "/" + strconv.FormatInt(d, 10)
	default:
		return "?"
	}
}
