package runtime

// numeric.go implements the numeric tower subset named in the design: integer, rational, real. No
// bignum, no complex, no exact/inexact beyond what float64 already gives us (explicit
// Non-goals). Rationals are always kept reduced to lowest terms: a pair of int64, reduced by gcd
// at construction.

import (
	"math"
	"strconv"
	"strings"
)

// NewInt allocates an integer cell.
func (vm *VM) NewInt(n int64) *Cell {
	c := vm.Heap.Allocate(TagInt)
	c.CarWord = Word(n)

	return c
}

// NewReal allocates a real (float64) cell.
func (vm *VM) NewReal(f float64) *Cell {
	c := vm.Heap.Allocate(TagReal)
	c.ext = f

	return c
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}

	if b < 0 {
		b = -b
	}

	for b != 0 {
		a, b = b, a%b
	}

	if a == 0 {
		return 1
	}

	return a
}

// NewRational allocates a rational cell, reduced to lowest terms with a positive denominator. If
// the denominator reduces to 1, an integer cell is returned instead, matching the type lattice's
// treatment of rational as a distinct tower level only when it is not itself an integer.
func (vm *VM) NewRational(num, den int64) (*Cell, error) {
	if den == 0 {
		return nil, vm.RaiseError(RangeError, "zero denominator")
	}

	if den < 0 {
		num, den = -num, -den
	}

	g := gcd(num, den)
	num, den = num/g, den/g

	if den == 1 {
		return vm.NewInt(num), nil
	}

	c := vm.Heap.Allocate(TagRational)
	c.CarWord = Word(num)
	c.CdrWord = Word(den)

	return c, nil
}

// asFloat converts any numeric cell to float64.
func asFloat(c *Cell) float64 {
	switch c.Tag {
	case TagInt:
		return float64(c.Int())
	case TagReal:
		return c.Real()
	case TagRational:
		n, d := c.Rational()
		return float64(n) / float64(d)
	default:
		return math.NaN()
	}
}

func numericEqual(a, b *Cell) bool {
	if a.Tag == TagInt && b.Tag == TagInt {
		return a.Int() == b.Int()
	}

	if a.Tag == TagRational && b.Tag == TagRational {
		an, ad := a.Rational()
		bn, bd := b.Rational()
		return an == bn && ad == bd
	}

	return asFloat(a) == asFloat(b)
}

// numericCompare returns -1, 0, or 1 comparing a and b numerically.
func numericCompare(a, b *Cell) int {
	if a.Tag == TagInt && b.Tag == TagInt {
		switch {
		case a.Int() < b.Int():
			return -1
		case a.Int() > b.Int():
			return 1
		default:
			return 0
		}
	}

	fa, fb := asFloat(a), asFloat(b)

	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}

// Add, Sub, Mul and Div implement the contagion rule: int+int stays int; anything touching a
// rational stays rational (reduced) unless the other operand is real, in which case the result
// contagions up to real; anything touching a real stays real.
func (vm *VM) NumAdd(a, b *Cell) (*Cell, error) {
	return vm.numOp(a, b,
		func(x, y int64) (int64, bool) { return x + y, true },
		func(xn, xd, yn, yd int64) (int64, int64) { return xn*yd + yn*xd, xd * yd },
		func(x, y float64) float64 { return x + y },
	)
}

func (vm *VM) NumSub(a, b *Cell) (*Cell, error) {
	return vm.numOp(a, b,
		func(x, y int64) (int64, bool) { return x - y, true },
		func(xn, xd, yn, yd int64) (int64, int64) { return xn*yd - yn*xd, xd * yd },
		func(x, y float64) float64 { return x - y },
	)
}

func (vm *VM) NumMul(a, b *Cell) (*Cell, error) {
	return vm.numOp(a, b,
		func(x, y int64) (int64, bool) { return x * y, true },
		func(xn, xd, yn, yd int64) (int64, int64) { return xn * yn, xd * yd },
		func(x, y float64) float64 { return x * y },
	)
}

func (vm *VM) NumDiv(a, b *Cell) (*Cell, error) {
	if (b.Tag == TagInt && b.Int() == 0) || (b.Tag == TagReal && b.Real() == 0) {
		return nil, vm.RaiseError(RangeError, "division by zero")
	}

	return vm.numOp(a, b,
		func(x, y int64) (int64, bool) {
			if y != 0 && x%y == 0 {
				return x / y, true
			}

			return 0, false
		},
		func(xn, xd, yn, yd int64) (int64, int64) { return xn * yd, xd * yn },
		func(x, y float64) float64 { return x / y },
	)
}

func (vm *VM) numOp(
	a, b *Cell,
	intOp func(x, y int64) (int64, bool),
	ratOp func(xn, xd, yn, yd int64) (int64, int64),
	realOp func(x, y float64) float64,
) (*Cell, error) {
	if a.Tag == TagInt && b.Tag == TagInt {
		if v, ok := intOp(a.Int(), b.Int()); ok {
			return vm.NewInt(v), nil
		}
	}

	if (a.Tag == TagInt || a.Tag == TagRational) && (b.Tag == TagInt || b.Tag == TagRational) {
		an, ad := ratParts(a)
		bn, bd := ratParts(b)
		num, den := ratOp(an, ad, bn, bd)

		return vm.NewRational(num, den)
	}

	return vm.NewReal(realOp(asFloat(a), asFloat(b))), nil
}

// parseNumber parses the reader/string->number surface syntax for the numeric tower subset this
// core supports: integers, a/b rationals, and float64 reals. Returns ok=false for anything else,
// matching string->number's "#f if not parseable" contract rather than raising read-error.
func (vm *VM) parseNumber(s string) (*Cell, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return vm.NewInt(n), true
	}

	if i := strings.IndexByte(s, '/'); i > 0 {
		num, errN := strconv.ParseInt(s[:i], 10, 64)
		den, errD := strconv.ParseInt(s[i+1:], 10, 64)

		if errN == nil && errD == nil {
			c, err := vm.NewRational(num, den)
			return c, err == nil
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return vm.NewReal(f), true
	}

	return nil, false
}

// ParseNumber is the exported form of parseNumber, for internal/syntax's reader.
func (vm *VM) ParseNumber(s string) (*Cell, bool) { return vm.parseNumber(s) }

// Inexact converts any numeric cell to a real, per exact->inexact and the reader's #i prefix.
func (vm *VM) Inexact(c *Cell) *Cell {
	if c.Tag == TagReal {
		return c
	}

	return vm.NewReal(asFloat(c))
}

// Exact converts a numeric cell to an exact (integer or rational) one, per inexact->exact and
// the reader's #e prefix. Reals with no integral representation raise range-error: this tower
// has no exact non-integer reals beyond rationals, and deriving a rational from an arbitrary
// float is out of scope.
func (vm *VM) Exact(c *Cell) (*Cell, error) {
	switch c.Tag {
	case TagInt, TagRational:
		return c, nil
	case TagReal:
		f := c.Real()
		if f != math.Trunc(f) {
			return nil, vm.RaiseError(RangeError, "no exact representation: %v", f)
		}

		return vm.NewInt(int64(f)), nil
	default:
		return nil, vm.RaiseError(TypeError, "not a number: %s", c.TypeName())
	}
}

func ratParts(c *Cell) (num, den int64) {
	if c.Tag == TagRational {
		return c.Rational()
	}

	return c.Int(), 1
}
