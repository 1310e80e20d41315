package runtime

import "fmt"

// cell.go defines the uniform record that represents every runtime value.
//
// Every value is a fixed 3-machine-word record: a tag+flags word, a car word and a cdr word,
// with immediate payloads for small strings/bytevectors/vectors packed into the spare bytes of
// the tag word. Go gives us no portable way to control a struct's bit layout the way a C
// compiler targeting a microcontroller would, so this is a deliberate translation rather than a
// byte-for-byte port: Cell keeps exactly the fields this design's invariants are stated in terms of
// (a tag, a GC state, car, cdr) and adds one field, ext, that stands in for "cdr points to
// heap-owned memory" — a single place for the various concrete payloads (symbol text, string
// runes, vector elements, closures, frames, ...) that would otherwise need their own pointer
// types. The allocator and collector still treat every Cell as the same fixed-size record; ext
// is nil for plain pairs and for atoms whose payload fits CarWord/CdrWord (reals keep their
// float64 in ext).
type Cell struct {
	Tag       Tag
	state     gcState
	tail      bool // marks this cell as standing in a tail position; see thunk.go
	singleton bool // true only for the six statically-allocated cells and the system-error cell

	// Car and Cdr are used when the tag's slot holds a Cell reference (pairs, closures,
	// dictionaries, thunks, errors, ...).
	Car *Cell
	Cdr *Cell

	// CarWord and CdrWord are used when the tag's slot holds a raw, non-pointer payload
	// (booleans, characters, integers, rational numerator/denominator).
	CarWord Word
	CdrWord Word

	// ext holds the heap-owned payload for variants that need more than two words: symbol
	// and string text, bytevector and vector backing storage, closures, dictionary frames,
	// ports, foreign objects.
	ext any

	next *Cell // free-list link; valid only when state == gcFree
}

// Word is the generic machine-word payload carried directly in a Cell, used for integers,
// characters, booleans and rational numerator/denominator pairs.
type Word int64

// gcState is the five-value enumeration from the design.
type gcState uint8

const (
	gcIdle gcState = iota
	gcIssued
	gcStacked
	gcMarked
	gcFree
)

func (s gcState) String() string {
	switch s {
	case gcIdle:
		return "idle"
	case gcIssued:
		return "issued"
	case gcStacked:
		return "stacked"
	case gcMarked:
		return "marked"
	case gcFree:
		return "free"
	default:
		return "gcState(?)"
	}
}

// Pairp reports whether c is a genuine Scheme pair (user-level pair?). Every other pair-shaped
// type (closures, dictionaries, thunks, errors) answers false here, even though they share the
// car/cdr representation.
func (c *Cell) Pairp() bool { return c.Tag == TagPair }

// Atomp reports whether c is treated as an atom by the user-level atom? predicate: everything
// except a genuine pair.
func (c *Cell) Atomp() bool { return c.Tag != TagPair }

// Listp reports whether c is list-shaped: the empty list, or a value built on pairs.
func (c *Cell) Listp() bool { return c.Tag.IsList() }

// TypeName returns the printable name for c's type, from the static features table.
func (c *Cell) TypeName() string { return features[c.Tag].name }

// Truthy reports whether c counts as true in a boolean context. Only the distinguished false
// cell is false; every other value, including 0, "", and the empty list, is true, per R5RS.
func (c *Cell) Truthy() bool {
	return !(c.Tag == TagBool && c.CarWord == 0)
}

// setTail marks c as occupying a tail position, per the design. It is set by the special-form
// evaluators and consumed by the trampoline in eval.go.
func (c *Cell) setTail(v bool) { c.tail = v }

// IsTail reports whether c was produced in a tail position.
func (c *Cell) IsTail() bool { return c.tail }

// --- Symbols --------------------------------------------------------------

type symbolPayload struct {
	name string
	hash uint64
}

// Name returns the symbol's printable text. For a cell without symbol text (a gensym, or any
// non-symbol) it returns "g" followed by CarWord; callers should check c.Tag.IsSymbol() first
// when the value comes from user code.
func (c *Cell) Name() string {
	switch p := c.ext.(type) {
	case *symbolPayload:
		return p.name
	default:
		return fmt.Sprintf("g%d", int64(c.CarWord))
	}
}

// Hash returns the symbol's stored hash (interned symbols) or a stable hash of its identity
// (gensyms), per the design.
func (c *Cell) Hash() uint64 {
	if p, ok := c.ext.(*symbolPayload); ok {
		return p.hash
	}

	return identityHash(c)
}

// --- Strings ----------------------------------------------------------------

type stringPayload struct {
	runes []rune
}

// Text returns a string cell's text.
func (c *Cell) Text() string {
	switch p := c.ext.(type) {
	case *stringPayload:
		return string(p.runes)
	default:
		return ""
	}
}

// --- Bytevectors --------------------------------------------------------------

type bytevectorPayload struct {
	bytes []byte
}

// Bytes returns a bytevector cell's contents.
func (c *Cell) Bytes() []byte {
	if p, ok := c.ext.(*bytevectorPayload); ok {
		return p.bytes
	}

	return nil
}

// --- Vectors --------------------------------------------------------------

type vectorPayload struct {
	elems []*Cell
}

// Elements returns a vector cell's contents. The returned slice aliases the cell's storage;
// callers must not retain it across an allocation unless the cell itself is rooted.
func (c *Cell) Elements() []*Cell {
	if p, ok := c.ext.(*vectorPayload); ok {
		return p.elems
	}

	return nil
}

// --- Foreign objects --------------------------------------------------------

// ForeignObject wraps an opaque host value (cpp-obj) in a Cell, with an optional deleter invoked
// exactly once, at sweep.
type ForeignObject struct {
	Value   any
	Deleter func()
}

func (c *Cell) Foreign() *ForeignObject {
	if p, ok := c.ext.(*ForeignObject); ok {
		return p
	}

	return nil
}

// NewForeign allocates a foreign-object cell wrapping value, so a host embedder can hand
// arbitrary Go values (an open file, a driver handle) to Lisp code without extending the tag
// lattice. deleter, if non-nil, runs exactly once, when the cell is swept.
func (vm *VM) NewForeign(value any, deleter func()) *Cell {
	c := vm.Heap.Allocate(TagCppObj)
	c.ext = &ForeignObject{Value: value, Deleter: deleter}

	return c
}

// --- Numbers ----------------------------------------------------------------

// Int returns the integer value of an int cell.
func (c *Cell) Int() int64 { return int64(c.CarWord) }

// Real returns the float64 value of a real cell.
func (c *Cell) Real() float64 {
	if f, ok := c.ext.(float64); ok {
		return f
	}

	return 0
}

// Rational returns the numerator and denominator of a rational cell, already reduced to lowest
// terms by the constructor in numeric.go.
func (c *Cell) Rational() (num, den int64) {
	return int64(c.CarWord), int64(c.CdrWord)
}

// Char returns the rune value of a char cell.
func (c *Cell) Char() rune { return rune(c.CarWord) }
