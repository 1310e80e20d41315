package runtime

// strings.go constructs the string, bytevector and vector variants, choosing between the
// immediate and heap-owned tags at construction time per the design. Go gives every value its
// own heap-managed backing array regardless of tag (there is no way to embed a variable-length
// payload inside a fixed Cell struct without unsafe, fixed-size byte arrays we would then have to
// slice-bounds-check everywhere), so the immediate/heap split here is expressed purely at the
// tag level: IsString, IsBytevector and friends still answer uniformly for either — the split is
// transparent to every user-visible predicate — while storage is always the ext payload.

// immediateThreshold mirrors this design's "(3*word - 2) bytes"; three 8-byte words gives 22
// bytes. The exact cutover has no externally observable effect other than which Tag a small
// value gets, so any constant in the right ballpark is faithful.
const immediateThreshold = 22

// NewString allocates a string cell.
func (vm *VM) NewString(s string) *Cell {
	tag := TagStrHeap
	if len(s) <= immediateThreshold {
		tag = TagStrImm
	}

	c := vm.Heap.Allocate(tag)
	c.ext = &stringPayload{runes: []rune(s)}

	return c
}

// SetStringChar mutates the i'th character of a (mutable) string cell.
func (c *Cell) SetStringChar(i int, r rune) error {
	p, ok := c.ext.(*stringPayload)
	if !ok || i < 0 || i >= len(p.runes) {
		return ErrRange
	}

	p.runes[i] = r

	return nil
}

// StringLength returns the number of characters in a string cell.
func (c *Cell) StringLength() int {
	if p, ok := c.ext.(*stringPayload); ok {
		return len(p.runes)
	}

	return 0
}

// NewStringExternal wraps storage the caller owns as a string cell, without copying. The
// collector never releases external storage; the caller keeps it alive and valid for the cell's
// lifetime.
func (vm *VM) NewStringExternal(runes []rune) *Cell {
	c := vm.Heap.Allocate(TagStrExt)
	c.ext = &stringPayload{runes: runes}

	return c
}

// NewBytevectorExternal is NewStringExternal's bytevector counterpart.
func (vm *VM) NewBytevectorExternal(bs []byte) *Cell {
	c := vm.Heap.Allocate(TagBvecExt)
	c.ext = &bytevectorPayload{bytes: bs}

	return c
}

// NewBytevector allocates a bytevector cell.
func (vm *VM) NewBytevector(bs []byte) *Cell {
	tag := TagBvecHeap
	if len(bs) <= immediateThreshold {
		tag = TagBvecImm
	}

	c := vm.Heap.Allocate(tag)
	c.ext = &bytevectorPayload{bytes: append([]byte(nil), bs...)}

	return c
}

// NewVector allocates a vector cell. Vectors of length 0, 1 or 2 use the immediate tag. Larger
// vectors use one of two heap tags, both sharing the same vectorPayload representation: plain
// TagHeapSVec when the element count is already a power of two (no slack), TagHeapSVecPow2 when
// the backing array was rounded up to the next power of two, leaving room for make-vector callers
// that grow a vector in place without reallocating.
func (vm *VM) NewVector(elems ...*Cell) *Cell {
	if len(elems) <= 2 {
		c := vm.Heap.Allocate(TagSVecImm, elems...)
		c.ext = &vectorPayload{elems: append([]*Cell(nil), elems...)}

		return c
	}

	cap := nextPow2(len(elems))
	tag := TagHeapSVec

	if cap != len(elems) {
		tag = TagHeapSVecPow2
	}

	backing := make([]*Cell, len(elems), cap)
	copy(backing, elems)

	c := vm.Heap.Allocate(tag, elems...)
	c.ext = &vectorPayload{elems: backing}

	return c
}

// NewChar allocates a character cell.
func (vm *VM) NewChar(r rune) *Cell {
	c := vm.Heap.Allocate(TagChar)
	c.CarWord = Word(r)

	return c
}

// Bool returns the canonical #t or #f singleton for v.
func (vm *VM) Bool(v bool) *Cell {
	if v {
		return vm.Singletons.True
	}

	return vm.Singletons.False
}
