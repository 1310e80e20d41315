package runtime

// equal.go implements the three-tier equivalence predicates of the design.

// Eq is pointer identity, plus same-value equality for simple atoms (int, char, bool, symbol) —
// symbols compare equal here because they are always canonicalized by Intern, so pointer
// identity already covers them; the remaining simple atoms are compared by value because two
// Allocate calls for "the same" small integer need not return the same Cell.
func Eq(a, b *Cell) bool {
	if a == b {
		return true
	}

	if a == nil || b == nil || a.Tag != b.Tag {
		return false
	}

	switch a.Tag {
	case TagInt, TagChar, TagBool:
		return a.CarWord == b.CarWord
	default:
		return false
	}
}

// Eqv is Eq extended with numeric equality across int/real/rational coercion.
func Eqv(a, b *Cell) bool {
	if Eq(a, b) {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	if a.Tag.IsNumber() && b.Tag.IsNumber() {
		return numericEqual(a, b)
	}

	return false
}

// Equal is Eqv extended recursively to pairs, strings, vectors and bytevectors. Cycles are
// handled by a bounded depth, per the design, rather than full cycle detection: the core targets
// microcontrollers where an O(n) visited-set is not always affordable, and R5RS does not require
// equal? to terminate on circular data in the first place.
const equalMaxDepth = 10000

func Equal(a, b *Cell) bool {
	return equalDepth(a, b, equalMaxDepth)
}

func equalDepth(a, b *Cell, depth int) bool {
	if Eqv(a, b) {
		return true
	}

	if a == nil || b == nil || a.Tag != b.Tag || depth <= 0 {
		return false
	}

	switch {
	case a.Tag.IsString():
		return a.Text() == b.Text()
	case a.Tag.IsBytevector():
		return bytesEqual(a.Bytes(), b.Bytes())
	case a.Tag == TagPair:
		return equalDepth(a.Car, b.Car, depth-1) && equalDepth(a.Cdr, b.Cdr, depth-1)
	case a.Tag == TagSVecImm || a.Tag == TagHeapSVec || a.Tag == TagHeapSVecPow2:
		ea, eb := a.Elements(), b.Elements()
		if len(ea) != len(eb) {
			return false
		}

		for i := range ea {
			if !equalDepth(ea[i], eb[i], depth-1) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
