package runtime

// tags_test.go checks the type-lattice invariants the design derives from the tag ordering.

import "testing"

func TestTagLattice_ListAndPairInvariants(tt *testing.T) {
	tt.Parallel()

	tcs := []struct {
		tag      Tag
		wantList bool
		wantPair bool // type > nil
	}{
		{TagNil, true, false},
		{TagPair, true, true},
		{TagProc, true, true}, // extended pair-shaped type, still >= nil
		{TagInt, false, false},
		{TagBool, false, false},
		{TagSymHeap, false, false},
	}

	for _, tc := range tcs {
		if got := tc.tag.IsList(); got != tc.wantList {
			tt.Errorf("%s.IsList() = %v, want %v", tc.tag, got, tc.wantList)
		}

		if got := tc.tag.IsPairShaped(); got != tc.wantPair {
			tt.Errorf("%s.IsPairShaped() = %v, want %v", tc.tag, got, tc.wantPair)
		}
	}
}

func TestTagLattice_NeedsFinalizingBoundary(tt *testing.T) {
	tt.Parallel()

	// type <= needs-finalizing iff cdr points to heap memory owned by the cell.
	mustFinalize := []Tag{TagHeapSVec, TagHeapSVecPow2, TagSymHeap, TagBvecHeap, TagStrHeap, TagCppObj, TagPort}
	mustNot := []Tag{TagBvecExt, TagStrExt, TagBvecImm, TagStrImm, TagGensym, TagBool, TagInt, TagPair}

	for _, t := range mustFinalize {
		if !t.NeedsFinalizing() {
			tt.Errorf("%s: want NeedsFinalizing, got false", t)
		}
	}

	for _, t := range mustNot {
		if t.NeedsFinalizing() {
			tt.Errorf("%s: want !NeedsFinalizing, got true", t)
		}
	}
}

func TestTagLattice_VectorMarkingBoundary(tt *testing.T) {
	tt.Parallel()

	for _, t := range []Tag{TagHeapSVec, TagHeapSVecPow2, TagSVecImm} {
		if !t.NeedsVectorMarking() {
			tt.Errorf("%s: want NeedsVectorMarking, got false", t)
		}
	}

	for _, t := range []Tag{TagPair, TagInt, TagStrHeap} {
		if t.NeedsVectorMarking() {
			tt.Errorf("%s: want !NeedsVectorMarking, got true", t)
		}
	}
}

func TestTagLattice_PredicateProjections(tt *testing.T) {
	tt.Parallel()

	for _, t := range []Tag{TagStrHeap, TagStrExt, TagStrImm} {
		if !t.IsString() {
			tt.Errorf("%s: want IsString, got false", t)
		}
	}

	for _, t := range []Tag{TagBvecHeap, TagBvecExt, TagBvecImm} {
		if !t.IsBytevector() {
			tt.Errorf("%s: want IsBytevector, got false", t)
		}
	}

	for _, t := range []Tag{TagSymHeap, TagGensym} {
		if !t.IsSymbol() {
			tt.Errorf("%s: want IsSymbol, got false", t)
		}
	}

	for _, t := range []Tag{TagInt, TagReal, TagRational} {
		if !t.IsNumber() {
			tt.Errorf("%s: want IsNumber, got false", t)
		}
	}
}

func TestCell_PairpAtompListp(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	pair := vm.Cons(vm.NewInt(1), vm.Singletons.Nil)

	if !pair.Pairp() {
		tt.Error("cons cell: Pairp() = false, want true")
	}

	if pair.Atomp() {
		tt.Error("cons cell: Atomp() = true, want false")
	}

	n := vm.NewInt(42)
	if n.Pairp() {
		tt.Error("integer: Pairp() = true, want false")
	}

	if !n.Atomp() {
		tt.Error("integer: Atomp() = false, want true")
	}

	if !vm.Singletons.Nil.Listp() {
		tt.Error("nil: Listp() = false, want true")
	}
}
