package runtime

// oblist_test.go checks the design invariant 4: intern(s) == intern(s) by pointer identity.

import "testing"

func TestOblist_InternIsIdempotentByIdentity(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	a := vm.Oblist.Intern("frobnicate")
	b := vm.Oblist.Intern("frobnicate")

	if a != b {
		tt.Errorf("Intern(%q) returned distinct cells: %p != %p", "frobnicate", a, b)
	}
}

func TestOblist_InternDistinguishesNames(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	a := vm.Oblist.Intern("foo")
	b := vm.Oblist.Intern("bar")

	if a == b {
		tt.Error("distinct names interned to the same cell")
	}
}

func TestOblist_LookupMissReturnsFalse(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	_, ok := vm.Oblist.Lookup("never-interned")
	if ok {
		tt.Error("Lookup of an uninterned name reported ok=true")
	}
}

func TestOblist_LookupHitAfterIntern(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	interned := vm.Oblist.Intern("quux")

	got, ok := vm.Oblist.Lookup("quux")
	if !ok {
		tt.Fatal("Lookup reported ok=false for an interned name")
	}

	if got != interned {
		tt.Errorf("Lookup returned %p, want %p", got, interned)
	}
}

func TestOblist_GrowsAcrossManyInterns(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	names := make([]*Cell, 0, 1000)
	for i := 0; i < 1000; i++ {
		names = append(names, vm.Oblist.Intern(symbolName(i)))
	}

	for i, c := range names {
		if got := vm.Oblist.Intern(symbolName(i)); got != c {
			tt.Errorf("symbol %d: re-intern returned a different cell after growth", i)
		}
	}
}

func symbolName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return string(letters[i%26]) + string(rune('0'+(i/26)%10)) + string(rune('0'+(i/260)%10))
}
