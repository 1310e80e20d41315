package runtime

// dict_test.go checks the design invariant 6 and the §4.4 operation table: bind! creates or
// mutates in place; rebind! requires an existing binding; ref walks frames top-down.

import "testing"

func TestDict_BindThenRef(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	d := vm.NewDict(0)
	k := vm.Oblist.Intern("x")

	vm.Bind(d, k, vm.NewInt(1))

	got, err := vm.Ref(d, k)
	if err != nil {
		tt.Fatalf("Ref: unexpected error: %s", err)
	}

	if got.Int() != 1 {
		tt.Errorf("Ref returned %d, want 1", got.Int())
	}
}

func TestDict_SecondBindMutatesWithoutNewFrame(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	d := vm.NewDict(0)
	k := vm.Oblist.Intern("x")

	vm.Bind(d, k, vm.NewInt(1))
	vm.Bind(d, k, vm.NewInt(2))

	got, err := vm.Ref(d, k)
	if err != nil {
		tt.Fatalf("Ref: unexpected error: %s", err)
	}

	if got.Int() != 2 {
		tt.Errorf("Ref returned %d, want 2 (second Bind should mutate in place)", got.Int())
	}

	// d itself is unchanged (no new frame was pushed): its cdr (parent) is still nil.
	if d.Cdr != nil {
		tt.Error("Bind on an existing key pushed a new frame")
	}
}

func TestDict_RebindOfUnboundKeyErrors(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	d := vm.NewDict(0)
	k := vm.Oblist.Intern("never-bound")

	if err := vm.Rebind(d, k, vm.NewInt(1)); err == nil {
		tt.Error("Rebind of an unbound key returned nil error, want unbound")
	}
}

func TestDict_RefOfUnboundKeyErrors(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	d := vm.NewDict(0)
	k := vm.Oblist.Intern("never-bound")

	if _, err := vm.Ref(d, k); err == nil {
		tt.Error("Ref of an unbound key returned nil error, want unbound")
	}
}

func TestDict_PushFrameShadowsOuterBinding(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	outer := vm.NewDict(0)
	k := vm.Oblist.Intern("x")
	vm.Bind(outer, k, vm.NewInt(1))

	// bindInFrame (what internal define uses, per defineForm) always creates a binding in
	// the given frame, unlike Bind, which would find and mutate outer's existing binding.
	inner := vm.PushFrame(outer, 0)
	vm.bindInFrame(inner, k, vm.NewInt(2))

	innerVal, err := vm.Ref(inner, k)
	if err != nil {
		tt.Fatalf("Ref(inner): unexpected error: %s", err)
	}

	if innerVal.Int() != 2 {
		tt.Errorf("inner Ref = %d, want 2", innerVal.Int())
	}

	outerVal, err := vm.Ref(outer, k)
	if err != nil {
		tt.Fatalf("Ref(outer): unexpected error: %s", err)
	}

	if outerVal.Int() != 1 {
		tt.Errorf("outer Ref = %d, want 1 (shadowing must not mutate the outer frame)", outerVal.Int())
	}
}

func TestDict_SetInInnerFrameRebindsOuterBinding(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	outer := vm.NewDict(0)
	k := vm.Oblist.Intern("x")
	vm.Bind(outer, k, vm.NewInt(1))

	inner := vm.PushFrame(outer, 0)

	// Rebind (not Bind) from the inner frame must mutate the frame where the key actually
	// lives, per the design: "If key is found in any frame, mutate its binding".
	if err := vm.Rebind(inner, k, vm.NewInt(3)); err != nil {
		tt.Fatalf("Rebind: unexpected error: %s", err)
	}

	got, err := vm.Ref(outer, k)
	if err != nil {
		tt.Fatalf("Ref(outer): unexpected error: %s", err)
	}

	if got.Int() != 3 {
		tt.Errorf("outer Ref after inner Rebind = %d, want 3", got.Int())
	}
}

func TestDict_HashFrameBucketsBehaveLikeAlist(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	d := vm.NewDict(16)

	keys := []string{"a", "b", "c", "d", "e"}
	for i, name := range keys {
		vm.Bind(d, vm.Oblist.Intern(name), vm.NewInt(int64(i)))
	}

	for i, name := range keys {
		got, err := vm.Ref(d, vm.Oblist.Intern(name))
		if err != nil {
			tt.Fatalf("Ref(%q): unexpected error: %s", name, err)
		}

		if got.Int() != int64(i) {
			tt.Errorf("Ref(%q) = %d, want %d", name, got.Int(), i)
		}
	}
}
