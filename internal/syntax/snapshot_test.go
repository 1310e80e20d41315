package syntax

// snapshot_test.go round-trips Capture/Restore against a live VM, checking the design invariant 5
// (equal?(read(write(x)), x)) for every binding kind a snapshot actually carries.

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamblisp/lamb/internal/encoding"
	"github.com/lamblisp/lamb/internal/runtime"
)

func TestSnapshot_CaptureRestoreRoundTripsData(tt *testing.T) {
	tt.Parallel()

	vm := runtime.Setup()
	defer vm.Teardown()

	env := vm.PushFrame(vm.BaseEnv, 0)

	bindings := map[string]*runtime.Cell{
		"n":    vm.NewInt(42),
		"s":    vm.NewString("hello, world"),
		"list": vm.List(vm.NewInt(1), vm.NewInt(2), vm.NewInt(3)),
	}

	for name, val := range bindings {
		vm.Bind(env, vm.Oblist.Intern(name), val)
	}

	snap := Capture(vm, env)
	require.NotEmpty(tt, snap.Bindings)

	text, err := snap.MarshalText()
	require.NoError(tt, err)

	decoded := &encoding.SnapshotEncoding{}
	require.NoError(tt, decoded.UnmarshalText(text))

	fresh := vm.PushFrame(vm.BaseEnv, 0)
	require.NoError(tt, Restore(vm, fresh, decoded))

	for name, want := range bindings {
		got, err := vm.Ref(fresh, vm.Oblist.Intern(name))
		require.NoError(tt, err, name)
		assert.True(tt, runtime.Equal(got, want), "binding %s: got %s, want %s", name, Write(vm, got, false), Write(vm, want, false))
	}
}

func TestSnapshot_CaptureSkipsProcedures(tt *testing.T) {
	tt.Parallel()

	vm := runtime.Setup()
	defer vm.Teardown()

	env := vm.PushFrame(vm.BaseEnv, 0)

	proc, err := vm.Ref(vm.BaseEnv, vm.Oblist.Intern("+"))
	require.NoError(tt, err)

	vm.Bind(env, vm.Oblist.Intern("plus"), proc)
	vm.Bind(env, vm.Oblist.Intern("n"), vm.NewInt(7))

	snap := Capture(vm, env)

	var names []string
	for _, b := range snap.Bindings {
		names = append(names, b.Name)
	}

	assert.Contains(tt, names, "n")
	assert.NotContains(tt, names, "plus")
}
