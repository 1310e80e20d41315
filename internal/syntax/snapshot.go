package syntax

// snapshot.go bridges internal/encoding's byte-level SnapshotEncoding to live Cells: the
// VM-aware loader half of the "heap image snapshot" feature, kept separate from the
// byte-level encoding so that package stays free of a runtime dependency. Capture walks a VM's
// base environment and prints every binding's value with Write (invariant: equal?(read(write(x)),
// x)); Restore reads each value back as a literal datum and binds it, without evaluating it, so
// only data -- not closures, ports, or foreign objects, which cannot round-trip through text --
// survives the snapshot.

import (
	"fmt"

	"github.com/lamblisp/lamb/internal/encoding"
	"github.com/lamblisp/lamb/internal/runtime"
)

// Capture renders every binding in env (including ones shadowed by a descendant frame) as a
// snapshot record. Bindings whose value is a procedure, macro, port, dictionary, thunk or foreign
// object are skipped; see isSnapshottable for what that check does not cover.
func Capture(vm *runtime.VM, env *runtime.Cell) *encoding.SnapshotEncoding {
	keys := runtime.ListToSlice(vm.Keys(env))
	vals := runtime.ListToSlice(vm.Values(env))

	snap := &encoding.SnapshotEncoding{}

	for i, key := range keys {
		if i >= len(vals) {
			break
		}

		val := vals[i]
		if !isSnapshottable(val) {
			continue
		}

		snap.Bindings = append(snap.Bindings, encoding.Binding{
			Name:  key.Name(),
			Value: Write(vm, val, false),
		})
	}

	return snap
}

// Restore reads every binding in snap as a literal datum (not evaluated) and binds it in env,
// per the inverse of Capture.
func Restore(vm *runtime.VM, env *runtime.Cell, snap *encoding.SnapshotEncoding) error {
	for _, b := range snap.Bindings {
		forms, err := ReadString(vm, b.Value)
		if err != nil {
			return fmt.Errorf("snapshot: restore %s: %w", b.Name, err)
		}

		if len(forms) != 1 {
			return fmt.Errorf("snapshot: restore %s: expected one datum, got %d", b.Name, len(forms))
		}

		// Interning may allocate; the parsed datum is reachable from nothing until bound.
		mark := vm.Heap.PushRoot(forms[0])
		vm.Bind(env, vm.Oblist.Intern(b.Name), forms[0])
		vm.Heap.TruncateRoots(mark - 1)
	}

	return nil
}

// isSnapshottable reports whether c is not itself a procedure, macro, port, dictionary, thunk or
// foreign object. Only c's own tag is checked: contents are not inspected, so a list holding a
// procedure passes, as do error, void and undefined values, whose printed forms do not read back.
func isSnapshottable(c *runtime.Cell) bool {
	if c == nil {
		return true
	}

	switch {
	case c.Tag == runtime.TagProc, c.Tag == runtime.TagNProc,
		c.Tag == runtime.TagNativeProc, c.Tag == runtime.TagNativeNProc,
		c.Tag == runtime.TagMacro, c.Tag == runtime.TagPort,
		c.Tag == runtime.TagDict, c.Tag == runtime.TagThunkSexpr,
		c.Tag == runtime.TagThunkBody:
		return false
	default:
		return c.Foreign() == nil
	}
}
