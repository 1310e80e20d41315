// Package prelude embeds and loads the boot script: a small reference library, written in the
// surface language itself, that a host evaluates once after runtime.Setup to round out the
// natives with derived forms. go:embed compiles the script into the binary as a string constant,
// the idiomatic Go analogue of linking in a generated C string.
package prelude

import (
	_ "embed"
	"fmt"

	"github.com/lamblisp/lamb/internal/runtime"
	"github.com/lamblisp/lamb/internal/syntax"
)

//go:embed prelude.scm
var source string

// Load reads and evaluates the boot script against vm's base environment. Call it once, right
// after runtime.Setup, before a host starts evaluating user code.
func Load(vm *runtime.VM) error {
	forms, err := syntax.ReadString(vm, source)
	if err != nil {
		return fmt.Errorf("prelude: parse: %w", err)
	}

	// Later forms are reachable only from this slice while the earlier ones evaluate.
	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)

	for _, form := range forms {
		vm.Heap.PushRoot(form)
	}

	for _, form := range forms {
		if _, err := vm.Eval(form, vm.BaseEnv); err != nil {
			return fmt.Errorf("prelude: eval: %w", err)
		}
	}

	return nil
}
