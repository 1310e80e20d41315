package runtime

// thunk.go implements the two-variant trampoline thunk: a thunk-sexpr says "evaluate this
// expression in this environment"; a thunk-body says "evaluate this body as an implicit begin in
// this environment". Neither is ever seen by user code — Eval's loop in eval.go unwraps them
// immediately — but they are ordinary Cells, not a separate Go type: a thunk is just another cell
// variant, so it rides the same heap, GC, and root-stack machinery as everything else instead of
// needing host-level coroutine or generator support.

// NewThunkSexpr builds a thunk-sexpr cell.
func (vm *VM) NewThunkSexpr(sexpr, env *Cell) *Cell {
	c := vm.Heap.Allocate(TagThunkSexpr, sexpr, env)
	c.Car = sexpr
	c.Cdr = env
	c.setTail(true)

	return c
}

// NewThunkBody builds a thunk-body cell.
func (vm *VM) NewThunkBody(body, env *Cell) *Cell {
	c := vm.Heap.Allocate(TagThunkBody, body, env)
	c.Car = body
	c.Cdr = env
	c.setTail(true)

	return c
}
