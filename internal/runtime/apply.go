package runtime

// apply.go is procedure application: turning a callable cell plus an argument list into either
// a final value (native procedures) or a tail-call thunk (interpreted procedures and macros),
// per the design and §4.6. The thunk-returning half is what keeps a tail-recursive Scheme loop
// from growing the Go call stack: Eval's loop in eval.go, not Apply itself, does the looping.

// closurePayload is the ext payload shared by procedures, named-procedures and macros: the
// formal parameter list, the body (a list of forms, evaluated as an implicit begin), and the
// environment the closure captured at creation.
type closurePayload struct {
	formals *Cell
	body    *Cell
	env     *Cell
	name    string // best-effort, for error messages and the printer; "" if anonymous
}

// NewClosure allocates a closure cell of the given tag (TagProc, TagNProc or TagMacro).
func (vm *VM) NewClosure(tag Tag, formals, body, env *Cell, name string) *Cell {
	c := vm.Heap.Allocate(tag, formals, body, env)
	c.ext = &closurePayload{formals: formals, body: body, env: env, name: name}

	return c
}

// Closure returns c's closure payload, or nil if c is not a closure.
func (c *Cell) Closure() *closurePayload {
	cl, _ := c.ext.(*closurePayload)
	return cl
}

// ProcName returns a closure's name for error messages, or "anonymous procedure".
func (c *Cell) ProcName() string {
	if cl := c.Closure(); cl != nil && cl.name != "" {
		return cl.name
	}

	return "anonymous procedure"
}

// NativeFunc is a host-implemented Scheme procedure. args is already evaluated for TagNativeProc,
// raw for TagNativeNProc.
type NativeFunc func(vm *VM, args, env *Cell) (*Cell, error)

// DefineNative allocates a native procedure cell wrapping fn and binds it to name in env.
// evaluating selects TagNativeProc (arguments evaluated before the call) vs TagNativeNProc
// (arguments passed raw, for forms like a native and/or that must control their own evaluation).
func (vm *VM) DefineNative(env *Cell, name string, evaluating bool, fn NativeFunc) {
	tag := TagNativeProc
	if !evaluating {
		tag = TagNativeNProc
	}

	c := vm.Heap.Allocate(tag)
	c.ext = fn

	vm.Bind(env, vm.symbol(name), c)
}

// NativeFn returns c's wrapped Go function, or nil if c is not a native procedure.
func (c *Cell) NativeFn() NativeFunc {
	fn, _ := c.ext.(NativeFunc)
	return fn
}

// Apply applies proc to args in env. For native procedures it calls straight through. For
// interpreted procedures, named-procedures and macros it binds args against the closure's
// formals in a new child environment and returns a thunk-body — the caller (evalCombination in
// eval.go) must treat that as a tail continuation, not recurse into Eval itself.
func (vm *VM) Apply(proc, args, env *Cell) (*Cell, error) {
	if proc == nil || !proc.Tag.IsCallable() && proc.Tag != TagMacro {
		return nil, vm.RaiseError(TypeError, "not applicable: %s", typeNameOf(proc))
	}

	switch proc.Tag {
	case TagNativeProc, TagNativeNProc:
		fn := proc.NativeFn()
		if fn == nil {
			return nil, vm.RaiseError(TypeError, "not applicable: %s", proc.TypeName())
		}

		depth := vm.Heap.RootDepth()
		vm.Heap.PushRoot(args)

		result, err := fn(vm, args, env)

		vm.Heap.TruncateRoots(depth)

		return result, err

	case TagProc, TagNProc, TagMacro:
		cl := proc.Closure()
		if cl == nil {
			return nil, vm.RaiseError(TypeError, "not applicable: %s", proc.TypeName())
		}

		depth := vm.Heap.RootDepth()
		vm.Heap.PushRoot(cl.env)
		vm.Heap.PushRoot(args)

		newEnv, err := vm.PushBindings(cl.env, cl.formals, args)

		vm.Heap.TruncateRoots(depth)

		if err != nil {
			return nil, vm.wrapArity(proc, err)
		}

		return vm.NewThunkBody(cl.body, newEnv), nil

	default:
		return nil, vm.RaiseError(TypeError, "not applicable: %s", proc.TypeName())
	}
}

// wrapArity adds the procedure's name to an arity error raised deeper in PushBindings, so the
// message reads "my-proc: too few arguments" rather than just "too few arguments".
func (vm *VM) wrapArity(proc *Cell, err error) error {
	le, ok := err.(*LispError)
	if !ok || le.Kind != ArityError {
		return err
	}

	return vm.RaiseError(ArityError, "%s: %s", proc.ProcName(), le.Msg)
}

func typeNameOf(c *Cell) string {
	if c == nil {
		return "nil"
	}

	return c.TypeName()
}

// ApplyList is the non-tail convenience used by native procedures like apply and map: it drives
// Apply's thunk to completion itself, since a native procedure is not part of the trampoline.
func (vm *VM) ApplyList(proc, args *Cell) (*Cell, error) {
	result, err := vm.Apply(proc, args, nil)
	if err != nil {
		return nil, err
	}

	switch result.Tag {
	case TagThunkBody:
		return vm.evalBody(result.Car, result.Cdr)
	case TagThunkSexpr:
		return vm.Eval(result.Car, result.Cdr)
	default:
		return result, nil
	}
}
