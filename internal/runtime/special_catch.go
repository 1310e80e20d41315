package runtime

// special_catch.go adds two non-local-exit forms: `guard`, R5RS's structured condition handler,
// and a tagged `catch`/`throw` pair. Both work the same way: catch the propagating error, run
// cleanup/dispatch code, and either recover or rethrow. Go's error return from Eval stands in for
// the exception a host-level implementation would throw.

import "errors"

func registerCatchForms(vm *VM) {
	reg := func(name string, fn specialForm) { vm.specialForms[vm.symbol(name)] = fn }

	reg("guard", guardForm)
	reg("with-exception-handler", withExceptionHandlerForm)
	reg("catch", catchForm)
	reg("throw", throwForm)
}

// guardForm implements `(guard (var clause...) body...)`: body is evaluated; if it raises a
// Lisp error, var is bound to the error's Cell representation in a fresh frame and clause is
// dispatched exactly like cond's clauses (else, =>, or a bare test). If no clause matches, the
// original error is re-raised.
func guardForm(vm *VM, args, env *Cell) (*Cell, error) {
	spec := car(args)
	varSym, clauses := car(spec), cdr(spec)
	body := cdr(args)

	result, err := vm.evalBody(body, env)
	if err == nil {
		return result, nil
	}

	var lerr *LispError
	if !errors.As(err, &lerr) {
		return nil, err
	}

	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)
	vm.Heap.PushRoot(lerr.Cell)

	handlerEnv := vm.PushFrame(env, 0)
	vm.Heap.PushRoot(handlerEnv)
	vm.bindInFrame(handlerEnv, varSym, lerr.Cell)

	for cur := clauses; cur != nil && cur.Tag == TagPair; cur = cur.Cdr {
		clause := cur.Car
		test, clauseBody := car(clause), cdr(clause)

		if isNamed(test, "else") {
			return vm.evalBody(clauseBody, handlerEnv)
		}

		tv, terr := vm.Eval(test, handlerEnv)
		if terr != nil {
			return nil, terr
		}

		if !tv.Truthy() {
			continue
		}

		if clauseBody == nil || clauseBody.Tag != TagPair {
			return tv, nil
		}

		if isNamed(car(clauseBody), "=>") {
			vm.Heap.PushRoot(tv)

			proc, perr := vm.Eval(car(cdr(clauseBody)), handlerEnv)
			if perr != nil {
				return nil, perr
			}

			vm.Heap.PushRoot(proc)

			return vm.ApplyList(proc, vm.List(tv))
		}

		return vm.evalBody(clauseBody, handlerEnv)
	}

	return nil, err
}

// withExceptionHandlerForm implements `(with-exception-handler handler thunk)`: thunk is called
// with no arguments; if it raises, handler is called with the error's Cell representation and
// its result becomes the form's value, matching R5RS's non-resumptive handler contract (handler
// never returns to the point of the raise).
func withExceptionHandlerForm(vm *VM, args, env *Cell) (*Cell, error) {
	handlerExpr, thunkExpr := car(args), car(cdr(args))

	handler, err := vm.Eval(handlerExpr, env)
	if err != nil {
		return nil, err
	}

	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)
	vm.Heap.PushRoot(handler)

	thunk, err := vm.Eval(thunkExpr, env)
	if err != nil {
		return nil, err
	}

	result, err := vm.ApplyList(thunk, vm.Singletons.Nil)
	if err == nil {
		return result, nil
	}

	var lerr *LispError
	if !errors.As(err, &lerr) {
		return nil, err
	}

	vm.Heap.PushRoot(lerr.Cell)

	return vm.ApplyList(handler, vm.List(lerr.Cell))
}

// throwSignal is a Go error carrying a Lisp-level tag and payload, used only by catch/throw.
// It is distinct from LispError so that catch never silently swallows an ordinary Lisp error
// (this design's propagation contract still applies to type-error, unbound, and friends); only a
// matching throw unwinds to a catch.
type throwSignal struct {
	tag   *Cell
	value *Cell
}

func (t *throwSignal) Error() string { return "throw: uncaught tag" }

// catchForm implements `(catch tag body...)`: tag is evaluated once: body is then evaluated,
// and if a throw with an Eqv-matching tag propagates up through it, catch returns the thrown
// value instead of continuing to unwind.
func catchForm(vm *VM, args, env *Cell) (*Cell, error) {
	tag, err := vm.Eval(car(args), env)
	if err != nil {
		return nil, err
	}

	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)
	vm.Heap.PushRoot(tag)

	result, err := vm.evalBody(cdr(args), env)
	if err == nil {
		return result, nil
	}

	var sig *throwSignal
	if errors.As(err, &sig) && Eqv(sig.tag, tag) {
		return sig.value, nil
	}

	return nil, err
}

// throwForm implements `(throw tag value)`, unwinding to the nearest enclosing catch whose tag
// is Eqv to tag.
func throwForm(vm *VM, args, env *Cell) (*Cell, error) {
	tag, err := vm.Eval(car(args), env)
	if err != nil {
		return nil, err
	}

	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)
	vm.Heap.PushRoot(tag)

	value := vm.Singletons.Void

	if valExpr := car(cdr(args)); valExpr != nil {
		v, err := vm.Eval(valExpr, env)
		if err != nil {
			return nil, err
		}

		value = v
	}

	return nil, &throwSignal{tag: tag, value: value}
}
