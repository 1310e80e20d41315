package runtime

// eval.go is the trampoline evaluator of the design. Eval's for-loop is the trampoline itself:
// special forms and Apply never recurse into Eval for a value in tail position, they instead
// return a thunk cell (thunk.go), and the loop below replaces its own expr/env with the thunk's
// contents and continues. A tail-recursive Scheme loop of any depth therefore runs in one Go
// stack frame; only genuinely nested (non-tail) evaluation — an operator position, an argument,
// an `if` test — recurses into Eval, and that recursion is bounded by the Scheme program's own
// non-tail nesting.

// Eval evaluates expr in env to a value. Self-evaluating forms (everything except symbols and
// pairs, including the empty list) return themselves, except the undef singleton, which raises
// a type-error.
func (vm *VM) Eval(expr, env *Cell) (*Cell, error) {
	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)

	for {
		if expr == nil {
			return vm.Singletons.Void, nil
		}

		// The working pair (expr, env) lives only in this Go frame; re-root it each
		// iteration so a collection triggered by allocation deeper in cannot reclaim it.
		// Truncating first keeps the root stack bounded across tail-call chains.
		vm.Heap.TruncateRoots(depth)
		vm.Heap.PushRoot(expr)
		vm.Heap.PushRoot(env)

		switch {
		case expr.Tag.IsSymbol():
			v, err := vm.Ref(env, expr)
			if err != nil {
				return nil, err
			}

			// undef observed in value position is an error; it marks a binding whose
			// value does not exist yet (a letrec init referring to a later binding, a
			// define with no value), unlike void, which is silently carried.
			if v == vm.Singletons.Undef {
				return nil, vm.RaiseError(TypeError, "undefined value: %s", expr.Name())
			}

			return v, nil

		case expr.Tag == TagPair:
			val, err := vm.evalCombination(expr, env)
			if err != nil {
				return nil, err
			}

			switch val.Tag {
			case TagThunkSexpr:
				expr, env = val.Car, val.Cdr
				continue
			case TagThunkBody:
				body, benv := val.Car, val.Cdr
				if body == nil || body.Tag != TagPair {
					return vm.Singletons.Void, nil
				}

				// Rooting the head keeps the whole body chain alive across the walk.
				vm.Heap.PushRoot(body)
				vm.Heap.PushRoot(benv)

				for body.Cdr != nil && body.Cdr.Tag == TagPair {
					if _, err := vm.Eval(body.Car, benv); err != nil {
						return nil, err
					}

					body = body.Cdr
				}

				expr, env = body.Car, benv

				continue
			default:
				return val, nil
			}

		default:
			if expr == vm.Singletons.Undef {
				return nil, vm.RaiseError(TypeError, "undefined value")
			}

			return expr, nil
		}
	}
}

// evalBody drives an implicit-begin body (as found in let/letrec/begin/procedure bodies) to
// completion, recursively. Used by ApplyList and other non-tail callers that are not themselves
// part of Eval's trampoline loop; Eval's own loop inlines the equivalent logic above so that the
// last form stays in tail position.
func (vm *VM) evalBody(body, env *Cell) (*Cell, error) {
	if body == nil || body.Tag != TagPair {
		return vm.Singletons.Void, nil
	}

	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)
	vm.Heap.PushRoot(body)
	vm.Heap.PushRoot(env)

	for body.Cdr != nil && body.Cdr.Tag == TagPair {
		if _, err := vm.Eval(body.Car, env); err != nil {
			return nil, err
		}

		body = body.Cdr
	}

	return vm.Eval(body.Car, env)
}

// evalCombination handles one pair-shaped form: dispatch to a special form if the head symbol is
// bound to one, otherwise evaluate operator and operands and apply. It returns either a final
// value or a thunk (thunk-sexpr for special forms in tail position, thunk-body for an applied
// procedure's body), which Eval's loop above unwraps.
func (vm *VM) evalCombination(expr, env *Cell) (*Cell, error) {
	head := expr.Car
	args := expr.Cdr

	if head.Tag.IsSymbol() {
		if sf, ok := vm.specialForms[head]; ok {
			return sf(vm, args, env)
		}
	}

	proc, err := vm.Eval(head, env)
	if err != nil {
		return nil, err
	}

	// proc stays rooted through argument evaluation and the Apply itself: an anonymous
	// operator ((lambda (x) ...) 5) has no other reference once the head is evaluated.
	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)
	vm.Heap.PushRoot(proc)

	if proc.Tag == TagMacro {
		expansion, err := vm.ApplyList(proc, args)
		if err != nil {
			return nil, err
		}

		return vm.NewThunkSexpr(expansion, env), nil
	}

	var callArgs *Cell

	if proc.Tag == TagNProc || proc.Tag == TagNativeNProc {
		callArgs = args
	} else {
		callArgs, err = vm.evalArgs(args, env)
	}

	if err != nil {
		return nil, err
	}

	vm.Heap.PushRoot(callArgs)

	return vm.Apply(proc, callArgs, env)
}

// evalArgs evaluates each element of a proper argument list left to right, keeping every
// already-evaluated value rooted until the result list itself is built.
func (vm *VM) evalArgs(list, env *Cell) (*Cell, error) {
	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)

	var vals []*Cell

	for cur := list; cur != nil && cur.Tag == TagPair; cur = cur.Cdr {
		v, err := vm.Eval(cur.Car, env)
		if err != nil {
			return nil, err
		}

		vm.Heap.PushRoot(v)
		vals = append(vals, v)
	}

	return vm.List(vals...), nil
}
