package runtime

// quasiquote.go implements quasiquotation with the level-counting rule of the design: nested
// quasiquote increments a level counter, nested unquote/unquote-splicing decrement it, and only
// an unquote or unquote-splicing seen at level 1 actually evaluates its operand — at any deeper
// level it is rebuilt literally so that a nested backquote keeps its own unquotes intact.

// Quasiquote walks expr, evaluating unquoted subexpressions in env at the given nesting level.
// The outer `quasiquote` special form in special.go calls this with level 1.
func (vm *VM) Quasiquote(expr, env *Cell, level int) (*Cell, error) {
	if expr == nil || expr.Tag != TagPair {
		return expr, nil
	}

	if isTagged(expr, "unquote") {
		if level == 1 {
			return vm.Eval(expr.Cdr.Car, env)
		}

		inner, err := vm.Quasiquote(expr.Cdr.Car, env, level-1)
		if err != nil {
			return nil, err
		}

		return vm.List(vm.symbol("unquote"), inner), nil
	}

	if isTagged(expr, "quasiquote") {
		inner, err := vm.Quasiquote(expr.Cdr.Car, env, level+1)
		if err != nil {
			return nil, err
		}

		return vm.List(vm.symbol("quasiquote"), inner), nil
	}

	if head := expr.Car; head != nil && isTagged(head, "unquote-splicing") {
		rest, err := vm.Quasiquote(expr.Cdr, env, level)
		if err != nil {
			return nil, err
		}

		depth := vm.Heap.RootDepth()
		defer vm.Heap.TruncateRoots(depth)
		vm.Heap.PushRoot(rest)

		if level != 1 {
			inner, err := vm.Quasiquote(head.Cdr.Car, env, level-1)
			if err != nil {
				return nil, err
			}

			return vm.Cons(vm.List(vm.symbol("unquote-splicing"), inner), rest), nil
		}

		spliced, err := vm.Eval(head.Cdr.Car, env)
		if err != nil {
			return nil, err
		}

		vm.Heap.PushRoot(spliced)

		return appendList(vm, spliced, rest), nil
	}

	car, err := vm.Quasiquote(expr.Car, env, level)
	if err != nil {
		return nil, err
	}

	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)
	vm.Heap.PushRoot(car)

	cdr, err := vm.Quasiquote(expr.Cdr, env, level)
	if err != nil {
		return nil, err
	}

	return vm.Cons(car, cdr), nil
}

// isTagged reports whether expr is a two-element-or-more list whose head is the symbol name.
func isTagged(expr *Cell, name string) bool {
	return expr != nil && expr.Tag == TagPair &&
		expr.Car != nil && expr.Car.Tag.IsSymbol() && expr.Car.Name() == name &&
		expr.Cdr != nil && expr.Cdr.Tag == TagPair
}

// appendList prepends the proper list a onto b, allocating fresh pairs (as unquote-splicing
// must: the spliced list's tail is shared with whatever follows it in the template, but its own
// cells cannot be, since the same template can be evaluated again with different splices).
func appendList(vm *VM, a, b *Cell) *Cell {
	elems := ListToSlice(a)
	result := b

	for i := len(elems) - 1; i >= 0; i-- {
		result = vm.Cons(elems[i], result)
	}

	return result
}
