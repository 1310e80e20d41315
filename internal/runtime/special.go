package runtime

// special.go implements the special forms named in the design. Each handler receives the form's
// argument list (the cdr of the whole form, unevaluated) and the calling environment, and
// returns either a final value or a tail thunk (thunk.go) for Eval's loop to continue on. The
// dispatch table is small and fixed, built once at setup and consulted by identity on every
// combination: a map keyed by interned symbol rather than a numeric opcode, since symbols are
// this design's operators.

func car(c *Cell) *Cell {
	if c == nil || c.Tag != TagPair {
		return nil
	}

	return c.Car
}

func cdr(c *Cell) *Cell {
	if c == nil || c.Tag != TagPair {
		return nil
	}

	return c.Cdr
}

func isNamed(c *Cell, name string) bool {
	return c != nil && c.Tag.IsSymbol() && c.Name() == name
}

// registerSpecialForms populates vm.specialForms. Called once by Setup.
func registerSpecialForms(vm *VM) {
	reg := func(name string, fn specialForm) { vm.specialForms[vm.symbol(name)] = fn }

	reg("quote", quoteForm)
	reg("if", ifForm)
	reg("cond", condForm)
	reg("case", caseForm)
	reg("and", andForm)
	reg("or", orForm)
	reg("when", whenForm)
	reg("unless", unlessForm)
	reg("set!", setForm)
	reg("define", defineForm)
	reg("lambda", lambdaForm)
	reg("let", letForm)
	reg("let*", letStarForm)
	reg("letrec", letrecForm)
	reg("begin", beginForm)
	reg("quasiquote", quasiquoteForm)
	reg("define-macro", defineMacroForm)
}

func quoteForm(vm *VM, args, env *Cell) (*Cell, error) {
	return car(args), nil
}

func ifForm(vm *VM, args, env *Cell) (*Cell, error) {
	test, thenExpr, elseExpr := car(args), car(cdr(args)), car(cdr(cdr(args)))

	tv, err := vm.Eval(test, env)
	if err != nil {
		return nil, err
	}

	if tv.Truthy() {
		return vm.NewThunkSexpr(thenExpr, env), nil
	}

	if elseExpr == nil {
		return vm.Singletons.Void, nil
	}

	return vm.NewThunkSexpr(elseExpr, env), nil
}

func condForm(vm *VM, args, env *Cell) (*Cell, error) {
	for cur := args; cur != nil && cur.Tag == TagPair; cur = cur.Cdr {
		clause := cur.Car
		test, body := car(clause), cdr(clause)

		if isNamed(test, "else") {
			return vm.NewThunkBody(body, env), nil
		}

		tv, err := vm.Eval(test, env)
		if err != nil {
			return nil, err
		}

		if !tv.Truthy() {
			continue
		}

		if body == nil || body.Tag != TagPair {
			return tv, nil
		}

		if isNamed(car(body), "=>") {
			depth := vm.Heap.RootDepth()
			defer vm.Heap.TruncateRoots(depth)
			vm.Heap.PushRoot(tv)

			proc, err := vm.Eval(car(cdr(body)), env)
			if err != nil {
				return nil, err
			}

			vm.Heap.PushRoot(proc)

			return vm.Apply(proc, vm.List(tv), env)
		}

		return vm.NewThunkBody(body, env), nil
	}

	return vm.Singletons.Void, nil
}

func caseForm(vm *VM, args, env *Cell) (*Cell, error) {
	key, err := vm.Eval(car(args), env)
	if err != nil {
		return nil, err
	}

	for cur := cdr(args); cur != nil && cur.Tag == TagPair; cur = cur.Cdr {
		clause := cur.Car
		data, body := car(clause), cdr(clause)

		if isNamed(data, "else") {
			return vm.NewThunkBody(body, env), nil
		}

		for d := data; d != nil && d.Tag == TagPair; d = d.Cdr {
			if Eqv(d.Car, key) {
				return vm.NewThunkBody(body, env), nil
			}
		}
	}

	return vm.Singletons.Void, nil
}

func andForm(vm *VM, args, env *Cell) (*Cell, error) {
	if args == nil || args.Tag != TagPair {
		return vm.Bool(true), nil
	}

	cur := args
	for cur.Cdr != nil && cur.Cdr.Tag == TagPair {
		v, err := vm.Eval(cur.Car, env)
		if err != nil {
			return nil, err
		}

		if !v.Truthy() {
			return v, nil
		}

		cur = cur.Cdr
	}

	return vm.NewThunkSexpr(cur.Car, env), nil
}

func orForm(vm *VM, args, env *Cell) (*Cell, error) {
	if args == nil || args.Tag != TagPair {
		return vm.Bool(false), nil
	}

	cur := args
	for cur.Cdr != nil && cur.Cdr.Tag == TagPair {
		v, err := vm.Eval(cur.Car, env)
		if err != nil {
			return nil, err
		}

		if v.Truthy() {
			return v, nil
		}

		cur = cur.Cdr
	}

	return vm.NewThunkSexpr(cur.Car, env), nil
}

func whenForm(vm *VM, args, env *Cell) (*Cell, error) {
	tv, err := vm.Eval(car(args), env)
	if err != nil {
		return nil, err
	}

	if !tv.Truthy() {
		return vm.Singletons.Void, nil
	}

	return vm.NewThunkBody(cdr(args), env), nil
}

func unlessForm(vm *VM, args, env *Cell) (*Cell, error) {
	tv, err := vm.Eval(car(args), env)
	if err != nil {
		return nil, err
	}

	if tv.Truthy() {
		return vm.Singletons.Void, nil
	}

	return vm.NewThunkBody(cdr(args), env), nil
}

func setForm(vm *VM, args, env *Cell) (*Cell, error) {
	sym := car(args)

	v, err := vm.Eval(car(cdr(args)), env)
	if err != nil {
		return nil, err
	}

	if err := vm.Rebind(env, sym, v); err != nil {
		return nil, err
	}

	return vm.Singletons.Void, nil
}

func defineForm(vm *VM, args, env *Cell) (*Cell, error) {
	target := car(args)
	if target == nil {
		return nil, vm.RaiseError(TypeError, "define: missing target")
	}

	if target.Tag.IsSymbol() {
		val := vm.Singletons.Undef

		if rest := cdr(args); rest != nil && rest.Tag == TagPair {
			v, err := vm.Eval(rest.Car, env)
			if err != nil {
				return nil, err
			}

			val = v
		}

		if cl := val.Closure(); cl != nil && cl.name == "" {
			cl.name = target.Name()
		}

		// define always binds in the current frame, never an ancestor: R5RS internal define
		// is an implicit letrec, not an assignment to an outer/global variable of the same
		// name. vm.Bind's chain-search-and-mutate contract is for bind! proper (§4.4), which
		// this form must not use.
		vm.bindInFrame(env, target, val)

		return vm.Singletons.Void, nil
	}

	if target.Tag == TagPair {
		name, formals, body := target.Car, target.Cdr, cdr(args)
		if name == nil || !name.Tag.IsSymbol() {
			return nil, vm.RaiseError(TypeError, "define: bad procedure name")
		}

		proc := vm.NewClosure(TagProc, formals, body, env, name.Name())
		vm.bindInFrame(env, name, proc)

		return vm.Singletons.Void, nil
	}

	return nil, vm.RaiseError(TypeError, "define: bad target")
}

func lambdaForm(vm *VM, args, env *Cell) (*Cell, error) {
	return vm.NewClosure(TagProc, car(args), cdr(args), env, ""), nil
}

func letForm(vm *VM, args, env *Cell) (*Cell, error) {
	if name := car(args); name != nil && name.Tag.IsSymbol() {
		return namedLet(vm, name, car(cdr(args)), cdr(cdr(args)), env)
	}

	bindings, body := car(args), cdr(args)
	newEnv := vm.PushFrame(env, 0)

	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)
	vm.Heap.PushRoot(newEnv)

	for b := bindings; b != nil && b.Tag == TagPair; b = b.Cdr {
		pair := b.Car
		val := vm.Singletons.Undef

		if rest := cdr(pair); rest != nil && rest.Tag == TagPair {
			v, err := vm.Eval(rest.Car, env)
			if err != nil {
				return nil, err
			}

			val = v
		}

		vm.bindInFrame(newEnv, car(pair), val)
	}

	return vm.NewThunkBody(body, newEnv), nil
}

func namedLet(vm *VM, name, bindings, body, env *Cell) (*Cell, error) {
	var formals []*Cell

	var inits []*Cell

	for b := bindings; b != nil && b.Tag == TagPair; b = b.Cdr {
		pair := b.Car
		formals = append(formals, car(pair))
		inits = append(inits, car(cdr(pair)))
	}

	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)

	argVals := make([]*Cell, len(inits))

	for i, initExpr := range inits {
		v, err := vm.Eval(initExpr, env)
		if err != nil {
			return nil, err
		}

		vm.Heap.PushRoot(v)
		argVals[i] = v
	}

	loopEnv := vm.PushFrame(env, 0)
	vm.Heap.PushRoot(loopEnv)

	proc := vm.NewClosure(TagProc, vm.List(formals...), body, loopEnv, name.Name())
	vm.Heap.PushRoot(proc)
	vm.bindInFrame(loopEnv, name, proc)

	return vm.Apply(proc, vm.List(argVals...), env)
}

func letStarForm(vm *VM, args, env *Cell) (*Cell, error) {
	bindings, body := car(args), cdr(args)
	curEnv := env

	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)

	for b := bindings; b != nil && b.Tag == TagPair; b = b.Cdr {
		pair := b.Car
		val := vm.Singletons.Undef

		if rest := cdr(pair); rest != nil && rest.Tag == TagPair {
			v, err := vm.Eval(rest.Car, curEnv)
			if err != nil {
				return nil, err
			}

			val = v
		}

		curEnv = vm.PushFrame(curEnv, 0)
		vm.Heap.PushRoot(curEnv)
		vm.bindInFrame(curEnv, car(pair), val)
	}

	if curEnv == env {
		curEnv = vm.PushFrame(env, 0)
	}

	return vm.NewThunkBody(body, curEnv), nil
}

func letrecForm(vm *VM, args, env *Cell) (*Cell, error) {
	bindings, body := car(args), cdr(args)
	newEnv := vm.PushFrame(env, 0)

	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)
	vm.Heap.PushRoot(newEnv)

	var names, inits []*Cell

	for b := bindings; b != nil && b.Tag == TagPair; b = b.Cdr {
		pair := b.Car
		names = append(names, car(pair))
		inits = append(inits, car(cdr(pair)))
		vm.bindInFrame(newEnv, car(pair), vm.Singletons.Undef)
	}

	for i, n := range names {
		v, err := vm.Eval(inits[i], newEnv)
		if err != nil {
			return nil, err
		}

		vm.Bind(newEnv, n, v)
	}

	return vm.NewThunkBody(body, newEnv), nil
}

func beginForm(vm *VM, args, env *Cell) (*Cell, error) {
	return vm.NewThunkBody(args, env), nil
}

func quasiquoteForm(vm *VM, args, env *Cell) (*Cell, error) {
	return vm.Quasiquote(car(args), env, 1)
}

// defineMacroForm implements define-macro: `(define-macro name (lambda formals body...))`. The
// transformer is evaluated like any procedure, then re-tagged as TagMacro so evalCombination
// treats calls to it as expand-then-evaluate rather than evaluate-then-apply.
func defineMacroForm(vm *VM, args, env *Cell) (*Cell, error) {
	name := car(args)
	if name == nil || !name.Tag.IsSymbol() {
		return nil, vm.RaiseError(TypeError, "define-macro: bad name")
	}

	val, err := vm.Eval(car(cdr(args)), env)
	if err != nil {
		return nil, err
	}

	cl := val.Closure()
	if cl == nil {
		return nil, vm.RaiseError(TypeError, "define-macro: transformer must be a procedure")
	}

	macro := vm.NewClosure(TagMacro, cl.formals, cl.body, cl.env, name.Name())
	vm.Bind(env, name, macro)

	return vm.Singletons.Void, nil
}
