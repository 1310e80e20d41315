package runtime

// native_io.go finishes the standard library: ports, and the control-flow primitives (apply,
// map, for-each, error/raise) that drive back into the evaluator rather than just computing a
// value.

import "io"

func registerIONatives(vm *VM, def defFunc) {
	outputPort := func(args *Cell, i int, fallback *Cell) *Cell {
		if p := argAt(args, i); p != nil {
			return p
		}

		return fallback
	}

	def("display", func(vm *VM, args, env *Cell) (*Cell, error) {
		port := outputPort(args, 1, vm.Ports.Output)

		return vm.writePort(port, vm.WriteString(argAt(args, 0), true))
	})

	def("write", func(vm *VM, args, env *Cell) (*Cell, error) {
		port := outputPort(args, 1, vm.Ports.Output)

		return vm.writePort(port, vm.WriteString(argAt(args, 0), false))
	})

	def("newline", func(vm *VM, args, env *Cell) (*Cell, error) {
		port := outputPort(args, 0, vm.Ports.Output)

		return vm.writePort(port, "\n")
	})

	def("write-char", func(vm *VM, args, env *Cell) (*Cell, error) {
		port := outputPort(args, 1, vm.Ports.Output)

		return vm.writePort(port, string(argAt(args, 0).Char()))
	})

	def("read-char", func(vm *VM, args, env *Cell) (*Cell, error) {
		port := outputPort(args, 0, vm.Ports.Input)
		p := port.PortOf()

		if p == nil || !p.Readable() {
			return nil, vm.RaiseError(IOError, "read-char: not an input port")
		}

		ch, _, err := p.RuneReader().ReadRune()
		if err == io.EOF {
			return vm.Singletons.EOF, nil
		}

		if err != nil {
			return nil, vm.RaiseError(IOError, "read-char: %v", err)
		}

		return vm.NewChar(ch), nil
	})

	def("current-output-port", func(vm *VM, args, env *Cell) (*Cell, error) { return vm.Ports.Output, nil })
	def("current-input-port", func(vm *VM, args, env *Cell) (*Cell, error) { return vm.Ports.Input, nil })
	def("current-error-port", func(vm *VM, args, env *Cell) (*Cell, error) { return vm.Ports.Error, nil })

	def("close-port", func(vm *VM, args, env *Cell) (*Cell, error) {
		p := argAt(args, 0).PortOf()
		if p == nil {
			return nil, vm.RaiseError(TypeError, "close-port: not a port")
		}

		if err := p.Close(); err != nil {
			return nil, vm.RaiseError(IOError, "close-port: %v", err)
		}

		return vm.Singletons.Void, nil
	})
}

func (vm *VM) writePort(port *Cell, s string) (*Cell, error) {
	p := port.PortOf()
	if p == nil || !p.Writable() {
		return nil, vm.RaiseError(IOError, "not an output port")
	}

	if _, err := io.WriteString(p.Writer(), s); err != nil {
		return nil, vm.RaiseError(IOError, "write: %v", err)
	}

	return vm.Singletons.Void, nil
}

func registerControlNatives(vm *VM, def defFunc) {
	defN := func(name string, fn NativeFunc) { vm.DefineNative(vm.BaseEnv, name, false, fn) }

	defN("assert", func(vm *VM, args, env *Cell) (*Cell, error) {
		expr := argAt(args, 0)

		v, err := vm.Eval(expr, env)
		if err != nil {
			return nil, err
		}

		if !v.Truthy() {
			return nil, vm.RaiseError(UserError, "assertion failed: %s", vm.WriteString(expr, true))
		}

		return vm.Singletons.Void, nil
	})

	def("apply", func(vm *VM, args, env *Cell) (*Cell, error) {
		if ListLength(args) < 1 {
			return nil, vm.RaiseError(ArityError, "apply: needs a procedure")
		}

		proc := argAt(args, 0)
		parts := ListToSlice(args)[1:]

		var flat []*Cell

		for i, p := range parts {
			if i == len(parts)-1 {
				flat = append(flat, ListToSlice(p)...)
			} else {
				flat = append(flat, p)
			}
		}

		return vm.ApplyList(proc, vm.List(flat...))
	})

	def("map", func(vm *VM, args, env *Cell) (*Cell, error) {
		proc := argAt(args, 0)
		lists := ListToSlice(args)[1:]
		cursors := make([]*Cell, len(lists))
		copy(cursors, lists)

		// Collected results live only in this Go slice between applications; each must be
		// rooted across the next call back into the evaluator.
		depth := vm.Heap.RootDepth()
		defer vm.Heap.TruncateRoots(depth)

		var out []*Cell

		for {
			callArgs := make([]*Cell, 0, len(cursors))

			done := false

			for i, cur := range cursors {
				if cur == nil || cur.Tag != TagPair {
					done = true
					break
				}

				callArgs = append(callArgs, cur.Car)
				cursors[i] = cur.Cdr
			}

			if done {
				break
			}

			v, err := vm.ApplyList(proc, vm.List(callArgs...))
			if err != nil {
				return nil, err
			}

			vm.Heap.PushRoot(v)
			out = append(out, v)
		}

		return vm.List(out...), nil
	})

	def("for-each", func(vm *VM, args, env *Cell) (*Cell, error) {
		proc := argAt(args, 0)
		lists := ListToSlice(args)[1:]
		cursors := make([]*Cell, len(lists))
		copy(cursors, lists)

		for {
			callArgs := make([]*Cell, 0, len(cursors))

			done := false

			for i, cur := range cursors {
				if cur == nil || cur.Tag != TagPair {
					done = true
					break
				}

				callArgs = append(callArgs, cur.Car)
				cursors[i] = cur.Cdr
			}

			if done {
				break
			}

			if _, err := vm.ApplyList(proc, vm.List(callArgs...)); err != nil {
				return nil, err
			}
		}

		return vm.Singletons.Void, nil
	})

	def("error", func(vm *VM, args, env *Cell) (*Cell, error) {
		msg := ""
		if m := argAt(args, 0); m != nil {
			msg = vm.WriteString(m, true)
		}

		irritants := vm.Singletons.Nil
		if rest := cdr(args); rest != nil {
			irritants = rest
		}

		return nil, &LispError{Kind: UserError, Msg: msg, Cell: vm.NewError(UserError, msg, irritants)}
	})

	def("raise", func(vm *VM, args, env *Cell) (*Cell, error) {
		obj := argAt(args, 0)
		if obj != nil && obj.Tag == TagError {
			return nil, &LispError{Kind: obj.Kind(), Msg: obj.Message(), Cell: obj}
		}

		return nil, &LispError{Kind: UserError, Msg: vm.WriteString(obj, true), Cell: vm.NewError(UserError, vm.WriteString(obj, true), vm.Singletons.Nil)}
	})

	def("error-object-message", func(vm *VM, args, env *Cell) (*Cell, error) {
		e := argAt(args, 0)
		if e == nil || e.Tag != TagError {
			return nil, vm.RaiseError(TypeError, "error-object-message: not an error")
		}

		return vm.NewString(e.Message()), nil
	})

	def("error-object-irritants", func(vm *VM, args, env *Cell) (*Cell, error) {
		e := argAt(args, 0)
		if e == nil || e.Tag != TagError {
			return nil, vm.RaiseError(TypeError, "error-object-irritants: not an error")
		}

		return e.Irritants(), nil
	})

	def("error-object?", func(vm *VM, args, env *Cell) (*Cell, error) {
		e := argAt(args, 0)
		return vm.Bool(e != nil && e.Tag == TagError), nil
	})

	def("gensym", func(vm *VM, args, env *Cell) (*Cell, error) { return vm.Gensym(), nil })

	def("eval", func(vm *VM, args, env *Cell) (*Cell, error) {
		evalEnv := env
		if e := argAt(args, 1); e != nil {
			evalEnv = e
		}

		return vm.Eval(argAt(args, 0), evalEnv)
	})

	def("the-environment", func(vm *VM, args, env *Cell) (*Cell, error) { return env, nil })

	def("void?", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.Bool(argAt(args, 0) == vm.Singletons.Void), nil
	})
}
