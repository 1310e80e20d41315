package runtime

// native.go is the native-procedure ABI and the standard library it backs: a fixed table of host
// Go functions, reached from user code the same way every other procedure is, each receiving the
// VM and its arguments. Evaluating procedures (TagNativeProc) see already-evaluated arguments;
// non-evaluating ones (TagNativeNProc) see raw unevaluated forms. assert is the only
// non-evaluating native; it evaluates its own argument in the calling environment.

import "math"

func argAt(args *Cell, i int) *Cell {
	for cur := args; cur != nil && cur.Tag == TagPair; cur = cur.Cdr {
		if i == 0 {
			return cur.Car
		}

		i--
	}

	return nil
}

func checkArity(vm *VM, name string, args *Cell, min, max int) error {
	n := ListLength(args)
	if n < min || (max >= 0 && n > max) {
		return vm.RaiseError(ArityError, "%s: wrong number of arguments (%d)", name, n)
	}

	return nil
}

// registerNatives installs the standard procedures into env (the base environment). Called once
// by Setup.
func registerNatives(vm *VM) {
	def := func(name string, fn NativeFunc) { vm.DefineNative(vm.BaseEnv, name, true, fn) }

	registerPairNatives(vm, def)
	registerPredicateNatives(vm, def)
	registerNumericNatives(vm, def)
	registerStringNatives(vm, def)
	registerVectorNatives(vm, def)
	registerIONatives(vm, def)
	registerControlNatives(vm, def)
}

type defFunc func(name string, fn NativeFunc)

func registerPairNatives(vm *VM, def defFunc) {
	def("cons", func(vm *VM, args, env *Cell) (*Cell, error) {
		if err := checkArity(vm, "cons", args, 2, 2); err != nil {
			return nil, err
		}

		return vm.Cons(argAt(args, 0), argAt(args, 1)), nil
	})

	def("car", func(vm *VM, args, env *Cell) (*Cell, error) {
		p := argAt(args, 0)
		if p == nil || p.Tag != TagPair {
			return nil, vm.RaiseError(TypeError, "car: not a pair")
		}

		return p.Car, nil
	})

	def("cdr", func(vm *VM, args, env *Cell) (*Cell, error) {
		p := argAt(args, 0)
		if p == nil || p.Tag != TagPair {
			return nil, vm.RaiseError(TypeError, "cdr: not a pair")
		}

		return p.Cdr, nil
	})

	def("set-car!", func(vm *VM, args, env *Cell) (*Cell, error) {
		p := argAt(args, 0)
		if p == nil || p.Tag != TagPair {
			return nil, vm.RaiseError(TypeError, "set-car!: not a pair")
		}

		vm.Heap.SetCar(p, argAt(args, 1))

		return vm.Singletons.Void, nil
	})

	def("set-cdr!", func(vm *VM, args, env *Cell) (*Cell, error) {
		p := argAt(args, 0)
		if p == nil || p.Tag != TagPair {
			return nil, vm.RaiseError(TypeError, "set-cdr!: not a pair")
		}

		vm.Heap.SetCdr(p, argAt(args, 1))

		return vm.Singletons.Void, nil
	})

	def("list", func(vm *VM, args, env *Cell) (*Cell, error) { return args, nil })

	def("length", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.NewInt(int64(ListLength(argAt(args, 0)))), nil
	})

	def("append", func(vm *VM, args, env *Cell) (*Cell, error) {
		lists := ListToSlice(args)
		if len(lists) == 0 {
			return vm.Singletons.Nil, nil
		}

		result := lists[len(lists)-1]
		for i := len(lists) - 2; i >= 0; i-- {
			result = appendList(vm, lists[i], result)
		}

		return result, nil
	})

	def("reverse", func(vm *VM, args, env *Cell) (*Cell, error) {
		result := vm.Singletons.Nil
		for cur := argAt(args, 0); cur != nil && cur.Tag == TagPair; cur = cur.Cdr {
			result = vm.Cons(cur.Car, result)
		}

		return result, nil
	})

	def("list-ref", func(vm *VM, args, env *Cell) (*Cell, error) {
		n := argAt(args, 1)
		cur := argAt(args, 0)

		for i := int64(0); i < n.Int(); i++ {
			if cur == nil || cur.Tag != TagPair {
				return nil, vm.RaiseError(RangeError, "list-ref: index out of range")
			}

			cur = cur.Cdr
		}

		if cur == nil || cur.Tag != TagPair {
			return nil, vm.RaiseError(RangeError, "list-ref: index out of range")
		}

		return cur.Car, nil
	})

	def("list-tail", func(vm *VM, args, env *Cell) (*Cell, error) {
		n := argAt(args, 1)
		cur := argAt(args, 0)

		for i := int64(0); i < n.Int(); i++ {
			if cur == nil || cur.Tag != TagPair {
				return nil, vm.RaiseError(RangeError, "list-tail: index out of range")
			}

			cur = cur.Cdr
		}

		return cur, nil
	})

	assoc := func(vm *VM, args *Cell, eq func(a, b *Cell) bool) (*Cell, error) {
		key := argAt(args, 0)

		for cur := argAt(args, 1); cur != nil && cur.Tag == TagPair; cur = cur.Cdr {
			pair := cur.Car
			if pair != nil && pair.Tag == TagPair && eq(pair.Car, key) {
				return pair, nil
			}
		}

		return vm.Bool(false), nil
	}

	def("assq", func(vm *VM, args, env *Cell) (*Cell, error) { return assoc(vm, args, Eq) })
	def("assv", func(vm *VM, args, env *Cell) (*Cell, error) { return assoc(vm, args, Eqv) })
	def("assoc", func(vm *VM, args, env *Cell) (*Cell, error) { return assoc(vm, args, Equal) })

	member := func(vm *VM, args *Cell, eq func(a, b *Cell) bool) (*Cell, error) {
		key := argAt(args, 0)

		for cur := argAt(args, 1); cur != nil && cur.Tag == TagPair; cur = cur.Cdr {
			if eq(cur.Car, key) {
				return cur, nil
			}
		}

		return vm.Bool(false), nil
	}

	def("memq", func(vm *VM, args, env *Cell) (*Cell, error) { return member(vm, args, Eq) })
	def("memv", func(vm *VM, args, env *Cell) (*Cell, error) { return member(vm, args, Eqv) })
	def("member", func(vm *VM, args, env *Cell) (*Cell, error) { return member(vm, args, Equal) })
}

func registerPredicateNatives(vm *VM, def defFunc) {
	pred := func(name string, fn func(c *Cell) bool) {
		def(name, func(vm *VM, args, env *Cell) (*Cell, error) {
			return vm.Bool(fn(argAt(args, 0))), nil
		})
	}

	pred("pair?", func(c *Cell) bool { return c != nil && c.Tag == TagPair })
	pred("null?", func(c *Cell) bool { return c != nil && c.Tag == TagNil })
	pred("list?", func(c *Cell) bool { return c != nil && c.Tag.IsList() })
	pred("symbol?", func(c *Cell) bool { return c != nil && c.Tag.IsSymbol() })
	pred("string?", func(c *Cell) bool { return c != nil && c.Tag.IsString() })
	pred("number?", func(c *Cell) bool { return c != nil && c.Tag.IsNumber() })
	pred("integer?", func(c *Cell) bool { return c != nil && c.Tag == TagInt })
	pred("rational?", func(c *Cell) bool { return c != nil && (c.Tag == TagInt || c.Tag == TagRational) })
	pred("real?", func(c *Cell) bool { return c != nil && c.Tag.IsNumber() })
	pred("boolean?", func(c *Cell) bool { return c != nil && c.Tag == TagBool })
	pred("char?", func(c *Cell) bool { return c != nil && c.Tag == TagChar })
	pred("vector?", func(c *Cell) bool { return c != nil && c.Tag.NeedsVectorMarking() })
	pred("bytevector?", func(c *Cell) bool { return c != nil && c.Tag.IsBytevector() })
	pred("procedure?", func(c *Cell) bool { return c != nil && c.Tag.IsCallable() })
	pred("eof-object?", func(c *Cell) bool { return vm.Singletons.IsEOF(c) })
	pred("zero?", func(c *Cell) bool { return c != nil && c.Tag.IsNumber() && asFloat(c) == 0 })
	pred("positive?", func(c *Cell) bool { return c != nil && c.Tag.IsNumber() && asFloat(c) > 0 })
	pred("negative?", func(c *Cell) bool { return c != nil && c.Tag.IsNumber() && asFloat(c) < 0 })
	pred("procedure-arity-valid?", func(c *Cell) bool { return c != nil }) // trivial, kept minimal

	def("not", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.Bool(!argAt(args, 0).Truthy()), nil
	})

	def("eq?", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.Bool(Eq(argAt(args, 0), argAt(args, 1))), nil
	})

	def("eqv?", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.Bool(Eqv(argAt(args, 0), argAt(args, 1))), nil
	})

	def("equal?", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.Bool(Equal(argAt(args, 0), argAt(args, 1))), nil
	})
}

func registerNumericNatives(vm *VM, def defFunc) {
	fold := func(name string, identity int64, op func(vm *VM, a, b *Cell) (*Cell, error)) {
		def(name, func(vm *VM, args, env *Cell) (*Cell, error) {
			vals := ListToSlice(args)
			if len(vals) == 0 {
				return vm.NewInt(identity), nil
			}

			acc := vals[0]

			for _, v := range vals[1:] {
				r, err := op(vm, acc, v)
				if err != nil {
					return nil, err
				}

				acc = r
			}

			return acc, nil
		})
	}

	fold("+", 0, (*VM).NumAdd)
	fold("*", 1, (*VM).NumMul)

	def("-", func(vm *VM, args, env *Cell) (*Cell, error) {
		vals := ListToSlice(args)
		if len(vals) == 0 {
			return nil, vm.RaiseError(ArityError, "-: needs at least one argument")
		}

		if len(vals) == 1 {
			return vm.NumSub(vm.NewInt(0), vals[0])
		}

		acc := vals[0]

		for _, v := range vals[1:] {
			r, err := vm.NumSub(acc, v)
			if err != nil {
				return nil, err
			}

			acc = r
		}

		return acc, nil
	})

	def("/", func(vm *VM, args, env *Cell) (*Cell, error) {
		vals := ListToSlice(args)
		if len(vals) == 0 {
			return nil, vm.RaiseError(ArityError, "/: needs at least one argument")
		}

		if len(vals) == 1 {
			return vm.NumDiv(vm.NewInt(1), vals[0])
		}

		acc := vals[0]

		for _, v := range vals[1:] {
			r, err := vm.NumDiv(acc, v)
			if err != nil {
				return nil, err
			}

			acc = r
		}

		return acc, nil
	})

	cmp := func(name string, ok func(int) bool) {
		def(name, func(vm *VM, args, env *Cell) (*Cell, error) {
			vals := ListToSlice(args)
			for i := 0; i+1 < len(vals); i++ {
				if !ok(numericCompare(vals[i], vals[i+1])) {
					return vm.Bool(false), nil
				}
			}

			return vm.Bool(true), nil
		})
	}

	cmp("=", func(c int) bool { return c == 0 })
	cmp("<", func(c int) bool { return c < 0 })
	cmp(">", func(c int) bool { return c > 0 })
	cmp("<=", func(c int) bool { return c <= 0 })
	cmp(">=", func(c int) bool { return c >= 0 })

	def("abs", func(vm *VM, args, env *Cell) (*Cell, error) {
		a := argAt(args, 0)
		if a.Tag == TagInt && a.Int() < 0 {
			return vm.NewInt(-a.Int()), nil
		}

		if a.Tag == TagReal && a.Real() < 0 {
			return vm.NewReal(-a.Real()), nil
		}

		return a, nil
	})

	minmax := func(name string, want int) {
		def(name, func(vm *VM, args, env *Cell) (*Cell, error) {
			vals := ListToSlice(args)
			if len(vals) == 0 {
				return nil, vm.RaiseError(ArityError, "%s: needs at least one argument", name)
			}

			best := vals[0]

			for _, v := range vals[1:] {
				if numericCompare(v, best) == want {
					best = v
				}
			}

			return best, nil
		})
	}

	minmax("min", -1)
	minmax("max", 1)

	def("quotient", func(vm *VM, args, env *Cell) (*Cell, error) {
		a, b := argAt(args, 0), argAt(args, 1)
		if b.Int() == 0 {
			return nil, vm.RaiseError(RangeError, "quotient: division by zero")
		}

		return vm.NewInt(a.Int() / b.Int()), nil
	})

	def("remainder", func(vm *VM, args, env *Cell) (*Cell, error) {
		a, b := argAt(args, 0), argAt(args, 1)
		if b.Int() == 0 {
			return nil, vm.RaiseError(RangeError, "remainder: division by zero")
		}

		return vm.NewInt(a.Int() % b.Int()), nil
	})

	def("modulo", func(vm *VM, args, env *Cell) (*Cell, error) {
		a, b := argAt(args, 0), argAt(args, 1)
		if b.Int() == 0 {
			return nil, vm.RaiseError(RangeError, "modulo: division by zero")
		}

		m := a.Int() % b.Int()
		if m != 0 && (m < 0) != (b.Int() < 0) {
			m += b.Int()
		}

		return vm.NewInt(m), nil
	})

	def("expt", func(vm *VM, args, env *Cell) (*Cell, error) {
		a, b := argAt(args, 0), argAt(args, 1)
		if a.Tag == TagInt && b.Tag == TagInt && b.Int() >= 0 {
			r := int64(1)
			for i := int64(0); i < b.Int(); i++ {
				r *= a.Int()
			}

			return vm.NewInt(r), nil
		}

		return vm.NewReal(math.Pow(asFloat(a), asFloat(b))), nil
	})

	def("sqrt", func(vm *VM, args, env *Cell) (*Cell, error) {
		a := argAt(args, 0)
		root := math.Sqrt(asFloat(a))

		if a.Tag == TagInt && root == math.Trunc(root) {
			return vm.NewInt(int64(root)), nil
		}

		return vm.NewReal(root), nil
	})

	def("exact->inexact", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.Inexact(argAt(args, 0)), nil
	})

	def("inexact->exact", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.Exact(argAt(args, 0))
	})

	def("number->string", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.NewString(vm.writeNumber(argAt(args, 0))), nil
	})
}
