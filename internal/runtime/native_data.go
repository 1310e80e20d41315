package runtime

// native_data.go continues native.go's standard library: strings, characters and vectors.

func registerStringNatives(vm *VM, def defFunc) {
	def("string-length", func(vm *VM, args, env *Cell) (*Cell, error) {
		s := argAt(args, 0)
		if s == nil || !s.Tag.IsString() {
			return nil, vm.RaiseError(TypeError, "string-length: not a string")
		}

		return vm.NewInt(int64(s.StringLength())), nil
	})

	def("string-ref", func(vm *VM, args, env *Cell) (*Cell, error) {
		s, i := argAt(args, 0), argAt(args, 1)
		if s == nil || !s.Tag.IsString() {
			return nil, vm.RaiseError(TypeError, "string-ref: not a string")
		}

		runes := []rune(s.Text())
		idx := int(i.Int())

		if idx < 0 || idx >= len(runes) {
			return nil, vm.RaiseError(RangeError, "string-ref: index out of range")
		}

		return vm.NewChar(runes[idx]), nil
	})

	def("string-set!", func(vm *VM, args, env *Cell) (*Cell, error) {
		s, i, ch := argAt(args, 0), argAt(args, 1), argAt(args, 2)
		if err := s.SetStringChar(int(i.Int()), ch.Char()); err != nil {
			return nil, err
		}

		return vm.Singletons.Void, nil
	})

	def("string-append", func(vm *VM, args, env *Cell) (*Cell, error) {
		var out []rune
		for _, s := range ListToSlice(args) {
			out = append(out, []rune(s.Text())...)
		}

		return vm.NewString(string(out)), nil
	})

	def("substring", func(vm *VM, args, env *Cell) (*Cell, error) {
		s, start, end := argAt(args, 0), argAt(args, 1), argAt(args, 2)
		runes := []rune(s.Text())

		lo := int(start.Int())
		hi := len(runes)

		if end != nil {
			hi = int(end.Int())
		}

		if lo < 0 || hi > len(runes) || lo > hi {
			return nil, vm.RaiseError(RangeError, "substring: index out of range")
		}

		return vm.NewString(string(runes[lo:hi])), nil
	})

	def("string-copy", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.NewString(argAt(args, 0).Text()), nil
	})

	def("make-string", func(vm *VM, args, env *Cell) (*Cell, error) {
		n := int(argAt(args, 0).Int())
		fill := ' '

		if f := argAt(args, 1); f != nil {
			fill = f.Char()
		}

		runes := make([]rune, n)
		for i := range runes {
			runes[i] = fill
		}

		return vm.NewString(string(runes)), nil
	})

	def("string=?", func(vm *VM, args, env *Cell) (*Cell, error) {
		vals := ListToSlice(args)
		for i := 0; i+1 < len(vals); i++ {
			if vals[i].Text() != vals[i+1].Text() {
				return vm.Bool(false), nil
			}
		}

		return vm.Bool(true), nil
	})

	def("string<?", func(vm *VM, args, env *Cell) (*Cell, error) {
		a, b := argAt(args, 0), argAt(args, 1)
		return vm.Bool(a.Text() < b.Text()), nil
	})

	def("string->symbol", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.Oblist.Intern(argAt(args, 0).Text()), nil
	})

	def("symbol->string", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.NewString(argAt(args, 0).Name()), nil
	})

	def("string->list", func(vm *VM, args, env *Cell) (*Cell, error) {
		depth := vm.Heap.RootDepth()
		defer vm.Heap.TruncateRoots(depth)

		var elems []*Cell

		for _, r := range argAt(args, 0).Text() {
			c := vm.NewChar(r)
			vm.Heap.PushRoot(c)
			elems = append(elems, c)
		}

		return vm.List(elems...), nil
	})

	def("list->string", func(vm *VM, args, env *Cell) (*Cell, error) {
		var runes []rune
		for _, c := range ListToSlice(argAt(args, 0)) {
			runes = append(runes, c.Char())
		}

		return vm.NewString(string(runes)), nil
	})

	def("string->number", func(vm *VM, args, env *Cell) (*Cell, error) {
		c, ok := vm.parseNumber(argAt(args, 0).Text())
		if !ok {
			return vm.Bool(false), nil
		}

		return c, nil
	})

	def("char->integer", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.NewInt(int64(argAt(args, 0).Char())), nil
	})

	def("integer->char", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.NewChar(rune(argAt(args, 0).Int())), nil
	})

	def("char=?", func(vm *VM, args, env *Cell) (*Cell, error) {
		a, b := argAt(args, 0), argAt(args, 1)
		return vm.Bool(a.Char() == b.Char()), nil
	})

	def("char-upcase", func(vm *VM, args, env *Cell) (*Cell, error) {
		r := argAt(args, 0).Char()
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}

		return vm.NewChar(r), nil
	})

	def("char-downcase", func(vm *VM, args, env *Cell) (*Cell, error) {
		r := argAt(args, 0).Char()
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}

		return vm.NewChar(r), nil
	})
}

func registerVectorNatives(vm *VM, def defFunc) {
	def("vector", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.NewVector(ListToSlice(args)...), nil
	})

	def("make-vector", func(vm *VM, args, env *Cell) (*Cell, error) {
		n := int(argAt(args, 0).Int())
		fill := vm.Singletons.Undef

		if f := argAt(args, 1); f != nil {
			fill = f
		}

		elems := make([]*Cell, n)
		for i := range elems {
			elems[i] = fill
		}

		return vm.NewVector(elems...), nil
	})

	def("vector-ref", func(vm *VM, args, env *Cell) (*Cell, error) {
		v, i := argAt(args, 0), argAt(args, 1)
		elems := v.Elements()
		idx := int(i.Int())

		if idx < 0 || idx >= len(elems) {
			return nil, vm.RaiseError(RangeError, "vector-ref: index out of range")
		}

		return elems[idx], nil
	})

	def("vector-set!", func(vm *VM, args, env *Cell) (*Cell, error) {
		v, i, val := argAt(args, 0), argAt(args, 1), argAt(args, 2)
		idx := int(i.Int())

		if idx < 0 || idx >= len(v.Elements()) {
			return nil, vm.RaiseError(RangeError, "vector-set!: index out of range")
		}

		vm.Heap.SetVectorElem(v, idx, val)

		return vm.Singletons.Void, nil
	})

	def("vector-length", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.NewInt(int64(len(argAt(args, 0).Elements()))), nil
	})

	def("vector->list", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.List(argAt(args, 0).Elements()...), nil
	})

	def("list->vector", func(vm *VM, args, env *Cell) (*Cell, error) {
		return vm.NewVector(ListToSlice(argAt(args, 0))...), nil
	})

	def("vector-fill!", func(vm *VM, args, env *Cell) (*Cell, error) {
		v, val := argAt(args, 0), argAt(args, 1)
		for i := range v.Elements() {
			vm.Heap.SetVectorElem(v, i, val)
		}

		return vm.Singletons.Void, nil
	})
}
