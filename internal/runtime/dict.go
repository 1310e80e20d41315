package runtime

// dict.go is the hierarchical dictionary used as lexical environment. A dictionary is a
// pair-shaped cell (frame . parent-dictionary); a frame is either an association list, or a
// vector whose length is a power of two where each slot holds an alist of the keys that hash to
// it: a small map from key to value consulted through one lookup chokepoint, generalized to the
// chained, power-of-two-bucketed structure this design actually asks for.

// framePayload is the ext payload of a TagDict cell. alist is the head of a Scheme list of
// (key . value) pairs, used when buckets is nil.
type framePayload struct {
	alist   *Cell
	buckets []*Cell // nil in alist mode; otherwise len(buckets) is a power of two
	mask    uint64
}

func nextPow2(n int) int {
	if n <= 0 {
		return 0
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}

func newFrame(size int) *framePayload {
	if size <= 0 {
		return &framePayload{}
	}

	n := nextPow2(size)

	return &framePayload{buckets: make([]*Cell, n), mask: uint64(n - 1)}
}

// NewDict creates a fresh dictionary with no parent. size == 0 means the top frame is an alist; any
// other size is rounded up to the next power of two and becomes a hash-table frame.
func (vm *VM) NewDict(size int) *Cell {
	d := vm.Heap.Allocate(TagDict)
	d.Cdr = nil
	d.ext = newFrame(size)

	return d
}

// PushFrame creates a new dictionary with an empty top frame and d as parent.
func (vm *VM) PushFrame(d *Cell, size int) *Cell {
	nd := vm.Heap.Allocate(TagDict, d)
	nd.Cdr = d
	nd.ext = newFrame(size)

	return nd
}

// PushBindings creates a new dictionary whose top frame binds formals to args. formals may be a
// proper list (fixed arity), a single symbol (collects all args as a rest list), or a dotted
// list (fixed prefix plus a rest symbol) — the three lambda-list shapes of R5RS.
func (vm *VM) PushBindings(d *Cell, formals, args *Cell) (*Cell, error) {
	nd := vm.Heap.Allocate(TagDict, d, formals, args)
	nd.Cdr = d
	nd.ext = &framePayload{}

	// nd is unreachable from any root until the caller receives it; the binding conses below
	// allocate, so it must ride the root stack across them.
	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)
	vm.Heap.PushRoot(nd)

	cursor := formals

	for cursor != nil && cursor.Tag == TagPair {
		if args == nil || args.Tag != TagPair {
			return nil, vm.RaiseError(ArityError, "too few arguments")
		}

		vm.bindInFrame(nd, cursor.Car, args.Car)
		cursor = cursor.Cdr
		args = args.Cdr
	}

	switch {
	case cursor != nil && cursor.Tag.IsSymbol():
		// Dotted rest parameter, or a bare symbol formal list.
		vm.bindInFrame(nd, cursor, args)
	case cursor == nil || cursor.Tag == TagNil:
		if args != nil && args.Tag == TagPair {
			return nil, vm.RaiseError(ArityError, "too many arguments")
		}
	}

	return nd, nil
}

func (vm *VM) bindInFrame(d *Cell, key, value *Cell) {
	fp := d.ext.(*framePayload)
	binding := vm.Cons(key, value)

	if fp.buckets == nil {
		fp.alist = vm.Cons(binding, fp.alist)
		return
	}

	idx := key.Hash() & fp.mask
	fp.buckets[idx] = vm.Cons(binding, fp.buckets[idx])
}

// findBinding walks d's own frame (not its ancestors) looking for key, comparing by Eqv so that
// symbols, characters, and small integers used as keys behave as users expect.
func findBinding(frame *Cell, key *Cell) *Cell {
	for frame != nil && frame.Tag == TagPair {
		binding := frame.Car
		if Eqv(binding.Car, key) {
			return binding
		}

		frame = frame.Cdr
	}

	return nil
}

func frameLookup(d *Cell, key *Cell) *Cell {
	fp, ok := d.ext.(*framePayload)
	if !ok {
		return nil
	}

	if fp.buckets == nil {
		return findBinding(fp.alist, key)
	}

	idx := key.Hash() & fp.mask

	return findBinding(fp.buckets[idx], key)
}

// Ref walks frames top-down and returns the bound value, or raises unbound.
func (vm *VM) Ref(d *Cell, key *Cell) (*Cell, error) {
	for d != nil {
		if b := frameLookup(d, key); b != nil {
			return b.Cdr, nil
		}

		d = d.Cdr
	}

	return nil, vm.RaiseError(UnboundError, "unbound variable: %s", key.Name())
}

// RefOk is Ref without the error: it returns (value, true) or (nil, false).
func (vm *VM) RefOk(d *Cell, key *Cell) (*Cell, bool) {
	for d != nil {
		if b := frameLookup(d, key); b != nil {
			return b.Cdr, true
		}

		d = d.Cdr
	}

	return nil, false
}

// Bind mutates key's binding if found in any frame; otherwise creates it in the top frame.
func (vm *VM) Bind(d *Cell, key, value *Cell) {
	for cur := d; cur != nil; cur = cur.Cdr {
		if b := frameLookup(cur, key); b != nil {
			vm.Heap.SetCdr(b, value)
			return
		}
	}

	vm.bindInFrame(d, key, value)
}

// Rebind mutates key's binding if found in any frame; otherwise raises unbound.
func (vm *VM) Rebind(d *Cell, key, value *Cell) error {
	for cur := d; cur != nil; cur = cur.Cdr {
		if b := frameLookup(cur, key); b != nil {
			vm.Heap.SetCdr(b, value)
			return nil
		}
	}

	return vm.RaiseError(UnboundError, "unbound variable: %s", key.Name())
}

// Keys returns every key bound in d, including ones shadowed by descendant frames, in frame
// order. Within an alist frame the most recent binding comes first; within a hash frame
// bindings come in bucket order.
func (vm *VM) Keys(d *Cell) *Cell {
	var keys []*Cell

	for cur := d; cur != nil; cur = cur.Cdr {
		for _, b := range frameBindings(cur) {
			keys = append(keys, b.Car)
		}
	}

	return vm.List(keys...)
}

// Values is Keys's positionally-aligned counterpart.
func (vm *VM) Values(d *Cell) *Cell {
	var vals []*Cell

	for cur := d; cur != nil; cur = cur.Cdr {
		for _, b := range frameBindings(cur) {
			vals = append(vals, b.Cdr)
		}
	}

	return vm.List(vals...)
}

func frameBindings(d *Cell) []*Cell {
	fp, ok := d.ext.(*framePayload)
	if !ok {
		return nil
	}

	var out []*Cell

	if fp.buckets == nil {
		out = append(out, ListToSlice(fp.alist)...)
		return out
	}

	for _, bucket := range fp.buckets {
		out = append(out, ListToSlice(bucket)...)
	}

	return out
}
