package runtime

// list.go collects small list-construction and traversal helpers shared by the dictionary,
// evaluator, reader and printer. None of these allocate beyond what Cons itself does.

// Cons allocates a new pair. The two references are protected across the allocation by being
// passed to Allocate directly, per the `protect_exec_env` contract of the design.
func (vm *VM) Cons(car, cdr *Cell) *Cell {
	c := vm.Heap.Allocate(TagPair, car, cdr)
	c.Car = car
	c.Cdr = cdr

	return c
}

// List builds a proper list from the given elements.
func (vm *VM) List(elems ...*Cell) *Cell {
	result := vm.Singletons.Nil

	for i := len(elems) - 1; i >= 0; i-- {
		result = vm.Cons(elems[i], result)
	}

	return result
}

// ListToSlice flattens a proper list into a Go slice. A dotted list is truncated at the first
// non-pair cdr; a circular list is not detected and is walked without end.
func ListToSlice(list *Cell) []*Cell {
	var out []*Cell

	for list != nil && list.Tag == TagPair {
		out = append(out, list.Car)
		list = list.Cdr
	}

	return out
}

// ListLength returns the number of elements in a proper list.
func ListLength(list *Cell) int {
	n := 0
	for list != nil && list.Tag == TagPair {
		n++
		list = list.Cdr
	}

	return n
}
