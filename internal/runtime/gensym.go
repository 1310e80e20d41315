package runtime

// gensym.go implements runtime-generated symbols: gensyms do not live in the oblist, and their
// printable form carries no promise of global uniqueness beyond being distinct from every other
// gensym this VM has produced.
//
// Deriving the printed form from a raw pointer cast to an integer is reproducible within one run
// but meaningless (and non-deterministic across runs/builds) for anything that wants predictable
// test output, so a monotonic per-VM counter is used instead.
type gensymCounter struct {
	next int64
}

func (g *gensymCounter) next1() int64 {
	g.next++
	return g.next
}

// Gensym allocates a fresh, uninterned symbol cell.
func (vm *VM) Gensym() *Cell {
	id := vm.gensyms.next1()

	c := vm.Heap.Allocate(TagGensym)
	c.CarWord = Word(id)

	return c
}
