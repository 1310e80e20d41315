package runtime

// heap.go is the page-allocated cell store: a list of contiguous blocks, each linked into one
// free list, handed out through a single chokepoint (Allocate) with an access check (the write
// barrier) before every reference write.

import (
	"fmt"

	"github.com/lamblisp/lamb/internal/log"
)

// defaultBlockSize is the number of cells allocated per heap block. Small enough that a
// resource-constrained target can still reserve one; the allocator requests additional blocks
// on exhaustion.
const defaultBlockSize = 1024

// Heap owns every Cell's storage and free list, and embeds the collector (gc.go) and the
// mutator root-protection stack (also gc.go): these three are kept in one struct because they are
// tightly coupled — Allocate must be able to trigger a GC slice or grow the heap in the same
// chokepoint.
type Heap struct {
	blocks    [][]Cell
	free      *Cell
	blockSize int

	// highWater is the fraction (0,1] of cells that must be free after a full collection; if
	// fewer are free, the allocator grows the heap by a block. See Allocate.
	highWater float64

	live  int // cells currently allocated (not on the free list)
	total int // cells across all blocks

	gc Collector

	log *log.Logger
}

// HeapOption configures a Heap at construction, following the same functional-options pattern
// as VMOption.
type HeapOption func(*Heap)

// WithBlockSize overrides the number of cells per block.
func WithBlockSize(n int) HeapOption {
	return func(h *Heap) { h.blockSize = n }
}

// WithHighWaterMark overrides the fraction of free cells, post-sweep, below which the heap grows
// a new block rather than relying on the next allocation cycle to find space.
func WithHighWaterMark(frac float64) HeapOption {
	return func(h *Heap) { h.highWater = frac }
}

// NewHeap creates an empty heap with one block already allocated.
func NewHeap(logger *log.Logger, opts ...HeapOption) *Heap {
	h := &Heap{
		blockSize: defaultBlockSize,
		highWater: 0.10,
		log:       logger,
	}

	for _, opt := range opts {
		opt(h)
	}

	h.gc.heap = h
	h.growBlock()

	return h
}

// growBlock requests one more block of cells from the platform and links its cells into the
// free list. In this design's terms, this is the allocator's "request a new block from the
// platform" branch of Allocate's contract (§4.1).
func (h *Heap) growBlock() {
	block := make([]Cell, h.blockSize)
	h.blocks = append(h.blocks, block)
	h.total += len(block)

	for i := range block {
		block[i].state = gcFree
		block[i].next = h.free
		h.free = &block[i]
	}

	h.log.Debug("heap: grew", "blocks", len(h.blocks), "total", h.total)
}

// ErrResourceExhausted is the resource-error raised when the heap cannot satisfy an allocation
// even after a full collection and growing, and the system-error singleton is itself not yet
// available (e.g. during Setup). See the design, §7 "resource-error".
var ErrResourceExhausted = fmt.Errorf("resource-error: heap exhausted")

// Allocate returns a freshly initialized cell with the given tag and raw payload. It may trigger
// a GC slice or grow the heap; callers holding references only in native call frames must
// protect them first via the VM's root stack (gc.go), or pass them in `protect`, which is
// itself pushed onto the root stack for the duration of the call — matching the
// `protect_exec_env` parameter of the design.
func (h *Heap) Allocate(tag Tag, protect ...*Cell) *Cell {
	if h.free == nil {
		mark := h.gc.pushRoots()
		defer h.gc.popRoots(mark)

		if len(protect) > 0 {
			h.gc.pushAll(protect)
			defer h.gc.popN(len(protect))
		}

		h.gc.runToCompletion()

		if h.free == nil || float64(h.total-h.live)/float64(h.total) < h.highWater {
			h.growBlock()
		}
	}

	if h.free == nil {
		h.log.Error("heap: exhausted")
		return h.gc.systemError
	}

	c := h.free
	h.free = c.next

	// A cell born while a collection cycle is in flight starts issued (gray), not idle: the
	// in-progress sweep would otherwise reclaim it before any mutator write could reach it.
	st := gcIdle
	if h.gc.ph != phaseIdle {
		st = gcIssued
	}

	*c = Cell{Tag: tag, state: st}
	h.live++

	if st == gcIssued {
		h.gc.work = append(h.gc.work, c)
	}

	return c
}

// Stats reports basic occupancy, useful for tests.
func (h *Heap) Stats() (live, total int) { return h.live, h.total }

// SetCar sets c's car to ref, running the write barrier (gc.go) first. Use this instead of
// assigning c.Car directly once c may be visible to the collector — i.e. any time after it was
// returned from Allocate and handed past the allocating function. Direct field assignment
// (a raw rplaca) is reserved for construction code that has not yet published the cell.
func (h *Heap) SetCar(c, ref *Cell) {
	h.gc.barrier(c, ref)
	c.Car = ref
}

// SetCdr is SetCar's counterpart for the cdr slot.
func (h *Heap) SetCdr(c, ref *Cell) {
	h.gc.barrier(c, ref)
	c.Cdr = ref
}

// SetVectorElem sets the i'th element of a vector-shaped cell, running the write barrier.
func (h *Heap) SetVectorElem(c *Cell, i int, ref *Cell) {
	h.gc.barrier(c, ref)

	if p, ok := c.ext.(*vectorPayload); ok {
		p.elems[i] = ref
	}
}
