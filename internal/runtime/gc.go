package runtime

// gc.go is the incremental tri-color collector (Dijkstra 1978) extended with the fifth "free"
// state (Kung & Song 1977), per this design. Step does a bounded unit of mark/sweep work and
// checks back in, rather than running a cycle to completion in one call. GC roots are
// re-collected from a small, fixed set of sources (rootProvider) at the start of every cycle
// rather than tracked continuously.

// ExternalRoots supplies the collector with the GC roots that live outside the heap: the oblist,
// the base environment, and the current I/O ports, per the design "Roots at the start of a cycle".
type ExternalRoots interface {
	GCRoots() []*Cell
}

// phase tracks where an incremental cycle currently is.
type phase uint8

const (
	phaseIdle phase = iota
	phaseMarking
	phaseSweeping
)

// Collector implements the tri-color mark/sweep algorithm over a Heap's cells. It is embedded in
// Heap rather than standing alone because Allocate must drive it directly on exhaustion.
type Collector struct {
	heap *Heap

	roots ExternalRoots

	// rootStack is the mutator's LIFO root-protection stack (the design "Root stack").
	rootStack []*Cell

	// work is the mark stack: cells in the gcStacked state awaiting tracing.
	work []*Cell

	ph                    phase
	sweepAt               int // index into heap.blocks, resumed across slices
	sweepIndexWithinBlock int // index into heap.blocks[sweepAt], resumed across slices

	// systemError is the single pre-allocated error cell returned when the heap is too
	// exhausted to allocate a fresh one .
	systemError *Cell

	cycles int
}

// SetExternalRoots wires the VM's oblist/base-env/ports into the collector. Called once during
// Setup.
func (h *Heap) SetExternalRoots(r ExternalRoots) { h.gc.roots = r }

// PrepareSystemError installs the statically-allocated error cell used when allocation fails
// completely. It must never itself require allocation, so unlike NewError it carries no message
// string cell in its car; the text lives only in the payload.
func (h *Heap) PrepareSystemError(msg string) {
	h.gc.systemError = &Cell{
		Tag:       TagError,
		state:     gcIdle,
		singleton: true,
		CarWord:   0,
		ext:       &errorPayload{kind: ResourceError, message: msg},
	}
}

// SystemError returns the always-available, never-collected error cell.
func (h *Heap) SystemError() *Cell { return h.gc.systemError }

// PushRoot pushes one cell reference onto the mutator's root-protection stack. Native procedures
// that allocate or call back into the evaluator must push every reference they need to survive
// the call.
func (h *Heap) PushRoot(c *Cell) int {
	h.gc.rootStack = append(h.gc.rootStack, c)

	// A root pushed after the cycle's snapshot was taken must still be scanned this cycle.
	if h.gc.ph == phaseMarking {
		h.gc.issue(c)
	}

	return len(h.gc.rootStack)
}

// PopRoots drops the top n entries from the root stack, restoring the depth recorded by a
// previous PushRoot/RootDepth. Used both by ordinary native-procedure cleanup and by error
// unwinding (the design "the mutator root stack is truncated accordingly").
func (h *Heap) PopRoots(n int) {
	if n > len(h.gc.rootStack) {
		n = len(h.gc.rootStack)
	}

	h.gc.rootStack = h.gc.rootStack[:len(h.gc.rootStack)-n]
}

// RootDepth returns the current depth of the root stack, to be saved and later passed to
// TruncateRoots by a catch point.
func (h *Heap) RootDepth() int { return len(h.gc.rootStack) }

// TruncateRoots restores the root stack to a previously saved depth.
func (h *Heap) TruncateRoots(depth int) {
	if depth < len(h.gc.rootStack) {
		h.gc.rootStack = h.gc.rootStack[:depth]
	}
}

func (g *Collector) pushRoots() int    { return len(g.rootStack) }
func (g *Collector) popRoots(mark int) { g.rootStack = g.rootStack[:mark] }
func (g *Collector) pushAll(cs []*Cell) {
	g.rootStack = append(g.rootStack, cs...)

	if g.ph == phaseMarking {
		for _, c := range cs {
			g.issue(c)
		}
	}
}
func (g *Collector) popN(n int) {
	if n > len(g.rootStack) {
		n = len(g.rootStack)
	}
	g.rootStack = g.rootStack[:len(g.rootStack)-n]
}

// barrier is the write barrier of the design: any reference write into a marked cell that points
// at an idle cell re-issues the target, the only condition under which a cell's GC state moves
// backwards.
func (g *Collector) barrier(parent, child *Cell) {
	if child == nil || isSingleton(child) {
		return
	}

	if parent != nil && parent.state == gcMarked && child.state == gcIdle {
		child.state = gcIssued
		g.work = append(g.work, child)
	}
}

// issue marks c as a root for the current cycle, if it isn't already past that point.
func (g *Collector) issue(c *Cell) {
	if c == nil || isSingleton(c) {
		return
	}

	if c.state == gcIdle {
		c.state = gcIssued
		g.work = append(g.work, c)
	}
}

// beginCycle collects the roots named in the design and seeds the mark stack.
func (g *Collector) beginCycle() {
	g.ph = phaseMarking
	g.cycles++

	if g.roots != nil {
		for _, r := range g.roots.GCRoots() {
			g.issue(r)
		}
	}

	for _, r := range g.rootStack {
		g.issue(r)
	}
}

// Step performs up to `budget` units of incremental GC work (one unit is roughly one cell
// traced or swept) and returns promptly, matching the embedded API's own step()/loop() contract.
// It interleaves naturally with the mutator: a caller running many small Steps makes the same
// progress as one big GCSlice.
func (h *Heap) Step(budget int) {
	h.gc.slice(budget)
}

// GCSlice is Step under the name the collector's own doc uses internally; kept as a separate,
// exported spelling because "step a GC slice" and "step the VM" read differently at call sites.
func (h *Heap) GCSlice(budget int) { h.gc.slice(budget) }

// CollectAll runs a full collection cycle to completion, unconditionally finalizing every
// unreachable cell. Used by VM.Teardown so file/socket ports and foreign-object deleters run
// deterministically before a host discards the VM, rather than waiting for a future incremental
// cycle that will never come.
func (h *Heap) CollectAll() { h.gc.runToCompletion() }

func (g *Collector) slice(budget int) {
	if g.ph == phaseIdle {
		g.beginCycle()
	}

	for budget > 0 {
		switch g.ph {
		case phaseMarking:
			if len(g.work) == 0 {
				g.ph = phaseSweeping
				g.sweepAt = 0

				continue
			}

			n := len(g.work) - 1
			c := g.work[n]
			g.work = g.work[:n]

			if c.state != gcStacked && c.state != gcIssued {
				continue
			}

			c.state = gcStacked
			g.traceChildren(c)
			c.state = gcMarked
			budget--

		case phaseSweeping:
			if g.sweepDone() {
				g.endCycle()
				return
			}

			g.sweepSlice(budget)
			return

		case phaseIdle:
			return
		}
	}
}

// runToCompletion runs the current (or a fresh) cycle to the end without budget limits. Used
// only when Allocate has nothing left to hand out; the incremental collector otherwise always
// makes progress in bounded slices.
func (g *Collector) runToCompletion() {
	if g.ph == phaseIdle {
		g.beginCycle()
	}

	for g.ph != phaseIdle {
		g.slice(1 << 20)
	}
}

// traceChildren pushes c's reachable children onto the mark stack. Dispatch is on the concrete
// ext payload rather than c.Tag's lattice position: the tag lattice orders types for the
// predicate inequalities in tags.go, but several distinct tags (TagSVecImm, TagHeapSVec,
// TagHeapSVecPow2) share the vectorPayload representation, and dictionary frames (TagDict) carry
// their bindings in ext rather than Car/Cdr, so payload identity is what actually determines
// which extra cells a value keeps alive.
func (g *Collector) traceChildren(c *Cell) {
	switch p := c.ext.(type) {
	case *vectorPayload:
		for _, e := range p.elems {
			g.issue(e)
		}
	case *framePayload:
		if p.buckets == nil {
			g.issue(p.alist)
		} else {
			for _, bucket := range p.buckets {
				g.issue(bucket)
			}
		}
	case *closurePayload:
		g.issue(p.formals)
		g.issue(p.body)
		g.issue(p.env)
	}

	g.issue(c.Car)
	g.issue(c.Cdr)
}

func (g *Collector) sweepDone() bool {
	return g.sweepAt >= len(g.heap.blocks)
}

func (g *Collector) endCycle() {
	g.ph = phaseIdle
	g.heap.log.Debug("gc: cycle complete", "cycle", g.cycles, "live", g.heap.live, "total", g.heap.total)
}

// sweepSlice walks up to `budget` cells, reclaiming anything left gcIdle (unreached this cycle)
// and resetting gcMarked cells back to gcIdle for the next cycle's tri-color reset.
func (g *Collector) sweepSlice(budget int) {
	h := g.heap

	for budget > 0 {
		if g.sweepAt >= len(h.blocks) {
			g.endCycle()
			return
		}

		block := h.blocks[g.sweepAt]
		idx := g.sweepIndexWithinBlock

		if idx >= len(block) {
			g.sweepAt++
			g.sweepIndexWithinBlock = 0

			continue
		}

		c := &block[idx]
		g.sweepIndexWithinBlock++
		budget--

		switch c.state {
		case gcFree:
			// already reclaimed
		case gcMarked:
			c.state = gcIdle
		case gcIdle:
			g.finalize(c)
			h.live--
			c.state = gcFree
			c.next = h.free
			h.free = c
		default: // gcIssued, gcStacked: shouldn't happen at sweep time, treat as live
			c.state = gcIdle
		}
	}
}

// finalize releases resources owned by a cell about to be swept, per the design
// "Finalization": heap-owned storage for types at or below tagNeedsFinalizing, and cpp-obj
// deleters.
func (g *Collector) finalize(c *Cell) {
	if fo, ok := c.ext.(*ForeignObject); ok && fo.Deleter != nil {
		fo.Deleter()
	}

	if p, ok := c.ext.(*Port); ok {
		_ = p.Close()
	}

	c.ext = nil
}

// isSingleton reports whether c is one of the six statically-allocated cells, or the
// pre-allocated system-error cell, that are never marked or swept.
func isSingleton(c *Cell) bool {
	return c != nil && c.singleton
}
