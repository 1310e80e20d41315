package runtime

// vm.go assembles the heap, the singleton cells, the oblist and the base environment into the
// single handle the embedded API of the design hands to a host: Setup once, then repeatedly Eval
// (or Step, for a host that wants to interleave GC and evaluation by hand). One struct owns every
// subsystem, built through a functional-options pattern (VMOption).

import (
	"io"
	"os"

	"github.com/lamblisp/lamb/internal/log"
)

// VM is the embeddable Lisp machine: heap, symbol table, global environment and the process-wide
// ports, plus the dispatch tables (special forms, native procedures) wired up by Setup.
type VM struct {
	Heap       *Heap
	Singletons Singletons
	Oblist     *Oblist
	BaseEnv    *Cell
	Ports      CurrentPorts

	gensyms gensymCounter
	log     *log.Logger

	specialForms map[*Cell]specialForm
	sym          map[string]*Cell // cache of frequently-interned symbols (quote, else, ...)

	staging *vmStaging // non-nil only during Setup, before the heap and ports exist
}

// specialForm is the signature every special-form handler in special.go implements: given the
// form's argument list (the cdr of the whole form) and the environment it appears in, produce
// either a final value or a tail thunk.
type specialForm func(vm *VM, args, env *Cell) (*Cell, error)

// VMOption configures a VM at construction, following the same functional-options pattern as
// HeapOption.
type VMOption func(*VM)

// WithLogger overrides the VM's logger. Default is log.DefaultLogger().
func WithLogger(l *log.Logger) VMOption {
	return func(vm *VM) { vm.log = l }
}

// WithHeapOptions passes options through to the underlying Heap.
func WithHeapOptions(opts ...HeapOption) VMOption {
	return func(vm *VM) { vm.staging.heapOpts = append(vm.staging.heapOpts, opts...) }
}

// WithStdPorts wires stdin/stdout/stderr as the three current ports. This is the default; it
// exists as an option so embedders targeting a serial console or a file can override it.
func WithStdPorts(in io.Reader, out, errOut io.Writer) VMOption {
	return func(vm *VM) { vm.staging.stdin, vm.staging.stdout, vm.staging.stderr = in, out, errOut }
}

// vmStaging holds construction-only inputs (heap options, std ports) that Setup consumes once
// and then discards; they are not part of the VM's steady-state fields.
type vmStaging struct {
	heapOpts       []HeapOption
	stdin          io.Reader
	stdout, stderr io.Writer
}

// Setup builds a fully wired VM: heap, GC, oblist, base environment, standard ports, special
// forms and native procedures, per the design "setup()". It is the only constructor; there is no
// zero-value VM.
func Setup(opts ...VMOption) *VM {
	vm := &VM{
		log:          log.DefaultLogger(),
		specialForms: make(map[*Cell]specialForm),
		sym:          make(map[string]*Cell),
	}

	vm.staging = &vmStaging{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}

	for _, opt := range opts {
		opt(vm)
	}

	vm.Heap = NewHeap(vm.log, vm.staging.heapOpts...)
	vm.Heap.PrepareSystemError("system out of cells")
	vm.Singletons = NewSingletons()
	vm.Oblist = NewOblist(vm.Heap)
	vm.BaseEnv = vm.NewDict(256)
	vm.Heap.SetExternalRoots(vm)

	vm.Ports = CurrentPorts{
		Input:  vm.NewPortCell(NewInputPort("stdin", vm.staging.stdin)),
		Output: vm.NewPortCell(NewOutputPort("stdout", vm.staging.stdout)),
		Error:  vm.NewPortCell(NewOutputPort("stderr", vm.staging.stderr)),
	}

	vm.staging = nil

	registerSpecialForms(vm)
	registerCatchForms(vm)
	registerNatives(vm)

	vm.log.Info("vm: setup complete", "oblist", vm.Oblist.Count())

	return vm
}

// GCRoots implements ExternalRoots: the oblist, the base environment, and the three current
// ports, per the design.
func (vm *VM) GCRoots() []*Cell {
	roots := vm.Oblist.Roots()
	roots = append(roots, vm.BaseEnv, vm.Ports.Input, vm.Ports.Output, vm.Ports.Error)

	return roots
}

// symbol returns (interning if necessary) the cached symbol cell for name. Used internally by
// special.go and native.go to avoid re-interning well-known names on every dispatch.
func (vm *VM) symbol(name string) *Cell {
	if c, ok := vm.sym[name]; ok {
		return c
	}

	c := vm.Oblist.Intern(name)
	vm.sym[name] = c

	return c
}

// Logger returns the VM's logger, for callers (the CLI, native procedures) that want to log in
// the same stream.
func (vm *VM) Logger() *log.Logger { return vm.log }

// Step advances up to budget units of incremental GC work, per this design's "step()/loop()" entry
// in the embedded API. A host harness that wants to interleave mutator work (reading and
// evaluating one form at a time) with collection calls Step between forms instead of calling
// Eval and letting allocation trigger collection on its own schedule.
func (vm *VM) Step(budget int) { vm.Heap.Step(budget) }

// Teardown releases every resource Setup acquired: it closes the three current ports (closing is
// idempotent, per the design) and runs the collector to completion so every finalizer (cpp-obj
// deleters, file and socket ports) fires before the VM is discarded. After Teardown, Setup may be
// called again to build a fresh VM; the torn-down VM itself must not be reused.
func (vm *VM) Teardown() {
	for _, p := range []*Cell{vm.Ports.Input, vm.Ports.Output, vm.Ports.Error} {
		if port := p.PortOf(); port != nil {
			_ = port.Close()
		}
	}

	vm.Heap.CollectAll()
	vm.log.Info("vm: teardown complete")
}
