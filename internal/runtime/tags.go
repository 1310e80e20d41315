package runtime

// tags.go defines the cell type lattice: an ordered enumeration of every runtime value's
// shape, carefully arranged so that the predicates the evaluator relies on most ("is this a
// list?", "does this need a finalizer?", "does the GC need to trace this specially?") reduce
// to a single integer comparison rather than a type switch or a virtual call.

import "fmt"

// Tag identifies the shape of a Cell's payload. The ordering is load-bearing: see the
// inequalities documented beside each predicate below.
type Tag uint8

const (
	// Mutable vectors. The collector traces their backing array by payload type (gc.go's
	// traceChildren), not by this tag's lattice position; see NeedsVectorMarking's doc.
	TagHeapSVec     Tag = iota // mutable vector, heap-allocated backing array
	TagHeapSVecPow2            // mutable vector, backing array sized to the next power of two

	// Cells at or below tagNeedsFinalizing own heap memory (or an external resource) that
	// must be released when the cell is swept.
	TagSymHeap // interned symbol
	TagBvecHeap
	TagStrHeap
	TagCppObj // foreign object; see ForeignObject
	TagPort

	// External storage: a pointer to memory the cell does not own. No finalizer runs.
	TagBvecExt
	TagStrExt

	// Immediate storage: the payload lives inside the cell itself. No finalizer, no separate
	// allocation.
	TagBvecImm
	TagStrImm
	TagGensym

	// Simple atoms: no allocation, no GC tracing of children at all.
	TagBool
	TagChar
	TagInt
	TagReal
	TagRational

	// Host-implemented procedures.
	TagNativeProc  // evaluates its arguments before the host function sees them
	TagNativeNProc // passes its arguments unevaluated

	// Silent/error placeholders.
	TagVoid
	TagUndef

	// The empty list. Singleton; both an atom and (trivially) a list.
	TagNil

	// The Scheme pair. The only type for which user-level pair? is true.
	TagPair

	// Extended pair-shaped types: car/cdr both carry meaning beyond "a cons".
	TagSVecImm // vector of 0, 1, or 2 elements stored inline
	TagProc
	TagNProc
	TagMacro
	TagDict
	TagThunkSexpr
	TagThunkBody
	TagError

	tagCount
)

// Boundary tags used by the inequalities in this file. Keeping them named, rather than inlining
// the Tag value, is what lets the lattice be read off the const block above.
const (
	tagNeedsMarking    = TagHeapSVecPow2 // types <= this need specialized vector marking
	tagNeedsFinalizing = TagPort         // types <= this own heap/external resources
	tagLastHeapOwning  = TagStrHeap      // last tag whose cdr is a GC-owned allocation
	tagLastAtomic      = TagRational     // last of the simple, non-pointer atoms
	tagLastNativeProc  = TagNativeNProc
)

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}

	return fmt.Sprintf("Tag(%d)", uint8(t))
}

var tagNames = [...]string{
	TagHeapSVec:     "heap-svec",
	TagHeapSVecPow2: "heap-svec-pow2",
	TagSymHeap:      "symbol",
	TagBvecHeap:     "bytevector",
	TagStrHeap:      "string",
	TagCppObj:       "foreign-object",
	TagPort:         "port",
	TagBvecExt:      "bytevector",
	TagStrExt:       "string",
	TagBvecImm:      "bytevector",
	TagStrImm:       "string",
	TagGensym:       "symbol",
	TagBool:         "boolean",
	TagChar:         "char",
	TagInt:          "integer",
	TagReal:         "real",
	TagRational:     "rational",
	TagNativeProc:   "procedure",
	TagNativeNProc:  "procedure",
	TagVoid:         "void",
	TagUndef:        "undefined",
	TagNil:          "null",
	TagPair:         "pair",
	TagSVecImm:      "vector",
	TagProc:         "procedure",
	TagNProc:        "procedure",
	TagMacro:        "macro",
	TagDict:         "environment",
	TagThunkSexpr:   "thunk",
	TagThunkBody:    "thunk",
	TagError:        "error",
}

// featureRow is the "static features table" of the design: boolean projections that are not a
// single inequality (e.g. "any string", "any symbol") plus the printable type name.
type featureRow struct {
	name       string
	isString   bool
	isBvec     bool
	isSymbol   bool
	isNumber   bool
	isCallable bool
	isVector   bool
}

var features [tagCount]featureRow

func init() {
	for t := Tag(0); t < tagCount; t++ {
		features[t] = featureRow{name: t.String()}
	}

	for _, t := range []Tag{TagStrHeap, TagStrExt, TagStrImm} {
		r := features[t]
		r.isString = true
		features[t] = r
	}

	for _, t := range []Tag{TagBvecHeap, TagBvecExt, TagBvecImm} {
		r := features[t]
		r.isBvec = true
		features[t] = r
	}

	for _, t := range []Tag{TagSymHeap, TagGensym} {
		r := features[t]
		r.isSymbol = true
		features[t] = r
	}

	for _, t := range []Tag{TagInt, TagReal, TagRational} {
		r := features[t]
		r.isNumber = true
		features[t] = r
	}

	for _, t := range []Tag{TagNativeProc, TagNativeNProc, TagProc, TagNProc} {
		r := features[t]
		r.isCallable = true
		features[t] = r
	}

	for _, t := range []Tag{TagHeapSVec, TagHeapSVecPow2, TagSVecImm} {
		r := features[t]
		r.isVector = true
		features[t] = r
	}
}

// IsList reports whether t's values are list-shaped: nil or a pair-derived type. This is the
// `type ≥ nil` inequality from the design.
func (t Tag) IsList() bool { return t >= TagNil }

// IsPairShaped reports whether t's values have car/cdr slots, including the extended pair
// types (proc, dict, thunks, ...), but excluding nil itself. This is `type > nil`.
func (t Tag) IsPairShaped() bool { return t > TagNil }

// NeedsFinalizing reports whether cells of this type own heap or external resources that must
// be released at sweep.
func (t Tag) NeedsFinalizing() bool { return t <= tagNeedsFinalizing }

// NeedsVectorMarking reports whether t is one of the tags whose values are backed by a
// vectorPayload. The collector itself dispatches on the payload's concrete type rather than this
// predicate (see gc.go's traceChildren); it is kept for callers (the printer, vector?) that want
// a cheap "is this vector-shaped" check without a type assertion.
func (t Tag) NeedsVectorMarking() bool { return features[t].isVector }

// IsAtom reports whether the type is a simple, unallocated value ("simple atoms").
func (t Tag) IsAtom() bool { return t >= TagBool && t <= tagLastAtomic }

// IsString reports whether t is any of the string variants (heap, external, immediate).
func (t Tag) IsString() bool { return features[t].isString }

// IsBytevector reports whether t is any of the bytevector variants.
func (t Tag) IsBytevector() bool { return features[t].isBvec }

// IsSymbol reports whether t is an interned or generated symbol.
func (t Tag) IsSymbol() bool { return features[t].isSymbol }

// IsNumber reports whether t is one of the numeric tower's tags.
func (t Tag) IsNumber() bool { return features[t].isNumber }

// IsCallable reports whether a value of this type can appear in operator position.
func (t Tag) IsCallable() bool { return features[t].isCallable }
