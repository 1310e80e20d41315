package runtime

// errors.go implements this design's error handling. Every Lisp-visible error is both a Go error
// (so host code calling Eval gets an idiomatic error return) and an `error`-tagged Cell (so
// Lisp-visible handlers can inspect kind, message and irritants): a sentinel per kind plus a
// typed wrapper (LispError) that participates in errors.Is/As through its Is and Unwrap methods,
// both of which resolve to the kind's sentinel.

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the error categories of the design.
type ErrorKind uint8

const (
	TypeError ErrorKind = iota
	UnboundError
	ArityError
	RangeError
	IOError
	ReadError
	ResourceError
	UserError
)

func (k ErrorKind) String() string {
	switch k {
	case TypeError:
		return "type-error"
	case UnboundError:
		return "unbound"
	case ArityError:
		return "arity-error"
	case RangeError:
		return "range-error"
	case IOError:
		return "io-error"
	case ReadError:
		return "read-error"
	case ResourceError:
		return "resource-error"
	case UserError:
		return "user-error"
	default:
		return "error"
	}
}

type errorPayload struct {
	kind      ErrorKind
	message   string
	irritants *Cell // list, or nil for empty
}

// Kind returns an error cell's kind.
func (c *Cell) Kind() ErrorKind {
	if p, ok := c.ext.(*errorPayload); ok {
		return p.kind
	}

	return UserError
}

// Message returns an error cell's message text.
func (c *Cell) Message() string {
	if p, ok := c.ext.(*errorPayload); ok {
		return p.message
	}

	return ""
}

// Irritants returns an error cell's irritant list (possibly nil).
func (c *Cell) Irritants() *Cell {
	if p, ok := c.ext.(*errorPayload); ok {
		return p.irritants
	}

	return nil
}

// LispError is the Go error type returned by Eval and the native-procedure ABI. It wraps one of
// the sentinel Err* values below and carries the Cell representation so a catch point can
// recover the original error value verbatim.
type LispError struct {
	Kind  ErrorKind
	Msg   string
	Cell  *Cell // the error cell; RaiseError always allocates it via NewError
	cause error
}

func (e *LispError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}

	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Msg)
}

func (e *LispError) Unwrap() error { return e.sentinel() }

func (e *LispError) sentinel() error {
	switch e.Kind {
	case TypeError:
		return ErrType
	case UnboundError:
		return ErrUnbound
	case ArityError:
		return ErrArity
	case RangeError:
		return ErrRange
	case IOError:
		return ErrIO
	case ReadError:
		return ErrRead
	case ResourceError:
		return ErrResource
	default:
		return ErrUser
	}
}

func (e *LispError) Is(target error) bool {
	return errors.Is(e.sentinel(), target)
}

// Sentinel errors for each kind, so host code can `errors.Is(err, runtime.ErrUnbound)` without
// caring about the Cell representation.
var (
	ErrType     = errors.New("type-error")
	ErrUnbound  = errors.New("unbound")
	ErrArity    = errors.New("arity-error")
	ErrRange    = errors.New("range-error")
	ErrIO       = errors.New("io-error")
	ErrRead     = errors.New("read-error")
	ErrResource = errors.New("resource-error")
	ErrUser     = errors.New("user-error")
)

// NewError allocates an error cell of the given kind: car points to the message string, cdr to
// the irritants list (possibly nil). The kind rides in the payload alongside a copy of the
// message text, so Lisp-visible accessors need no string-cell indirection.
func (vm *VM) NewError(kind ErrorKind, message string, irritants *Cell) *Cell {
	msg := vm.NewString(message)

	c := vm.Heap.Allocate(TagError, msg, irritants)
	c.ext = &errorPayload{kind: kind, message: message, irritants: irritants}
	c.Car = msg
	c.Cdr = irritants

	return c
}

// RaiseError builds both representations of an error and returns the Go error, for use in a
// `return nil, vm.RaiseError(...)` statement inside native procedures and the evaluator.
func (vm *VM) RaiseError(kind ErrorKind, format string, args ...any) *LispError {
	msg := fmt.Sprintf(format, args...)
	cell := vm.NewError(kind, msg, vm.Singletons.Nil)

	return &LispError{Kind: kind, Msg: msg, Cell: cell}
}
