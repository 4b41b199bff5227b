package runtime

import (
	"fmt"
)

// ErrorKind classifies runtime failures.
type ErrorKind int8

// Error kinds of the runtime. Every failure reported by this package or by
// package native carries one of them.
const (
	NoError ErrorKind = iota
	AllocationFailure
	UnboundVariable
	TypeMismatch
	ArityMismatch
	ArgTypeMismatch
	SymbolNotFound
	NativeCallFault
	IndexOutOfRange
)

var kindNames = [...]string{
	NoError:           "no error",
	AllocationFailure: "allocation failure",
	UnboundVariable:   "unbound variable",
	TypeMismatch:      "type mismatch",
	ArityMismatch:     "arity mismatch",
	ArgTypeMismatch:   "argument type mismatch",
	SymbolNotFound:    "symbol not found",
	NativeCallFault:   "native call fault",
	IndexOutOfRange:   "index out of range",
}

func (k ErrorKind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("error kind %d", int(k))
	}
	return kindNames[k]
}

// Error is the error type of the runtime. It renders as a one-line
// diagnostic naming the failing operation, the expected condition and what
// has actually been observed.
type Error struct {
	Kind     ErrorKind
	Op       string // failing operation, e.g. "lookup" or "list-ref"
	Expected string
	Actual   string
	Err      error // optional wrapped cause
}

// NewError creates a runtime error.
func NewError(kind ErrorKind, op, expected, actual string) *Error {
	return &Error{Kind: kind, Op: op, Expected: expected, Actual: actual}
}

// Errorf creates a runtime error with a formatted 'actual' part.
func Errorf(kind ErrorKind, op, expected, format string, args ...interface{}) *Error {
	return NewError(kind, op, expected, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Expected != "" {
		s += ": expected " + e.Expected
	}
	if e.Actual != "" {
		if e.Expected != "" {
			s += ", got " + e.Actual
		} else {
			s += ": " + e.Actual
		}
	}
	if e.Err != nil {
		s += " (" + e.Err.Error() + ")"
	}
	return s
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so that
//
//    errors.Is(err, runtime.ErrUnbound)
//
// is true for every UnboundVariable error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Expected == "" && t.Actual == ""
}

// Sentinels for errors.Is.
var (
	ErrAllocation    = &Error{Kind: AllocationFailure}
	ErrUnbound       = &Error{Kind: UnboundVariable}
	ErrTypeMismatch  = &Error{Kind: TypeMismatch}
	ErrArity         = &Error{Kind: ArityMismatch}
	ErrArgType       = &Error{Kind: ArgTypeMismatch}
	ErrSymbolMissing = &Error{Kind: SymbolNotFound}
	ErrNativeFault   = &Error{Kind: NativeCallFault}
	ErrOutOfRange    = &Error{Kind: IndexOutOfRange}
)

// KindOf returns the error kind of err, or NoError if err is not a runtime
// error.
func KindOf(err error) ErrorKind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return NoError
}

// describe renders an object for the 'actual' part of a diagnostic.
func describe(o Object) string {
	if o == nil {
		return "nil"
	}
	if !IsAlive(o) {
		return "released " + o.Type().String()
	}
	return o.Type().String() + " " + Repr(o)
}

// typeError is a shortcut for the most frequent diagnostic.
func typeError(op string, expected Type, got Object) *Error {
	return NewError(TypeMismatch, op, expected.String(), describe(got))
}
