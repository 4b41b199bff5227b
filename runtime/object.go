package runtime

import (
	"fmt"
	"math"
)

// Type is the type tag every runtime object carries.
type Type int8

// Object type tags.
const (
	IntegerType Type = iota
	DoubleType
	BooleanType
	CharType
	StringType
	PairType
	EmptyListType
	VectorType
	LambdaType
	EvaluableType
	UnspecifiedType
)

var typeNames = [...]string{
	IntegerType:     "INTEGER",
	DoubleType:      "DOUBLE",
	BooleanType:     "BOOLEAN",
	CharType:        "CHAR",
	StringType:      "STRING",
	PairType:        "PAIR",
	EmptyListType:   "EMPTY_LIST",
	VectorType:      "VECTOR",
	LambdaType:      "LAMBDA",
	EvaluableType:   "EVALUABLE",
	UnspecifiedType: "UNSPECIFIED",
}

func (t Type) String() string {
	if int(t) < 0 || int(t) >= len(typeNames) {
		return "UNKNOWN"
	}
	return typeNames[t]
}

// Object is the universal runtime datum. The set of implementations is
// closed: Integer, Double, Boolean, Char, String, Pair, the empty list,
// Vector, Lambda, Evaluable and Unspecified.
//
// Objects are reference counted. A new object starts with a count of 1,
// owned by whoever created it. Retain adds an owner, Release drops one; the
// object is destroyed when the last owner lets go. Go's garbage collector
// reclaims the memory, but a destroyed object has released everything it
// owned and must not be used any more.
type Object interface {
	Type() Type
	hdr() *header
}

type header struct {
	typ      Type
	refs     uint32
	dead     bool
	immortal bool
}

func (h *header) Type() Type {
	return h.typ
}

func (h *header) hdr() *header {
	return h
}

func newHeader(t Type) header {
	return header{typ: t, refs: 1}
}

// TypeOf returns the type tag of an object.
func TypeOf(o Object) Type {
	return o.Type()
}

// Refs returns the current reference count of an object.
func Refs(o Object) uint32 {
	if o == nil {
		return 0
	}
	return o.hdr().refs
}

// IsAlive is a predicate: has the object not yet been destroyed?
func IsAlive(o Object) bool {
	return o != nil && !o.hdr().dead
}

// Retain adds an owner to o and returns o. Retaining a destroyed object is a
// programming error and panics.
func Retain(o Object) Object {
	if o == nil {
		return nil
	}
	h := o.hdr()
	if h.immortal {
		return o
	}
	if h.dead {
		panic(NewError(TypeMismatch, "retain", "live object", "released "+h.typ.String()))
	}
	if h.refs == math.MaxUint32 {
		panic(NewError(IndexOutOfRange, "retain", "reference count in range", "reference count overflow"))
	}
	h.refs++
	return o
}

// Release drops an owner of o. When the count reaches zero, o is destroyed:
// it releases every object and environment it owns.
// Releasing nil or an object whose count already is zero does nothing.
func Release(o Object) {
	for o != nil {
		h := o.hdr()
		if h.immortal || h.refs == 0 {
			return
		}
		h.refs--
		if h.refs > 0 {
			return
		}
		// destroy returns the next object to release, so that long
		// pair chains are torn down without deep recursion
		o = destroy(o)
	}
}

func destroy(o Object) Object {
	h := o.hdr()
	h.dead = true
	if traceRefs {
		tracer().Debugf("destroy %s", h.typ)
	}
	switch x := o.(type) {
	case *Integer, *Double, *Boolean, *Char, *Unspecified, *emptyList:
		// nothing owned
	case *String:
		x.value = nil
		x.length = 0
	case *Pair:
		left, right := x.left, x.right
		x.left, x.right = nil, nil
		Release(left)
		return right
	case *Vector:
		x.items.Each(func(_ int, item Object) {
			Release(item)
		})
		x.items.Clear()
	case *Lambda:
		x.callee.destroy()
	case *Evaluable:
		x.destroy()
	default:
		panic(fmt.Sprintf("destroy: unknown object type %T", o))
	}
	return nil
}

// traceRefs switches on tracing of object destruction. It is set from the
// configuration key "runtime.trace-refs" when a Runtime is created.
var traceRefs bool

// Truthy implements the boolean coercion of the language: every object is
// true except the boolean false. Evaluables have to be forced first.
func Truthy(o Object) (bool, error) {
	switch x := o.(type) {
	case nil:
		return false, NewError(TypeMismatch, "truthy", "object", "nil")
	case *Evaluable:
		return false, NewError(TypeMismatch, "truthy", "forced value", "unforced EVALUABLE")
	case *Boolean:
		return x.value, nil
	}
	return true, nil
}

// Repr returns a short external representation of an object, used in
// diagnostics.
func Repr(o Object) string {
	switch x := o.(type) {
	case nil:
		return "nil"
	case *Integer:
		return fmt.Sprintf("%d", x.value)
	case *Double:
		return fmt.Sprintf("%g", x.value)
	case *Boolean:
		if x.value {
			return "#t"
		}
		return "#f"
	case *Char:
		return fmt.Sprintf("#\\%c", x.value)
	case *String:
		return fmt.Sprintf("%q", string(x.value))
	case *emptyList:
		return "()"
	case *Pair:
		return reprPair(x)
	case *Vector:
		s := "#("
		x.items.Each(func(i int, item Object) {
			if i > 0 {
				s += " "
			}
			s += Repr(item)
		})
		return s + ")"
	case *Lambda:
		return fmt.Sprintf("#<procedure:%s>", x.callee.kind())
	case *Evaluable:
		return "#<promise>"
	case *Unspecified:
		return "#<unspecified>"
	}
	return fmt.Sprintf("#<%T>", o)
}

func reprPair(p *Pair) string {
	s := "(" + Repr(p.left)
	rest := p.right
	for {
		switch r := rest.(type) {
		case *Pair:
			s += " " + Repr(r.left)
			rest = r.right
			continue
		case *emptyList:
			return s + ")"
		}
		return s + " . " + Repr(rest) + ")"
	}
}
