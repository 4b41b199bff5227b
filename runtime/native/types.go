package native

import (
	"fmt"
	"strings"

	"github.com/npillmayer/clisp/runtime"
)

// Type is a type tag of a native signature.
type Type int8

// Native type tags. The numeric values are shared with the C side of the
// bridge.
const (
	Integer Type = iota // C int
	Double              // C double
	Char                // C char
	String              // C char*, copied in both directions
	Void                // no value; maps to Unspecified
)

var nativeTypeNames = [...]string{"integer", "double", "char", "string", "void"}

func (t Type) String() string {
	if t < Integer || t > Void {
		return fmt.Sprintf("native type %d", int(t))
	}
	return nativeTypeNames[t]
}

// ParseType converts a type name ("integer", "double", "char", "string",
// "void") into a Type.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "integer", "int":
		return Integer, nil
	case "double", "float":
		return Double, nil
	case "char":
		return Char, nil
	case "string":
		return String, nil
	case "void":
		return Void, nil
	}
	return Void, runtime.NewError(runtime.TypeMismatch, "native", "integer|double|char|string|void", name)
}

// objectType returns the runtime type tag an argument of type t must carry.
func (t Type) objectType() runtime.Type {
	switch t {
	case Integer:
		return runtime.IntegerType
	case Double:
		return runtime.DoubleType
	case Char:
		return runtime.CharType
	case String:
		return runtime.StringType
	}
	return runtime.UnspecifiedType
}

func (t Type) valid() bool {
	return t >= Integer && t <= Void
}
