package runtime

import (
	"fmt"
)

// NamedFunc is an entry of a builtin registration table.
type NamedFunc struct {
	Name string
	Func LibraryFunc
}

// CoreBuiltins is the table of pair, list, vector and type-predicate
// functions installed into every global environment. Arithmetic, comparison,
// logic and display functions are provided by separate tables handed to
// NewRuntime.
var CoreBuiltins = []NamedFunc{
	{"list", builtinList},
	{"cons", builtinCons},
	{"car", builtinCar},
	{"cdr", builtinCdr},
	{"set-car!", builtinSetCar},
	{"set-cdr!", builtinSetCdr},
	{"length", builtinLength},
	{"list-ref", builtinListRef},
	{"list?", typePredicate("list?", IsList)},
	{"pair?", typeIs("pair?", PairType)},
	{"null?", typeIs("null?", EmptyListType)},
	{"vector", builtinVector},
	{"vector-ref", builtinVectorRef},
	{"vector-length", builtinVectorLength},
	{"vector?", typeIs("vector?", VectorType)},
	{"number?", typePredicate("number?", IsNumeric)},
	{"integer?", typeIs("integer?", IntegerType)},
	{"double?", typeIs("double?", DoubleType)},
	{"char?", typeIs("char?", CharType)},
	{"string?", typeIs("string?", StringType)},
	{"boolean?", typeIs("boolean?", BooleanType)},
	{"procedure?", typeIs("procedure?", LambdaType)},
	{"promise?", builtinIsPromise},
	{"force", builtinForce},
	{"apply", builtinApply},
}

// --- Argument checking -------------------------------------------------------

// CountMode tells CheckArity how to compare argument counts.
type CountMode int8

// Count checking modes.
const (
	Exactly CountMode = iota
	AtLeast
)

// CheckArity checks the number of arguments of a library function.
func CheckArity(op string, args []Object, n int, mode CountMode) error {
	switch mode {
	case Exactly:
		if len(args) != n {
			return Errorf(ArityMismatch, op, fmt.Sprintf("%d arguments", n), "%d arguments", len(args))
		}
	case AtLeast:
		if len(args) < n {
			return Errorf(ArityMismatch, op, fmt.Sprintf("at least %d arguments", n), "%d arguments", len(args))
		}
	}
	return nil
}

// CheckType checks the type tag of an argument of a library function.
func CheckType(op string, arg Object, t Type) error {
	return checkLive(op, arg, t)
}

// ForceArgs forces every argument. The returned function drops the
// references which forcing added; callers have to call it once they are done
// with the forced arguments.
func ForceArgs(args []Object) ([]Object, func(), error) {
	forced := make([]Object, len(args))
	var owned []Object
	done := func() {
		for _, o := range owned {
			Release(o)
		}
	}
	for i, arg := range args {
		if _, ok := arg.(*Evaluable); !ok {
			forced[i] = arg
			continue
		}
		v, err := Force(arg)
		if err != nil {
			done()
			return nil, func() {}, err
		}
		owned = append(owned, v)
		forced[i] = v
	}
	return forced, done, nil
}

// forcing wraps a library function so that it receives forced arguments.
func forcing(fn func([]Object) (Object, error)) LibraryFunc {
	return func(args []Object) (Object, error) {
		forced, done, err := ForceArgs(args)
		if err != nil {
			return nil, err
		}
		defer done()
		return fn(forced)
	}
}

// --- Pairs and lists ---------------------------------------------------------

var builtinList = forcing(func(args []Object) (Object, error) {
	return MakeList(args), nil
})

var builtinCons = forcing(func(args []Object) (Object, error) {
	if err := CheckArity("cons", args, 2, Exactly); err != nil {
		return nil, err
	}
	return MakePair(args[0], args[1]), nil
})

var builtinCar = forcing(func(args []Object) (Object, error) {
	if err := CheckArity("car", args, 1, Exactly); err != nil {
		return nil, err
	}
	v, err := Car(args[0])
	return Retain(v), err
})

var builtinCdr = forcing(func(args []Object) (Object, error) {
	if err := CheckArity("cdr", args, 1, Exactly); err != nil {
		return nil, err
	}
	v, err := Cdr(args[0])
	return Retain(v), err
})

var builtinSetCar = forcing(func(args []Object) (Object, error) {
	if err := CheckArity("set-car!", args, 2, Exactly); err != nil {
		return nil, err
	}
	if err := SetCar(args[0], args[1]); err != nil {
		return nil, err
	}
	return MakeUnspecified(), nil
})

var builtinSetCdr = forcing(func(args []Object) (Object, error) {
	if err := CheckArity("set-cdr!", args, 2, Exactly); err != nil {
		return nil, err
	}
	if err := SetCdr(args[0], args[1]); err != nil {
		return nil, err
	}
	return MakeUnspecified(), nil
})

var builtinLength = forcing(func(args []Object) (Object, error) {
	if err := CheckArity("length", args, 1, Exactly); err != nil {
		return nil, err
	}
	n, err := ListLength(args[0])
	if err != nil {
		return nil, err
	}
	return MakeInt(int64(n)), nil
})

var builtinListRef = forcing(func(args []Object) (Object, error) {
	if err := CheckArity("list-ref", args, 2, Exactly); err != nil {
		return nil, err
	}
	i, err := IntValue(args[1])
	if err != nil {
		return nil, err
	}
	v, err := ListAt(args[0], int(i))
	if err != nil {
		return nil, err
	}
	return Retain(v), nil
})

// --- Vectors -----------------------------------------------------------------

var builtinVector = forcing(func(args []Object) (Object, error) {
	return MakeVectorFromSlice(args), nil
})

var builtinVectorRef = forcing(func(args []Object) (Object, error) {
	if err := CheckArity("vector-ref", args, 2, Exactly); err != nil {
		return nil, err
	}
	i, err := IntValue(args[1])
	if err != nil {
		return nil, err
	}
	v, err := VectorAt(args[0], int(i))
	if err != nil {
		return nil, err
	}
	return Retain(v), nil
})

var builtinVectorLength = forcing(func(args []Object) (Object, error) {
	if err := CheckArity("vector-length", args, 1, Exactly); err != nil {
		return nil, err
	}
	n, err := VectorLength(args[0])
	if err != nil {
		return nil, err
	}
	return MakeInt(int64(n)), nil
})

// --- Predicates --------------------------------------------------------------

func typePredicate(op string, pred func(Object) bool) LibraryFunc {
	return forcing(func(args []Object) (Object, error) {
		if err := CheckArity(op, args, 1, Exactly); err != nil {
			return nil, err
		}
		return MakeBoolean(pred(args[0])), nil
	})
}

func typeIs(op string, t Type) LibraryFunc {
	return typePredicate(op, func(o Object) bool {
		return IsAlive(o) && o.Type() == t
	})
}

// promise? must not force its argument.
func builtinIsPromise(args []Object) (Object, error) {
	if err := CheckArity("promise?", args, 1, Exactly); err != nil {
		return nil, err
	}
	return MakeBoolean(args[0] != nil && args[0].Type() == EvaluableType), nil
}

// --- Evaluation --------------------------------------------------------------

func builtinForce(args []Object) (Object, error) {
	if err := CheckArity("force", args, 1, Exactly); err != nil {
		return nil, err
	}
	if _, ok := args[0].(*Evaluable); ok {
		return Force(args[0])
	}
	return Retain(args[0]), nil
}

var builtinApply = forcing(func(args []Object) (Object, error) {
	if err := CheckArity("apply", args, 2, AtLeast); err != nil {
		return nil, err
	}
	return CallSpread(args[0], args[1:])
})
