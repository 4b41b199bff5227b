package main

import (
	"math"

	"github.com/npillmayer/clisp/runtime"
	"github.com/pterm/pterm"
)

// sandboxBuiltins adds arithmetic, comparison and display to the core
// builtins of the runtime.
var sandboxBuiltins = []runtime.NamedFunc{
	{Name: "+", Func: arithmetic("+", 0, func(a, b float64) float64 { return a + b })},
	{Name: "*", Func: arithmetic("*", 1, func(a, b float64) float64 { return a * b })},
	{Name: "-", Func: arithmetic("-", 0, func(a, b float64) float64 { return a - b })},
	{Name: "/", Func: arithmetic("/", 1, func(a, b float64) float64 { return a / b })},
	{Name: "<", Func: comparison("<", func(a, b float64) bool { return a < b })},
	{Name: "=", Func: comparison("=", func(a, b float64) bool { return a == b })},
	{Name: "not", Func: builtinNot},
	{Name: "display", Func: builtinDisplay},
}

// arithmetic folds its arguments. The result is an Integer if every
// argument is an Integer and the result is integral, a Double otherwise.
func arithmetic(op string, unit float64, f func(a, b float64) float64) runtime.LibraryFunc {
	return func(args []runtime.Object) (runtime.Object, error) {
		forced, done, err := runtime.ForceArgs(args)
		if err != nil {
			return nil, err
		}
		defer done()
		acc, integral := unit, true
		for i, arg := range forced {
			v, err := runtime.NumericValue(arg)
			if err != nil {
				return nil, err
			}
			integral = integral && arg.Type() == runtime.IntegerType
			if i == 0 && len(forced) > 1 {
				acc = v
				continue
			}
			acc = f(acc, v)
		}
		if integral && acc == math.Trunc(acc) && !math.IsInf(acc, 0) {
			return runtime.MakeInt(int64(acc)), nil
		}
		return runtime.MakeDouble(acc), nil
	}
}

func comparison(op string, f func(a, b float64) bool) runtime.LibraryFunc {
	return func(args []runtime.Object) (runtime.Object, error) {
		if err := runtime.CheckArity(op, args, 2, runtime.Exactly); err != nil {
			return nil, err
		}
		forced, done, err := runtime.ForceArgs(args)
		if err != nil {
			return nil, err
		}
		defer done()
		a, err := runtime.NumericValue(forced[0])
		if err != nil {
			return nil, err
		}
		b, err := runtime.NumericValue(forced[1])
		if err != nil {
			return nil, err
		}
		return runtime.MakeBoolean(f(a, b)), nil
	}
}

func builtinNot(args []runtime.Object) (runtime.Object, error) {
	if err := runtime.CheckArity("not", args, 1, runtime.Exactly); err != nil {
		return nil, err
	}
	forced, done, err := runtime.ForceArgs(args)
	if err != nil {
		return nil, err
	}
	defer done()
	t, err := runtime.Truthy(forced[0])
	if err != nil {
		return nil, err
	}
	return runtime.MakeBoolean(!t), nil
}

func builtinDisplay(args []runtime.Object) (runtime.Object, error) {
	forced, done, err := runtime.ForceArgs(args)
	if err != nil {
		return nil, err
	}
	defer done()
	for _, arg := range forced {
		if s, err := runtime.StringValue(arg); err == nil {
			pterm.Print(s)
			continue
		}
		pterm.Print(runtime.Repr(arg))
	}
	pterm.Println()
	return runtime.MakeUnspecified(), nil
}
