package native

import (
	"fmt"
	"math"
	"strings"
	"unsafe"

	"github.com/cnf/structhash"
	"github.com/npillmayer/clisp/runtime"
)

// Signature describes a resolved native function. It implements
// runtime.NativeInvoker.
type Signature struct {
	Symbol  string
	Library string // library alias, "" for process symbols
	Return  Type
	Args    []Type
	fn      unsafe.Pointer // C function pointer, never a Go pointer
}

var _ runtime.NativeInvoker = (*Signature)(nil)

func (sig *Signature) String() string {
	args := make([]string, len(sig.Args))
	for i, a := range sig.Args {
		args[i] = a.String()
	}
	lib := sig.Library
	if lib == "" {
		lib = "process"
	}
	return fmt.Sprintf("%s %s(%s) [%s]", sig.Return, sig.Symbol, strings.Join(args, ", "), lib)
}

// Native resolves a native function and wraps it into a native lambda. No
// call happens at this point.
//
// Symbol resolution order is: (1) symbols already loaded into the process,
// (2) the shared libraries the alias stands for, in the order of Candidates.
// If neither provides the symbol, Native fails with SymbolNotFound.
func Native(symbol, alias string, ret Type, args ...Type) (*runtime.Lambda, error) {
	if !ret.valid() {
		return nil, runtime.Errorf(runtime.TypeMismatch, "native "+symbol, "return type", "%v", ret)
	}
	for i, a := range args {
		if !a.valid() || a == Void {
			return nil, runtime.Errorf(runtime.TypeMismatch, "native "+symbol,
				"integer|double|char|string", "%v for argument %d", a, i+1)
		}
	}
	fn, err := resolve(symbol, alias)
	if err != nil {
		return nil, err
	}
	sig := &Signature{
		Symbol:  symbol,
		Library: alias,
		Return:  ret,
		Args:    append([]Type(nil), args...),
		fn:      fn,
	}
	tracer().Debugf("native function %s", sig)
	return runtime.MakeNative(sig), nil
}

// Invoke calls the native function with args. Arguments are forced first;
// then the number and type tags of the arguments are checked against the
// signature. A mismatch is reported before any foreign call happens.
func (sig *Signature) Invoke(args []runtime.Object) (runtime.Object, error) {
	op := "native " + sig.Symbol
	if sig.fn == nil {
		return nil, runtime.NewError(runtime.SymbolNotFound, op, "resolved function", "freed signature")
	}
	if len(args) != len(sig.Args) {
		return nil, runtime.Errorf(runtime.ArityMismatch, op,
			fmt.Sprintf("%d arguments", len(sig.Args)), "%d arguments", len(args))
	}
	forced, done, err := runtime.ForceArgs(args)
	if err != nil {
		return nil, err
	}
	defer done()
	for i, t := range sig.Args {
		if err := checkArg(op, i, t, forced[i]); err != nil {
			return nil, err
		}
	}
	return callForeign(sig, forced, faultTrapEnabled())
}

func checkArg(op string, i int, t Type, arg runtime.Object) error {
	expected := fmt.Sprintf("%s for argument %d", t.objectType(), i+1)
	if !runtime.IsAlive(arg) || arg.Type() != t.objectType() {
		actual := "nil"
		if arg != nil {
			actual = arg.Type().String() + " " + runtime.Repr(arg)
		}
		return runtime.NewError(runtime.ArgTypeMismatch, op, expected, actual)
	}
	if t == Integer {
		v, _ := runtime.IntValue(arg)
		if v < math.MinInt32 || v > math.MaxInt32 {
			return runtime.Errorf(runtime.ArgTypeMismatch, op, "C int range for argument "+fmt.Sprint(i+1), "%d", v)
		}
	}
	return nil
}

// Free drops the resolved function pointer. Libraries stay loaded.
func (sig *Signature) Free() {
	sig.fn = nil
}

// --- Symbol resolution -------------------------------------------------------

type symbolKey struct {
	Symbol  string
	Library string
}

var (
	symbolCache  = map[string]unsafe.Pointer{} // structhash(symbolKey) → function
	libraryCache = map[string]unsafe.Pointer{} // shared-object name → handle
)

func cacheKey(symbol, alias string) string {
	h, err := structhash.Hash(symbolKey{Symbol: symbol, Library: alias}, 1)
	if err != nil { // cannot happen for a struct of strings
		return alias + "\x00" + symbol
	}
	return h
}

func resolve(symbol, alias string) (unsafe.Pointer, error) {
	key := cacheKey(symbol, alias)
	if fn, ok := symbolCache[key]; ok {
		return fn, nil
	}
	fn := processSymbol(symbol)
	if fn != nil {
		tracer().Debugf("symbol %s found in process", symbol)
		symbolCache[key] = fn
		return fn, nil
	}
	var tried []string
	var loadErr error
	for _, name := range Candidates(alias) {
		h, err := loadLibrary(name)
		if err != nil {
			tracer().Debugf("cannot load %s: %v", name, err)
			tried = append(tried, name)
			loadErr = err
			continue
		}
		if fn = librarySymbol(h, symbol); fn != nil {
			tracer().Debugf("symbol %s found in %s", symbol, name)
			symbolCache[key] = fn
			return fn, nil
		}
		tried = append(tried, name)
	}
	where := "process"
	if len(tried) > 0 {
		where += ", " + strings.Join(tried, ", ")
	}
	e := runtime.Errorf(runtime.SymbolNotFound, "native "+symbol,
		"exported symbol", "not found in %s", where)
	if loadErr != nil {
		e.Err = fmt.Errorf("last library error: %w", loadErr)
	}
	return nil, e
}

func loadLibrary(name string) (unsafe.Pointer, error) {
	if h, ok := libraryCache[name]; ok {
		return h, nil
	}
	h, err := openLibrary(name)
	if err != nil {
		return nil, err
	}
	libraryCache[name] = h
	return h, nil
}

// CloseLibraries unloads every shared library opened by the bridge and
// forgets all resolved symbols. Native lambdas created before must not be
// called afterwards.
func CloseLibraries() {
	for name, h := range libraryCache {
		closeLibrary(h)
		delete(libraryCache, name)
	}
	symbolCache = map[string]unsafe.Pointer{}
}

// --- Builtin -----------------------------------------------------------------

// Builtins is a registration table providing
//
//    (native "symbol" "alias" "ret-type" "arg-type" …)
//
// to CLisp programs. Pass it to runtime.NewRuntime.
var Builtins = []runtime.NamedFunc{
	{Name: "native", Func: builtinNative},
}

func builtinNative(args []runtime.Object) (runtime.Object, error) {
	if err := runtime.CheckArity("native", args, 3, runtime.AtLeast); err != nil {
		return nil, err
	}
	forced, done, err := runtime.ForceArgs(args)
	if err != nil {
		return nil, err
	}
	defer done()
	names := make([]string, len(forced))
	for i, a := range forced {
		s, err := runtime.StringValue(a)
		if err != nil {
			return nil, err
		}
		names[i] = s
	}
	ret, err := ParseType(names[2])
	if err != nil {
		return nil, err
	}
	types := make([]Type, 0, len(names)-3)
	for _, n := range names[3:] {
		t, err := ParseType(n)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	fn, err := Native(names[0], names[1], ret, types...)
	if err != nil {
		return nil, err
	}
	return fn, nil
}
