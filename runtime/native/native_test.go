package native

import (
	"errors"
	"math"
	"os"
	"testing"

	"github.com/npillmayer/clisp/runtime"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func requireBridge(t *testing.T) {
	if !Available {
		t.Skip("native call bridge not available in this build")
	}
}

func TestParseType(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.native")
	defer teardown()
	//
	for name, expected := range map[string]Type{
		"integer": Integer, "int": Integer, "Double": Double,
		"char": Char, "string": String, "void": Void,
	} {
		if typ, err := ParseType(name); err != nil || typ != expected {
			t.Errorf("expected %q to parse as %v, got %v (%v)", name, expected, typ, err)
		}
	}
	if _, err := ParseType("pointer"); runtime.KindOf(err) != runtime.TypeMismatch {
		t.Errorf("expected TypeMismatch for unknown type name, got %v", err)
	}
}

func TestCandidates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.native")
	defer teardown()
	//
	if c := Candidates(""); len(c) != 0 {
		t.Errorf("expected no candidates for empty alias, got %v", c)
	}
	if c := Candidates("m"); len(c) == 0 || c[0] != "libm.so.6" {
		t.Errorf("expected libm.so.6 as first candidate for alias m, got %v", c)
	}
	if c := Candidates("z"); len(c) != 3 || c[0] != "libz.so" {
		t.Errorf("expected derived library names for alias z, got %v", c)
	}
	if c := Candidates("libfoo.so.1"); len(c) != 1 || c[0] != "libfoo.so.1" {
		t.Errorf("expected library name to be taken literally, got %v", c)
	}
	if a := KnownAliases(); len(a) != 4 || a[0] != "c" {
		t.Errorf("expected 4 sorted aliases, got %v", a)
	}
}

func TestNativeSignatureValidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.native")
	defer teardown()
	//
	if _, err := Native("abs", "", Integer, Void); runtime.KindOf(err) != runtime.TypeMismatch {
		t.Errorf("expected void argument to be rejected, got %v", err)
	}
	if _, err := Native("abs", "", Type(17), Integer); runtime.KindOf(err) != runtime.TypeMismatch {
		t.Errorf("expected invalid return type to be rejected, got %v", err)
	}
}

func TestNativeAbs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.native")
	defer teardown()
	requireBridge(t)
	//
	abs, err := Native("abs", "", Integer, Integer)
	if err != nil {
		t.Fatal(err)
	}
	defer runtime.Release(abs)
	if abs.Kind() != runtime.NativeLambda {
		t.Errorf("expected native lambda, is %v", abs.Kind())
	}
	arg := runtime.MakeInt(-7)
	defer runtime.Release(arg)
	r, err := runtime.Call(abs, []runtime.Object{arg})
	if err != nil {
		t.Fatal(err)
	}
	defer runtime.Release(r)
	if v, err := runtime.IntValue(r); err != nil || v != 7 {
		t.Errorf("expected abs(-7) = 7, got %s", runtime.Repr(r))
	}
	if runtime.Refs(arg) != 1 {
		t.Errorf("expected argument to be borrowed, refs=%d", runtime.Refs(arg))
	}
}

func TestNativeArgTypeMismatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.native")
	defer teardown()
	requireBridge(t)
	//
	abs, err := Native("abs", "c", Integer, Integer)
	if err != nil {
		t.Fatal(err)
	}
	defer runtime.Release(abs)
	s := runtime.MakeString("x")
	defer runtime.Release(s)
	_, err = runtime.Call(abs, []runtime.Object{s})
	if !errors.Is(err, runtime.ErrArgType) {
		t.Errorf("expected ArgTypeMismatch, got %v", err)
	}
	big := runtime.MakeInt(math.MaxInt32 + 1)
	defer runtime.Release(big)
	if _, err = runtime.Call(abs, []runtime.Object{big}); !errors.Is(err, runtime.ErrArgType) {
		t.Errorf("expected ArgTypeMismatch for integer out of C int range, got %v", err)
	}
	if _, err = runtime.Call(abs, nil); runtime.KindOf(err) != runtime.ArityMismatch {
		t.Errorf("expected ArityMismatch, got %v", err)
	}
}

func TestNativeLibraryAlias(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.native")
	defer teardown()
	requireBridge(t)
	//
	cos, err := Native("cos", "m", Double, Double)
	if err != nil {
		t.Fatal(err)
	}
	defer runtime.Release(cos)
	zero := runtime.MakeDouble(0)
	defer runtime.Release(zero)
	r, err := runtime.Call(cos, []runtime.Object{zero})
	if err != nil {
		t.Fatal(err)
	}
	defer runtime.Release(r)
	if v, _ := runtime.DoubleValue(r); v != 1.0 {
		t.Errorf("expected cos(0) = 1.0, got %s", runtime.Repr(r))
	}
}

func TestNativeStringArgument(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.native")
	defer teardown()
	requireBridge(t)
	//
	strlen, err := Native("strlen", "c", Integer, String)
	if err != nil {
		t.Fatal(err)
	}
	defer runtime.Release(strlen)
	s := runtime.MakeString("hello, world")
	defer runtime.Release(s)
	// arguments are forced before the call
	thunk := runtime.MakeEvaluable(func(*runtime.Environment) (runtime.Object, error) {
		return runtime.Retain(s), nil
	}, nil)
	defer runtime.Release(thunk)
	r, err := runtime.Call(strlen, []runtime.Object{thunk})
	if err != nil {
		t.Fatal(err)
	}
	defer runtime.Release(r)
	if v, _ := runtime.IntValue(r); v != 12 {
		t.Errorf("expected strlen = 12, got %s", runtime.Repr(r))
	}
}

func TestNativeSymbolNotFound(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.native")
	defer teardown()
	requireBridge(t)
	//
	_, err := Native("clisp_no_such_function", "c", Void)
	if !errors.Is(err, runtime.ErrSymbolMissing) {
		t.Errorf("expected SymbolNotFound, got %v", err)
	}
	_, err = Native("clisp_no_such_function", "clisp-no-such-lib", Void)
	if runtime.KindOf(err) != runtime.SymbolNotFound {
		t.Errorf("expected SymbolNotFound for missing library, got %v", err)
	}
}

func TestNativeBuiltin(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.native")
	defer teardown()
	requireBridge(t)
	//
	rt := runtime.NewRuntime(Builtins)
	defer rt.Close()
	native, err := rt.Globals.Lookup("native")
	if err != nil {
		t.Fatal(err)
	}
	args := []runtime.Object{
		runtime.MakeString("abs"), runtime.MakeString("c"),
		runtime.MakeString("integer"), runtime.MakeString("integer"),
	}
	abs, err := runtime.Call(native, args)
	for _, a := range args {
		runtime.Release(a)
	}
	if err != nil {
		t.Fatal(err)
	}
	defer runtime.Release(abs)
	n := runtime.MakeInt(-42)
	defer runtime.Release(n)
	r, err := runtime.Call(abs, []runtime.Object{n})
	if err != nil {
		t.Fatal(err)
	}
	defer runtime.Release(r)
	if v, _ := runtime.IntValue(r); v != 42 {
		t.Errorf("expected 42, got %s", runtime.Repr(r))
	}
}

// Calling strlen with an integer makes it dereference a bogus address.
// The fault guard replaces process signal handlers for the duration of the
// call, so this test only runs on request.
func TestNativeFault(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.native")
	defer teardown()
	requireBridge(t)
	if os.Getenv("CLISP_TEST_NATIVE_FAULT") == "" {
		t.Skip("set CLISP_TEST_NATIVE_FAULT to run")
	}
	//
	strlen, err := Native("strlen", "c", Integer, Integer)
	if err != nil {
		t.Fatal(err)
	}
	defer runtime.Release(strlen)
	one := runtime.MakeInt(1)
	defer runtime.Release(one)
	_, err = runtime.Call(strlen, []runtime.Object{one})
	if !errors.Is(err, runtime.ErrNativeFault) {
		t.Errorf("expected NativeCallFault, got %v", err)
	}
}
