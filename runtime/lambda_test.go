package runtime

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// add binds its arguments in the call environment and sums them up.
func add(env *Environment, args []Object) (Object, error) {
	var sum int64
	for i, arg := range args {
		v, err := IntValue(arg)
		if err != nil {
			return nil, err
		}
		env.Bind(string(rune('a'+i)), arg)
		sum += v
	}
	return MakeInt(sum), nil
}

func TestClosureLifecycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	def := NewEnvironment(nil)
	fn := MakeUser(add, def)
	if fn.Kind() != UserLambda {
		t.Errorf("expected user lambda, is %s", fn.Kind())
	}
	if def.Refs() != 2 {
		t.Errorf("expected closure to retain its environment, refs=%d", def.Refs())
	}
	args := ints(1, 2)
	for i := 0; i < 3; i++ {
		r, err := Call(fn, args)
		if err != nil {
			t.Fatal(err)
		}
		if Repr(r) != "3" {
			t.Errorf("expected 1+2=3, got %s", Repr(r))
		}
		Release(r)
	}
	if fn.CallEnvironments() != 3 {
		t.Errorf("expected 3 call environments, have %d", fn.CallEnvironments())
	}
	if def.Refs() != 5 {
		t.Errorf("expected closure and call environments to own the environment, refs=%d", def.Refs())
	}
	for _, a := range args {
		if Refs(a) != 4 {
			t.Errorf("expected each call environment to hold the argument once, refs=%d", Refs(a))
		}
	}
	def.Release()
	Release(fn)
	if def.IsAlive() {
		t.Errorf("expected defining environment to be destroyed, refs=%d", def.Refs())
	}
	for _, a := range args {
		if Refs(a) != 1 {
			t.Errorf("expected call environments to release arguments, refs=%d", Refs(a))
		}
	}
}

func TestLibraryLambda(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	count := LibraryFunc(func(args []Object) (Object, error) {
		return MakeInt(int64(len(args))), nil
	})
	fn := MakeLibrary(count)
	defer Release(fn)
	if fn.Kind() != LibraryLambda || fn.CallEnvironments() != 0 {
		t.Errorf("expected library lambda without call environments")
	}
	r, err := Call(fn, ints(1, 2, 3))
	if err != nil || Repr(r) != "3" {
		t.Errorf("expected 3 arguments to be counted, got %s (%v)", Repr(r), err)
	}
}

func TestCallNonLambda(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	if _, err := Call(MakeInt(1), nil); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected TypeMismatch calling an integer, got %v", err)
	}
	fn := MakeLibrary(func(args []Object) (Object, error) { return MakeUnspecified(), nil })
	Release(fn)
	if _, err := Call(fn, nil); KindOf(err) != TypeMismatch {
		t.Errorf("expected TypeMismatch calling a released lambda, got %v", err)
	}
}

func TestCallSpread(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	def := NewEnvironment(nil)
	fn := MakeUser(add, def)
	def.Release()
	defer Release(fn)
	tail := MakeList(ints(3, 4))
	defer Release(tail)
	args := append(ints(1, 2), tail)
	r, err := CallSpread(fn, args)
	if err != nil {
		t.Fatal(err)
	}
	if Repr(r) != "10" {
		t.Errorf("expected 1+2+3+4=10, got %s", Repr(r))
	}
	if _, err := CallSpread(fn, nil); KindOf(err) != ArityMismatch {
		t.Errorf("expected ArityMismatch without arguments, got %v", err)
	}
	if _, err := CallSpread(fn, ints(1, 2)); KindOf(err) != TypeMismatch {
		t.Errorf("expected TypeMismatch for non-list last argument, got %v", err)
	}
	if _, err := CallSpread(fn, []Object{EmptyList()}); err != nil {
		t.Errorf("expected empty spread to work, got %v", err)
	}
}

type countingInvoker struct {
	calls, frees int
}

func (c *countingInvoker) Invoke(args []Object) (Object, error) {
	c.calls++
	return MakeUnspecified(), nil
}
func (c *countingInvoker) Free()          { c.frees++ }
func (c *countingInvoker) String() string { return "counting" }

func TestNativeLambda(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	inv := &countingInvoker{}
	fn := MakeNative(inv)
	if fn.Kind() != NativeLambda {
		t.Errorf("expected native lambda, is %s", fn.Kind())
	}
	Call(fn, nil)
	Call(fn, nil)
	Release(fn)
	if inv.calls != 2 || inv.frees != 1 {
		t.Errorf("expected 2 calls and 1 free, have %d/%d", inv.calls, inv.frees)
	}
	if Repr(fn) != "#<procedure:native>" {
		t.Errorf("unexpected repr %s", Repr(fn))
	}
}
