package runtime

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestNewEnvironment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	env := NewEnvironment(nil)
	if env == nil || !env.IsRoot() || env.Refs() != 1 {
		t.Fatal("expected new root environment with count 1")
	}
	env.Release()
	if env.IsAlive() {
		t.Error("expected environment to be destroyed")
	}
	if err := env.Bind("x", MakeInt(1)); KindOf(err) != TypeMismatch {
		t.Errorf("expected binding in destroyed environment to fail, got %v", err)
	}
}

func TestBindAndRebind(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	env := NewEnvironment(nil)
	v1, v2 := MakeInt(1), MakeInt(2)
	if err := env.Bind("x", v1); err != nil {
		t.Fatal(err)
	}
	if Refs(v1) != 2 {
		t.Errorf("expected bind to retain value, refs=%d", Refs(v1))
	}
	env.Bind("x", v2)
	if Refs(v1) != 1 || Refs(v2) != 2 {
		t.Errorf("expected rebind to release old value once, refs %d/%d", Refs(v1), Refs(v2))
	}
	if env.Size() != 1 {
		t.Errorf("expected a single binding, have %d", env.Size())
	}
	if x, err := env.Lookup("x"); err != nil || x != v2 {
		t.Errorf("expected x to be bound to 2, is %s", Repr(x))
	}
	env.Release()
	if Refs(v2) != 1 {
		t.Errorf("expected destroyed environment to release its values, refs=%d", Refs(v2))
	}
}

func TestNestedLookup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	parent := NewEnvironment(nil)
	child := NewEnvironment(parent)
	if parent.Refs() != 2 {
		t.Errorf("expected child to retain parent, refs=%d", parent.Refs())
	}
	parent.Bind("a", MakeInt(1))
	child.Bind("b", MakeInt(2))
	if a, err := child.Lookup("a"); err != nil || Repr(a) != "1" {
		t.Errorf("expected to find 'a' in parent scope, got %v", err)
	}
	if _, scope := child.Resolve("a"); scope != parent {
		t.Errorf("expected 'a' to resolve in parent, resolved in %v", scope)
	}
	if _, err := parent.Lookup("b"); !errors.Is(err, ErrUnbound) {
		t.Errorf("expected 'b' to be unbound in parent, got %v", err)
	}
	child.Bind("a", MakeInt(3))
	if a, _ := child.Lookup("a"); Repr(a) != "3" {
		t.Errorf("expected inner 'a' to shadow outer, got %s", Repr(a))
	}
	parent.Release()
	if !parent.IsAlive() {
		t.Fatal("parent must stay alive while child is alive")
	}
	child.Release()
	if parent.IsAlive() || child.IsAlive() {
		t.Error("expected both environments to be destroyed")
	}
}

func TestAssign(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	root := NewEnvironment(nil)
	inner := NewEnvironment(root)
	old := MakeInt(1)
	root.Bind("x", old)
	Release(old)
	r, err := inner.Assign("x", MakeInt(42))
	if err != nil {
		t.Fatal(err)
	}
	if r.Type() != UnspecifiedType {
		t.Errorf("expected assign to return unspecified, got %s", r.Type())
	}
	if IsAlive(old) {
		t.Error("expected replaced value to be released")
	}
	if x, _ := root.Lookup("x"); Repr(x) != "42" {
		t.Errorf("expected assignment to mutate the outer binding, x=%s", Repr(x))
	}
	if inner.Size() != 0 {
		t.Error("assign must not create a binding")
	}
	if _, err := inner.Assign("y", MakeInt(0)); !errors.Is(err, ErrUnbound) {
		t.Errorf("expected UnboundVariable, got %v", err)
	}
	inner.Release()
	root.Release()
}

func TestEachBinding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	env := NewEnvironmentWithCapacity(nil, 1)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		env.Bind(name, MakeString(name))
	}
	var names string
	env.Each(func(name string, v Object) {
		names += name
	})
	if names != "abcde" {
		t.Errorf("expected bindings in definition order, got %q", names)
	}
	env.Release()
}

func TestAdopt(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	parent := NewEnvironment(nil)
	scope := NewEnvironment(parent)
	v := MakeInt(7)
	scope.Bind("v", v)
	moved, err := Adopt(scope)
	if err != nil {
		t.Fatal(err)
	}
	if scope.IsAlive() {
		t.Error("expected source scope to be released")
	}
	if moved.Parent() != parent {
		t.Error("expected adopted scope to keep the parent")
	}
	if Refs(v) != 2 {
		t.Errorf("expected value to be retained once by the new scope, refs=%d", Refs(v))
	}
	if x, err := moved.Lookup("v"); err != nil || x != v {
		t.Errorf("expected 'v' in adopted scope, got %v", err)
	}
	moved.Release()
	parent.Release()
	if parent.IsAlive() || Refs(v) != 1 {
		t.Errorf("expected clean teardown, parent alive=%v refs=%d", parent.IsAlive(), Refs(v))
	}
}
