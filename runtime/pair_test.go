package runtime

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func ints(n ...int64) []Object {
	objs := make([]Object, len(n))
	for i, v := range n {
		objs[i] = MakeInt(v)
	}
	return objs
}

func releaseAll(objs []Object) {
	for _, o := range objs {
		Release(o)
	}
}

func TestMakeList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	items := ints(10, 20, 30)
	l := MakeList(items)
	if n, err := ListLength(l); err != nil || n != 3 {
		t.Fatalf("expected list of length 3, got %d (%v)", n, err)
	}
	if v, _ := ListAt(l, 2); Repr(v) != "30" {
		t.Errorf("expected 30 at index 2, got %s", Repr(v))
	}
	if _, err := ListAt(l, 3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected IndexOutOfRange for index 3, got %v", err)
	}
	for _, item := range items {
		if Refs(item) != 2 {
			t.Errorf("expected item to be retained exactly once, refs=%d", Refs(item))
		}
	}
	for p, ok := l.(*Pair); ok; p, ok = p.right.(*Pair) {
		if Refs(p) != 1 {
			t.Errorf("expected every pair to have count 1, is %d", Refs(p))
		}
	}
	Release(l)
	for _, item := range items {
		if Refs(item) != 1 {
			t.Errorf("expected release of list to release item, refs=%d", Refs(item))
		}
	}
	releaseAll(items)
}

func TestEmptyMakeList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	l := MakeList(nil)
	if l != EmptyList() {
		t.Errorf("expected empty list, got %s", Repr(l))
	}
	if n, _ := ListLength(l); n != 0 {
		t.Errorf("expected length 0, got %d", n)
	}
}

func TestImproperList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	a, b := MakeInt(1), MakeInt(2)
	p := MakePair(a, b)
	Release(a)
	Release(b)
	if IsList(p) {
		t.Error("dotted pair must not be a list")
	}
	if _, err := ListLength(p); KindOf(err) != TypeMismatch {
		t.Errorf("expected TypeMismatch, got %v", err)
	}
	if _, err := Car(a); KindOf(err) != TypeMismatch {
		t.Errorf("expected car of integer to fail, got %v", err)
	}
	Release(p)
	if IsAlive(a) || IsAlive(b) {
		t.Error("expected pair to release both sides")
	}
}

func TestSetCarSetCdr(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	items := ints(1, 2)
	l := MakeList(items)
	x := MakeString("x")
	if err := SetCar(l, x); err != nil {
		t.Fatal(err)
	}
	if Refs(items[0]) != 1 || Refs(x) != 2 {
		t.Errorf("expected old car released and new car retained, refs %d/%d", Refs(items[0]), Refs(x))
	}
	if err := SetCdr(l, EmptyList()); err != nil {
		t.Fatal(err)
	}
	if Refs(items[1]) != 1 {
		t.Errorf("expected dropped tail to release its element, refs=%d", Refs(items[1]))
	}
	if r := Repr(l); r != `("x")` {
		t.Errorf("unexpected list after mutation: %s", r)
	}
	Release(l)
	Release(x)
	releaseAll(items)
	if IsAlive(x) {
		t.Error("expected x to be destroyed")
	}
}

func TestLongListRelease(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clisp.runtime")
	defer teardown()
	//
	items := make([]Object, 100000)
	for i := range items {
		items[i] = MakeUnspecified()
	}
	l := MakeList(items)
	releaseAll(items)
	Release(l)
	if IsAlive(items[len(items)-1]) {
		t.Error("expected last element to be destroyed with the list")
	}
}
