package runtime

import (
	"errors"
	"testing"
)

func TestDynamicArrayGrowth(t *testing.T) {
	da := NewDynamicArray[int](0)
	if da.Cap() != 0 || da.Len() != 0 {
		t.Fatalf("expected empty array, got len=%d cap=%d", da.Len(), da.Cap())
	}
	da.Append(1)
	if da.Cap() != basicCapacity {
		t.Errorf("expected capacity %d after first append, is %d", basicCapacity, da.Cap())
	}
	for i := 2; i <= 5; i++ {
		da.Append(i)
	}
	if da.Cap() != 6 { // 4 * 1.5
		t.Errorf("expected capacity to grow to 6, is %d", da.Cap())
	}
	da.Append(6)
	da.Append(7)
	if da.Cap() != 9 {
		t.Errorf("expected capacity to grow to 9, is %d", da.Cap())
	}
	if v, err := da.At(6); err != nil || v != 7 {
		t.Errorf("expected element 7 at index 6, got %d (%v)", v, err)
	}
}

func TestDynamicArrayBounds(t *testing.T) {
	da := NewDynamicArray[string](2)
	da.Append("a")
	if _, err := da.At(1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected IndexOutOfRange, got %v", err)
	}
	if _, err := da.At(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected IndexOutOfRange for negative index, got %v", err)
	}
	if err := da.Set(0, "b"); err != nil {
		t.Error(err)
	}
	if v, _ := da.Pop(); v != "b" {
		t.Errorf("expected to pop 'b', got %q", v)
	}
	if _, err := da.Pop(); KindOf(err) != IndexOutOfRange {
		t.Errorf("expected IndexOutOfRange on empty pop, got %v", err)
	}
}

func TestDynamicArrayEachAndClear(t *testing.T) {
	da := NewDynamicArray[int](4)
	for i := 0; i < 10; i++ {
		da.Append(i * i)
	}
	sum := 0
	da.Each(func(i int, v int) {
		if v != i*i {
			t.Errorf("element %d should be %d, is %d", i, i*i, v)
		}
		sum += v
	})
	if sum != 285 {
		t.Errorf("expected sum of squares 285, got %d", sum)
	}
	c := da.Cap()
	da.Clear()
	if da.Len() != 0 || da.Cap() != c {
		t.Errorf("expected clear to keep capacity %d, len=%d cap=%d", c, da.Len(), da.Cap())
	}
}
