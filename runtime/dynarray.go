package runtime

import "math"

// DynamicArray is a growable, indexed container. When full, its capacity
// grows by a factor of 1.5. Out-of-range access is reported as
// IndexOutOfRange instead of panicking.
type DynamicArray[T any] struct {
	data []T
}

const (
	basicCapacity      = 4
	capacityMultiplier = 1.5
)

// NewDynamicArray creates an empty array with the given initial capacity.
func NewDynamicArray[T any](capacity int) *DynamicArray[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &DynamicArray[T]{data: make([]T, 0, capacity)}
}

// Len returns the number of elements.
func (da *DynamicArray[T]) Len() int {
	return len(da.data)
}

// Cap returns the current capacity.
func (da *DynamicArray[T]) Cap() int {
	return cap(da.data)
}

func grownCapacity(c int) int {
	if c < basicCapacity {
		return basicCapacity
	}
	return int(math.Ceil(float64(c) * capacityMultiplier))
}

// Append adds an element at the end.
func (da *DynamicArray[T]) Append(v T) {
	if len(da.data) == cap(da.data) {
		grown := make([]T, len(da.data), grownCapacity(cap(da.data)))
		copy(grown, da.data)
		da.data = grown
	}
	da.data = append(da.data, v)
}

// At returns the element at index i.
func (da *DynamicArray[T]) At(i int) (T, error) {
	if i < 0 || i >= len(da.data) {
		var zero T
		return zero, Errorf(IndexOutOfRange, "dynamic-array", "index < size", "index %d of size %d", i, len(da.data))
	}
	return da.data[i], nil
}

// Set replaces the element at index i.
func (da *DynamicArray[T]) Set(i int, v T) error {
	if i < 0 || i >= len(da.data) {
		return Errorf(IndexOutOfRange, "dynamic-array", "index < size", "index %d of size %d", i, len(da.data))
	}
	da.data[i] = v
	return nil
}

// Pop removes and returns the last element.
func (da *DynamicArray[T]) Pop() (T, error) {
	var zero T
	n := len(da.data)
	if n == 0 {
		return zero, NewError(IndexOutOfRange, "dynamic-array", "non-empty array", "pop from empty array")
	}
	v := da.data[n-1]
	da.data[n-1] = zero
	da.data = da.data[:n-1]
	return v, nil
}

// Each calls f for every element, in order.
func (da *DynamicArray[T]) Each(f func(int, T)) {
	for i, v := range da.data {
		f(i, v)
	}
}

// Clear removes all elements but keeps the capacity.
func (da *DynamicArray[T]) Clear() {
	var zero T
	for i := range da.data {
		da.data[i] = zero
	}
	da.data = da.data[:0]
}
