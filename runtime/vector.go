package runtime

// Vector is an array-backed sequence of objects. It owns one reference per
// element.
type Vector struct {
	header
	items *DynamicArray[Object]
}

// MakeVector creates an empty vector.
func MakeVector() *Vector {
	return MakeVectorWithCapacity(0)
}

// MakeVectorWithCapacity creates an empty vector with room for n elements.
func MakeVectorWithCapacity(n int) *Vector {
	return &Vector{header: newHeader(VectorType), items: NewDynamicArray[Object](n)}
}

// MakeVectorFromSlice creates a vector holding items, retaining each of them.
func MakeVectorFromSlice(items []Object) *Vector {
	v := MakeVectorWithCapacity(len(items))
	for _, item := range items {
		v.items.Append(Retain(item))
	}
	return v
}

func asVector(op string, o Object) (*Vector, error) {
	if err := checkLive(op, o, VectorType); err != nil {
		return nil, err
	}
	return o.(*Vector), nil
}

// VectorAppend appends item to a vector. The vector takes over the caller's
// reference to item.
func VectorAppend(o Object, item Object) error {
	v, err := asVector("vector-append", o)
	if err != nil {
		return err
	}
	v.items.Append(item)
	return nil
}

// VectorAt returns the i-th element of a vector. The result is borrowed.
func VectorAt(o Object, i int) (Object, error) {
	v, err := asVector("vector-ref", o)
	if err != nil {
		return nil, err
	}
	item, err := v.items.At(i)
	if err != nil {
		e := err.(*Error)
		e.Op = "vector-ref"
		return nil, e
	}
	return item, nil
}

// VectorLength returns the number of elements of a vector.
func VectorLength(o Object) (int, error) {
	v, err := asVector("vector-length", o)
	if err != nil {
		return 0, err
	}
	return v.items.Len(), nil
}
