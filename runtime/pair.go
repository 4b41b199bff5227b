package runtime

// --- Pairs and lists ---------------------------------------------------------

// Pair is a cons cell. Both sides are owned references.
type Pair struct {
	header
	left  Object
	right Object
}

type emptyList struct {
	header
}

// theEmptyList terminates every well-formed list. It is never destroyed;
// retaining and releasing it has no effect.
var theEmptyList = &emptyList{header: header{typ: EmptyListType, refs: 1, immortal: true}}

// EmptyList returns the empty list.
func EmptyList() Object {
	return theEmptyList
}

// MakePair creates a pair, retaining left and right.
func MakePair(left, right Object) *Pair {
	Retain(left)
	Retain(right)
	return &Pair{header: newHeader(PairType), left: left, right: right}
}

// cons creates a pair which takes over the caller's reference to right.
func cons(left, right Object) *Pair {
	Retain(left)
	return &Pair{header: newHeader(PairType), left: left, right: right}
}

func asPair(op string, o Object) (*Pair, error) {
	if err := checkLive(op, o, PairType); err != nil {
		return nil, err
	}
	return o.(*Pair), nil
}

// Car returns the left side of a pair. The result is borrowed.
func Car(o Object) (Object, error) {
	p, err := asPair("car", o)
	if err != nil {
		return nil, err
	}
	return p.left, nil
}

// Cdr returns the right side of a pair. The result is borrowed.
func Cdr(o Object) (Object, error) {
	p, err := asPair("cdr", o)
	if err != nil {
		return nil, err
	}
	return p.right, nil
}

// SetCar replaces the left side of a pair, releasing the old value.
func SetCar(o Object, v Object) error {
	p, err := asPair("set-car!", o)
	if err != nil {
		return err
	}
	Retain(v)
	old := p.left
	p.left = v
	Release(old)
	return nil
}

// SetCdr replaces the right side of a pair, releasing the old value.
func SetCdr(o Object, v Object) error {
	p, err := asPair("set-cdr!", o)
	if err != nil {
		return err
	}
	Retain(v)
	old := p.right
	p.right = v
	Release(old)
	return nil
}

// MakeList builds a list from items. Every item is retained exactly once.
// Every interior pair ends up with a count of 1, owned by its predecessor;
// the first pair is owned by the caller. An empty slice yields the empty list.
func MakeList(items []Object) Object {
	var list Object = theEmptyList
	for i := len(items) - 1; i >= 0; i-- {
		list = cons(items[i], list)
	}
	return list
}

// IsList is a predicate: is o a chain of pairs terminated by the empty
// list? No reference counts are touched.
func IsList(o Object) bool {
	for {
		switch x := o.(type) {
		case *emptyList:
			return true
		case *Pair:
			if x.dead {
				return false
			}
			o = x.right
		default:
			return false
		}
	}
}

// ListLength returns the number of elements of a list.
func ListLength(o Object) (int, error) {
	if !IsList(o) {
		return 0, NewError(TypeMismatch, "length", "list", describe(o))
	}
	n := 0
	for p, ok := o.(*Pair); ok; p, ok = p.right.(*Pair) {
		n++
	}
	return n, nil
}

// ListAt returns the i-th element of a list. The result is borrowed.
func ListAt(o Object, i int) (Object, error) {
	if !IsList(o) {
		return nil, NewError(TypeMismatch, "list-ref", "list", describe(o))
	}
	if i >= 0 {
		k := 0
		for p, ok := o.(*Pair); ok; p, ok = p.right.(*Pair) {
			if k == i {
				return p.left, nil
			}
			k++
		}
	}
	n, _ := ListLength(o)
	return nil, Errorf(IndexOutOfRange, "list-ref", "index < length", "index %d of length %d", i, n)
}

// ListToSlice returns the elements of a list. The elements are borrowed.
func ListToSlice(o Object) ([]Object, error) {
	n, err := ListLength(o)
	if err != nil {
		return nil, err
	}
	items := make([]Object, 0, n)
	for p, ok := o.(*Pair); ok; p, ok = p.right.(*Pair) {
		items = append(items, p.left)
	}
	return items, nil
}
