package runtime

// --- Primitive objects ------------------------------------------------------

// Integer is a signed machine word.
type Integer struct {
	header
	value int64
}

// Double is an IEEE-754 double.
type Double struct {
	header
	value float64
}

// Boolean is #t or #f.
type Boolean struct {
	header
	value bool
}

// Char is a single byte character.
type Char struct {
	header
	value byte
}

// String owns a byte buffer and caches its length.
type String struct {
	header
	value  []byte
	length int
}

// Unspecified is the result of operations without a meaningful value.
type Unspecified struct {
	header
}

// MakeInt creates an Integer.
func MakeInt(v int64) *Integer {
	return &Integer{header: newHeader(IntegerType), value: v}
}

// MakeDouble creates a Double.
func MakeDouble(v float64) *Double {
	return &Double{header: newHeader(DoubleType), value: v}
}

// MakeBoolean creates a Boolean.
func MakeBoolean(v bool) *Boolean {
	return &Boolean{header: newHeader(BooleanType), value: v}
}

// MakeTrue creates #t.
func MakeTrue() *Boolean {
	return MakeBoolean(true)
}

// MakeFalse creates #f.
func MakeFalse() *Boolean {
	return MakeBoolean(false)
}

// MakeChar creates a Char.
func MakeChar(v byte) *Char {
	return &Char{header: newHeader(CharType), value: v}
}

// MakeString creates a String. The bytes of s are copied into a buffer
// owned by the new object.
func MakeString(s string) *String {
	buf := make([]byte, len(s))
	copy(buf, s)
	return &String{header: newHeader(StringType), value: buf, length: len(buf)}
}

// MakeUnspecified creates an Unspecified marker.
func MakeUnspecified() *Unspecified {
	return &Unspecified{header: newHeader(UnspecifiedType)}
}

// Value returns the integer payload.
func (i *Integer) Value() int64 { return i.value }

// Value returns the double payload.
func (d *Double) Value() float64 { return d.value }

// Value returns the boolean payload.
func (b *Boolean) Value() bool { return b.value }

// Value returns the character payload.
func (c *Char) Value() byte { return c.value }

// Value returns a copy of the string payload.
func (s *String) Value() string { return string(s.value) }

// Len returns the cached length of the string.
func (s *String) Len() int { return s.length }

// --- Typed accessors ---------------------------------------------------------

func checkLive(op string, o Object, t Type) error {
	if o == nil {
		return NewError(TypeMismatch, op, t.String(), "nil")
	}
	if o.hdr().dead {
		return NewError(TypeMismatch, op, "live "+t.String(), "released "+o.Type().String())
	}
	if o.Type() != t {
		return typeError(op, t, o)
	}
	return nil
}

// IntValue returns the payload of an Integer.
func IntValue(o Object) (int64, error) {
	if err := checkLive("int-value", o, IntegerType); err != nil {
		return 0, err
	}
	return o.(*Integer).value, nil
}

// DoubleValue returns the payload of a Double.
func DoubleValue(o Object) (float64, error) {
	if err := checkLive("double-value", o, DoubleType); err != nil {
		return 0, err
	}
	return o.(*Double).value, nil
}

// NumericValue returns the payload of an Integer or a Double as float64.
func NumericValue(o Object) (float64, error) {
	switch x := o.(type) {
	case *Integer:
		if !x.dead {
			return float64(x.value), nil
		}
	case *Double:
		if !x.dead {
			return x.value, nil
		}
	}
	return 0, NewError(TypeMismatch, "numeric-value", "INTEGER or DOUBLE", describe(o))
}

// BooleanValue returns the payload of a Boolean.
func BooleanValue(o Object) (bool, error) {
	if err := checkLive("boolean-value", o, BooleanType); err != nil {
		return false, err
	}
	return o.(*Boolean).value, nil
}

// CharValue returns the payload of a Char.
func CharValue(o Object) (byte, error) {
	if err := checkLive("char-value", o, CharType); err != nil {
		return 0, err
	}
	return o.(*Char).value, nil
}

// StringValue returns the payload of a String.
func StringValue(o Object) (string, error) {
	if err := checkLive("string-value", o, StringType); err != nil {
		return "", err
	}
	return string(o.(*String).value), nil
}

// StringLength returns the cached length of a String.
func StringLength(o Object) (int, error) {
	if err := checkLive("string-length", o, StringType); err != nil {
		return 0, err
	}
	return o.(*String).length, nil
}

// IsNumeric is a predicate: is o an Integer or a Double?
func IsNumeric(o Object) bool {
	if o == nil {
		return false
	}
	t := o.Type()
	return t == IntegerType || t == DoubleType
}
