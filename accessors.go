package edn

// The getters below report ok == false, rather than panicking, when v is
// not of the requested kind.

// IsNil reports whether v is the nil value.
func IsNil(v Value) bool {
	_, ok := v.(*NilValue)
	return ok
}

// GetBool returns the value of a Bool.
func GetBool(v Value) (bool, bool) {
	if b, ok := v.(*Bool); ok {
		return b.v, true
	}
	return false, false
}

// GetInt returns the value of an Int.
func GetInt(v Value) (int64, bool) {
	if i, ok := v.(*Int); ok {
		return i.v, true
	}
	return 0, false
}

// GetBigInt returns the digits, sign and radix of a BigInt.
func GetBigInt(v Value) (digits []byte, negative bool, radix int, ok bool) {
	if b, ok := v.(*BigInt); ok {
		return b.digits, b.negative, b.radix, true
	}
	return nil, false, 0, false
}

// GetFloat returns the value of a Float.
func GetFloat(v Value) (float64, bool) {
	if f, ok := v.(*Float); ok {
		return f.v, true
	}
	return 0, false
}

// GetBigDecimal returns the text and sign of a BigDecimal.
func GetBigDecimal(v Value) (digits []byte, negative bool, ok bool) {
	if d, ok := v.(*BigDecimal); ok {
		return d.digits, d.negative, true
	}
	return nil, false, false
}

// GetRatio returns the numerator and denominator of a Ratio.
func GetRatio(v Value) (num, den int64, ok bool) {
	if r, ok := v.(*Ratio); ok {
		return r.num, r.den, true
	}
	return 0, 0, false
}

// GetChar returns the code point of a Char.
func GetChar(v Value) (rune, bool) {
	if c, ok := v.(*Char); ok {
		return c.r, true
	}
	return 0, false
}

// GetString returns the decoded bytes of a String.
func GetString(v Value) ([]byte, bool) {
	if s, ok := v.(*String); ok {
		return s.Bytes(), true
	}
	return nil, false
}

// GetSymbol returns the namespace and name of a Symbol. ns is nil when the
// symbol has no namespace.
func GetSymbol(v Value) (ns, name []byte, ok bool) {
	if s, ok := v.(*Symbol); ok {
		return s.ns, s.name, true
	}
	return nil, nil, false
}

// GetKeyword returns the namespace and name of a Keyword.
func GetKeyword(v Value) (ns, name []byte, ok bool) {
	if k, ok := v.(*Keyword); ok {
		return k.ns, k.name, true
	}
	return nil, nil, false
}

// Count returns the number of elements of a list, vector or set, or the
// number of entries of a map.
func Count(v Value) (int, bool) {
	switch x := v.(type) {
	case *List:
		return len(x.elems), true
	case *Vector:
		return len(x.elems), true
	case *Set:
		return len(x.elems), true
	case *Map:
		return len(x.keys), true
	}
	return 0, false
}

// Index returns the i'th element of a list, vector or set. ok is false if
// v is not one of those or i is out of range.
func Index(v Value, i int) (Value, bool) {
	var elems []Value
	switch x := v.(type) {
	case *List:
		elems = x.elems
	case *Vector:
		elems = x.elems
	case *Set:
		elems = x.elems
	default:
		return nil, false
	}
	if i < 0 || i >= len(elems) {
		return nil, false
	}
	return elems[i], true
}

// MapEntry returns the key and value of the i'th entry of a map.
func MapEntry(v Value, i int) (key, val Value, ok bool) {
	m, ok := v.(*Map)
	if !ok || i < 0 || i >= len(m.keys) {
		return nil, nil, false
	}
	return m.keys[i], m.vals[i], true
}

// Lookup returns the value stored under key in a map.
func Lookup(v, key Value) (Value, bool) {
	if m, ok := v.(*Map); ok {
		return m.Get(key)
	}
	return nil, false
}

// Contains reports whether a map has the key, or a set the element.
func Contains(v, key Value) bool {
	switch x := v.(type) {
	case *Map:
		return x.Contains(key)
	case *Set:
		return x.Contains(key)
	}
	return false
}

// GetTagged returns the tag and inner value of a Tagged literal.
func GetTagged(v Value) (tag []byte, inner Value, ok bool) {
	if t, ok := v.(*Tagged); ok {
		return t.tag, t.inner, true
	}
	return nil, nil, false
}

// GetExternal returns the payload and type id of an External.
func GetExternal(v Value) (ptr any, typeID int, ok bool) {
	if e, ok := v.(*External); ok {
		return e.ptr, e.typeID, true
	}
	return nil, 0, false
}
