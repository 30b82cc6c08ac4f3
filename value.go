package edn

import (
	"bytes"
	"math/big"

	"github.com/KimNorgaard/go-edn/internal/number"
	"github.com/KimNorgaard/go-edn/internal/strlit"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindBigInt
	KindFloat
	KindBigDecimal
	KindRatio
	KindChar
	KindString
	KindSymbol
	KindKeyword
	KindList
	KindVector
	KindSet
	KindMap
	KindTagged
	KindExternal
)

var kindNames = [...]string{
	KindNil:        "nil",
	KindBool:       "bool",
	KindInt:        "int",
	KindBigInt:     "bigint",
	KindFloat:      "float",
	KindBigDecimal: "bigdecimal",
	KindRatio:      "ratio",
	KindChar:       "char",
	KindString:     "string",
	KindSymbol:     "symbol",
	KindKeyword:    "keyword",
	KindList:       "list",
	KindVector:     "vector",
	KindSet:        "set",
	KindMap:        "map",
	KindTagged:     "tagged",
	KindExternal:   "external",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Value is an EDN value. The set of implementations is closed; switch on
// the concrete type or on Kind.
//
// Textual values alias the input buffer they were read from, so the buffer
// must not be modified while the value is in use. Values read from one
// document must not be used after the document is released.
type Value interface {
	// Kind returns the variant of the value.
	Kind() Kind
	// String returns the value as EDN text.
	String() string

	base() *node
}

// node carries the state shared by every value: the memoized hash (zero
// while unset) and attached metadata.
type node struct {
	hash uint64
	meta *Map
}

func (n *node) base() *node { return n }

// NilValue is the type of Nil.
type NilValue struct{ node }

// Bool is true or false.
type Bool struct {
	node
	v bool
}

// Int is a 64-bit integer.
type Int struct {
	node
	v     int64
	radix int
}

// BigInt is an integer that does not fit in 64 bits, or one written with
// the N suffix. Its digits alias the input.
type BigInt struct {
	node
	digits    []byte
	negative  bool
	radix     int
	separated bool
	canon     []byte
	a         *Arena
}

// Float is a 64-bit IEEE 754 number.
type Float struct {
	node
	v float64
}

// BigDecimal is an arbitrary precision decimal written with the M suffix.
// Its text aliases the input.
type BigDecimal struct {
	node
	digits    []byte
	negative  bool
	separated bool
	canon     []byte
	a         *Arena
}

// Ratio is a fraction in lowest terms with a denominator greater than one.
type Ratio struct {
	node
	num, den int64
}

// Char is a Unicode code point.
type Char struct {
	node
	r rune
}

// String is a string literal. The raw body aliases the input and is decoded
// on first use.
type String struct {
	node
	raw     []byte
	escaped bool
	decoded []byte
	a       *Arena
}

// Symbol is an optionally namespaced symbol.
type Symbol struct {
	node
	ns, name []byte
}

// Keyword is an optionally namespaced keyword.
type Keyword struct {
	node
	ns, name []byte
}

// List is an ordered sequence written with parentheses.
type List struct {
	node
	elems []Value
}

// Vector is an ordered sequence written with brackets.
type Vector struct {
	node
	elems []Value
}

// Set is an unordered collection of distinct values.
type Set struct {
	node
	elems []Value
}

// Map is an unordered collection of entries with distinct keys, stored as
// parallel key and value slices.
type Map struct {
	node
	keys []Value
	vals []Value
}

// Tagged is a tagged literal kept as is because no reader handled it.
type Tagged struct {
	node
	tag   []byte
	inner Value
}

// External holds host data produced by a tag reader. Equality and hashing
// are delegated to the TypeRegistry entry for its type id. Externals from
// arenas with different type registries are never equal.
type External struct {
	node
	ptr    any
	typeID int
	types  *TypeRegistry
}

var (
	// Nil is the nil value.
	Nil = &NilValue{}
	// True and False are the boolean values.
	True  = &Bool{v: true}
	False = &Bool{v: false}
)

func (*NilValue) Kind() Kind   { return KindNil }
func (*Bool) Kind() Kind       { return KindBool }
func (*Int) Kind() Kind        { return KindInt }
func (*BigInt) Kind() Kind     { return KindBigInt }
func (*Float) Kind() Kind      { return KindFloat }
func (*BigDecimal) Kind() Kind { return KindBigDecimal }
func (*Ratio) Kind() Kind      { return KindRatio }
func (*Char) Kind() Kind       { return KindChar }
func (*String) Kind() Kind     { return KindString }
func (*Symbol) Kind() Kind     { return KindSymbol }
func (*Keyword) Kind() Kind    { return KindKeyword }
func (*List) Kind() Kind       { return KindList }
func (*Vector) Kind() Kind     { return KindVector }
func (*Set) Kind() Kind        { return KindSet }
func (*Map) Kind() Kind        { return KindMap }
func (*Tagged) Kind() Kind     { return KindTagged }
func (*External) Kind() Kind   { return KindExternal }

func (v *NilValue) String() string   { return string(appendValue(nil, v)) }
func (v *Bool) String() string       { return string(appendValue(nil, v)) }
func (v *Int) String() string        { return string(appendValue(nil, v)) }
func (v *BigInt) String() string     { return string(appendValue(nil, v)) }
func (v *Float) String() string      { return string(appendValue(nil, v)) }
func (v *BigDecimal) String() string { return string(appendValue(nil, v)) }
func (v *Ratio) String() string      { return string(appendValue(nil, v)) }
func (v *Char) String() string       { return string(appendValue(nil, v)) }
func (v *String) String() string     { return string(appendValue(nil, v)) }
func (v *Symbol) String() string     { return string(appendValue(nil, v)) }
func (v *Keyword) String() string    { return string(appendValue(nil, v)) }
func (v *List) String() string       { return string(appendValue(nil, v)) }
func (v *Vector) String() string     { return string(appendValue(nil, v)) }
func (v *Set) String() string        { return string(appendValue(nil, v)) }
func (v *Map) String() string        { return string(appendValue(nil, v)) }
func (v *Tagged) String() string     { return string(appendValue(nil, v)) }
func (v *External) String() string   { return string(appendValue(nil, v)) }

// Value returns the boolean.
func (b *Bool) Value() bool { return b.v }

// Value returns the integer.
func (i *Int) Value() int64 { return i.v }

// Radix returns the base the integer was written in.
func (i *Int) Radix() int {
	if i.radix == 0 {
		return 10
	}
	return i.radix
}

// Digits returns the digit text as written, without sign, prefix or suffix.
func (b *BigInt) Digits() []byte { return b.digits }

// Negative reports whether the integer is negative.
func (b *BigInt) Negative() bool { return b.negative }

// Radix returns the base of Digits.
func (b *BigInt) Radix() int { return b.radix }

// Canonical returns the decimal digits of the magnitude with separators and
// leading zeros removed. It is computed once.
func (b *BigInt) Canonical() []byte {
	if b.canon != nil {
		return b.canon
	}
	digits := b.digits
	if b.separated {
		digits = number.CleanDigits(b.a.bytes(len(digits))[:0], digits)
	}
	if b.radix != 10 {
		x, _ := new(big.Int).SetString(string(digits), b.radix)
		digits = x.Append(b.a.bytes(len(digits) * 2)[:0], 10)
	}
	for len(digits) > 1 && digits[0] == '0' {
		digits = digits[1:]
	}
	b.canon = digits
	return digits
}

func (b *BigInt) isZero() bool {
	c := b.Canonical()
	return len(c) == 1 && c[0] == '0'
}

// Big returns the integer as a big.Int.
func (b *BigInt) Big() *big.Int {
	x, _ := new(big.Int).SetString(string(b.Canonical()), 10)
	if b.negative {
		x.Neg(x)
	}
	return x
}

// Value returns the float.
func (f *Float) Value() float64 { return f.v }

// Digits returns the decimal text as written, without sign or suffix.
func (d *BigDecimal) Digits() []byte { return d.digits }

// Negative reports whether the decimal is negative.
func (d *BigDecimal) Negative() bool { return d.negative }

// Canonical returns the decimal text without separators and with a lower
// case exponent marker. It is computed once.
func (d *BigDecimal) Canonical() []byte {
	if d.canon != nil {
		return d.canon
	}
	if !d.separated && bytes.IndexByte(d.digits, 'E') < 0 {
		d.canon = d.digits
		return d.canon
	}
	out := number.CleanDigits(d.a.bytes(len(d.digits))[:0], d.digits)
	for i, c := range out {
		if c == 'E' {
			out[i] = 'e'
		}
	}
	d.canon = out
	return out
}

// Float returns the decimal as a big.Float with enough precision to hold
// every digit.
func (d *BigDecimal) Float() *big.Float {
	prec := uint(len(d.digits))*4 + 64
	f, _, _ := big.ParseFloat(string(d.Canonical()), 10, prec, big.ToNearestEven)
	if f == nil {
		f = new(big.Float)
	}
	if d.negative {
		f.Neg(f)
	}
	return f
}

// Num returns the numerator.
func (r *Ratio) Num() int64 { return r.num }

// Den returns the denominator, which is always greater than one.
func (r *Ratio) Den() int64 { return r.den }

// Rat returns the ratio as a big.Rat.
func (r *Ratio) Rat() *big.Rat { return big.NewRat(r.num, r.den) }

// Value returns the code point.
func (c *Char) Value() rune { return c.r }

// Raw returns the body of the literal between the quotes, undecoded.
func (s *String) Raw() []byte { return s.raw }

// HasEscapes reports whether the literal contains escape sequences.
func (s *String) HasEscapes() bool { return s.escaped }

// Bytes returns the decoded string. Without escapes this is the raw body;
// otherwise the body is decoded once into the arena.
func (s *String) Bytes() []byte {
	if !s.escaped {
		return s.raw
	}
	if s.decoded == nil {
		s.decoded = strlit.Decode(s.a.bytes(len(s.raw))[:0], s.raw)
	}
	return s.decoded
}

// Value returns the decoded string.
func (s *String) Value() string { return string(s.Bytes()) }

// Namespace returns the namespace, or nil if there is none.
func (s *Symbol) Namespace() []byte { return s.ns }

// Name returns the name.
func (s *Symbol) Name() []byte { return s.name }

// Namespace returns the namespace, or nil if there is none.
func (k *Keyword) Namespace() []byte { return k.ns }

// Name returns the name, without the leading colon.
func (k *Keyword) Name() []byte { return k.name }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elems) }

// At returns the i'th element.
func (l *List) At(i int) Value { return l.elems[i] }

// Elems returns the elements. The slice must not be modified.
func (l *List) Elems() []Value { return l.elems }

// Len returns the number of elements.
func (v *Vector) Len() int { return len(v.elems) }

// At returns the i'th element.
func (v *Vector) At(i int) Value { return v.elems[i] }

// Elems returns the elements. The slice must not be modified.
func (v *Vector) Elems() []Value { return v.elems }

// Len returns the number of elements.
func (s *Set) Len() int { return len(s.elems) }

// At returns the i'th element in read order.
func (s *Set) At(i int) Value { return s.elems[i] }

// Elems returns the elements in read order. The slice must not be modified.
func (s *Set) Elems() []Value { return s.elems }

// Contains reports whether the set holds a value equal to v.
func (s *Set) Contains(v Value) bool { return indexOf(s.elems, v) >= 0 }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Key returns the key of the i'th entry in read order.
func (m *Map) Key(i int) Value { return m.keys[i] }

// Val returns the value of the i'th entry in read order.
func (m *Map) Val(i int) Value { return m.vals[i] }

// Get returns the value stored under a key equal to k.
func (m *Map) Get(k Value) (Value, bool) {
	i := indexOf(m.keys, k)
	if i < 0 {
		return nil, false
	}
	return m.vals[i], true
}

// Contains reports whether the map has a key equal to k.
func (m *Map) Contains(k Value) bool { return indexOf(m.keys, k) >= 0 }

// Tag returns the tag without the leading '#'.
func (t *Tagged) Tag() []byte { return t.tag }

// Inner returns the tagged value.
func (t *Tagged) Inner() Value { return t.inner }

// Value returns the host data.
func (e *External) Value() any { return e.ptr }

// TypeID returns the type id the data was registered under.
func (e *External) TypeID() int { return e.typeID }

// Meta returns the metadata attached to v, or nil.
func Meta(v Value) *Map {
	if v == nil {
		return nil
	}
	return v.base().meta
}

// indexOf returns the index of the element of vs equal to v, or -1. Hashes
// are compared first once the slice is long enough for it to pay off.
func indexOf(vs []Value, v Value) int {
	if len(vs) <= linearMax {
		for i, e := range vs {
			if Equal(e, v) {
				return i
			}
		}
		return -1
	}
	h := Hash(v)
	for i, e := range vs {
		if Hash(e) == h && Equal(e, v) {
			return i
		}
	}
	return -1
}
