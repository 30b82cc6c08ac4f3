package edn

import (
	"fmt"
	"math"
	"math/big"

	"github.com/KimNorgaard/go-edn/internal/arena"
	"github.com/KimNorgaard/go-edn/internal/number"
)

// Arena owns the values of one document. Everything allocated from it is
// released together by Release. An Arena is not safe for concurrent use.
//
// Tag readers receive the arena of the read that invoked them and should
// build their results with its New methods. The New methods return nil
// when the arena's byte budget is exhausted.
type Arena struct {
	mem   *arena.Arena
	types *TypeRegistry

	ints      arena.Slab[Int]
	bigints   arena.Slab[BigInt]
	floats    arena.Slab[Float]
	decimals  arena.Slab[BigDecimal]
	ratios    arena.Slab[Ratio]
	chars     arena.Slab[Char]
	strings   arena.Slab[String]
	symbols   arena.Slab[Symbol]
	keywords  arena.Slab[Keyword]
	lists     arena.Slab[List]
	vectors   arena.Slab[Vector]
	sets      arena.Slab[Set]
	maps      arena.Slab[Map]
	tagged    arena.Slab[Tagged]
	externals arena.Slab[External]
	values    arena.Slab[Value]
	slots     arena.Slab[int32]
	hashes    arena.Slab[uint64]
}

// NewArena returns an arena without a byte limit whose External values use
// the default type registry.
func NewArena() *Arena {
	return newArena(arena.DefaultBlockSize, 0, defaultTypes)
}

func newArena(blockSize, limit int, types *TypeRegistry) *Arena {
	return &Arena{mem: arena.New(blockSize, limit), types: types}
}

// Release frees every value allocated from the arena.
func (a *Arena) Release() {
	if a != nil {
		a.mem.Release()
	}
}

// Used reports the number of bytes the arena has reserved.
func (a *Arena) Used() int { return a.mem.Used() }

// bytes returns n bytes from the arena, or from the heap if a is nil or
// exhausted. It is used for caches filled after the read has finished.
func (a *Arena) bytes(n int) []byte {
	if a != nil {
		if b := a.mem.Alloc(n); b != nil {
			return b
		}
	}
	return make([]byte, n)
}

func (a *Arena) copyBytes(s string) []byte {
	b := a.mem.Alloc(len(s))
	if b == nil {
		return nil
	}
	copy(b, s)
	return b
}

func (a *Arena) makeValues(n int) []Value {
	return arena.Make(a.mem, &a.values, n)
}

func (a *Arena) newInt(v int64, radix int) *Int {
	x := arena.NewOf(a.mem, &a.ints)
	if x != nil {
		x.v, x.radix = v, radix
	}
	return x
}

func (a *Arena) newBigInt(digits []byte, negative bool, radix int, separated bool) *BigInt {
	x := arena.NewOf(a.mem, &a.bigints)
	if x != nil {
		*x = BigInt{digits: digits, negative: negative, radix: radix, separated: separated, a: a}
	}
	return x
}

func (a *Arena) newFloat(v float64) *Float {
	x := arena.NewOf(a.mem, &a.floats)
	if x != nil {
		x.v = v
	}
	return x
}

func (a *Arena) newBigDecimal(digits []byte, negative, separated bool) *BigDecimal {
	x := arena.NewOf(a.mem, &a.decimals)
	if x != nil {
		*x = BigDecimal{digits: digits, negative: negative, separated: separated, a: a}
	}
	return x
}

func (a *Arena) newRatio(num, den int64) *Ratio {
	x := arena.NewOf(a.mem, &a.ratios)
	if x != nil {
		x.num, x.den = num, den
	}
	return x
}

func (a *Arena) newChar(r rune) *Char {
	x := arena.NewOf(a.mem, &a.chars)
	if x != nil {
		x.r = r
	}
	return x
}

func (a *Arena) newString(raw []byte, escaped bool) *String {
	x := arena.NewOf(a.mem, &a.strings)
	if x != nil {
		*x = String{raw: raw, escaped: escaped, a: a}
	}
	return x
}

func (a *Arena) newSymbol(ns, name []byte) *Symbol {
	x := arena.NewOf(a.mem, &a.symbols)
	if x != nil {
		x.ns, x.name = ns, name
	}
	return x
}

func (a *Arena) newKeyword(ns, name []byte) *Keyword {
	x := arena.NewOf(a.mem, &a.keywords)
	if x != nil {
		x.ns, x.name = ns, name
	}
	return x
}

func (a *Arena) newList(elems []Value) *List {
	x := arena.NewOf(a.mem, &a.lists)
	if x != nil {
		x.elems = elems
	}
	return x
}

func (a *Arena) newVector(elems []Value) *Vector {
	x := arena.NewOf(a.mem, &a.vectors)
	if x != nil {
		x.elems = elems
	}
	return x
}

func (a *Arena) newSet(elems []Value) *Set {
	x := arena.NewOf(a.mem, &a.sets)
	if x != nil {
		x.elems = elems
	}
	return x
}

func (a *Arena) newMap(keys, vals []Value) *Map {
	x := arena.NewOf(a.mem, &a.maps)
	if x != nil {
		x.keys, x.vals = keys, vals
	}
	return x
}

func (a *Arena) newTagged(tag []byte, inner Value) *Tagged {
	x := arena.NewOf(a.mem, &a.tagged)
	if x != nil {
		x.tag, x.inner = tag, inner
	}
	return x
}

// NewInt returns an Int.
func (a *Arena) NewInt(v int64) *Int { return a.newInt(v, 10) }

// NewFloat returns a Float.
func (a *Arena) NewFloat(v float64) *Float { return a.newFloat(v) }

// NewChar returns a Char.
func (a *Arena) NewChar(r rune) *Char { return a.newChar(r) }

// NewBigInt returns a BigInt holding a copy of x.
func (a *Arena) NewBigInt(x *big.Int) *BigInt {
	digits := a.copyBytes(new(big.Int).Abs(x).Text(10))
	if digits == nil {
		return nil
	}
	return a.newBigInt(digits, x.Sign() < 0, 10, false)
}

// NewBigDecimal returns a BigDecimal for decimal text such as "-1.25" or
// "6.02e23", without the M suffix.
func (a *Arena) NewBigDecimal(s string) (*BigDecimal, error) {
	buf := a.mem.Alloc(len(s) + 1)
	if buf == nil {
		return nil, ErrOutOfMemory
	}
	copy(buf, s)
	buf[len(s)] = 'M'
	r, err := number.Parse(buf, 0, number.Options{})
	if err != nil || r.Kind != number.BigDecimal || r.End != len(buf) {
		return nil, fmt.Errorf("edn: invalid decimal %q", s)
	}
	x := a.newBigDecimal(r.Digits, r.Negative, false)
	if x == nil {
		return nil, ErrOutOfMemory
	}
	return x, nil
}

// NewRatio returns num/den in lowest terms. The result is an *Int when the
// denominator reduces to one.
func (a *Arena) NewRatio(num, den int64) (Value, error) {
	if den == 0 {
		return nil, fmt.Errorf("edn: zero ratio denominator")
	}
	if den < 0 {
		if num == math.MinInt64 || den == math.MinInt64 {
			return nil, fmt.Errorf("edn: ratio %d/%d out of range", num, den)
		}
		num, den = -num, -den
	}
	num, den = number.Reduce(num, den)
	if den == 1 {
		if x := a.newInt(num, 10); x != nil {
			return x, nil
		}
		return nil, ErrOutOfMemory
	}
	if x := a.newRatio(num, den); x != nil {
		return x, nil
	}
	return nil, ErrOutOfMemory
}

// NewString returns a String holding a copy of s.
func (a *Arena) NewString(s string) *String {
	raw := a.copyBytes(s)
	if raw == nil {
		return nil
	}
	return a.newString(raw, false)
}

// NewSymbol returns a Symbol. An empty ns means no namespace.
func (a *Arena) NewSymbol(ns, name string) *Symbol {
	nsb, nameb, ok := a.copyName(ns, name)
	if !ok {
		return nil
	}
	return a.newSymbol(nsb, nameb)
}

// NewKeyword returns a Keyword. An empty ns means no namespace.
func (a *Arena) NewKeyword(ns, name string) *Keyword {
	nsb, nameb, ok := a.copyName(ns, name)
	if !ok {
		return nil
	}
	return a.newKeyword(nsb, nameb)
}

func (a *Arena) copyName(ns, name string) (nsb, nameb []byte, ok bool) {
	buf := a.copyBytes(ns + name)
	if buf == nil {
		return nil, nil, false
	}
	if ns != "" {
		nsb = buf[:len(ns):len(ns)]
	}
	return nsb, buf[len(ns):], true
}

// NewList returns a List of elems.
func (a *Arena) NewList(elems ...Value) *List {
	vs := a.cloneValues(elems)
	if vs == nil {
		return nil
	}
	return a.newList(vs)
}

// NewVector returns a Vector of elems.
func (a *Arena) NewVector(elems ...Value) *Vector {
	vs := a.cloneValues(elems)
	if vs == nil {
		return nil
	}
	return a.newVector(vs)
}

// NewSet returns a Set of elems. Two equal elements fail with
// ErrDuplicateElement.
func (a *Arena) NewSet(elems ...Value) (*Set, error) {
	vs := a.cloneValues(elems)
	if vs == nil {
		return nil, ErrOutOfMemory
	}
	if dup, ok := a.duplicate(vs); ok {
		return nil, &Error{Code: ErrDuplicateElement, Message: "duplicate set element " + dup.String()}
	}
	if x := a.newSet(vs); x != nil {
		return x, nil
	}
	return nil, ErrOutOfMemory
}

// NewMap returns a Map from parallel key and value slices. Two equal keys
// fail with ErrDuplicateKey.
func (a *Arena) NewMap(keys, vals []Value) (*Map, error) {
	if len(keys) != len(vals) {
		return nil, fmt.Errorf("edn: %d keys but %d values", len(keys), len(vals))
	}
	ks, vs := a.cloneValues(keys), a.cloneValues(vals)
	if ks == nil || vs == nil {
		return nil, ErrOutOfMemory
	}
	if dup, ok := a.duplicate(ks); ok {
		return nil, &Error{Code: ErrDuplicateKey, Message: "duplicate map key " + dup.String()}
	}
	if x := a.newMap(ks, vs); x != nil {
		return x, nil
	}
	return nil, ErrOutOfMemory
}

// NewTagged returns a Tagged literal.
func (a *Arena) NewTagged(tag string, inner Value) *Tagged {
	t := a.copyBytes(tag)
	if t == nil {
		return nil
	}
	return a.newTagged(t, inner)
}

// NewExternal returns an External wrapping ptr. Equality and hashing use
// the arena's type registry entry for typeID.
func (a *Arena) NewExternal(ptr any, typeID int) *External {
	x := arena.NewOf(a.mem, &a.externals)
	if x != nil {
		*x = External{ptr: ptr, typeID: typeID, types: a.types}
	}
	return x
}

func (a *Arena) cloneValues(vs []Value) []Value {
	out := a.makeValues(len(vs))
	if out != nil {
		copy(out, vs)
	}
	return out
}
