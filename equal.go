package edn

import "bytes"

// maxEqualDepth bounds the recursion of Equal. Values nested deeper than
// this compare as not equal.
const maxEqualDepth = 100

// Equal reports whether a and b are structurally equal. Values of different
// kinds are never equal, NaN equals NaN, and sets and maps compare without
// regard to order. Metadata is ignored. Externals are equal only when they
// were created under the same TypeRegistry.
func Equal(a, b Value) bool {
	return equal(a, b, 0)
}

func equal(a, b Value, depth int) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || depth > maxEqualDepth {
		return false
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *NilValue:
		return true
	case *Bool:
		return x.v == b.(*Bool).v
	case *Int:
		return x.v == b.(*Int).v
	case *Float:
		y := b.(*Float).v
		return x.v == y || (x.v != x.v && y != y)
	case *Ratio:
		y := b.(*Ratio)
		return x.num == y.num && x.den == y.den
	case *Char:
		return x.r == b.(*Char).r
	case *BigInt:
		y := b.(*BigInt)
		if !bytes.Equal(x.Canonical(), y.Canonical()) {
			return false
		}
		return x.negative == y.negative || x.isZero()
	case *BigDecimal:
		y := b.(*BigDecimal)
		return x.negative == y.negative && bytes.Equal(x.Canonical(), y.Canonical())
	case *String:
		y := b.(*String)
		if !x.escaped && !y.escaped {
			return bytes.Equal(x.raw, y.raw)
		}
		return bytes.Equal(x.Bytes(), y.Bytes())
	case *Symbol:
		y := b.(*Symbol)
		return bytes.Equal(x.ns, y.ns) && bytes.Equal(x.name, y.name)
	case *Keyword:
		y := b.(*Keyword)
		return bytes.Equal(x.ns, y.ns) && bytes.Equal(x.name, y.name)
	case *List:
		return equalOrdered(x.elems, b.(*List).elems, depth)
	case *Vector:
		return equalOrdered(x.elems, b.(*Vector).elems, depth)
	case *Set:
		return equalSet(x, b.(*Set), depth)
	case *Map:
		return equalMap(x, b.(*Map), depth)
	case *Tagged:
		y := b.(*Tagged)
		return bytes.Equal(x.tag, y.tag) && equal(x.inner, y.inner, depth+1)
	case *External:
		y := b.(*External)
		if x.typeID != y.typeID || x.types != y.types {
			return false
		}
		if et, ok := x.types.lookup(x.typeID); ok {
			return et.equal(x.ptr, y.ptr)
		}
		return false
	}
	return false
}

func equalOrdered(a, b []Value, depth int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal(a[i], b[i], depth+1) {
			return false
		}
	}
	return true
}

// equalSet relies on both sets being free of duplicates: same size plus
// every element of a found in b means equal.
func equalSet(a, b *Set, depth int) bool {
	if len(a.elems) != len(b.elems) {
		return false
	}
	if len(a.elems) <= linearMax {
		for _, e := range a.elems {
			if findEqual(b.elems, e, depth+1) < 0 {
				return false
			}
		}
		return true
	}
	buckets := bucketByHash(b.elems)
	for _, e := range a.elems {
		if findEqualIndexed(b.elems, buckets[Hash(e)], e, depth+1) < 0 {
			return false
		}
	}
	return true
}

func equalMap(a, b *Map, depth int) bool {
	if len(a.keys) != len(b.keys) {
		return false
	}
	var buckets map[uint64][]int
	if len(a.keys) > linearMax {
		buckets = bucketByHash(b.keys)
	}
	for i, k := range a.keys {
		var j int
		if buckets == nil {
			j = findEqual(b.keys, k, depth+1)
		} else {
			j = findEqualIndexed(b.keys, buckets[Hash(k)], k, depth+1)
		}
		if j < 0 || !equal(a.vals[i], b.vals[j], depth+1) {
			return false
		}
	}
	return true
}

func findEqual(vs []Value, v Value, depth int) int {
	for i, e := range vs {
		if equal(e, v, depth) {
			return i
		}
	}
	return -1
}

func findEqualIndexed(vs []Value, candidates []int, v Value, depth int) int {
	for _, i := range candidates {
		if equal(vs[i], v, depth) {
			return i
		}
	}
	return -1
}

func bucketByHash(vs []Value) map[uint64][]int {
	m := make(map[uint64][]int, len(vs))
	for i, v := range vs {
		h := Hash(v)
		m[h] = append(m[h], i)
	}
	return m
}
