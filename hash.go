package edn

import (
	"math"
	"unsafe"
)

const (
	offset64 = 14695981039346656037
	prime64  = 1099511628211

	// unsetHash replaces a computed hash of zero, which would read as
	// "not yet computed".
	unsetHash = 0x9e3779b97f4a7c15

	maxHashDepth = 100

	canonicalNaN = 0x7ff8000000000001
)

func fnvByte(h uint64, b byte) uint64 {
	return (h ^ uint64(b)) * prime64
}

func fnvBytes(h uint64, b []byte) uint64 {
	for _, c := range b {
		h = (h ^ uint64(c)) * prime64
	}
	return h
}

func fnvUint64(h, x uint64) uint64 {
	for range 8 {
		h = (h ^ (x & 0xff)) * prime64
		x >>= 8
	}
	return h
}

// Hash returns a 64-bit hash of v consistent with Equal: equal values hash
// equally. Hashes of strings, big numbers, identifiers, collections, tagged
// literals and externals are memoized on the value.
func Hash(v Value) uint64 {
	h, _ := hashValue(v, 0)
	return h
}

// hashValue reports whether the hash covers the whole value. Hashes cut off
// at the depth limit are not memoized.
func hashValue(v Value, depth int) (uint64, bool) {
	if v == nil {
		return fnvByte(offset64, 0xff), true
	}
	k := v.Kind()
	if depth > maxHashDepth {
		return fnvByte(offset64, byte(k)), false
	}
	n := v.base()
	if n.hash != 0 {
		return n.hash, true
	}

	h := fnvByte(offset64, byte(k))
	complete := true
	memo := true
	switch x := v.(type) {
	case *NilValue:
		memo = false
	case *Bool:
		memo = false
		if x.v {
			h = fnvByte(h, 1)
		} else {
			h = fnvByte(h, 0)
		}
	case *Int:
		memo = false
		h = fnvUint64(h, uint64(x.v))
	case *Float:
		memo = false
		h = fnvUint64(h, floatBits(x.v))
	case *Ratio:
		memo = false
		h = fnvUint64(fnvUint64(h, uint64(x.num)), uint64(x.den))
	case *Char:
		memo = false
		h = fnvUint64(h, uint64(x.r))
	case *BigInt:
		if x.negative && !x.isZero() {
			h = fnvByte(h, '-')
		}
		h = fnvBytes(h, x.Canonical())
	case *BigDecimal:
		if x.negative {
			h = fnvByte(h, '-')
		}
		h = fnvBytes(h, x.Canonical())
	case *String:
		h = fnvBytes(h, x.Bytes())
	case *Symbol:
		h = hashName(h, x.ns, x.name)
	case *Keyword:
		h = hashName(h, x.ns, x.name)
	case *List:
		h, complete = hashOrdered(h, x.elems, depth)
	case *Vector:
		h, complete = hashOrdered(h, x.elems, depth)
	case *Set:
		var xor, sum uint64
		for _, e := range x.elems {
			eh, ok := hashValue(e, depth+1)
			complete = complete && ok
			xor ^= eh
			sum += eh
		}
		h = fnvUint64(fnvUint64(fnvUint64(h, uint64(len(x.elems))), xor), sum)
	case *Map:
		var xor, sum uint64
		for i, key := range x.keys {
			kh, ok1 := hashValue(key, depth+1)
			vh, ok2 := hashValue(x.vals[i], depth+1)
			complete = complete && ok1 && ok2
			eh := fnvUint64(fnvUint64(offset64, kh), vh)
			xor ^= eh
			sum += eh
		}
		h = fnvUint64(fnvUint64(fnvUint64(h, uint64(len(x.keys))), xor), sum)
	case *Tagged:
		h = fnvBytes(h, x.tag)
		ih, ok := hashValue(x.inner, depth+1)
		complete = ok
		h = fnvUint64(h, ih)
	case *External:
		h = fnvUint64(h, uint64(int64(x.typeID)))
		if et, ok := x.types.lookup(x.typeID); ok {
			if et.hash != nil {
				h = fnvUint64(h, et.hash(x.ptr))
			}
		} else {
			h = fnvUint64(h, uint64(uintptr(unsafe.Pointer(x))))
		}
	}
	if h == 0 {
		h = unsetHash
	}
	if memo && complete {
		n.hash = h
	}
	return h, complete
}

func hashName(h uint64, ns, name []byte) uint64 {
	h = fnvBytes(h, ns)
	h = fnvByte(h, '/')
	return fnvBytes(h, name)
}

func hashOrdered(h uint64, elems []Value, depth int) (uint64, bool) {
	complete := true
	h = fnvUint64(h, uint64(len(elems)))
	for _, e := range elems {
		eh, ok := hashValue(e, depth+1)
		complete = complete && ok
		h = fnvUint64(h, eh)
	}
	return h, complete
}

// floatBits maps equal floats to equal bits: every NaN to one pattern and
// negative zero to zero.
func floatBits(f float64) uint64 {
	if f != f {
		return canonicalNaN
	}
	if f == 0 {
		return 0
	}
	return math.Float64bits(f)
}
