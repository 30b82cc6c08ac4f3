package edn

import (
	"bytes"
	"cmp"
)

// Compare orders values by kind and then by a kind specific rule. It is a
// total order on scalars consistent with Equal: for strings, identifiers
// and numbers a result of zero means the values are equal.
//
// Collections, tagged literals and externals are ordered by hash, so zero
// only means "possibly equal" for them; callers that need equality must
// confirm it with Equal.
func Compare(a, b Value) int {
	if a == b {
		return 0
	}
	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}
	switch x := a.(type) {
	case *NilValue:
		return 0
	case *Bool:
		return compareBool(x.v, b.(*Bool).v)
	case *Int:
		return cmp.Compare(x.v, b.(*Int).v)
	case *Float:
		// cmp.Compare puts NaN first and treats -0 and 0 as equal.
		return cmp.Compare(x.v, b.(*Float).v)
	case *Ratio:
		y := b.(*Ratio)
		if c := cmp.Compare(x.num, y.num); c != 0 {
			return c
		}
		return cmp.Compare(x.den, y.den)
	case *Char:
		return cmp.Compare(x.r, b.(*Char).r)
	case *BigInt:
		return compareBigInt(x, b.(*BigInt))
	case *BigDecimal:
		y := b.(*BigDecimal)
		if c := compareBool(y.negative, x.negative); c != 0 {
			return c
		}
		return bytes.Compare(x.Canonical(), y.Canonical())
	case *String:
		return bytes.Compare(x.Bytes(), b.(*String).Bytes())
	case *Symbol:
		y := b.(*Symbol)
		return compareName(x.ns, x.name, y.ns, y.name)
	case *Keyword:
		y := b.(*Keyword)
		return compareName(x.ns, x.name, y.ns, y.name)
	}
	return cmp.Compare(Hash(a), Hash(b))
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// compareBigInt orders by numeric value.
func compareBigInt(x, y *BigInt) int {
	xneg := x.negative && !x.isZero()
	yneg := y.negative && !y.isZero()
	if xneg != yneg {
		if xneg {
			return -1
		}
		return 1
	}
	xc, yc := x.Canonical(), y.Canonical()
	c := cmp.Compare(len(xc), len(yc))
	if c == 0 {
		c = bytes.Compare(xc, yc)
	}
	if xneg {
		return -c
	}
	return c
}

func compareName(ans, aname, bns, bname []byte) int {
	if c := bytes.Compare(ans, bns); c != 0 {
		return c
	}
	return bytes.Compare(aname, bname)
}
