package edn

import (
	"bytes"
	"io"
	"math"
	"slices"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/KimNorgaard/go-edn/internal/strlit"
)

// Print writes v to w as EDN text that reads back to an equal value.
// Metadata is not written.
func Print(w io.Writer, v Value) error {
	_, err := w.Write(appendValue(nil, v))
	return err
}

// AppendText appends the EDN text of v to dst.
func AppendText(dst []byte, v Value) []byte {
	return appendValue(dst, v)
}

func appendValue(dst []byte, v Value) []byte {
	return printer{}.append(dst, v)
}

// printer renders values. In canonical mode set elements and map entries
// are sorted by their text, negative zero prints as zero and instants
// print in UTC, so equal values render identically.
type printer struct {
	canonical bool
}

func (p printer) append(dst []byte, v Value) []byte {
	switch x := v.(type) {
	case nil:
		return append(dst, "nil"...)
	case *NilValue:
		return append(dst, "nil"...)
	case *Bool:
		return strconv.AppendBool(dst, x.v)
	case *Int:
		return strconv.AppendInt(dst, x.v, 10)
	case *BigInt:
		if x.negative && !x.isZero() {
			dst = append(dst, '-')
		}
		dst = append(dst, x.Canonical()...)
		return append(dst, 'N')
	case *Float:
		return p.appendFloat(dst, x.v)
	case *BigDecimal:
		if x.negative {
			dst = append(dst, '-')
		}
		dst = append(dst, x.Canonical()...)
		return append(dst, 'M')
	case *Ratio:
		dst = strconv.AppendInt(dst, x.num, 10)
		dst = append(dst, '/')
		return strconv.AppendInt(dst, x.den, 10)
	case *Char:
		return appendChar(dst, x.r)
	case *String:
		return strlit.AppendQuoted(dst, x.Bytes())
	case *Symbol:
		return appendName(dst, x.ns, x.name)
	case *Keyword:
		return appendName(append(dst, ':'), x.ns, x.name)
	case *List:
		return p.appendSeq(append(dst, '('), x.elems, ')')
	case *Vector:
		return p.appendSeq(append(dst, '['), x.elems, ']')
	case *Set:
		if p.canonical {
			return p.appendSorted(append(dst, '#', '{'), x.elems, nil, '}')
		}
		return p.appendSeq(append(dst, '#', '{'), x.elems, '}')
	case *Map:
		if p.canonical {
			return p.appendSorted(append(dst, '{'), x.keys, x.vals, '}')
		}
		dst = append(dst, '{')
		for i, k := range x.keys {
			if i > 0 {
				dst = append(dst, ',', ' ')
			}
			dst = p.append(dst, k)
			dst = append(dst, ' ')
			dst = p.append(dst, x.vals[i])
		}
		return append(dst, '}')
	case *Tagged:
		dst = append(dst, '#')
		dst = append(dst, x.tag...)
		dst = append(dst, ' ')
		return p.append(dst, x.inner)
	case *External:
		return p.appendExternal(dst, x)
	}
	return dst
}

func (p printer) appendSeq(dst []byte, elems []Value, closer byte) []byte {
	for i, e := range elems {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = p.append(dst, e)
	}
	return append(dst, closer)
}

// appendSorted writes set elements, or map entries when vals is non-nil,
// in the order of their rendered text.
func (p printer) appendSorted(dst []byte, keys, vals []Value, closer byte) []byte {
	parts := make([][]byte, len(keys))
	for i, k := range keys {
		part := p.append(nil, k)
		if vals != nil {
			part = append(part, ' ')
			part = p.append(part, vals[i])
		}
		parts[i] = part
	}
	slices.SortFunc(parts, bytes.Compare)
	sep := []byte{' '}
	if vals != nil {
		sep = []byte{',', ' '}
	}
	return append(append(dst, bytes.Join(parts, sep)...), closer)
}

func (p printer) appendFloat(dst []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "##NaN"...)
	case math.IsInf(f, 1):
		return append(dst, "##Inf"...)
	case math.IsInf(f, -1):
		return append(dst, "##-Inf"...)
	}
	if p.canonical && f == 0 {
		f = 0
	}
	start := len(dst)
	dst = strconv.AppendFloat(dst, f, 'g', -1, 64)
	if !bytes.ContainsAny(dst[start:], ".e") {
		dst = append(dst, '.', '0')
	}
	return dst
}

func appendChar(dst []byte, r rune) []byte {
	dst = append(dst, '\\')
	if name, ok := strlit.CharName(r); ok {
		return append(dst, name...)
	}
	if r <= 0xFFFF && !unicode.IsPrint(r) {
		const hex = "0123456789abcdef"
		return append(dst, 'u', hex[r>>12&0xf], hex[r>>8&0xf], hex[r>>4&0xf], hex[r&0xf])
	}
	return utf8.AppendRune(dst, r)
}

func appendName(dst, ns, name []byte) []byte {
	if ns != nil {
		dst = append(dst, ns...)
		dst = append(dst, '/')
	}
	return append(dst, name...)
}

func (p printer) appendExternal(dst []byte, x *External) []byte {
	switch v := x.ptr.(type) {
	case time.Time:
		if p.canonical {
			v = v.UTC()
		}
		dst = append(dst, `#inst "`...)
		dst = v.AppendFormat(dst, time.RFC3339Nano)
		return append(dst, '"')
	case uuid.UUID:
		dst = append(dst, `#uuid "`...)
		dst = append(dst, v.String()...)
		return append(dst, '"')
	}
	dst = append(dst, "#edn/external ["...)
	dst = strconv.AppendInt(dst, int64(x.typeID), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendUint(dst, Hash(x), 10)
	return append(dst, ']')
}
