package edn

import (
	"bytes"
	"io"
	"slices"
)

// lineWidth is the column a collection must end before for it to stay on
// one line.
const lineWidth = 80

// AppendIndent appends the text of v to dst. A collection that does not fit
// on the rest of its line is written with each element (each entry of a
// map) on its own line, indented one level deeper than the collection,
// and the closing delimiter on a line of its own. An empty indent writes
// everything on one line, as AppendText does. Metadata is not written.
func AppendIndent(dst []byte, v Value, indent string) []byte {
	return formatter{indent: indent}.append(dst, v, 0)
}

// PrintIndent writes v to w as AppendIndent formats it.
func PrintIndent(w io.Writer, v Value, indent string) error {
	_, err := w.Write(AppendIndent(nil, v, indent))
	return err
}

// CanonicalIndent is Canonical laid out as AppendIndent lays out values.
func CanonicalIndent(v Value, indent string) []byte {
	return formatter{p: printer{canonical: true}, indent: indent}.append(nil, v, 0)
}

type formatter struct {
	p      printer
	indent string
}

func (f formatter) append(dst []byte, v Value, depth int) []byte {
	flat := f.p.append(nil, v)
	if f.indent == "" || column(dst)+len(flat) <= lineWidth {
		return append(dst, flat...)
	}
	switch x := v.(type) {
	case *List:
		return f.appendSeq(append(dst, '('), x.elems, ')', depth)
	case *Vector:
		return f.appendSeq(append(dst, '['), x.elems, ']', depth)
	case *Set:
		elems := x.elems
		if f.p.canonical {
			elems = f.sorted(elems)
		}
		return f.appendSeq(append(dst, '#', '{'), elems, '}', depth)
	case *Map:
		return f.appendMap(dst, x, depth)
	case *Tagged:
		dst = append(dst, '#')
		dst = append(dst, x.tag...)
		dst = append(dst, ' ')
		return f.append(dst, x.inner, depth)
	}
	return append(dst, flat...)
}

func (f formatter) appendSeq(dst []byte, elems []Value, closer byte, depth int) []byte {
	if len(elems) == 0 {
		return append(dst, closer)
	}
	for _, e := range elems {
		dst = f.newline(dst, depth+1)
		dst = f.append(dst, e, depth+1)
	}
	dst = f.newline(dst, depth)
	return append(dst, closer)
}

func (f formatter) appendMap(dst []byte, m *Map, depth int) []byte {
	dst = append(dst, '{')
	if len(m.keys) == 0 {
		return append(dst, '}')
	}
	order := make([]int, len(m.keys))
	for i := range order {
		order[i] = i
	}
	if f.p.canonical {
		texts := make([][]byte, len(m.keys))
		for i, k := range m.keys {
			texts[i] = f.p.append(append(f.p.append(nil, k), ' '), m.vals[i])
		}
		slices.SortStableFunc(order, func(a, b int) int { return bytes.Compare(texts[a], texts[b]) })
	}
	for _, i := range order {
		dst = f.newline(dst, depth+1)
		dst = f.append(dst, m.keys[i], depth+1)
		dst = append(dst, ' ')
		dst = f.append(dst, m.vals[i], depth+1)
	}
	dst = f.newline(dst, depth)
	return append(dst, '}')
}

// sorted returns elems ordered by their canonical text.
func (f formatter) sorted(elems []Value) []Value {
	type entry struct {
		v    Value
		text []byte
	}
	entries := make([]entry, len(elems))
	for i, e := range elems {
		entries[i] = entry{e, f.p.append(nil, e)}
	}
	slices.SortStableFunc(entries, func(a, b entry) int { return bytes.Compare(a.text, b.text) })
	out := make([]Value, len(entries))
	for i, e := range entries {
		out[i] = e.v
	}
	return out
}

func (f formatter) newline(dst []byte, depth int) []byte {
	dst = append(dst, '\n')
	for range depth {
		dst = append(dst, f.indent...)
	}
	return dst
}

// column is the length of the last line of dst.
func column(dst []byte) int {
	return len(dst) - (bytes.LastIndexByte(dst, '\n') + 1)
}
