package edn

import "github.com/KimNorgaard/go-edn/internal/arena"

var tagName = []byte("tag")

// readMeta reads ^meta form and attaches the metadata map to the form.
// ^:kw is short for {:kw true} and ^sym or ^"str" for {:tag sym}. When
// prefixes are stacked the outer one wins on conflicting keys.
func (r *reader) readMeta() (Value, error) {
	start := r.pos
	if !r.opts.metadata {
		return nil, r.errorAt(ErrInvalidSyntax, start, "metadata is not enabled")
	}
	r.pos++
	if err := r.enter(start); err != nil {
		return nil, err
	}
	defer r.leave()

	m, err := r.operand(start, "metadata")
	if err != nil {
		return nil, err
	}
	meta, err := r.metaMap(start, m)
	if err != nil {
		return nil, err
	}

	target, err := r.operand(start, "metadata")
	if err != nil {
		return nil, err
	}
	switch target.(type) {
	case *Symbol, *List, *Vector, *Set, *Map, *Tagged:
	default:
		return nil, r.errorAt(ErrInvalidSyntax, start, "metadata cannot be applied to %s", target.Kind())
	}

	if inner := target.base().meta; inner != nil {
		if meta = r.mergeMeta(meta, inner); meta == nil {
			return nil, r.oom(start)
		}
	}
	out := r.a.withMeta(target, meta)
	if out == nil {
		return nil, r.oom(start)
	}
	return out, nil
}

// withMeta returns a copy of v, allocated in a, that carries meta. v is
// left untouched, so a value a ReaderFunc shares between reads never
// picks up metadata.
func (a *Arena) withMeta(v Value, meta *Map) Value {
	switch x := v.(type) {
	case *Symbol:
		return copyWithMeta(a, &a.symbols, x, meta)
	case *List:
		return copyWithMeta(a, &a.lists, x, meta)
	case *Vector:
		return copyWithMeta(a, &a.vectors, x, meta)
	case *Set:
		return copyWithMeta(a, &a.sets, x, meta)
	case *Map:
		return copyWithMeta(a, &a.maps, x, meta)
	case *Tagged:
		return copyWithMeta(a, &a.tagged, x, meta)
	}
	return nil
}

func copyWithMeta[T any, P interface {
	*T
	Value
}](a *Arena, s *arena.Slab[T], x P, meta *Map) Value {
	y := P(arena.NewOf(a.mem, s))
	if y == nil {
		return nil
	}
	*y = *x
	y.base().meta = meta
	return y
}

func (r *reader) metaMap(start int, m Value) (*Map, error) {
	var k, v Value
	switch x := m.(type) {
	case *Map:
		return x, nil
	case *Keyword:
		k, v = x, True
	case *Symbol, *String:
		kw := r.a.newKeyword(nil, tagName)
		if kw == nil {
			return nil, r.oom(start)
		}
		k, v = kw, x
	default:
		return nil, r.errorAt(ErrInvalidSyntax, start, "metadata must be a map, keyword, symbol or string, got %s", m.Kind())
	}
	ks, vs := r.a.makeValues(1), r.a.makeValues(1)
	if ks == nil || vs == nil {
		return nil, r.oom(start)
	}
	ks[0], vs[0] = k, v
	mm := r.a.newMap(ks, vs)
	if mm == nil {
		return nil, r.oom(start)
	}
	return mm, nil
}

// mergeMeta returns outer plus the entries of inner whose keys outer does
// not have.
func (r *reader) mergeMeta(outer, inner *Map) *Map {
	n := len(outer.keys)
	for _, k := range inner.keys {
		if !outer.Contains(k) {
			n++
		}
	}
	ks, vs := r.a.makeValues(n), r.a.makeValues(n)
	if ks == nil || vs == nil {
		return nil
	}
	i := copy(ks, outer.keys)
	copy(vs, outer.vals)
	for j, k := range inner.keys {
		if !outer.Contains(k) {
			ks[i], vs[i] = k, inner.vals[j]
			i++
		}
	}
	return r.a.newMap(ks, vs)
}
