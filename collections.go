package edn

import (
	"github.com/KimNorgaard/go-edn/internal/scan"
)

const inlineCap = 8

// builder accumulates the elements of a collection. The first inlineCap
// elements live in the builder itself; after that they spill into arena
// storage that grows by half each time it fills.
type builder struct {
	inline [inlineCap]Value
	spill  []Value
	n      int
}

func (b *builder) add(a *Arena, v Value) bool {
	if b.spill == nil {
		if b.n < inlineCap {
			b.inline[b.n] = v
			b.n++
			return true
		}
		b.spill = a.makeValues(inlineCap + inlineCap/2)
		if b.spill == nil {
			return false
		}
		copy(b.spill, b.inline[:])
	} else if b.n == len(b.spill) {
		grown := a.makeValues(b.n + b.n/2)
		if grown == nil {
			return false
		}
		copy(grown, b.spill)
		b.spill = grown
	}
	b.spill[b.n] = v
	b.n++
	return true
}

// finish returns the elements in arena storage, or nil if the arena is
// exhausted.
func (b *builder) finish(a *Arena) []Value {
	if b.spill != nil {
		return b.spill[:b.n:b.n]
	}
	out := a.makeValues(b.n)
	if out != nil {
		copy(out, b.inline[:b.n])
	}
	return out
}

func (r *reader) readList() (Value, error)   { return r.readSeq(KindList, ')') }
func (r *reader) readVector() (Value, error) { return r.readSeq(KindVector, ']') }

// readSeq reads the elements of a list, vector or set up to closer. r.pos
// is at the opening bracket.
func (r *reader) readSeq(kind Kind, closer byte) (Value, error) {
	start := r.pos
	if kind == KindSet {
		start--
	}
	if err := r.enter(start); err != nil {
		return nil, err
	}
	defer r.leave()
	r.colls++
	defer func() { r.colls-- }()
	r.pos++

	var b builder
	for {
		c, ok, err := r.skip()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, r.errorAt(ErrUnterminatedCollection, start, "unterminated %s", kind)
		}
		if c == closer {
			r.pos++
			break
		}
		if scan.ClassOf(c) == scan.Close {
			return nil, r.errorAt(ErrUnmatchedDelimiter, r.pos, "expected %q to close %s, found %q", closer, kind, c)
		}
		v, err := r.readForm()
		if err != nil {
			return nil, err
		}
		if !b.add(r.a, v) {
			return nil, r.oom(r.pos)
		}
	}

	elems := b.finish(r.a)
	if elems == nil {
		return nil, r.oom(start)
	}
	var v Value
	switch kind {
	case KindList:
		if x := r.a.newList(elems); x != nil {
			v = x
		}
	case KindVector:
		if x := r.a.newVector(elems); x != nil {
			v = x
		}
	case KindSet:
		if dup, found := r.a.duplicate(elems); found {
			return nil, r.errorAt(ErrDuplicateElement, start, "duplicate set element %s", dup)
		}
		if x := r.a.newSet(elems); x != nil {
			v = x
		}
	}
	if v == nil {
		return nil, r.oom(start)
	}
	return v, nil
}

func (r *reader) readMapLiteral() (Value, error) {
	return r.readMap(r.pos, nil)
}

// readNamespacedMap reads #:ns{...}. Bare keyword and symbol keys take the
// namespace; keys in the _ namespace lose theirs.
func (r *reader) readNamespacedMap() (Value, error) {
	start := r.pos
	if !r.opts.namespacedMaps {
		return nil, r.errorAt(ErrInvalidSyntax, start, "namespaced maps are not enabled")
	}
	nsStart := start + 2
	nsEnd := nsStart + scan.Default.IndexDelimiter(r.src[nsStart:])
	ns := r.src[nsStart:nsEnd]
	if _, name, msg := splitName(ns); msg != "" || len(name) != len(ns) || !validStart(ns) {
		return nil, r.errorAt(ErrInvalidSyntax, start, "invalid map namespace %q", ns)
	}
	r.pos = nsEnd
	c, ok, err := r.skip()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, r.truncated(ErrInvalidSyntax, start, "#:%s at end of input", ns)
	}
	if c != '{' {
		return nil, r.errorAt(ErrInvalidSyntax, r.pos, "expected '{' after #:%s", ns)
	}
	return r.readMap(start, ns)
}

// readMap reads key/value pairs up to '}'. r.pos is at the opening brace.
func (r *reader) readMap(start int, ns []byte) (Value, error) {
	if err := r.enter(start); err != nil {
		return nil, err
	}
	defer r.leave()
	r.colls++
	defer func() { r.colls-- }()
	r.pos++

	var keys, vals builder
	for {
		c, ok, err := r.skip()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, r.errorAt(ErrUnterminatedCollection, start, "unterminated map")
		}
		if c == '}' {
			r.pos++
			break
		}
		if scan.ClassOf(c) == scan.Close {
			return nil, r.errorAt(ErrUnmatchedDelimiter, r.pos, "expected '}' to close map, found %q", c)
		}
		k, err := r.readForm()
		if err != nil {
			return nil, err
		}

		c, ok, err = r.skip()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, r.errorAt(ErrUnterminatedCollection, start, "unterminated map")
		}
		if c == '}' {
			return nil, r.errorAt(ErrInvalidSyntax, r.pos, "map literal must contain an even number of forms")
		}
		if scan.ClassOf(c) == scan.Close {
			return nil, r.errorAt(ErrUnmatchedDelimiter, r.pos, "expected '}' to close map, found %q", c)
		}
		v, err := r.readForm()
		if err != nil {
			return nil, err
		}

		if ns != nil {
			if k = r.qualify(k, ns); k == nil {
				return nil, r.oom(r.pos)
			}
		}
		if !keys.add(r.a, k) || !vals.add(r.a, v) {
			return nil, r.oom(r.pos)
		}
	}

	ks, vs := keys.finish(r.a), vals.finish(r.a)
	if ks == nil || vs == nil {
		return nil, r.oom(start)
	}
	if dup, found := r.a.duplicate(ks); found {
		return nil, r.errorAt(ErrDuplicateKey, start, "duplicate map key %s", dup)
	}
	m := r.a.newMap(ks, vs)
	if m == nil {
		return nil, r.oom(start)
	}
	return m, nil
}

// qualify applies a namespaced map's namespace to a key. It returns nil if
// the arena is exhausted.
func (r *reader) qualify(k Value, ns []byte) Value {
	switch x := k.(type) {
	case *Keyword:
		switch {
		case x.ns == nil:
			if q := r.a.newKeyword(ns, x.name); q != nil {
				return q
			}
			return nil
		case string(x.ns) == "_":
			if q := r.a.newKeyword(nil, x.name); q != nil {
				return q
			}
			return nil
		}
	case *Symbol:
		switch {
		case x.ns == nil:
			if q := r.a.newSymbol(ns, x.name); q != nil {
				return q
			}
			return nil
		case string(x.ns) == "_":
			if q := r.a.newSymbol(nil, x.name); q != nil {
				return q
			}
			return nil
		}
	}
	return k
}
