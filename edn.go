package edn

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/KimNorgaard/go-edn/internal/arena"
	"github.com/KimNorgaard/go-edn/internal/scan"
)

// Document is the result of a read: the top-level forms and the arena that
// owns them.
type Document struct {
	forms []Value
	arena *Arena
}

// Value returns the first form, or nil if the document is empty.
func (d *Document) Value() Value {
	if len(d.forms) == 0 {
		return nil
	}
	return d.forms[0]
}

// Forms returns every top-level form in input order.
func (d *Document) Forms() []Value { return d.forms }

// Arena returns the arena owning the document's values. It is nil when
// the document holds only the EOF value.
func (d *Document) Arena() *Arena { return d.arena }

// Release frees the document's values. Neither the document nor any value
// read from it may be used afterwards.
func (d *Document) Release() {
	d.arena.Release()
	d.forms = nil
	d.arena = nil
}

// Read reads exactly one form from data. Input that is empty, or holds only
// whitespace, comments and discarded forms, fails with ErrUnexpectedEOF;
// anything after the form other than those fails with ErrInvalidSyntax. A
// #_ left dangling at the end fails with ErrInvalidDiscard once a form has
// been read, and with ErrUnterminatedCollection inside a collection.
//
// Strings, identifiers and big number digits in the result alias data.
func Read(data []byte, opts ...Option) (*Document, error) {
	return read(data, false, opts)
}

// ReadAll reads every top-level form in data.
func ReadAll(data []byte, opts ...Option) (*Document, error) {
	return read(data, true, opts)
}

// ReadString is Read over the bytes of s, without copying them.
func ReadString(s string, opts ...Option) (*Document, error) {
	return Read(unsafe.Slice(unsafe.StringData(s), len(s)), opts...)
}

// ReadFrom reads r to the end and then reads one form from the result.
func ReadFrom(r io.Reader, opts ...Option) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("edn: %w", err)
	}
	return Read(data, opts...)
}

func read(data []byte, all bool, opts []Option) (*Document, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return readWith(data, all, &o)
}

func readWith(data []byte, all bool, o *options) (*Document, error) {
	blockSize := min(max(len(data), 4<<10), arena.DefaultBlockSize)
	a := newArena(blockSize, o.maxArenaBytes, o.types)
	r := newReader(data, a, o)

	doc, err := r.readDocument(all)
	if err != nil {
		a.Release()
		if e, ok := err.(*Error); ok && e.Code == ErrUnexpectedEOF && o.eof != nil {
			return &Document{forms: []Value{o.eof}}, nil
		}
		return nil, err
	}
	doc.arena = a
	return doc, nil
}

func (r *reader) readDocument(all bool) (*Document, error) {
	var forms builder
	for {
		v, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		r.forms++
		if !all {
			c, more, err := r.skip()
			if err != nil {
				return nil, err
			}
			if more {
				if scan.ClassOf(c) == scan.Close {
					return nil, r.errorAt(ErrUnmatchedDelimiter, r.pos, "unmatched delimiter %q", c)
				}
				return nil, r.errorAt(ErrInvalidSyntax, r.pos, "unexpected content after the first form")
			}
			return &Document{forms: []Value{v}}, nil
		}
		if !forms.add(r.a, v) {
			return nil, r.oom(r.pos)
		}
	}
	if !all {
		return nil, r.errorAt(ErrUnexpectedEOF, r.pos, "no form in input")
	}
	vs := forms.finish(r.a)
	if vs == nil {
		return nil, r.oom(r.pos)
	}
	return &Document{forms: vs}, nil
}
