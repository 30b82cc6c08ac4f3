package edn

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReaderFunc transforms the value following a tag. It builds its result
// from a, the arena of the read in progress. A returned error fails the
// read with ErrReaderFailed and its message.
type ReaderFunc func(v Value, a *Arena) (Value, error)

// Registry maps tags to reader functions.
//
// Lookups made by concurrent reads are safe. Register and Unregister are
// not synchronized and must not run while a read uses the registry.
type Registry struct {
	readers map[string]ReaderFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]ReaderFunc)}
}

// Register installs fn as the reader for tag, replacing any previous one.
// The tag is written without the leading '#'.
func (r *Registry) Register(tag string, fn ReaderFunc) error {
	if fn == nil {
		return fmt.Errorf("edn: nil reader for tag %q", tag)
	}
	if !validTag([]byte(tag)) {
		return fmt.Errorf("edn: invalid tag %q", tag)
	}
	r.readers[tag] = fn
	return nil
}

// Unregister removes the reader for tag.
func (r *Registry) Unregister(tag string) {
	delete(r.readers, tag)
}

// Lookup returns the reader registered for tag.
func (r *Registry) Lookup(tag string) (ReaderFunc, bool) {
	fn, ok := r.readers[tag]
	return fn, ok
}

// lookup finds the reader for a tag span without copying it.
func (r *Registry) lookup(tag []byte) ReaderFunc {
	if r == nil {
		return nil
	}
	return r.readers[string(tag)]
}

// RegisterBuiltins installs the readers for #inst and #uuid. #inst takes an
// RFC 3339 timestamp string and yields an External holding a time.Time
// (TypeInst); #uuid takes a canonical UUID string and yields an External
// holding a uuid.UUID (TypeUUID).
func (r *Registry) RegisterBuiltins() {
	r.readers["inst"] = readInst
	r.readers["uuid"] = readUUID
}

func readInst(v Value, a *Arena) (Value, error) {
	s, ok := v.(*String)
	if !ok {
		return nil, fmt.Errorf("#inst expects a string, got %s", v.Kind())
	}
	t, err := time.Parse(time.RFC3339Nano, s.Value())
	if err != nil {
		return nil, fmt.Errorf("#inst: %w", err)
	}
	x := a.NewExternal(t, TypeInst)
	if x == nil {
		return nil, ErrOutOfMemory
	}
	return x, nil
}

func readUUID(v Value, a *Arena) (Value, error) {
	s, ok := v.(*String)
	if !ok {
		return nil, fmt.Errorf("#uuid expects a string, got %s", v.Kind())
	}
	id, err := uuid.ParseBytes(s.Bytes())
	if err != nil {
		return nil, fmt.Errorf("#uuid: %w", err)
	}
	x := a.NewExternal(id, TypeUUID)
	if x == nil {
		return nil, ErrOutOfMemory
	}
	return x, nil
}
