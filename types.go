package edn

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type ids reserved for the builtin readers. User types should use
// positive ids.
const (
	TypeInst = -1
	TypeUUID = -2
)

// EqualFunc reports whether two External payloads of the same type are
// equal.
type EqualFunc func(a, b any) bool

// HashFunc hashes an External payload. Equal payloads must hash equally.
type HashFunc func(v any) uint64

type externalType struct {
	equal EqualFunc
	hash  HashFunc
}

// TypeRegistry maps External type ids to their equality and hash
// functions. Like Registry it must not be modified while in use.
type TypeRegistry struct {
	types map[int]externalType
}

// NewTypeRegistry returns an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[int]externalType)}
}

// DefaultTypes returns a registry holding the builtin inst and uuid types.
func DefaultTypes() *TypeRegistry {
	t := NewTypeRegistry()
	t.types[TypeInst] = externalType{equal: equalInst, hash: hashInst}
	t.types[TypeUUID] = externalType{equal: equalUUID, hash: hashUUID}
	return t
}

var defaultTypes = DefaultTypes()

// Register installs the equality and hash functions for id. eq must not be
// nil. A nil hash hashes every payload of the type to the same value,
// which is correct but slow for large sets.
func (t *TypeRegistry) Register(id int, eq EqualFunc, hash HashFunc) error {
	if eq == nil {
		return fmt.Errorf("edn: nil equality function for type %d", id)
	}
	t.types[id] = externalType{equal: eq, hash: hash}
	return nil
}

// Unregister removes the functions for id.
func (t *TypeRegistry) Unregister(id int) {
	delete(t.types, id)
}

func (t *TypeRegistry) lookup(id int) (externalType, bool) {
	if t == nil {
		return externalType{}, false
	}
	et, ok := t.types[id]
	return et, ok
}

func equalInst(a, b any) bool {
	x, ok1 := a.(time.Time)
	y, ok2 := b.(time.Time)
	return ok1 && ok2 && x.Equal(y)
}

func hashInst(v any) uint64 {
	t, _ := v.(time.Time)
	return fnvUint64(offset64, uint64(t.UnixNano()))
}

func equalUUID(a, b any) bool {
	x, ok1 := a.(uuid.UUID)
	y, ok2 := b.(uuid.UUID)
	return ok1 && ok2 && x == y
}

func hashUUID(v any) uint64 {
	id, _ := v.(uuid.UUID)
	return fnvBytes(offset64, id[:])
}
