// Package arena implements the region allocator that owns everything a
// single read produces. Memory is handed out by bumping an offset through
// a chain of blocks; nothing is freed individually and Release drops the
// whole chain at once.
//
// Raw bytes come from Alloc. Values that hold Go pointers must never live
// in byte blocks, because the collector does not scan them, so typed
// storage is carved out of per-type Slab chains instead. Both kinds of
// block are charged against the same byte budget.
package arena

import "unsafe"

const (
	// DefaultBlockSize is the growth size of a new block when the request
	// itself is smaller.
	DefaultBlockSize = 64 << 10

	align = 8

	// minSlabElems is the length of the first block of a slab. Later
	// blocks double until they reach the arena's block size.
	minSlabElems = 16
)

type block struct {
	buf  []byte
	off  int
	next *block
}

type resetter interface {
	reset()
}

// Arena is a bump allocator over a singly linked chain of blocks.
// It is not safe for concurrent use.
type Arena struct {
	head      *block
	cur       *block
	blockSize int
	limit     int
	used      int
	slabs     []resetter
}

// New returns an arena whose blocks grow by blockSize bytes. A limit
// greater than zero caps the total number of bytes the arena may reserve;
// once reached every allocation fails.
func New(blockSize, limit int) *Arena {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Arena{blockSize: blockSize, limit: limit}
}

// Alloc returns size bytes of zeroed, 8-byte aligned storage, or nil if
// the byte budget is exhausted. Earlier blocks are never revisited.
func (a *Arena) Alloc(size int) []byte {
	if size < 0 {
		return nil
	}
	if size == 0 {
		return []byte{}
	}
	n := (size + align - 1) &^ (align - 1)
	if a.cur == nil || a.cur.off+n > len(a.cur.buf) {
		if !a.grow(n) {
			return nil
		}
	}
	b := a.cur.buf[a.cur.off : a.cur.off+size : a.cur.off+size]
	a.cur.off += n
	return b
}

func (a *Arena) grow(n int) bool {
	size := max(n, a.blockSize)
	if !a.reserve(size) {
		return false
	}
	blk := &block{buf: make([]byte, size)}
	if a.cur == nil {
		a.head = blk
	} else {
		a.cur.next = blk
	}
	a.cur = blk
	return true
}

func (a *Arena) reserve(n int) bool {
	if a.limit > 0 && a.used+n > a.limit {
		return false
	}
	a.used += n
	return true
}

// Used reports the number of bytes reserved by the arena's blocks.
func (a *Arena) Used() int { return a.used }

// Blocks reports the length of the byte block chain. Tests use it to observe
// chain growth and Release.
func (a *Arena) Blocks() int {
	n := 0
	for b := a.head; b != nil; b = b.next {
		n++
	}
	return n
}

// Release walks the chain and drops every block, including those held by
// slabs. The arena may be reused afterwards; values allocated before the
// call must not be.
func (a *Arena) Release() {
	for b := a.head; b != nil; {
		next := b.next
		b.buf = nil
		b.next = nil
		b = next
	}
	a.head, a.cur = nil, nil
	for _, s := range a.slabs {
		s.reset()
	}
	a.slabs = a.slabs[:0]
	a.used = 0
}

type slabBlock[T any] struct {
	buf  []T
	off  int
	next *slabBlock[T]
}

// Slab is a block chain of T values belonging to one Arena. The zero
// value is ready to use.
type Slab[T any] struct {
	head *slabBlock[T]
	cur  *slabBlock[T]
}

func (s *Slab[T]) reset() {
	for b := s.head; b != nil; {
		next := b.next
		b.buf = nil
		b.next = nil
		b = next
	}
	s.head, s.cur = nil, nil
}

// Make returns a zeroed slice of n elements carved from s, or nil if the
// arena's budget is exhausted. The returned slice has capacity n.
func Make[T any](a *Arena, s *Slab[T], n int) []T {
	if n <= 0 {
		return []T{}
	}
	if s.cur == nil || s.cur.off+n > len(s.cur.buf) {
		var zero T
		elem := max(int(unsafe.Sizeof(zero)), 1)
		grow := minSlabElems
		if s.cur != nil {
			grow = len(s.cur.buf) * 2
		}
		count := max(n, min(grow, max(a.blockSize/elem, 1)))
		if !a.reserve(count * elem) {
			return nil
		}
		blk := &slabBlock[T]{buf: make([]T, count)}
		if s.cur == nil {
			s.head = blk
			a.slabs = append(a.slabs, s)
		} else {
			s.cur.next = blk
		}
		s.cur = blk
	}
	out := s.cur.buf[s.cur.off : s.cur.off+n : s.cur.off+n]
	s.cur.off += n
	return out
}

// NewOf returns a pointer to a single zeroed T carved from s, or nil if the
// budget is exhausted.
func NewOf[T any](a *Arena, s *Slab[T]) *T {
	out := Make(a, s, 1)
	if out == nil {
		return nil
	}
	return &out[0]
}
