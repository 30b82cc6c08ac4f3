package edn

import (
	"slices"

	"github.com/KimNorgaard/go-edn/internal/arena"
)

const (
	// linearMax is the largest input checked pairwise.
	linearMax = 16
	// sortedMax is the largest input checked by sorting; larger inputs
	// use a hash table.
	sortedMax = 1000
)

// duplicate reports an element of vs equal to an earlier one. The strategy
// depends on len(vs); a strategy that cannot get scratch memory from the
// arena falls back to the next cheaper one.
func (a *Arena) duplicate(vs []Value) (Value, bool) {
	n := len(vs)
	if n > sortedMax {
		if dup, ok, done := a.duplicateHashed(vs); done {
			return dup, ok
		}
	}
	if n > linearMax {
		if dup, ok, done := a.duplicateSorted(vs); done {
			return dup, ok
		}
	}
	return duplicateLinear(vs)
}

func duplicateLinear(vs []Value) (Value, bool) {
	for i := 1; i < len(vs); i++ {
		for j := 0; j < i; j++ {
			if Equal(vs[j], vs[i]) {
				return vs[i], true
			}
		}
	}
	return nil, false
}

// duplicateSorted sorts a copy of vs with Compare and checks each run of
// elements that compare as zero. done is false if no scratch memory was
// available.
func (a *Arena) duplicateSorted(vs []Value) (dup Value, ok, done bool) {
	sorted := a.makeValues(len(vs))
	if sorted == nil {
		return nil, false, false
	}
	copy(sorted, vs)
	slices.SortFunc(sorted, Compare)
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && Compare(sorted[i], sorted[j]) == 0 {
			j++
		}
		if j-i > 1 {
			if d, found := duplicateLinear(sorted[i:j]); found {
				return d, true, true
			}
		}
		i = j
	}
	return nil, false, true
}

// duplicateHashed inserts every element into an open addressing table with
// linear probing. Slots hold an element index plus one; zero is empty.
func (a *Arena) duplicateHashed(vs []Value) (dup Value, ok, done bool) {
	size := 1
	for size*7 < len(vs)*10 {
		size <<= 1
	}
	table := arena.Make(a.mem, &a.slots, size)
	hashes := arena.Make(a.mem, &a.hashes, len(vs))
	if table == nil || hashes == nil {
		return nil, false, false
	}
	mask := uint64(size - 1)
	for i, v := range vs {
		h := Hash(v)
		hashes[i] = h
		for slot := h & mask; ; slot = (slot + 1) & mask {
			e := table[slot]
			if e == 0 {
				table[slot] = int32(i + 1)
				break
			}
			j := e - 1
			if hashes[j] == h && Equal(vs[j], v) {
				return v, true, true
			}
		}
	}
	return nil, false, true
}
