package scan

import (
	"encoding/binary"
	"math/bits"
)

const (
	lsb = 0x0101010101010101
	msb = 0x8080808080808080
	low = 0x7f7f7f7f7f7f7f7f
)

// zeroBytes flags the high bit of every zero byte in w. Only the lowest
// flag is exact; bytes above it may be flagged spuriously, which is
// harmless because callers only look at the first one.
func zeroBytes(w uint64) uint64 {
	return (w - lsb) & ^w & msb
}

// eqBytes flags bytes of w equal to c.
func eqBytes(w uint64, c byte) uint64 {
	return zeroBytes(w ^ (lsb * uint64(c)))
}

// lessBytes flags bytes of w below n, for n <= 128.
func lessBytes(w uint64, n byte) uint64 {
	return (w - lsb*uint64(n)) & ^w & msb
}

// nonzeroBytes flags every non-zero byte of w exactly.
func nonzeroBytes(w uint64) uint64 {
	return (((w & low) + low) | w) & msb
}

// firstFlag converts a flag mask into the index of the lowest flagged byte.
func firstFlag(m uint64) int {
	return bits.TrailingZeros64(m) >> 3
}

// IsEightDigits reports whether all eight bytes of w, loaded in
// little-endian order, are ASCII digits.
func IsEightDigits(w uint64) bool {
	return (w&0xF0F0F0F0F0F0F0F0)|(((w+0x0606060606060606)&0xF0F0F0F0F0F0F0F0)>>4) == 0x3333333333333333
}

type swar struct{}

func (swar) Name() string { return "swar" }

func (swar) IndexQuoteOrBackslash(b []byte) int {
	i := 0
	for ; i+8 <= len(b); i += 8 {
		w := binary.LittleEndian.Uint64(b[i:])
		if m := eqBytes(w, '"') | eqBytes(w, '\\'); m != 0 {
			return i + firstFlag(m)
		}
	}
	for ; i < len(b); i++ {
		if b[i] == '"' || b[i] == '\\' {
			return i
		}
	}
	return -1
}

func (swar) IndexDelimiter(b []byte) int {
	i := 0
	for ; i+8 <= len(b); i += 8 {
		w := binary.LittleEndian.Uint64(b[i:])
		m := lessBytes(w, '!') |
			eqBytes(w, '"') | eqBytes(w, '(') | eqBytes(w, ')') |
			eqBytes(w, ',') | eqBytes(w, ';') | eqBytes(w, '[') |
			eqBytes(w, '\\') | eqBytes(w, ']') | eqBytes(w, '{') |
			eqBytes(w, '}')
		if m != 0 {
			return i + firstFlag(m)
		}
	}
	for ; i < len(b); i++ {
		if delimiters[b[i]] {
			return i
		}
	}
	return len(b)
}

func (swar) DigitRun(b []byte) int {
	i := 0
	for ; i+8 <= len(b); i += 8 {
		w := binary.LittleEndian.Uint64(b[i:])
		// A digit byte has high nibble 3 both before and after adding 6.
		d := (w & 0xF0F0F0F0F0F0F0F0) ^ 0x3030303030303030
		d |= ((w + 0x0606060606060606) & 0xF0F0F0F0F0F0F0F0) ^ 0x3030303030303030
		if m := nonzeroBytes(d); m != 0 {
			return i + firstFlag(m)
		}
	}
	for ; i < len(b); i++ {
		if !IsDigit(b[i]) {
			return i
		}
	}
	return len(b)
}

func (swar) AllDigits(b []byte) bool {
	i := 0
	for ; i+8 <= len(b); i += 8 {
		if !IsEightDigits(binary.LittleEndian.Uint64(b[i:])) {
			return false
		}
	}
	for ; i < len(b); i++ {
		if !IsDigit(b[i]) {
			return false
		}
	}
	return true
}
