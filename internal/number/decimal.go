package number

import (
	"encoding/binary"
	"math"

	"github.com/KimNorgaard/go-edn/internal/scan"
)

// ParseDecimal converts a run of ASCII decimal digits to an int64. It
// reports false if the run is empty, contains a non-digit, or does not fit;
// it never wraps.
func ParseDecimal(digits []byte, negative bool) (int64, bool) {
	n := len(digits)
	if n == 0 {
		return 0, false
	}
	if n <= 3 {
		var v int64
		for _, c := range digits {
			if !scan.IsDigit(c) {
				return 0, false
			}
			v = v*10 + int64(c-'0')
		}
		if negative {
			v = -v
		}
		return v, true
	}

	limit := uint64(math.MaxInt64)
	if negative {
		limit++
	}
	chunkCutoff := limit / 1e8
	chunkRem := limit % 1e8
	cutoff := limit / 10
	rem := limit % 10

	var v uint64
	i := 0
	for ; i+8 <= n; i += 8 {
		w := binary.LittleEndian.Uint64(digits[i:])
		if !scan.IsEightDigits(w) {
			return 0, false
		}
		chunk := uint64(eightDigits(w))
		if v > chunkCutoff || (v == chunkCutoff && chunk > chunkRem) {
			return 0, false
		}
		v = v*1e8 + chunk
	}
	for ; i < n; i++ {
		c := digits[i]
		if !scan.IsDigit(c) {
			return 0, false
		}
		d := uint64(c - '0')
		if v > cutoff || (v == cutoff && d > rem) {
			return 0, false
		}
		v = v*10 + d
	}
	if negative {
		return int64(-v), true
	}
	return int64(v), true
}

// eightDigits combines eight ASCII digits, first digit in the low byte,
// into their value.
func eightDigits(w uint64) uint32 {
	w = (w & 0x0F0F0F0F0F0F0F0F) * 2561 >> 8
	w = (w & 0x00FF00FF00FF00FF) * 6553601 >> 16
	return uint32((w & 0x0000FFFF0000FFFF) * 42949672960001 >> 32)
}

// ParseRadix converts digits in the given radix (2 to 36) to an int64,
// reporting false on an invalid digit or overflow.
func ParseRadix(digits []byte, radix int, negative bool) (int64, bool) {
	if len(digits) == 0 || radix < 2 || radix > 36 {
		return 0, false
	}
	limit := uint64(math.MaxInt64)
	if negative {
		limit++
	}
	r := uint64(radix)
	cutoff := limit / r
	rem := limit % r

	var v uint64
	for _, c := range digits {
		d := digitValue(c)
		if d >= radix {
			return 0, false
		}
		if v > cutoff || (v == cutoff && uint64(d) > rem) {
			return 0, false
		}
		v = v*r + uint64(d)
	}
	if negative {
		return int64(-v), true
	}
	return int64(v), true
}
