// Package scan holds the byte classification table used by the reader's
// dispatch loop and the scan primitives every sub-scanner is built on.
//
// Each primitive has one contract and two interchangeable backends: a
// byte-at-a-time scalar loop and a SWAR loop that inspects eight bytes per
// step with ordinary integer arithmetic. Both must produce identical
// results for every input.
package scan

import "golang.org/x/sys/cpu"

// Class is the dispatch class of a byte.
type Class uint8

const (
	Invalid    Class = iota
	Whitespace       // space, tab, newline, return, form feed, vertical tab, comma
	Comment          // ;
	StringOpen       // "
	CharEscape       // \
	ListOpen         // (
	VectorOpen       // [
	MapOpen          // {
	Close            // ) ] }
	Hash             // #
	Sign             // + -
	Digit            // 0-9
	Ident            // everything that may start a symbol or keyword
	Meta             // ^
)

var classes [256]Class

var delimiters [256]bool

func init() {
	for c := 0x21; c < 256; c++ {
		classes[c] = Ident
	}
	for c := '0'; c <= '9'; c++ {
		classes[c] = Digit
	}
	for _, c := range []byte{' ', '\t', '\n', '\r', '\f', '\v', ','} {
		classes[c] = Whitespace
	}
	classes[';'] = Comment
	classes['"'] = StringOpen
	classes['\\'] = CharEscape
	classes['('] = ListOpen
	classes['['] = VectorOpen
	classes['{'] = MapOpen
	classes[')'] = Close
	classes[']'] = Close
	classes['}'] = Close
	classes['#'] = Hash
	classes['+'] = Sign
	classes['-'] = Sign
	classes['^'] = Meta
	for _, c := range []byte{'@', '`', '~', 0x7f} {
		classes[c] = Invalid
	}

	for c := 0; c <= ' '; c++ {
		delimiters[c] = true
	}
	for _, c := range []byte{'"', '(', ')', ',', ';', '[', '\\', ']', '{', '}'} {
		delimiters[c] = true
	}
}

// ClassOf returns the dispatch class of c.
func ClassOf(c byte) Class { return classes[c] }

// IsDelimiter reports whether c ends a token: whitespace, control bytes,
// commas, comment and string openers, brackets and backslash.
func IsDelimiter(c byte) bool { return delimiters[c] }

// IsDigit reports whether c is an ASCII decimal digit.
func IsDigit(c byte) bool { return c-'0' < 10 }

// Backend is one implementation of the scan primitives.
type Backend interface {
	// Name identifies the backend in tests and diagnostics.
	Name() string
	// IndexQuoteOrBackslash returns the index of the first '"' or '\\'
	// in b, or -1 if there is none.
	IndexQuoteOrBackslash(b []byte) int
	// IndexDelimiter returns the index of the first delimiter byte in b,
	// or len(b) if there is none.
	IndexDelimiter(b []byte) int
	// DigitRun returns the length of the run of ASCII digits at the
	// start of b.
	DigitRun(b []byte) int
	// AllDigits reports whether every byte of b is an ASCII digit.
	AllDigits(b []byte) bool
}

var (
	// Scalar inspects one byte at a time.
	Scalar Backend = scalar{}
	// SWAR inspects eight bytes per step.
	SWAR Backend = swar{}
	// Default is the backend the reader uses on this host.
	Default = pick()
)

// SWAR loads words in little-endian order; on big-endian hosts that costs
// a byte swap per word and the scalar loop is faster.
func pick() Backend {
	if cpu.IsBigEndian {
		return Scalar
	}
	return SWAR
}

type scalar struct{}

func (scalar) Name() string { return "scalar" }

func (scalar) IndexQuoteOrBackslash(b []byte) int {
	for i, c := range b {
		if c == '"' || c == '\\' {
			return i
		}
	}
	return -1
}

func (scalar) IndexDelimiter(b []byte) int {
	for i, c := range b {
		if delimiters[c] {
			return i
		}
	}
	return len(b)
}

func (scalar) DigitRun(b []byte) int {
	for i, c := range b {
		if !IsDigit(c) {
			return i
		}
	}
	return len(b)
}

func (scalar) AllDigits(b []byte) bool {
	for _, c := range b {
		if !IsDigit(c) {
			return false
		}
	}
	return true
}
