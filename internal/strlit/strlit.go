// Package strlit scans and decodes EDN string and character literals.
//
// Scanning validates the literal without decoding it so that a string
// value can keep a view of the raw bytes and decode on first use.
package strlit

import (
	"fmt"
	"unicode/utf8"

	"github.com/KimNorgaard/go-edn/internal/scan"
)

// SyntaxError reports a malformed literal at a byte offset.
type SyntaxError struct {
	Offset int
	Msg    string
	// Escape is set when the problem is an escape sequence.
	Escape bool
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

// Scan reads the string literal whose opening quote is at b[start]. It
// returns the offset just past the closing quote and whether the body
// contains escapes. Escape sequences are validated here so that Decode
// cannot fail.
func Scan(b []byte, start int) (end int, escaped bool, err error) {
	i := start + 1
	for {
		k := scan.Default.IndexQuoteOrBackslash(b[i:])
		if k < 0 {
			return len(b), escaped, &SyntaxError{Offset: start, Msg: "unterminated string"}
		}
		i += k
		if b[i] == '"' {
			return i + 1, escaped, nil
		}
		escaped = true
		n, err := validateEscape(b, i)
		if err != nil {
			return i, escaped, err
		}
		i += n
	}
}

// validateEscape checks the escape at b[i] == '\\' and returns its length.
func validateEscape(b []byte, i int) (int, error) {
	if i+1 >= len(b) {
		return 0, &SyntaxError{Offset: i, Msg: "unterminated string"}
	}
	switch b[i+1] {
	case '"', '\\', 'n', 't', 'r', 'f', 'b':
		return 2, nil
	case 'u':
		r, ok := readHex(b[i+2:], 4)
		if !ok {
			return 0, &SyntaxError{Offset: i, Msg: "invalid unicode escape", Escape: true}
		}
		if isSurrogate(r) {
			return 0, &SyntaxError{Offset: i, Msg: "invalid unicode scalar value (surrogate)", Escape: true}
		}
		return 6, nil
	}
	c, _ := utf8.DecodeRune(b[i+1:])
	return 0, &SyntaxError{Offset: i, Msg: fmt.Sprintf("invalid escape sequence \\%c", c), Escape: true}
}

// Decode appends the decoded body of a scanned string (without quotes) to
// dst. raw must have passed Scan.
func Decode(dst, raw []byte) []byte {
	for i := 0; i < len(raw); {
		k := scan.Default.IndexQuoteOrBackslash(raw[i:])
		if k < 0 {
			return append(dst, raw[i:]...)
		}
		dst = append(dst, raw[i:i+k]...)
		i += k
		switch raw[i+1] {
		case 'u':
			r, _ := readHex(raw[i+2:], 4)
			dst = utf8.AppendRune(dst, r)
			i += 6
			continue
		default:
			dst = append(dst, unescape(raw[i+1]))
		}
		i += 2
	}
	return dst
}

func unescape(c byte) byte {
	switch c {
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	}
	return c
}

func readHex(b []byte, n int) (rune, bool) {
	if len(b) < n {
		return 0, false
	}
	var val rune
	for _, c := range b[:n] {
		var d rune
		switch {
		case '0' <= c && c <= '9':
			d = rune(c - '0')
		case 'a' <= c && c <= 'f':
			d = rune(c-'a') + 10
		case 'A' <= c && c <= 'F':
			d = rune(c-'A') + 10
		default:
			return 0, false
		}
		val = val*16 + d
	}
	return val, true
}

func isSurrogate(r rune) bool {
	return r >= 0xD800 && r <= 0xDFFF
}
