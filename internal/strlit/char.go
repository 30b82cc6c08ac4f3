package strlit

import (
	"unicode/utf8"

	"github.com/KimNorgaard/go-edn/internal/scan"
)

var charNames = map[string]rune{
	"newline":   '\n',
	"space":     ' ',
	"tab":       '\t',
	"return":    '\r',
	"backspace": '\b',
	"formfeed":  '\f',
}

// Char reads the character literal whose backslash is at b[start] and
// returns the code point and the offset just past the literal.
func Char(b []byte, start int) (rune, int, error) {
	i := start + 1
	if i >= len(b) {
		return 0, i, &SyntaxError{Offset: start, Msg: "incomplete character literal"}
	}
	// The first character is taken literally even if it is a delimiter,
	// so \( and \space both work.
	r, size := utf8.DecodeRune(b[i:])
	if r == utf8.RuneError && size <= 1 {
		return 0, i, &SyntaxError{Offset: i, Msg: "invalid utf-8 in character literal"}
	}
	end := i + size
	end += scan.Default.IndexDelimiter(b[end:])
	if end == i+size {
		return r, end, nil
	}

	tok := b[i:end]
	if c, ok := charNames[string(tok)]; ok {
		return c, end, nil
	}
	switch tok[0] {
	case 'u':
		if len(tok) == 5 {
			if c, ok := readHex(tok[1:], 4); ok {
				if isSurrogate(c) {
					return 0, end, &SyntaxError{Offset: start, Msg: "invalid unicode scalar value (surrogate)", Escape: true}
				}
				return c, end, nil
			}
		}
	case 'o':
		if c, ok := readOctal(tok[1:]); ok {
			return c, end, nil
		}
	}
	return 0, end, &SyntaxError{Offset: start, Msg: "unsupported character: \\" + string(tok)}
}

func readOctal(b []byte) (rune, bool) {
	if len(b) == 0 || len(b) > 3 {
		return 0, false
	}
	var v rune
	for _, c := range b {
		if c < '0' || c > '7' {
			return 0, false
		}
		v = v*8 + rune(c-'0')
	}
	return v, v <= 0377
}

// CharName returns the literal name of r when it has one.
func CharName(r rune) (string, bool) {
	switch r {
	case '\n':
		return "newline", true
	case ' ':
		return "space", true
	case '\t':
		return "tab", true
	case '\r':
		return "return", true
	case '\b':
		return "backspace", true
	case '\f':
		return "formfeed", true
	}
	return "", false
}

// AppendQuoted appends s as an EDN string literal.
func AppendQuoted(dst, s []byte) []byte {
	const hex = "0123456789abcdef"
	dst = append(dst, '"')
	for len(s) > 0 {
		r, size := utf8.DecodeRune(s)
		switch {
		case r == '"':
			dst = append(dst, '\\', '"')
		case r == '\\':
			dst = append(dst, '\\', '\\')
		case r == '\n':
			dst = append(dst, '\\', 'n')
		case r == '\t':
			dst = append(dst, '\\', 't')
		case r == '\r':
			dst = append(dst, '\\', 'r')
		case r == '\f':
			dst = append(dst, '\\', 'f')
		case r == '\b':
			dst = append(dst, '\\', 'b')
		case r < 0x20 || r == 0x7f:
			dst = append(dst, '\\', 'u', '0', '0', hex[r>>4], hex[r&0xf])
		default:
			dst = append(dst, s[:size]...)
		}
		s = s[size:]
	}
	return append(dst, '"')
}
