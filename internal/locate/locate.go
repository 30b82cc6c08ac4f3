// Package locate maps byte offsets in an input buffer to line and column
// numbers for error messages.
package locate

import (
	"bytes"
	"unicode/utf8"
)

// Position returns the 1-indexed line and column of offset in b. Columns
// count runes. Offsets past the end of b are clamped to len(b).
func Position(b []byte, offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(b) {
		offset = len(b)
	}
	head := b[:offset]
	line = 1 + bytes.Count(head, []byte{'\n'})
	lineStart := bytes.LastIndexByte(head, '\n') + 1
	return line, 1 + utf8.RuneCount(head[lineStart:])
}
