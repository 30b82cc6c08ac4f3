package locate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPosition(t *testing.T) {
	in := []byte("(a\n  b\n\tcé d)")
	testCases := []struct {
		name   string
		offset int
		line   int
		column int
	}{
		{"start", 0, 1, 1},
		{"same line", 1, 1, 2},
		{"newline byte", 2, 1, 3},
		{"second line", 5, 2, 3},
		{"third line", 8, 3, 2},
		{"after multibyte rune", 11, 3, 4},
		{"end", len(in), 3, 7},
		{"past end", len(in) + 10, 3, 7},
		{"negative", -1, 1, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			line, column := Position(in, tc.offset)
			require.Equal(t, tc.line, line)
			require.Equal(t, tc.column, column)
		})
	}
}
