package scan

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassOf(t *testing.T) {
	testCases := []struct {
		in       byte
		expected Class
	}{
		{' ', Whitespace},
		{',', Whitespace},
		{'\v', Whitespace},
		{';', Comment},
		{'"', StringOpen},
		{'\\', CharEscape},
		{'(', ListOpen},
		{'[', VectorOpen},
		{'{', MapOpen},
		{')', Close},
		{']', Close},
		{'}', Close},
		{'#', Hash},
		{'+', Sign},
		{'-', Sign},
		{'7', Digit},
		{'a', Ident},
		{':', Ident},
		{'*', Ident},
		{0xc3, Ident},
		{'^', Meta},
		{'@', Invalid},
		{'~', Invalid},
		{'`', Invalid},
		{0x01, Invalid},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, ClassOf(tc.in), "byte %q", tc.in)
	}
}

func TestIsDelimiter(t *testing.T) {
	for _, c := range []byte(" \t\n\r,;\"()[]{}\\") {
		require.True(t, IsDelimiter(c), "byte %q", c)
	}
	for _, c := range []byte("abc:/.*+-!?<>=&%#'_09") {
		require.False(t, IsDelimiter(c), "byte %q", c)
	}
}

func TestBackends(t *testing.T) {
	testCases := []struct {
		name  string
		in    string
		quote int
		delim int
		run   int
		all   bool
	}{
		{"empty", "", -1, 0, 0, true},
		{"short digits", "123", -1, 3, 3, true},
		{"eight digits", "12345678", -1, 8, 8, true},
		{"long digits", "1234567890123456789", -1, 19, 19, true},
		{"digit run then letter", "123456789a", -1, 10, 9, false},
		{"quote in first word", `ab"cdefghij`, 2, 2, 0, false},
		{"backslash in second word", `abcdefghij\k`, 10, 10, 0, false},
		{"delimiter after word", "abcdefgh ijk", -1, 8, 0, false},
		{"bracket", "foo/bar]", -1, 7, 0, false},
		{"comma", "12345678901,", -1, 11, 11, false},
		{"high bytes", "héllo wörld", -1, 6, 0, false},
		{"colon before digit", "9999999/", -1, 8, 7, false},
	}
	for _, b := range []Backend{Scalar, SWAR} {
		for _, tc := range testCases {
			t.Run(b.Name()+"/"+tc.name, func(t *testing.T) {
				in := []byte(tc.in)
				require.Equal(t, tc.quote, b.IndexQuoteOrBackslash(in))
				require.Equal(t, tc.delim, b.IndexDelimiter(in))
				require.Equal(t, tc.run, b.DigitRun(in))
				require.Equal(t, tc.all, b.AllDigits(in))
			})
		}
	}
}

func TestBackendsAgree(t *testing.T) {
	alphabet := []byte("0123456789abc \"\\,;()[]{}\x00\x7f\xff\xfa:/.")
	r := rand.New(rand.NewPCG(1, 2))
	for range 5000 {
		n := r.IntN(40)
		buf := make([]byte, n)
		for i := range buf {
			if r.IntN(3) == 0 {
				buf[i] = alphabet[r.IntN(len(alphabet))]
			} else {
				buf[i] = '0' + byte(r.IntN(10))
			}
		}
		require.Equal(t, Scalar.IndexQuoteOrBackslash(buf), SWAR.IndexQuoteOrBackslash(buf), "%q", buf)
		require.Equal(t, Scalar.IndexDelimiter(buf), SWAR.IndexDelimiter(buf), "%q", buf)
		require.Equal(t, Scalar.DigitRun(buf), SWAR.DigitRun(buf), "%q", buf)
		require.Equal(t, Scalar.AllDigits(buf), SWAR.AllDigits(buf), "%q", buf)
	}
}

func TestEveryByteAgrees(t *testing.T) {
	// Place each byte value at every position of a two-word buffer.
	for c := 0; c < 256; c++ {
		for pos := range 16 {
			buf := []byte(strings.Repeat("5", 16))
			buf[pos] = byte(c)
			require.Equal(t, Scalar.IndexDelimiter(buf), SWAR.IndexDelimiter(buf), "byte %#x at %d", c, pos)
			require.Equal(t, Scalar.DigitRun(buf), SWAR.DigitRun(buf), "byte %#x at %d", c, pos)
			require.Equal(t, Scalar.IndexQuoteOrBackslash(buf), SWAR.IndexQuoteOrBackslash(buf), "byte %#x at %d", c, pos)
			require.Equal(t, Scalar.AllDigits(buf), SWAR.AllDigits(buf), "byte %#x at %d", c, pos)
		}
	}
}

func TestIsEightDigits(t *testing.T) {
	require.True(t, IsEightDigits(0x3030303030303030))
	require.True(t, IsEightDigits(0x3939393939393939))
	require.False(t, IsEightDigits(0x3a30303030303030))
	require.False(t, IsEightDigits(0x2f30303030303030))
	require.False(t, IsEightDigits(0xff30303030303030))
}
