package number

import (
	"math"
	"math/big"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var defaults = Options{Ratios: true}

func parse(t *testing.T, in string, opts Options) Result {
	t.Helper()
	r, err := Parse([]byte(in), 0, opts)
	require.NoError(t, err, in)
	return r
}

func TestParseIntegers(t *testing.T) {
	testCases := []struct {
		in       string
		expected int64
		radix    int
	}{
		{"0", 0, 10},
		{"7", 7, 10},
		{"42", 42, 10},
		{"-42", -42, 10},
		{"+42", 42, 10},
		{"123456789", 123456789, 10},
		{"9223372036854775807", math.MaxInt64, 10},
		{"-9223372036854775808", math.MinInt64, 10},
		{"0x1F", 31, 16},
		{"0Xff", 255, 16},
		{"-0x10", -16, 16},
		{"8r17", 15, 8},
		{"2r1010", 10, 2},
		{"36rZZ", 36*35 + 35, 36},
		{"16RfF", 255, 16},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			r := parse(t, tc.in, defaults)
			require.Equal(t, Int, r.Kind)
			require.Equal(t, tc.expected, r.Int)
			require.Equal(t, tc.radix, r.Radix)
			require.Equal(t, len(tc.in), r.End)
		})
	}
}

func TestOverflowPromotesToBigInt(t *testing.T) {
	r := parse(t, "9223372036854775808", defaults)
	require.Equal(t, BigInt, r.Kind)
	require.Equal(t, "9223372036854775808", string(r.Digits))
	require.False(t, r.Negative)

	r = parse(t, "-9223372036854775809", defaults)
	require.Equal(t, BigInt, r.Kind)
	require.Equal(t, "9223372036854775809", string(r.Digits))
	require.True(t, r.Negative)

	r = parse(t, "0x8000000000000000", defaults)
	require.Equal(t, BigInt, r.Kind)
	require.Equal(t, 16, r.Radix)
	require.Equal(t, "8000000000000000", string(r.Digits))

	r = parse(t, "12N", defaults)
	require.Equal(t, BigInt, r.Kind)
	require.Equal(t, "12", string(r.Digits))
	require.Equal(t, 3, r.End)
}

func TestParseDecimalMatchesNaive(t *testing.T) {
	naive := func(s string) (int64, bool) {
		v := new(big.Int)
		v.SetString(s, 10)
		if !v.IsInt64() {
			return 0, false
		}
		return v.Int64(), true
	}
	r := rand.New(rand.NewPCG(7, 11))
	for n := 1; n <= 24; n++ {
		for range 200 {
			var sb strings.Builder
			for range n {
				sb.WriteByte('0' + byte(r.IntN(10)))
			}
			s := sb.String()
			for _, neg := range []bool{false, true} {
				in := s
				if neg {
					in = "-" + s
				}
				want, wantOK := naive(in)
				got, gotOK := ParseDecimal([]byte(s), neg)
				require.Equal(t, wantOK, gotOK, in)
				require.Equal(t, want, got, in)
			}
		}
	}
}

func TestParseDecimalBoundaries(t *testing.T) {
	for _, s := range []string{
		"9999999", "99999999", "999999999",
		"999999999999999", "9999999999999999", "99999999999999999",
		"9223372036854775806", "9223372036854775807",
		"1000000000000000000",
	} {
		want, err := strconv.ParseInt(s, 10, 64)
		require.NoError(t, err)
		got, ok := ParseDecimal([]byte(s), false)
		require.True(t, ok, s)
		require.Equal(t, want, got, s)
	}
	_, ok := ParseDecimal([]byte("9223372036854775808"), false)
	require.False(t, ok)
	v, ok := ParseDecimal([]byte("9223372036854775808"), true)
	require.True(t, ok)
	require.Equal(t, int64(math.MinInt64), v)
	_, ok = ParseDecimal([]byte("99999999999999999999"), false)
	require.False(t, ok)
	_, ok = ParseDecimal([]byte("1234x678"), false)
	require.False(t, ok)
}

func TestParseRadix(t *testing.T) {
	v, ok := ParseRadix([]byte("7fffffffffffffff"), 16, false)
	require.True(t, ok)
	require.Equal(t, int64(math.MaxInt64), v)
	_, ok = ParseRadix([]byte("8000000000000000"), 16, false)
	require.False(t, ok)
	v, ok = ParseRadix([]byte("8000000000000000"), 16, true)
	require.True(t, ok)
	require.Equal(t, int64(math.MinInt64), v)
	_, ok = ParseRadix([]byte("19"), 8, false)
	require.False(t, ok)
}

func TestParseFloats(t *testing.T) {
	testCases := []string{
		"1.5", "-1.5", "0.1", "3.14159", "1e10", "1E-5", "2.5e+3",
		"123456789.123456789", "0.000001", "1.", "1e22", "1e23", "9007199254740993.0",
		"4.9e-324", "1.7976931348623157e308", "00.5", "1234567890123456789012.5",
	}
	for _, in := range testCases {
		t.Run(in, func(t *testing.T) {
			r := parse(t, in, defaults)
			require.Equal(t, Float, r.Kind)
			want, err := strconv.ParseFloat(in, 64)
			require.NoError(t, err)
			require.Equal(t, math.Float64bits(want), math.Float64bits(r.Float))
		})
	}
}

func TestClingerMatchesStrconv(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for range 20000 {
		mant := r.Uint64N(1 << 53)
		exp := r.IntN(45) - 22
		s := strconv.FormatUint(mant, 10) + "e" + strconv.Itoa(exp)
		got, ok := clinger([]byte(s))
		if !ok {
			continue
		}
		want, err := strconv.ParseFloat(s, 64)
		require.NoError(t, err)
		require.Equal(t, math.Float64bits(want), math.Float64bits(got), s)
	}
}

func TestFloatOverflowIsInfinite(t *testing.T) {
	r := parse(t, "1e400", defaults)
	require.True(t, math.IsInf(r.Float, 1))
	r = parse(t, "-1e400", defaults)
	require.True(t, math.IsInf(r.Float, -1))
}

func TestBigDecimal(t *testing.T) {
	r := parse(t, "-1.50M", defaults)
	require.Equal(t, BigDecimal, r.Kind)
	require.Equal(t, "1.50", string(r.Digits))
	require.True(t, r.Negative)
	require.Equal(t, 6, r.End)

	r = parse(t, "7M", defaults)
	require.Equal(t, BigDecimal, r.Kind)
	require.Equal(t, "7", string(r.Digits))
}

func TestRatios(t *testing.T) {
	r := parse(t, "6/4", defaults)
	require.Equal(t, Ratio, r.Kind)
	require.Equal(t, int64(3), r.Num)
	require.Equal(t, int64(2), r.Den)

	r = parse(t, "-22/7", defaults)
	require.Equal(t, int64(-22), r.Num)
	require.Equal(t, int64(7), r.Den)

	r = parse(t, "4/2", defaults)
	require.Equal(t, Int, r.Kind)
	require.Equal(t, int64(2), r.Int)

	r = parse(t, "0/5", defaults)
	require.Equal(t, Int, r.Kind)
	require.Equal(t, int64(0), r.Int)

	_, err := Parse([]byte("1/0"), 0, defaults)
	require.ErrorContains(t, err, "zero ratio denominator")
	_, err = Parse([]byte("1/-2"), 0, defaults)
	require.ErrorContains(t, err, "signed ratio denominator")
	_, err = Parse([]byte("1/2"), 0, Options{})
	require.ErrorContains(t, err, "invalid character")
}

func TestOctal(t *testing.T) {
	_, err := Parse([]byte("07"), 0, defaults)
	require.ErrorContains(t, err, "leading zero")

	r := parse(t, "017", Options{Octal: true})
	require.Equal(t, Int, r.Kind)
	require.Equal(t, int64(15), r.Int)
	require.Equal(t, 8, r.Radix)

	_, err = Parse([]byte("018"), 0, Options{Octal: true})
	require.ErrorContains(t, err, "invalid octal digit")
}

func TestSeparators(t *testing.T) {
	opts := Options{Separators: true}
	r := parse(t, "1_000_000", opts)
	require.Equal(t, Int, r.Kind)
	require.Equal(t, int64(1000000), r.Int)

	r = parse(t, "0xFF_FF", opts)
	require.Equal(t, int64(0xFFFF), r.Int)

	r = parse(t, "1_000.5", opts)
	require.Equal(t, 1000.5, r.Float)

	r = parse(t, "99_999_999_999_999_999_999", opts)
	require.Equal(t, BigInt, r.Kind)
	require.True(t, r.HasSeparators)
	require.Equal(t, "99999999999999999999", string(CleanDigits(nil, r.Digits)))

	r = parse(t, "1_000/4", Options{Separators: true, Ratios: true})
	require.Equal(t, Int, r.Kind)
	require.Equal(t, int64(250), r.Int)

	r = parse(t, "3/1_000", Options{Separators: true, Ratios: true})
	require.Equal(t, Ratio, r.Kind)
	require.Equal(t, int64(3), r.Num)
	require.Equal(t, int64(1000), r.Den)

	for _, in := range []string{"1__0", "1_", "1._5"} {
		_, err := Parse([]byte(in), 0, opts)
		require.Error(t, err, in)
	}
	_, err := Parse([]byte("1_000"), 0, Options{})
	require.Error(t, err)
}

func TestInvalidNumbers(t *testing.T) {
	testCases := []struct {
		in  string
		msg string
	}{
		{"1abc", "invalid character 'a'"},
		{"1.5x", "invalid character 'x'"},
		{"0x", "expected base-16 digit"},
		{"1e", "expected exponent digits"},
		{"1e+", "expected exponent digits"},
		{"37r1", "radix out of range"},
		{"1r1", "radix out of range"},
		{"2r102", "invalid character '2'"},
		{"1.5N", "invalid character 'N'"},
		{"0x1M", "invalid character 'M'"},
		{"-", "expected digit"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			_, err := Parse([]byte(tc.in), 0, defaults)
			require.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestParseStopsAtDelimiter(t *testing.T) {
	r := parse(t, "[12 13]"[1:], defaults)
	require.Equal(t, 2, r.End)
	b := []byte("(1.5)")
	r2, err := Parse(b, 1, defaults)
	require.NoError(t, err)
	require.Equal(t, 4, r2.End)
}

func TestReduce(t *testing.T) {
	n, d := Reduce(-12, 18)
	require.Equal(t, int64(-2), n)
	require.Equal(t, int64(3), d)
	n, d = Reduce(math.MinInt64, 2)
	require.Equal(t, int64(math.MinInt64/2), n)
	require.Equal(t, int64(1), d)
	require.Equal(t, uint64(6), gcd(48, 18))
	require.Equal(t, uint64(7), gcd(0, 7))
}

func TestSpecialFloat(t *testing.T) {
	f, ok := SpecialFloat([]byte("Inf"))
	require.True(t, ok)
	require.True(t, math.IsInf(f, 1))
	f, ok = SpecialFloat([]byte("NaN"))
	require.True(t, ok)
	require.True(t, math.IsNaN(f))
	_, ok = SpecialFloat([]byte("Infinity"))
	require.False(t, ok)
}
