package number

import (
	"errors"
	"math"
	"strconv"

	"github.com/KimNorgaard/go-edn/internal/scan"
)

// Powers of ten that are exact in a float64.
var pow10 = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11,
	1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20, 1e21, 1e22,
}

const maxExactMantissa = 1 << 53

// parseFloat converts unsigned float text (digits, optional fraction and
// exponent) using Clinger's fast path when the decimal mantissa and power
// of ten are both exact, and strconv otherwise.
func parseFloat(text []byte, negative, separated bool) (float64, error) {
	if !separated {
		if f, ok := clinger(text); ok {
			if negative {
				f = -f
			}
			return f, nil
		}
	}
	buf := make([]byte, 0, len(text)+1)
	if negative {
		buf = append(buf, '-')
	}
	buf = CleanDigits(buf, text)
	f, err := strconv.ParseFloat(string(buf), 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) {
			return f, nil
		}
		return 0, err
	}
	return f, nil
}

// clinger is the exact fast path. It reports false when the literal needs
// the general conversion.
func clinger(text []byte) (float64, bool) {
	var mantissa uint64
	digits := 0
	exp10 := 0
	i := 0

	accumulate := func(run []byte) bool {
		for _, c := range run {
			if digits == 0 && c == '0' {
				continue
			}
			digits++
			if digits > 19 {
				return false
			}
			mantissa = mantissa*10 + uint64(c-'0')
		}
		return true
	}

	n := scan.Default.DigitRun(text)
	if !accumulate(text[:n]) {
		return 0, false
	}
	i = n
	if i < len(text) && text[i] == '.' {
		i++
		n = scan.Default.DigitRun(text[i:])
		if !accumulate(text[i : i+n]) {
			return 0, false
		}
		exp10 -= n
		i += n
	}
	if i < len(text) && (text[i] == 'e' || text[i] == 'E') {
		i++
		neg := false
		if i < len(text) && (text[i] == '+' || text[i] == '-') {
			neg = text[i] == '-'
			i++
		}
		e := 0
		for ; i < len(text); i++ {
			e = e*10 + int(text[i]-'0')
			if e > 1000 {
				return 0, false
			}
		}
		if neg {
			e = -e
		}
		exp10 += e
	}
	if i != len(text) {
		return 0, false
	}

	if mantissa == 0 {
		return 0, true
	}
	if mantissa > maxExactMantissa || exp10 < -22 || exp10 > 22 {
		return 0, false
	}
	f := float64(mantissa)
	if exp10 < 0 {
		return f / pow10[-exp10], true
	}
	return f * pow10[exp10], true
}

// SpecialFloat resolves the name after ## to its value.
func SpecialFloat(name []byte) (float64, bool) {
	switch string(name) {
	case "Inf":
		return math.Inf(1), true
	case "-Inf":
		return math.Inf(-1), true
	case "NaN":
		return math.NaN(), true
	}
	return 0, false
}
