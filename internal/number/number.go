// Package number classifies and parses EDN numeric literals.
//
// A literal is first offered to a fast path that accepts a bare run of
// decimal digits. Anything with a sign, radix prefix, fraction, exponent,
// suffix or ratio goes through the general scanner. Integers never wrap:
// a literal that does not fit in an int64 is reported as a BigInt whose
// digits alias the input.
package number

import (
	"fmt"

	"github.com/KimNorgaard/go-edn/internal/scan"
)

// Kind is the numeric variant a literal was classified as.
type Kind uint8

const (
	Int Kind = iota + 1
	BigInt
	Float
	BigDecimal
	Ratio
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case BigInt:
		return "bigint"
	case Float:
		return "float"
	case BigDecimal:
		return "bigdecimal"
	case Ratio:
		return "ratio"
	}
	return "unknown"
}

// Separator is the digit separator accepted when Options.Separators is set.
const Separator = '_'

// Options selects the optional numeric syntax.
type Options struct {
	Ratios     bool // N/D literals
	Octal      bool // leading-zero octal literals
	Separators bool // 1_000_000
}

// Result describes one parsed literal.
type Result struct {
	Kind Kind
	// End is the offset just past the literal.
	End int

	Int   int64
	Float float64
	// Digits is the BigInt digit text (no sign, prefix or suffix) or the
	// BigDecimal text (no sign or suffix). It aliases the input.
	Digits   []byte
	Negative bool
	Radix    int
	// Num and Den are the reduced ratio; Den > 1.
	Num, Den int64
	// HasSeparators reports that Digits contains Separator bytes.
	HasSeparators bool
}

// SyntaxError reports a malformed literal at a byte offset.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

func errorf(off int, format string, args ...any) error {
	return &SyntaxError{Offset: off, Msg: fmt.Sprintf(format, args...)}
}

// Parse reads the literal starting at b[start], which must be a digit or a
// sign followed by a digit.
func Parse(b []byte, start int, opts Options) (Result, error) {
	if r, ok := fastPath(b, start); ok {
		return r, nil
	}
	return parseGeneral(b, start, opts)
}

// fastPath handles an unsigned decimal digit run terminated by a
// delimiter or the end of input.
func fastPath(b []byte, start int) (Result, bool) {
	n := scan.Default.DigitRun(b[start:])
	end := start + n
	if n == 0 || (n > 1 && b[start] == '0') {
		return Result{}, false
	}
	if end < len(b) && !scan.IsDelimiter(b[end]) {
		return Result{}, false
	}
	digits := b[start:end]
	if v, ok := ParseDecimal(digits, false); ok {
		return Result{Kind: Int, End: end, Int: v, Radix: 10}, true
	}
	return Result{Kind: BigInt, End: end, Digits: digits, Radix: 10}, true
}

type literal struct {
	b    []byte
	opts Options

	negative  bool
	intStart  int
	intEnd    int
	isFloat   bool
	separated bool
}

func parseGeneral(b []byte, start int, opts Options) (Result, error) {
	l := &literal{b: b, opts: opts}
	i := start
	if b[i] == '+' || b[i] == '-' {
		l.negative = b[i] == '-'
		i++
	}
	if i >= len(b) || !scan.IsDigit(b[i]) {
		return Result{}, errorf(i, "expected digit")
	}

	if b[i] == '0' && i+1 < len(b) && (b[i+1] == 'x' || b[i+1] == 'X') {
		return l.parsePrefixed(i+2, 16)
	}

	var ok bool
	l.intStart = i
	i, ok = l.parseIntegerPart(i, 10)
	if !ok {
		return Result{}, errorf(i, "misplaced digit separator")
	}
	l.intEnd = i

	if i < len(b) && (b[i] == 'r' || b[i] == 'R') {
		radix, ok := smallDecimal(b[l.intStart:l.intEnd])
		if !ok || radix < 2 || radix > 36 {
			return Result{}, errorf(l.intStart, "radix out of range")
		}
		return l.parsePrefixed(i+1, radix)
	}

	i, ok = l.parseFractionalPart(i)
	if !ok {
		return Result{}, errorf(i, "misplaced digit separator")
	}
	i, ok = l.parseExponentPart(i)
	if !ok {
		return Result{}, errorf(i, "expected exponent digits")
	}

	if i < len(b) && b[i] == 'M' {
		r := Result{Kind: BigDecimal, End: i + 1, Digits: b[l.intStart:i], Negative: l.negative, HasSeparators: l.separated}
		return r, l.checkEnd(r.End)
	}
	if l.isFloat {
		f, err := parseFloat(b[l.intStart:i], l.negative, l.separated)
		if err != nil {
			return Result{}, errorf(start, "%v", err)
		}
		return Result{Kind: Float, End: i, Float: f}, l.checkEnd(i)
	}

	digits := b[l.intStart:l.intEnd]
	if len(digits) > 1 && digits[0] == '0' {
		return l.parseOctal(digits, i)
	}

	forceBig := false
	if i < len(b) && b[i] == 'N' {
		forceBig = true
		i++
	} else if opts.Ratios && i < len(b) && b[i] == '/' {
		return l.parseRatio(digits, i+1)
	}
	r := l.integer(digits, 10, forceBig, i)
	return r, l.checkEnd(i)
}

// parsePrefixed reads the digits after a 0x or Nr prefix.
func (l *literal) parsePrefixed(i, radix int) (Result, error) {
	start := i
	i, ok := l.parseIntegerPart(i, radix)
	if !ok {
		return Result{}, errorf(i, "misplaced digit separator")
	}
	if i == start {
		return Result{}, errorf(i, "expected base-%d digit", radix)
	}
	digits := l.b[start:i]
	forceBig := false
	if i < len(l.b) && l.b[i] == 'N' {
		forceBig = true
		i++
	}
	r := l.integer(digits, radix, forceBig, i)
	return r, l.checkEnd(i)
}

func (l *literal) parseOctal(digits []byte, end int) (Result, error) {
	if !l.opts.Octal {
		return Result{}, errorf(l.intStart, "leading zero in integer")
	}
	for k, c := range digits {
		if c > '7' && c != Separator {
			return Result{}, errorf(l.intStart+k, "invalid octal digit %q", c)
		}
	}
	forceBig := false
	if end < len(l.b) && l.b[end] == 'N' {
		forceBig = true
		end++
	}
	r := l.integer(digits[1:], 8, forceBig, end)
	return r, l.checkEnd(end)
}

func (l *literal) parseRatio(numDigits []byte, i int) (Result, error) {
	b := l.b
	if i < len(b) && (b[i] == '-' || b[i] == '+') {
		return Result{}, errorf(i, "signed ratio denominator")
	}
	denStart := i
	i, ok := l.parseIntegerPart(i, 10)
	if !ok || i == denStart {
		return Result{}, errorf(i, "expected ratio denominator")
	}
	if err := l.checkEnd(i); err != nil {
		return Result{}, err
	}

	num, ok := l.decimal(numDigits, l.negative)
	if !ok {
		return Result{}, errorf(l.intStart, "ratio numerator out of range")
	}
	den, ok := l.decimal(b[denStart:i], false)
	if !ok {
		return Result{}, errorf(denStart, "ratio denominator out of range")
	}
	if den == 0 {
		return Result{}, errorf(denStart, "zero ratio denominator")
	}
	num, den = Reduce(num, den)
	if den == 1 {
		return Result{Kind: Int, End: i, Int: num, Radix: 10}, nil
	}
	return Result{Kind: Ratio, End: i, Num: num, Den: den}, nil
}

// integer builds an Int result, or a BigInt when the value overflows or
// the N suffix was given.
func (l *literal) integer(digits []byte, radix int, forceBig bool, end int) Result {
	if !forceBig {
		var v int64
		var ok bool
		if radix == 10 {
			v, ok = l.decimal(digits, l.negative)
		} else {
			v, ok = l.radix(digits, radix)
		}
		if ok {
			return Result{Kind: Int, End: end, Int: v, Radix: radix}
		}
	}
	return Result{
		Kind:          BigInt,
		End:           end,
		Digits:        digits,
		Negative:      l.negative,
		Radix:         radix,
		HasSeparators: l.separated,
	}
}

func (l *literal) decimal(digits []byte, negative bool) (int64, bool) {
	if l.separated && !scan.Default.AllDigits(digits) {
		var buf [64]byte
		digits = CleanDigits(buf[:0], digits)
	}
	return ParseDecimal(digits, negative)
}

func (l *literal) radix(digits []byte, radix int) (int64, bool) {
	if l.separated && !scan.Default.AllDigits(digits) {
		var buf [64]byte
		digits = CleanDigits(buf[:0], digits)
	}
	return ParseRadix(digits, radix, l.negative)
}

// checkEnd requires a delimiter or the end of input at i.
func (l *literal) checkEnd(i int) error {
	if i < len(l.b) && !scan.IsDelimiter(l.b[i]) {
		return errorf(i, "invalid character %q in number", l.b[i])
	}
	return nil
}

// parseIntegerPart consumes digits of the given radix. With separators
// enabled a single separator may appear between two digits.
func (l *literal) parseIntegerPart(i, radix int) (newIndex int, ok bool) {
	b := l.b
	if radix == 10 && !l.opts.Separators {
		return i + scan.Default.DigitRun(b[i:]), true
	}
	start := i
	for i < len(b) {
		c := b[i]
		if c == Separator && l.opts.Separators {
			if i == start || i+1 >= len(b) || digitValue(b[i+1]) >= radix {
				return i, false
			}
			l.separated = true
			i++
			continue
		}
		if digitValue(c) >= radix {
			break
		}
		i++
	}
	return i, true
}

func (l *literal) parseFractionalPart(i int) (newIndex int, ok bool) {
	if i >= len(l.b) || l.b[i] != '.' {
		return i, true
	}
	l.isFloat = true
	return l.parseIntegerPart(i+1, 10)
}

func (l *literal) parseExponentPart(i int) (newIndex int, ok bool) {
	b := l.b
	if i >= len(b) || (b[i] != 'e' && b[i] != 'E') {
		return i, true
	}
	l.isFloat = true
	i++
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}
	start := i
	i += scan.Default.DigitRun(b[i:])
	return i, i > start
}

// digitValue returns the value of c as a base-36 digit, or 36 if c is not
// a digit in any base.
func digitValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}

func smallDecimal(b []byte) (int, bool) {
	if len(b) == 0 || len(b) > 2 {
		return 0, false
	}
	v := 0
	for _, c := range b {
		if !scan.IsDigit(c) {
			return 0, false
		}
		v = v*10 + int(c-'0')
	}
	return v, true
}

// CleanDigits appends b to dst without separator bytes.
func CleanDigits(dst, b []byte) []byte {
	for _, c := range b {
		if c != Separator {
			dst = append(dst, c)
		}
	}
	return dst
}

// Reduce divides num and den by their greatest common divisor. den must be
// positive.
func Reduce(num, den int64) (int64, int64) {
	if num == 0 {
		return 0, 1
	}
	n := uint64(num)
	if num < 0 {
		n = -n
	}
	g := gcd(n, uint64(den))
	return num / int64(g), den / int64(g)
}

// gcd is the binary greatest common divisor.
func gcd(a, b uint64) uint64 {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	shift := 0
	for (a|b)&1 == 0 {
		a >>= 1
		b >>= 1
		shift++
	}
	for a&1 == 0 {
		a >>= 1
	}
	for b != 0 {
		for b&1 == 0 {
			b >>= 1
		}
		if a > b {
			a, b = b, a
		}
		b -= a
	}
	return a << shift
}
