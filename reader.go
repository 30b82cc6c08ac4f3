package edn

import (
	"errors"
	"fmt"

	"github.com/KimNorgaard/go-edn/internal/locate"
	"github.com/KimNorgaard/go-edn/internal/number"
	"github.com/KimNorgaard/go-edn/internal/scan"
	"github.com/KimNorgaard/go-edn/internal/strlit"
)

type readFn func(r *reader) (Value, error)

// dispatch maps the class of the byte at the start of a form to its
// reader. Whitespace and comments never reach it.
var dispatch [scan.Meta + 1]readFn

func init() {
	dispatch[scan.Invalid] = (*reader).readInvalid
	dispatch[scan.StringOpen] = (*reader).readString
	dispatch[scan.CharEscape] = (*reader).readChar
	dispatch[scan.ListOpen] = (*reader).readList
	dispatch[scan.VectorOpen] = (*reader).readVector
	dispatch[scan.MapOpen] = (*reader).readMapLiteral
	dispatch[scan.Close] = (*reader).readClose
	dispatch[scan.Hash] = (*reader).readDispatch
	dispatch[scan.Sign] = (*reader).readSign
	dispatch[scan.Digit] = (*reader).readNumber
	dispatch[scan.Ident] = (*reader).readIdent
	dispatch[scan.Meta] = (*reader).readMeta
}

// reader holds the state of one read.
type reader struct {
	src  []byte
	pos  int
	a    *Arena
	opts *options
	num  number.Options

	// depth counts the enclosing collections, tags, metadata and
	// discards.
	depth int
	// discarding is non-zero while reading the operand of #_.
	discarding int
	// colls counts the enclosing collections.
	colls int
	// forms counts the complete top-level forms.
	forms int
}

func newReader(src []byte, a *Arena, opts *options) *reader {
	return &reader{
		src:  src,
		a:    a,
		opts: opts,
		num: number.Options{
			Ratios:     opts.ratios,
			Octal:      opts.octal,
			Separators: opts.separators,
		},
	}
}

func (r *reader) errorAt(code ErrorCode, offset int, format string, args ...any) *Error {
	line, col := locate.Position(r.src, offset)
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
		Line:    line,
		Column:  col,
	}
}

// truncated reports input that ends after the prefix at start. Only a
// prefix that opens the document is a premature end of input. Inside a
// collection the collection is unterminated, and after a complete form the
// prefix is reported with code.
func (r *reader) truncated(code ErrorCode, start int, format string, args ...any) *Error {
	switch {
	case r.colls > 0:
		code = ErrUnterminatedCollection
	case r.forms == 0:
		code = ErrUnexpectedEOF
	}
	return r.errorAt(code, start, format, args...)
}

func (r *reader) oom(offset int) *Error {
	return r.errorAt(ErrOutOfMemory, offset, "arena exhausted")
}

func (r *reader) enter(offset int) error {
	r.depth++
	if r.depth > r.opts.maxDepth {
		return r.errorAt(ErrDepthExceeded, offset, "nesting deeper than %d", r.opts.maxDepth)
	}
	return nil
}

func (r *reader) leave() { r.depth-- }

// skipSpace moves past whitespace, commas and line comments.
func (r *reader) skipSpace() {
	for r.pos < len(r.src) {
		switch scan.ClassOf(r.src[r.pos]) {
		case scan.Whitespace:
			r.pos++
		case scan.Comment:
			for r.pos < len(r.src) && r.src[r.pos] != '\n' {
				r.pos++
			}
		default:
			return
		}
	}
}

// skip moves past whitespace, comments and discarded forms. It returns the
// byte that starts the next form, or false at the end of input.
func (r *reader) skip() (byte, bool, error) {
	for {
		r.skipSpace()
		if r.pos >= len(r.src) {
			return 0, false, nil
		}
		c := r.src[r.pos]
		if c != '#' || r.pos+1 >= len(r.src) || r.src[r.pos+1] != '_' {
			return c, true, nil
		}
		if err := r.discard(); err != nil {
			return 0, false, err
		}
	}
}

// discard reads and drops the form after #_. No tag readers run inside it.
func (r *reader) discard() error {
	start := r.pos
	r.pos += 2
	if err := r.enter(start); err != nil {
		return err
	}
	defer r.leave()

	c, ok, err := r.skip()
	if err != nil {
		return err
	}
	if !ok {
		return r.truncated(ErrInvalidDiscard, start, "#_ at end of input")
	}
	if scan.ClassOf(c) == scan.Close {
		return r.errorAt(ErrInvalidDiscard, r.pos, "#_ followed by %q", c)
	}
	r.discarding++
	_, err = r.readForm()
	r.discarding--
	return err
}

// next reads the next form. ok is false at the end of input.
func (r *reader) next() (v Value, ok bool, err error) {
	if _, ok, err = r.skip(); !ok || err != nil {
		return nil, false, err
	}
	v, err = r.readForm()
	return v, err == nil, err
}

// operand reads the form that a tag or metadata prefix at start applies to.
func (r *reader) operand(start int, what string) (Value, error) {
	c, ok, err := r.skip()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, r.truncated(ErrInvalidSyntax, start, "%s at end of input", what)
	}
	if scan.ClassOf(c) == scan.Close && r.depth > 0 {
		return nil, r.errorAt(ErrInvalidSyntax, r.pos, "%s followed by %q", what, c)
	}
	return r.readForm()
}

// readForm reads the form starting at r.pos, which is neither whitespace
// nor a discard.
func (r *reader) readForm() (Value, error) {
	return dispatch[scan.ClassOf(r.src[r.pos])](r)
}

func (r *reader) readInvalid() (Value, error) {
	return nil, r.errorAt(ErrInvalidSyntax, r.pos, "unexpected character %q", r.src[r.pos])
}

func (r *reader) readClose() (Value, error) {
	if r.depth == 0 {
		return nil, r.errorAt(ErrUnmatchedDelimiter, r.pos, "unmatched delimiter %q", r.src[r.pos])
	}
	return nil, r.errorAt(ErrInvalidSyntax, r.pos, "unexpected %q", r.src[r.pos])
}

func (r *reader) readSign() (Value, error) {
	if r.pos+1 < len(r.src) && scan.IsDigit(r.src[r.pos+1]) {
		return r.readNumber()
	}
	return r.readIdent()
}

func (r *reader) readNumber() (Value, error) {
	start := r.pos
	res, err := number.Parse(r.src, start, r.num)
	if err != nil {
		var se *number.SyntaxError
		if errors.As(err, &se) {
			return nil, r.errorAt(ErrInvalidNumber, se.Offset, "%s", se.Msg)
		}
		return nil, r.errorAt(ErrInvalidNumber, start, "%v", err)
	}
	r.pos = res.End

	var v Value
	switch res.Kind {
	case number.Int:
		if x := r.a.newInt(res.Int, res.Radix); x != nil {
			v = x
		}
	case number.BigInt:
		if x := r.a.newBigInt(res.Digits, res.Negative, res.Radix, res.HasSeparators); x != nil {
			v = x
		}
	case number.Float:
		if x := r.a.newFloat(res.Float); x != nil {
			v = x
		}
	case number.BigDecimal:
		if x := r.a.newBigDecimal(res.Digits, res.Negative, res.HasSeparators); x != nil {
			v = x
		}
	case number.Ratio:
		if x := r.a.newRatio(res.Num, res.Den); x != nil {
			v = x
		}
	}
	if v == nil {
		return nil, r.oom(start)
	}
	return v, nil
}

func (r *reader) readString() (Value, error) {
	start := r.pos
	end, escaped, err := strlit.Scan(r.src, start)
	if err != nil {
		return nil, r.literalError(err, ErrInvalidString)
	}
	r.pos = end
	s := r.a.newString(r.src[start+1:end-1], escaped)
	if s == nil {
		return nil, r.oom(start)
	}
	return s, nil
}

func (r *reader) readChar() (Value, error) {
	start := r.pos
	c, end, err := strlit.Char(r.src, start)
	if err != nil {
		return nil, r.literalError(err, ErrInvalidSyntax)
	}
	r.pos = end
	x := r.a.newChar(c)
	if x == nil {
		return nil, r.oom(start)
	}
	return x, nil
}

func (r *reader) literalError(err error, code ErrorCode) error {
	var se *strlit.SyntaxError
	if !errors.As(err, &se) {
		return r.errorAt(code, r.pos, "%v", err)
	}
	if se.Escape {
		code = ErrInvalidEscape
	}
	return r.errorAt(code, se.Offset, "%s", se.Msg)
}

// readDispatch handles the forms that start with '#'.
func (r *reader) readDispatch() (Value, error) {
	start := r.pos
	if start+1 >= len(r.src) {
		return nil, r.truncated(ErrInvalidSyntax, start, "'#' at end of input")
	}
	switch c := r.src[start+1]; {
	case c == '{':
		r.pos++
		return r.readSeq(KindSet, '}')
	case c == '#':
		return r.readSymbolicFloat()
	case c == ':':
		return r.readNamespacedMap()
	case isAlpha(c):
		return r.readTagged()
	default:
		return nil, r.errorAt(ErrInvalidSyntax, start, "invalid dispatch character %q", c)
	}
}

func (r *reader) readSymbolicFloat() (Value, error) {
	start := r.pos
	nameStart := start + 2
	end := nameStart + scan.Default.IndexDelimiter(r.src[nameStart:])
	f, ok := number.SpecialFloat(r.src[nameStart:end])
	if !ok {
		return nil, r.errorAt(ErrInvalidSyntax, start, "unknown symbolic value ##%s", r.src[nameStart:end])
	}
	r.pos = end
	x := r.a.newFloat(f)
	if x == nil {
		return nil, r.oom(start)
	}
	return x, nil
}

// readTagged reads #tag form. While discarding, the operand is read and
// returned without consulting the registry.
func (r *reader) readTagged() (Value, error) {
	start := r.pos
	tagStart := start + 1
	end := tagStart + scan.Default.IndexDelimiter(r.src[tagStart:])
	tag := r.src[tagStart:end]
	if !validTag(tag) {
		return nil, r.errorAt(ErrInvalidSyntax, start, "invalid tag #%s", tag)
	}
	r.pos = end

	if err := r.enter(start); err != nil {
		return nil, err
	}
	inner, err := r.operand(start, "tag #"+string(tag))
	r.leave()
	if err != nil {
		return nil, err
	}

	if r.discarding > 0 {
		return inner, nil
	}
	if fn := r.opts.registry.lookup(tag); fn != nil {
		v, err := fn(inner, r.a)
		if err != nil {
			e := r.errorAt(ErrReaderFailed, start, "%s", err.Error())
			e.Err = err
			return nil, e
		}
		if v == nil {
			return nil, r.errorAt(ErrReaderFailed, start, "reader for #%s returned no value", tag)
		}
		return v, nil
	}

	switch r.opts.fallback {
	case FallbackUnwrap:
		return inner, nil
	case FallbackError:
		return nil, r.errorAt(ErrUnknownTag, start, "no reader for tag #%s", tag)
	}
	t := r.a.newTagged(tag, inner)
	if t == nil {
		return nil, r.oom(start)
	}
	return t, nil
}
