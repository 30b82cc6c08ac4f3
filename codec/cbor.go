package codec

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	edn "github.com/KimNorgaard/go-edn"
)

// CBOR tag numbers from the IANA registry.
const (
	tagDecimalFraction = 4
	tagRational        = 30
	tagUUID            = 37
	tagIdentifier      = 39
	tagSet             = 258
)

// maxDepth matches the default nesting limit of the reader.
const maxDepth = 1000

// ErrCollision is returned when two map keys or set elements encode to the
// same CBOR item.
var ErrCollision = errors.New("codec: distinct values encode identically")

var encMode cbor.EncMode

func init() {
	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeUnixDynamic
	encOptions.TimeTag = cbor.EncTagRequired
	encOptions.BigIntConvert = cbor.BigIntConvertShortest
	var err error
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v as a single CBOR data item.
func Marshal(v edn.Value) ([]byte, error) {
	return encode(nil, v, 0)
}

// MarshalAll encodes every value as a CBOR sequence (RFC 8742).
func MarshalAll(vs []edn.Value) ([]byte, error) {
	var out []byte
	for _, v := range vs {
		var err error
		if out, err = encode(out, v, 0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) of data,
// which may be a sequence.
func Diagnose(data []byte) (string, error) {
	var items []string
	for len(data) > 0 {
		s, rest, err := cbor.DiagnoseFirst(data)
		if err != nil {
			return "", err
		}
		items = append(items, s)
		data = rest
	}
	return strings.Join(items, "\n"), nil
}

func encode(dst []byte, v edn.Value, depth int) ([]byte, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("codec: nesting deeper than %d", maxDepth)
	}
	switch x := v.(type) {
	case *edn.List:
		return encodeArray(dst, x.Elems(), depth)
	case *edn.Vector:
		return encodeArray(dst, x.Elems(), depth)
	case *edn.Set:
		items, err := encodeSorted(x.Elems(), depth)
		if err != nil {
			return nil, err
		}
		return appendItem(dst, cbor.Tag{Number: tagSet, Content: items})
	case *edn.Map:
		return encodeMap(dst, x, depth)
	case *edn.Tagged:
		inner, err := encode(nil, x.Inner(), depth+1)
		if err != nil {
			return nil, err
		}
		return appendItem(dst, map[string]any{
			"tag":   string(x.Tag()),
			"value": cbor.RawMessage(inner),
		})
	}
	item, err := scalar(v)
	if err != nil {
		return nil, err
	}
	return appendItem(dst, item)
}

// scalar returns the Go value fxamacker/cbor encodes as v.
func scalar(v edn.Value) (any, error) {
	switch x := v.(type) {
	case nil, *edn.NilValue:
		return nil, nil
	case *edn.Bool:
		return x.Value(), nil
	case *edn.Int:
		return x.Value(), nil
	case *edn.BigInt:
		return x.Big(), nil
	case *edn.Float:
		return x.Value(), nil
	case *edn.BigDecimal:
		return decimalFraction(x)
	case *edn.Ratio:
		return cbor.Tag{Number: tagRational, Content: []int64{x.Num(), x.Den()}}, nil
	case *edn.Char:
		return string(x.Value()), nil
	case *edn.String:
		return x.Value(), nil
	case *edn.Symbol:
		return cbor.Tag{Number: tagIdentifier, Content: x.String()}, nil
	case *edn.Keyword:
		return cbor.Tag{Number: tagIdentifier, Content: x.String()}, nil
	case *edn.External:
		switch p := x.Value().(type) {
		case time.Time:
			return p, nil
		case uuid.UUID:
			return cbor.Tag{Number: tagUUID, Content: p[:]}, nil
		}
		return nil, fmt.Errorf("codec: no CBOR mapping for external type %d", x.TypeID())
	}
	return nil, fmt.Errorf("codec: no CBOR mapping for %s", v.Kind())
}

// decimalFraction splits the decimal text into an integer mantissa and a
// base 10 exponent: 1.25e3 is 125 * 10^1.
func decimalFraction(d *edn.BigDecimal) (cbor.Tag, error) {
	text := d.Canonical()
	var exp int64
	if i := bytes.IndexByte(text, 'e'); i >= 0 {
		var err error
		exp, err = strconv.ParseInt(string(text[i+1:]), 10, 64)
		if err != nil {
			return cbor.Tag{}, fmt.Errorf("codec: decimal exponent of %s: %w", text, err)
		}
		text = text[:i]
	}
	mantissa := make([]byte, 0, len(text))
	for i, c := range text {
		if c == '.' {
			exp -= int64(len(text) - i - 1)
			continue
		}
		mantissa = append(mantissa, c)
	}
	m, ok := new(big.Int).SetString(string(mantissa), 10)
	if !ok {
		return cbor.Tag{}, fmt.Errorf("codec: invalid decimal %s", d.Canonical())
	}
	if d.Negative() {
		m.Neg(m)
	}
	return cbor.Tag{Number: tagDecimalFraction, Content: []any{exp, m}}, nil
}

func encodeArray(dst []byte, elems []edn.Value, depth int) ([]byte, error) {
	items := make([]cbor.RawMessage, len(elems))
	for i, e := range elems {
		item, err := encode(nil, e, depth+1)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return appendItem(dst, items)
}

// encodeSorted encodes elems and sorts the encodings bytewise, the order
// Core Deterministic Encoding uses for map keys.
func encodeSorted(elems []edn.Value, depth int) ([]cbor.RawMessage, error) {
	items := make([]cbor.RawMessage, len(elems))
	for i, e := range elems {
		item, err := encode(nil, e, depth+1)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	slices.SortFunc(items, func(a, b cbor.RawMessage) int { return bytes.Compare(a, b) })
	for i := 1; i < len(items); i++ {
		if bytes.Equal(items[i-1], items[i]) {
			return nil, collision(items[i])
		}
	}
	return items, nil
}

func encodeMap(dst []byte, m *edn.Map, depth int) ([]byte, error) {
	type entry struct{ key, val []byte }
	entries := make([]entry, m.Len())
	for i := range entries {
		k, err := encode(nil, m.Key(i), depth+1)
		if err != nil {
			return nil, err
		}
		v, err := encode(nil, m.Val(i), depth+1)
		if err != nil {
			return nil, err
		}
		entries[i] = entry{k, v}
	}
	slices.SortFunc(entries, func(a, b entry) int { return bytes.Compare(a.key, b.key) })
	dst = appendHead(dst, majorMap, uint64(len(entries)))
	for i, e := range entries {
		if i > 0 && bytes.Equal(entries[i-1].key, e.key) {
			return nil, collision(e.key)
		}
		dst = append(dst, e.key...)
		dst = append(dst, e.val...)
	}
	return dst, nil
}

func collision(item []byte) error {
	diag, err := cbor.Diagnose(item)
	if err != nil {
		diag = fmt.Sprintf("h'%x'", item)
	}
	return fmt.Errorf("%w: %s", ErrCollision, diag)
}

func appendItem(dst []byte, v any) ([]byte, error) {
	item, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	return append(dst, item...), nil
}

const majorMap = 5

// appendHead writes the initial byte and argument of a data item in the
// shortest form (RFC 8949 §3). Maps are written by hand because their keys
// are sorted after encoding, and the library has no API for a map of
// already encoded entries.
func appendHead(dst []byte, major byte, n uint64) []byte {
	m := major << 5
	switch {
	case n < 24:
		return append(dst, m|byte(n))
	case n <= 0xff:
		return append(dst, m|24, byte(n))
	case n <= 0xffff:
		return append(dst, m|25, byte(n>>8), byte(n))
	case n <= 0xffffffff:
		return append(dst, m|26, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
	return append(dst, m|27, byte(n>>56), byte(n>>48), byte(n>>40), byte(n>>32),
		byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}
