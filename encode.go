package edn

import (
	"bytes"
	"encoding"
	"fmt"
	"io"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/KimNorgaard/go-edn/internal/mapper"
)

// Marshaler is the interface implemented by types that can write
// themselves as EDN. MarshalEDN must return exactly one form, or nothing
// for nil.
type Marshaler interface {
	MarshalEDN() ([]byte, error)
}

var (
	timeType = reflect.TypeFor[time.Time]()
	uuidType = reflect.TypeFor[uuid.UUID]()
)

// Marshal returns the EDN encoding of v.
//
// Go values map onto EDN as follows:
//
//	nil pointers, interfaces, slices and maps  nil
//	bool                                       true or false
//	signed and unsigned integers               int, or bigint past int64
//	float32, float64                           float
//	string                                     string
//	slices and arrays                          vector
//	map[T]struct{}                             set
//	other maps                                 map, ordered by key
//	structs                                    map with keyword keys
//	time.Time, uuid.UUID                       #inst and #uuid
//	big.Int, big.Float, big.Rat                bigint, bigdecimal, ratio
//	Value                                      itself
//
// Struct fields are named by their `edn` tag or field name; "-" skips a
// field and omitempty skips it when empty. Types implementing Marshaler
// supply their own text, and types implementing encoding.TextMarshaler
// are written as strings.
//
// Marshal honors the Indent and MaxDepth options; cyclic values fail
// once MaxDepth is exceeded.
func Marshal(v any, opts ...Option) ([]byte, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return marshal(nil, v, &o)
}

func marshal(dst []byte, v any, o *options) ([]byte, error) {
	a := newArena(4<<10, o.maxArenaBytes, o.types)
	defer a.Release()

	es := &encodeState{a: a, opts: o}
	val, err := es.marshalValue(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	if o.indent != "" {
		return AppendIndent(dst, val, o.indent), nil
	}
	return appendValue(dst, val), nil
}

// Encoder writes EDN values to an output stream.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the EDN encoding of v to the stream, followed by a
// newline.
func (e *Encoder) Encode(v any) error {
	o, err := newOptions(e.opts)
	if err != nil {
		return err
	}
	b, err := marshal(nil, v, &o)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(b, '\n'))
	return err
}

type encodeState struct {
	a     *Arena
	opts  *options
	depth int
}

// alloc turns a nil result of an arena constructor into ErrOutOfMemory.
func alloc[T any, P interface {
	*T
	Value
}](p P) (Value, error) {
	if p == nil {
		return nil, ErrOutOfMemory
	}
	return p, nil
}

func (es *encodeState) marshalValue(v reflect.Value) (Value, error) { //nolint:gocyclo,funlen
	es.depth++
	if es.depth > es.opts.maxDepth {
		return nil, fmt.Errorf("edn: reached max recursion depth")
	}
	defer func() { es.depth-- }()

	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return Nil, nil
		}
		if v.CanInterface() {
			if x, ok := v.Interface().(Value); ok {
				return x, nil
			}
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return Nil, nil
	}

	pv := addressOf(v)
	if pv.CanInterface() {
		if m, ok := pv.Interface().(Marshaler); ok {
			return es.marshalCustom(pv.Type(), m)
		}
	}

	switch v.Type() {
	case timeType:
		return alloc(es.a.NewExternal(v.Interface().(time.Time), TypeInst))
	case uuidType:
		return alloc(es.a.NewExternal(v.Interface().(uuid.UUID), TypeUUID))
	case bigIntType:
		return alloc(es.a.NewBigInt(pv.Interface().(*big.Int)))
	case bigFloatType:
		return es.marshalBigFloat(pv.Interface().(*big.Float))
	case bigRatType:
		return es.marshalRat(pv.Interface().(*big.Rat))
	}

	if pv.CanInterface() {
		if m, ok := pv.Interface().(encoding.TextMarshaler); ok {
			text, err := m.MarshalText()
			if err != nil {
				return nil, &MarshalerError{Type: pv.Type(), Err: err}
			}
			return alloc(es.a.NewString(string(text)))
		}
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return True, nil
		}
		return False, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return alloc(es.a.NewInt(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := v.Uint()
		if n > math.MaxInt64 {
			return alloc(es.a.NewBigInt(new(big.Int).SetUint64(n)))
		}
		return alloc(es.a.NewInt(int64(n)))
	case reflect.Float32:
		// Widen through the shortest float32 text so 0.1 stays 0.1.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(v.Float(), 'g', -1, 32), 64)
		return alloc(es.a.NewFloat(f))
	case reflect.Float64:
		return alloc(es.a.NewFloat(v.Float()))
	case reflect.String:
		return alloc(es.a.NewString(v.String()))
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return Nil, nil
		}
		elems := make([]Value, v.Len())
		for i := range elems {
			e, err := es.marshalValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return alloc(es.a.NewVector(elems...))
	case reflect.Map:
		if v.IsNil() {
			return Nil, nil
		}
		return es.marshalMap(v)
	case reflect.Struct:
		return es.marshalStruct(v)
	}
	return nil, fmt.Errorf("edn: unsupported type for marshaling: %s", v.Type())
}

// addressOf returns a pointer to v, or to a copy of v when v is not
// addressable, so methods with pointer receivers are found.
func addressOf(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v.Addr()
	}
	pv := reflect.New(v.Type())
	pv.Elem().Set(v)
	return pv
}

func (es *encodeState) marshalCustom(t reflect.Type, m Marshaler) (Value, error) {
	b, err := m.MarshalEDN()
	if err != nil {
		return nil, &MarshalerError{Type: t, Err: err}
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return Nil, nil
	}

	// The text is read into the arena of the value being built.
	r := newReader(b, es.a, es.opts)
	doc, err := r.readDocument(false)
	if err != nil {
		return nil, &MarshalerError{Type: t, Err: fmt.Errorf("invalid EDN output: %w", err)}
	}
	return doc.Value(), nil
}

func (es *encodeState) marshalBigFloat(f *big.Float) (Value, error) {
	if f.IsInf() {
		return nil, fmt.Errorf("edn: cannot marshal infinite big.Float")
	}
	x, err := es.a.NewBigDecimal(f.Text('g', -1))
	if err != nil {
		return nil, err
	}
	return x, nil
}

func (es *encodeState) marshalRat(r *big.Rat) (Value, error) {
	if r.IsInt() {
		if n := r.Num(); n.IsInt64() {
			return alloc(es.a.NewInt(n.Int64()))
		}
		return alloc(es.a.NewBigInt(r.Num()))
	}
	if !r.Num().IsInt64() || !r.Denom().IsInt64() {
		return nil, fmt.Errorf("edn: ratio %s out of range", r)
	}
	return es.a.NewRatio(r.Num().Int64(), r.Denom().Int64())
}

func (es *encodeState) marshalMap(v reflect.Value) (Value, error) {
	isSet := v.Type().Elem().Kind() == reflect.Struct && v.Type().Elem().NumField() == 0

	type entry struct{ k, v Value }
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := es.marshalValue(iter.Key())
		if err != nil {
			return nil, err
		}
		var val Value
		if !isSet {
			if val, err = es.marshalValue(iter.Value()); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry{k, val})
	}
	slices.SortFunc(entries, func(a, b entry) int { return Compare(a.k, b.k) })

	keys := make([]Value, len(entries))
	vals := make([]Value, len(entries))
	for i, e := range entries {
		keys[i], vals[i] = e.k, e.v
	}
	if isSet {
		return es.checked(es.a.NewSet(keys...))
	}
	return es.checked(es.a.NewMap(keys, vals))
}

// checked unwraps the result of a collection constructor.
func (es *encodeState) checked(v Value, err error) (Value, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (es *encodeState) marshalStruct(v reflect.Value) (Value, error) {
	fields := mapper.Cached(v.Type())
	keys := make([]Value, 0, len(fields.List))
	vals := make([]Value, 0, len(fields.List))
	for _, f := range fields.List {
		fv, ok := fieldValue(v, f.Index)
		if !ok {
			continue
		}
		if f.OmitEmpty && isEmptyValue(fv) {
			continue
		}
		val, err := es.marshalValue(fv)
		if err != nil {
			return nil, err
		}
		k := es.a.NewKeyword("", f.Name)
		if k == nil {
			return nil, ErrOutOfMemory
		}
		keys = append(keys, k)
		vals = append(vals, val)
	}
	return es.checked(es.a.NewMap(keys, vals))
}

// fieldValue follows index through embedded structs. It reports false when
// a nil embedded pointer is in the way.
func fieldValue(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// isEmptyValue reports whether the value v is empty.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}
