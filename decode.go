package edn

import (
	"encoding"
	"errors"
	"fmt"
	"io"
	"math/big"
	"reflect"

	"github.com/KimNorgaard/go-edn/internal/mapper"
)

// Unmarshaler is the interface implemented by types that can decode an
// EDN description of themselves. UnmarshalEDN receives the printed text of
// the value being decoded.
type Unmarshaler interface {
	UnmarshalEDN([]byte) error
}

var (
	bigIntType   = reflect.TypeFor[big.Int]()
	bigFloatType = reflect.TypeFor[big.Float]()
	bigRatType   = reflect.TypeFor[big.Rat]()
)

// Unmarshal reads exactly one form from data and stores it in the value
// pointed to by v.
//
// Values map onto Go types as follows:
//
//	nil                      the zero value
//	bool                     bool
//	int, bigint              integer kinds with range checks, big.Int
//	float, bigdecimal, ratio float kinds, big.Float, big.Rat
//	char                     rune or string
//	string, keyword, symbol  string (keywords and symbols as ns/name)
//	list, vector, set        slices and arrays
//	set                      also map[T]bool and map[T]struct{}
//	map                      structs, and maps with any decodable key type
//	tagged                   its inner value
//	external                 a target its payload is assignable to
//
// Struct fields match map keys by their `edn` tag or name, exactly first
// and then ignoring case. Into an empty interface, values decode as bool,
// int64, *big.Int, float64, *big.Float, *big.Rat, rune, string, []any,
// map[string]any (map[any]any when a key is not a string, keyword or
// symbol) or the external payload.
//
// Types implementing Unmarshaler receive the printed text of the value;
// types implementing encoding.TextUnmarshaler receive the contents of
// strings.
func Unmarshal(data []byte, v any, opts ...Option) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("edn: Unmarshal(non-pointer %T or nil)", v)
	}
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	doc, err := readWith(data, false, &o)
	if err != nil {
		return err
	}
	defer doc.Release()
	ds := &decodeState{maxDepth: o.maxDepth}
	return ds.mapValue(doc.Value(), rv.Elem())
}

// DecodeValue stores v in the value pointed to by out, following the
// rules of Unmarshal. Nothing in out refers to v's arena afterwards.
func DecodeValue(v Value, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("edn: DecodeValue(non-pointer %T or nil)", out)
	}
	ds := &decodeState{maxDepth: defaultMaxDepth}
	return ds.mapValue(v, rv.Elem())
}

// Decoder reads and decodes successive EDN forms from an input stream.
type Decoder struct {
	r    io.Reader
	opts []Option

	maxDepth int
	doc      *Document
	next     int
	err      error
}

// NewDecoder returns a new decoder that reads from r.
//
// The decoder reads all of r on the first call to Decode or More. It is
// the caller's responsibility to call Close on r if required.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

func (d *Decoder) load() error {
	if d.doc != nil || d.err != nil {
		return d.err
	}
	if d.r == nil {
		d.err = errors.New("edn: Decode(nil reader)")
		return d.err
	}
	o, err := newOptions(d.opts)
	if err != nil {
		d.err = err
		return err
	}
	data, err := io.ReadAll(d.r)
	if err != nil {
		d.err = err
		return err
	}
	doc, err := readWith(data, true, &o)
	if err != nil {
		d.err = err
		return err
	}
	d.doc = doc
	d.maxDepth = o.maxDepth
	return nil
}

// More reports whether another form remains to be decoded.
func (d *Decoder) More() bool {
	return d.load() == nil && d.next < len(d.doc.Forms())
}

// Decode stores the next top-level form in the value pointed to by v. It
// returns io.EOF when every form has been decoded.
//
// See the documentation for Unmarshal for details about the conversion of
// EDN into a Go value.
func (d *Decoder) Decode(v any) error {
	if err := d.load(); err != nil {
		return err
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("edn: Decode(non-pointer %T or nil)", v)
	}
	forms := d.doc.Forms()
	if d.next >= len(forms) {
		d.doc.Release()
		d.err = io.EOF
		return io.EOF
	}
	form := forms[d.next]
	d.next++
	ds := &decodeState{maxDepth: d.maxDepth}
	return ds.mapValue(form, rv.Elem())
}

type decodeState struct {
	depth    int
	maxDepth int
}

func (ds *decodeState) mapValue(v Value, rv reflect.Value) error { //nolint:gocyclo
	ds.depth++
	if ds.depth > ds.maxDepth {
		return fmt.Errorf("edn: reached max recursion depth")
	}
	defer func() { ds.depth-- }()

	if v == nil || v.Kind() == KindNil {
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}

	handled, err := ds.tryCustomUnmarshal(v, rv)
	if err != nil || handled {
		return err
	}

	if rv.Kind() == reflect.Interface {
		return ds.mapInterface(v, rv)
	}
	if !rv.CanSet() {
		return fmt.Errorf("edn: cannot set value of type %s", rv.Type())
	}

	switch x := v.(type) {
	case *Tagged:
		return ds.mapValue(x.inner, rv)
	case *External:
		if pt := reflect.TypeOf(x.ptr); pt != nil && pt.AssignableTo(rv.Type()) {
			rv.Set(reflect.ValueOf(x.ptr))
			return nil
		}
		return mismatch(v, rv)
	}

	switch rv.Type() {
	case bigIntType, bigFloatType, bigRatType:
		return mapBig(v, rv)
	}

	switch rv.Kind() {
	case reflect.Bool:
		b, ok := v.(*Bool)
		if !ok {
			return mismatch(v, rv)
		}
		rv.SetBool(b.v)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return mapInt(v, rv)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return mapUint(v, rv)
	case reflect.Float32, reflect.Float64:
		return mapFloat(v, rv)
	case reflect.String:
		s, ok := textOf(v)
		if !ok {
			if c, isChar := v.(*Char); isChar {
				s, ok = string(c.r), true
			}
		}
		if !ok {
			return mismatch(v, rv)
		}
		rv.SetString(s)
		return nil
	case reflect.Slice:
		if s, ok := v.(*String); ok && rv.Type().Elem().Kind() == reflect.Uint8 {
			rv.SetBytes(append([]byte(nil), s.Bytes()...))
			return nil
		}
		elems, ok := seqElems(v)
		if !ok {
			return mismatch(v, rv)
		}
		s := reflect.MakeSlice(rv.Type(), len(elems), len(elems))
		for i, e := range elems {
			if err := ds.mapValue(e, s.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(s)
		return nil
	case reflect.Array:
		elems, ok := seqElems(v)
		if !ok {
			return mismatch(v, rv)
		}
		if rv.Len() != len(elems) {
			return fmt.Errorf("edn: cannot unmarshal %s of length %d into Go array of length %d", v.Kind(), len(elems), rv.Len())
		}
		for i, e := range elems {
			if err := ds.mapValue(e, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		switch x := v.(type) {
		case *Map:
			return ds.mapMap(x, rv)
		case *Set:
			return ds.mapSetMap(x, rv)
		}
		return mismatch(v, rv)
	case reflect.Struct:
		if m, ok := v.(*Map); ok {
			return ds.mapStruct(m, rv)
		}
		return mismatch(v, rv)
	}
	return mismatch(v, rv)
}

func mismatch(v Value, rv reflect.Value) error {
	return fmt.Errorf("edn: cannot unmarshal %s into Go value of type %s", v.Kind(), rv.Type())
}

// tryCustomUnmarshal uses an Unmarshaler or encoding.TextUnmarshaler
// implemented by the address of rv. It reports whether one was used.
func (ds *decodeState) tryCustomUnmarshal(v Value, rv reflect.Value) (bool, error) {
	if !rv.CanAddr() {
		return false, nil
	}
	pv := rv.Addr()
	if !pv.CanInterface() {
		return false, nil
	}

	if u, ok := pv.Interface().(Unmarshaler); ok {
		if err := u.UnmarshalEDN(AppendText(nil, v)); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Err: err}
		}
		return true, nil
	}

	if u, ok := pv.Interface().(encoding.TextUnmarshaler); ok {
		s, isString := v.(*String)
		if !isString {
			return false, nil
		}
		if err := u.UnmarshalText(s.Bytes()); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Err: err}
		}
		return true, nil
	}
	return false, nil
}

// textOf returns the text of a string, or the ns/name text of a keyword or
// symbol.
func textOf(v Value) (string, bool) {
	switch x := v.(type) {
	case *String:
		return x.Value(), true
	case *Keyword:
		return string(appendName(nil, x.ns, x.name)), true
	case *Symbol:
		return string(appendName(nil, x.ns, x.name)), true
	}
	return "", false
}

func seqElems(v Value) ([]Value, bool) {
	switch x := v.(type) {
	case *List:
		return x.elems, true
	case *Vector:
		return x.elems, true
	case *Set:
		return x.elems, true
	}
	return nil, false
}

func mapInt(v Value, rv reflect.Value) error {
	var n int64
	switch x := v.(type) {
	case *Int:
		n = x.v
	case *Char:
		n = int64(x.r)
	case *BigInt:
		b := x.Big()
		if !b.IsInt64() {
			return fmt.Errorf("edn: integer value %s overflows Go value of type %s", b, rv.Type())
		}
		n = b.Int64()
	default:
		return mismatch(v, rv)
	}
	if rv.OverflowInt(n) {
		return fmt.Errorf("edn: integer value %d overflows Go value of type %s", n, rv.Type())
	}
	rv.SetInt(n)
	return nil
}

func mapUint(v Value, rv reflect.Value) error {
	var n uint64
	switch x := v.(type) {
	case *Int:
		if x.v < 0 {
			return fmt.Errorf("edn: integer value %d overflows Go value of type %s", x.v, rv.Type())
		}
		n = uint64(x.v)
	case *Char:
		n = uint64(x.r)
	case *BigInt:
		b := x.Big()
		if !b.IsUint64() {
			return fmt.Errorf("edn: integer value %s overflows Go value of type %s", b, rv.Type())
		}
		n = b.Uint64()
	default:
		return mismatch(v, rv)
	}
	if rv.OverflowUint(n) {
		return fmt.Errorf("edn: integer value %d overflows Go value of type %s", n, rv.Type())
	}
	rv.SetUint(n)
	return nil
}

func mapFloat(v Value, rv reflect.Value) error {
	var f float64
	switch x := v.(type) {
	case *Int:
		f = float64(x.v)
	case *Float:
		f = x.v
	case *BigInt:
		f, _ = new(big.Float).SetInt(x.Big()).Float64()
	case *BigDecimal:
		f, _ = x.Float().Float64()
	case *Ratio:
		f, _ = x.Rat().Float64()
	default:
		return mismatch(v, rv)
	}
	if rv.OverflowFloat(f) {
		return fmt.Errorf("edn: float value %g overflows Go value of type %s", f, rv.Type())
	}
	rv.SetFloat(f)
	return nil
}

// mapBig stores numbers into big.Int, big.Float and big.Rat targets.
func mapBig(v Value, rv reflect.Value) error {
	var out any
	switch rv.Type() {
	case bigIntType:
		switch x := v.(type) {
		case *Int:
			out = big.NewInt(x.v)
		case *BigInt:
			out = x.Big()
		}
	case bigFloatType:
		switch x := v.(type) {
		case *Int:
			out = new(big.Float).SetInt64(x.v)
		case *BigInt:
			out = new(big.Float).SetInt(x.Big())
		case *Float:
			if x.v == x.v {
				out = big.NewFloat(x.v)
			}
		case *BigDecimal:
			out = x.Float()
		case *Ratio:
			out = new(big.Float).SetRat(x.Rat())
		}
	case bigRatType:
		switch x := v.(type) {
		case *Int:
			out = big.NewRat(x.v, 1)
		case *BigInt:
			out = new(big.Rat).SetInt(x.Big())
		case *Ratio:
			out = x.Rat()
		case *BigDecimal:
			if r, ok := new(big.Rat).SetString(string(x.Canonical())); ok {
				if x.negative {
					r.Neg(r)
				}
				out = r
			}
		case *Float:
			if r := new(big.Rat).SetFloat64(x.v); r != nil {
				out = r
			}
		}
	}
	if out == nil {
		return mismatch(v, rv)
	}
	rv.Set(reflect.ValueOf(out).Elem())
	return nil
}

func (ds *decodeState) mapMap(m *Map, rv reflect.Value) error {
	t := rv.Type()
	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(t, len(m.keys)))
	} else {
		rv.Clear()
	}
	for i, k := range m.keys {
		kv := reflect.New(t.Key()).Elem()
		if err := ds.mapValue(k, kv); err != nil {
			return err
		}
		if !kv.Comparable() {
			return fmt.Errorf("edn: cannot use %s as a Go map key", k.Kind())
		}
		ev := reflect.New(t.Elem()).Elem()
		if err := ds.mapValue(m.vals[i], ev); err != nil {
			return err
		}
		rv.SetMapIndex(kv, ev)
	}
	return nil
}

// mapSetMap stores a set into map[T]bool or map[T]struct{}.
func (ds *decodeState) mapSetMap(s *Set, rv reflect.Value) error {
	t := rv.Type()
	var present reflect.Value
	switch e := t.Elem(); {
	case e.Kind() == reflect.Bool:
		present = reflect.ValueOf(true).Convert(e)
	case e.Kind() == reflect.Struct && e.NumField() == 0:
		present = reflect.Zero(e)
	default:
		return mismatch(s, rv)
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(t, len(s.elems)))
	} else {
		rv.Clear()
	}
	for _, e := range s.elems {
		kv := reflect.New(t.Key()).Elem()
		if err := ds.mapValue(e, kv); err != nil {
			return err
		}
		if !kv.Comparable() {
			return fmt.Errorf("edn: cannot use %s as a Go map key", e.Kind())
		}
		rv.SetMapIndex(kv, present)
	}
	return nil
}

func (ds *decodeState) mapStruct(m *Map, rv reflect.Value) error {
	fields := mapper.Cached(rv.Type())
	for i, k := range m.keys {
		name, ok := textOf(k)
		if !ok {
			return fmt.Errorf("edn: cannot use %s as a field name of %s", k.Kind(), rv.Type())
		}
		f, ok := fields.Lookup(name)
		if !ok {
			continue
		}
		fv := fieldByIndex(rv, f.Index)
		if !fv.CanSet() {
			continue
		}
		if err := ds.mapValue(m.vals[i], fv); err != nil {
			return err
		}
	}
	return nil
}

// fieldByIndex is reflect.Value.FieldByIndex allocating nil embedded
// struct pointers on the way.
func fieldByIndex(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

func (ds *decodeState) mapInterface(v Value, rv reflect.Value) error {
	if x, ok := v.(*Tagged); ok {
		return ds.mapValue(x.inner, rv)
	}
	if x, ok := v.(*External); ok {
		pv := reflect.ValueOf(x.ptr)
		if !pv.IsValid() || !pv.Type().AssignableTo(rv.Type()) {
			return mismatch(v, rv)
		}
		rv.Set(pv)
		return nil
	}
	if rv.NumMethod() != 0 {
		return fmt.Errorf("edn: cannot unmarshal into non-empty interface %s", rv.Type())
	}

	var concrete reflect.Value
	switch x := v.(type) {
	case *Bool:
		concrete = reflect.New(reflect.TypeFor[bool]()).Elem()
	case *Int:
		concrete = reflect.New(reflect.TypeFor[int64]()).Elem()
	case *BigInt:
		concrete = reflect.New(reflect.TypeFor[*big.Int]()).Elem()
	case *Float:
		concrete = reflect.New(reflect.TypeFor[float64]()).Elem()
	case *BigDecimal:
		concrete = reflect.New(reflect.TypeFor[*big.Float]()).Elem()
	case *Ratio:
		concrete = reflect.New(reflect.TypeFor[*big.Rat]()).Elem()
	case *Char:
		concrete = reflect.New(reflect.TypeFor[rune]()).Elem()
	case *String, *Keyword, *Symbol:
		concrete = reflect.New(reflect.TypeFor[string]()).Elem()
	case *List, *Vector, *Set:
		concrete = reflect.New(reflect.TypeFor[[]any]()).Elem()
	case *Map:
		if stringKeys(x) {
			concrete = reflect.New(reflect.TypeFor[map[string]any]()).Elem()
		} else {
			concrete = reflect.New(reflect.TypeFor[map[any]any]()).Elem()
		}
	default:
		return fmt.Errorf("edn: cannot determine a Go type for %s", v.Kind())
	}
	if err := ds.mapValue(v, concrete); err != nil {
		return err
	}
	rv.Set(concrete)
	return nil
}

func stringKeys(m *Map) bool {
	for _, k := range m.keys {
		if _, ok := textOf(k); !ok {
			return false
		}
	}
	return true
}
