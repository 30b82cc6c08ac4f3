package edn_test

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/KimNorgaard/go-edn"
)

type Base struct {
	ID int `edn:"id"`
}

type Derived struct {
	*Base
	Name string `edn:"name"`
}

type point struct{ X, Y int }

func (p *point) UnmarshalEDN(b []byte) error {
	var xy [2]int
	if err := edn.Unmarshal(b, &xy); err != nil {
		return err
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

type level int

func (l *level) UnmarshalText(b []byte) error {
	switch string(b) {
	case "low":
		*l = 1
	case "high":
		*l = 2
	default:
		return fmt.Errorf("unknown level %q", b)
	}
	return nil
}

func builtins() edn.Option {
	reg := edn.NewRegistry()
	reg.RegisterBuiltins()
	return edn.WithRegistry(reg)
}

func TestUnmarshal(t *testing.T) {
	t.Run("Scalar Types", func(t *testing.T) {
		var s string
		require.NoError(t, edn.Unmarshal([]byte(`"hello world"`), &s))
		require.Equal(t, "hello world", s)

		var i int
		require.NoError(t, edn.Unmarshal([]byte(`123`), &i))
		require.Equal(t, 123, i)

		var f float64
		require.NoError(t, edn.Unmarshal([]byte(`3.14`), &f))
		require.Equal(t, 3.14, f)

		var b bool
		require.NoError(t, edn.Unmarshal([]byte(`true`), &b))
		require.True(t, b)

		var r rune
		require.NoError(t, edn.Unmarshal([]byte(`\a`), &r))
		require.Equal(t, 'a', r)

		require.NoError(t, edn.Unmarshal([]byte(`\newline`), &s))
		require.Equal(t, "\n", s)
	})

	t.Run("Identifiers As Strings", func(t *testing.T) {
		var s string
		require.NoError(t, edn.Unmarshal([]byte(`:key`), &s))
		require.Equal(t, "key", s)

		require.NoError(t, edn.Unmarshal([]byte(`my.ns/sym`), &s))
		require.Equal(t, "my.ns/sym", s)
	})

	t.Run("Nil Handling", func(t *testing.T) {
		s := "preset"
		require.NoError(t, edn.Unmarshal([]byte(`nil`), &s))
		require.Equal(t, "", s, "nil should set string to its zero value")

		i := 123
		require.NoError(t, edn.Unmarshal([]byte(`nil`), &i))
		require.Equal(t, 0, i)

		p := new(int)
		require.NoError(t, edn.Unmarshal([]byte(`nil`), &p))
		require.Nil(t, p, "nil should set pointer to nil")
	})

	t.Run("Pointers", func(t *testing.T) {
		var p *int
		require.NoError(t, edn.Unmarshal([]byte(`42`), &p))
		require.NotNil(t, p)
		require.Equal(t, 42, *p)
	})

	t.Run("Sequences", func(t *testing.T) {
		var ints []int
		require.NoError(t, edn.Unmarshal([]byte(`[1 2 3]`), &ints))
		require.Equal(t, []int{1, 2, 3}, ints)

		require.NoError(t, edn.Unmarshal([]byte(`(4, 5)`), &ints))
		require.Equal(t, []int{4, 5}, ints)

		require.NoError(t, edn.Unmarshal([]byte(`#{6}`), &ints))
		require.Equal(t, []int{6}, ints)

		var strs []string
		require.NoError(t, edn.Unmarshal([]byte(`[a "b" :c]`), &strs))
		require.Equal(t, []string{"a", "b", "c"}, strs)

		var data []byte
		require.NoError(t, edn.Unmarshal([]byte(`"bytes"`), &data))
		require.Equal(t, []byte("bytes"), data)
	})

	t.Run("Arrays", func(t *testing.T) {
		var arr [3]int
		require.NoError(t, edn.Unmarshal([]byte(`[1 2 3]`), &arr))
		require.Equal(t, [3]int{1, 2, 3}, arr)

		var arr2 [2]int
		err := edn.Unmarshal([]byte(`[1 2 3]`), &arr2)
		require.Error(t, err)
		require.Contains(t, err.Error(), "cannot unmarshal vector of length 3 into Go array of length 2")
	})

	t.Run("Structs", func(t *testing.T) {
		type Inner struct {
			A int `edn:"a"`
		}
		type Config struct {
			Name  string `edn:"name"`
			Port  int
			Tags  []string `edn:"tags"`
			Inner *Inner   `edn:"inner"`
			Skip  string   `edn:"-"`
		}
		var c Config
		err := edn.Unmarshal([]byte(`{:name "svc" :port 80 :tags [a "b"] :inner {:a 1} :skip "x" :unknown 1}`), &c)
		require.NoError(t, err)
		require.Equal(t, Config{Name: "svc", Port: 80, Tags: []string{"a", "b"}, Inner: &Inner{A: 1}}, c)

		require.NoError(t, edn.Unmarshal([]byte(`{"name" "str-key" Port 81}`), &c))
		require.Equal(t, "str-key", c.Name)
		require.Equal(t, 81, c.Port)

		err = edn.Unmarshal([]byte(`{1 2}`), &c)
		require.Error(t, err)
		require.Contains(t, err.Error(), "cannot use int as a field name")
	})

	t.Run("Embedded Structs", func(t *testing.T) {
		var d Derived
		require.NoError(t, edn.Unmarshal([]byte(`{:id 7 :name "x"}`), &d))
		require.NotNil(t, d.Base)
		require.Equal(t, 7, d.ID)
		require.Equal(t, "x", d.Name)
	})

	t.Run("Maps", func(t *testing.T) {
		var m map[string]int
		require.NoError(t, edn.Unmarshal([]byte(`{"a" 1 :b 2}`), &m))
		require.Equal(t, map[string]int{"a": 1, "b": 2}, m)

		require.NoError(t, edn.Unmarshal([]byte(`{"c" 3}`), &m))
		require.Equal(t, map[string]int{"c": 3}, m, "existing entries are cleared")

		var byInt map[int]string
		require.NoError(t, edn.Unmarshal([]byte(`{1 "x" 2 "y"}`), &byInt))
		require.Equal(t, map[int]string{1: "x", 2: "y"}, byInt)
	})

	t.Run("Sets Into Maps", func(t *testing.T) {
		var flags map[string]bool
		require.NoError(t, edn.Unmarshal([]byte(`#{:a :b}`), &flags))
		require.Equal(t, map[string]bool{"a": true, "b": true}, flags)

		var members map[int]struct{}
		require.NoError(t, edn.Unmarshal([]byte(`#{1 2}`), &members))
		require.Equal(t, map[int]struct{}{1: {}, 2: {}}, members)

		var counts map[int]int
		err := edn.Unmarshal([]byte(`#{1}`), &counts)
		require.Error(t, err)
		require.Contains(t, err.Error(), "cannot unmarshal set into Go value of type map[int]int")
	})

	t.Run("Interfaces", func(t *testing.T) {
		var v any
		require.NoError(t, edn.Unmarshal([]byte(`{:a [1 2.5 "s" nil true \c] :b sym}`), &v))
		require.Equal(t, map[string]any{
			"a": []any{int64(1), 2.5, "s", nil, true, 'c'},
			"b": "sym",
		}, v)

		require.NoError(t, edn.Unmarshal([]byte(`{1 :one "s" :two}`), &v))
		require.Equal(t, map[any]any{int64(1): "one", "s": "two"}, v)
	})

	t.Run("Interface Keys Must Be Comparable", func(t *testing.T) {
		var v any
		err := edn.Unmarshal([]byte(`{[1] :x}`), &v)
		require.Error(t, err)
		require.Contains(t, err.Error(), "cannot use vector as a Go map key")
	})

	t.Run("Big Numbers", func(t *testing.T) {
		var bi big.Int
		require.NoError(t, edn.Unmarshal([]byte(`123456789012345678901234567890N`), &bi))
		require.Equal(t, "123456789012345678901234567890", bi.String())

		var pbi *big.Int
		require.NoError(t, edn.Unmarshal([]byte(`-5`), &pbi))
		require.Equal(t, int64(-5), pbi.Int64())

		var bf big.Float
		require.NoError(t, edn.Unmarshal([]byte(`-1.5M`), &bf))
		f, _ := bf.Float64()
		require.Equal(t, -1.5, f)

		var r big.Rat
		require.NoError(t, edn.Unmarshal([]byte(`3/4`), &r))
		require.Equal(t, "3/4", r.String())

		require.NoError(t, edn.Unmarshal([]byte(`-2.5M`), &r))
		require.Equal(t, "-5/2", r.String())

		var ratio float64
		require.NoError(t, edn.Unmarshal([]byte(`3/4`), &ratio))
		require.Equal(t, 0.75, ratio)

		var v any
		require.NoError(t, edn.Unmarshal([]byte(`10N`), &v))
		require.IsType(t, &big.Int{}, v)
		require.Equal(t, int64(10), v.(*big.Int).Int64())

		require.NoError(t, edn.Unmarshal([]byte(`1/3`), &v))
		require.IsType(t, &big.Rat{}, v)
		require.Equal(t, "1/3", v.(*big.Rat).String())
	})

	t.Run("Integer Ranges", func(t *testing.T) {
		var i8 int8
		err := edn.Unmarshal([]byte(`300`), &i8)
		require.Error(t, err)
		require.Contains(t, err.Error(), "integer value 300 overflows Go value of type int8")

		var u uint
		err = edn.Unmarshal([]byte(`-1`), &u)
		require.Error(t, err)
		require.Contains(t, err.Error(), "overflows Go value of type uint")

		var u64 uint64
		require.NoError(t, edn.Unmarshal([]byte(`18446744073709551615N`), &u64))
		require.Equal(t, uint64(18446744073709551615), u64)

		var i64 int64
		err = edn.Unmarshal([]byte(`18446744073709551615N`), &i64)
		require.Error(t, err)
	})

	t.Run("Tagged Literals", func(t *testing.T) {
		var n int
		require.NoError(t, edn.Unmarshal([]byte(`#my/tag 5`), &n))
		require.Equal(t, 5, n)

		want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

		var ts time.Time
		require.NoError(t, edn.Unmarshal([]byte(`#inst "2024-01-02T03:04:05Z"`), &ts))
		require.True(t, want.Equal(ts), "without a reader the inner string is parsed")

		ts = time.Time{}
		require.NoError(t, edn.Unmarshal([]byte(`#inst "2024-01-02T03:04:05Z"`), &ts, builtins()))
		require.True(t, want.Equal(ts))

		var v any
		require.NoError(t, edn.Unmarshal([]byte(`#inst "2024-01-02T03:04:05Z"`), &v, builtins()))
		require.IsType(t, time.Time{}, v)

		var id uuid.UUID
		require.NoError(t, edn.Unmarshal([]byte(`#uuid "f81d4fae-7dec-11d0-a765-00a0c91e6bf6"`), &id, builtins()))
		require.Equal(t, uuid.MustParse("f81d4fae-7dec-11d0-a765-00a0c91e6bf6"), id)

		err := edn.Unmarshal([]byte(`#uuid "f81d4fae-7dec-11d0-a765-00a0c91e6bf6"`), &n, builtins())
		require.Error(t, err)
		require.Contains(t, err.Error(), "cannot unmarshal external into Go value of type int")
	})

	t.Run("Custom Unmarshalers", func(t *testing.T) {
		var p point
		require.NoError(t, edn.Unmarshal([]byte(`[3 4]`), &p))
		require.Equal(t, point{3, 4}, p)

		var ps []point
		require.NoError(t, edn.Unmarshal([]byte(`[[1 2] [5 6]]`), &ps))
		require.Equal(t, []point{{1, 2}, {5, 6}}, ps)

		err := edn.Unmarshal([]byte(`[1 2 3]`), &p)
		var ue *edn.UnmarshalerError
		require.ErrorAs(t, err, &ue)
		require.Equal(t, "*edn_test.point", ue.Type.String())

		var l level
		require.NoError(t, edn.Unmarshal([]byte(`"high"`), &l))
		require.Equal(t, level(2), l)

		require.NoError(t, edn.Unmarshal([]byte(`1`), &l), "non-strings skip UnmarshalText")
		require.Equal(t, level(1), l)

		err = edn.Unmarshal([]byte(`"medium"`), &l)
		require.ErrorAs(t, err, &ue)
		require.Contains(t, err.Error(), `unknown level "medium"`)
	})

	t.Run("Errors", func(t *testing.T) {
		var i int
		err := edn.Unmarshal([]byte(`"x"`), &i)
		require.EqualError(t, err, "edn: cannot unmarshal string into Go value of type int")

		err = edn.Unmarshal([]byte(`1`), i)
		require.EqualError(t, err, "edn: Unmarshal(non-pointer int or nil)")

		err = edn.Unmarshal([]byte(`[1 2`), &i)
		var e *edn.Error
		require.ErrorAs(t, err, &e)
		require.Equal(t, edn.ErrUnterminatedCollection, e.Code)

		err = edn.Unmarshal([]byte(`1 2`), &i)
		require.ErrorAs(t, err, &e)
		require.Equal(t, edn.ErrInvalidSyntax, e.Code)

		var fn func()
		err = edn.Unmarshal([]byte(`1`), &fn)
		require.Error(t, err)
	})
}

func TestDecoder(t *testing.T) {
	dec := edn.NewDecoder(strings.NewReader(`1 [2] {:a 3} ; trailing`))

	var got []any
	for dec.More() {
		var v any
		require.NoError(t, dec.Decode(&v))
		got = append(got, v)
	}
	require.Equal(t, []any{int64(1), []any{int64(2)}, map[string]any{"a": int64(3)}}, got)

	var v any
	require.ErrorIs(t, dec.Decode(&v), io.EOF)
	require.ErrorIs(t, dec.Decode(&v), io.EOF)
}

func TestDecoderErrors(t *testing.T) {
	dec := edn.NewDecoder(strings.NewReader(`1 )`))
	var v any
	err := dec.Decode(&v)
	var e *edn.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, edn.ErrUnmatchedDelimiter, e.Code)
	require.False(t, dec.More())

	failing := edn.NewDecoder(iotest{})
	require.ErrorIs(t, failing.Decode(&v), errRead)

	require.Error(t, edn.NewDecoder(nil).Decode(&v))

	dec = edn.NewDecoder(strings.NewReader(`1`))
	require.Error(t, dec.Decode(v), "decoding needs a pointer")
}

var errRead = errors.New("read failed")

type iotest struct{}

func (iotest) Read([]byte) (int, error) { return 0, errRead }

func TestDecodeValue(t *testing.T) {
	doc, err := edn.ReadString(`{:name "borrowed" :ids #{1 2}}`)
	require.NoError(t, err)

	var out struct {
		Name string
		IDs  map[int]bool `edn:"ids"`
	}
	require.NoError(t, edn.DecodeValue(doc.Value(), &out))
	doc.Release()

	require.Equal(t, "borrowed", out.Name)
	require.Equal(t, map[int]bool{1: true, 2: true}, out.IDs)

	require.Error(t, edn.DecodeValue(edn.Nil, nil))
}
