package edn_test

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/KimNorgaard/go-edn"
)

type celsius float64

func (c celsius) MarshalEDN() ([]byte, error) {
	if c < -273.15 {
		return nil, errors.New("below absolute zero")
	}
	return []byte("#temp/c " + strings.TrimSuffix(big.NewFloat(float64(c)).Text('f', -1), ".0")), nil
}

type rawEDN string

func (r *rawEDN) MarshalEDN() ([]byte, error) { return []byte(*r), nil }

type Server struct {
	Host   string   `edn:"host"`
	Port   int      `edn:"port,omitempty"`
	Tags   []string `edn:"tags,omitempty"`
	Secret string   `edn:"-"`
	Note   *string
}

func TestMarshal(t *testing.T) {
	testCases := []struct {
		name     string
		in       any
		expected string
	}{
		{"nil", nil, "nil"},
		{"bool", true, "true"},
		{"int", -42, "-42"},
		{"uint8", uint8(200), "200"},
		{"large uint64", uint64(math.MaxUint64), "18446744073709551615N"},
		{"float", 1.5, "1.5"},
		{"whole float", 2.0, "2.0"},
		{"float32", float32(0.1), "0.1"},
		{"nan", math.NaN(), "##NaN"},
		{"string", "hi\n", `"hi\n"`},
		{"slice", []int{1, 2}, "[1 2]"},
		{"nil slice", []int(nil), "nil"},
		{"array", [2]string{"a", "b"}, `["a" "b"]`},
		{"bytes", []byte{1, 2}, "[1 2]"},
		{"nested", [][]any{{1, "x"}, {}}, `[[1 "x"] []]`},
		{"nil pointer", (*int)(nil), "nil"},
		{"string map", map[string]int{"b": 2, "a": 1}, `{"a" 1, "b" 2}`},
		{"int map", map[int]bool{3: true, 1: false}, "{1 false, 3 true}"},
		{"mixed keys", map[any]int{"a": 1, 2: 2}, `{2 2, "a" 1}`},
		{"nil map", map[string]int(nil), "nil"},
		{"set", map[string]struct{}{"y": {}, "x": {}}, `#{"x" "y"}`},
		{"struct", Server{Host: "h"}, `{:host "h", :Note nil}`},
		{"struct with fields", &Server{Host: "h", Port: 80, Tags: []string{"a"}, Secret: "s"}, `{:host "h", :port 80, :tags ["a"], :Note nil}`},
		{"embedded", Derived{Base: &Base{ID: 1}, Name: "n"}, `{:id 1, :name "n"}`},
		{"nil embedded", Derived{Name: "n"}, `{:name "n"}`},
		{"inst", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), `#inst "2024-01-02T03:04:05Z"`},
		{"uuid", uuid.MustParse("f81d4fae-7dec-11d0-a765-00a0c91e6bf6"), `#uuid "f81d4fae-7dec-11d0-a765-00a0c91e6bf6"`},
		{"big int", big.NewInt(5), "5N"},
		{"big rat", big.NewRat(3, 6), "1/2"},
		{"whole big rat", big.NewRat(4, 2), "2"},
		{"big float", big.NewFloat(1.25), "1.25M"},
		{"text marshaler", netip.MustParseAddr("10.0.0.1"), `"10.0.0.1"`},
		{"marshaler", celsius(21.5), "#temp/c 21.5"},
		{"marshaler in slice", []celsius{1, 2}, "[#temp/c 1 #temp/c 2]"},
		{"value", edn.True, "true"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := edn.Marshal(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.expected, string(b))
		})
	}
}

func TestMarshalValues(t *testing.T) {
	doc, err := edn.ReadString(`[1 #{:a} "s"]`)
	require.NoError(t, err)
	defer doc.Release()

	b, err := edn.Marshal(struct{ V edn.Value }{doc.Value()})
	require.NoError(t, err)
	require.Equal(t, `{:V [1 #{:a} "s"]}`, string(b))
}

func TestMarshalPointerReceiver(t *testing.T) {
	r := rawEDN("{:raw true}")
	b, err := edn.Marshal(&r)
	require.NoError(t, err)
	require.Equal(t, "{:raw true}", string(b))

	b, err = edn.Marshal(struct{ R rawEDN }{"(1 2)"})
	require.NoError(t, err)
	require.Equal(t, "{:R (1 2)}", string(b))

	empty := rawEDN("  ")
	b, err = edn.Marshal(&empty)
	require.NoError(t, err)
	require.Equal(t, "nil", string(b))
}

func TestMarshalErrors(t *testing.T) {
	_, err := edn.Marshal(make(chan int))
	require.EqualError(t, err, "edn: unsupported type for marshaling: chan int")

	_, err = edn.Marshal(celsius(-300))
	var me *edn.MarshalerError
	require.ErrorAs(t, err, &me)
	require.Contains(t, err.Error(), "below absolute zero")

	bad := rawEDN("[1")
	_, err = edn.Marshal(&bad)
	require.ErrorAs(t, err, &me)
	require.ErrorIs(t, err, edn.ErrUnterminatedCollection)

	two := rawEDN("1 2")
	_, err = edn.Marshal(&two)
	require.ErrorAs(t, err, &me)

	_, err = edn.Marshal(map[any]int{1: 1, int32(1): 2})
	require.ErrorIs(t, err, edn.ErrDuplicateKey)

	type node struct{ Next *node }
	n := &node{}
	n.Next = n
	_, err = edn.Marshal(n, edn.MaxDepth(50))
	require.ErrorContains(t, err, "max recursion depth")

	_, err = edn.Marshal(1, edn.Indent(-1))
	require.Error(t, err)

	_, err = edn.Marshal(new(big.Float).SetInf(false))
	require.Error(t, err)
}

func TestMarshalIndent(t *testing.T) {
	short, err := edn.Marshal(map[string]int{"a": 1}, edn.Indent(2))
	require.NoError(t, err)
	require.Equal(t, `{"a" 1}`, string(short))

	long := map[string]any{
		"hosts": []string{"alpha.example.com", "beta.example.com"},
		"ports": []int{8080, 8443},
		"zone":  []string{"eu-west-1"},
	}
	b, err := edn.Marshal(long, edn.Indent(2))
	require.NoError(t, err)
	require.Equal(t, `{
  "hosts" ["alpha.example.com" "beta.example.com"]
  "ports" [8080 8443]
  "zone" ["eu-west-1"]
}`, string(b))
}

func TestEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := edn.NewEncoder(&buf)
	require.NoError(t, enc.Encode(1))
	require.NoError(t, enc.Encode([]string{"x"}))
	require.Equal(t, "1\n[\"x\"]\n", buf.String())

	require.Error(t, enc.Encode(func() {}))
	require.Equal(t, "1\n[\"x\"]\n", buf.String(), "failed encodes write nothing")
}

func TestMarshalRoundTrip(t *testing.T) {
	note := "n"
	in := Server{Host: "example.org", Port: 8080, Tags: []string{"a", "b"}, Secret: "dropped", Note: &note}

	b, err := edn.Marshal(in)
	require.NoError(t, err)

	var out Server
	require.NoError(t, edn.Unmarshal(b, &out))
	in.Secret = ""
	require.Equal(t, in, out)
}
