package edn

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArenaConstructors(t *testing.T) {
	a := NewArena()
	defer a.Release()

	bi, ok := new(big.Int).SetString("-123456789012345678901234567890", 10)
	require.True(t, ok)
	bd, err := a.NewBigDecimal("-1.25e3")
	require.NoError(t, err)
	half, err := a.NewRatio(2, -4)
	require.NoError(t, err)
	set, err := a.NewSet(a.NewInt(1), a.NewString("x"))
	require.NoError(t, err)
	m, err := a.NewMap([]Value{a.NewKeyword("", "a"), a.NewKeyword("my", "b")}, []Value{True, Nil})
	require.NoError(t, err)

	v := a.NewVector(
		a.NewInt(-7),
		a.NewFloat(0.5),
		a.NewChar('λ'),
		a.NewBigInt(bi),
		bd,
		half,
		a.NewSymbol("ns", "sym"),
		a.NewList(),
		set,
		m,
		a.NewTagged("my/tag", a.NewString("q\"")),
	)
	require.Equal(t, `[-7 0.5 \λ -123456789012345678901234567890N -1.25e3M -1/2 ns/sym () #{1 "x"} {:a true, :my/b nil} #my/tag "q\""]`, v.String())

	read := mustRead(t, v.String())
	require.True(t, Equal(v, read))
	require.Equal(t, Hash(v), Hash(read))
	require.Positive(t, a.Used())
}

func TestArenaRatioReduces(t *testing.T) {
	a := NewArena()
	defer a.Release()

	v, err := a.NewRatio(6, 3)
	require.NoError(t, err)
	require.Equal(t, KindInt, v.Kind())
	require.Equal(t, "2", v.String())

	_, err = a.NewRatio(1, 0)
	require.Error(t, err)
	_, err = a.NewRatio(1, math.MinInt64)
	require.Error(t, err)
}

func TestArenaConstructorErrors(t *testing.T) {
	a := NewArena()
	defer a.Release()

	for _, s := range []string{"", "abc", "1.2.3", "1/2", "0x10"} {
		_, err := a.NewBigDecimal(s)
		require.Error(t, err, s)
	}

	_, err := a.NewSet(a.NewInt(1), a.NewInt(1))
	require.ErrorIs(t, err, ErrDuplicateElement)

	k := a.NewKeyword("", "k")
	_, err = a.NewMap([]Value{k, a.NewKeyword("", "k")}, []Value{Nil, Nil})
	require.ErrorIs(t, err, ErrDuplicateKey)
	_, err = a.NewMap([]Value{k}, nil)
	require.Error(t, err)
}

func TestArenaConstructorsCopyInput(t *testing.T) {
	a := NewArena()
	defer a.Release()

	elems := []Value{a.NewInt(1), a.NewInt(2)}
	v := a.NewVector(elems...)
	elems[0] = a.NewInt(9)
	require.Equal(t, "[1 2]", v.String())

	x := big.NewInt(5)
	b := a.NewBigInt(x)
	x.SetInt64(6)
	require.Equal(t, "5N", b.String())
}

func TestExhaustedArena(t *testing.T) {
	a := newArena(64, 64, defaultTypes)
	defer a.Release()
	n := 0
	for a.NewInt(int64(n)) != nil {
		n++
	}
	require.Positive(t, n)
	require.Nil(t, a.NewInt(0))
	require.Nil(t, a.NewString("more"))
	_, err := a.NewSet()
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestReleaseNilArena(t *testing.T) {
	var a *Arena
	require.NotPanics(t, a.Release)
}
