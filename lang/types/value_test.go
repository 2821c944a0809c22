package types_test

import (
	"testing"

	"github.com/mna/lumen/lang/chunk"
	"github.com/mna/lumen/lang/types"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	require.False(t, types.Nil.Truthy())
	require.False(t, types.Bool(false).Truthy())
	require.True(t, types.Bool(true).Truthy())
	require.True(t, types.Number(0).Truthy())
	require.True(t, types.String("").Truthy())
}

func TestEqualCrossVariantIsFalse(t *testing.T) {
	require.True(t, types.Number(0).Equal(types.Number(0)))
	require.False(t, types.Number(0).Equal(types.Bool(false)))
	require.False(t, types.Nil.Equal(types.Bool(false)))
	require.True(t, types.String("a").Equal(types.String("a")))
	require.False(t, types.String("a").Equal(types.String("b")))
}

func TestFunctionEqualityIsByIdentity(t *testing.T) {
	fn1 := &chunk.Function{Name: "f", Chunk: chunk.New()}
	fn2 := &chunk.Function{Name: "f", Chunk: chunk.New()}
	require.True(t, types.Function(fn1).Equal(types.Function(fn1)))
	require.False(t, types.Function(fn1).Equal(types.Function(fn2)))
}

func TestAddNumbersAndStrings(t *testing.T) {
	sum, err := types.Number(1).Add(types.Number(2))
	require.NoError(t, err)
	require.Equal(t, types.Number(3), sum)

	cat, err := types.String("foo").Add(types.String("bar"))
	require.NoError(t, err)
	require.Equal(t, types.String("foobar"), cat)

	_, err = types.Number(1).Add(types.String("x"))
	require.Error(t, err)
}

func TestArithmeticTypeErrors(t *testing.T) {
	_, err := types.String("a").Sub(types.String("b"))
	require.Error(t, err)

	_, err = types.Bool(true).Mul(types.Number(1))
	require.Error(t, err)

	_, err = types.Nil.Negate()
	require.Error(t, err)
}

func TestOrdering(t *testing.T) {
	lt, err := types.Number(1).Less(types.Number(2))
	require.NoError(t, err)
	require.True(t, lt)

	gt, err := types.String("b").Greater(types.String("a"))
	require.NoError(t, err)
	require.True(t, gt)

	_, err = types.Number(1).Less(types.String("a"))
	require.Error(t, err)

	_, err = types.Bool(true).Less(types.Bool(false))
	require.Error(t, err)
}

func TestNotUsesCanonicalFalseyRule(t *testing.T) {
	require.Equal(t, types.Bool(true), types.Number(0).Not())
	require.Equal(t, types.Bool(true), types.String("").Not())
	require.Equal(t, types.Bool(false), types.Bool(true).Not())
	require.Equal(t, types.Bool(true), types.Nil.Not())
}

func TestValueString(t *testing.T) {
	require.Equal(t, "nil", types.Nil.String())
	require.Equal(t, "true", types.Bool(true).String())
	require.Equal(t, "1.5", types.Number(1.5).String())
	require.Equal(t, "3", types.Number(3).String())
	require.Equal(t, "hi", types.String("hi").String())

	fn := &chunk.Function{Name: "f", Chunk: chunk.New()}
	require.Equal(t, "<fn f>", types.Function(fn).String())
}
