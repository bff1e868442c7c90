package decimal

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestDecimalArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		got      Decimal
		expected uint64
	}{
		{"mul", FromInteger(2).Mul(FromInteger(3)), 6_000_000_000_000},
		{"mul up smallest", Raw(1).MulUp(Raw(1)), 1},
		{"mul down smallest", Raw(1).Mul(Raw(1)), 0},
		{"div", One().Div(FromInteger(3)), 333_333_333_333},
		{"div up", One().DivUp(FromInteger(3)), 333_333_333_334},
		{"sqrt 2", FromInteger(2).Sqrt(), 1_414_213_562_373},
		{"sqrt 4", FromInteger(4).Sqrt(), 2_000_000_000_000},
		{"fee", FromFee(10), 100_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Raw(tt.expected), tt.got)
		})
	}
}

func TestTokenConversion(t *testing.T) {
	d := Raw(5_000_000_000_001)
	assert.Equal(t, uint64(5), d.ToTokenFloor())
	assert.Equal(t, uint64(6), d.ToTokenCeil())
	assert.Equal(t, uint64(7), FromInteger(7).ToTokenCeil())

	tooBig := New(uint128.New(0, 1).Mul64(1_000_000_000_000))
	assert.PanicsWithError(t, ErrOverflow.Error()+": 18446744073709551616 does not fit u64", func() {
		tooBig.ToTokenFloor()
	})
}

func TestOverflowPanics(t *testing.T) {
	maxValue := New(uint128.Max)
	assert.Panics(t, func() { maxValue.Add(Raw(1)) })
	assert.Panics(t, func() { Zero().Sub(Raw(1)) })
	assert.Panics(t, func() { maxValue.Mul(FromInteger(2)) })
	assert.Panics(t, func() { One().Div(Zero()) })

	// fee growth accumulators wrap instead
	assert.Equal(t, Zero(), maxValue.WrappingAdd(Raw(1)))
	assert.Equal(t, maxValue, Zero().WrappingSub(Raw(1)))
}

func TestISqrt(t *testing.T) {
	for _, n := range []uint64{0, 1, 2, 3, 4, 15, 16, 17, 1 << 40, 999_999_999_999} {
		root := ISqrt(toInt(uint128.From64(n))).Uint64()
		assert.LessOrEqual(t, root*root, n)
		assert.Greater(t, (root+1)*(root+1), n)
	}
}

func TestComparisons(t *testing.T) {
	a, b := Raw(1), Raw(2)
	assert.True(t, a.Lt(b))
	assert.True(t, a.Lte(a))
	assert.True(t, b.Gt(a))
	assert.True(t, b.Gte(b))
	assert.Equal(t, a, Min(a, b))
	assert.Equal(t, b, Max(a, b))
	assert.True(t, Zero().IsZero())
}

func TestStringAndParse(t *testing.T) {
	assert.Equal(t, "1.000000000000", One().String())
	assert.Equal(t, "0.000000000042", Raw(42).String())

	d, err := FromString("2718145925979")
	require.NoError(t, err)
	assert.Equal(t, "2.718145925979", d.String())

	_, err = FromString("not a number")
	assert.Error(t, err)
}

func TestBinaryEncoding(t *testing.T) {
	d := New(uint128.New(0x0102030405060708, 0x1112131415161718))
	var buf bytes.Buffer
	require.NoError(t, d.MarshalWithEncoder(bin.NewBinEncoder(&buf)))
	assert.Equal(t, d.Bytes(), buf.Bytes())
	assert.Equal(t, byte(0x08), buf.Bytes()[0])
	assert.Equal(t, byte(0x11), buf.Bytes()[15])

	var decoded Decimal
	require.NoError(t, decoded.UnmarshalWithDecoder(bin.NewBinDecoder(buf.Bytes())))
	assert.Equal(t, d, decoded)
}
