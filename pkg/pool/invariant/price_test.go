package invariant

import (
	"testing"

	"github.com/gtdvccc/invariant-sim/pkg/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePriceSqrt(t *testing.T) {
	tests := []struct {
		tick     int32
		expected uint64
	}{
		{0, 1_000_000_000_000},
		{20_000, 2_718_145_925_979},
		{200_000, 22_015_455_979_766_288},
		{-20_000, 367_897_834_491},
		{-200_000, 45_422_634},
		{-100, 995_012_727_930},
		{MAX_TICK, 65_535_383_934_512_647},
		{221_810, 65_509_176_333_123_237},
		{MIN_TICK, 15_258_932},
		{-221_810, 15_265_036},
	}
	for _, tt := range tests {
		price, err := CalculatePriceSqrt(tt.tick)
		require.NoError(t, err)
		assert.Equal(t, decimal.Raw(tt.expected), price, "tick %d", tt.tick)
	}

	_, err := CalculatePriceSqrt(MAX_TICK + 1)
	assert.ErrorIs(t, err, ErrTickOutOfBounds)
	_, err = CalculatePriceSqrt(MIN_TICK - 1)
	assert.ErrorIs(t, err, ErrTickOutOfBounds)
}

func TestPriceSqrtMonotonic(t *testing.T) {
	prev := MustCalculatePriceSqrt(MIN_TICK)
	for tick := MIN_TICK + 1; tick <= MAX_TICK; tick += 101 {
		price := MustCalculatePriceSqrt(tick)
		assert.True(t, price.Gt(prev), "tick %d", tick)
		prev = price
	}
}

// every tick maps back from its own price, and one unit below it falls to the previous tick
func TestGetTickFromPriceBoundary(t *testing.T) {
	ticks := []int32{0, 1, 2, 255, 256, 257, MAX_TICK - 1, -1, -2, -255, -256, -257, MIN_TICK + 1}
	for tick := int32(997); tick < MAX_TICK; tick += 997 {
		ticks = append(ticks, tick, -tick)
	}

	for _, n := range ticks {
		price := MustCalculatePriceSqrt(n)

		got, err := GetTickFromPrice(n, 1, price, false)
		require.NoError(t, err)
		assert.Equal(t, n, got, "exact price of %d", n)

		got, err = GetTickFromPrice(n, 1, price.Add(decimal.Raw(1)), false)
		require.NoError(t, err)
		assert.Equal(t, n, got, "price above %d", n)

		got, err = GetTickFromPrice(n, 1, price.Sub(decimal.Raw(1)), true)
		require.NoError(t, err)
		assert.Equal(t, n-1, got, "price below %d", n)
	}
}

func TestGetTickFromPriceWindow(t *testing.T) {
	got, err := GetTickFromPrice(0, 10, MustCalculatePriceSqrt(-95), true)
	require.NoError(t, err)
	assert.Equal(t, int32(-100), got)

	got, err = GetTickFromPrice(0, 10, MustCalculatePriceSqrt(95), false)
	require.NoError(t, err)
	assert.Equal(t, int32(90), got)

	// beyond the window the search stops at its lower edge
	got, err = GetTickFromPrice(0, 10, MustCalculatePriceSqrt(-5000), true)
	require.NoError(t, err)
	assert.Equal(t, int32(-2560), got)

	_, err = GetTickFromPrice(5, 10, decimal.One(), true)
	assert.ErrorIs(t, err, ErrTickNotDivisible)
}
