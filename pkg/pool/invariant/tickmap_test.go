package invariant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickmapNextInitialized(t *testing.T) {
	tickmap := &Tickmap{}
	require.NoError(t, tickmap.Flip(true, 5, 1))

	next, ok := tickmap.NextInitialized(0, 1)
	require.True(t, ok)
	assert.Equal(t, int32(5), next)

	// the starting tick itself is excluded
	_, ok = tickmap.NextInitialized(5, 1)
	assert.False(t, ok)
}

func TestTickmapNextInitializedWithSpacing(t *testing.T) {
	tickmap := &Tickmap{}
	require.NoError(t, tickmap.Flip(true, 50, 10))
	require.NoError(t, tickmap.Flip(true, 100, 10))

	next, ok := tickmap.NextInitialized(0, 10)
	require.True(t, ok)
	assert.Equal(t, int32(50), next)

	next, ok = tickmap.NextInitialized(50, 10)
	require.True(t, ok)
	assert.Equal(t, int32(100), next)
}

func TestTickmapSearchRange(t *testing.T) {
	tickmap := &Tickmap{}
	require.NoError(t, tickmap.Flip(true, TICK_SEARCH_RANGE, 1))
	require.NoError(t, tickmap.Flip(true, -TICK_SEARCH_RANGE-1, 1))

	next, ok := tickmap.NextInitialized(0, 1)
	require.True(t, ok)
	assert.Equal(t, TICK_SEARCH_RANGE, next)

	_, ok = tickmap.NextInitialized(-1, 1)
	assert.False(t, ok, "tick %d is beyond the range from -1", TICK_SEARCH_RANGE)

	_, ok = tickmap.PrevInitialized(0, 1)
	assert.False(t, ok)
	prev, ok := tickmap.PrevInitialized(-1, 1)
	require.True(t, ok)
	assert.Equal(t, -TICK_SEARCH_RANGE-1, prev)
}

func TestTickmapPrevInitialized(t *testing.T) {
	tickmap := &Tickmap{}
	require.NoError(t, tickmap.Flip(true, -50, 10))
	require.NoError(t, tickmap.Flip(true, 0, 10))

	// the starting tick itself is included
	prev, ok := tickmap.PrevInitialized(0, 10)
	require.True(t, ok)
	assert.Equal(t, int32(0), prev)

	prev, ok = tickmap.PrevInitialized(-10, 10)
	require.True(t, ok)
	assert.Equal(t, int32(-50), prev)
}

func TestTickmapFlip(t *testing.T) {
	tickmap := &Tickmap{}
	require.NoError(t, tickmap.Flip(true, 7, 1))

	// bit 100007 lives in byte 12500, bit 7
	assert.Equal(t, byte(1<<7), tickmap.Bitmap[12_500])
	initialized, err := tickmap.IsInitialized(7, 1)
	require.NoError(t, err)
	assert.True(t, initialized)

	assert.Error(t, tickmap.Flip(true, 7, 1))
	require.NoError(t, tickmap.Flip(false, 7, 1))
	assert.Equal(t, byte(0), tickmap.Bitmap[12_500])

	assert.ErrorIs(t, tickmap.Flip(true, 5, 10), ErrTickNotDivisible)
	assert.ErrorIs(t, tickmap.Flip(true, TICK_LIMIT, 1), ErrTickOutOfBounds)
	_, err = tickmap.IsInitialized(5, 10)
	assert.ErrorIs(t, err, ErrTickNotDivisible)
}

func TestGetSearchLimit(t *testing.T) {
	tests := []struct {
		tick     int32
		spacing  uint16
		up       bool
		expected int32
	}{
		{0, 1, true, 256},
		{0, 1, false, -256},
		{0, 100, true, 25_600},
		{221_800, 100, true, 221_800},
		{0, 1000, true, 221_000},
		{-221_800, 100, false, -221_800},
		{99_900, 1, true, TICK_LIMIT - 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetSearchLimit(tt.tick, tt.spacing, tt.up), "tick %d spacing %d up %v", tt.tick, tt.spacing, tt.up)
	}
}

func TestInitializedInRange(t *testing.T) {
	tickmap := &Tickmap{}
	for _, tick := range []int32{-300, -100, 0, 70, 300} {
		require.NoError(t, tickmap.Flip(true, tick, 10))
	}
	assert.Equal(t, []int32{-100, 0, 70}, tickmap.InitializedInRange(-105, 75, 10))
	assert.Equal(t, []int32{-300, -100, 0, 70, 300}, tickmap.InitializedInRange(MIN_TICK, MAX_TICK, 10))
	assert.Empty(t, tickmap.InitializedInRange(1, 69, 10))
}
