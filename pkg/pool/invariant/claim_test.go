package invariant

import (
	"testing"

	"github.com/gtdvccc/invariant-sim/pkg/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimFixture() (Position, Tick, Tick) {
	position := Position{
		LowerTickIndex:   -100,
		UpperTickIndex:   100,
		Liquidity:        decimal.FromInteger(100),
		FeeGrowthInsideX: decimal.FromInteger(1),
		TokensOwedX:      decimal.FromInteger(7),
	}
	lower := Tick{Index: -100, FeeGrowthOutsideX: decimal.FromInteger(2)}
	upper := Tick{Index: 100, FeeGrowthOutsideX: decimal.FromInteger(3)}
	return position, lower, upper
}

func TestCalculateFeeGrowthInside(t *testing.T) {
	_, lower, upper := claimFixture()
	global := FeeGrowth{X: decimal.FromInteger(10)}

	inside := CalculateFeeGrowthInside(lower, upper, 0, global)
	assert.Equal(t, decimal.FromInteger(5), inside.X)
	assert.True(t, inside.Y.IsZero())

	// price below the range: growth below is global minus outside, the result wraps
	inside = CalculateFeeGrowthInside(lower, upper, -200, global)
	assert.Equal(t, decimal.FromInteger(1), decimal.Zero().WrappingSub(inside.X))

	// price above the range
	inside = CalculateFeeGrowthInside(lower, upper, 100, global)
	assert.Equal(t, decimal.FromInteger(1), inside.X)
}

func TestCalculateClaimAmount(t *testing.T) {
	position, lower, upper := claimFixture()

	owedX, owedY, err := CalculateClaimAmount(position, lower, upper, 0, decimal.FromInteger(10), decimal.Zero())
	require.NoError(t, err)
	// 7 + 100 * (5 - 1)
	assert.Equal(t, decimal.FromInteger(407), owedX)
	assert.True(t, owedY.IsZero())

	// unchanged global growth gives the same amounts again
	againX, againY, err := CalculateClaimAmount(position, lower, upper, 0, decimal.FromInteger(10), decimal.Zero())
	require.NoError(t, err)
	assert.Equal(t, owedX, againX)
	assert.Equal(t, owedY, againY)
}

func TestCalculateClaimAmountWraparound(t *testing.T) {
	position, lower, upper := claimFixture()
	// the snapshot was taken just before the accumulator wrapped
	position.FeeGrowthInsideX = decimal.Zero().WrappingSub(decimal.FromInteger(1))
	position.TokensOwedX = decimal.Zero()

	owedX, _, err := CalculateClaimAmount(position, lower, upper, 0, decimal.FromInteger(10), decimal.Zero())
	require.NoError(t, err)
	// inside is 5 and the snapshot one below zero, so growth since the snapshot is 6
	assert.Equal(t, decimal.FromInteger(600), owedX)
}

func TestCalculateClaimAmountErrors(t *testing.T) {
	position, lower, upper := claimFixture()

	_, _, err := CalculateClaimAmount(position, upper, lower, 0, decimal.Zero(), decimal.Zero())
	assert.ErrorIs(t, err, ErrTickMismatch)

	position.UpperTickIndex = position.LowerTickIndex
	_, _, err = CalculateClaimAmount(position, lower, upper, 0, decimal.Zero(), decimal.Zero())
	assert.ErrorIs(t, err, ErrInvalidRange)
}
