package invariant

import (
	"testing"

	"github.com/gtdvccc/invariant-sim/pkg/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nestedTicks() ([]Tick, decimal.Decimal, decimal.Decimal) {
	outer := decimal.FromInteger(10_000_000)
	inner := decimal.FromInteger(5_000_000)
	ticks := append(positionTicks(-50, 50, inner), positionTicks(-100, 100, outer)...)
	return ticks, outer, inner
}

func TestParseLiquidityOnTicks(t *testing.T) {
	ticks, outer, inner := nestedTicks()

	res, err := ParseLiquidityOnTicks(ticks, Pool{CurrentTickIndex: 0, Liquidity: outer.Add(inner)})
	require.NoError(t, err)
	assert.Equal(t, []LiquidityOnTick{
		{Index: -100, Liquidity: outer},
		{Index: -50, Liquidity: outer.Add(inner)},
		{Index: 50, Liquidity: outer},
		{Index: 100, Liquidity: decimal.Zero()},
	}, res)

	// with the price below every tick the walk starts from the pool liquidity
	res, err = ParseLiquidityOnTicks(ticks, Pool{CurrentTickIndex: -200, Liquidity: decimal.Zero()})
	require.NoError(t, err)
	assert.Equal(t, []LiquidityOnTick{
		{Index: -100, Liquidity: outer},
		{Index: -50, Liquidity: outer.Add(inner)},
		{Index: 50, Liquidity: outer},
		{Index: 100, Liquidity: decimal.Zero()},
	}, res)

	res, err = ParseLiquidityOnTicks(nil, Pool{})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestParseLiquidityOnTicksNegative(t *testing.T) {
	ticks, outer, _ := nestedTicks()
	_, err := ParseLiquidityOnTicks(ticks, Pool{CurrentTickIndex: 0, Liquidity: outer})
	assert.ErrorIs(t, err, ErrNegativeLiquidity)
}

func TestVerifyTickLiquidity(t *testing.T) {
	ticks, outer, inner := nestedTicks()
	positions := []Position{
		{LowerTickIndex: -100, UpperTickIndex: 100, Liquidity: outer},
		{LowerTickIndex: -50, UpperTickIndex: 50, Liquidity: inner},
	}
	require.NoError(t, VerifyTickLiquidity(ticks, positions))

	ticks[0].LiquidityChange = inner.Add(decimal.One())
	assert.ErrorIs(t, VerifyTickLiquidity(ticks, positions), ErrIntegrity)

	ticks, _, _ = nestedTicks()
	assert.ErrorIs(t, VerifyTickLiquidity(ticks[:3], positions), ErrIntegrity)
}

func TestVerifyTickLiquiditySharedBoundary(t *testing.T) {
	a := decimal.FromInteger(300)
	b := decimal.FromInteger(100)
	// [-10, 0) closes where [0, 10) opens: the tick at 0 nets a - b downwards
	ticks := []Tick{
		{Index: -10, Sign: true, LiquidityChange: a, LiquidityGross: a},
		{Index: 0, Sign: false, LiquidityChange: decimal.FromInteger(200), LiquidityGross: decimal.FromInteger(400)},
		{Index: 10, Sign: false, LiquidityChange: b, LiquidityGross: b},
	}
	positions := []Position{
		{LowerTickIndex: -10, UpperTickIndex: 0, Liquidity: a},
		{LowerTickIndex: 0, UpperTickIndex: 10, Liquidity: b},
	}
	assert.NoError(t, VerifyTickLiquidity(ticks, positions))
}
