package invariant

import (
	"testing"

	"github.com/gtdvccc/invariant-sim/pkg/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGetDelta(t *testing.T) {
	liquidity := decimal.FromInteger(10_000_000)
	lower := MustCalculatePriceSqrt(-100)
	upper := decimal.One()

	assert.Equal(t, uint64(50_123), GetDeltaX(lower, upper, liquidity, true))
	assert.Equal(t, uint64(50_122), GetDeltaX(lower, upper, liquidity, false))
	assert.Equal(t, uint64(49_873), GetDeltaY(lower, upper, liquidity, true))
	assert.Equal(t, uint64(49_872), GetDeltaY(lower, upper, liquidity, false))

	// argument order does not matter
	assert.Equal(t, GetDeltaX(lower, upper, liquidity, true), GetDeltaX(upper, lower, liquidity, true))

	// a single unit of price movement rounds to one token up and none down
	next := decimal.One().Add(decimal.Raw(1))
	assert.Equal(t, uint64(1), GetDeltaX(decimal.One(), next, decimal.FromInteger(1), true))
	assert.Equal(t, uint64(0), GetDeltaX(decimal.One(), next, decimal.FromInteger(1), false))
}

func TestGetNextSqrtPrice(t *testing.T) {
	liquidity := decimal.FromInteger(10_000_000)

	assert.Equal(t, decimal.Raw(999_900_010_000), GetNextSqrtPriceFromInput(decimal.One(), liquidity, 1000, true))
	assert.Equal(t, decimal.Raw(1_000_100_000_000), GetNextSqrtPriceFromInput(decimal.One(), liquidity, 1000, false))
	assert.Equal(t, decimal.Raw(999_900_000_000), GetNextSqrtPriceFromOutput(decimal.One(), liquidity, 1000, true))
	assert.Equal(t, decimal.Raw(1_000_100_010_002), GetNextSqrtPriceFromOutput(decimal.One(), liquidity, 1000, false))

	assert.Equal(t, decimal.One(), GetNextSqrtPriceFromInput(decimal.One(), liquidity, 0, true))
}

func TestComputeSwapStep(t *testing.T) {
	liquidity := decimal.FromInteger(10_000_000)
	fee := decimal.FromFee(100)
	lower := MustCalculatePriceSqrt(-100)
	upper := MustCalculatePriceSqrt(100)

	tests := []struct {
		name       string
		target     decimal.Decimal
		amount     uint64
		byAmountIn bool
		expected   SwapStep
	}{
		{
			name: "x to y reaches target", target: lower, amount: 1_000_000, byAmountIn: true,
			expected: SwapStep{NextPrice: lower, AmountIn: 50_123, AmountOut: 49_872, FeeAmount: 51},
		},
		{
			name: "x to y partial", target: lower, amount: 1000, byAmountIn: true,
			expected: SwapStep{NextPrice: decimal.Raw(999_900_109_980), AmountIn: 999, AmountOut: 998, FeeAmount: 1},
		},
		{
			name: "x to y by output reaches target", target: lower, amount: 1_000_000, byAmountIn: false,
			expected: SwapStep{NextPrice: lower, AmountIn: 50_123, AmountOut: 49_872, FeeAmount: 51},
		},
		{
			name: "x to y by output partial", target: lower, amount: 1000, byAmountIn: false,
			expected: SwapStep{NextPrice: decimal.Raw(999_900_000_000), AmountIn: 1001, AmountOut: 1000, FeeAmount: 2},
		},
		{
			name: "y to x partial", target: upper, amount: 1000, byAmountIn: true,
			expected: SwapStep{NextPrice: decimal.Raw(1_000_099_900_000), AmountIn: 999, AmountOut: 998, FeeAmount: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := ComputeSwapStep(decimal.One(), tt.target, liquidity, tt.amount, tt.byAmountIn, fee)
			assert.Equal(t, tt.expected, step)
			if tt.byAmountIn {
				assert.LessOrEqual(t, step.AmountIn+step.FeeAmount, tt.amount)
			} else {
				assert.LessOrEqual(t, step.AmountOut, tt.amount)
			}
		})
	}
}

func TestComputeSwapStepWithoutLiquidity(t *testing.T) {
	lower := MustCalculatePriceSqrt(-100)
	step := ComputeSwapStep(decimal.One(), lower, decimal.Zero(), 1000, true, decimal.FromFee(100))
	assert.Equal(t, SwapStep{NextPrice: lower}, step)
}
