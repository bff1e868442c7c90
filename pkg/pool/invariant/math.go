package invariant

import (
	"github.com/gtdvccc/invariant-sim/pkg/decimal"
)

// SwapStep - result of moving the price across one segment without crossing a tick
type SwapStep struct {
	NextPrice decimal.Decimal
	AmountIn  uint64
	AmountOut uint64
	FeeAmount uint64
}

// ComputeSwapStep advances the price from currentPrice towards targetPrice.
//
// Direction follows from the prices: currentPrice >= targetPrice means x is sold
// for y and the price falls. amount is the input budget (fee included) when
// byAmountIn, otherwise the output wanted.
func ComputeSwapStep(
	currentPrice decimal.Decimal,
	targetPrice decimal.Decimal,
	liquidity decimal.Decimal,
	amount uint64,
	byAmountIn bool,
	fee decimal.Decimal,
) SwapStep {
	if liquidity.IsZero() {
		return SwapStep{NextPrice: targetPrice}
	}

	xToY := currentPrice.Gte(targetPrice)
	var nextPrice decimal.Decimal
	var amountIn, amountOut uint64

	if byAmountIn {
		amountAfterFee := decimal.One().Sub(fee).Mul(decimal.FromInteger(amount)).ToTokenFloor()
		if xToY {
			amountIn = GetDeltaX(targetPrice, currentPrice, liquidity, true)
		} else {
			amountIn = GetDeltaY(currentPrice, targetPrice, liquidity, true)
		}
		if amountAfterFee >= amountIn {
			nextPrice = targetPrice
		} else {
			nextPrice = GetNextSqrtPriceFromInput(currentPrice, liquidity, amountAfterFee, xToY)
		}
	} else {
		if xToY {
			amountOut = GetDeltaY(targetPrice, currentPrice, liquidity, false)
		} else {
			amountOut = GetDeltaX(currentPrice, targetPrice, liquidity, false)
		}
		if amount >= amountOut {
			nextPrice = targetPrice
		} else {
			nextPrice = GetNextSqrtPriceFromOutput(currentPrice, liquidity, amount, xToY)
		}
	}

	notMax := !targetPrice.Eq(nextPrice)

	if xToY {
		if notMax || !byAmountIn {
			amountIn = GetDeltaX(nextPrice, currentPrice, liquidity, true)
		}
		if notMax || byAmountIn {
			amountOut = GetDeltaY(nextPrice, currentPrice, liquidity, false)
		}
	} else {
		if notMax || !byAmountIn {
			amountIn = GetDeltaY(currentPrice, nextPrice, liquidity, true)
		}
		if notMax || byAmountIn {
			amountOut = GetDeltaX(currentPrice, nextPrice, liquidity, false)
		}
	}

	// rounding must never pay out more than asked for
	if !byAmountIn && amountOut > amount {
		amountOut = amount
	}
	if byAmountIn && amountIn > amount {
		amountIn = amount
	}

	var feeAmount uint64
	if byAmountIn && notMax {
		feeAmount = amount - amountIn
	} else {
		feeAmount = decimal.FromInteger(amountIn).MulUp(fee).ToTokenCeil()
	}

	return SwapStep{
		NextPrice: nextPrice,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		FeeAmount: feeAmount,
	}
}

// GetDeltaX returns the amount of x between two sqrt prices: L * (1/a - 1/b).
//
// The numerator is rounded down in both modes. Only the denominator and the final
// division follow roundUp, which is how settlement computes it.
func GetDeltaX(sqrtPriceA, sqrtPriceB, liquidity decimal.Decimal, roundUp bool) uint64 {
	deltaPrice := absDiff(sqrtPriceA, sqrtPriceB)
	nominator := liquidity.Mul(deltaPrice)
	if roundUp {
		return nominator.DivUp(sqrtPriceA.Mul(sqrtPriceB)).ToTokenCeil()
	}
	return nominator.Div(sqrtPriceA.MulUp(sqrtPriceB)).ToTokenFloor()
}

// GetDeltaY returns the amount of y between two sqrt prices: L * (b - a)
func GetDeltaY(sqrtPriceA, sqrtPriceB, liquidity decimal.Decimal, roundUp bool) uint64 {
	deltaPrice := absDiff(sqrtPriceA, sqrtPriceB)
	if roundUp {
		return liquidity.MulUp(deltaPrice).ToTokenCeil()
	}
	return liquidity.Mul(deltaPrice).ToTokenFloor()
}

// GetNextSqrtPriceFromInput returns the price after adding amount of the input token
func GetNextSqrtPriceFromInput(sqrtPrice, liquidity decimal.Decimal, amount uint64, xToY bool) decimal.Decimal {
	if xToY {
		return getNextSqrtPriceXUp(sqrtPrice, liquidity, amount, true)
	}
	return getNextSqrtPriceYDown(sqrtPrice, liquidity, amount, true)
}

// GetNextSqrtPriceFromOutput returns the price after removing amount of the output token
func GetNextSqrtPriceFromOutput(sqrtPrice, liquidity decimal.Decimal, amount uint64, xToY bool) decimal.Decimal {
	if xToY {
		return getNextSqrtPriceYDown(sqrtPrice, liquidity, amount, false)
	}
	return getNextSqrtPriceXUp(sqrtPrice, liquidity, amount, false)
}

// L * price / (L +- amount * price), rounded up
func getNextSqrtPriceXUp(sqrtPrice, liquidity decimal.Decimal, amount uint64, add bool) decimal.Decimal {
	if amount == 0 {
		return sqrtPrice
	}
	bigAmount := decimal.FromInteger(amount)
	var denominator decimal.Decimal
	if add {
		denominator = liquidity.Add(sqrtPrice.Mul(bigAmount))
	} else {
		denominator = liquidity.Sub(sqrtPrice.MulUp(bigAmount))
	}
	return sqrtPrice.MulUp(liquidity).DivUp(denominator)
}

// price +- amount / L, rounded down
func getNextSqrtPriceYDown(sqrtPrice, liquidity decimal.Decimal, amount uint64, add bool) decimal.Decimal {
	bigAmount := decimal.FromInteger(amount)
	if add {
		return sqrtPrice.Add(bigAmount.Div(liquidity))
	}
	return sqrtPrice.Sub(bigAmount.DivUp(liquidity))
}

func absDiff(a, b decimal.Decimal) decimal.Decimal {
	if a.Gt(b) {
		return a.Sub(b)
	}
	return b.Sub(a)
}
