package invariant

import (
	"fmt"

	"github.com/gtdvccc/invariant-sim/pkg/decimal"
)

// FeeGrowth pairs the x and y accumulators
type FeeGrowth struct {
	X decimal.Decimal
	Y decimal.Decimal
}

// CalculateFeeGrowthInside returns the fee growth accumulated between two ticks.
// Accumulators wrap modulo 2^128, so all subtraction here wraps.
func CalculateFeeGrowthInside(tickLower, tickUpper Tick, currentTick int32, global FeeGrowth) FeeGrowth {
	currentAboveLower := currentTick >= tickLower.Index
	currentBelowUpper := currentTick < tickUpper.Index

	var below, above FeeGrowth
	if currentAboveLower {
		below = FeeGrowth{X: tickLower.FeeGrowthOutsideX, Y: tickLower.FeeGrowthOutsideY}
	} else {
		below = FeeGrowth{
			X: global.X.WrappingSub(tickLower.FeeGrowthOutsideX),
			Y: global.Y.WrappingSub(tickLower.FeeGrowthOutsideY),
		}
	}
	if currentBelowUpper {
		above = FeeGrowth{X: tickUpper.FeeGrowthOutsideX, Y: tickUpper.FeeGrowthOutsideY}
	} else {
		above = FeeGrowth{
			X: global.X.WrappingSub(tickUpper.FeeGrowthOutsideX),
			Y: global.Y.WrappingSub(tickUpper.FeeGrowthOutsideY),
		}
	}

	return FeeGrowth{
		X: global.X.WrappingSub(below.X).WrappingSub(above.X),
		Y: global.Y.WrappingSub(below.Y).WrappingSub(above.Y),
	}
}

// CalculateTokensOwed returns the position's owed tokens after syncing to feeGrowthInside
func CalculateTokensOwed(position Position, feeGrowthInside FeeGrowth) (owedX, owedY decimal.Decimal) {
	deltaX := feeGrowthInside.X.WrappingSub(position.FeeGrowthInsideX)
	deltaY := feeGrowthInside.Y.WrappingSub(position.FeeGrowthInsideY)
	owedX = position.TokensOwedX.Add(position.Liquidity.Mul(deltaX))
	owedY = position.TokensOwedY.Add(position.Liquidity.Mul(deltaY))
	return owedX, owedY
}

// CalculateClaimAmount returns the fees a position could claim now, without changing it
func CalculateClaimAmount(
	position Position,
	tickLower Tick,
	tickUpper Tick,
	currentTick int32,
	feeGrowthGlobalX decimal.Decimal,
	feeGrowthGlobalY decimal.Decimal,
) (owedX, owedY decimal.Decimal, err error) {
	if position.LowerTickIndex >= position.UpperTickIndex {
		return owedX, owedY, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, position.LowerTickIndex, position.UpperTickIndex)
	}
	if tickLower.Index != position.LowerTickIndex {
		return owedX, owedY, fmt.Errorf("%w: lower %d, position lower %d", ErrTickMismatch, tickLower.Index, position.LowerTickIndex)
	}
	if tickUpper.Index != position.UpperTickIndex {
		return owedX, owedY, fmt.Errorf("%w: upper %d, position upper %d", ErrTickMismatch, tickUpper.Index, position.UpperTickIndex)
	}

	inside := CalculateFeeGrowthInside(tickLower, tickUpper, currentTick, FeeGrowth{X: feeGrowthGlobalX, Y: feeGrowthGlobalY})
	owedX, owedY = CalculateTokensOwed(position, inside)
	return owedX, owedY, nil
}
