package invariant

import (
	"fmt"

	"github.com/gtdvccc/invariant-sim/pkg/decimal"
)

// sqrtPriceFactors[i] is 1.0001^(2^i / 2) scaled by 10^12
var sqrtPriceFactors = [18]uint64{
	1000049998750,
	1000100000000,
	1000200010000,
	1000400060004,
	1000800280056,
	1001601200560,
	1003204964963,
	1006420201726,
	1012881622442,
	1025929181080,
	1052530684591,
	1107820842005,
	1227267017980,
	1506184333421,
	2268591246242,
	5146506242525,
	26486526504348,
	701536086265529,
}

// CalculatePriceSqrt returns 1.0001^(tickIndex/2) in fixed point.
//
// Factors are applied from bit 0 upwards, each product rounded down. Negative
// indices invert the positive result. Settlement uses the same sequence, so
// the order of multiplication must not change.
func CalculatePriceSqrt(tickIndex int32) (decimal.Decimal, error) {
	if tickIndex < MIN_TICK || tickIndex > MAX_TICK {
		return decimal.Decimal{}, fmt.Errorf("%w: %d", ErrTickOutOfBounds, tickIndex)
	}
	tick := tickIndex
	if tick < 0 {
		tick = -tick
	}

	price := decimal.One()
	for i, factor := range sqrtPriceFactors {
		if tick&(1<<i) != 0 {
			price = price.Mul(decimal.Raw(factor))
		}
	}

	if tickIndex < 0 {
		return decimal.New(decimal.MulDiv(decimal.Denominator(), decimal.Denominator(), price.V, decimal.RoundingDown)), nil
	}
	return price, nil
}

// MustCalculatePriceSqrt is CalculatePriceSqrt for indices already known to be in bounds
func MustCalculatePriceSqrt(tickIndex int32) decimal.Decimal {
	price, err := CalculatePriceSqrt(tickIndex)
	if err != nil {
		panic(err)
	}
	return price
}

// PriceToTickInRange returns the greatest index in [low, high], stepping by
// tickSpacing, whose sqrt price does not exceed sqrtPrice. The search is bounded:
// a price below the whole range yields low.
func PriceToTickInRange(sqrtPrice decimal.Decimal, low, high int32, tickSpacing uint16) int32 {
	step := int32(tickSpacing)
	low = low / step
	high = high/step + 1

	for high-low > 1 {
		mid := (high-low)/2 + low
		price := MustCalculatePriceSqrt(mid * step)
		switch price.Cmp(sqrtPrice) {
		case 0:
			return mid * step
		case -1:
			low = mid
		default:
			high = mid
		}
	}
	return low * step
}

// GetTickFromPrice finds the tick of sqrtPrice within one search range of currentTick.
// With xToY the window lies below currentTick, otherwise above it.
func GetTickFromPrice(currentTick int32, tickSpacing uint16, sqrtPrice decimal.Decimal, xToY bool) (int32, error) {
	if err := checkTickIndex(currentTick, tickSpacing); err != nil {
		return 0, err
	}
	span := int32(tickSpacing) * TICK_SEARCH_RANGE
	if xToY {
		return PriceToTickInRange(sqrtPrice, max(MIN_TICK, currentTick-span), currentTick, tickSpacing), nil
	}
	return PriceToTickInRange(sqrtPrice, currentTick, min(MAX_TICK, currentTick+span), tickSpacing), nil
}
