package invariant

import (
	"github.com/gtdvccc/invariant-sim/pkg/decimal"
)

// PriceAfterSlippage moves a sqrt price by a relative slippage on the price.
// The sqrt price moves by sqrt(1 +- slippage), taken with the integer square root.
func PriceAfterSlippage(sqrtPrice, slippage decimal.Decimal, up bool) decimal.Decimal {
	var multiplier decimal.Decimal
	if up {
		multiplier = decimal.One().Add(slippage)
	} else {
		multiplier = decimal.One().Sub(slippage)
	}
	return sqrtPrice.Mul(multiplier.Sqrt())
}

// PriceLimitFor derives the simulator price limit for a trade against pool
func PriceLimitFor(pool Pool, xToY bool, slippage decimal.Decimal) decimal.Decimal {
	limit := PriceAfterSlippage(pool.SqrtPrice, slippage, !xToY)
	if xToY {
		return decimal.Max(limit, MustCalculatePriceSqrt(MIN_TICK))
	}
	return decimal.Min(limit, MustCalculatePriceSqrt(MAX_TICK))
}

// MinReceived is the smallest output accepted for expected within slippage
func MinReceived(expected uint64, slippage decimal.Decimal) uint64 {
	return decimal.FromInteger(expected).Mul(decimal.One().Sub(slippage)).ToTokenFloor()
}
