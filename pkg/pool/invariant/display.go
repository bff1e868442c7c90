package invariant

import (
	"fmt"
	"math/big"

	"github.com/gtdvccc/invariant-sim/pkg/decimal"
	shopdecimal "github.com/shopspring/decimal"
	"lukechampine.com/uint128"
)

// SqrtPriceToPrice converts a sqrt price into the human price of one x in y,
// adjusted for the tokens' decimals.
func SqrtPriceToPrice(sqrtPrice decimal.Decimal, decimalsX, decimalsY uint8) shopdecimal.Decimal {
	raw := sqrtPrice.V.Big()
	squared := new(big.Int).Mul(raw, raw)
	price := shopdecimal.NewFromBigInt(squared, -2*decimal.DECIMAL)
	return price.Shift(int32(decimalsX) - int32(decimalsY))
}

// TokenAmountToDecimal formats a raw token amount with its decimals
func TokenAmountToDecimal(amount uint64, decimals uint8) shopdecimal.Decimal {
	return shopdecimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
}

// ParseDecimal reads a human number such as "0.01" into a Decimal.
// Digits beyond DECIMAL places are truncated.
func ParseDecimal(s string) (decimal.Decimal, error) {
	human, err := shopdecimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	if human.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal %q: negative", s)
	}
	raw := human.Shift(decimal.DECIMAL).Truncate(0).BigInt()
	if raw.BitLen() > 128 {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, decimal.ErrOverflow)
	}
	return decimal.New(uint128.FromBig(raw)), nil
}
