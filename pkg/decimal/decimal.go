package decimal

import (
	"encoding/binary"
	"errors"
	"fmt"

	cosmath "cosmossdk.io/math"
	bin "github.com/gagliardetto/binary"
	"lukechampine.com/uint128"
)

// Precision constants shared with the settlement program
const (
	DECIMAL     = 12
	FEE_DECIMAL = 5
)

var (
	ErrOverflow       = errors.New("decimal overflow")
	ErrDivisionByZero = errors.New("decimal division by zero")
)

var (
	denominator = uint128.From64(1_000_000_000_000)
	// fee tiers are written with FEE_DECIMAL digits
	feeOffset = uint128.From64(10_000_000)
)

// Rounding represents the rounding mode for mul/div
type Rounding int

const (
	RoundingDown Rounding = iota
	RoundingUp
)

// Decimal is an unsigned 128-bit value with an implicit scale of 10^12.
//
// Add, Sub, Mul and Div never wrap: overflow and division by zero panic with
// an error wrapping ErrOverflow or ErrDivisionByZero. Fee growth accumulators
// that are allowed to wrap use WrappingAdd and WrappingSub.
type Decimal struct {
	V uint128.Uint128
}

// New wraps a raw scaled magnitude
func New(v uint128.Uint128) Decimal {
	return Decimal{V: v}
}

// Raw wraps a raw scaled magnitude that fits in 64 bits
func Raw(v uint64) Decimal {
	return Decimal{V: uint128.From64(v)}
}

// FromInteger scales a whole number into the fixed-point representation
func FromInteger(n uint64) Decimal {
	return Decimal{V: uint128.From64(n).Mul(denominator)}
}

// FromFee converts a fee written in units of 10^-FEE_DECIMAL (10 = 0.01%)
func FromFee(fee uint64) Decimal {
	return Decimal{V: uint128.From64(fee).Mul(feeOffset)}
}

// FromString parses a raw scaled magnitude in base 10
func FromString(s string) (Decimal, error) {
	v, err := uint128.FromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return Decimal{V: v}, nil
}

func Zero() Decimal { return Decimal{} }

func One() Decimal { return Decimal{V: denominator} }

// Denominator returns 10^DECIMAL as a raw magnitude
func Denominator() uint128.Uint128 { return denominator }

func (d Decimal) IsZero() bool { return d.V.IsZero() }

func (d Decimal) Cmp(o Decimal) int { return d.V.Cmp(o.V) }

func (d Decimal) Eq(o Decimal) bool { return d.V.Equals(o.V) }

func (d Decimal) Lt(o Decimal) bool { return d.V.Cmp(o.V) < 0 }

func (d Decimal) Lte(o Decimal) bool { return d.V.Cmp(o.V) <= 0 }

func (d Decimal) Gt(o Decimal) bool { return d.V.Cmp(o.V) > 0 }

func (d Decimal) Gte(o Decimal) bool { return d.V.Cmp(o.V) >= 0 }

func Min(a, b Decimal) Decimal {
	if a.Lt(b) {
		return a
	}
	return b
}

func Max(a, b Decimal) Decimal {
	if a.Gt(b) {
		return a
	}
	return b
}

func (d Decimal) Add(o Decimal) Decimal {
	sum := d.V.AddWrap(o.V)
	if sum.Cmp(d.V) < 0 {
		panic(fmt.Errorf("%w: %s + %s", ErrOverflow, d.V, o.V))
	}
	return Decimal{V: sum}
}

func (d Decimal) Sub(o Decimal) Decimal {
	if d.V.Cmp(o.V) < 0 {
		panic(fmt.Errorf("%w: %s - %s", ErrOverflow, d.V, o.V))
	}
	return Decimal{V: d.V.Sub(o.V)}
}

// WrappingAdd adds modulo 2^128
func (d Decimal) WrappingAdd(o Decimal) Decimal {
	return Decimal{V: d.V.AddWrap(o.V)}
}

// WrappingSub subtracts modulo 2^128
func (d Decimal) WrappingSub(o Decimal) Decimal {
	return Decimal{V: d.V.SubWrap(o.V)}
}

// Mul returns d*o rounded down
func (d Decimal) Mul(o Decimal) Decimal {
	return Decimal{V: MulDiv(d.V, o.V, denominator, RoundingDown)}
}

// MulUp returns d*o rounded up
func (d Decimal) MulUp(o Decimal) Decimal {
	return Decimal{V: MulDiv(d.V, o.V, denominator, RoundingUp)}
}

// Div returns d/o rounded down
func (d Decimal) Div(o Decimal) Decimal {
	return Decimal{V: MulDiv(d.V, denominator, o.V, RoundingDown)}
}

// DivUp returns d/o rounded up
func (d Decimal) DivUp(o Decimal) Decimal {
	return Decimal{V: MulDiv(d.V, denominator, o.V, RoundingUp)}
}

// ToTokenFloor drops the fractional part. Panics if the whole part exceeds u64.
func (d Decimal) ToTokenFloor() uint64 {
	q := d.V.Div(denominator)
	return toUint64(q)
}

// ToTokenCeil rounds any fractional part up. Panics if the result exceeds u64.
func (d Decimal) ToTokenCeil() uint64 {
	q, r := d.V.QuoRem(denominator)
	if !r.IsZero() {
		q = q.Add64(1)
	}
	return toUint64(q)
}

func toUint64(v uint128.Uint128) uint64 {
	if v.Hi != 0 {
		panic(fmt.Errorf("%w: %s does not fit u64", ErrOverflow, v))
	}
	return v.Lo
}

// Sqrt returns the square root of d rounded down, at the same scale
func (d Decimal) Sqrt() Decimal {
	n := toInt(d.V).Mul(toInt(denominator))
	return Decimal{V: fromInt(ISqrt(n))}
}

// ISqrt returns floor(sqrt(n)) by Newton iteration
func ISqrt(n cosmath.Int) cosmath.Int {
	if n.IsNegative() {
		panic(fmt.Errorf("square root of negative value %s", n))
	}
	if n.IsZero() {
		return n
	}
	x := n
	y := x.Add(cosmath.OneInt()).QuoRaw(2)
	for y.LT(x) {
		x = y
		y = x.Add(n.Quo(x)).QuoRaw(2)
	}
	return x
}

// MulDiv computes a*b/den with 256-bit intermediates
func MulDiv(a, b, den uint128.Uint128, rounding Rounding) uint128.Uint128 {
	if den.IsZero() {
		panic(fmt.Errorf("%w: %s * %s / 0", ErrDivisionByZero, a, b))
	}
	numerator := toInt(a).Mul(toInt(b))
	d := toInt(den)
	result := numerator.Quo(d)
	if rounding == RoundingUp && !numerator.Mod(d).IsZero() {
		result = result.Add(cosmath.OneInt())
	}
	return fromInt(result)
}

func toInt(v uint128.Uint128) cosmath.Int {
	return cosmath.NewIntFromBigInt(v.Big())
}

func fromInt(v cosmath.Int) uint128.Uint128 {
	if v.IsNegative() || v.BigInt().BitLen() > 128 {
		panic(fmt.Errorf("%w: %s exceeds 128 bits", ErrOverflow, v))
	}
	return uint128.FromBig(v.BigInt())
}

// String formats the value with all DECIMAL fractional digits
func (d Decimal) String() string {
	q, r := d.V.QuoRem(denominator)
	return fmt.Sprintf("%s.%012d", q.String(), r.Lo)
}

// Bytes returns the 16-byte little-endian encoding used on chain
func (d Decimal) Bytes() []byte {
	b := make([]byte, 16)
	d.V.PutBytes(b)
	return b
}

func (d *Decimal) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	v, err := decoder.ReadUint128(binary.LittleEndian)
	if err != nil {
		return err
	}
	d.V = uint128.New(v.Lo, v.Hi)
	return nil
}

func (d Decimal) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteBytes(d.Bytes(), false)
}
