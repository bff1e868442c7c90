package invariant

import (
	"fmt"

	"github.com/gtdvccc/invariant-sim/pkg/decimal"
)

// SimulationStatus - outcome of a swap simulation
type SimulationStatus int

const (
	SimulationOk SimulationStatus = iota
	// PriceLimitReached - the limit stopped the trade with amount outstanding
	PriceLimitReached
	// NoMoreTicks - price reached the end of the tick space, or of the snapshot's
	// tick range, with amount outstanding
	NoMoreTicks
	// TickLimitReached - the trade needs more tick crossings than allowed
	TickLimitReached
	// ZeroOutput - the trade would receive nothing
	ZeroOutput
	// ZeroAmount - nothing to trade
	ZeroAmount
)

func (s SimulationStatus) String() string {
	switch s {
	case SimulationOk:
		return "ok"
	case PriceLimitReached:
		return "price_limit_reached"
	case NoMoreTicks:
		return "no_more_ticks"
	case TickLimitReached:
		return "tick_limit_reached"
	case ZeroOutput:
		return "zero_output"
	case ZeroAmount:
		return "zero_amount"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Message returns what a quoting user can do about the status
func (s SimulationStatus) Message() string {
	switch s {
	case SimulationOk:
		return "swap can be executed"
	case PriceLimitReached:
		return "price limit reached: reduce trade size or increase slippage tolerance"
	case NoMoreTicks:
		return "not enough liquidity in the pool: reduce trade size"
	case TickLimitReached:
		return "trade crosses too many ticks: split the trade or reduce its size"
	case ZeroOutput:
		return "trade is too small to receive any tokens: increase trade size"
	case ZeroAmount:
		return "amount must be greater than zero"
	default:
		return "unknown status"
	}
}

// SimulateSwapParams describes one trade against a snapshot
type SimulateSwapParams struct {
	XToY       bool
	ByAmountIn bool
	Amount     uint64
	// PriceLimit is the worst sqrt price the trade may reach
	PriceLimit decimal.Decimal
	// MaxTickCrosses bounds the initialized ticks crossed, 0 means unbounded
	MaxTickCrosses int
}

// SimulationResult - totals of a simulated swap
type SimulationResult struct {
	Status               SimulationStatus
	AccumulatedAmountIn  uint64
	AccumulatedAmountOut uint64
	AccumulatedFee       uint64
	// AmountPerTick holds the amount consumed by each non-empty step
	AmountPerTick      []uint64
	// CrossedTicks lists initialized ticks crossed in order. A tick sitting at the
	// price limit is never crossed.
	CrossedTicks       []int32
	PriceAfterSwap     decimal.Decimal
	TickAfterSwap      int32
	LiquidityAfterSwap decimal.Decimal
}

// Filled reports whether any part of the trade executed
func (r *SimulationResult) Filled() bool {
	return r.AccumulatedAmountIn > 0 || r.AccumulatedAmountOut > 0
}

// SimulateSwap walks the trade across the snapshot's ticks.
//
// Usage errors are returned for a limit on the wrong side of the price. Errors
// wrapping ErrIntegrity mean the snapshot does not describe one coherent state;
// the quote must be discarded and the snapshot fetched again.
func SimulateSwap(snapshot *Snapshot, params SimulateSwapParams) (*SimulationResult, error) {
	pool := snapshot.Pool
	spacing := pool.TickSpacing
	if err := checkTickIndex(pool.CurrentTickIndex, spacing); err != nil {
		return nil, err
	}

	result := &SimulationResult{
		Status:             SimulationOk,
		AmountPerTick:      make([]uint64, 0),
		CrossedTicks:       make([]int32, 0),
		PriceAfterSwap:     pool.SqrtPrice,
		TickAfterSwap:      pool.CurrentTickIndex,
		LiquidityAfterSwap: pool.Liquidity,
	}

	if params.XToY && params.PriceLimit.Gt(pool.SqrtPrice) ||
		!params.XToY && params.PriceLimit.Lt(pool.SqrtPrice) {
		return nil, fmt.Errorf("%w: limit %s, price %s", ErrInvalidPriceLimit, params.PriceLimit, pool.SqrtPrice)
	}
	if params.Amount == 0 {
		result.Status = ZeroAmount
		return result, nil
	}

	sqrtPrice := pool.SqrtPrice
	liquidity := pool.Liquidity
	currentTick := pool.CurrentTickIndex
	remaining := params.Amount
	lower, upper := snapshot.Range()

	for remaining > 0 {
		if sqrtPrice.Eq(params.PriceLimit) {
			result.Status = PriceLimitReached
			break
		}

		var tickIndex int32
		var initialized bool
		if params.XToY {
			tickIndex, initialized = snapshot.Tickmap.PrevInitialized(currentTick, spacing)
		} else {
			tickIndex, initialized = snapshot.Tickmap.NextInitialized(currentTick, spacing)
		}
		if !initialized {
			// no tick in range, walk to the edge of the search window
			tickIndex = GetSearchLimit(currentTick, spacing, !params.XToY)
		}
		// nothing is known past the snapshot range, stop at its edge
		if params.XToY && tickIndex < lower {
			tickIndex, initialized = lower, false
		}
		if !params.XToY && tickIndex > upper {
			tickIndex, initialized = upper, false
		}

		tickPrice, err := CalculatePriceSqrt(tickIndex)
		if err != nil {
			return nil, err
		}
		if !initialized && tickPrice.Eq(sqrtPrice) {
			result.Status = NoMoreTicks
			break
		}

		var target decimal.Decimal
		if params.XToY {
			target = decimal.Max(tickPrice, params.PriceLimit)
		} else {
			target = decimal.Min(tickPrice, params.PriceLimit)
		}

		step := ComputeSwapStep(sqrtPrice, target, liquidity, remaining, params.ByAmountIn, pool.Fee)

		var consumed uint64
		if params.ByAmountIn {
			consumed = step.AmountIn + step.FeeAmount
		} else {
			consumed = step.AmountOut
		}
		if consumed > remaining {
			return nil, fmt.Errorf("%w: step consumed %d of %d remaining", ErrConservation, consumed, remaining)
		}
		remaining -= consumed
		if consumed > 0 {
			result.AmountPerTick = append(result.AmountPerTick, consumed)
		}
		result.AccumulatedAmountIn += step.AmountIn
		result.AccumulatedAmountOut += step.AmountOut
		result.AccumulatedFee += step.FeeAmount
		sqrtPrice = step.NextPrice

		reachedTick := step.NextPrice.Eq(tickPrice)
		if reachedTick && initialized && tickPrice.Eq(params.PriceLimit) {
			// a tick at the limit price stays uncrossed
			if params.XToY {
				currentTick = tickIndex
			} else {
				currentTick = tickIndex - int32(spacing)
			}
			if remaining > 0 {
				result.Status = PriceLimitReached
			}
			break
		}
		if reachedTick && initialized {
			if params.MaxTickCrosses > 0 && len(result.CrossedTicks) >= params.MaxTickCrosses {
				result.Status = TickLimitReached
				if params.XToY {
					currentTick = tickIndex
				}
				break
			}
			tick, ok := snapshot.Tick(tickIndex)
			if !ok {
				return nil, fmt.Errorf("%w: %d", ErrMissingTick, tickIndex)
			}
			liquidity, err = crossTick(liquidity, tick, !params.XToY)
			if err != nil {
				return nil, err
			}
			result.CrossedTicks = append(result.CrossedTicks, tickIndex)
			if params.XToY {
				currentTick = tickIndex - int32(spacing)
			} else {
				currentTick = tickIndex
			}
			continue
		}
		if reachedTick {
			currentTick = tickIndex
			continue
		}

		currentTick, err = GetTickFromPrice(currentTick, spacing, sqrtPrice, params.XToY)
		if err != nil {
			return nil, err
		}
		if !params.ByAmountIn && !step.NextPrice.Eq(target) {
			// the segment ended inside the range, leftover is rounding dust
			remaining = 0
		}
	}

	result.PriceAfterSwap = sqrtPrice
	result.TickAfterSwap = currentTick
	result.LiquidityAfterSwap = liquidity

	if err := checkConservation(result, params.ByAmountIn); err != nil {
		return nil, err
	}
	if result.Status == SimulationOk && result.AccumulatedAmountOut == 0 {
		result.Status = ZeroOutput
	}
	return result, nil
}

// crossTick applies a tick's liquidity change when the price moves across it
func crossTick(liquidity decimal.Decimal, tick Tick, up bool) (decimal.Decimal, error) {
	if up == tick.Sign {
		return liquidity.Add(tick.LiquidityChange), nil
	}
	if liquidity.Lt(tick.LiquidityChange) {
		return decimal.Decimal{}, fmt.Errorf("%w: crossing tick %d removes %s from %s",
			ErrNegativeLiquidity, tick.Index, tick.LiquidityChange, liquidity)
	}
	return liquidity.Sub(tick.LiquidityChange), nil
}

func checkConservation(result *SimulationResult, byAmountIn bool) error {
	var sum uint64
	for _, amount := range result.AmountPerTick {
		sum += amount
	}
	expected := result.AccumulatedAmountOut
	if byAmountIn {
		expected = result.AccumulatedAmountIn + result.AccumulatedFee
	}
	if sum != expected {
		return fmt.Errorf("%w: %d != %d", ErrConservation, sum, expected)
	}
	return nil
}
