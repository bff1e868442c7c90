package invariant

import (
	"fmt"
	"sort"

	"github.com/gtdvccc/invariant-sim/pkg/decimal"
)

// LiquidityOnTick - liquidity active from a tick up to the next initialized one
type LiquidityOnTick struct {
	Index     int32
	Liquidity decimal.Decimal
}

func sortTicks(ticks []Tick) {
	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Index < ticks[j].Index })
}

// ParseLiquidityOnTicks rebuilds the liquidity profile of a pool from its ticks.
//
// The last tick at or below the current tick takes the pool's liquidity. Values
// for the other ticks follow by crossing ticks outwards from there.
func ParseLiquidityOnTicks(ticks []Tick, pool Pool) ([]LiquidityOnTick, error) {
	sorted := make([]Tick, len(ticks))
	copy(sorted, ticks)
	sortTicks(sorted)

	res := make([]LiquidityOnTick, len(sorted))
	for i, tick := range sorted {
		res[i].Index = tick.Index
	}
	if len(sorted) == 0 {
		return res, nil
	}

	anchor := sort.Search(len(sorted), func(i int) bool { return sorted[i].Index > pool.CurrentTickIndex }) - 1

	liquidity := pool.Liquidity
	start := 0
	if anchor >= 0 {
		res[anchor].Liquidity = liquidity
		start = anchor + 1
	}

	var err error
	for i := start; i < len(sorted); i++ {
		liquidity, err = crossTick(liquidity, sorted[i], true)
		if err != nil {
			return nil, err
		}
		res[i].Liquidity = liquidity
	}

	liquidity = pool.Liquidity
	for i := anchor - 1; i >= 0; i-- {
		// moving below sorted[i+1] undoes its upward change
		liquidity, err = crossTick(liquidity, sorted[i+1], false)
		if err != nil {
			return nil, err
		}
		res[i].Liquidity = liquidity
	}
	return res, nil
}

// VerifyTickLiquidity checks every tick against the positions that reference it:
// the signed liquidity change must equal liquidity opened minus liquidity closed
// there, and the gross liquidity their sum.
func VerifyTickLiquidity(ticks []Tick, positions []Position) error {
	type boundary struct {
		opened decimal.Decimal
		closed decimal.Decimal
	}
	boundaries := make(map[int32]*boundary)
	get := func(index int32) *boundary {
		b, ok := boundaries[index]
		if !ok {
			b = &boundary{}
			boundaries[index] = b
		}
		return b
	}
	for _, position := range positions {
		if position.LowerTickIndex >= position.UpperTickIndex {
			return fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, position.LowerTickIndex, position.UpperTickIndex)
		}
		lower := get(position.LowerTickIndex)
		lower.opened = lower.opened.Add(position.Liquidity)
		upper := get(position.UpperTickIndex)
		upper.closed = upper.closed.Add(position.Liquidity)
	}

	for _, tick := range ticks {
		b := get(tick.Index)
		gross := b.opened.Add(b.closed)
		if !tick.LiquidityGross.Eq(gross) {
			return fmt.Errorf("%w: tick %d gross liquidity %s, positions hold %s",
				ErrIntegrity, tick.Index, tick.LiquidityGross, gross)
		}
		sign := b.opened.Gte(b.closed)
		change := absDiff(b.opened, b.closed)
		if !tick.LiquidityChange.Eq(change) || (!change.IsZero() && tick.Sign != sign) {
			return fmt.Errorf("%w: tick %d liquidity change %s (sign %v), positions net %s (sign %v)",
				ErrIntegrity, tick.Index, tick.LiquidityChange, tick.Sign, change, sign)
		}
		delete(boundaries, tick.Index)
	}
	for _, position := range positions {
		for _, index := range []int32{position.LowerTickIndex, position.UpperTickIndex} {
			if _, ok := boundaries[index]; ok {
				return fmt.Errorf("%w: positions reference tick %d without record", ErrIntegrity, index)
			}
		}
	}
	return nil
}
