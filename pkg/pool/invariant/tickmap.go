package invariant

import (
	"fmt"
	"math/bits"
)

// Tickmap - bit per tick position, set when a tick account exists.
//
// Bit index is tick/spacing + TICK_LIMIT, stored little-endian within each byte.
type Tickmap struct {
	Bitmap [TICKMAP_BYTES]byte
}

func tickToPosition(tick int32, tickSpacing uint16) (int32, error) {
	if tickSpacing == 0 {
		return 0, ErrZeroSpacing
	}
	if tick%int32(tickSpacing) != 0 {
		return 0, fmt.Errorf("%w: %d %% %d", ErrTickNotDivisible, tick, tickSpacing)
	}
	pos := tick/int32(tickSpacing) + TICK_LIMIT
	if pos < 0 || pos >= TICKMAP_SIZE {
		return 0, fmt.Errorf("%w: %d with spacing %d", ErrTickOutOfBounds, tick, tickSpacing)
	}
	return pos, nil
}

// GetSearchLimit returns the furthest tick a single search from tick may reach.
// The window is TICK_SEARCH_RANGE positions, clipped to the bitmap and to MAX_TICK.
func GetSearchLimit(tick int32, tickSpacing uint16, up bool) int32 {
	spacing := int32(tickSpacing)
	index := tick / spacing
	if up {
		arrayLimit := TICK_LIMIT - 1
		rangeLimit := index + TICK_SEARCH_RANGE
		priceLimit := MAX_TICK / spacing
		return min(arrayLimit, rangeLimit, priceLimit) * spacing
	}
	arrayLimit := -TICK_LIMIT + 1
	rangeLimit := index - TICK_SEARCH_RANGE
	priceLimit := -MAX_TICK / spacing
	return max(arrayLimit, rangeLimit, priceLimit) * spacing
}

// IsInitialized reports whether a tick account exists at tick
func (t *Tickmap) IsInitialized(tick int32, tickSpacing uint16) (bool, error) {
	pos, err := tickToPosition(tick, tickSpacing)
	if err != nil {
		return false, err
	}
	return t.Bitmap[pos/8]&(1<<(pos%8)) != 0, nil
}

// Flip sets or clears the bit for tick. It fails if the bit already holds value.
func (t *Tickmap) Flip(value bool, tick int32, tickSpacing uint16) error {
	pos, err := tickToPosition(tick, tickSpacing)
	if err != nil {
		return err
	}
	current := t.Bitmap[pos/8]&(1<<(pos%8)) != 0
	if current == value {
		return fmt.Errorf("tick %d already in state %v", tick, value)
	}
	t.Bitmap[pos/8] ^= 1 << (pos % 8)
	return nil
}

// NextInitialized finds the closest initialized tick above tick, excluding tick itself,
// up to the search limit.
func (t *Tickmap) NextInitialized(tick int32, tickSpacing uint16) (int32, bool) {
	spacing := int32(tickSpacing)
	limit := GetSearchLimit(tick, tickSpacing, true)

	pos := max(tick/spacing+1+TICK_LIMIT, 0)
	end := limit/spacing + TICK_LIMIT

	for pos <= end {
		byteIndex := pos / 8
		shifted := t.Bitmap[byteIndex] >> (pos % 8)
		if shifted == 0 {
			pos = (byteIndex + 1) * 8
			continue
		}
		pos += int32(bits.TrailingZeros8(shifted))
		if pos > end {
			return 0, false
		}
		return (pos - TICK_LIMIT) * spacing, true
	}
	return 0, false
}

// PrevInitialized finds the closest initialized tick at or below tick, down to the
// search limit.
func (t *Tickmap) PrevInitialized(tick int32, tickSpacing uint16) (int32, bool) {
	spacing := int32(tickSpacing)
	limit := GetSearchLimit(tick, tickSpacing, false)

	pos := min(tick/spacing+TICK_LIMIT, TICKMAP_SIZE-1)
	end := limit/spacing + TICK_LIMIT

	for pos >= end {
		byteIndex := pos / 8
		// drop the bits above pos
		masked := t.Bitmap[byteIndex] << (7 - pos%8)
		if masked == 0 {
			pos = byteIndex*8 - 1
			continue
		}
		pos -= int32(bits.LeadingZeros8(masked))
		if pos < end {
			return 0, false
		}
		return (pos - TICK_LIMIT) * spacing, true
	}
	return 0, false
}

// InitializedInRange lists initialized ticks in [lower, upper] in ascending order
func (t *Tickmap) InitializedInRange(lower, upper int32, tickSpacing uint16) []int32 {
	spacing := int32(tickSpacing)
	from := max(ceilDiv(lower, spacing)+TICK_LIMIT, 0)
	to := min(floorDiv(upper, spacing)+TICK_LIMIT, TICKMAP_SIZE-1)

	res := make([]int32, 0)
	for pos := from; pos <= to; {
		b := t.Bitmap[pos/8] >> (pos % 8)
		if b == 0 {
			pos = (pos/8 + 1) * 8
			continue
		}
		pos += int32(bits.TrailingZeros8(b))
		if pos > to {
			break
		}
		res = append(res, (pos-TICK_LIMIT)*spacing)
		pos++
	}
	return res
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}
