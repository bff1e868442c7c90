package invariant

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gtdvccc/invariant-sim/pkg/decimal"
)

// Usage errors
var (
	ErrTickNotDivisible  = errors.New("tick index not divisible by spacing")
	ErrTickOutOfBounds   = errors.New("tick index out of bounds")
	ErrInvalidRange      = errors.New("lower tick must be below upper tick")
	ErrZeroSpacing       = errors.New("tick spacing must be positive")
	ErrInvalidPriceLimit = errors.New("price limit on wrong side of current price")
	ErrTickMismatch      = errors.New("tick does not match position boundary")
)

// Integrity failures. Every error below wraps ErrIntegrity.
var (
	ErrIntegrity         = errors.New("snapshot integrity failure")
	ErrNegativeLiquidity = fmt.Errorf("%w: negative liquidity", ErrIntegrity)
	ErrConservation      = fmt.Errorf("%w: amount per tick does not sum to totals", ErrIntegrity)
	ErrMissingTick       = fmt.Errorf("%w: tickmap marks tick without record", ErrIntegrity)
)

// FeeTier pairs a swap fee with the tick spacing of pools created for it
type FeeTier struct {
	Fee         decimal.Decimal
	TickSpacing uint16
}

// DefaultFeeTiers returns the fee tiers used on mainnet
func DefaultFeeTiers() []FeeTier {
	return []FeeTier{
		{Fee: decimal.FromFee(10), TickSpacing: 1},
		{Fee: decimal.FromFee(50), TickSpacing: 5},
		{Fee: decimal.FromFee(100), TickSpacing: 10},
		{Fee: decimal.FromFee(300), TickSpacing: 30},
		{Fee: decimal.FromFee(1000), TickSpacing: 100},
	}
}

// Pool - Mapped from the Invariant pool account
type Pool struct {
	Address             solana.PublicKey
	TokenX              solana.PublicKey
	TokenY              solana.PublicKey
	TokenXReserve       solana.PublicKey
	TokenYReserve       solana.PublicKey
	PositionIterator    decimal.Decimal
	TickSpacing         uint16
	Fee                 decimal.Decimal
	ProtocolFee         decimal.Decimal
	Liquidity           decimal.Decimal
	SqrtPrice           decimal.Decimal
	CurrentTickIndex    int32
	Tickmap             solana.PublicKey
	FeeGrowthGlobalX    decimal.Decimal
	FeeGrowthGlobalY    decimal.Decimal
	FeeProtocolTokenX   uint64
	FeeProtocolTokenY   uint64
	SecondsPerLiquidity decimal.Decimal
	StartTimestamp      uint64
	LastTimestamp       uint64
	FeeReceiver         solana.PublicKey
	Oracle              solana.PublicKey
	OracleInitialized   bool
	Bump                uint8
}

// FeeTier returns the tier this pool was created with
func (p *Pool) FeeTier() FeeTier {
	return FeeTier{Fee: p.Fee, TickSpacing: p.TickSpacing}
}

// Tick - Mapped from the Invariant tick account
type Tick struct {
	Pool                       solana.PublicKey
	Index                      int32
	Sign                       bool
	LiquidityChange            decimal.Decimal
	LiquidityGross             decimal.Decimal
	SqrtPrice                  decimal.Decimal
	FeeGrowthOutsideX          decimal.Decimal
	FeeGrowthOutsideY          decimal.Decimal
	SecondsPerLiquidityOutside decimal.Decimal
	SecondsOutside             uint64
	Bump                       uint8
}

// Position - Mapped from the Invariant position account
type Position struct {
	Owner                     solana.PublicKey
	Pool                      solana.PublicKey
	ID                        decimal.Decimal
	Liquidity                 decimal.Decimal
	LowerTickIndex            int32
	UpperTickIndex            int32
	FeeGrowthInsideX          decimal.Decimal
	FeeGrowthInsideY          decimal.Decimal
	SecondsPerLiquidityInside decimal.Decimal
	LastSlot                  uint64
	TokensOwedX               decimal.Decimal
	TokensOwedY               decimal.Decimal
	Bump                      uint8
}

// Snapshot is one consistent view of a pool: its state, tickmap and tick records
type Snapshot struct {
	Pool    Pool
	Tickmap *Tickmap
	ticks   map[int32]Tick
	// tick records are known for [lower, upper]
	lower int32
	upper int32
}

// NewSnapshot bundles pool state with its tickmap and the tick records read at the same slot
func NewSnapshot(pool Pool, tickmap *Tickmap, ticks []Tick) (*Snapshot, error) {
	return NewSnapshotInRange(pool, tickmap, ticks, MIN_TICK, MAX_TICK)
}

// NewSnapshotInRange is NewSnapshot for a partial read: ticks holds every initialized
// tick in [lower, upper] and nothing is known beyond. The range is narrowed to the
// multiples of the spacing the tickmap can index.
func NewSnapshotInRange(pool Pool, tickmap *Tickmap, ticks []Tick, lower, upper int32) (*Snapshot, error) {
	if pool.TickSpacing == 0 {
		return nil, ErrZeroSpacing
	}
	if tickmap == nil {
		tickmap = &Tickmap{}
	}
	minTick, maxTick := TickBounds(pool.TickSpacing)
	spacing := int32(pool.TickSpacing)
	lower = max(ceilDiv(lower, spacing)*spacing, minTick)
	upper = min(floorDiv(upper, spacing)*spacing, maxTick)
	if pool.CurrentTickIndex < lower || pool.CurrentTickIndex > upper {
		return nil, fmt.Errorf("%w: current tick %d outside [%d, %d]", ErrInvalidRange, pool.CurrentTickIndex, lower, upper)
	}

	s := &Snapshot{
		Pool:    pool,
		Tickmap: tickmap,
		ticks:   make(map[int32]Tick, len(ticks)),
		lower:   lower,
		upper:   upper,
	}
	for _, tick := range ticks {
		initialized, err := tickmap.IsInitialized(tick.Index, pool.TickSpacing)
		if err != nil {
			return nil, err
		}
		if !initialized {
			return nil, fmt.Errorf("%w: tick %d not marked in tickmap", ErrIntegrity, tick.Index)
		}
		if tick.Index < lower || tick.Index > upper {
			return nil, fmt.Errorf("%w: tick %d outside [%d, %d]", ErrInvalidRange, tick.Index, lower, upper)
		}
		s.ticks[tick.Index] = tick
	}
	return s, nil
}

// Range returns the ticks the snapshot holds records for
func (s *Snapshot) Range() (lower, upper int32) {
	return s.lower, s.upper
}

// Tick returns the tick record at index
func (s *Snapshot) Tick(index int32) (Tick, bool) {
	tick, ok := s.ticks[index]
	return tick, ok
}

// Ticks returns the tick records in ascending index order
func (s *Snapshot) Ticks() []Tick {
	res := make([]Tick, 0, len(s.ticks))
	for _, tick := range s.ticks {
		res = append(res, tick)
	}
	sortTicks(res)
	return res
}

// TickBounds returns the lowest and highest tick a pool with tickSpacing can reach
func TickBounds(tickSpacing uint16) (lower, upper int32) {
	return GetSearchLimit(MIN_TICK, tickSpacing, false), GetSearchLimit(MAX_TICK, tickSpacing, true)
}

func checkTickIndex(index int32, tickSpacing uint16) error {
	if tickSpacing == 0 {
		return ErrZeroSpacing
	}
	if index%int32(tickSpacing) != 0 {
		return fmt.Errorf("%w: %d %% %d", ErrTickNotDivisible, index, tickSpacing)
	}
	if index < MIN_TICK || index > MAX_TICK {
		return fmt.Errorf("%w: %d", ErrTickOutOfBounds, index)
	}
	return nil
}
