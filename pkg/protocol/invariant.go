package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gtdvccc/invariant-sim/pkg"
	"github.com/gtdvccc/invariant-sim/pkg/pool/invariant"
	"go.uber.org/zap"
)

// AccountReader fetches raw account data. *sol.Client implements it.
type AccountReader interface {
	GetAccount(ctx context.Context, key solana.PublicKey, minSlot uint64) ([]byte, uint64, error)
	GetAccounts(ctx context.Context, keys []solana.PublicKey, minSlot uint64) ([][]byte, uint64, error)
}

// InvariantProtocol implements pkg.Protocol over the Invariant program accounts
//
// Invariant is a concentrated liquidity AMM. Pools are program derived from the
// token pair and fee tier; ticks are program derived from the pool and index,
// and their existence is tracked by the pool's tickmap account.
type InvariantProtocol struct {
	Accounts  AccountReader
	programID solana.PublicKey
	logger    *zap.Logger
}

var _ pkg.Protocol = (*InvariantProtocol)(nil)

// NewInvariant creates a new Invariant protocol instance
//
// Parameters:
//   - accounts: account source, usually *sol.Client
//   - programID: Invariant program, INVARIANT_PROGRAM_ID on mainnet
//   - logger: may be nil
func NewInvariant(accounts AccountReader, programID solana.PublicKey, logger *zap.Logger) *InvariantProtocol {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvariantProtocol{
		Accounts:  accounts,
		programID: programID,
		logger:    logger,
	}
}

func (p *InvariantProtocol) Name() pkg.ProtocolName {
	return pkg.ProtocolNameInvariant
}

func (p *InvariantProtocol) ProgramID() solana.PublicKey {
	return p.programID
}

// FetchPool gets a single pool by address
func (p *InvariantProtocol) FetchPool(ctx context.Context, pool solana.PublicKey) (*invariant.Pool, error) {
	layout, _, err := p.fetchPool(ctx, pool)
	return layout, err
}

func (p *InvariantProtocol) fetchPool(ctx context.Context, pool solana.PublicKey) (*invariant.Pool, uint64, error) {
	data, slot, err := p.Accounts.GetAccount(ctx, pool, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get pool account %s: %w", pool, err)
	}
	layout := &invariant.Pool{}
	if err := layout.Decode(data); err != nil {
		return nil, 0, fmt.Errorf("failed to decode pool data for %s: %w", pool, err)
	}
	layout.Address = pool
	return layout, slot, nil
}

// FetchTickmap gets the tickmap of a pool
func (p *InvariantProtocol) FetchTickmap(ctx context.Context, pool solana.PublicKey) (*invariant.Tickmap, error) {
	layout, slot, err := p.fetchPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	return p.fetchTickmap(ctx, layout, slot)
}

func (p *InvariantProtocol) fetchTickmap(ctx context.Context, pool *invariant.Pool, minSlot uint64) (*invariant.Tickmap, error) {
	data, _, err := p.Accounts.GetAccount(ctx, pool.Tickmap, minSlot)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickmap %s: %w", pool.Tickmap, err)
	}
	tickmap := &invariant.Tickmap{}
	if err := tickmap.Decode(data); err != nil {
		return nil, fmt.Errorf("failed to decode tickmap %s: %w", pool.Tickmap, err)
	}
	return tickmap, nil
}

// FetchTicks gets tick records of a pool; every index must exist
func (p *InvariantProtocol) FetchTicks(ctx context.Context, pool solana.PublicKey, indices []int32) ([]invariant.Tick, error) {
	return p.fetchTicks(ctx, pool, indices, 0)
}

func (p *InvariantProtocol) fetchTicks(ctx context.Context, pool solana.PublicKey, indices []int32, minSlot uint64) ([]invariant.Tick, error) {
	keys := make([]solana.PublicKey, len(indices))
	for i, index := range indices {
		key, _, err := invariant.DeriveTickAddress(p.programID, pool, index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive tick %d address: %w", index, err)
		}
		keys[i] = key
	}

	accounts, _, err := p.Accounts.GetAccounts(ctx, keys, minSlot)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticks of %s: %w", pool, err)
	}

	ticks := make([]invariant.Tick, len(indices))
	for i, data := range accounts {
		if data == nil {
			return nil, fmt.Errorf("tick %d of pool %s: %w", indices[i], pool, rpc.ErrNotFound)
		}
		if err := ticks[i].Decode(data); err != nil {
			return nil, fmt.Errorf("failed to decode tick %d: %w", indices[i], err)
		}
		if ticks[i].Index != indices[i] {
			return nil, fmt.Errorf("%w: account for tick %d holds tick %d", invariant.ErrIntegrity, indices[i], ticks[i].Index)
		}
	}
	return ticks, nil
}

// FetchPosition gets the index-th position of owner
func (p *InvariantProtocol) FetchPosition(ctx context.Context, owner solana.PublicKey, index uint32) (*invariant.Position, error) {
	address, _, err := invariant.DerivePositionAddress(p.programID, owner, index)
	if err != nil {
		return nil, fmt.Errorf("failed to derive position address: %w", err)
	}
	data, _, err := p.Accounts.GetAccount(ctx, address, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get position %d of %s: %w", index, owner, err)
	}
	position := &invariant.Position{}
	if err := position.Decode(data); err != nil {
		return nil, fmt.Errorf("failed to decode position %d of %s: %w", index, owner, err)
	}
	return position, nil
}

// FetchSnapshot reads pool, tickmap and ticks, pinning every read to the slot the
// pool was observed at or later. Only ticks within windows search ranges of the
// current tick are read; simulations on the snapshot stop at that range.
func (p *InvariantProtocol) FetchSnapshot(ctx context.Context, pool solana.PublicKey, windows int) (*invariant.Snapshot, error) {
	if windows < 1 {
		windows = 1
	}
	layout, slot, err := p.fetchPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	tickmap, err := p.fetchTickmap(ctx, layout, slot)
	if err != nil {
		return nil, err
	}

	span := int32(layout.TickSpacing) * invariant.TICK_SEARCH_RANGE * int32(windows)
	lower := max(layout.CurrentTickIndex-span, invariant.MIN_TICK)
	upper := min(layout.CurrentTickIndex+span, invariant.MAX_TICK)
	indices := tickmap.InitializedInRange(lower, upper, layout.TickSpacing)

	ticks, err := p.fetchTicks(ctx, pool, indices, slot)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("fetched snapshot",
		zap.Stringer("pool", pool),
		zap.Uint64("slot", slot),
		zap.Int32("currentTick", layout.CurrentTickIndex),
		zap.Int("ticks", len(ticks)))

	return invariant.NewSnapshotInRange(*layout, tickmap, ticks, lower, upper)
}

// FetchPoolsByPair gets the pools of a token pair, one per fee tier that has one
func (p *InvariantProtocol) FetchPoolsByPair(ctx context.Context, tokenA, tokenB solana.PublicKey, tiers []invariant.FeeTier) ([]*invariant.Pool, error) {
	keys := make([]solana.PublicKey, len(tiers))
	for i, tier := range tiers {
		key, _, err := invariant.DerivePoolAddress(p.programID, tokenA, tokenB, tier)
		if err != nil {
			return nil, fmt.Errorf("failed to derive pool address: %w", err)
		}
		keys[i] = key
	}

	accounts, _, err := p.Accounts.GetAccounts(ctx, keys, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get pools: %w", err)
	}

	res := make([]*invariant.Pool, 0, len(tiers))
	for i, data := range accounts {
		if data == nil {
			continue
		}
		layout := &invariant.Pool{}
		if err := layout.Decode(data); err != nil {
			p.logger.Warn("skipping undecodable pool", zap.Stringer("pool", keys[i]), zap.Error(err))
			continue
		}
		layout.Address = keys[i]
		res = append(res, layout)
	}
	return res, nil
}

// IsNotFound reports whether err means an account does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, rpc.ErrNotFound)
}
