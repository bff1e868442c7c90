package pkg

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gtdvccc/invariant-sim/pkg/pool/invariant"
)

// ProtocolName represents the string name of AMM protocol
type ProtocolName string

const (
	ProtocolNameInvariant ProtocolName = "invariant"
)

// Ledger reads pool, tick and position records of the settlement program.
//
// Records returned by one call describe a single observed state. Snapshots built
// from several calls are only consistent when the implementation pins them to
// the same slot, as FetchSnapshot does.
type Ledger interface {
	FetchPool(ctx context.Context, pool solana.PublicKey) (*invariant.Pool, error)
	FetchTickmap(ctx context.Context, pool solana.PublicKey) (*invariant.Tickmap, error)
	FetchTicks(ctx context.Context, pool solana.PublicKey, indices []int32) ([]invariant.Tick, error)
	FetchPosition(ctx context.Context, owner solana.PublicKey, index uint32) (*invariant.Position, error)
	// FetchSnapshot reads the pool with its tickmap and the initialized ticks
	// within the given number of search windows on each side of the current tick
	FetchSnapshot(ctx context.Context, pool solana.PublicKey, windows int) (*invariant.Snapshot, error)
}

// Protocol finds the pools trading a token pair
type Protocol interface {
	Ledger
	Name() ProtocolName
	ProgramID() solana.PublicKey
	FetchPoolsByPair(ctx context.Context, tokenA, tokenB solana.PublicKey, tiers []invariant.FeeTier) ([]*invariant.Pool, error)
}
