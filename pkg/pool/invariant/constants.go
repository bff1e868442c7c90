package invariant

import (
	"github.com/gagliardetto/solana-go"
)

// Program IDs
var (
	// Invariant Program ID
	INVARIANT_PROGRAM_ID = solana.MustPublicKeyFromBase58("HyaB3W9q6XdA5xwpU4XnSZV94htfmbmqJXZcEbRaJutt")
)

// Tick configuration shared with the settlement program
const (
	MAX_TICK          int32 = 221_818
	MIN_TICK          int32 = -MAX_TICK
	TICK_LIMIT        int32 = 100_000
	TICK_SEARCH_RANGE int32 = 256

	// TICKMAP_SIZE is the number of bits in the tickmap
	TICKMAP_SIZE int32 = 2*TICK_LIMIT - 1
	// TICKMAP_BYTES is the size of the bitmap stored on chain
	TICKMAP_BYTES = 25_000

	// MAX_TICK_CROSSES_PER_IX bounds the initialized ticks one swap instruction may cross
	MAX_TICK_CROSSES_PER_IX = 19
)

// Seeds for account derivation
var (
	POOL_SEED     = "poolv1"
	TICK_SEED     = "tickv1"
	POSITION_SEED = "positionv1"
)

// Account sizes including the 8 byte discriminator
const (
	DISCRIMINATOR_SIZE    = 8
	POOL_ACCOUNT_SIZE     = DISCRIMINATOR_SIZE + 4*32 + 16 + 2 + 4*16 + 4 + 32 + 2*16 + 2*8 + 16 + 2*8 + 2*32 + 1 + 1
	TICK_ACCOUNT_SIZE     = DISCRIMINATOR_SIZE + 32 + 4 + 1 + 6*16 + 8 + 1
	POSITION_ACCOUNT_SIZE = DISCRIMINATOR_SIZE + 2*32 + 16 + 16 + 2*4 + 3*16 + 8 + 2*16 + 1
	TICKMAP_ACCOUNT_SIZE  = DISCRIMINATOR_SIZE + TICKMAP_BYTES
)
