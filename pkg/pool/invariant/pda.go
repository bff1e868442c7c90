package invariant

import (
	"bytes"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// SortTokens orders a token pair the way pools store it
func SortTokens(a, b solana.PublicKey) (tokenX, tokenY solana.PublicKey) {
	if bytes.Compare(a.Bytes(), b.Bytes()) < 0 {
		return a, b
	}
	return b, a
}

// DerivePoolAddress returns the pool account of a token pair and fee tier
func DerivePoolAddress(programID, tokenA, tokenB solana.PublicKey, tier FeeTier) (solana.PublicKey, uint8, error) {
	tokenX, tokenY := SortTokens(tokenA, tokenB)
	spacing := make([]byte, 2)
	binary.LittleEndian.PutUint16(spacing, tier.TickSpacing)
	return solana.FindProgramAddress([][]byte{
		[]byte(POOL_SEED),
		tokenX.Bytes(),
		tokenY.Bytes(),
		tier.Fee.Bytes(),
		spacing,
	}, programID)
}

// DeriveTickAddress returns the tick account at index of pool
func DeriveTickAddress(programID, pool solana.PublicKey, index int32) (solana.PublicKey, uint8, error) {
	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, uint32(index))
	return solana.FindProgramAddress([][]byte{
		[]byte(TICK_SEED),
		pool.Bytes(),
		raw,
	}, programID)
}

// DerivePositionAddress returns the index-th position account of owner
func DerivePositionAddress(programID, owner solana.PublicKey, index uint32) (solana.PublicKey, uint8, error) {
	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, index)
	return solana.FindProgramAddress([][]byte{
		[]byte(POSITION_SEED),
		owner.Bytes(),
		raw,
	}, programID)
}
