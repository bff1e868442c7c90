package sol

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// GetMintDecimals reads the number of decimals of an SPL token mint
func (c *Client) GetMintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	data, _, err := c.GetAccount(ctx, mint, 0)
	if err != nil {
		return 0, err
	}
	var layout token.Mint
	if err := bin.NewBinDecoder(data).Decode(&layout); err != nil {
		return 0, fmt.Errorf("failed to decode mint %s: %w", mint, err)
	}
	return layout.Decimals, nil
}
