package sol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client wraps the Solana RPC connection used to read program accounts
type Client struct {
	RpcClient  *rpc.Client
	Commitment rpc.CommitmentType
}

// NewClient creates a new Solana client reading at processed commitment
func NewClient(endpoint string) *Client {
	return &Client{
		RpcClient:  rpc.New(endpoint),
		Commitment: rpc.CommitmentProcessed,
	}
}

// Close terminates the RPC connection
func (c *Client) Close() error {
	return c.RpcClient.Close()
}

// GetAccount fetches one account's data, observed at minSlot or later.
// Returns rpc.ErrNotFound when the account does not exist.
func (c *Client) GetAccount(ctx context.Context, key solana.PublicKey, minSlot uint64) ([]byte, uint64, error) {
	opts := &rpc.GetAccountInfoOpts{Commitment: c.Commitment}
	if minSlot > 0 {
		opts.MinContextSlot = &minSlot
	}
	res, err := c.RpcClient.GetAccountInfoWithOpts(ctx, key, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get account %s: %w", key, err)
	}
	return res.Value.Data.GetBinary(), res.Context.Slot, nil
}

// GetAccounts fetches accounts in batches of MaxAccountsPerRequest.
// Missing accounts come back as nil entries. The returned slot is the lowest
// slot any batch was served at.
func (c *Client) GetAccounts(ctx context.Context, keys []solana.PublicKey, minSlot uint64) ([][]byte, uint64, error) {
	res := make([][]byte, 0, len(keys))
	var slot uint64
	for start := 0; start < len(keys); start += MaxAccountsPerRequest {
		end := min(start+MaxAccountsPerRequest, len(keys))
		opts := &rpc.GetMultipleAccountsOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: c.Commitment,
		}
		if minSlot > 0 {
			opts.MinContextSlot = &minSlot
		}
		out, err := c.RpcClient.GetMultipleAccountsWithOpts(ctx, keys[start:end], opts)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to get accounts [%d:%d]: %w", start, end, err)
		}
		if len(out.Value) != end-start {
			return nil, 0, fmt.Errorf("expected %d accounts, got %d", end-start, len(out.Value))
		}
		for _, account := range out.Value {
			if account == nil {
				res = append(res, nil)
				continue
			}
			res = append(res, account.Data.GetBinary())
		}
		if slot == 0 || out.Context.Slot < slot {
			slot = out.Context.Slot
		}
	}
	return res, slot, nil
}
