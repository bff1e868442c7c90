package sol

import "github.com/gagliardetto/solana-go"

var (
	WSOL = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	USDC = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

// MaxAccountsPerRequest is the getMultipleAccounts limit of public RPC nodes
const MaxAccountsPerRequest = 100
