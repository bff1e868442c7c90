package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gtdvccc/invariant-sim/pkg/pool/invariant"
	"github.com/gtdvccc/invariant-sim/pkg/protocol"
	"github.com/gtdvccc/invariant-sim/pkg/router"
	"github.com/gtdvccc/invariant-sim/pkg/sol"
	"github.com/gtdvccc/invariant-sim/utils"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	defaultRPC = "https://api.mainnet-beta.solana.com"

	// Swap parameters
	defaultAmount   = 1000000000 // 1 sol (9 decimals)
	defaultSlippage = "0.01"     // 1% slippage
	defaultWindows  = 2
)

func main() {
	// Load .env if present
	envFile := utils.LoadEnv()

	tokenIn := flag.String("token-in", sol.WSOL.String(), "mint of the token sold")
	tokenOut := flag.String("token-out", sol.USDC.String(), "mint of the token bought")
	amount := flag.Uint64("amount", defaultAmount, "raw token amount")
	byAmountIn := flag.Bool("by-amount-in", true, "amount is the exact input, otherwise the exact output")
	slippage := flag.String("slippage", defaultSlippage, "accepted price slippage, 0.01 is 1%")
	windows := flag.Int("windows", defaultWindows, "tick search windows fetched on each side of the price")
	owner := flag.String("owner", "", "position owner; with -position prints claimable fees instead of quoting")
	position := flag.Uint("position", 0, "position index of -owner")
	timeout := flag.Duration("timeout", 30*time.Second, "RPC timeout")
	flag.Parse()

	logger, err := newLogger(utils.EnvOr(utils.ENV_LOG_LEVEL, "info"))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	if envFile != "" {
		logger.Debug("loaded environment", zap.String("file", envFile))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	solClient := sol.NewClient(utils.EnvOr(utils.ENV_RPC_URL, defaultRPC))
	defer solClient.Close()

	invariantProtocol := protocol.NewInvariant(solClient, invariant.INVARIANT_PROGRAM_ID, logger)

	if *owner != "" {
		if err := printClaimable(ctx, logger, invariantProtocol, solana.MustPublicKeyFromBase58(*owner), uint32(*position)); err != nil {
			logger.Fatal("Failed to calculate claimable fees", zap.Error(err))
		}
		return
	}

	tiers, err := utils.LoadFeeTiers(os.Getenv(utils.ENV_FEE_TIERS))
	if err != nil {
		logger.Fatal("Failed to load fee tiers", zap.Error(err))
	}
	slippageValue, err := invariant.ParseDecimal(*slippage)
	if err != nil {
		logger.Fatal("Invalid slippage", zap.Error(err))
	}

	mintIn := solana.MustPublicKeyFromBase58(*tokenIn)
	mintOut := solana.MustPublicKeyFromBase58(*tokenOut)

	r := router.NewSimpleRouter(logger, router.NewMetrics(prometheus.DefaultRegisterer), tiers, *windows, invariantProtocol)

	// Query available pools
	pools, err := r.QueryAllPools(ctx, mintIn, mintOut)
	if err != nil {
		logger.Fatal("Failed to query all pools", zap.Error(err))
	}
	for _, pool := range pools {
		logger.Info("Found pool",
			zap.Stringer("pool", pool.Address),
			zap.Stringer("fee", pool.Fee),
			zap.Uint16("tickSpacing", pool.TickSpacing))
	}

	// Find best pool for the swap
	quote, err := r.GetBestQuote(ctx, router.QuoteRequest{
		TokenIn:    mintIn,
		TokenOut:   mintOut,
		Amount:     *amount,
		ByAmountIn: *byAmountIn,
		Slippage:   slippageValue,
	})
	if err != nil {
		logger.Fatal("Failed to get best quote", zap.Error(err))
	}

	decimalsX, err := solClient.GetMintDecimals(ctx, quote.Pool.TokenX)
	if err != nil {
		logger.Fatal("Failed to get mint decimals", zap.Error(err))
	}
	decimalsY, err := solClient.GetMintDecimals(ctx, quote.Pool.TokenY)
	if err != nil {
		logger.Fatal("Failed to get mint decimals", zap.Error(err))
	}
	decimalsIn, decimalsOut := decimalsX, decimalsY
	if !quote.XToY {
		decimalsIn, decimalsOut = decimalsY, decimalsX
	}

	result := quote.Result
	logger.Info("Selected best pool",
		zap.Stringer("pool", quote.Pool.Address),
		zap.Stringer("status", result.Status),
		zap.String("message", result.Status.Message()),
		zap.Stringer("amountIn", invariant.TokenAmountToDecimal(result.AccumulatedAmountIn, decimalsIn)),
		zap.Stringer("amountOut", invariant.TokenAmountToDecimal(result.AccumulatedAmountOut, decimalsOut)),
		zap.Stringer("fee", invariant.TokenAmountToDecimal(result.AccumulatedFee, decimalsIn)),
		zap.Stringer("minReceived", invariant.TokenAmountToDecimal(invariant.MinReceived(result.AccumulatedAmountOut, slippageValue), decimalsOut)),
		zap.Stringer("priceBefore", invariant.SqrtPriceToPrice(quote.Pool.SqrtPrice, decimalsX, decimalsY)),
		zap.Stringer("priceAfter", invariant.SqrtPriceToPrice(result.PriceAfterSwap, decimalsX, decimalsY)),
		zap.Int32("tickAfter", result.TickAfterSwap),
		zap.Int("crossedTicks", len(result.CrossedTicks)))
}

func newLogger(level string) (*zap.Logger, error) {
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = atomic
	return cfg.Build()
}

func printClaimable(ctx context.Context, logger *zap.Logger, p *protocol.InvariantProtocol, owner solana.PublicKey, index uint32) error {
	position, err := p.FetchPosition(ctx, owner, index)
	if err != nil {
		return err
	}
	pool, err := p.FetchPool(ctx, position.Pool)
	if err != nil {
		return err
	}
	ticks, err := p.FetchTicks(ctx, position.Pool, []int32{position.LowerTickIndex, position.UpperTickIndex})
	if err != nil {
		return err
	}
	owedX, owedY, err := invariant.CalculateClaimAmount(*position, ticks[0], ticks[1],
		pool.CurrentTickIndex, pool.FeeGrowthGlobalX, pool.FeeGrowthGlobalY)
	if err != nil {
		return err
	}
	logger.Info("Claimable fees",
		zap.Stringer("pool", position.Pool),
		zap.Int32("lowerTick", position.LowerTickIndex),
		zap.Int32("upperTick", position.UpperTickIndex),
		zap.Stringer("liquidity", position.Liquidity),
		zap.Uint64("tokenX", owedX.ToTokenFloor()),
		zap.Uint64("tokenY", owedY.ToTokenFloor()))
	return nil
}
