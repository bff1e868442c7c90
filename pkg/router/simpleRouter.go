package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gtdvccc/invariant-sim/pkg"
	"github.com/gtdvccc/invariant-sim/pkg/decimal"
	"github.com/gtdvccc/invariant-sim/pkg/pool/invariant"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ErrNoRoute is returned when no pool can fill any part of the trade
var ErrNoRoute = errors.New("no route found")

// QuoteRequest - one trade to price across the pools of a pair
type QuoteRequest struct {
	TokenIn    solana.PublicKey
	TokenOut   solana.PublicKey
	Amount     uint64
	ByAmountIn bool
	Slippage   decimal.Decimal
	// MaxTickCrosses bounds each simulation, 0 uses MAX_TICK_CROSSES_PER_IX
	MaxTickCrosses int
}

// Quote - the simulated outcome on one pool
type Quote struct {
	Pool       *invariant.Pool
	XToY       bool
	PriceLimit decimal.Decimal
	Result     *invariant.SimulationResult
}

type SimpleRouter struct {
	protocols []pkg.Protocol
	tiers     []invariant.FeeTier
	windows   int
	logger    *zap.Logger
	metrics   *Metrics
	// pools of pair, filled by QueryAllPools
	pair  [2]solana.PublicKey
	pools []routedPool
}

type routedPool struct {
	protocol pkg.Protocol
	pool     *invariant.Pool
}

// NewSimpleRouter creates a router quoting every fee tier of the given protocols.
// windows is the number of tick search windows fetched on each side of the price.
func NewSimpleRouter(logger *zap.Logger, metrics *Metrics, tiers []invariant.FeeTier, windows int, protocols ...pkg.Protocol) *SimpleRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if len(tiers) == 0 {
		tiers = invariant.DefaultFeeTiers()
	}
	return &SimpleRouter{
		protocols: protocols,
		tiers:     tiers,
		windows:   windows,
		logger:    logger,
		metrics:   metrics,
		pools:     []routedPool{},
	}
}

// QueryAllPools collects the pools of a pair from every protocol
func (r *SimpleRouter) QueryAllPools(ctx context.Context, tokenA, tokenB solana.PublicKey) ([]*invariant.Pool, error) {
	r.pools = r.pools[:0]
	r.pair = pairKey(tokenA, tokenB)
	res := make([]*invariant.Pool, 0)
	for _, proto := range r.protocols {
		pools, err := proto.FetchPoolsByPair(ctx, tokenA, tokenB, r.tiers)
		if err != nil {
			r.logger.Warn("failed to fetch pools",
				zap.String("protocol", string(proto.Name())),
				zap.Stringer("program", proto.ProgramID()),
				zap.Error(err))
			continue
		}
		for _, pool := range pools {
			r.pools = append(r.pools, routedPool{protocol: proto, pool: pool})
		}
		res = append(res, pools...)
	}
	return res, nil
}

// GetBestQuote simulates the trade on every pool of the requested pair and picks the
// best fill. Pools are queried again when the pair differs from the last query.
// For exact input trades that is the largest output, for exact output trades the
// smallest input; larger fills win over partial ones.
func (r *SimpleRouter) GetBestQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if len(r.pools) == 0 || r.pair != pairKey(req.TokenIn, req.TokenOut) {
		if _, err := r.QueryAllPools(ctx, req.TokenIn, req.TokenOut); err != nil {
			return nil, err
		}
	}

	var best *Quote
	for _, routed := range r.pools {
		quote, err := r.quotePool(ctx, routed.protocol, routed.pool, req)
		if err != nil {
			r.metrics.poolErrors.Inc()
			r.logger.Warn("error quoting",
				zap.String("protocol", string(routed.protocol.Name())),
				zap.Stringer("pool", routed.pool.Address),
				zap.Error(err))
			continue
		}
		if quote == nil {
			continue
		}
		if best == nil || better(quote, best, req.ByAmountIn) {
			best = quote
		}
	}
	if best == nil {
		return nil, ErrNoRoute
	}
	return best, nil
}

func pairKey(tokenA, tokenB solana.PublicKey) [2]solana.PublicKey {
	tokenX, tokenY := invariant.SortTokens(tokenA, tokenB)
	return [2]solana.PublicKey{tokenX, tokenY}
}

func (r *SimpleRouter) quotePool(ctx context.Context, proto pkg.Protocol, pool *invariant.Pool, req QuoteRequest) (*Quote, error) {
	timer := prometheus.NewTimer(r.metrics.quoteDuration.WithLabelValues())
	defer timer.ObserveDuration()

	var xToY bool
	switch {
	case pool.TokenX.Equals(req.TokenIn) && pool.TokenY.Equals(req.TokenOut):
		xToY = true
	case pool.TokenY.Equals(req.TokenIn) && pool.TokenX.Equals(req.TokenOut):
		xToY = false
	default:
		return nil, fmt.Errorf("pool %s does not trade %s for %s", pool.Address, req.TokenIn, req.TokenOut)
	}

	snapshot, err := proto.FetchSnapshot(ctx, pool.Address, r.windows)
	if err != nil {
		return nil, err
	}

	maxCrosses := req.MaxTickCrosses
	if maxCrosses == 0 {
		maxCrosses = invariant.MAX_TICK_CROSSES_PER_IX
	}
	limit := invariant.PriceLimitFor(snapshot.Pool, xToY, req.Slippage)
	result, err := invariant.SimulateSwap(snapshot, invariant.SimulateSwapParams{
		XToY:           xToY,
		ByAmountIn:     req.ByAmountIn,
		Amount:         req.Amount,
		PriceLimit:     limit,
		MaxTickCrosses: maxCrosses,
	})
	if err != nil {
		return nil, err
	}
	r.metrics.quotes.WithLabelValues(result.Status.String()).Inc()
	r.logger.Debug("simulated pool",
		zap.Stringer("pool", pool.Address),
		zap.Stringer("status", result.Status),
		zap.Uint64("amountIn", result.AccumulatedAmountIn),
		zap.Uint64("amountOut", result.AccumulatedAmountOut),
		zap.Uint64("fee", result.AccumulatedFee))

	if !result.Filled() {
		return nil, nil
	}
	snapshotPool := snapshot.Pool
	return &Quote{
		Pool:       &snapshotPool,
		XToY:       xToY,
		PriceLimit: limit,
		Result:     result,
	}, nil
}

// better reports whether a beats b
func better(a, b *Quote, byAmountIn bool) bool {
	if byAmountIn {
		if a.Result.AccumulatedAmountIn+a.Result.AccumulatedFee != b.Result.AccumulatedAmountIn+b.Result.AccumulatedFee {
			return a.Result.AccumulatedAmountIn+a.Result.AccumulatedFee > b.Result.AccumulatedAmountIn+b.Result.AccumulatedFee
		}
		return a.Result.AccumulatedAmountOut > b.Result.AccumulatedAmountOut
	}
	if a.Result.AccumulatedAmountOut != b.Result.AccumulatedAmountOut {
		return a.Result.AccumulatedAmountOut > b.Result.AccumulatedAmountOut
	}
	return a.Result.AccumulatedAmountIn+a.Result.AccumulatedFee < b.Result.AccumulatedAmountIn+b.Result.AccumulatedFee
}
