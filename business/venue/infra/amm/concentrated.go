package amm

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/rosegoldcruz/theatom-sub000/business/venue/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
)

const ppmDenominator = 1_000_000

// maxTradeBps caps a single trade at a fraction of in-range liquidity.
// Beyond that the pool would have to cross ticks, which this model treats as
// insufficient liquidity.
const maxTradeBps = 1_000 // 10% of virtual reserve

// ConcentratedPool models a concentrated-liquidity pool as virtual reserves
// around the current price, with the fee tier in parts per million. Trades
// above the in-range depth fail rather than walking ticks.
type ConcentratedPool struct {
	id     string
	asset0 *asset.Asset
	asset1 *asset.Asset
	v0     *big.Int // virtual reserve of asset0
	v1     *big.Int // virtual reserve of asset1
	mu     sync.Mutex
}

// NewConcentratedPool creates a pool with the given virtual reserves.
func NewConcentratedPool(id string, a0, a1 *asset.Asset, v0, v1 *big.Int) (*ConcentratedPool, error) {
	if a0 == nil || a1 == nil || a0.ID().Equals(a1.ID()) {
		return nil, fmt.Errorf("amm: pool %s needs two distinct assets", id)
	}
	if v0 == nil || v1 == nil || v0.Sign() <= 0 || v1.Sign() <= 0 {
		return nil, fmt.Errorf("amm: pool %s needs positive reserves", id)
	}

	return &ConcentratedPool{
		id:     id,
		asset0: a0,
		asset1: a1,
		v0:     new(big.Int).Set(v0),
		v1:     new(big.Int).Set(v1),
	}, nil
}

// ID returns the pool identifier.
func (p *ConcentratedPool) ID() string { return p.id }

// Reserves returns copies of the current virtual reserves.
func (p *ConcentratedPool) Reserves() (*big.Int, *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.v0), new(big.Int).Set(p.v1)
}

// SwapExactIn trades within the current in-range liquidity. The fee tier
// comes from the hop, not the pool, matching the single-pool-struct calling
// convention where the caller selects the tier.
func (p *ConcentratedPool) SwapExactIn(j *journal.Journal, in asset.Amount, out *asset.Asset, feeTierPpm int64) (asset.Amount, error) {
	if in.IsZero() {
		return asset.Amount{}, errZeroInput(p.id)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var reserveIn, reserveOut *big.Int
	switch {
	case in.Asset().ID().Equals(p.asset0.ID()) && out.ID().Equals(p.asset1.ID()):
		reserveIn, reserveOut = p.v0, p.v1
	case in.Asset().ID().Equals(p.asset1.ID()) && out.ID().Equals(p.asset0.ID()):
		reserveIn, reserveOut = p.v1, p.v0
	default:
		return asset.Amount{}, apperror.New(apperror.CodeVenueNotFound,
			apperror.WithContext(fmt.Sprintf("pool %s does not trade %s->%s", p.id, in.Asset().Symbol(), out.Symbol())))
	}

	inRaw := in.Raw()

	// In-range depth check: trade must stay within maxTradeBps of reserve.
	limit := new(big.Int).Mul(reserveIn, big.NewInt(maxTradeBps))
	limit.Div(limit, bigBpsDenominator)
	if inRaw.Cmp(limit) > 0 {
		return asset.Amount{}, errInsufficientLiquidity(p.id)
	}

	feeMul := big.NewInt(ppmDenominator - feeTierPpm)

	inWithFee := new(big.Int).Mul(inRaw, feeMul)
	numerator := new(big.Int).Mul(reserveOut, inWithFee)
	denominator := new(big.Int).Mul(reserveIn, big.NewInt(ppmDenominator))
	denominator.Add(denominator, inWithFee)

	outRaw := new(big.Int).Div(numerator, denominator)
	if outRaw.Sign() <= 0 || outRaw.Cmp(reserveOut) >= 0 {
		return asset.Amount{}, errInsufficientLiquidity(p.id)
	}

	undoIn := new(big.Int).Set(inRaw)
	undoOut := new(big.Int).Set(outRaw)
	j.Record(fmt.Sprintf("pool %s unswap", p.id), func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		reserveIn.Sub(reserveIn, undoIn)
		reserveOut.Add(reserveOut, undoOut)
	})

	reserveIn.Add(reserveIn, inRaw)
	reserveOut.Sub(reserveOut, outRaw)

	return asset.NewAmount(out, outRaw), nil
}

// ConcentratedAdapter routes concentrated-liquidity hops to pools by id.
type ConcentratedAdapter struct {
	pools map[string]*ConcentratedPool
}

// NewConcentratedAdapter creates an adapter over the given pools.
func NewConcentratedAdapter(pools ...*ConcentratedPool) *ConcentratedAdapter {
	a := &ConcentratedAdapter{pools: make(map[string]*ConcentratedPool, len(pools))}
	for _, p := range pools {
		a.pools[p.id] = p
	}
	return a
}

// Kind implements app.Adapter.
func (a *ConcentratedAdapter) Kind() domain.Kind { return domain.KindConcentratedLiquidity }

// Swap implements app.Adapter.
func (a *ConcentratedAdapter) Swap(_ context.Context, j *journal.Journal, in asset.Amount, hop domain.Hop) (asset.Amount, uint64, error) {
	params, ok := hop.Params.(domain.PoolParams)
	if !ok {
		return asset.Amount{}, 0, apperror.Validation(apperror.CodeInvalidInput, "concentrated hop needs pool params")
	}

	pool, ok := a.pools[params.PoolID]
	if !ok {
		return asset.Amount{}, 0, apperror.New(apperror.CodeVenueNotFound,
			apperror.WithContext(fmt.Sprintf("pool %s", params.PoolID)))
	}

	out, err := pool.SwapExactIn(j, in, hop.Out, params.FeeTier)
	if err != nil {
		return asset.Amount{}, 0, err
	}

	return out, UnitsConcentrated, nil
}
