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

// PairPool is a two-token constant-product pool (x*y=k) with an LP fee in
// basis points, the Uniswap V2 convention.
type PairPool struct {
	id     string
	asset0 *asset.Asset
	asset1 *asset.Asset
	r0     *big.Int // reserve of asset0, raw units
	r1     *big.Int // reserve of asset1, raw units
	feeBps int64
	mu     sync.Mutex
}

// NewPairPool creates a constant-product pool with the given reserves.
func NewPairPool(id string, a0, a1 *asset.Asset, r0, r1 *big.Int, feeBps int64) (*PairPool, error) {
	if a0 == nil || a1 == nil || a0.ID().Equals(a1.ID()) {
		return nil, fmt.Errorf("amm: pool %s needs two distinct assets", id)
	}
	if r0 == nil || r1 == nil || r0.Sign() <= 0 || r1.Sign() <= 0 {
		return nil, fmt.Errorf("amm: pool %s needs positive reserves", id)
	}
	if feeBps < 0 || feeBps >= bpsDenominator {
		return nil, fmt.Errorf("amm: pool %s fee out of range", id)
	}

	return &PairPool{
		id:     id,
		asset0: a0,
		asset1: a1,
		r0:     new(big.Int).Set(r0),
		r1:     new(big.Int).Set(r1),
		feeBps: feeBps,
	}, nil
}

// ID returns the pool identifier.
func (p *PairPool) ID() string { return p.id }

// Holds reports whether the pool trades the given pair.
func (p *PairPool) Holds(a, b *asset.Asset) bool {
	return newPairKey(a, b) == newPairKey(p.asset0, p.asset1)
}

// Reserves returns copies of the current reserves.
func (p *PairPool) Reserves() (*big.Int, *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.r0), new(big.Int).Set(p.r1)
}

// SwapExactIn trades `in` for the pool's other asset.
// amountOut = reserveOut * inAfterFee / (reserveIn + inAfterFee), with
// inAfterFee = in * (10000 - feeBps) / 10000 computed in the numerator to
// avoid early truncation. Reserve mutation is journaled before it applies.
func (p *PairPool) SwapExactIn(j *journal.Journal, in asset.Amount, out *asset.Asset) (asset.Amount, error) {
	if in.IsZero() {
		return asset.Amount{}, errZeroInput(p.id)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var reserveIn, reserveOut *big.Int
	switch {
	case in.Asset().ID().Equals(p.asset0.ID()) && out.ID().Equals(p.asset1.ID()):
		reserveIn, reserveOut = p.r0, p.r1
	case in.Asset().ID().Equals(p.asset1.ID()) && out.ID().Equals(p.asset0.ID()):
		reserveIn, reserveOut = p.r1, p.r0
	default:
		return asset.Amount{}, apperror.New(apperror.CodeVenueNotFound,
			apperror.WithContext(fmt.Sprintf("pool %s does not trade %s->%s", p.id, in.Asset().Symbol(), out.Symbol())))
	}

	inRaw := in.Raw()
	feeMul := big.NewInt(bpsDenominator - p.feeBps)

	// numerator   = reserveOut * in * (10000 - fee)
	// denominator = reserveIn * 10000 + in * (10000 - fee)
	inWithFee := new(big.Int).Mul(inRaw, feeMul)
	numerator := new(big.Int).Mul(reserveOut, inWithFee)
	denominator := new(big.Int).Mul(reserveIn, bigBpsDenominator)
	denominator.Add(denominator, inWithFee)

	outRaw := new(big.Int).Div(numerator, denominator)
	if outRaw.Sign() <= 0 || outRaw.Cmp(reserveOut) >= 0 {
		return asset.Amount{}, errInsufficientLiquidity(p.id)
	}

	// Inverse first, then apply.
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

// ConstantProductAdapter routes constant-product hops, including multi-pair
// path hops, across its registered pools.
type ConstantProductAdapter struct {
	pools map[pairKey]*PairPool
	byID  map[string]*PairPool
}

// NewConstantProductAdapter creates an adapter over the given pools. Path
// routing keys pools by their asset pair, so two pools over the same pair
// are rejected rather than one silently shadowing the other.
func NewConstantProductAdapter(pools ...*PairPool) (*ConstantProductAdapter, error) {
	a := &ConstantProductAdapter{
		pools: make(map[pairKey]*PairPool, len(pools)),
		byID:  make(map[string]*PairPool, len(pools)),
	}
	for _, p := range pools {
		key := newPairKey(p.asset0, p.asset1)
		if existing, dup := a.pools[key]; dup {
			return nil, fmt.Errorf("amm: pools %s and %s trade the same pair %s/%s",
				existing.id, p.id, p.asset0.Symbol(), p.asset1.Symbol())
		}
		a.pools[key] = p
		a.byID[p.id] = p
	}
	return a, nil
}

// Kind implements app.Adapter.
func (a *ConstantProductAdapter) Kind() domain.Kind { return domain.KindConstantProduct }

// Swap implements app.Adapter. A path hop walks in -> via... -> out through
// one pool per consecutive pair.
func (a *ConstantProductAdapter) Swap(_ context.Context, j *journal.Journal, in asset.Amount, hop domain.Hop) (asset.Amount, uint64, error) {
	chain := []*asset.Asset{hop.In}
	if params, ok := hop.Params.(domain.PathParams); ok {
		chain = append(chain, params.Via...)
	}
	chain = append(chain, hop.Out)

	current := in
	var units uint64

	for i := 0; i+1 < len(chain); i++ {
		pool, ok := a.pools[newPairKey(chain[i], chain[i+1])]
		if !ok {
			return asset.Amount{}, units, apperror.New(apperror.CodeVenueNotFound,
				apperror.WithContext(fmt.Sprintf("no pair pool for %s/%s", chain[i].Symbol(), chain[i+1].Symbol())))
		}

		out, err := pool.SwapExactIn(j, current, chain[i+1])
		if err != nil {
			return asset.Amount{}, units, err
		}

		units += UnitsConstantProduct
		current = out
	}

	return current, units, nil
}
