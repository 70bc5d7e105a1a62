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

// stablePrecision normalizes all stableswap balances to 18 decimals so the
// invariant math is decimals-agnostic.
const stablePrecision = 18

// StableSwapPool models a Curve-style stableswap pool: the invariant
// A*n^n*sum(x) + D = A*D*n^n + D^(n+1)/(n^n*prod(x)), solved by Newton
// iteration for D and for the post-trade output balance y.
type StableSwapPool struct {
	id       string
	assets   []*asset.Asset
	balances []*big.Int // normalized to stablePrecision decimals
	scale    []*big.Int // raw -> normalized multiplier per asset
	amp      int64
	feeBps   int64
	mu       sync.Mutex
}

// NewStableSwapPool creates a stableswap pool. Balances are raw asset units;
// amp is the amplification coefficient A.
func NewStableSwapPool(id string, assets []*asset.Asset, balances []*big.Int, amp, feeBps int64) (*StableSwapPool, error) {
	if len(assets) < 2 || len(assets) != len(balances) {
		return nil, fmt.Errorf("amm: pool %s assets/balances mismatch", id)
	}
	if amp <= 0 {
		return nil, fmt.Errorf("amm: pool %s amplification must be positive", id)
	}
	if feeBps < 0 || feeBps >= bpsDenominator {
		return nil, fmt.Errorf("amm: pool %s fee out of range", id)
	}

	scale := make([]*big.Int, len(assets))
	normalized := make([]*big.Int, len(assets))
	for i, a := range assets {
		if balances[i] == nil || balances[i].Sign() <= 0 {
			return nil, fmt.Errorf("amm: pool %s balance %d not positive", id, i)
		}
		shift := int64(stablePrecision - int(a.Decimals()))
		if shift < 0 {
			return nil, fmt.Errorf("amm: pool %s asset %s exceeds %d decimals", id, a.Symbol(), stablePrecision)
		}
		scale[i] = new(big.Int).Exp(big.NewInt(10), big.NewInt(shift), nil)
		normalized[i] = new(big.Int).Mul(balances[i], scale[i])
	}

	return &StableSwapPool{
		id:       id,
		assets:   assets,
		balances: normalized,
		scale:    scale,
		amp:      amp,
		feeBps:   feeBps,
	}, nil
}

// ID returns the pool identifier.
func (p *StableSwapPool) ID() string { return p.id }

// NumCoins returns the number of coins in the pool.
func (p *StableSwapPool) NumCoins() int { return len(p.assets) }

// Asset returns the asset at coin index i.
func (p *StableSwapPool) Asset(i int) (*asset.Asset, bool) {
	if i < 0 || i >= len(p.assets) {
		return nil, false
	}
	return p.assets[i], true
}

// Exchange trades `in` from coin index i to coin index jIdx.
func (p *StableSwapPool) Exchange(j *journal.Journal, i, jIdx int, in asset.Amount) (asset.Amount, error) {
	if in.IsZero() {
		return asset.Amount{}, errZeroInput(p.id)
	}
	if i < 0 || i >= len(p.assets) || jIdx < 0 || jIdx >= len(p.assets) || i == jIdx {
		return asset.Amount{}, apperror.Validation(apperror.CodeInvalidInput,
			fmt.Sprintf("pool %s bad coin indexes %d->%d", p.id, i, jIdx))
	}
	if !in.Asset().ID().Equals(p.assets[i].ID()) {
		return asset.Amount{}, apperror.Validation(apperror.CodeInvalidInput,
			fmt.Sprintf("pool %s coin %d is %s not %s", p.id, i, p.assets[i].Symbol(), in.Asset().Symbol()))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	dx := new(big.Int).Mul(in.Raw(), p.scale[i])

	xp := make([]*big.Int, len(p.balances))
	for k, b := range p.balances {
		xp[k] = new(big.Int).Set(b)
	}

	d := p.getD(xp)

	newX := new(big.Int).Add(xp[i], dx)
	y := p.getY(i, jIdx, newX, xp, d)

	dyNorm := new(big.Int).Sub(xp[jIdx], y)
	dyNorm.Sub(dyNorm, big.NewInt(1)) // round down, pool keeps the dust
	if dyNorm.Sign() <= 0 {
		return asset.Amount{}, errInsufficientLiquidity(p.id)
	}

	// Fee on output, Curve convention.
	fee := new(big.Int).Mul(dyNorm, big.NewInt(p.feeBps))
	fee.Div(fee, bigBpsDenominator)
	dyNorm.Sub(dyNorm, fee)

	dyRaw := new(big.Int).Div(dyNorm, p.scale[jIdx])
	if dyRaw.Sign() <= 0 {
		return asset.Amount{}, errInsufficientLiquidity(p.id)
	}

	dyApplied := new(big.Int).Mul(dyRaw, p.scale[jIdx])

	undoDx := new(big.Int).Set(dx)
	undoDy := new(big.Int).Set(dyApplied)
	balIn := p.balances[i]
	balOut := p.balances[jIdx]
	j.Record(fmt.Sprintf("pool %s unexchange", p.id), func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		balIn.Sub(balIn, undoDx)
		balOut.Add(balOut, undoDy)
	})

	balIn.Add(balIn, dx)
	balOut.Sub(balOut, dyApplied)

	return asset.NewAmount(p.assets[jIdx], dyRaw), nil
}

// getD solves the stableswap invariant for D by Newton iteration.
func (p *StableSwapPool) getD(xp []*big.Int) *big.Int {
	n := int64(len(xp))
	bigN := big.NewInt(n)

	s := big.NewInt(0)
	for _, x := range xp {
		s.Add(s, x)
	}
	if s.Sign() == 0 {
		return big.NewInt(0)
	}

	// ann = A * n^n
	ann := big.NewInt(p.amp)
	for k := int64(0); k < n; k++ {
		ann.Mul(ann, bigN)
	}

	d := new(big.Int).Set(s)
	for iter := 0; iter < 255; iter++ {
		// dP = D^(n+1) / (n^n * prod(x))
		dP := new(big.Int).Set(d)
		for _, x := range xp {
			dP.Mul(dP, d)
			dP.Div(dP, new(big.Int).Mul(x, bigN))
		}

		dPrev := new(big.Int).Set(d)

		// d = (ann*s + dP*n) * d / ((ann-1)*d + (n+1)*dP)
		numerator := new(big.Int).Mul(ann, s)
		numerator.Add(numerator, new(big.Int).Mul(dP, bigN))
		numerator.Mul(numerator, d)

		denominator := new(big.Int).Mul(new(big.Int).Sub(ann, big.NewInt(1)), d)
		denominator.Add(denominator, new(big.Int).Mul(big.NewInt(n+1), dP))

		d = numerator.Div(numerator, denominator)

		if converged(d, dPrev) {
			break
		}
	}
	return d
}

// getY solves for the post-trade balance of coin jIdx given coin i moves to x.
func (p *StableSwapPool) getY(i, jIdx int, x *big.Int, xp []*big.Int, d *big.Int) *big.Int {
	n := int64(len(xp))
	bigN := big.NewInt(n)

	ann := big.NewInt(p.amp)
	for k := int64(0); k < n; k++ {
		ann.Mul(ann, bigN)
	}

	c := new(big.Int).Set(d)
	s := big.NewInt(0)

	for k := range xp {
		var xk *big.Int
		switch {
		case k == i:
			xk = x
		case k == jIdx:
			continue
		default:
			xk = xp[k]
		}
		s.Add(s, xk)
		c.Mul(c, d)
		c.Div(c, new(big.Int).Mul(xk, bigN))
	}

	// c = c * d / (ann * n)
	c.Mul(c, d)
	c.Div(c, new(big.Int).Mul(ann, bigN))

	// b = s + d/ann
	b := new(big.Int).Add(s, new(big.Int).Div(d, ann))

	y := new(big.Int).Set(d)
	for iter := 0; iter < 255; iter++ {
		yPrev := new(big.Int).Set(y)

		// y = (y^2 + c) / (2y + b - d)
		numerator := new(big.Int).Mul(y, y)
		numerator.Add(numerator, c)

		denominator := new(big.Int).Lsh(y, 1)
		denominator.Add(denominator, b)
		denominator.Sub(denominator, d)

		y = numerator.Div(numerator, denominator)

		if converged(y, yPrev) {
			break
		}
	}
	return y
}

func converged(a, b *big.Int) bool {
	diff := new(big.Int).Sub(a, b)
	return diff.CmpAbs(big.NewInt(1)) <= 0
}

// StableSwapAdapter routes stableswap hops to pools by id using the
// index-pair exchange convention.
type StableSwapAdapter struct {
	pools map[string]*StableSwapPool
}

// NewStableSwapAdapter creates an adapter over the given pools.
func NewStableSwapAdapter(pools ...*StableSwapPool) *StableSwapAdapter {
	a := &StableSwapAdapter{pools: make(map[string]*StableSwapPool, len(pools))}
	for _, p := range pools {
		a.pools[p.id] = p
	}
	return a
}

// Kind implements app.Adapter.
func (a *StableSwapAdapter) Kind() domain.Kind { return domain.KindStableSwap }

// Swap implements app.Adapter.
func (a *StableSwapAdapter) Swap(_ context.Context, j *journal.Journal, in asset.Amount, hop domain.Hop) (asset.Amount, uint64, error) {
	params, ok := hop.Params.(domain.StableParams)
	if !ok {
		return asset.Amount{}, 0, apperror.Validation(apperror.CodeInvalidInput, "stableswap hop needs stable params")
	}

	pool, ok := a.pools[params.PoolID]
	if !ok {
		return asset.Amount{}, 0, apperror.New(apperror.CodeVenueNotFound,
			apperror.WithContext(fmt.Sprintf("pool %s", params.PoolID)))
	}

	outAsset, ok := pool.Asset(params.IndexOut)
	if !ok || !outAsset.ID().Equals(hop.Out.ID()) {
		return asset.Amount{}, 0, apperror.Validation(apperror.CodeInvalidInput,
			fmt.Sprintf("pool %s coin %d does not match hop output", params.PoolID, params.IndexOut))
	}

	out, err := pool.Exchange(j, params.IndexIn, params.IndexOut, in)
	if err != nil {
		return asset.Amount{}, 0, err
	}

	return out, UnitsStableSwap, nil
}
