package amm

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sync"

	"github.com/rosegoldcruz/theatom-sub000/business/venue/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
)

// WeightedPool models a Balancer-style weighted pool inside a vault.
// amountOut = balanceOut * (1 - (balanceIn / (balanceIn + inAfterFee))^(wIn/wOut)).
type WeightedPool struct {
	id       string
	assets   []*asset.Asset
	balances []*big.Int
	weights  []int64 // normalized, sum 100
	feeBps   int64
	mu       sync.Mutex
}

// NewWeightedPool creates a weighted pool. Weights are parallel to assets
// and must sum to 100.
func NewWeightedPool(id string, assets []*asset.Asset, balances []*big.Int, weights []int64, feeBps int64) (*WeightedPool, error) {
	if len(assets) < 2 || len(assets) != len(balances) || len(assets) != len(weights) {
		return nil, fmt.Errorf("amm: pool %s assets/balances/weights mismatch", id)
	}

	var sum int64
	for i, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("amm: pool %s weight %d not positive", id, i)
		}
		sum += w
		if balances[i] == nil || balances[i].Sign() <= 0 {
			return nil, fmt.Errorf("amm: pool %s balance %d not positive", id, i)
		}
	}
	if sum != 100 {
		return nil, fmt.Errorf("amm: pool %s weights must sum to 100, got %d", id, sum)
	}
	if feeBps < 0 || feeBps >= bpsDenominator {
		return nil, fmt.Errorf("amm: pool %s fee out of range", id)
	}

	copied := make([]*big.Int, len(balances))
	for i, b := range balances {
		copied[i] = new(big.Int).Set(b)
	}

	return &WeightedPool{
		id:       id,
		assets:   assets,
		balances: copied,
		weights:  weights,
		feeBps:   feeBps,
	}, nil
}

// ID returns the pool identifier.
func (p *WeightedPool) ID() string { return p.id }

// Balance returns a copy of the pool balance for the given asset.
func (p *WeightedPool) Balance(a *asset.Asset) (*big.Int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.index(a)
	if i < 0 {
		return nil, false
	}
	return new(big.Int).Set(p.balances[i]), true
}

func (p *WeightedPool) index(a *asset.Asset) int {
	for i, pa := range p.assets {
		if pa.ID().Equals(a.ID()) {
			return i
		}
	}
	return -1
}

// SwapExactIn executes a single-swap request against the pool.
func (p *WeightedPool) SwapExactIn(j *journal.Journal, in asset.Amount, out *asset.Asset) (asset.Amount, error) {
	if in.IsZero() {
		return asset.Amount{}, errZeroInput(p.id)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ii := p.index(in.Asset())
	oi := p.index(out)
	if ii < 0 || oi < 0 || ii == oi {
		return asset.Amount{}, apperror.New(apperror.CodeVenueNotFound,
			apperror.WithContext(fmt.Sprintf("pool %s does not trade %s->%s", p.id, in.Asset().Symbol(), out.Symbol())))
	}

	balanceIn := p.balances[ii]
	balanceOut := p.balances[oi]

	inRaw := in.Raw()
	inAfterFee := new(big.Int).Mul(inRaw, big.NewInt(bpsDenominator-p.feeBps))
	inAfterFee.Div(inAfterFee, bigBpsDenominator)
	if inAfterFee.Sign() <= 0 {
		return asset.Amount{}, errZeroInput(p.id)
	}

	outRaw := weightedOut(balanceIn, balanceOut, inAfterFee, p.weights[ii], p.weights[oi])
	if outRaw.Sign() <= 0 || outRaw.Cmp(balanceOut) >= 0 {
		return asset.Amount{}, errInsufficientLiquidity(p.id)
	}

	undoIn := new(big.Int).Set(inRaw)
	undoOut := new(big.Int).Set(outRaw)
	j.Record(fmt.Sprintf("pool %s unswap", p.id), func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		balanceIn.Sub(balanceIn, undoIn)
		balanceOut.Add(balanceOut, undoOut)
	})

	balanceIn.Add(balanceIn, inRaw)
	balanceOut.Sub(balanceOut, outRaw)

	return asset.NewAmount(out, outRaw), nil
}

// weightedOut computes balanceOut * (1 - (bIn/(bIn+x))^(wIn/wOut)).
// Equal weights reduce to the exact constant-product form; unequal weights
// take the float path, which is the accepted approximation for a fractional
// exponent.
func weightedOut(balanceIn, balanceOut, x *big.Int, wIn, wOut int64) *big.Int {
	if wIn == wOut {
		// out = bOut * x / (bIn + x)
		numerator := new(big.Int).Mul(balanceOut, x)
		denominator := new(big.Int).Add(balanceIn, x)
		return numerator.Div(numerator, denominator)
	}

	bIn, _ := new(big.Float).SetInt(balanceIn).Float64()
	bOut, _ := new(big.Float).SetInt(balanceOut).Float64()
	xf, _ := new(big.Float).SetInt(x).Float64()

	ratio := bIn / (bIn + xf)
	exponent := float64(wIn) / float64(wOut)
	outF := bOut * (1 - math.Pow(ratio, exponent))

	out, _ := big.NewFloat(outF).Int(nil)
	return out
}

// WeightedVaultAdapter routes weighted-vault hops to pools by id, the
// single-swap vault convention.
type WeightedVaultAdapter struct {
	pools map[string]*WeightedPool
}

// NewWeightedVaultAdapter creates an adapter over the given pools.
func NewWeightedVaultAdapter(pools ...*WeightedPool) *WeightedVaultAdapter {
	a := &WeightedVaultAdapter{pools: make(map[string]*WeightedPool, len(pools))}
	for _, p := range pools {
		a.pools[p.id] = p
	}
	return a
}

// Kind implements app.Adapter.
func (a *WeightedVaultAdapter) Kind() domain.Kind { return domain.KindWeightedVault }

// Swap implements app.Adapter.
func (a *WeightedVaultAdapter) Swap(_ context.Context, j *journal.Journal, in asset.Amount, hop domain.Hop) (asset.Amount, uint64, error) {
	params, ok := hop.Params.(domain.VaultParams)
	if !ok {
		return asset.Amount{}, 0, apperror.Validation(apperror.CodeInvalidInput, "weighted hop needs vault params")
	}

	pool, ok := a.pools[params.PoolID]
	if !ok {
		return asset.Amount{}, 0, apperror.New(apperror.CodeVenueNotFound,
			apperror.WithContext(fmt.Sprintf("pool %s", params.PoolID)))
	}

	out, err := pool.SwapExactIn(j, in, hop.Out)
	if err != nil {
		return asset.Amount{}, 0, err
	}

	return out, UnitsWeighted, nil
}
