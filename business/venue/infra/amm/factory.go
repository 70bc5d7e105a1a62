package amm

import (
	"fmt"
	"math/big"

	"github.com/rosegoldcruz/theatom-sub000/business/venue/app"
	"github.com/rosegoldcruz/theatom-sub000/business/venue/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/config"
)

// BuildAdapters constructs one adapter per venue family from the configured
// pool definitions. Families without any configured pool still get an empty
// adapter so routing errors surface as VENUE_NOT_FOUND rather than a missing
// dispatch entry.
func BuildAdapters(cfg config.VenuesConfig, registry *asset.Registry) (map[domain.Kind]app.Adapter, error) {
	var (
		pairPools     []*PairPool
		concPools     []*ConcentratedPool
		weightedPools []*WeightedPool
		stablePools   []*StableSwapPool
	)

	for _, pc := range cfg.Pools {
		kind, ok := domain.ParseKind(pc.Kind)
		if !ok {
			return nil, fmt.Errorf("amm: pool %s has unknown kind %q", pc.ID, pc.Kind)
		}

		assets, reserves, err := resolvePool(pc, registry)
		if err != nil {
			return nil, err
		}

		switch kind {
		case domain.KindConstantProduct:
			if len(assets) != 2 {
				return nil, fmt.Errorf("amm: pool %s needs exactly two assets", pc.ID)
			}
			p, err := NewPairPool(pc.ID, assets[0], assets[1], reserves[0], reserves[1], pc.FeeBps)
			if err != nil {
				return nil, err
			}
			pairPools = append(pairPools, p)

		case domain.KindConcentratedLiquidity:
			if len(assets) != 2 {
				return nil, fmt.Errorf("amm: pool %s needs exactly two assets", pc.ID)
			}
			p, err := NewConcentratedPool(pc.ID, assets[0], assets[1], reserves[0], reserves[1])
			if err != nil {
				return nil, err
			}
			concPools = append(concPools, p)

		case domain.KindWeightedVault:
			p, err := NewWeightedPool(pc.ID, assets, reserves, pc.Weights, pc.FeeBps)
			if err != nil {
				return nil, err
			}
			weightedPools = append(weightedPools, p)

		case domain.KindStableSwap:
			p, err := NewStableSwapPool(pc.ID, assets, reserves, pc.AmpCoeff, pc.FeeBps)
			if err != nil {
				return nil, err
			}
			stablePools = append(stablePools, p)
		}
	}

	cpAdapter, err := NewConstantProductAdapter(pairPools...)
	if err != nil {
		return nil, err
	}

	return map[domain.Kind]app.Adapter{
		domain.KindConstantProduct:       cpAdapter,
		domain.KindConcentratedLiquidity: NewConcentratedAdapter(concPools...),
		domain.KindWeightedVault:         NewWeightedVaultAdapter(weightedPools...),
		domain.KindStableSwap:            NewStableSwapAdapter(stablePools...),
	}, nil
}

func resolvePool(pc config.PoolConfig, registry *asset.Registry) ([]*asset.Asset, []*big.Int, error) {
	if len(pc.Assets) != len(pc.Reserves) {
		return nil, nil, fmt.Errorf("amm: pool %s assets/reserves length mismatch", pc.ID)
	}

	assets := make([]*asset.Asset, len(pc.Assets))
	reserves := make([]*big.Int, len(pc.Reserves))
	for i, sym := range pc.Assets {
		matches := registry.GetBySymbol(sym)
		if len(matches) == 0 {
			return nil, nil, fmt.Errorf("amm: pool %s references unknown asset %s", pc.ID, sym)
		}
		assets[i] = matches[0]

		amt, err := asset.ParseString(assets[i], pc.Reserves[i])
		if err != nil {
			return nil, nil, fmt.Errorf("amm: pool %s reserve %s: %w", pc.ID, sym, err)
		}
		reserves[i] = amt.Raw()
	}
	return assets, reserves, nil
}
