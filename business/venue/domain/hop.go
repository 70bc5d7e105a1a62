package domain

import (
	"fmt"

	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
)

// Params carries the venue-family-specific encoding of one hop.
// Exactly one concrete type exists per Kind; adapters switch on it.
type Params interface {
	isParams()
}

// PathParams is the constant-product convention: an ordered token path.
// Empty Via means a direct two-token swap.
type PathParams struct {
	// Via lists intermediate assets between the hop's in and out assets.
	Via []*asset.Asset
}

func (PathParams) isParams() {}

// PoolParams is the concentrated-liquidity convention: one pool plus fee tier.
type PoolParams struct {
	PoolID  string
	FeeTier int64 // parts per million: 500, 3000, 10000
}

func (PoolParams) isParams() {}

// VaultParams is the weighted-pool vault convention: a single-swap request
// against a vault pool id.
type VaultParams struct {
	PoolID string
}

func (VaultParams) isParams() {}

// StableParams is the stableswap convention: coin indexes within the pool.
type StableParams struct {
	PoolID   string
	IndexIn  int
	IndexOut int
}

func (StableParams) isParams() {}

// Hop is one leg of an arbitrage route: swap In for Out on the venue
// identified by VenueID, using the family convention selected by Kind.
type Hop struct {
	VenueID string
	Kind    Kind
	In      *asset.Asset
	Out     *asset.Asset
	Params  Params
}

// Validate checks the hop in isolation.
func (h Hop) Validate() error {
	if h.VenueID == "" {
		return fmt.Errorf("hop: empty venue id")
	}
	if !h.Kind.Valid() {
		return fmt.Errorf("hop: unknown venue kind %q", string(h.Kind))
	}
	if h.In == nil || h.Out == nil {
		return fmt.Errorf("hop: nil asset")
	}
	if h.In.ID().Equals(h.Out.ID()) {
		return fmt.Errorf("hop: in and out asset are the same (%s)", h.In.Symbol())
	}
	if err := h.validateParams(); err != nil {
		return err
	}
	return nil
}

func (h Hop) validateParams() error {
	switch h.Kind {
	case KindConstantProduct:
		if _, ok := h.Params.(PathParams); h.Params != nil && !ok {
			return fmt.Errorf("hop: %s requires path params", h.Kind)
		}
	case KindConcentratedLiquidity:
		p, ok := h.Params.(PoolParams)
		if !ok {
			return fmt.Errorf("hop: %s requires pool params", h.Kind)
		}
		switch p.FeeTier {
		case 500, 3000, 10000:
		default:
			return fmt.Errorf("hop: unsupported fee tier %d", p.FeeTier)
		}
	case KindWeightedVault:
		if _, ok := h.Params.(VaultParams); !ok {
			return fmt.Errorf("hop: %s requires vault params", h.Kind)
		}
	case KindStableSwap:
		p, ok := h.Params.(StableParams)
		if !ok {
			return fmt.Errorf("hop: %s requires stable params", h.Kind)
		}
		if p.IndexIn == p.IndexOut {
			return fmt.Errorf("hop: stableswap indexes must differ")
		}
	}
	return nil
}

// String returns a compact description, e.g. "uni-v2:WETH->USDC".
func (h Hop) String() string {
	return fmt.Sprintf("%s:%s->%s", h.VenueID, h.In.Symbol(), h.Out.Symbol())
}
