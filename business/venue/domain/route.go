package domain

import (
	"strings"

	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
)

// Route is an ordered sequence of hops. Output of hop i feeds hop i+1, and
// the route must begin and end in the principal asset so the borrowed
// principal can be repaid in kind.
type Route []Hop

// Validate enforces the route invariant before any hop executes:
// non-empty, per-hop validity, asset continuity between consecutive hops,
// and first-in == principal == last-out.
func (r Route) Validate(principal *asset.Asset) error {
	if len(r) == 0 {
		return apperror.Validation(apperror.CodeInvalidRequest, "route has no hops")
	}
	if principal == nil {
		return apperror.Validation(apperror.CodeInvalidRequest, "nil principal asset")
	}

	for i, hop := range r {
		if err := hop.Validate(); err != nil {
			return apperror.New(apperror.CodeInvalidRequest,
				apperror.WithContext(err.Error()),
				apperror.WithHopIndex(i))
		}
		if i > 0 && !r[i-1].Out.ID().Equals(hop.In.ID()) {
			return apperror.New(apperror.CodeInvalidRequest,
				apperror.WithContext("hop input does not match previous hop output"),
				apperror.WithHopIndex(i))
		}
	}

	if !r[0].In.ID().Equals(principal.ID()) {
		return apperror.Validation(apperror.CodeRouteMismatch,
			"first hop does not start from the principal asset")
	}
	if !r[len(r)-1].Out.ID().Equals(principal.ID()) {
		return apperror.Validation(apperror.CodeRouteMismatch,
			"last hop does not return to the principal asset")
	}

	return nil
}

// Describe returns a stable route key, e.g. "uni-v2:WETH->USDC | crv:USDC->WETH".
// The trade ledger groups profit by this key.
func (r Route) Describe() string {
	parts := make([]string, len(r))
	for i, h := range r {
		parts[i] = h.String()
	}
	return strings.Join(parts, " | ")
}
