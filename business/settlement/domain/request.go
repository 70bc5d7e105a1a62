// Package domain contains the settlement context's core types: the
// arbitrage request, the attempt state machine, and the runtime limits.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	venuedomain "github.com/rosegoldcruz/theatom-sub000/business/venue/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
)

// Request is a caller-supplied arbitrage intent. It is immutable once
// submitted and lives only for the duration of one settlement attempt.
type Request struct {
	// Principal is the asset and amount to borrow.
	Principal asset.Amount

	// Route is the ordered hop sequence. It must start and end in the
	// principal asset.
	Route venuedomain.Route

	// MinProfit optionally tightens the configured basis-point threshold
	// with an absolute floor in the principal asset. Zero means unset.
	MinProfit asset.Amount

	// MaxResourceCostUSD optionally tightens the configured resource
	// cost ceiling. Zero means unset.
	MaxResourceCostUSD decimal.Decimal

	// Deadline is the submission expiry. An attempt is rejected, before
	// any state change, once the deadline has passed.
	Deadline time.Time
}

// Validate rejects a malformed request before any state changes. The route
// invariant (continuity and principal round-trip) is checked here, never
// assumed downstream.
func (r Request) Validate(now time.Time) error {
	if !r.Principal.IsPositive() {
		return apperror.Validation(apperror.CodeInvalidRequest, "principal must be positive")
	}
	if !r.Deadline.IsZero() && now.After(r.Deadline) {
		return apperror.New(apperror.CodeDeadlineExpired,
			apperror.WithContext("deadline "+r.Deadline.UTC().Format(time.RFC3339)))
	}
	if !r.MinProfit.IsZero() && !r.MinProfit.Asset().ID().Equals(r.Principal.Asset().ID()) {
		return apperror.Validation(apperror.CodeInvalidRequest, "min profit must be in the principal asset")
	}
	if r.MaxResourceCostUSD.IsNegative() {
		return apperror.Validation(apperror.CodeInvalidRequest, "max resource cost cannot be negative")
	}
	return r.Route.Validate(r.Principal.Asset())
}
