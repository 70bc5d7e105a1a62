// Package domain contains the lending context's core types.
package domain

import (
	"math/big"

	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
)

const bpsDenominator = 10_000

// Obligation is the debt created by one flash-loan draw. It exists only for
// the duration of a settlement attempt: created at borrow, consumed by a
// successful repayment. An obligation that is never repaid means the whole
// attempt failed and every balance change is unwound.
type Obligation struct {
	id        string
	principal asset.Amount
	fee       asset.Amount
	owed      asset.Amount
	source    string
	open      bool
}

// NewObligation computes the fee from the principal and fee rate and returns
// an open obligation. The fee rounds up so the lender is never shorted by
// integer truncation.
func NewObligation(id string, principal asset.Amount, feeBps int64, source string) *Obligation {
	feeRaw := new(big.Int).Mul(principal.Raw(), big.NewInt(feeBps))
	feeRaw.Add(feeRaw, big.NewInt(bpsDenominator-1))
	feeRaw.Div(feeRaw, big.NewInt(bpsDenominator))

	fee := asset.NewAmount(principal.Asset(), feeRaw)

	return &Obligation{
		id:        id,
		principal: principal,
		fee:       fee,
		owed:      principal.MustAdd(fee),
		source:    source,
		open:      true,
	}
}

// ID returns the obligation identifier.
func (o *Obligation) ID() string { return o.id }

// Principal returns the borrowed amount.
func (o *Obligation) Principal() asset.Amount { return o.principal }

// Fee returns the loan fee.
func (o *Obligation) Fee() asset.Amount { return o.fee }

// Owed returns principal plus fee.
func (o *Obligation) Owed() asset.Amount { return o.owed }

// Source names the liquidity source repayment must be routed to.
func (o *Obligation) Source() string { return o.source }

// Open reports whether the obligation is still outstanding.
func (o *Obligation) Open() bool { return o.open }

// Close marks the obligation repaid. Closing twice is a gateway bug.
func (o *Obligation) Close() error {
	if !o.open {
		return apperror.New(apperror.CodeObligationClosed,
			apperror.WithContext("obligation "+o.id))
	}
	o.open = false
	return nil
}
