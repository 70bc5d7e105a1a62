// Package app contains application services and port definitions for the lending context.
package app

import (
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
)

// Source is a flash-loan liquidity pool. Draw and Restore must journal their
// balance mutations so an unwound attempt leaves the source untouched.
type Source interface {
	// Name identifies the source on obligations for repayment routing.
	Name() string

	// Available returns the drawable balance for the asset.
	Available(a *asset.Asset) asset.Amount

	// Draw removes amount from the source. Fails with LOAN_UNAVAILABLE
	// when the balance cannot cover it.
	Draw(j *journal.Journal, amount asset.Amount) error

	// Restore returns amount to the source.
	Restore(j *journal.Journal, amount asset.Amount)
}

// OperatingAccount is the custodian the borrowed principal lands in and
// repayment is debited from.
type OperatingAccount interface {
	Credit(j *journal.Journal, amount asset.Amount)
	Debit(j *journal.Journal, amount asset.Amount) error
}
