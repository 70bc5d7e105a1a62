// Package app contains application services and port definitions for the venue context.
package app

import (
	"context"

	"github.com/rosegoldcruz/theatom-sub000/business/venue/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
)

// Adapter translates a generic hop into one venue family's calling
// convention. An adapter returns the amount actually received, never a
// quote; it holds no opinion about profitability and applies no minimum
// output of its own (the profitability check is single-sourced downstream).
type Adapter interface {
	// Kind returns the venue family this adapter serves.
	Kind() domain.Kind

	// Swap executes the hop with the given input amount. Every pool
	// mutation must record its inverse in j before applying. Returns the
	// realized output amount and the resource units consumed.
	Swap(ctx context.Context, j *journal.Journal, in asset.Amount, hop domain.Hop) (asset.Amount, uint64, error)
}

// OperatingAccount is the custodian of funds between hops. Implemented by
// the treasury account; every movement is journaled.
type OperatingAccount interface {
	Credit(j *journal.Journal, amount asset.Amount)
	Debit(j *journal.Journal, amount asset.Amount) error
}
