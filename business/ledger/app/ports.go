// Package app contains application services and port definitions for the ledger context.
package app

import (
	"context"

	"github.com/rosegoldcruz/theatom-sub000/business/ledger/domain"
)

// Store is the append-only trade record store. Records are never updated
// or deleted once appended.
type Store interface {
	// Append persists one record. Appending the same attempt id twice is
	// rejected with LEDGER_STORE_ERROR.
	Append(ctx context.Context, record domain.TradeRecord) error

	// Recent returns up to n records in reverse chronological order.
	// n <= 0 returns no records.
	Recent(ctx context.Context, n int) ([]domain.TradeRecord, error)

	// All returns every record, oldest first. Used for reconciliation.
	All(ctx context.Context) ([]domain.TradeRecord, error)

	// Close releases store resources.
	Close() error
}

// Publisher pushes appended records to live subscribers. Delivery is
// best-effort; the ledger append must not fail because a subscriber is slow.
type Publisher interface {
	Publish(ctx context.Context, record domain.TradeRecord)
}
