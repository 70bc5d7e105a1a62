// Package app contains the settlement orchestrator, the profitability gate,
// and the administrative surface.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	ledgerdomain "github.com/rosegoldcruz/theatom-sub000/business/ledger/domain"
	lendingdomain "github.com/rosegoldcruz/theatom-sub000/business/lending/domain"
	venuedomain "github.com/rosegoldcruz/theatom-sub000/business/venue/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
)

// LoanGateway is the lending context's borrow/repay surface.
type LoanGateway interface {
	Borrow(ctx context.Context, j *journal.Journal, callerToken string, principal asset.Amount) (*lendingdomain.Obligation, error)
	Repay(ctx context.Context, j *journal.Journal, callerToken string, ob *lendingdomain.Obligation, amount asset.Amount) error
}

// SwapRouter executes a validated route hop by hop.
type SwapRouter interface {
	ExecuteRoute(ctx context.Context, j *journal.Journal, principal asset.Amount, route venuedomain.Route) (asset.Amount, []venuedomain.Fill, error)
}

// TradeLedger records settlement outcomes and serves aggregates.
type TradeLedger interface {
	Record(ctx context.Context, record ledgerdomain.TradeRecord) error
	Aggregates() ledgerdomain.Aggregates
	RecentTrades(ctx context.Context, n int) ([]ledgerdomain.TradeRecord, error)
}

// OperatingAccount is the treasury surface the admin path needs.
type OperatingAccount interface {
	Balance(a *asset.Asset) asset.Amount
	Withdraw(amount asset.Amount) error
}

// ResourceOracle quotes the current USD price of one resource unit.
type ResourceOracle interface {
	UnitPriceUSD(ctx context.Context) (decimal.Decimal, error)
}
