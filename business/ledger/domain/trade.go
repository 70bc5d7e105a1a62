// Package domain contains the trade ledger's core types.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one immutable row in the trade ledger, appended exactly
// once per settlement attempt that created an obligation. Amounts are in
// human-readable units of the principal asset.
type TradeRecord struct {
	AttemptID       string          `json:"attempt_id"`
	Timestamp       time.Time       `json:"timestamp"`
	AssetSymbol     string          `json:"asset_symbol"`
	ChainID         uint64          `json:"chain_id"`
	Principal       decimal.Decimal `json:"principal"`
	Profit          decimal.Decimal `json:"profit"`
	ResourceCostUSD decimal.Decimal `json:"resource_cost_usd"`
	Route           string          `json:"route"`
	HopCount        int             `json:"hop_count"`
	Success         bool            `json:"success"`
	FailureCode     string          `json:"failure_code,omitempty"`
}

// Aggregates summarizes the ledger. NetProfit is keyed by asset symbol
// since profits in different assets do not add; RouteProfit is keyed by the
// route description so the operator can see which routes earn.
type Aggregates struct {
	Attempts    int64                      `json:"attempts"`
	Successes   int64                      `json:"successes"`
	Failures    int64                      `json:"failures"`
	NetProfit   map[string]decimal.Decimal `json:"net_profit"`
	RouteProfit map[string]decimal.Decimal `json:"route_profit"`
	ResourceUSD decimal.Decimal            `json:"resource_usd"`
	LastTradeAt time.Time                  `json:"last_trade_at"`
	WinRateBps  int64                      `json:"win_rate_bps"`
}

// Fold computes aggregates from scratch over a set of records. It is the
// source of truth the incrementally-maintained cache is reconciled against.
func Fold(records []TradeRecord) Aggregates {
	agg := Aggregates{
		NetProfit:   make(map[string]decimal.Decimal),
		RouteProfit: make(map[string]decimal.Decimal),
	}
	for _, r := range records {
		agg.apply(r)
	}
	return agg
}

func (a *Aggregates) apply(r TradeRecord) {
	a.Attempts++
	if r.Success {
		a.Successes++
		a.NetProfit[r.AssetSymbol] = a.NetProfit[r.AssetSymbol].Add(r.Profit)
		a.RouteProfit[r.Route] = a.RouteProfit[r.Route].Add(r.Profit)
	} else {
		a.Failures++
	}
	a.ResourceUSD = a.ResourceUSD.Add(r.ResourceCostUSD)
	if r.Timestamp.After(a.LastTradeAt) {
		a.LastTradeAt = r.Timestamp
	}
	if a.Attempts > 0 {
		a.WinRateBps = a.Successes * 10_000 / a.Attempts
	}
}

// Add folds one more record into the aggregates in place.
func (a *Aggregates) Add(r TradeRecord) {
	if a.NetProfit == nil {
		a.NetProfit = make(map[string]decimal.Decimal)
	}
	if a.RouteProfit == nil {
		a.RouteProfit = make(map[string]decimal.Decimal)
	}
	a.apply(r)
}

// Equal reports whether two aggregate snapshots agree.
func (a Aggregates) Equal(b Aggregates) bool {
	if a.Attempts != b.Attempts || a.Successes != b.Successes || a.Failures != b.Failures {
		return false
	}
	if !a.ResourceUSD.Equal(b.ResourceUSD) || !a.LastTradeAt.Equal(b.LastTradeAt) {
		return false
	}
	return profitMapsEqual(a.NetProfit, b.NetProfit) &&
		profitMapsEqual(a.RouteProfit, b.RouteProfit)
}

func profitMapsEqual(a, b map[string]decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for k, p := range a {
		if !p.Equal(b[k]) {
			return false
		}
	}
	return true
}
