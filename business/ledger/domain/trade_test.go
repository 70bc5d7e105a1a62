package domain

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func record(id string, success bool, profit string, at time.Time) TradeRecord {
	return TradeRecord{
		AttemptID:       id,
		Timestamp:       at,
		AssetSymbol:     "WETH",
		ChainID:         1,
		Principal:       decimal.NewFromInt(10),
		Profit:          decimal.RequireFromString(profit),
		ResourceCostUSD: decimal.RequireFromString("3.85"),
		Route:           "univ2:WETH->USDC | univ3:USDC->WETH",
		HopCount:        2,
		Success:         success,
	}
}

func routed(id string, success bool, profit, route string, at time.Time) TradeRecord {
	r := record(id, success, profit, at)
	r.Route = route
	return r
}

func TestFoldAggregates(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	curveRoute := "curve:WETH->DAI | balancer:DAI->WETH"
	records := []TradeRecord{
		record("a-1", true, "0.05", t0),
		record("a-2", false, "0", t0.Add(time.Minute)),
		routed("a-3", true, "0.03", curveRoute, t0.Add(2*time.Minute)),
	}

	agg := Fold(records)

	if agg.Attempts != 3 || agg.Successes != 2 || agg.Failures != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", agg.Attempts, agg.Successes, agg.Failures)
	}
	if want := decimal.RequireFromString("0.08"); !agg.NetProfit["WETH"].Equal(want) {
		t.Errorf("net profit = %s, want %s", agg.NetProfit["WETH"], want)
	}
	if len(agg.RouteProfit) != 2 {
		t.Errorf("route profit has %d routes, want 2", len(agg.RouteProfit))
	}
	if want := decimal.RequireFromString("0.05"); !agg.RouteProfit["univ2:WETH->USDC | univ3:USDC->WETH"].Equal(want) {
		t.Errorf("univ2 route profit = %s, want %s", agg.RouteProfit["univ2:WETH->USDC | univ3:USDC->WETH"], want)
	}
	if want := decimal.RequireFromString("0.03"); !agg.RouteProfit[curveRoute].Equal(want) {
		t.Errorf("curve route profit = %s, want %s", agg.RouteProfit[curveRoute], want)
	}
	if want := decimal.RequireFromString("11.55"); !agg.ResourceUSD.Equal(want) {
		t.Errorf("resource usd = %s, want %s", agg.ResourceUSD, want)
	}
	if !agg.LastTradeAt.Equal(t0.Add(2 * time.Minute)) {
		t.Errorf("last trade at = %s", agg.LastTradeAt)
	}
	// 2 of 3 is 6666 bps after truncation.
	if agg.WinRateBps != 6666 {
		t.Errorf("win rate = %d bps, want 6666", agg.WinRateBps)
	}
}

func TestFoldKeepsFailedRoutesOutOfProfit(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	agg := Fold([]TradeRecord{
		routed("a-1", false, "0", "curve:WETH->DAI | balancer:DAI->WETH", t0),
	})

	if len(agg.RouteProfit) != 0 {
		t.Errorf("route profit = %v for a failed attempt, want empty", agg.RouteProfit)
	}
}

func TestIncrementalAddMatchesFold(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assets := []string{"WETH", "USDC", "DAI"}
	routes := []string{
		"univ2:WETH->USDC | univ3:USDC->WETH",
		"curve:WETH->DAI | balancer:DAI->WETH",
		"univ3:USDC->DAI | univ2:DAI->USDC",
	}

	for trial := 0; trial < 100; trial++ {
		n := rng.Intn(50)
		records := make([]TradeRecord, 0, n)
		var incremental Aggregates

		for i := 0; i < n; i++ {
			r := TradeRecord{
				AttemptID:       fmt.Sprintf("a-%d-%d", trial, i),
				Timestamp:       t0.Add(time.Duration(rng.Intn(86_400)) * time.Second),
				AssetSymbol:     assets[rng.Intn(len(assets))],
				ChainID:         1,
				Principal:       decimal.NewFromInt(int64(1 + rng.Intn(100))),
				Profit:          decimal.New(int64(rng.Intn(1_000_000)), -6),
				ResourceCostUSD: decimal.New(int64(rng.Intn(10_000)), -2),
				Route:           routes[rng.Intn(len(routes))],
				HopCount:        2 + rng.Intn(3),
				Success:         rng.Intn(2) == 0,
			}
			if !r.Success {
				r.Profit = decimal.Zero
				r.FailureCode = "NO_ARBITRAGE"
			}
			records = append(records, r)
			incremental.Add(r)
		}

		if folded := Fold(records); !incremental.Equal(folded) {
			t.Fatalf("trial %d (%d records): incremental = %+v, fold = %+v",
				trial, n, incremental, folded)
		}
	}
}

func TestAggregatesEqual(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := Fold([]TradeRecord{record("a-1", true, "0.05", t0)})

	same := Fold([]TradeRecord{record("a-1", true, "0.05", t0)})
	if !base.Equal(same) {
		t.Error("identical aggregates not equal")
	}

	diverged := Fold([]TradeRecord{record("a-1", true, "0.06", t0)})
	if base.Equal(diverged) {
		t.Error("diverged profit reported equal")
	}

	otherRoute := Fold([]TradeRecord{
		routed("a-1", true, "0.05", "curve:WETH->DAI | balancer:DAI->WETH", t0),
	})
	if base.Equal(otherRoute) {
		t.Error("same profit on a different route reported equal")
	}

	extra := Fold([]TradeRecord{
		record("a-1", true, "0.05", t0),
		record("a-2", false, "0", t0),
	})
	if base.Equal(extra) {
		t.Error("different attempt counts reported equal")
	}
}

func TestFoldEmpty(t *testing.T) {
	agg := Fold(nil)
	if agg.Attempts != 0 || agg.WinRateBps != 0 {
		t.Errorf("empty fold = %+v", agg)
	}
	if agg.NetProfit == nil {
		t.Error("NetProfit map not initialized")
	}
	if agg.RouteProfit == nil {
		t.Error("RouteProfit map not initialized")
	}
}
