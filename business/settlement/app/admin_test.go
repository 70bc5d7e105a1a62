package app

import (
	"context"
	"io"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rosegoldcruz/theatom-sub000/business/settlement/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
	"github.com/rosegoldcruz/theatom-sub000/internal/treasury"
)

const operatorToken = "test-operator-token"

func newTestAdmin(t *testing.T) (*Admin, *testEngine, *treasury.Account) {
	t.Helper()
	eng := newTestEngine(t, 1900, cheapOracle())
	acct := eng.acct
	admin := NewAdmin(eng.orch.runtime, eng.orch, acct, eng.ledger, operatorToken,
		logger.New(io.Discard, logger.LevelError, "test", nil))
	return admin, eng, acct
}

func TestAdminRejectsBadToken(t *testing.T) {
	admin, _, _ := newTestAdmin(t)
	ctx := context.Background()

	ops := []struct {
		name string
		call func() error
	}{
		{name: "pause", call: func() error { return admin.Pause(ctx, "wrong") }},
		{name: "unpause", call: func() error { return admin.Unpause(ctx, "wrong") }},
		{name: "update_limits", call: func() error {
			return admin.UpdateLimits(ctx, "wrong", 20, decimal.NewFromInt(60))
		}},
		{name: "withdraw", call: func() error {
			return admin.Withdraw(ctx, "wrong", oneWeth())
		}},
		{name: "stats", call: func() error {
			_, err := admin.Stats("wrong")
			return err
		}},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			err := op.call()
			if got := apperror.GetCode(err); got != apperror.CodeUnauthorized {
				t.Errorf("code = %s, want %s", got, apperror.CodeUnauthorized)
			}
		})
	}
}

func TestAdminPauseGatesSubmissions(t *testing.T) {
	admin, eng, _ := newTestAdmin(t)
	ctx := context.Background()

	if err := admin.Pause(ctx, operatorToken); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	_, err := eng.orch.Submit(ctx, domain.Request{Principal: oneWeth(), Route: arbRoute()})
	if got := apperror.GetCode(err); got != apperror.CodeEnginePaused {
		t.Errorf("code = %s, want %s", got, apperror.CodeEnginePaused)
	}

	if err := admin.Unpause(ctx, operatorToken); err != nil {
		t.Fatalf("Unpause: %v", err)
	}
	if _, err := eng.orch.Submit(ctx, domain.Request{Principal: oneWeth(), Route: arbRoute()}); err != nil {
		t.Fatalf("Submit after unpause: %v", err)
	}
}

func TestAdminUpdateLimits(t *testing.T) {
	admin, eng, _ := newTestAdmin(t)
	ctx := context.Background()

	// The test route nets ~340 bps; a 500 bps floor rejects it.
	if err := admin.UpdateLimits(ctx, operatorToken, 500, decimal.NewFromInt(50)); err != nil {
		t.Fatalf("UpdateLimits: %v", err)
	}
	_, err := eng.orch.Submit(ctx, domain.Request{Principal: oneWeth(), Route: arbRoute()})
	if got := apperror.GetCode(err); got != apperror.CodeProfitBelowThreshold {
		t.Errorf("code = %s, want %s", got, apperror.CodeProfitBelowThreshold)
	}

	err = admin.UpdateLimits(ctx, operatorToken, 0, decimal.NewFromInt(50))
	if got := apperror.GetCode(err); got != apperror.CodeInvalidInput {
		t.Errorf("code = %s, want %s", got, apperror.CodeInvalidInput)
	}
}

func TestAdminWithdraw(t *testing.T) {
	admin, eng, acct := newTestAdmin(t)
	ctx := context.Background()

	if _, err := eng.orch.Submit(ctx, domain.Request{Principal: oneWeth(), Route: arbRoute()}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	profit := acct.Balance(asset.WETH)
	if !profit.IsPositive() {
		t.Fatal("no profit to withdraw")
	}

	if err := admin.Withdraw(ctx, operatorToken, profit); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if bal := acct.Balance(asset.WETH); !bal.IsZero() {
		t.Errorf("balance after withdraw = %s, want zero", bal)
	}

	// Withdrawing more than the balance fails without moving funds.
	acct.Credit(journal.New(), oneWeth())
	over := asset.NewAmount(asset.WETH, new(big.Int).Add(oneWeth().Raw(), big.NewInt(1)))
	if err := admin.Withdraw(ctx, operatorToken, over); err == nil {
		t.Fatal("expected over-withdrawal to fail")
	}
	if bal := acct.Balance(asset.WETH); !bal.Equals(oneWeth()) {
		t.Errorf("balance after failed withdraw = %s, want 1 WETH", bal)
	}

	err := admin.Withdraw(ctx, operatorToken, asset.NewAmount(asset.WETH, big.NewInt(0)))
	if got := apperror.GetCode(err); got != apperror.CodeInvalidInput {
		t.Errorf("code = %s, want %s", got, apperror.CodeInvalidInput)
	}
}

func TestAdminStats(t *testing.T) {
	admin, eng, _ := newTestAdmin(t)
	ctx := context.Background()

	if _, err := eng.orch.Submit(ctx, domain.Request{Principal: oneWeth(), Route: arbRoute()}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	stats, err := admin.Stats(operatorToken)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Paused {
		t.Error("stats report paused engine")
	}
	if stats.MinProfitBps != 10 {
		t.Errorf("min profit = %d bps, want 10", stats.MinProfitBps)
	}
	if stats.Ledger.Attempts != 1 || stats.Ledger.Successes != 1 {
		t.Errorf("ledger stats = %d/%d, want 1/1", stats.Ledger.Attempts, stats.Ledger.Successes)
	}
}
