package app

import (
	"context"
	"io"
	"math/big"
	"testing"

	"github.com/rosegoldcruz/theatom-sub000/business/lending/infra/vault"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/config"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
	"github.com/rosegoldcruz/theatom-sub000/internal/treasury"
)

func wethAmount(t *testing.T, whole int64) asset.Amount {
	t.Helper()
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return asset.NewAmount(asset.WETH, new(big.Int).Mul(big.NewInt(whole), scale))
}

func testConfig() config.LendingConfig {
	return config.LendingConfig{
		FeeBps:     9,
		MaxLoanUSD: 10_000_000,
		PricesUSD:  map[string]float64{"WETH": 2000},
	}
}

func newTestGateway(t *testing.T) (*Gateway, *vault.Vault, *treasury.Account) {
	t.Helper()
	v := vault.New("test-vault")
	v.Seed(wethAmount(t, 1000))
	acct := treasury.NewAccount()
	gw := NewGateway(v, acct, testConfig(), logger.New(io.Discard, logger.LevelError, "test", nil))
	return gw, v, acct
}

func TestBorrowDrawsIntoAccount(t *testing.T) {
	gw, v, acct := newTestGateway(t)
	j := journal.New()

	principal := wethAmount(t, 10)
	ob, err := gw.Borrow(context.Background(), j, gw.CallbackToken(), principal)
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}

	if !ob.Open() {
		t.Error("obligation not open after borrow")
	}
	if !ob.Principal().Equals(principal) {
		t.Errorf("principal = %s, want %s", ob.Principal(), principal)
	}

	// 10e18 * 9 / 10000 = 9e15, exact, no rounding.
	wantFee := big.NewInt(9_000_000_000_000_000)
	if ob.Fee().Raw().Cmp(wantFee) != 0 {
		t.Errorf("fee = %s, want %s", ob.Fee().Raw(), wantFee)
	}
	wantOwed := new(big.Int).Add(principal.Raw(), wantFee)
	if ob.Owed().Raw().Cmp(wantOwed) != 0 {
		t.Errorf("owed = %s, want %s", ob.Owed().Raw(), wantOwed)
	}

	if bal := acct.Balance(asset.WETH); !bal.Equals(principal) {
		t.Errorf("account balance = %s, want %s", bal, principal)
	}
	if avail := v.Available(asset.WETH); !avail.Equals(wethAmount(t, 990)) {
		t.Errorf("vault available = %s, want 990 WETH", avail)
	}
}

func TestBorrowFeeRoundsUp(t *testing.T) {
	gw, _, _ := newTestGateway(t)

	// 9 bps on 1000 raw units is 0.9, which must round up so the lender
	// is never shorted.
	principal := asset.NewAmount(asset.WETH, big.NewInt(1000))
	ob, err := gw.Borrow(context.Background(), journal.New(), gw.CallbackToken(), principal)
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if ob.Fee().Raw().Cmp(big.NewInt(1)) != 0 {
		t.Errorf("fee = %s, want 1", ob.Fee().Raw())
	}
}

func TestBorrowRejections(t *testing.T) {
	tests := []struct {
		name      string
		token     func(*Gateway) string
		principal func(*testing.T) asset.Amount
		code      apperror.Code
	}{
		{
			name:      "wrong_callback_token",
			token:     func(*Gateway) string { return "not-the-token" },
			principal: func(t *testing.T) asset.Amount { return wethAmount(t, 10) },
			code:      apperror.CodeUnauthorizedCallback,
		},
		{
			name:  "zero_principal",
			token: (*Gateway).CallbackToken,
			principal: func(t *testing.T) asset.Amount {
				return asset.NewAmount(asset.WETH, big.NewInt(0))
			},
			code: apperror.CodeInvalidRequest,
		},
		{
			name:  "ceiling_exceeded",
			token: (*Gateway).CallbackToken,
			principal: func(t *testing.T) asset.Amount {
				// 10000 WETH at $2000 is $20M, over the $10M cap.
				return wethAmount(t, 10_000)
			},
			code: apperror.CodeLoanCeilingExceeded,
		},
		{
			name:  "no_usd_price_fails_closed",
			token: (*Gateway).CallbackToken,
			principal: func(t *testing.T) asset.Amount {
				return asset.NewAmount(asset.DAI, big.NewInt(1))
			},
			code: apperror.CodeLoanCeilingExceeded,
		},
		{
			name:  "source_dry",
			token: (*Gateway).CallbackToken,
			principal: func(t *testing.T) asset.Amount {
				// Under the USD cap but over the vault's 1000 WETH.
				return wethAmount(t, 4000)
			},
			code: apperror.CodeLoanUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, _, acct := newTestGateway(t)
			j := journal.New()
			_, err := gw.Borrow(context.Background(), j, tt.token(gw), tt.principal(t))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperror.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
			if j.Len() != 0 {
				t.Errorf("journal has %d entries after rejected borrow", j.Len())
			}
			if bal := acct.Balance(asset.WETH); !bal.IsZero() {
				t.Errorf("account balance = %s after rejected borrow, want zero", bal)
			}
		})
	}
}

func TestCeilingValuesPrincipalAcrossDecimals(t *testing.T) {
	v := vault.New("test-vault")
	v.Seed(asset.NewAmount(asset.USDC, big.NewInt(20_000_000_000_000))) // 20M USDC
	acct := treasury.NewAccount()
	gw := NewGateway(v, acct, config.LendingConfig{
		FeeBps:     9,
		MaxLoanUSD: 10_000_000,
		PricesUSD:  map[string]float64{"USDC": 1},
	}, logger.New(io.Discard, logger.LevelError, "test", nil))

	// 6-decimal principal valued through the 18-decimal price fixed point.
	over := asset.NewAmount(asset.USDC, big.NewInt(10_000_001_000_000))
	_, err := gw.Borrow(context.Background(), journal.New(), gw.CallbackToken(), over)
	if got := apperror.GetCode(err); got != apperror.CodeLoanCeilingExceeded {
		t.Errorf("code = %s, want %s", got, apperror.CodeLoanCeilingExceeded)
	}

	// Exactly at the cap is allowed.
	atCap := asset.NewAmount(asset.USDC, big.NewInt(10_000_000_000_000))
	if _, err := gw.Borrow(context.Background(), journal.New(), gw.CallbackToken(), atCap); err != nil {
		t.Errorf("Borrow at cap: %v", err)
	}
}

func TestRepaySettlesObligation(t *testing.T) {
	gw, v, acct := newTestGateway(t)
	j := journal.New()

	principal := wethAmount(t, 10)
	ob, err := gw.Borrow(context.Background(), j, gw.CallbackToken(), principal)
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}

	// Trades produced a surplus above what is owed.
	profit := asset.NewAmount(asset.WETH, big.NewInt(50_000_000_000_000_000))
	acct.Credit(j, profit)
	final := acct.Balance(asset.WETH)

	if err := gw.Repay(context.Background(), j, gw.CallbackToken(), ob, final); err != nil {
		t.Fatalf("Repay: %v", err)
	}

	if ob.Open() {
		t.Error("obligation still open after repay")
	}

	// Exactly owed leaves; the surplus minus the fee remains.
	wantBal := new(big.Int).Sub(final.Raw(), ob.Owed().Raw())
	if bal := acct.Balance(asset.WETH); bal.Raw().Cmp(wantBal) != 0 {
		t.Errorf("account balance = %s, want %s", bal.Raw(), wantBal)
	}

	// The vault ends up ahead by the fee.
	wantVault := new(big.Int).Add(wethAmount(t, 1000).Raw(), ob.Fee().Raw())
	if avail := v.Available(asset.WETH); avail.Raw().Cmp(wantVault) != 0 {
		t.Errorf("vault available = %s, want %s", avail.Raw(), wantVault)
	}
}

func TestRepayShortfall(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	j := journal.New()

	ob, err := gw.Borrow(context.Background(), j, gw.CallbackToken(), wethAmount(t, 10))
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}

	short := wethAmount(t, 10) // owed is 10 plus fee
	err = gw.Repay(context.Background(), j, gw.CallbackToken(), ob, short)
	if got := apperror.GetCode(err); got != apperror.CodeRepaymentShortfall {
		t.Errorf("code = %s, want %s", got, apperror.CodeRepaymentShortfall)
	}
	if !ob.Open() {
		t.Error("obligation closed despite shortfall")
	}
}

func TestRepayClosedObligation(t *testing.T) {
	gw, _, acct := newTestGateway(t)
	j := journal.New()

	ob, err := gw.Borrow(context.Background(), j, gw.CallbackToken(), wethAmount(t, 10))
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	acct.Credit(j, wethAmount(t, 1))
	if err := gw.Repay(context.Background(), j, gw.CallbackToken(), ob, acct.Balance(asset.WETH)); err != nil {
		t.Fatalf("Repay: %v", err)
	}

	err = gw.Repay(context.Background(), j, gw.CallbackToken(), ob, wethAmount(t, 20))
	if got := apperror.GetCode(err); got != apperror.CodeObligationClosed {
		t.Errorf("code = %s, want %s", got, apperror.CodeObligationClosed)
	}
}

func TestUnwindRestoresVaultAndAccount(t *testing.T) {
	gw, v, acct := newTestGateway(t)
	j := journal.New()

	if _, err := gw.Borrow(context.Background(), j, gw.CallbackToken(), wethAmount(t, 10)); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	j.Unwind()

	if avail := v.Available(asset.WETH); !avail.Equals(wethAmount(t, 1000)) {
		t.Errorf("vault available = %s after unwind, want 1000 WETH", avail)
	}
	if bal := acct.Balance(asset.WETH); !bal.IsZero() {
		t.Errorf("account balance = %s after unwind, want zero", bal)
	}
}
