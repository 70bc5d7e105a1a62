package treasury

import (
	"math/big"
	"testing"

	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
)

func testAssets() (*asset.Asset, *asset.Asset) {
	reg := asset.DefaultRegistry()
	weth, _ := reg.GetBySymbolAndChain("WETH", 1)
	usdc, _ := reg.GetBySymbolAndChain("USDC", 1)
	return weth, usdc
}

func amt(t *testing.T, a *asset.Asset, s string) asset.Amount {
	t.Helper()
	v, err := asset.ParseString(a, s)
	if err != nil {
		t.Fatalf("parse %s %s: %v", s, a.Symbol(), err)
	}
	return v
}

func TestAccount_CreditDebit(t *testing.T) {
	weth, _ := testAssets()
	acc := NewAccount()
	j := journal.New()

	acc.Credit(j, amt(t, weth, "5"))
	if err := acc.Debit(j, amt(t, weth, "2")); err != nil {
		t.Fatalf("debit: %v", err)
	}

	if got := acc.Balance(weth); !got.Equals(amt(t, weth, "3")) {
		t.Errorf("balance = %s, want 3", got)
	}
}

func TestAccount_DebitInsufficient(t *testing.T) {
	weth, _ := testAssets()
	acc := NewAccount()
	j := journal.New()

	acc.Seed(amt(t, weth, "1"))
	err := acc.Debit(j, amt(t, weth, "2"))
	if apperror.GetCode(err) != apperror.CodeInsufficientBalance {
		t.Errorf("code = %s, want INSUFFICIENT_BALANCE", apperror.GetCode(err))
	}
	if got := acc.Balance(weth); !got.Equals(amt(t, weth, "1")) {
		t.Errorf("failed debit moved funds: balance = %s", got)
	}
}

func TestAccount_UnwindRestoresBalances(t *testing.T) {
	weth, usdc := testAssets()
	acc := NewAccount()
	acc.Seed(amt(t, weth, "10"))
	acc.Seed(amt(t, usdc, "1000"))

	before := acc.Snapshot()

	j := journal.New()
	if err := acc.Debit(j, amt(t, weth, "4")); err != nil {
		t.Fatalf("debit: %v", err)
	}
	acc.Credit(j, amt(t, usdc, "250"))
	acc.Credit(j, amt(t, weth, "1"))

	j.Unwind()

	if !Equal(before, acc.Snapshot()) {
		t.Errorf("balances after unwind differ from pre-attempt snapshot")
	}
}

func TestAccount_Withdraw(t *testing.T) {
	weth, _ := testAssets()
	acc := NewAccount()
	acc.Seed(amt(t, weth, "3"))

	if err := acc.Withdraw(amt(t, weth, "2")); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := acc.Balance(weth); !got.Equals(amt(t, weth, "1")) {
		t.Errorf("balance = %s, want 1", got)
	}

	err := acc.Withdraw(amt(t, weth, "5"))
	if apperror.GetCode(err) != apperror.CodeInsufficientBalance {
		t.Errorf("over-withdraw code = %s, want INSUFFICIENT_BALANCE", apperror.GetCode(err))
	}
}

func TestEqual_ZeroVersusMissing(t *testing.T) {
	weth, _ := testAssets()

	a := map[asset.AssetID]*big.Int{weth.ID(): big.NewInt(0)}
	b := map[asset.AssetID]*big.Int{}

	if !Equal(a, b) {
		t.Error("zero balance should equal missing entry")
	}

	a[weth.ID()] = big.NewInt(7)
	if Equal(a, b) {
		t.Error("non-zero balance should not equal missing entry")
	}
}
