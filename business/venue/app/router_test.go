package app

import (
	"context"
	"io"
	"math/big"
	"testing"

	"github.com/rosegoldcruz/theatom-sub000/business/venue/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
	"github.com/rosegoldcruz/theatom-sub000/internal/treasury"
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func weth(raw int64) asset.Amount {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return asset.NewAmount(asset.WETH, new(big.Int).Mul(big.NewInt(raw), scale))
}

// fakeAdapter fills every hop at a fixed output multiplier in per-mille, or
// fails with the configured error.
type fakeAdapter struct {
	kind     domain.Kind
	outMille int64
	units    uint64
	err      error
	failAt   int // hop count at which err fires, -1 for never
	calls    int
}

func (f *fakeAdapter) Kind() domain.Kind { return f.kind }

func (f *fakeAdapter) Swap(_ context.Context, j *journal.Journal, in asset.Amount, hop domain.Hop) (asset.Amount, uint64, error) {
	call := f.calls
	f.calls++
	if f.err != nil && call == f.failAt {
		return asset.Amount{}, 0, f.err
	}

	raw := new(big.Int).Mul(in.Raw(), big.NewInt(f.outMille))
	raw.Div(raw, big.NewInt(1000))
	j.Record("fake swap", func() {})
	return asset.NewAmount(hop.Out, raw), f.units, nil
}

func cpHop(in, out *asset.Asset) domain.Hop {
	return domain.Hop{VenueID: "fake-cp", Kind: domain.KindConstantProduct, In: in, Out: out}
}

func clHop(in, out *asset.Asset) domain.Hop {
	return domain.Hop{
		VenueID: "fake-cl",
		Kind:    domain.KindConcentratedLiquidity,
		In:      in,
		Out:     out,
		Params:  domain.PoolParams{PoolID: "p", FeeTier: 3000},
	}
}

func fundedAccount(t *testing.T, amount asset.Amount) *treasury.Account {
	t.Helper()
	acct := treasury.NewAccount()
	acct.Credit(journal.New(), amount)
	return acct
}

func TestExecuteRouteHopOrdering(t *testing.T) {
	cp := &fakeAdapter{kind: domain.KindConstantProduct, outMille: 1010, units: 100, failAt: -1}
	cl := &fakeAdapter{kind: domain.KindConcentratedLiquidity, outMille: 1020, units: 130, failAt: -1}

	principal := weth(10)
	acct := fundedAccount(t, principal)
	router := NewRouter([]Adapter{cp, cl}, acct, testLogger())

	route := domain.Route{
		cpHop(asset.WETH, asset.DAI),
		clHop(asset.DAI, asset.WETH),
	}

	j := journal.New()
	final, fills, err := router.ExecuteRoute(context.Background(), j, principal, route)
	if err != nil {
		t.Fatalf("ExecuteRoute: %v", err)
	}

	if final.Asset() != asset.WETH {
		t.Errorf("final asset = %s, want WETH", final.Asset().Symbol())
	}
	// 10 * 1.010 * 1.020 = 10.302 WETH.
	want := new(big.Int).Mul(big.NewInt(10302), new(big.Int).Exp(big.NewInt(10), big.NewInt(15), nil))
	if final.Raw().Cmp(want) != 0 {
		t.Errorf("final = %s, want %s", final.Raw(), want)
	}

	if len(fills) != 2 {
		t.Fatalf("fills = %d, want 2", len(fills))
	}
	for i, f := range fills {
		if f.HopIndex != i {
			t.Errorf("fill %d has HopIndex %d", i, f.HopIndex)
		}
	}
	if !fills[1].In.Equals(fills[0].Out) {
		t.Errorf("hop 1 input %s != hop 0 output %s", fills[1].In, fills[0].Out)
	}
	if got := TotalResourceUnits(fills); got != 230 {
		t.Errorf("TotalResourceUnits = %d, want 230", got)
	}

	// Final amount sits in the operating account.
	if bal := acct.Balance(asset.WETH); bal.Raw().Cmp(want) != 0 {
		t.Errorf("account WETH balance = %s, want %s", bal.Raw(), want)
	}
}

func TestExecuteRouteMidRouteFailure(t *testing.T) {
	cp := &fakeAdapter{kind: domain.KindConstantProduct, outMille: 1010, units: 100, failAt: -1}
	cl := &fakeAdapter{
		kind:   domain.KindConcentratedLiquidity,
		err:    apperror.New(apperror.CodeInsufficientLiquidity),
		failAt: 0,
	}

	principal := weth(10)
	acct := fundedAccount(t, principal)
	router := NewRouter([]Adapter{cp, cl}, acct, testLogger())

	route := domain.Route{
		cpHop(asset.WETH, asset.DAI),
		clHop(asset.DAI, asset.WETH),
	}

	j := journal.New()
	_, fills, err := router.ExecuteRoute(context.Background(), j, principal, route)
	if err == nil {
		t.Fatal("expected error")
	}

	// The venue's own code survives the wrap and the failing hop is named.
	if got := apperror.GetCode(err); got != apperror.CodeInsufficientLiquidity {
		t.Errorf("code = %s, want %s", got, apperror.CodeInsufficientLiquidity)
	}
	if got := apperror.GetHopIndex(err); got != 1 {
		t.Errorf("hop index = %d, want 1", got)
	}
	if len(fills) != 1 {
		t.Errorf("fills = %d, want 1 (first hop filled)", len(fills))
	}

	// The journal still holds the first hop's movements for the caller to
	// unwind.
	if j.Len() == 0 {
		t.Error("journal empty after partial route")
	}
	j.Unwind()
	if bal := acct.Balance(asset.WETH); bal.Raw().Cmp(principal.Raw()) != 0 {
		t.Errorf("WETH balance after unwind = %s, want %s", bal.Raw(), principal.Raw())
	}
}

func TestExecuteRouteMissingAdapter(t *testing.T) {
	cp := &fakeAdapter{kind: domain.KindConstantProduct, outMille: 1010, units: 100, failAt: -1}
	acct := fundedAccount(t, weth(10))
	router := NewRouter([]Adapter{cp}, acct, testLogger())

	route := domain.Route{
		cpHop(asset.WETH, asset.DAI),
		clHop(asset.DAI, asset.WETH),
	}

	_, _, err := router.ExecuteRoute(context.Background(), journal.New(), weth(10), route)
	if got := apperror.GetCode(err); got != apperror.CodeVenueNotFound {
		t.Errorf("code = %s, want %s", got, apperror.CodeVenueNotFound)
	}
	if got := apperror.GetHopIndex(err); got != 1 {
		t.Errorf("hop index = %d, want 1", got)
	}
}

func TestExecuteRouteInsufficientFunds(t *testing.T) {
	cp := &fakeAdapter{kind: domain.KindConstantProduct, outMille: 1010, units: 100, failAt: -1}
	acct := treasury.NewAccount() // empty
	router := NewRouter([]Adapter{cp}, acct, testLogger())

	route := domain.Route{
		cpHop(asset.WETH, asset.DAI),
		cpHop(asset.DAI, asset.WETH),
	}

	_, _, err := router.ExecuteRoute(context.Background(), journal.New(), weth(10), route)
	if got := apperror.GetCode(err); got != apperror.CodeSwapFailed {
		t.Errorf("code = %s, want %s", got, apperror.CodeSwapFailed)
	}
	if got := apperror.GetHopIndex(err); got != 0 {
		t.Errorf("hop index = %d, want 0", got)
	}
}

func TestExecuteRouteRejectsInvalidRoute(t *testing.T) {
	acct := fundedAccount(t, weth(10))
	router := NewRouter(nil, acct, testLogger())

	// Route never returns to the principal asset.
	route := domain.Route{cpHop(asset.WETH, asset.DAI)}

	_, fills, err := router.ExecuteRoute(context.Background(), journal.New(), weth(10), route)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := apperror.GetCode(err); got != apperror.CodeRouteMismatch {
		t.Errorf("code = %s, want %s", got, apperror.CodeRouteMismatch)
	}
	if fills != nil {
		t.Errorf("fills = %v, want nil before execution starts", fills)
	}
}
