package domain

import (
	"testing"

	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
)

func hop(venueID string, kind Kind, in, out *asset.Asset, params Params) Hop {
	return Hop{VenueID: venueID, Kind: kind, In: in, Out: out, Params: params}
}

func TestRoute_Validate(t *testing.T) {
	weth := asset.WETH
	usdc := asset.USDC
	dai := asset.DAI

	tests := []struct {
		name     string
		route    Route
		wantCode apperror.Code
	}{
		{
			name: "valid_round_trip",
			route: Route{
				hop("uni-v2", KindConstantProduct, weth, usdc, PathParams{}),
				hop("crv", KindStableSwap, usdc, weth, StableParams{PoolID: "3pool", IndexIn: 0, IndexOut: 1}),
			},
		},
		{
			name:     "empty_route",
			route:    Route{},
			wantCode: apperror.CodeInvalidRequest,
		},
		{
			name: "broken_continuity",
			route: Route{
				hop("uni-v2", KindConstantProduct, weth, usdc, PathParams{}),
				hop("bal", KindWeightedVault, dai, weth, VaultParams{PoolID: "b-80-20"}),
			},
			wantCode: apperror.CodeInvalidRequest,
		},
		{
			name: "does_not_start_from_principal",
			route: Route{
				hop("uni-v2", KindConstantProduct, usdc, weth, PathParams{}),
				hop("uni-v2", KindConstantProduct, weth, usdc, PathParams{}),
			},
			wantCode: apperror.CodeRouteMismatch,
		},
		{
			name: "does_not_return_to_principal",
			route: Route{
				hop("uni-v2", KindConstantProduct, weth, usdc, PathParams{}),
				hop("uni-v2", KindConstantProduct, usdc, dai, PathParams{}),
			},
			wantCode: apperror.CodeRouteMismatch,
		},
		{
			name: "bad_fee_tier",
			route: Route{
				hop("uni-v3", KindConcentratedLiquidity, weth, usdc, PoolParams{PoolID: "p", FeeTier: 1234}),
				hop("uni-v2", KindConstantProduct, usdc, weth, PathParams{}),
			},
			wantCode: apperror.CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.route.Validate(weth)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if got := apperror.GetCode(err); got != tt.wantCode {
				t.Errorf("Validate() code = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestRoute_ValidateReportsHopIndex(t *testing.T) {
	weth := asset.WETH
	usdc := asset.USDC
	dai := asset.DAI

	route := Route{
		hop("uni-v2", KindConstantProduct, weth, usdc, PathParams{}),
		hop("bal", KindWeightedVault, dai, weth, VaultParams{PoolID: "b"}),
	}

	err := route.Validate(weth)
	if got := apperror.GetHopIndex(err); got != 1 {
		t.Errorf("hop index = %d, want 1", got)
	}
}

func TestRoute_Describe(t *testing.T) {
	weth := asset.WETH
	usdc := asset.USDC

	route := Route{
		hop("uni-v2", KindConstantProduct, weth, usdc, PathParams{}),
		hop("crv", KindStableSwap, usdc, weth, StableParams{PoolID: "3pool", IndexOut: 1}),
	}

	key := route.Describe()
	if key == "" {
		t.Fatal("empty route key")
	}
	if key != route.Describe() {
		t.Error("route key is not stable")
	}
}
