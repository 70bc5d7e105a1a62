// Package amm provides in-process venue implementations for the four DEX
// families. Pools hold reserves, execute swaps with the family's own curve
// math, and journal every reserve mutation so a failed settlement attempt
// restores them exactly.
package amm

import (
	"fmt"
	"math/big"

	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
)

// Resource units charged per swap, by venue family. Calibrated to typical
// mainnet gas usage for the corresponding protocol call.
const (
	UnitsConstantProduct = 105_000
	UnitsConcentrated    = 130_000
	UnitsWeighted        = 140_000
	UnitsStableSwap      = 115_000
)

const bpsDenominator = 10_000

var bigBpsDenominator = big.NewInt(bpsDenominator)

// pairKey identifies an unordered asset pair.
type pairKey struct {
	lo, hi asset.AssetID
}

func newPairKey(a, b *asset.Asset) pairKey {
	ai, bi := a.ID(), b.ID()
	if ai.String() <= bi.String() {
		return pairKey{lo: ai, hi: bi}
	}
	return pairKey{lo: bi, hi: ai}
}

func errInsufficientLiquidity(pool string) error {
	return apperror.New(apperror.CodeInsufficientLiquidity,
		apperror.WithContext(fmt.Sprintf("pool %s", pool)))
}

func errZeroInput(pool string) error {
	return apperror.New(apperror.CodeInvalidInput,
		apperror.WithContext(fmt.Sprintf("zero input to pool %s", pool)))
}
