package app

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
)

const bpsDenominator = 10_000

// Limits is the effective threshold set for one evaluation: the runtime
// configuration, optionally tightened by the request.
type Limits struct {
	// MinProfitBps is the profit floor in basis points of principal.
	MinProfitBps int64

	// MinProfitAbs is an optional absolute profit floor in the principal
	// asset. Zero means unset.
	MinProfitAbs asset.Amount

	// MaxResourceCostUSD is the resource cost ceiling. Negative or zero
	// with no meaning here; config validation keeps it non-negative.
	MaxResourceCostUSD decimal.Decimal
}

// Evaluate is the single profitability decision for an attempt. It is pure:
// given the borrowed principal, the total owed back, the amount the route
// realized, and the attempt's resource cost, it either returns the profit or
// rejects the attempt. profit = finalAmount - owed; the basis-point ratio
// truncates toward zero, so a profit one raw unit short of the threshold
// rejects.
func Evaluate(principal, owed, finalAmount asset.Amount, resourceCostUSD decimal.Decimal, limits Limits) (asset.Amount, error) {
	if !principal.IsPositive() {
		return asset.Amount{}, apperror.Validation(apperror.CodeInvalidRequest, "principal must be positive")
	}

	exceeded, err := finalAmount.GreaterThan(owed)
	if err != nil {
		return asset.Amount{}, apperror.Validation(apperror.CodeInvalidRequest, "evaluation asset mismatch")
	}
	if !exceeded {
		gross := owed.MustSub(minAmount(owed, finalAmount))
		return asset.Amount{}, apperror.New(apperror.CodeNoArbitrage,
			apperror.WithContext(fmt.Sprintf("route returned %s against %s owed (short %s)",
				finalAmount, owed, gross)))
	}
	profit := finalAmount.MustSub(owed)

	bps := new(big.Int).Mul(profit.Raw(), big.NewInt(bpsDenominator))
	bps.Quo(bps, principal.Raw())
	if bps.Cmp(big.NewInt(limits.MinProfitBps)) < 0 {
		return asset.Amount{}, apperror.New(apperror.CodeProfitBelowThreshold,
			apperror.WithContext(fmt.Sprintf("profit %s bps of principal, floor %d bps", bps, limits.MinProfitBps)))
	}

	if !limits.MinProfitAbs.IsZero() {
		covered, err := profit.GreaterThanOrEqual(limits.MinProfitAbs)
		if err != nil {
			return asset.Amount{}, apperror.Validation(apperror.CodeInvalidRequest, "min profit asset mismatch")
		}
		if !covered {
			return asset.Amount{}, apperror.New(apperror.CodeProfitBelowThreshold,
				apperror.WithContext(fmt.Sprintf("profit %s below requested floor %s", profit, limits.MinProfitAbs)))
		}
	}

	if resourceCostUSD.GreaterThan(limits.MaxResourceCostUSD) {
		return asset.Amount{}, apperror.New(apperror.CodeResourceCostExceeded,
			apperror.WithContext(fmt.Sprintf("resource cost $%s exceeds ceiling $%s",
				resourceCostUSD.StringFixed(4), limits.MaxResourceCostUSD.StringFixed(4))))
	}

	return profit, nil
}

func minAmount(a, b asset.Amount) asset.Amount {
	less, err := b.LessThan(a)
	if err == nil && less {
		return b
	}
	return a
}
