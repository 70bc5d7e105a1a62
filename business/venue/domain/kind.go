// Package domain contains the core domain types for the venue context.
package domain

// Kind identifies a DEX venue family. Each family has its own quoting and
// execution convention; adapters translate between the generic hop shape and
// the family-specific call.
type Kind string

const (
	// KindConstantProduct is a Uniswap V2 style x*y=k AMM.
	KindConstantProduct Kind = "CONSTANT_PRODUCT"

	// KindConcentratedLiquidity is a Uniswap V3 style single-pool swap
	// with a fee tier.
	KindConcentratedLiquidity Kind = "CONCENTRATED_LIQUIDITY"

	// KindWeightedVault is a Balancer style weighted-pool vault swap.
	KindWeightedVault Kind = "WEIGHTED_VAULT"

	// KindStableSwap is a Curve style index-pair exchange.
	KindStableSwap Kind = "STABLESWAP"
)

// Valid reports whether k names a known venue family.
func (k Kind) Valid() bool {
	switch k {
	case KindConstantProduct, KindConcentratedLiquidity, KindWeightedVault, KindStableSwap:
		return true
	}
	return false
}

// String returns a human-readable description of the venue family.
func (k Kind) String() string {
	switch k {
	case KindConstantProduct:
		return "constant-product AMM"
	case KindConcentratedLiquidity:
		return "concentrated-liquidity AMM"
	case KindWeightedVault:
		return "weighted-pool vault"
	case KindStableSwap:
		return "stableswap curve"
	default:
		return "unknown venue"
	}
}

// ParseKind converts a config string into a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "constant_product", "uniswap_v2", "sushiswap":
		return KindConstantProduct, true
	case "concentrated", "uniswap_v3":
		return KindConcentratedLiquidity, true
	case "weighted", "balancer":
		return KindWeightedVault, true
	case "stableswap", "curve":
		return KindStableSwap, true
	}
	return "", false
}
