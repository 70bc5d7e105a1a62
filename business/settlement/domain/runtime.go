package domain

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
)

// Runtime holds the owner-mutable engine limits. Reads happen on every
// attempt; writes go only through the admin surface.
type Runtime struct {
	mu sync.RWMutex

	minProfitBps       int64
	maxResourceCostUSD decimal.Decimal
	paused             bool
}

// NewRuntime creates runtime limits from the startup configuration.
// The bounds are assumed already validated by config loading.
func NewRuntime(minProfitBps int64, maxResourceCostUSD decimal.Decimal) *Runtime {
	return &Runtime{
		minProfitBps:       minProfitBps,
		maxResourceCostUSD: maxResourceCostUSD,
	}
}

// MinProfitBps returns the profit threshold in basis points of principal.
func (r *Runtime) MinProfitBps() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.minProfitBps
}

// MaxResourceCostUSD returns the per-attempt resource cost ceiling.
func (r *Runtime) MaxResourceCostUSD() decimal.Decimal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maxResourceCostUSD
}

// Paused reports whether new attempts are admitted.
func (r *Runtime) Paused() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused
}

// SetPaused flips the pause flag and reports whether the value changed.
func (r *Runtime) SetPaused(paused bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := r.paused != paused
	r.paused = paused
	return changed
}

// UpdateLimits replaces both limits after validating bounds. Out-of-range
// values are rejected, never clamped.
func (r *Runtime) UpdateLimits(minProfitBps int64, maxResourceCostUSD decimal.Decimal) error {
	if minProfitBps <= 0 || minProfitBps > 1000 {
		return apperror.Validation(apperror.CodeInvalidInput,
			fmt.Sprintf("min profit bps must be in (0, 1000], got %d", minProfitBps))
	}
	if maxResourceCostUSD.IsNegative() {
		return apperror.Validation(apperror.CodeInvalidInput, "resource cost ceiling cannot be negative")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.minProfitBps = minProfitBps
	r.maxResourceCostUSD = maxResourceCostUSD
	return nil
}
