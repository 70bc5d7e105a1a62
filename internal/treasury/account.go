// Package treasury holds the operating account's asset balances.
//
// The account is the only place funds live while a settlement attempt is in
// flight. Every balance change is paired with a compensating entry in the
// attempt's journal so a failed attempt leaves balances bit-for-bit unchanged.
package treasury

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
)

// Account is a thread-safe per-asset balance sheet.
type Account struct {
	balances map[asset.AssetID]*big.Int
	mu       sync.RWMutex
}

// NewAccount creates an empty Account.
func NewAccount() *Account {
	return &Account{
		balances: make(map[asset.AssetID]*big.Int),
	}
}

// Seed sets an initial balance outside of any journal. Used at startup only.
func (a *Account) Seed(amount asset.Amount) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balances[amount.Asset().ID()] = amount.Raw()
}

// Balance returns the current balance of the given asset.
func (a *Account) Balance(as *asset.Asset) asset.Amount {
	a.mu.RLock()
	defer a.mu.RUnlock()

	raw, ok := a.balances[as.ID()]
	if !ok {
		return asset.Zero(as)
	}
	return asset.NewAmount(as, raw)
}

// Credit adds amount to the account and records the inverse in j.
func (a *Account) Credit(j *journal.Journal, amount asset.Amount) {
	if amount.IsZero() {
		return
	}

	id := amount.Asset().ID()
	raw := amount.Raw()

	j.Record(fmt.Sprintf("credit %s", amount), func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.balances[id].Sub(a.balances[id], raw)
	})

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.balances[id]; !ok {
		a.balances[id] = big.NewInt(0)
	}
	a.balances[id].Add(a.balances[id], raw)
}

// Debit removes amount from the account and records the inverse in j.
// Fails with INSUFFICIENT_BALANCE when the account cannot cover it.
func (a *Account) Debit(j *journal.Journal, amount asset.Amount) error {
	if amount.IsZero() {
		return nil
	}

	id := amount.Asset().ID()
	raw := amount.Raw()

	a.mu.Lock()
	bal, ok := a.balances[id]
	if !ok || bal.Cmp(raw) < 0 {
		a.mu.Unlock()
		return apperror.New(apperror.CodeInsufficientBalance,
			apperror.WithContext(fmt.Sprintf("debit %s", amount)))
	}
	bal.Sub(bal, raw)
	a.mu.Unlock()

	j.Record(fmt.Sprintf("debit %s", amount), func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.balances[id].Add(a.balances[id], raw)
	})

	return nil
}

// Withdraw removes amount permanently, outside of any attempt journal.
// Used by the operator's withdraw path only.
func (a *Account) Withdraw(amount asset.Amount) error {
	id := amount.Asset().ID()
	raw := amount.Raw()

	a.mu.Lock()
	defer a.mu.Unlock()

	bal, ok := a.balances[id]
	if !ok || bal.Cmp(raw) < 0 {
		return apperror.New(apperror.CodeInsufficientBalance,
			apperror.WithContext(fmt.Sprintf("withdraw %s", amount)))
	}
	bal.Sub(bal, raw)
	return nil
}

// Snapshot returns a copy of all balances, keyed by asset id.
func (a *Account) Snapshot() map[asset.AssetID]*big.Int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[asset.AssetID]*big.Int, len(a.balances))
	for id, raw := range a.balances {
		out[id] = new(big.Int).Set(raw)
	}
	return out
}

// Equal reports whether two snapshots hold identical balances.
// Zero balances compare equal to missing entries.
func Equal(a, b map[asset.AssetID]*big.Int) bool {
	zero := func(m map[asset.AssetID]*big.Int, id asset.AssetID) *big.Int {
		if v, ok := m[id]; ok {
			return v
		}
		return big.NewInt(0)
	}

	for id := range a {
		if zero(a, id).Cmp(zero(b, id)) != 0 {
			return false
		}
	}
	for id := range b {
		if zero(a, id).Cmp(zero(b, id)) != 0 {
			return false
		}
	}
	return true
}
