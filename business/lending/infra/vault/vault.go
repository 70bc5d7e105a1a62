// Package vault provides an in-process flash-loan liquidity source.
package vault

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
)

// Vault holds per-asset liquidity that the lending gateway draws against.
// Draws and restores journal their inverse before applying, so an unwound
// settlement attempt leaves the vault exactly as it was.
type Vault struct {
	name     string
	balances map[asset.AssetID]*big.Int
	mu       sync.Mutex
}

// New creates an empty vault.
func New(name string) *Vault {
	return &Vault{
		name:     name,
		balances: make(map[asset.AssetID]*big.Int),
	}
}

// Name implements app.Source.
func (v *Vault) Name() string { return v.name }

// Seed adds liquidity outside any journal. Startup only.
func (v *Vault) Seed(amount asset.Amount) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.balance(amount.Asset().ID()).Add(v.balance(amount.Asset().ID()), amount.Raw())
}

// Available implements app.Source.
func (v *Vault) Available(a *asset.Asset) asset.Amount {
	v.mu.Lock()
	defer v.mu.Unlock()
	return asset.NewAmount(a, v.balance(a.ID()))
}

// Draw implements app.Source.
func (v *Vault) Draw(j *journal.Journal, amount asset.Amount) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	bal := v.balance(amount.Asset().ID())
	if bal.Cmp(amount.Raw()) < 0 {
		return apperror.New(apperror.CodeLoanUnavailable,
			apperror.WithContext(fmt.Sprintf("%s has %s %s, need %s",
				v.name, asset.NewAmount(amount.Asset(), bal), amount.Asset().Symbol(), amount)))
	}

	undo := new(big.Int).Set(amount.Raw())
	j.Record(fmt.Sprintf("%s undraw %s", v.name, amount.Asset().Symbol()), func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		bal.Add(bal, undo)
	})

	bal.Sub(bal, amount.Raw())
	return nil
}

// Restore implements app.Source.
func (v *Vault) Restore(j *journal.Journal, amount asset.Amount) {
	v.mu.Lock()
	defer v.mu.Unlock()

	bal := v.balance(amount.Asset().ID())

	undo := new(big.Int).Set(amount.Raw())
	j.Record(fmt.Sprintf("%s unrestore %s", v.name, amount.Asset().Symbol()), func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		bal.Sub(bal, undo)
	})

	bal.Add(bal, amount.Raw())
}

// Snapshot returns a copy of all balances, for invariant checks in tests.
func (v *Vault) Snapshot() map[asset.AssetID]*big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make(map[asset.AssetID]*big.Int, len(v.balances))
	for id, bal := range v.balances {
		out[id] = new(big.Int).Set(bal)
	}
	return out
}

// balance returns the mutable balance cell for id, creating it at zero.
// Callers hold v.mu.
func (v *Vault) balance(id asset.AssetID) *big.Int {
	bal, ok := v.balances[id]
	if !ok {
		bal = new(big.Int)
		v.balances[id] = bal
	}
	return bal
}
