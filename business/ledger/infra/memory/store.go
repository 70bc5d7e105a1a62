// Package memory provides the in-process trade record store.
package memory

import (
	"context"
	"sync"

	"github.com/rosegoldcruz/theatom-sub000/business/ledger/app"
	"github.com/rosegoldcruz/theatom-sub000/business/ledger/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
)

// Store keeps trade records in memory, append-only, in insertion order.
type Store struct {
	mu      sync.RWMutex
	records []domain.TradeRecord
	seen    map[string]struct{}
}

var _ app.Store = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{seen: make(map[string]struct{})}
}

// Append implements app.Store.
func (s *Store) Append(_ context.Context, record domain.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[record.AttemptID]; dup {
		return apperror.New(apperror.CodeLedgerStoreError,
			apperror.WithContext("duplicate attempt id "+record.AttemptID))
	}
	s.seen[record.AttemptID] = struct{}{}
	s.records = append(s.records, record)
	return nil
}

// Recent implements app.Store.
func (s *Store) Recent(_ context.Context, n int) ([]domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return nil, nil
	}
	if n > len(s.records) {
		n = len(s.records)
	}

	out := make([]domain.TradeRecord, 0, n)
	for i := len(s.records) - 1; i >= len(s.records)-n; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// All implements app.Store.
func (s *Store) All(_ context.Context) ([]domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TradeRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Close implements app.Store.
func (s *Store) Close() error { return nil }
