package app

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rosegoldcruz/theatom-sub000/business/ledger/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/apm"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
)

// Service is the trade ledger: an append-only record of every settlement
// attempt plus incrementally-maintained aggregates. The cached aggregates
// can always be recomputed from the store; Reconcile checks they agree.
type Service struct {
	store     Store
	publisher Publisher
	logger    logger.LoggerInterface
	tracer    apm.Tracer

	mu    sync.RWMutex
	cache domain.Aggregates
}

// NewService creates a ledger service. publisher may be nil when event
// streaming is disabled.
func NewService(store Store, publisher Publisher, log logger.LoggerInterface) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    log,
		tracer:    apm.NewTracer("ledger.service"),
		cache:     domain.Fold(nil),
	}
}

// Warm seeds the aggregate cache from the store's existing records.
func (s *Service) Warm(ctx context.Context) error {
	records, err := s.store.All(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache = domain.Fold(records)
	s.mu.Unlock()
	return nil
}

// Record appends one trade record, updates the aggregates, and publishes
// the record to live subscribers.
func (s *Service) Record(ctx context.Context, record domain.TradeRecord) error {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "ledger.record")
	defer span.End()

	span.SetAttributes(
		attribute.String("attempt_id", record.AttemptID),
		attribute.Bool("success", record.Success),
	)

	if err := s.store.Append(ctx, record); err != nil {
		span.NoticeError(err)
		return err
	}

	s.mu.Lock()
	s.cache.Add(record)
	s.mu.Unlock()

	if s.publisher != nil {
		s.publisher.Publish(ctx, record)
	}

	s.logger.Info(ctx, "trade recorded",
		"attempt_id", record.AttemptID,
		"success", record.Success,
		"asset", record.AssetSymbol,
		"profit", record.Profit.String(),
		"failure_code", record.FailureCode)
	return nil
}

// RecentTrades returns up to n records, newest first.
func (s *Service) RecentTrades(ctx context.Context, n int) ([]domain.TradeRecord, error) {
	return s.store.Recent(ctx, n)
}

// Aggregates returns a snapshot of the cached aggregates.
func (s *Service) Aggregates() domain.Aggregates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyAggregates(s.cache)
}

// Reconcile recomputes aggregates from the store and replaces the cache.
// It reports whether the cache already agreed with the store.
func (s *Service) Reconcile(ctx context.Context) (bool, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "ledger.reconcile")
	defer span.End()

	records, err := s.store.All(ctx)
	if err != nil {
		span.NoticeError(err)
		return false, err
	}
	folded := domain.Fold(records)

	s.mu.Lock()
	agreed := s.cache.Equal(folded)
	s.cache = folded
	s.mu.Unlock()

	if !agreed {
		s.logger.Warn(ctx, "ledger aggregate cache diverged from store, rebuilt")
	}
	return agreed, nil
}

func copyAggregates(a domain.Aggregates) domain.Aggregates {
	out := a
	out.NetProfit = copyProfitMap(a.NetProfit)
	out.RouteProfit = copyProfitMap(a.RouteProfit)
	return out
}

func copyProfitMap(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, p := range m {
		out[k] = p
	}
	return out
}
