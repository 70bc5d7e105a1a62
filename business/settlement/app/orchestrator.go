package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	ledgerdomain "github.com/rosegoldcruz/theatom-sub000/business/ledger/domain"
	lendingapp "github.com/rosegoldcruz/theatom-sub000/business/lending/app"
	"github.com/rosegoldcruz/theatom-sub000/business/settlement/domain"
	venueapp "github.com/rosegoldcruz/theatom-sub000/business/venue/app"
	"github.com/rosegoldcruz/theatom-sub000/internal/apm"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
	"github.com/rosegoldcruz/theatom-sub000/internal/ratelimit"
)

const meterName = "settlement.orchestrator"

// attemptKey marks a context as belonging to an in-flight attempt, so a
// callback that re-enters Submit is detected no matter which goroutine it
// arrives on.
type attemptKey struct{}

// Receipt summarizes a committed settlement attempt.
type Receipt struct {
	AttemptID       string
	State           domain.State
	Profit          asset.Amount
	ResourceCostUSD decimal.Decimal
	HopCount        int
}

type orchestratorMetrics struct {
	attempts metric.Int64Counter
	duration metric.Float64Histogram
}

// Orchestrator drives one settlement attempt end to end: borrow, route,
// evaluate, repay. Exactly one attempt runs at a time; everything an attempt
// touches is journaled, and any failure after the borrow unwinds the journal
// so no balance anywhere reflects the attempt.
type Orchestrator struct {
	gateway       LoanGateway
	callbackToken string
	router        SwapRouter
	ledger        TradeLedger
	oracle        ResourceOracle
	runtime       *domain.Runtime
	limiter       *ratelimit.Limiter

	// mu makes attempts single-flight. Submit only tries the lock; admin
	// operations that must not interleave with an attempt take it fully.
	mu sync.Mutex

	logger  logger.LoggerInterface
	tracer  apm.Tracer
	metrics orchestratorMetrics
}

// NewOrchestrator wires the settlement pipeline. callbackToken authorizes
// this orchestrator against the loan gateway.
func NewOrchestrator(
	gateway LoanGateway,
	callbackToken string,
	router SwapRouter,
	ledger TradeLedger,
	oracle ResourceOracle,
	runtime *domain.Runtime,
	limiter *ratelimit.Limiter,
	log logger.LoggerInterface,
) (*Orchestrator, error) {
	o := &Orchestrator{
		gateway:       gateway,
		callbackToken: callbackToken,
		router:        router,
		ledger:        ledger,
		oracle:        oracle,
		runtime:       runtime,
		limiter:       limiter,
		logger:        log,
		tracer:        apm.NewTracer("settlement.orchestrator"),
	}

	meter := otel.Meter(meterName)
	var err error
	o.metrics.attempts, err = meter.Int64Counter(
		"settlement_attempts_total",
		metric.WithDescription("Settlement attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}
	o.metrics.duration, err = meter.Float64Histogram(
		"settlement_attempt_duration_seconds",
		metric.WithDescription("Wall time of one settlement attempt"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return o, nil
}

// Submit runs one settlement attempt. Rejections before any state change
// (paused, busy, reentrant, rate limited, malformed request) return an error
// and leave no trade record; once an obligation exists, every outcome is
// recorded.
func (o *Orchestrator) Submit(ctx context.Context, req domain.Request) (Receipt, error) {
	ctx, span := o.tracer.StartSpanFromContext(ctx, "orchestrator.submit")
	defer span.End()

	if ctx.Value(attemptKey{}) != nil {
		err := apperror.New(apperror.CodeReentrancyBlocked)
		span.NoticeError(err)
		return Receipt{}, err
	}
	if o.runtime.Paused() {
		err := apperror.New(apperror.CodeEnginePaused)
		span.NoticeError(err)
		return Receipt{}, err
	}
	if !o.mu.TryLock() {
		err := apperror.New(apperror.CodeEngineBusy)
		span.NoticeError(err)
		return Receipt{}, err
	}
	defer o.mu.Unlock()

	if o.limiter != nil && !o.limiter.Allow() {
		err := apperror.New(apperror.CodeRateLimitExceeded)
		span.NoticeError(err)
		return Receipt{}, err
	}
	if err := req.Validate(time.Now()); err != nil {
		span.NoticeError(err)
		return Receipt{}, err
	}

	attempt := domain.NewAttempt(uuid.NewString())
	ctx = context.WithValue(ctx, attemptKey{}, attempt.ID())
	span.SetAttributes(attribute.String("attempt_id", attempt.ID()))

	start := time.Now()
	receipt, err := o.run(ctx, attempt, req)
	o.metrics.duration.Record(ctx, time.Since(start).Seconds())

	outcome := "committed"
	if err != nil {
		outcome = string(apperror.GetCode(err))
		span.NoticeError(err)
	}
	o.metrics.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	return receipt, err
}

// run executes the journaled portion of an attempt. Any error after the
// borrow unwinds the journal and appends a failed trade record.
func (o *Orchestrator) run(ctx context.Context, attempt *domain.Attempt, req domain.Request) (Receipt, error) {
	j := journal.New()

	if err := attempt.Advance(domain.StateBorrowing); err != nil {
		return Receipt{}, err
	}
	ob, err := o.gateway.Borrow(ctx, j, o.callbackToken, req.Principal)
	if err != nil {
		return Receipt{}, o.fail(ctx, attempt, req, j, decimal.Zero, err)
	}

	if err := attempt.Advance(domain.StateRouting); err != nil {
		return Receipt{}, o.fail(ctx, attempt, req, j, decimal.Zero, err)
	}
	finalAmount, fills, err := o.router.ExecuteRoute(ctx, j, req.Principal, req.Route)
	if err != nil {
		return Receipt{}, o.fail(ctx, attempt, req, j, decimal.Zero, err)
	}

	if err := attempt.Advance(domain.StateEvaluating); err != nil {
		return Receipt{}, o.fail(ctx, attempt, req, j, decimal.Zero, err)
	}
	if !req.Deadline.IsZero() && time.Now().After(req.Deadline) {
		expired := apperror.New(apperror.CodeDeadlineExpired,
			apperror.WithContext("deadline passed mid-attempt"))
		return Receipt{}, o.fail(ctx, attempt, req, j, decimal.Zero, expired)
	}

	units := venueapp.TotalResourceUnits(fills) + lendingapp.LoanOverheadUnits
	unitPrice, err := o.oracle.UnitPriceUSD(ctx)
	if err != nil {
		return Receipt{}, o.fail(ctx, attempt, req, j, decimal.Zero, err)
	}
	resourceCost := unitPrice.Mul(decimal.NewFromInt(int64(units)))

	profit, err := Evaluate(req.Principal, ob.Owed(), finalAmount, resourceCost, o.limits(req))
	if err != nil {
		return Receipt{}, o.fail(ctx, attempt, req, j, resourceCost, err)
	}

	if err := attempt.Advance(domain.StateRepaying); err != nil {
		return Receipt{}, o.fail(ctx, attempt, req, j, resourceCost, err)
	}
	if err := o.gateway.Repay(ctx, j, o.callbackToken, ob, finalAmount); err != nil {
		return Receipt{}, o.fail(ctx, attempt, req, j, resourceCost, err)
	}

	if err := attempt.Advance(domain.StateCommitted); err != nil {
		return Receipt{}, o.fail(ctx, attempt, req, j, resourceCost, err)
	}
	j.Discard()

	record := o.buildRecord(attempt, req, profit.ToDecimal(), resourceCost, true, "")
	if err := o.ledger.Record(ctx, record); err != nil {
		// Funds are settled; a ledger write failure must not unwind them.
		o.logger.Error(ctx, "committed attempt not recorded", "attempt_id", attempt.ID(), "error", err)
	}

	o.logger.Info(ctx, "settlement committed",
		"attempt_id", attempt.ID(),
		"asset", req.Principal.Asset().Symbol(),
		"profit", profit.String(),
		"resource_cost_usd", resourceCost.StringFixed(4),
		"hops", len(req.Route))

	return Receipt{
		AttemptID:       attempt.ID(),
		State:           attempt.State(),
		Profit:          profit,
		ResourceCostUSD: resourceCost,
		HopCount:        len(req.Route),
	}, nil
}

// fail unwinds every journaled mutation, moves the attempt to its terminal
// failure state, and records the failed trade when an obligation existed or
// the loan draw itself was refused.
func (o *Orchestrator) fail(ctx context.Context, attempt *domain.Attempt, req domain.Request, j *journal.Journal, resourceCost decimal.Decimal, cause error) error {
	j.Unwind()

	if !attempt.State().Terminal() {
		if err := attempt.Advance(domain.StateRolledBack); err != nil {
			o.logger.Error(ctx, "attempt stuck in non-terminal state", "attempt_id", attempt.ID(), "error", err)
		}
	}

	code := string(apperror.GetCode(cause))
	record := o.buildRecord(attempt, req, decimal.Zero, resourceCost, false, code)
	if err := o.ledger.Record(ctx, record); err != nil {
		o.logger.Error(ctx, "failed attempt not recorded", "attempt_id", attempt.ID(), "error", err)
	}

	fields := []any{
		"attempt_id", attempt.ID(),
		"asset", req.Principal.Asset().Symbol(),
		"failure_code", code,
		"journal_entries", j.Len(),
	}
	if hop := apperror.GetHopIndex(cause); hop >= 0 {
		fields = append(fields, "hop_index", hop)
	}
	o.logger.Warn(ctx, "settlement rolled back", fields...)

	return cause
}

func (o *Orchestrator) buildRecord(attempt *domain.Attempt, req domain.Request, profit, resourceCost decimal.Decimal, success bool, failureCode string) ledgerdomain.TradeRecord {
	return ledgerdomain.TradeRecord{
		AttemptID:       attempt.ID(),
		Timestamp:       time.Now().UTC(),
		AssetSymbol:     req.Principal.Asset().Symbol(),
		ChainID:         req.Principal.Asset().ChainID(),
		Principal:       req.Principal.ToDecimal(),
		Profit:          profit,
		ResourceCostUSD: resourceCost,
		Route:           req.Route.Describe(),
		HopCount:        len(req.Route),
		Success:         success,
		FailureCode:     failureCode,
	}
}

// Exclusive runs fn while no attempt is in flight, blocking until the
// current one reaches a terminal state.
func (o *Orchestrator) Exclusive(fn func() error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return fn()
}

// limits merges the runtime thresholds with any tighter request-level ones.
func (o *Orchestrator) limits(req domain.Request) Limits {
	ceiling := o.runtime.MaxResourceCostUSD()
	if req.MaxResourceCostUSD.IsPositive() && req.MaxResourceCostUSD.LessThan(ceiling) {
		ceiling = req.MaxResourceCostUSD
	}
	return Limits{
		MinProfitBps:       o.runtime.MinProfitBps(),
		MinProfitAbs:       req.MinProfit,
		MaxResourceCostUSD: ceiling,
	}
}
