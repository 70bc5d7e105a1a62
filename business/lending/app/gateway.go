package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rosegoldcruz/theatom-sub000/business/lending/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/apm"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/config"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
)

// LoanOverheadUnits is the fixed resource cost of one borrow/repay cycle,
// on top of the per-hop swap costs.
const LoanOverheadUnits = 150_000

// Gateway acquires flash loans from a liquidity source and enforces that
// principal plus fee comes back before the attempt finalizes. Only the
// holder of the callback token may borrow.
type Gateway struct {
	source  Source
	account OperatingAccount
	cfg     config.LendingConfig
	token   string
	logger  logger.LoggerInterface
	tracer  apm.Tracer
}

// NewGateway creates a Gateway. The callback token is minted here and handed
// only to the settlement orchestrator at wiring time.
func NewGateway(source Source, account OperatingAccount, cfg config.LendingConfig, log logger.LoggerInterface) *Gateway {
	return &Gateway{
		source:  source,
		account: account,
		cfg:     cfg,
		token:   uuid.NewString(),
		logger:  log,
		tracer:  apm.NewTracer("lending.gateway"),
	}
}

// CallbackToken returns the token that authorizes Borrow and Repay calls.
func (g *Gateway) CallbackToken() string { return g.token }

// Borrow draws principal from the source into the operating account and
// returns the resulting obligation. All balance movement is journaled.
func (g *Gateway) Borrow(ctx context.Context, j *journal.Journal, callerToken string, principal asset.Amount) (*domain.Obligation, error) {
	ctx, span := g.tracer.StartSpanFromContext(ctx, "gateway.borrow")
	defer span.End()

	if callerToken != g.token {
		err := apperror.New(apperror.CodeUnauthorizedCallback)
		span.NoticeError(err)
		return nil, err
	}
	if !principal.IsPositive() {
		err := apperror.Validation(apperror.CodeInvalidRequest, "loan principal must be positive")
		span.NoticeError(err)
		return nil, err
	}
	if err := g.checkCeiling(principal); err != nil {
		span.NoticeError(err)
		return nil, err
	}

	if err := g.source.Draw(j, principal); err != nil {
		span.NoticeError(err)
		return nil, err
	}
	g.account.Credit(j, principal)

	ob := domain.NewObligation(uuid.NewString(), principal, g.cfg.FeeBps, g.source.Name())

	span.SetAttributes(
		attribute.String("obligation_id", ob.ID()),
		attribute.String("asset", principal.Asset().Symbol()),
		attribute.String("owed", ob.Owed().String()),
	)
	g.logger.Debug(ctx, "loan drawn",
		"obligation_id", ob.ID(),
		"principal", principal.String(),
		"fee", ob.Fee().String())

	return ob, nil
}

// Repay settles an open obligation. amount must cover the full owed value;
// partial repayment is a shortfall, never a retry.
func (g *Gateway) Repay(ctx context.Context, j *journal.Journal, callerToken string, ob *domain.Obligation, amount asset.Amount) error {
	ctx, span := g.tracer.StartSpanFromContext(ctx, "gateway.repay")
	defer span.End()

	if callerToken != g.token {
		err := apperror.New(apperror.CodeUnauthorizedCallback)
		span.NoticeError(err)
		return err
	}
	if !ob.Open() {
		err := apperror.New(apperror.CodeObligationClosed,
			apperror.WithContext("obligation "+ob.ID()))
		span.NoticeError(err)
		return err
	}

	covered, err := amount.GreaterThanOrEqual(ob.Owed())
	if err != nil {
		wrapped := apperror.Validation(apperror.CodeInvalidRequest, "repayment asset mismatch")
		span.NoticeError(wrapped)
		return wrapped
	}
	if !covered {
		shortfall := apperror.New(apperror.CodeRepaymentShortfall,
			apperror.WithContext(fmt.Sprintf("owed %s, offered %s", ob.Owed(), amount)))
		span.NoticeError(shortfall)
		return shortfall
	}

	// Repay exactly what is owed. Surplus stays in the operating account.
	if err := g.account.Debit(j, ob.Owed()); err != nil {
		span.NoticeError(err)
		return err
	}
	g.source.Restore(j, ob.Owed())

	if err := ob.Close(); err != nil {
		return err
	}

	g.logger.Debug(ctx, "loan repaid", "obligation_id", ob.ID(), "amount", ob.Owed().String())
	return nil
}

// checkCeiling bounds a single draw by its USD notional. An asset without a
// configured price cannot be bounded, so it fails closed.
func (g *Gateway) checkCeiling(principal asset.Amount) error {
	rate, ok := g.cfg.PricesUSD[principal.Asset().Symbol()]
	if !ok {
		return apperror.New(apperror.CodeLoanCeilingExceeded,
			apperror.WithContext(fmt.Sprintf("no USD price configured for %s", principal.Asset().Symbol())))
	}

	price := asset.NewPriceNow(principal.Asset(), asset.USD, decimal.NewFromFloat(rate))
	notional, err := price.Convert(principal)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeLoanCeilingExceeded, "loan notional valuation")
	}
	if notional.ToDecimal().GreaterThan(g.cfg.MaxLoanDecimal()) {
		return apperror.New(apperror.CodeLoanCeilingExceeded,
			apperror.WithContext(fmt.Sprintf("notional $%s exceeds cap $%s",
				notional.ToDecimal().StringFixed(2), g.cfg.MaxLoanDecimal().StringFixed(2))))
	}
	return nil
}
