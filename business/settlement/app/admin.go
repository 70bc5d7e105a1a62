package app

import (
	"context"
	"crypto/subtle"

	"github.com/shopspring/decimal"

	ledgerdomain "github.com/rosegoldcruz/theatom-sub000/business/ledger/domain"
	"github.com/rosegoldcruz/theatom-sub000/business/settlement/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
)

// EngineStats is a point-in-time view of the engine for the operator.
type EngineStats struct {
	Paused             bool
	MinProfitBps       int64
	MaxResourceCostUSD decimal.Decimal
	Ledger             ledgerdomain.Aggregates
}

// Admin is the access and safety surface: pause control, limit updates, and
// profit withdrawal. Every mutating operation checks the operator token
// first and runs only while no attempt is in flight.
type Admin struct {
	runtime       *domain.Runtime
	orchestrator  *Orchestrator
	account       OperatingAccount
	ledger        TradeLedger
	operatorToken string
	logger        logger.LoggerInterface
}

// NewAdmin creates the admin surface.
func NewAdmin(runtime *domain.Runtime, orchestrator *Orchestrator, account OperatingAccount, ledger TradeLedger, operatorToken string, log logger.LoggerInterface) *Admin {
	return &Admin{
		runtime:       runtime,
		orchestrator:  orchestrator,
		account:       account,
		ledger:        ledger,
		operatorToken: operatorToken,
		logger:        log,
	}
}

func (a *Admin) authorize(token string) error {
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.operatorToken)) != 1 {
		return apperror.Unauthorized("operator token mismatch")
	}
	return nil
}

// Pause stops admission of new attempts. The in-flight attempt, if any,
// runs to its terminal state.
func (a *Admin) Pause(ctx context.Context, token string) error {
	if err := a.authorize(token); err != nil {
		return err
	}
	if a.runtime.SetPaused(true) {
		a.logger.Warn(ctx, "engine paused by operator")
	}
	return nil
}

// Unpause resumes admission.
func (a *Admin) Unpause(ctx context.Context, token string) error {
	if err := a.authorize(token); err != nil {
		return err
	}
	if a.runtime.SetPaused(false) {
		a.logger.Info(ctx, "engine unpaused by operator")
	}
	return nil
}

// UpdateLimits replaces the profit threshold and resource cost ceiling.
// It waits for any in-flight attempt so an attempt never sees the limits
// change mid-evaluation.
func (a *Admin) UpdateLimits(ctx context.Context, token string, minProfitBps int64, maxResourceCostUSD decimal.Decimal) error {
	if err := a.authorize(token); err != nil {
		return err
	}

	return a.orchestrator.Exclusive(func() error {
		if err := a.runtime.UpdateLimits(minProfitBps, maxResourceCostUSD); err != nil {
			return err
		}
		a.logger.Info(ctx, "engine limits updated",
			"min_profit_bps", minProfitBps,
			"max_resource_cost_usd", maxResourceCostUSD.StringFixed(2))
		return nil
	})
}

// Withdraw moves accumulated profit out of the operating account. Runs
// exclusively so a withdrawal cannot race an attempt's balance movement.
func (a *Admin) Withdraw(ctx context.Context, token string, amount asset.Amount) error {
	if err := a.authorize(token); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return apperror.Validation(apperror.CodeInvalidInput, "withdrawal must be positive")
	}

	return a.orchestrator.Exclusive(func() error {
		if err := a.account.Withdraw(amount); err != nil {
			return err
		}
		a.logger.Info(ctx, "profit withdrawn",
			"asset", amount.Asset().Symbol(),
			"amount", amount.String())
		return nil
	})
}

// Stats reports the current limits, pause state, and ledger aggregates.
func (a *Admin) Stats(token string) (EngineStats, error) {
	if err := a.authorize(token); err != nil {
		return EngineStats{}, err
	}
	return EngineStats{
		Paused:             a.runtime.Paused(),
		MinProfitBps:       a.runtime.MinProfitBps(),
		MaxResourceCostUSD: a.runtime.MaxResourceCostUSD(),
		Ledger:             a.ledger.Aggregates(),
	}, nil
}
