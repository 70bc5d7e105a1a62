// Package settlement implements the settlement bounded context: the
// orchestrator that drives atomic arbitrage attempts and the operator's
// safety surface.
package settlement

import (
	"context"

	ledgerDI "github.com/rosegoldcruz/theatom-sub000/business/ledger/di"
	lendingDI "github.com/rosegoldcruz/theatom-sub000/business/lending/di"
	"github.com/rosegoldcruz/theatom-sub000/business/settlement/app"
	settlementDI "github.com/rosegoldcruz/theatom-sub000/business/settlement/di"
	"github.com/rosegoldcruz/theatom-sub000/business/settlement/domain"
	"github.com/rosegoldcruz/theatom-sub000/business/settlement/infra/oracle"
	venueDI "github.com/rosegoldcruz/theatom-sub000/business/venue/di"
	"github.com/rosegoldcruz/theatom-sub000/internal/config"
	"github.com/rosegoldcruz/theatom-sub000/internal/di"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
	"github.com/rosegoldcruz/theatom-sub000/internal/monolith"
	"github.com/rosegoldcruz/theatom-sub000/internal/ratelimit"
	"github.com/rosegoldcruz/theatom-sub000/internal/treasury"
)

// Module implements the settlement bounded context.
type Module struct{}

// RegisterServices registers all settlement services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register runtime limits - private dependency
	di.RegisterToken(c, settlementDI.Runtime, func(sr di.ServiceRegistry) *domain.Runtime {
		cfg := sr.Get("config").(*config.Config)
		return domain.NewRuntime(cfg.Engine.MinProfitBps, cfg.Engine.MaxResourceCostDecimal())
	})

	// Register resource oracle - private dependency
	di.RegisterToken(c, settlementDI.ResourceOracle, func(sr di.ServiceRegistry) app.ResourceOracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		feed := oracle.NewStaticFeed(cfg.Engine.ResourceUnitPriceDecimal())
		return oracle.New(feed, oracle.Config{
			CacheTTL:         cfg.Engine.OracleCacheTTL,
			FallbackPriceUSD: cfg.Engine.ResourceUnitPriceDecimal(),
		}, log)
	})

	// Register Orchestrator (public - exposed to other modules)
	di.RegisterToken(c, settlementDI.Orchestrator, func(sr di.ServiceRegistry) *app.Orchestrator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		gateway := lendingDI.GetGateway(sr)
		orch, err := app.NewOrchestrator(
			gateway,
			gateway.CallbackToken(),
			venueDI.GetRouter(sr),
			ledgerDI.GetLedgerService(sr),
			settlementDI.GetResourceOracle(sr),
			settlementDI.GetRuntime(sr),
			ratelimit.New(cfg.Engine.SubmitRatePerMinute),
			log,
		)
		if err != nil {
			panic("failed to create orchestrator: " + err.Error())
		}
		return orch
	})

	// Register Admin (public - exposed to other modules)
	di.RegisterToken(c, settlementDI.Admin, func(sr di.ServiceRegistry) *app.Admin {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		account := sr.Get("treasury").(*treasury.Account)

		return app.NewAdmin(
			settlementDI.GetRuntime(sr),
			settlementDI.GetOrchestrator(sr),
			account,
			ledgerDI.GetLedgerService(sr),
			cfg.Admin.OperatorToken,
			log,
		)
	})

	return nil
}

// Startup initializes the settlement module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	runtime := settlementDI.GetRuntime(mono.Services())
	// Force construction so wiring bugs surface at startup, not on the
	// first submission.
	settlementDI.GetOrchestrator(mono.Services())
	settlementDI.GetAdmin(mono.Services())

	log.Info(ctx, "settlement module started",
		"min_profit_bps", runtime.MinProfitBps(),
		"max_resource_cost_usd", runtime.MaxResourceCostUSD().StringFixed(2))
	return nil
}
