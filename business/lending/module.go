// Package lending implements the lending bounded context: the flash-loan
// gateway and its vault liquidity source.
package lending

import (
	"context"

	"github.com/rosegoldcruz/theatom-sub000/business/lending/app"
	lendingDI "github.com/rosegoldcruz/theatom-sub000/business/lending/di"
	"github.com/rosegoldcruz/theatom-sub000/business/lending/infra/vault"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/config"
	"github.com/rosegoldcruz/theatom-sub000/internal/di"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
	"github.com/rosegoldcruz/theatom-sub000/internal/monolith"
	"github.com/rosegoldcruz/theatom-sub000/internal/treasury"
)

// Module implements the lending bounded context.
type Module struct{}

// RegisterServices registers all lending services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register vault liquidity source - private dependency
	di.RegisterToken(c, lendingDI.Source, func(sr di.ServiceRegistry) app.Source {
		cfg := sr.Get("config").(*config.Config)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		v := vault.New("vault")
		for symbol, value := range cfg.Lending.Liquidity {
			matches := registry.GetBySymbol(symbol)
			if len(matches) == 0 {
				panic("unknown asset in lending.liquidity: " + symbol)
			}
			amt, err := asset.ParseString(matches[0], value)
			if err != nil {
				panic("bad lending.liquidity amount for " + symbol + ": " + err.Error())
			}
			v.Seed(amt)
		}
		return v
	})

	// Register Gateway (public - exposed to other modules)
	di.RegisterToken(c, lendingDI.Gateway, func(sr di.ServiceRegistry) *app.Gateway {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		account := sr.Get("treasury").(*treasury.Account)

		return app.NewGateway(lendingDI.GetSource(sr), account, cfg.Lending, log)
	})

	return nil
}

// Startup initializes the lending module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	source := lendingDI.GetSource(mono.Services())
	log.Info(ctx, "lending module started",
		"source", source.Name(),
		"assets", len(mono.Config().Lending.Liquidity))
	return nil
}
