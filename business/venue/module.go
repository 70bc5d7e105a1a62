// Package venue implements the venue bounded context: per-family DEX
// adapters and the swap router that drives them.
package venue

import (
	"context"

	"github.com/rosegoldcruz/theatom-sub000/business/venue/app"
	"github.com/rosegoldcruz/theatom-sub000/business/venue/domain"
	venueDI "github.com/rosegoldcruz/theatom-sub000/business/venue/di"
	"github.com/rosegoldcruz/theatom-sub000/business/venue/infra/amm"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/config"
	"github.com/rosegoldcruz/theatom-sub000/internal/di"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
	"github.com/rosegoldcruz/theatom-sub000/internal/monolith"
	"github.com/rosegoldcruz/theatom-sub000/internal/treasury"
)

// Module implements the venue bounded context.
type Module struct{}

// RegisterServices registers all venue services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register adapter set - private dependency
	di.RegisterToken(c, venueDI.Adapters, func(sr di.ServiceRegistry) map[domain.Kind]app.Adapter {
		cfg := sr.Get("config").(*config.Config)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		adapters, err := amm.BuildAdapters(cfg.Venues, registry)
		if err != nil {
			panic("failed to build venue adapters: " + err.Error())
		}
		return adapters
	})

	// Register Router (public - exposed to other modules)
	di.RegisterToken(c, venueDI.Router, func(sr di.ServiceRegistry) *app.Router {
		log := sr.Get("logger").(logger.LoggerInterface)
		account := sr.Get("treasury").(*treasury.Account)

		byKind := venueDI.GetAdapters(sr)
		adapters := make([]app.Adapter, 0, len(byKind))
		for _, a := range byKind {
			adapters = append(adapters, a)
		}
		return app.NewRouter(adapters, account, log)
	})

	return nil
}

// Startup initializes the venue module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	adapters := venueDI.GetAdapters(mono.Services())
	log.Info(ctx, "venue module started", "families", len(adapters), "pools", len(mono.Config().Venues.Pools))
	return nil
}
