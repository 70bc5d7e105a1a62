// Package ledger implements the trade ledger bounded context: the
// append-only trade record, its aggregates, and the live event stream.
package ledger

import (
	"context"

	"github.com/rosegoldcruz/theatom-sub000/business/ledger/app"
	ledgerDI "github.com/rosegoldcruz/theatom-sub000/business/ledger/di"
	"github.com/rosegoldcruz/theatom-sub000/business/ledger/infra/memory"
	"github.com/rosegoldcruz/theatom-sub000/business/ledger/infra/postgres"
	"github.com/rosegoldcruz/theatom-sub000/business/ledger/infra/stream"
	"github.com/rosegoldcruz/theatom-sub000/internal/config"
	"github.com/rosegoldcruz/theatom-sub000/internal/di"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
	"github.com/rosegoldcruz/theatom-sub000/internal/monolith"
)

// Module implements the ledger bounded context.
type Module struct{}

// RegisterServices registers all ledger services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register trade record store - private dependency
	di.RegisterToken(c, ledgerDI.Store, func(sr di.ServiceRegistry) app.Store {
		cfg := sr.Get("config").(*config.Config)

		if cfg.Ledger.Store == "postgres" {
			store, err := postgres.New(context.Background(), cfg.Ledger.PostgresDSN)
			if err != nil {
				panic("failed to connect ledger store: " + err.Error())
			}
			return store
		}
		return memory.NewStore()
	})

	// Register websocket hub - private dependency
	di.RegisterToken(c, ledgerDI.Hub, func(sr di.ServiceRegistry) *stream.Hub {
		log := sr.Get("logger").(logger.LoggerInterface)
		return stream.NewHub(log)
	})

	// Register ledger service (public - exposed to other modules)
	di.RegisterToken(c, ledgerDI.LedgerService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var publisher app.Publisher
		if cfg.Ledger.StreamPort > 0 {
			publisher = ledgerDI.GetHub(sr)
		}
		return app.NewService(ledgerDI.GetStore(sr), publisher, log)
	})

	return nil
}

// Startup warms the aggregate cache and starts the event stream.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	svc := ledgerDI.GetLedgerService(mono.Services())
	if err := svc.Warm(ctx); err != nil {
		return err
	}

	if cfg.Ledger.StreamPort > 0 {
		hub := ledgerDI.GetHub(mono.Services())
		go func() {
			if err := hub.Listen(ctx, cfg.Ledger.StreamPort); err != nil {
				log.Error(ctx, "trade stream stopped", "error", err)
			}
		}()
	}

	log.Info(ctx, "ledger module started", "store", cfg.Ledger.Store)
	return nil
}
