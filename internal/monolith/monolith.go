// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"fmt"

	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/config"
	"github.com/rosegoldcruz/theatom-sub000/internal/di"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
	"github.com/rosegoldcruz/theatom-sub000/internal/treasury"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	AssetRegistry() *asset.Registry
	Treasury() *treasury.Account
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	assetRegistry *asset.Registry
	treasury      *treasury.Account
	container     di.Container
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	// Use default asset registry (pre-populated with common assets)
	assetRegistry := asset.DefaultRegistry()

	account := treasury.NewAccount()
	for symbol, value := range cfg.Treasury.Balances {
		a, err := lookupAsset(assetRegistry, symbol)
		if err != nil {
			return nil, err
		}
		amt, err := asset.ParseString(a, value)
		if err != nil {
			return nil, fmt.Errorf("monolith: treasury balance %s: %w", symbol, err)
		}
		account.Seed(amt)
	}

	container := di.NewContainer()

	// Register global services
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("assetRegistry", assetRegistry)
	container.Register("treasury", account)

	return &app{
		config:        cfg,
		logger:        log,
		assetRegistry: assetRegistry,
		treasury:      account,
		container:     container,
	}, nil
}

func lookupAsset(r *asset.Registry, symbol string) (*asset.Asset, error) {
	matches := r.GetBySymbol(symbol)
	if len(matches) == 0 {
		return nil, fmt.Errorf("monolith: unknown asset symbol %q", symbol)
	}
	return matches[0], nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

func (a *app) Treasury() *treasury.Account {
	return a.treasury
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all resources.
func (a *app) Close() error {
	return nil
}
