// Package di contains dependency injection tokens for the settlement context.
package di

import (
	"github.com/rosegoldcruz/theatom-sub000/business/settlement/app"
	"github.com/rosegoldcruz/theatom-sub000/business/settlement/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Orchestrator = di.NewToken[*app.Orchestrator]("settlement.Orchestrator")
	Admin        = di.NewToken[*app.Admin]("settlement.Admin")
)

// Private dependency tokens - internal to settlement module
var (
	Runtime        = di.NewToken[*domain.Runtime]("settlement:runtime")
	ResourceOracle = di.NewToken[app.ResourceOracle]("settlement:resourceOracle")
)

// GetOrchestrator resolves the settlement orchestrator.
func GetOrchestrator(sr di.ServiceRegistry) *app.Orchestrator {
	return di.ResolveToken(sr, Orchestrator)
}

// GetAdmin resolves the admin surface.
func GetAdmin(sr di.ServiceRegistry) *app.Admin {
	return di.ResolveToken(sr, Admin)
}

// GetRuntime resolves the runtime limits.
func GetRuntime(sr di.ServiceRegistry) *domain.Runtime {
	return di.ResolveToken(sr, Runtime)
}

// GetResourceOracle resolves the resource price oracle.
func GetResourceOracle(sr di.ServiceRegistry) app.ResourceOracle {
	return di.ResolveToken(sr, ResourceOracle)
}
