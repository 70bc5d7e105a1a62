// Package di contains dependency injection tokens for the venue context.
package di

import (
	"github.com/rosegoldcruz/theatom-sub000/business/venue/app"
	"github.com/rosegoldcruz/theatom-sub000/business/venue/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Router = di.NewToken[*app.Router]("venue.Router")
)

// Private dependency tokens - internal to venue module
var (
	Adapters = di.NewToken[map[domain.Kind]app.Adapter]("venue:adapters")
)

// GetRouter resolves the swap router.
func GetRouter(sr di.ServiceRegistry) *app.Router {
	return di.ResolveToken(sr, Router)
}

// GetAdapters resolves the per-family adapter set.
func GetAdapters(sr di.ServiceRegistry) map[domain.Kind]app.Adapter {
	return di.ResolveToken(sr, Adapters)
}
