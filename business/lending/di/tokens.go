// Package di contains dependency injection tokens for the lending context.
package di

import (
	"github.com/rosegoldcruz/theatom-sub000/business/lending/app"
	"github.com/rosegoldcruz/theatom-sub000/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Gateway = di.NewToken[*app.Gateway]("lending.Gateway")
)

// Private dependency tokens - internal to lending module
var (
	Source = di.NewToken[app.Source]("lending:source")
)

// GetGateway resolves the loan gateway.
func GetGateway(sr di.ServiceRegistry) *app.Gateway {
	return di.ResolveToken(sr, Gateway)
}

// GetSource resolves the liquidity source.
func GetSource(sr di.ServiceRegistry) app.Source {
	return di.ResolveToken(sr, Source)
}
