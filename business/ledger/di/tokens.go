// Package di contains dependency injection tokens for the ledger context.
package di

import (
	"github.com/rosegoldcruz/theatom-sub000/business/ledger/app"
	"github.com/rosegoldcruz/theatom-sub000/business/ledger/infra/stream"
	"github.com/rosegoldcruz/theatom-sub000/internal/di"
)

// Public service tokens - exposed to other modules
var (
	LedgerService = di.NewToken[*app.Service]("ledger.Service")
)

// Private dependency tokens - internal to ledger module
var (
	Store = di.NewToken[app.Store]("ledger:store")
	Hub   = di.NewToken[*stream.Hub]("ledger:hub")
)

// GetLedgerService resolves the trade ledger service.
func GetLedgerService(sr di.ServiceRegistry) *app.Service {
	return di.ResolveToken(sr, LedgerService)
}

// GetStore resolves the trade record store.
func GetStore(sr di.ServiceRegistry) app.Store {
	return di.ResolveToken(sr, Store)
}

// GetHub resolves the websocket hub.
func GetHub(sr di.ServiceRegistry) *stream.Hub {
	return di.ResolveToken(sr, Hub)
}
