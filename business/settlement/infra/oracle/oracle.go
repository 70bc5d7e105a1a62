// Package oracle quotes the USD price of one resource unit for the
// profitability gate's cost ceiling.
package oracle

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/cache"
	"github.com/rosegoldcruz/theatom-sub000/internal/circuitbreaker"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
)

const cacheKey = "resource_unit_price_usd"

// PriceFeed is an upstream source of resource unit prices.
type PriceFeed interface {
	FetchUnitPriceUSD(ctx context.Context) (decimal.Decimal, error)
}

// Config holds oracle parameters.
type Config struct {
	// CacheTTL is how long one quote stays fresh.
	CacheTTL time.Duration

	// FallbackPriceUSD is served when the feed fails and no cached quote
	// is live. Zero disables the fallback.
	FallbackPriceUSD decimal.Decimal
}

// Oracle caches feed quotes behind a circuit breaker. A flapping feed trips
// the breaker and the oracle degrades to the configured fallback price
// instead of stalling settlement attempts.
type Oracle struct {
	feed   PriceFeed
	cfg    Config
	cache  *cache.Cache[string, decimal.Decimal]
	cb     *circuitbreaker.CircuitBreaker[decimal.Decimal]
	logger logger.LoggerInterface
}

// New creates an oracle over the given feed.
func New(feed PriceFeed, cfg Config, log logger.LoggerInterface) *Oracle {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 12 * time.Second
	}
	return &Oracle{
		feed:   feed,
		cfg:    cfg,
		cache:  cache.New[string, decimal.Decimal](5 * time.Minute),
		cb:     circuitbreaker.New[decimal.Decimal](circuitbreaker.DefaultConfig("resource-oracle")),
		logger: log,
	}
}

// UnitPriceUSD implements app.ResourceOracle.
func (o *Oracle) UnitPriceUSD(ctx context.Context) (decimal.Decimal, error) {
	if price, ok := o.cache.Get(cacheKey); ok {
		return price, nil
	}

	price, err := o.cb.Execute(func() (decimal.Decimal, error) {
		return o.feed.FetchUnitPriceUSD(ctx)
	})
	if err != nil {
		if o.cfg.FallbackPriceUSD.IsPositive() {
			o.logger.Warn(ctx, "resource price feed failed, using fallback",
				"error", err,
				"fallback_usd", o.cfg.FallbackPriceUSD.String())
			return o.cfg.FallbackPriceUSD, nil
		}
		return decimal.Zero, apperror.External(apperror.CodeOracleUnavailable, "resource price feed", err)
	}
	if !price.IsPositive() {
		return decimal.Zero, apperror.New(apperror.CodeOracleUnavailable,
			apperror.WithContext("feed returned non-positive price"))
	}

	o.cache.Set(cacheKey, price, o.cfg.CacheTTL)
	return price, nil
}

// StaticFeed serves a fixed unit price. It stands in for a live fee market
// when the engine runs against in-process venues.
type StaticFeed struct {
	price decimal.Decimal
}

// NewStaticFeed creates a feed that always quotes price.
func NewStaticFeed(price decimal.Decimal) *StaticFeed {
	return &StaticFeed{price: price}
}

// FetchUnitPriceUSD implements PriceFeed.
func (f *StaticFeed) FetchUnitPriceUSD(context.Context) (decimal.Decimal, error) {
	return f.price, nil
}
