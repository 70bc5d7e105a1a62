package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rosegoldcruz/theatom-sub000/business/venue/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/apm"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
	"github.com/rosegoldcruz/theatom-sub000/internal/asset"
	"github.com/rosegoldcruz/theatom-sub000/internal/journal"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
)

// Router executes a route hop by hop. Each hop's realized output becomes the
// next hop's input. On the first failure the router aborts; recovery (full
// rollback) belongs to the settlement orchestrator, not here.
type Router struct {
	adapters map[domain.Kind]Adapter
	account  OperatingAccount
	logger   logger.LoggerInterface
	tracer   apm.Tracer
}

// NewRouter creates a Router over the given adapters.
func NewRouter(adapters []Adapter, account OperatingAccount, log logger.LoggerInterface) *Router {
	byKind := make(map[domain.Kind]Adapter, len(adapters))
	for _, a := range adapters {
		byKind[a.Kind()] = a
	}

	return &Router{
		adapters: byKind,
		account:  account,
		logger:   log,
		tracer:   apm.NewTracer("venue.router"),
	}
}

// ExecuteRoute validates the route invariant, then executes each hop in
// strict order against the operating account. It returns the final amount of
// the principal asset received after the last hop, plus the per-hop fills.
func (r *Router) ExecuteRoute(ctx context.Context, j *journal.Journal, principal asset.Amount, route domain.Route) (asset.Amount, []domain.Fill, error) {
	ctx, span := r.tracer.StartSpanFromContext(ctx, "router.execute_route")
	defer span.End()

	if err := route.Validate(principal.Asset()); err != nil {
		span.NoticeError(err)
		return asset.Amount{}, nil, err
	}

	span.SetAttributes(
		attribute.String("route", route.Describe()),
		attribute.Int("hops", len(route)),
	)

	fills := make([]domain.Fill, 0, len(route))
	current := principal

	for i, hop := range route {
		adapter, ok := r.adapters[hop.Kind]
		if !ok {
			err := apperror.New(apperror.CodeVenueNotFound,
				apperror.WithContext(fmt.Sprintf("no adapter for %s", hop.Kind)),
				apperror.WithHopIndex(i))
			span.NoticeError(err)
			return asset.Amount{}, fills, err
		}

		// The account pays the input before the venue fills.
		if err := r.account.Debit(j, current); err != nil {
			wrapped := apperror.New(apperror.CodeSwapFailed,
				apperror.WithCause(err),
				apperror.WithContext(hop.String()),
				apperror.WithHopIndex(i))
			span.NoticeError(wrapped)
			return asset.Amount{}, fills, wrapped
		}

		out, units, err := adapter.Swap(ctx, j, current, hop)
		if err != nil {
			wrapped := apperror.Wrap(err, apperror.CodeSwapFailed, hop.String())
			if wrapped.HopIndex < 0 {
				wrapped.HopIndex = i
			}
			span.NoticeError(wrapped)
			r.logger.Warn(ctx, "hop failed",
				"hop", i,
				"venue", hop.VenueID,
				"error", err,
			)
			return asset.Amount{}, fills, wrapped
		}

		// The venue's realized output lands back in the account.
		r.account.Credit(j, out)

		fills = append(fills, domain.Fill{
			HopIndex:      i,
			VenueID:       hop.VenueID,
			Kind:          hop.Kind,
			In:            current,
			Out:           out,
			ResourceUnits: units,
		})

		r.logger.Debug(ctx, "hop filled",
			"hop", i,
			"venue", hop.VenueID,
			"in", current.String(),
			"out", out.String(),
		)

		current = out
	}

	return current, fills, nil
}

// TotalResourceUnits sums the resource units consumed by the given fills.
func TotalResourceUnits(fills []domain.Fill) uint64 {
	var total uint64
	for _, f := range fills {
		total += f.ResourceUnits
	}
	return total
}
