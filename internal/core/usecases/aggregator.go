package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/campuskit/localguide/internal/core/domain"
	"github.com/campuskit/localguide/internal/core/ports"
	"github.com/campuskit/localguide/internal/pkg/metrics"
)

// RouteAggregator computes a RouteBundle by fanning out one task per
// requested transport profile. Tasks run concurrently and independently;
// a failing profile never aborts its siblings. The aggregator waits until
// every task has settled or the per-request deadline passes, whichever is
// first, and always returns exactly one entry per requested profile.
type RouteAggregator struct {
	provider ports.RouteProvider
	cache    ports.RouteCache
	events   ports.EventPublisher
	deadline time.Duration
}

// NewRouteAggregator creates an aggregator. cache and events may be nil.
func NewRouteAggregator(provider ports.RouteProvider, cache ports.RouteCache, events ports.EventPublisher, deadline time.Duration) *RouteAggregator {
	return &RouteAggregator{
		provider: provider,
		cache:    cache,
		events:   events,
		deadline: deadline,
	}
}

type profileOutcome struct {
	profile domain.TransportProfile
	route   *domain.RouteResult
	err     error
}

// Compute fans out across the requested profiles, consulting the route cache
// before the provider and caching successes. Duplicate profiles in the
// request collapse to one entry.
func (a *RouteAggregator) Compute(ctx context.Context, origin domain.Coordinate, place domain.Place, profiles []domain.TransportProfile) *domain.RouteBundle {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	requested := dedupe(profiles)
	bundle := &domain.RouteBundle{
		Origin:      origin,
		Destination: place,
		Results:     make(map[domain.TransportProfile]domain.ProfileOutcome, len(requested)),
	}

	// Buffered so late workers can settle after the deadline without leaking.
	outcomes := make(chan profileOutcome, len(requested))
	for _, profile := range requested {
		go a.computeProfile(ctx, origin, place, profile, outcomes)
	}

	pending := len(requested)
	record := func(o profileOutcome) {
		pending--
		if o.err != nil {
			bundle.Results[o.profile] = domain.ProfileOutcome{Failure: domain.FailureKind(o.err)}
			return
		}
		bundle.Results[o.profile] = domain.ProfileOutcome{Route: o.route}
	}

	for pending > 0 {
		select {
		case o := <-outcomes:
			record(o)
		case <-ctx.Done():
			// Outcomes already delivered to the channel beat the deadline;
			// drain them before stamping whatever is left as timed out.
			drained := false
			for !drained && pending > 0 {
				select {
				case o := <-outcomes:
					record(o)
				default:
					drained = true
				}
			}
			for _, profile := range requested {
				if _, ok := bundle.Results[profile]; !ok {
					bundle.Results[profile] = domain.ProfileOutcome{Failure: domain.FailureKind(domain.ErrProviderTimeout)}
				}
			}
			pending = 0
		}
	}

	a.observe(ctx, bundle, time.Since(start))
	return bundle
}

// computeProfile settles exactly one outcome for one profile.
func (a *RouteAggregator) computeProfile(ctx context.Context, origin domain.Coordinate, place domain.Place, profile domain.TransportProfile, outcomes chan<- profileOutcome) {
	if a.cache != nil {
		if cached, ok := a.cache.Get(origin, place.ID, profile); ok {
			outcomes <- profileOutcome{profile: profile, route: cached}
			return
		}
	}

	route, err := a.provider.FetchRoute(ctx, origin, place.Location, profile)
	if err != nil {
		outcomes <- profileOutcome{profile: profile, err: err}
		return
	}

	// Failures are never cached so a transient outage heals on the next request.
	if a.cache != nil {
		a.cache.Put(origin, place.ID, profile, route)
	}
	outcomes <- profileOutcome{profile: profile, route: route}
}

// observe records bundle metrics and publishes the route-computed event.
// Publishing is best-effort and never fails the request.
func (a *RouteAggregator) observe(ctx context.Context, bundle *domain.RouteBundle, elapsed time.Duration) {
	succeeded := bundle.Succeeded()
	outcome := "partial"
	switch succeeded {
	case len(bundle.Results):
		outcome = "full"
	case 0:
		outcome = "failed"
	}
	metrics.BundleOutcomes.WithLabelValues(outcome).Inc()

	if a.events == nil {
		return
	}

	event := &domain.RouteComputedEvent{
		PlaceID:    bundle.Destination.ID,
		Category:   bundle.Destination.Category,
		Origin:     bundle.Origin,
		Outcomes:   make(map[domain.TransportProfile]string, len(bundle.Results)),
		ElapsedMS:  elapsed.Milliseconds(),
		ComputedAt: time.Now().UTC(),
	}
	for profile, o := range bundle.Results {
		if o.Route != nil {
			event.Outcomes[profile] = "ok"
		} else {
			event.Outcomes[profile] = o.Failure
		}
	}

	// The request context may already be past its deadline.
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := a.events.PublishRouteComputed(publishCtx, event); err != nil {
		slog.Warn("route event publish failed", "place_id", event.PlaceID, "error", err)
	}
}

func dedupe(profiles []domain.TransportProfile) []domain.TransportProfile {
	seen := make(map[domain.TransportProfile]struct{}, len(profiles))
	out := make([]domain.TransportProfile, 0, len(profiles))
	for _, p := range profiles {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
