package usecases

import (
	"context"
	"fmt"

	"github.com/campuskit/localguide/internal/core/domain"
)

// GuideService is the request-facing façade of the Local Guide routing
// engine: it validates input, resolves the nearest place for a category,
// and delegates the multi-profile route computation.
type GuideService struct {
	catalog    *CatalogService
	aggregator *RouteAggregator
	profiles   []domain.TransportProfile
}

// NewGuideService creates the façade. defaults is the profile set used when
// a query names none; an empty slice falls back to all known profiles.
func NewGuideService(catalog *CatalogService, aggregator *RouteAggregator, defaults []domain.TransportProfile) *GuideService {
	if len(defaults) == 0 {
		defaults = domain.DefaultProfiles
	}
	return &GuideService{catalog: catalog, aggregator: aggregator, profiles: defaults}
}

// DefaultProfiles exposes the configured default profile set.
func (s *GuideService) DefaultProfiles() []domain.TransportProfile {
	return s.profiles
}

// NearestRoute resolves the nearest place of the category and computes travel
// metrics for every requested profile. The bundle is returned alongside
// domain.ErrTotalRouteFailure when every profile failed, so callers can still
// report per-profile reasons.
func (s *GuideService) NearestRoute(ctx context.Context, category string, origin domain.Coordinate, profiles []domain.TransportProfile) (*domain.Place, *domain.RouteBundle, error) {
	if len(profiles) == 0 {
		profiles = s.profiles
	}

	place, err := s.catalog.Nearest(ctx, category, origin)
	if err != nil {
		return nil, nil, err
	}

	bundle := s.aggregator.Compute(ctx, origin, *place, profiles)
	if bundle.AllFailed() {
		return place, bundle, domain.TotalFailure(bundle)
	}
	return place, bundle, nil
}

// RoutesTo computes travel metrics from origin to a known place across the
// requested profiles.
func (s *GuideService) RoutesTo(ctx context.Context, placeID string, origin domain.Coordinate, profiles []domain.TransportProfile) (*domain.RouteBundle, error) {
	if !origin.Valid() {
		return nil, fmt.Errorf("%w: coordinate out of range", domain.ErrInvalidInput)
	}
	if len(profiles) == 0 {
		profiles = s.profiles
	}

	place, err := s.catalog.GetPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}

	bundle := s.aggregator.Compute(ctx, origin, *place, profiles)
	if bundle.AllFailed() {
		return bundle, domain.TotalFailure(bundle)
	}
	return bundle, nil
}
