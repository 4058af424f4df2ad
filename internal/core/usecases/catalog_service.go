package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/campuskit/localguide/internal/core/domain"
	"github.com/campuskit/localguide/internal/core/ports"
	"github.com/campuskit/localguide/internal/pkg/geospatial"
	"github.com/campuskit/localguide/internal/pkg/metrics"
)

// nearestEpsilonMeters absorbs floating-point noise when comparing
// great-circle distances; places closer together than this are treated as
// equidistant and tie-broken on their identifier.
const nearestEpsilonMeters = 0.5

// CatalogService answers nearest-place queries over the place reference data.
type CatalogService struct {
	places     ports.PlaceRepository
	categories ports.CategoryRepository
	cache      ports.CacheService
}

// NewCatalogService creates a new CatalogService. cache may be nil.
func NewCatalogService(places ports.PlaceRepository, categories ports.CategoryRepository, cache ports.CacheService) *CatalogService {
	return &CatalogService{places: places, categories: categories, cache: cache}
}

// Nearest resolves the place of the given category closest to origin by
// great-circle distance. Equidistant places (within epsilon) resolve to the
// lexicographically smallest place ID so repeated calls are deterministic.
// Returns domain.ErrNotFound when the category has no places.
func (s *CatalogService) Nearest(ctx context.Context, category string, origin domain.Coordinate) (*domain.Place, error) {
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}
	if !origin.Valid() {
		return nil, fmt.Errorf("%w: coordinate out of range", domain.ErrInvalidInput)
	}

	places, err := s.listByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		metrics.NearestQueries.WithLabelValues(category, "not_found").Inc()
		return nil, fmt.Errorf("%w: no places in category %q", domain.ErrNotFound, category)
	}

	dists := make([]float64, len(places))
	minDist := math.MaxFloat64
	for i := range places {
		p := &places[i]
		dists[i] = geospatial.Haversine(origin.Lat, origin.Lng, p.Location.Lat, p.Location.Lng)
		if dists[i] < minDist {
			minDist = dists[i]
		}
	}

	// Tie-break on ID only among places within epsilon of the true minimum,
	// so the winner never drifts farther than epsilon from the closest place.
	var best *domain.Place
	var bestDist float64
	for i := range places {
		if dists[i] > minDist+nearestEpsilonMeters {
			continue
		}
		p := &places[i]
		if best == nil || p.ID < best.ID {
			best, bestDist = p, dists[i]
		}
	}

	metrics.NearestQueries.WithLabelValues(category, "found").Inc()

	result := *best
	dist := bestDist
	result.Distance = &dist
	return &result, nil
}

// GetPlace returns a single place by ID.
func (s *CatalogService) GetPlace(ctx context.Context, id string) (*domain.Place, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: place id is required", domain.ErrInvalidInput)
	}

	cacheKey := "places:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var place domain.Place
			if err := json.Unmarshal(data, &place); err == nil {
				return &place, nil
			}
		}
	}

	place, err := s.places.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: place %q", domain.ErrNotFound, id)
	}

	if s.cache != nil {
		if data, err := json.Marshal(place); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600) // 10 min; reference data moves slowly
		}
	}

	return place, nil
}

// ListByCategory returns every place in a category.
func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]domain.Place, error) {
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}
	return s.listByCategory(ctx, category)
}

// Categories returns the canonical category reference data.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	cacheKey := "categories:all"
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var categories []domain.Category
			if err := json.Unmarshal(data, &categories); err == nil {
				return categories, nil
			}
		}
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(categories); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600) // fixed seed data
		}
	}

	return categories, nil
}

// listByCategory reads the category's places through the shared cache.
func (s *CatalogService) listByCategory(ctx context.Context, category string) ([]domain.Place, error) {
	cacheKey := "places:category:" + category
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var places []domain.Place
			if err := json.Unmarshal(data, &places); err == nil {
				return places, nil
			}
		}
	}

	places, err := s.places.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(places); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return places, nil
}
