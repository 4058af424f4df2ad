package ports

import (
	"context"

	"github.com/campuskit/localguide/internal/core/domain"
)

// RouteProvider computes one route for one origin/destination/profile triple
// against the external routing service. Implementations own their timeout and
// retry policy and return only the domain error taxonomy.
type RouteProvider interface {
	FetchRoute(ctx context.Context, origin, dest domain.Coordinate, profile domain.TransportProfile) (*domain.RouteResult, error)
}

// RouteCache memoizes completed route computations. Keys are derived from the
// origin (rounded, so GPS jitter reuses entries), the destination place and
// the profile. Only successful results are stored.
type RouteCache interface {
	Get(origin domain.Coordinate, placeID string, profile domain.TransportProfile) (*domain.RouteResult, bool)
	Put(origin domain.Coordinate, placeID string, profile domain.TransportProfile, result *domain.RouteResult)
}

// CacheService provides shared read-through caching of serialized values.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRouteComputed(ctx context.Context, event *domain.RouteComputedEvent) error
}
