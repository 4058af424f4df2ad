package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campuskit/localguide/internal/core/domain"
	"github.com/campuskit/localguide/internal/core/usecases"
)

func guideFixture(t *testing.T, provider *mockProvider) *usecases.GuideService {
	t.Helper()

	placeRepo := &mockPlaceRepo{
		listByCategoryFn: func(ctx context.Context, category string) ([]domain.Place, error) {
			if category != "Healthcare" {
				return nil, nil
			}
			return []domain.Place{aggPlace}, nil
		},
		getByIDFn: func(ctx context.Context, id string) (*domain.Place, error) {
			if id == aggPlace.ID {
				p := aggPlace
				return &p, nil
			}
			return nil, errors.New("no rows")
		},
	}

	catalog := usecases.NewCatalogService(placeRepo, &mockCategoryRepo{}, nil)
	aggregator := usecases.NewRouteAggregator(provider, newFakeRouteCache(), nil, 5*time.Second)
	return usecases.NewGuideService(catalog, aggregator, nil)
}

func TestGuideService_NearestRoute_DefaultsToAllProfiles(t *testing.T) {
	svc := guideFixture(t, happyProvider())

	place, bundle, err := svc.NearestRoute(context.Background(), "Healthcare", aggOrigin, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place.ID != aggPlace.ID {
		t.Errorf("expected place %s, got %s", aggPlace.ID, place.ID)
	}
	if len(bundle.Results) != 3 {
		t.Errorf("expected the full default profile set, got %d entries", len(bundle.Results))
	}
}

func TestGuideService_NearestRoute_NotFound(t *testing.T) {
	svc := guideFixture(t, happyProvider())

	_, _, err := svc.NearestRoute(context.Background(), "Cinema", aggOrigin, nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGuideService_NearestRoute_InvalidCoordinate(t *testing.T) {
	svc := guideFixture(t, happyProvider())

	_, _, err := svc.NearestRoute(context.Background(), "Healthcare", domain.Coordinate{Lat: -95, Lng: 0}, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGuideService_NearestRoute_TotalFailure(t *testing.T) {
	provider := newMockProvider(func(ctx context.Context, origin, dest domain.Coordinate, profile domain.TransportProfile) (*domain.RouteResult, error) {
		return nil, domain.ErrProviderUnavailable
	})
	svc := guideFixture(t, provider)

	place, bundle, err := svc.NearestRoute(context.Background(), "Healthcare", aggOrigin, nil)
	if !errors.Is(err, domain.ErrTotalRouteFailure) {
		t.Fatalf("expected ErrTotalRouteFailure, got %v", err)
	}
	// The bundle still travels with the error so callers can report reasons.
	if place == nil || bundle == nil {
		t.Fatal("expected place and bundle alongside the composite error")
	}
	for profile, outcome := range bundle.Results {
		if outcome.Failure != "ProviderUnavailable" {
			t.Errorf("profile %s: expected ProviderUnavailable, got %+v", profile, outcome)
		}
	}
}

func TestGuideService_NearestRoute_PartialSuccessIsNotAnError(t *testing.T) {
	provider := newMockProvider(func(ctx context.Context, origin, dest domain.Coordinate, profile domain.TransportProfile) (*domain.RouteResult, error) {
		if profile == domain.ProfileCycling {
			return nil, domain.ErrProviderTimeout
		}
		return &domain.RouteResult{Profile: profile, DistanceMeters: 2100, DurationSeconds: 420}, nil
	})
	svc := guideFixture(t, provider)

	_, bundle, err := svc.NearestRoute(context.Background(), "Healthcare", aggOrigin, nil)
	if err != nil {
		t.Fatalf("partial success must not error: %v", err)
	}
	if bundle.Succeeded() != 2 {
		t.Errorf("expected 2 successes, got %d", bundle.Succeeded())
	}
	if bundle.Results[domain.ProfileCycling].Failure != "ProviderTimeout" {
		t.Errorf("expected cycling ProviderTimeout, got %+v", bundle.Results[domain.ProfileCycling])
	}
}

func TestGuideService_RoutesTo(t *testing.T) {
	svc := guideFixture(t, happyProvider())

	bundle, err := svc.RoutesTo(context.Background(), aggPlace.ID, aggOrigin,
		[]domain.TransportProfile{domain.ProfileWalking})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bundle.Results) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(bundle.Results))
	}
	if bundle.Destination.ID != aggPlace.ID {
		t.Errorf("expected destination %s, got %s", aggPlace.ID, bundle.Destination.ID)
	}
}

func TestGuideService_RoutesTo_UnknownPlace(t *testing.T) {
	svc := guideFixture(t, happyProvider())

	_, err := svc.RoutesTo(context.Background(), "missing", aggOrigin, nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGuideService_RoutesTo_InvalidCoordinate(t *testing.T) {
	svc := guideFixture(t, happyProvider())

	_, err := svc.RoutesTo(context.Background(), aggPlace.ID, domain.Coordinate{Lat: 0, Lng: 200}, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
