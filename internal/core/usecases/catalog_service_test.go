package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/campuskit/localguide/internal/core/domain"
	"github.com/campuskit/localguide/internal/core/usecases"
)

// --- Mock PlaceRepository ---

type mockPlaceRepo struct {
	listByCategoryFn func(ctx context.Context, category string) ([]domain.Place, error)
	getByIDFn        func(ctx context.Context, id string) (*domain.Place, error)
	listFn           func(ctx context.Context) ([]domain.Place, error)
}

func (m *mockPlaceRepo) Upsert(ctx context.Context, p *domain.Place) error       { return nil }
func (m *mockPlaceRepo) UpsertBatch(ctx context.Context, p []domain.Place) error { return nil }

func (m *mockPlaceRepo) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("no rows")
}

func (m *mockPlaceRepo) ListByCategory(ctx context.Context, category string) ([]domain.Place, error) {
	if m.listByCategoryFn != nil {
		return m.listByCategoryFn(ctx, category)
	}
	return nil, nil
}

func (m *mockPlaceRepo) List(ctx context.Context) ([]domain.Place, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// --- Mock CategoryRepository ---

type mockCategoryRepo struct {
	listFn func(ctx context.Context) ([]domain.Category, error)
}

func (m *mockCategoryRepo) Upsert(ctx context.Context, c *domain.Category) error { return nil }
func (m *mockCategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return nil, errors.New("no rows")
}
func (m *mockCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// --- Tests ---

func TestCatalogService_Nearest_ReturnsClosest(t *testing.T) {
	repo := &mockPlaceRepo{
		listByCategoryFn: func(ctx context.Context, category string) ([]domain.Place, error) {
			return []domain.Place{
				{ID: "far", Category: "Food", Location: domain.Coordinate{Lat: 25.50, Lng: 81.90}},
				{ID: "near", Category: "Food", Location: domain.Coordinate{Lat: 25.4360, Lng: 81.8465}},
				{ID: "mid", Category: "Food", Location: domain.Coordinate{Lat: 25.45, Lng: 81.86}},
			}, nil
		},
	}

	svc := usecases.NewCatalogService(repo, &mockCategoryRepo{}, nil)
	place, err := svc.Nearest(context.Background(), "Food", domain.Coordinate{Lat: 25.4358, Lng: 81.8463})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place.ID != "near" {
		t.Errorf("expected place near, got %s", place.ID)
	}
	if place.Distance == nil {
		t.Fatal("expected computed distance on result")
	}
	if *place.Distance > 100 {
		t.Errorf("expected a short distance, got %f", *place.Distance)
	}
}

func TestCatalogService_Nearest_Deterministic(t *testing.T) {
	// Two places at the identical coordinate: the lexicographically smallest
	// ID must win regardless of repository order.
	loc := domain.Coordinate{Lat: 25.4568200, Lng: 81.8466717}
	repo := &mockPlaceRepo{
		listByCategoryFn: func(ctx context.Context, category string) ([]domain.Place, error) {
			return []domain.Place{
				{ID: "hc-2", Category: "Healthcare", Location: loc},
				{ID: "hc-1", Category: "Healthcare", Location: loc},
			}, nil
		},
	}

	svc := usecases.NewCatalogService(repo, &mockCategoryRepo{}, nil)
	origin := domain.Coordinate{Lat: 25.4358, Lng: 81.8463}

	for i := 0; i < 5; i++ {
		place, err := svc.Nearest(context.Background(), "Healthcare", origin)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if place.ID != "hc-1" {
			t.Fatalf("expected deterministic tie-break to hc-1, got %s", place.ID)
		}
	}
}

func TestCatalogService_Nearest_ChainedNearTies(t *testing.T) {
	// Three places staggered ~0.4m apart along the same meridian: the first
	// two are within epsilon of the true minimum, the third is 0.8m out.
	// The tie-break must only consider the first two, so "p-m" wins; a
	// pairwise comparison that lets the reference distance creep place to
	// place would hand the win to "p-a".
	repo := &mockPlaceRepo{
		listByCategoryFn: func(ctx context.Context, category string) ([]domain.Place, error) {
			return []domain.Place{
				{ID: "p-z", Category: "Food", Location: domain.Coordinate{Lat: 25.4368000, Lng: 81.8463}},
				{ID: "p-m", Category: "Food", Location: domain.Coordinate{Lat: 25.4368036, Lng: 81.8463}},
				{ID: "p-a", Category: "Food", Location: domain.Coordinate{Lat: 25.4368072, Lng: 81.8463}},
			}, nil
		},
	}

	svc := usecases.NewCatalogService(repo, &mockCategoryRepo{}, nil)
	place, err := svc.Nearest(context.Background(), "Food", domain.Coordinate{Lat: 25.4358, Lng: 81.8463})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place.ID != "p-m" {
		t.Errorf("expected p-m to win the near-tie, got %s", place.ID)
	}
}

func TestCatalogService_Nearest_OriginCoincidesWithPlace(t *testing.T) {
	origin := domain.Coordinate{Lat: 25.4568200, Lng: 81.8466717}
	repo := &mockPlaceRepo{
		listByCategoryFn: func(ctx context.Context, category string) ([]domain.Place, error) {
			return []domain.Place{
				{ID: "here", Category: "Healthcare", Location: origin},
				{ID: "away", Category: "Healthcare", Location: domain.Coordinate{Lat: 25.5, Lng: 81.9}},
			}, nil
		},
	}

	svc := usecases.NewCatalogService(repo, &mockCategoryRepo{}, nil)
	place, err := svc.Nearest(context.Background(), "Healthcare", origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place.ID != "here" {
		t.Errorf("expected coincident place, got %s", place.ID)
	}
	if *place.Distance != 0 {
		t.Errorf("expected zero distance, got %f", *place.Distance)
	}
}

func TestCatalogService_Nearest_EmptyCategory(t *testing.T) {
	repo := &mockPlaceRepo{
		listByCategoryFn: func(ctx context.Context, category string) ([]domain.Place, error) {
			return nil, nil
		},
	}

	svc := usecases.NewCatalogService(repo, &mockCategoryRepo{}, nil)
	_, err := svc.Nearest(context.Background(), "Arcades", domain.Coordinate{Lat: 25.4, Lng: 81.8})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogService_Nearest_InvalidInput(t *testing.T) {
	svc := usecases.NewCatalogService(&mockPlaceRepo{}, &mockCategoryRepo{}, nil)

	if _, err := svc.Nearest(context.Background(), "", domain.Coordinate{Lat: 25.4, Lng: 81.8}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty category, got %v", err)
	}
	if _, err := svc.Nearest(context.Background(), "Food", domain.Coordinate{Lat: 91, Lng: 81.8}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for out-of-range latitude, got %v", err)
	}
	if _, err := svc.Nearest(context.Background(), "Food", domain.Coordinate{Lat: 25.4, Lng: -181}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for out-of-range longitude, got %v", err)
	}
}

func TestCatalogService_GetPlace_NotFound(t *testing.T) {
	svc := usecases.NewCatalogService(&mockPlaceRepo{}, &mockCategoryRepo{}, nil)
	_, err := svc.GetPlace(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogService_Categories(t *testing.T) {
	repo := &mockCategoryRepo{
		listFn: func(ctx context.Context) ([]domain.Category, error) {
			out := make([]domain.Category, 0, len(domain.CanonicalCategories))
			for i, name := range domain.CanonicalCategories {
				out = append(out, domain.Category{ID: string(rune('a' + i)), Name: name})
			}
			return out, nil
		},
	}

	svc := usecases.NewCatalogService(&mockPlaceRepo{}, repo, nil)
	categories, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(categories) != 10 {
		t.Errorf("expected the 10 canonical categories, got %d", len(categories))
	}
}
