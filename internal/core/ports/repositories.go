package ports

import (
	"context"

	"github.com/campuskit/localguide/internal/core/domain"
)

// PlaceRepository persists places. Reads are the only operations the routing
// core performs; the upserts exist for the catalog-management boundary and
// the seeder.
type PlaceRepository interface {
	Upsert(ctx context.Context, place *domain.Place) error
	UpsertBatch(ctx context.Context, places []domain.Place) error
	GetByID(ctx context.Context, id string) (*domain.Place, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Place, error)
	List(ctx context.Context) ([]domain.Place, error)
}

// CategoryRepository persists the canonical category reference data.
type CategoryRepository interface {
	Upsert(ctx context.Context, category *domain.Category) error
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}
