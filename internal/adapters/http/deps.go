package http

import (
	"github.com/campuskit/localguide/internal/adapters/postgres"
	"github.com/campuskit/localguide/internal/adapters/valkey"
	"github.com/campuskit/localguide/internal/core/usecases"
	"github.com/nats-io/nats.go"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Catalog *usecases.CatalogService
	Guide   *usecases.GuideService
	NATS    *nats.Conn
	DB      *postgres.DB
	Cache   *valkey.Cache
}
