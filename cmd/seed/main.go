package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/campuskit/localguide/internal/adapters/postgres"
	"github.com/campuskit/localguide/internal/core/domain"
	"github.com/campuskit/localguide/internal/pkg/config"
)

const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS categories (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS places (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	category       TEXT NOT NULL REFERENCES categories(name),
	location       GEOGRAPHY(POINT, 4326) NOT NULL,
	institution_id TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_places_category ON places (category);
CREATE INDEX IF NOT EXISTS idx_places_location ON places USING GIST (location);
`

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: seed <schema|categories|places [file.json]|all>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "schema":
		runSchema(ctx, db)
	case "categories":
		seedCategories(ctx, db)
	case "places":
		if len(os.Args) < 3 {
			log.Fatal("usage: seed places <file.json>")
		}
		seedPlaces(ctx, db, os.Args[2])
	case "all":
		runSchema(ctx, db)
		seedCategories(ctx, db)
		if len(os.Args) >= 3 {
			seedPlaces(ctx, db, os.Args[2])
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runSchema(ctx context.Context, db *postgres.DB) {
	if _, err := db.Pool.Exec(ctx, schemaSQL); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	log.Println("schema applied")
}

// seedCategories loads the canonical category set. Existing rows keep their
// identifiers so place references stay valid across re-runs.
func seedCategories(ctx context.Context, db *postgres.DB) {
	repo := postgres.NewCategoryRepo(db)

	for _, name := range domain.CanonicalCategories {
		if existing, err := repo.GetByName(ctx, name); err == nil && existing != nil {
			fmt.Printf("OK  %s (exists)\n", name)
			continue
		}
		c := domain.Category{ID: uuid.NewString(), Name: name}
		if err := repo.Upsert(ctx, &c); err != nil {
			log.Fatalf("seed category %s: %v", name, err)
		}
		fmt.Printf("OK  %s\n", name)
	}
	log.Printf("%d categories seeded", len(domain.CanonicalCategories))
}

// seedPlaces batch-loads places from a JSON array file.
func seedPlaces(ctx context.Context, db *postgres.DB, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}

	var places []domain.Place
	if err := json.Unmarshal(data, &places); err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}

	known := make(map[string]bool, len(domain.CanonicalCategories))
	for _, name := range domain.CanonicalCategories {
		known[name] = true
	}
	for i := range places {
		p := &places[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if !known[p.Category] {
			log.Fatalf("place %s: unknown category %q", p.Name, p.Category)
		}
		if !p.Location.Valid() {
			log.Fatalf("place %s: invalid coordinate %+v", p.Name, p.Location)
		}
	}

	repo := postgres.NewPlaceRepo(db)
	if err := repo.UpsertBatch(ctx, places); err != nil {
		log.Fatalf("seed places: %v", err)
	}
	log.Printf("%d places seeded from %s", len(places), path)
}
