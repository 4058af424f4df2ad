package domain

import (
	"time"
)

// Category is a classification bucket for places (e.g. Healthcare, Food).
// The canonical set is fixed reference data loaded by the seeder.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CanonicalCategories is the fixed seed set of place categories.
var CanonicalCategories = []string{
	"Healthcare",
	"Tech Support",
	"Food",
	"Cinema",
	"Arcades",
	"Local Hotspots",
	"General Stores",
	"Clothing",
	"Logistics",
	"Miscellaneous",
}

// Place is a named point of interest with a category and a coordinate.
// Places are immutable once created; only the catalog-management side writes them.
type Place struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	Location      Coordinate `json:"location"`
	InstitutionID string     `json:"institution_id,omitempty"`
	Distance      *float64   `json:"distance,omitempty"` // computed field, meters from query origin
	CreatedAt     time.Time  `json:"created_at"`
}
