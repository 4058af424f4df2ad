package http

import (
	"errors"
	"strings"

	"github.com/campuskit/localguide/internal/core/domain"
	"github.com/gofiber/fiber/v2"
)

// Wire DTOs. The web-application layer expects camelCase fields, so responses
// are shaped here instead of leaking the domain JSON tags.

type placePayload struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Distance *float64 `json:"distanceMeters,omitempty"`
}

type stepPayload struct {
	Instruction    string  `json:"instruction"`
	DistanceMeters float64 `json:"distanceMeters"`
}

type routePayload struct {
	DistanceMeters  float64       `json:"distanceMeters"`
	DurationSeconds float64       `json:"durationSeconds"`
	Steps           []stepPayload `json:"steps"`
}

type coordinatePayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type bundlePayload struct {
	Origin      coordinatePayload    `json:"origin"`
	Destination placePayload         `json:"destination"`
	Results     map[string]fiber.Map `json:"results"`
}

func toPlacePayload(p *domain.Place) placePayload {
	return placePayload{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Lat:      p.Location.Lat,
		Lng:      p.Location.Lng,
		Distance: p.Distance,
	}
}

func toBundlePayload(b *domain.RouteBundle) bundlePayload {
	results := make(map[string]fiber.Map, len(b.Results))
	for profile, outcome := range b.Results {
		if outcome.Route != nil {
			steps := make([]stepPayload, len(outcome.Route.Steps))
			for i, s := range outcome.Route.Steps {
				steps[i] = stepPayload{Instruction: s.Instruction, DistanceMeters: s.DistanceMeters}
			}
			results[string(profile)] = fiber.Map{
				"distanceMeters":  outcome.Route.DistanceMeters,
				"durationSeconds": outcome.Route.DurationSeconds,
				"steps":           steps,
			}
		} else {
			results[string(profile)] = fiber.Map{"error": outcome.Failure}
		}
	}
	return bundlePayload{
		Origin:      coordinatePayload{Lat: b.Origin.Lat, Lng: b.Origin.Lng},
		Destination: toPlacePayload(&b.Destination),
		Results:     results,
	}
}

// parseOrigin reads and validates lat/lng query parameters.
func parseOrigin(c *fiber.Ctx) (domain.Coordinate, bool) {
	lat := c.QueryFloat("lat", 999)
	lng := c.QueryFloat("lng", 999)
	origin := domain.Coordinate{Lat: lat, Lng: lng}
	return origin, origin.Valid()
}

// parseProfiles reads the optional comma-separated profiles parameter.
// An empty parameter yields nil, which means "all configured profiles".
func parseProfiles(c *fiber.Ctx) ([]domain.TransportProfile, error) {
	raw := c.Query("profiles")
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	profiles := make([]domain.TransportProfile, 0, len(parts))
	for _, part := range parts {
		p, err := domain.ParseProfile(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// NearestPlaceHandler finds the closest place of a category to the origin.
func NearestPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category := c.Query("category")
		if category == "" {
			return errBadRequest(c, "category query parameter is required")
		}
		origin, ok := parseOrigin(c)
		if !ok {
			return errBadRequest(c, "lat and lng must be valid coordinates")
		}

		place, err := deps.Catalog.Nearest(c.Context(), category, origin)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return errBadRequest(c, err.Error())
			}
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "no place found for category "+category)
			}
			return errInternal(c, err.Error())
		}

		return c.JSON(fiber.Map{"place": toPlacePayload(place)})
	}
}

// RoutesHandler computes a multi-profile route bundle to a known place.
func RoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		placeID := c.Query("placeId")
		if placeID == "" {
			return errBadRequest(c, "placeId query parameter is required")
		}
		origin, ok := parseOrigin(c)
		if !ok {
			return errBadRequest(c, "lat and lng must be valid coordinates")
		}
		profiles, err := parseProfiles(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		bundle, err := deps.Guide.RoutesTo(c.Context(), placeID, origin, profiles)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidInput):
				return errBadRequest(c, err.Error())
			case errors.Is(err, domain.ErrNotFound):
				return errNotFound(c, "place not found")
			case errors.Is(err, domain.ErrTotalRouteFailure):
				return errBadGateway(c, "every requested profile failed")
			default:
				return errInternal(c, err.Error())
			}
		}

		return c.JSON(toBundlePayload(bundle))
	}
}

// NearestRouteHandler combines the nearest-place lookup with route
// computation: one call returns the closest place of a category plus
// routes to it for every requested profile.
func NearestRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category := c.Query("category")
		if category == "" {
			return errBadRequest(c, "category query parameter is required")
		}
		origin, ok := parseOrigin(c)
		if !ok {
			return errBadRequest(c, "lat and lng must be valid coordinates")
		}
		profiles, err := parseProfiles(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		place, bundle, err := deps.Guide.NearestRoute(c.Context(), category, origin, profiles)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidInput):
				return errBadRequest(c, err.Error())
			case errors.Is(err, domain.ErrNotFound):
				return errNotFound(c, "no place found for category "+category)
			case errors.Is(err, domain.ErrTotalRouteFailure):
				return errBadGateway(c, "every requested profile failed")
			default:
				return errInternal(c, err.Error())
			}
		}

		return c.JSON(fiber.Map{
			"place":  toPlacePayload(place),
			"bundle": toBundlePayload(bundle),
		})
	}
}

// CategoriesHandler lists all place categories.
func CategoriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		categories, err := deps.Catalog.Categories(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(categories)
	}
}

// GetPlaceHandler returns a single place by ID.
func GetPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "place id is required")
		}
		place, err := deps.Catalog.GetPlace(c.Context(), id)
		if err != nil {
			return errNotFound(c, "place not found")
		}
		return c.JSON(fiber.Map{"place": toPlacePayload(place)})
	}
}

// ListPlacesHandler returns places of a category, paginated.
func ListPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category := c.Query("category")
		if category == "" {
			return errBadRequest(c, "category query parameter is required")
		}

		places, err := deps.Catalog.ListByCategory(c.Context(), category)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		offset, limit := pageParams(c)

		total := len(places)
		if offset >= total {
			places = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			places = places[offset:end]
		}

		payload := make([]placePayload, len(places))
		for i := range places {
			payload[i] = toPlacePayload(&places[i])
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: payload, Pagination: pg})
	}
}

// CatalogStats holds row counts from the catalog tables.
type CatalogStats struct {
	Places     int    `json:"places"`
	Categories int    `json:"categories"`
	LastSeed   string `json:"last_seed,omitempty"`
}

// CatalogStatsHandler returns row counts from the catalog tables.
func CatalogStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats CatalogStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM places),
				(SELECT count(*) FROM categories),
				COALESCE((SELECT max(created_at)::text FROM places), '')
		`)
		if err := row.Scan(&stats.Places, &stats.Categories, &stats.LastSeed); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}
