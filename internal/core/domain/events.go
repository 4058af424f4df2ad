package domain

import "time"

// RouteComputedEvent is published after every bundle computation so
// dashboards can watch guide traffic and failure rates live.
type RouteComputedEvent struct {
	PlaceID    string                      `json:"place_id"`
	Category   string                      `json:"category"`
	Origin     Coordinate                  `json:"origin"`
	Outcomes   map[TransportProfile]string `json:"outcomes"` // "ok" or the failure kind
	ElapsedMS  int64                       `json:"elapsed_ms"`
	ComputedAt time.Time                   `json:"computed_at"`
}
