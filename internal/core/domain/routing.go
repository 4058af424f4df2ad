package domain

import "fmt"

// TransportProfile is a mode of travel affecting route computation.
type TransportProfile string

const (
	ProfileWalking TransportProfile = "walking"
	ProfileDriving TransportProfile = "driving"
	ProfileCycling TransportProfile = "cycling"
)

// DefaultProfiles is the full profile set used when a query names none.
var DefaultProfiles = []TransportProfile{ProfileWalking, ProfileDriving, ProfileCycling}

// ParseProfile validates a user-supplied profile name.
func ParseProfile(s string) (TransportProfile, error) {
	switch TransportProfile(s) {
	case ProfileWalking, ProfileDriving, ProfileCycling:
		return TransportProfile(s), nil
	}
	return "", fmt.Errorf("%w: unknown profile %q", ErrInvalidInput, s)
}

// RouteStep is a single human-readable maneuver along a route.
type RouteStep struct {
	Instruction    string  `json:"instruction"`
	DistanceMeters float64 `json:"distance_meters"`
}

// RouteResult is one computed route for a single transport profile.
// Steps are materialized once, in travel order.
type RouteResult struct {
	Profile         TransportProfile `json:"profile"`
	DistanceMeters  float64          `json:"distance_meters"`
	DurationSeconds float64          `json:"duration_seconds"`
	Steps           []RouteStep      `json:"steps"`
}

// ProfileOutcome is a bundle entry: either a route or the reason it failed.
type ProfileOutcome struct {
	Route   *RouteResult `json:"route,omitempty"`
	Failure string       `json:"failure,omitempty"` // error kind, empty on success
}

// RouteBundle is the aggregated per-profile outcome for one nearest-place
// query. Every requested profile has exactly one entry.
type RouteBundle struct {
	Origin      Coordinate                          `json:"origin"`
	Destination Place                               `json:"destination"`
	Results     map[TransportProfile]ProfileOutcome `json:"results"`
}

// Succeeded counts the profiles that produced a route.
func (b *RouteBundle) Succeeded() int {
	n := 0
	for _, o := range b.Results {
		if o.Route != nil {
			n++
		}
	}
	return n
}

// AllFailed reports whether every requested profile failed.
func (b *RouteBundle) AllFailed() bool {
	return b.Succeeded() == 0
}
