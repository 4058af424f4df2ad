package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the routing core. Provider errors are recorded per
// profile inside a RouteBundle and never escape the aggregator; only
// ErrInvalidInput, ErrNotFound, and ErrTotalRouteFailure reach the edge.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoRouteFound        = errors.New("no route found")
	ErrProviderTimeout     = errors.New("provider timeout")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrMalformedResponse   = errors.New("malformed provider response")
	ErrTotalRouteFailure   = errors.New("all requested profiles failed")
)

// FailureKind maps a provider error onto its external error-kind name.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrNoRouteFound):
		return "NoRouteFound"
	case errors.Is(err, ErrProviderTimeout):
		return "ProviderTimeout"
	case errors.Is(err, ErrMalformedResponse):
		return "MalformedResponse"
	default:
		return "ProviderUnavailable"
	}
}

// TotalFailure builds the composite error for a bundle where every profile
// failed, naming each profile's reason.
func TotalFailure(b *RouteBundle) error {
	reasons := make([]string, 0, len(b.Results))
	for profile, outcome := range b.Results {
		reasons = append(reasons, fmt.Sprintf("%s: %s", profile, outcome.Failure))
	}
	sort.Strings(reasons)
	return fmt.Errorf("%w (%s)", ErrTotalRouteFailure, strings.Join(reasons, ", "))
}
