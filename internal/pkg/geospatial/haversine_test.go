package geospatial

import (
	"math"
	"testing"
)

func TestHaversine_ZeroDistance(t *testing.T) {
	d := Haversine(25.4568200, 81.8466717, 25.4568200, 81.8466717)
	if d != 0 {
		t.Errorf("expected 0 meters for identical points, got %f", d)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Allahabad Junction to MNNIT campus, roughly 2.3 km apart.
	d := Haversine(25.4358, 81.8463, 25.4568200, 81.8466717)
	if d < 2000 || d > 2700 {
		t.Errorf("expected ~2300 meters, got %f", d)
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	a := Haversine(43.263, -2.935, 25.4358, 81.8463)
	b := Haversine(25.4358, 81.8463, 43.263, -2.935)
	if math.Abs(a-b) > 1e-6 {
		t.Errorf("haversine not symmetric: %f vs %f", a, b)
	}
}
