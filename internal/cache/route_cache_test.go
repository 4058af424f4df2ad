package cache

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/campuskit/localguide/internal/core/domain"
)

func testResult(profile domain.TransportProfile, distance float64) *domain.RouteResult {
	return &domain.RouteResult{
		Profile:         profile,
		DistanceMeters:  distance,
		DurationSeconds: 60,
		Steps:           []domain.RouteStep{{Instruction: "Head north", DistanceMeters: distance}},
	}
}

func TestRouteCache_PutGet(t *testing.T) {
	c, err := New(8, 5*time.Minute, 4)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	origin := domain.Coordinate{Lat: 25.4358, Lng: 81.8463}
	c.Put(origin, "place-1", domain.ProfileWalking, testResult(domain.ProfileWalking, 2300))

	got, ok := c.Get(origin, "place-1", domain.ProfileWalking)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.DistanceMeters != 2300 {
		t.Errorf("expected distance 2300, got %f", got.DistanceMeters)
	}

	if _, ok := c.Get(origin, "place-1", domain.ProfileDriving); ok {
		t.Error("expected miss for different profile")
	}
	if _, ok := c.Get(origin, "place-2", domain.ProfileWalking); ok {
		t.Error("expected miss for different place")
	}
}

func TestRouteCache_RoundedOriginSharesEntry(t *testing.T) {
	c, err := New(8, 5*time.Minute, 4)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	c.Put(domain.Coordinate{Lat: 25.43581, Lng: 81.84632}, "place-1", domain.ProfileWalking,
		testResult(domain.ProfileWalking, 2300))

	// Same point within ~10m jitter rounds to the same key.
	if _, ok := c.Get(domain.Coordinate{Lat: 25.43579, Lng: 81.84628}, "place-1", domain.ProfileWalking); !ok {
		t.Error("expected jittered origin to hit the same entry")
	}

	// A genuinely different origin must not.
	if _, ok := c.Get(domain.Coordinate{Lat: 25.44, Lng: 81.85}, "place-1", domain.ProfileWalking); ok {
		t.Error("expected miss for a distinct origin")
	}
}

func TestRouteCache_Expiry(t *testing.T) {
	clk := clock.NewMock()
	c, err := NewWithClock(8, 5*time.Minute, 4, clk)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	origin := domain.Coordinate{Lat: 25.4358, Lng: 81.8463}
	c.Put(origin, "place-1", domain.ProfileWalking, testResult(domain.ProfileWalking, 2300))

	clk.Add(4 * time.Minute)
	if _, ok := c.Get(origin, "place-1", domain.ProfileWalking); !ok {
		t.Fatal("entry expired too early")
	}

	clk.Add(2 * time.Minute)
	if _, ok := c.Get(origin, "place-1", domain.ProfileWalking); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected lazy eviction of expired entry, len = %d", c.Len())
	}
}

func TestRouteCache_LRUEviction(t *testing.T) {
	c, err := New(2, 5*time.Minute, 4)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	origin := domain.Coordinate{Lat: 25.4358, Lng: 81.8463}
	c.Put(origin, "place-1", domain.ProfileWalking, testResult(domain.ProfileWalking, 1))
	c.Put(origin, "place-2", domain.ProfileWalking, testResult(domain.ProfileWalking, 2))

	// Touch place-1 so place-2 is least recently used.
	if _, ok := c.Get(origin, "place-1", domain.ProfileWalking); !ok {
		t.Fatal("expected hit on place-1")
	}

	c.Put(origin, "place-3", domain.ProfileWalking, testResult(domain.ProfileWalking, 3))

	if _, ok := c.Get(origin, "place-2", domain.ProfileWalking); ok {
		t.Error("expected LRU entry place-2 to be evicted")
	}
	if _, ok := c.Get(origin, "place-1", domain.ProfileWalking); !ok {
		t.Error("expected place-1 to survive eviction")
	}
	if _, ok := c.Get(origin, "place-3", domain.ProfileWalking); !ok {
		t.Error("expected place-3 to be cached")
	}
}

func TestRouteCache_CachedResultIsCopied(t *testing.T) {
	c, err := New(8, 5*time.Minute, 4)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	origin := domain.Coordinate{Lat: 25.4358, Lng: 81.8463}
	c.Put(origin, "place-1", domain.ProfileWalking, testResult(domain.ProfileWalking, 2300))

	first, _ := c.Get(origin, "place-1", domain.ProfileWalking)
	first.DistanceMeters = 0

	second, _ := c.Get(origin, "place-1", domain.ProfileWalking)
	if second.DistanceMeters != 2300 {
		t.Errorf("cached result mutated through a returned pointer: %f", second.DistanceMeters)
	}
}
