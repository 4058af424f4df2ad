package cache

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/campuskit/localguide/internal/core/domain"
	"github.com/campuskit/localguide/internal/pkg/metrics"
)

type routeKey struct {
	origin  string
	placeID string
	profile domain.TransportProfile
}

type routeEntry struct {
	result    domain.RouteResult
	expiresAt time.Time
}

// RouteCache memoizes successful route computations with a TTL and an LRU
// capacity bound. Origins are rounded to a fixed precision before keying so
// near-duplicate coordinates (GPS jitter) share entries. Safe for concurrent
// use across requests.
type RouteCache struct {
	entries   *lru.Cache[routeKey, routeEntry]
	ttl       time.Duration
	precision int
	clock     clock.Clock
}

// New creates a RouteCache backed by the wall clock.
func New(capacity int, ttl time.Duration, precision int) (*RouteCache, error) {
	return NewWithClock(capacity, ttl, precision, clock.New())
}

// NewWithClock creates a RouteCache with an injected clock so tests can
// control expiry.
func NewWithClock(capacity int, ttl time.Duration, precision int, clk clock.Clock) (*RouteCache, error) {
	entries, err := lru.NewWithEvict[routeKey, routeEntry](capacity, func(routeKey, routeEntry) {
		metrics.CacheEvictions.WithLabelValues("route").Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("route cache: %w", err)
	}
	return &RouteCache{
		entries:   entries,
		ttl:       ttl,
		precision: precision,
		clock:     clk,
	}, nil
}

// Get returns the cached result for the key, treating expired entries as
// misses and evicting them lazily.
func (c *RouteCache) Get(origin domain.Coordinate, placeID string, profile domain.TransportProfile) (*domain.RouteResult, bool) {
	key := c.key(origin, placeID, profile)

	entry, ok := c.entries.Get(key)
	if !ok {
		metrics.CacheMisses.WithLabelValues("route").Inc()
		return nil, false
	}
	if !c.clock.Now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		metrics.CacheMisses.WithLabelValues("route").Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("route").Inc()
	result := entry.result
	return &result, true
}

// Put stores a successful result. Re-caching the same key is harmless.
func (c *RouteCache) Put(origin domain.Coordinate, placeID string, profile domain.TransportProfile, result *domain.RouteResult) {
	if result == nil {
		return
	}
	c.entries.Add(c.key(origin, placeID, profile), routeEntry{
		result:    *result,
		expiresAt: c.clock.Now().Add(c.ttl),
	})
}

// Len reports the number of live entries, counting expired ones until they
// are lazily evicted.
func (c *RouteCache) Len() int {
	return c.entries.Len()
}

func (c *RouteCache) key(origin domain.Coordinate, placeID string, profile domain.TransportProfile) routeKey {
	return routeKey{
		origin:  fmt.Sprintf("%.*f,%.*f", c.precision, origin.Lat, c.precision, origin.Lng),
		placeID: placeID,
		profile: profile,
	}
}
