// Package cache implements the process-local result cache that sits in front
// of the upstream catalog API.
package cache

import (
	"fmt"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codyseavey/tcg-binder/internal/clock"
	"github.com/codyseavey/tcg-binder/internal/metrics"
)

// TTLs by resource class.
const (
	TTLSets          = 24 * time.Hour
	TTLMeta          = 24 * time.Hour
	TTLCards         = 15 * time.Minute
	TTLCurated       = 6 * time.Hour
	TTLCuratedLatest = 4 * TTLCurated
)

type entry struct {
	value     any
	expiresAt time.Time
}

// ResultCache maps request keys to immutable payloads with an absolute expiry.
// Expired entries are hidden from Get but stay readable through GetStale until
// they are overwritten or pushed out by the capacity bound.
type ResultCache struct {
	entries *lru.Cache[string, entry]
	clock   clock.Clock
}

func New(maxEntries int, clk clock.Clock) (*ResultCache, error) {
	if clk == nil {
		clk = clock.Real{}
	}
	entries, err := lru.New[string, entry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	return &ResultCache{entries: entries, clock: clk}, nil
}

// Get returns the payload for key if present and not expired.
func (c *ResultCache) Get(key string) (any, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// GetStale returns the payload for key regardless of expiry.
func (c *ResultCache) GetStale(key string) (any, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. Concurrent writers to one key are
// last-write-wins.
func (c *ResultCache) Set(key string, value any, ttl time.Duration) {
	c.entries.Add(key, entry{value: value, expiresAt: c.clock.Now().Add(ttl)})
	metrics.CacheEntries.Set(float64(c.entries.Len()))
}

func (c *ResultCache) Len() int {
	return c.entries.Len()
}

// Purge drops every entry, fresh or stale.
func (c *ResultCache) Purge() {
	c.entries.Purge()
	metrics.CacheEntries.Set(0)
}

// Lookup is a typed Get.
func Lookup[T any](c *ResultCache, key string) (T, bool) {
	return typed[T](c.Get(key))
}

// LookupStale is a typed GetStale.
func LookupStale[T any](c *ResultCache, key string) (T, bool) {
	return typed[T](c.GetStale(key))
}

func typed[T any](v any, ok bool) (T, bool) {
	var zero T
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Key derives a cache key from the endpoint identity and its parameters.
// url.Values.Encode sorts by parameter name, so logically identical requests
// collide regardless of the order parameters were supplied in.
func Key(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + ":" + params.Encode()
}
