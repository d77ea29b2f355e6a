package cache

import (
	"context"
	"fmt"
	"time"

	"bcchrates/internal/adapters"

	"github.com/dgraph-io/ristretto"
)

// RistrettoObservationCache remembers per-day observations that the provider
// has already published. A published observation never changes, so cached
// hits can short-circuit repeated fallback walks over the same days. Misses
// are never cached: a day may be published later the same day.
type RistrettoObservationCache struct {
	cache *ristretto.Cache
}

func NewObservationCache(maxItems int64) (*RistrettoObservationCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create observation cache failed: %w", err)
	}
	return &RistrettoObservationCache{cache: c}, nil
}

func (c *RistrettoObservationCache) Get(currency string, day time.Time) (float64, bool) {
	if v, ok := c.cache.Get(toKey(currency, day)); ok {
		value, ok := v.(float64)
		return value, ok
	}
	return 0, false
}

func (c *RistrettoObservationCache) Set(currency string, day time.Time, value float64) {
	c.cache.Set(toKey(currency, day), value, 1)
}

func (c *RistrettoObservationCache) Close() { c.cache.Close() }

func toKey(currency string, day time.Time) string {
	return currency + ":" + day.Format("2006-01-02")
}

// CachingProvider decorates a RateProvider with an observation cache.
type CachingProvider struct {
	provider adapters.RateProvider
	cache    adapters.ObservationCache
}

func NewCachingProvider(provider adapters.RateProvider, cache adapters.ObservationCache) *CachingProvider {
	return &CachingProvider{provider: provider, cache: cache}
}

func (p *CachingProvider) Fetch(ctx context.Context, currency string, day time.Time) (float64, error) {
	if value, ok := p.cache.Get(currency, day); ok {
		return value, nil
	}
	value, err := p.provider.Fetch(ctx, currency, day)
	if err != nil {
		return 0, err
	}
	p.cache.Set(currency, day, value)
	return value, nil
}
