package rate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bcchrates/internal/adapters"
	"bcchrates/internal/domain"
	"bcchrates/internal/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Cache owns the current RateSet. It is replaced atomically and only by a
// fully successful refresh; a refresh that fails for any currency leaves
// the previous snapshot untouched.
type Cache struct {
	resolver  adapters.RateResolver
	codes     []string
	threshold time.Duration
	m         *metrics.Metrics

	mu      sync.RWMutex
	current domain.RateSet

	group singleflight.Group
}

func NewCache(resolver adapters.RateResolver, codes []string, threshold time.Duration, m *metrics.Metrics) *Cache {
	return &Cache{
		resolver:  resolver,
		codes:     codes,
		threshold: threshold,
		m:         m,
		current:   domain.NewRateSet(codes),
	}
}

// Read returns the current snapshot without triggering any fetch.
func (c *Cache) Read() domain.RateSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Clone()
}

// IsStale reports whether the snapshot must be refreshed before serving:
// either no refresh has ever succeeded, or its age strictly exceeds the
// threshold. Age exactly equal to the threshold counts as fresh.
func (c *Cache) IsStale(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current.LastUpdated.IsZero() {
		return true
	}
	return now.Sub(c.current.LastUpdated) > c.threshold
}

// Refresh resolves every configured currency and, if all succeed, commits
// the new snapshot. Concurrent callers (a stale read racing a scheduler
// tick) share a single in-flight refresh and its result.
func (c *Cache) Refresh(ctx context.Context) (domain.RateSet, error) {
	v, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		return c.doRefresh(ctx)
	})
	if err != nil {
		return domain.RateSet{}, err
	}
	return v.(domain.RateSet), nil
}

func (c *Cache) doRefresh(ctx context.Context) (domain.RateSet, error) {
	execID := uuid.NewString()
	start := time.Now()
	logrus.Infof("Refreshing rates for %d currencies; execID: %s", len(c.codes), execID)

	next := domain.NewRateSet(c.codes)
	for _, code := range c.codes {
		value, err := c.resolver.Resolve(ctx, code)
		if err != nil {
			// All-or-nothing: one unresolved currency fails the whole
			// refresh and the previous snapshot keeps being served.
			c.m.ObserveRefresh(metrics.OutcomeFailure, time.Since(start))
			return domain.RateSet{}, fmt.Errorf("refresh rates: %w", err)
		}
		v := value
		next.Rates[code] = &v
	}
	next.LastUpdated = time.Now().UTC()

	c.mu.Lock()
	c.current = next
	c.mu.Unlock()

	c.m.ObserveRefresh(metrics.OutcomeSuccess, time.Since(start))
	logrus.Infof("Rates refreshed in %s; execID: %s", time.Since(start).Round(time.Millisecond), execID)
	return next.Clone(), nil
}
