package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bcchrates/internal/adapters"
	"bcchrates/internal/domain"
	"bcchrates/internal/metrics"

	"github.com/sirupsen/logrus"
)

const defaultFallbackDays = 7

// FallbackResolver finds the most recent published rate for a currency by
// starting at the anchor date and walking backward one calendar day at a
// time. The first day with data wins.
type FallbackResolver struct {
	provider adapters.RateProvider
	window   int // candidate days, anchor included
	m        *metrics.Metrics
	now      func() time.Time
}

func NewFallbackResolver(provider adapters.RateProvider, window int, m *metrics.Metrics) *FallbackResolver {
	if window <= 0 {
		window = defaultFallbackDays
	}
	return &FallbackResolver{
		provider: provider,
		window:   window,
		m:        m,
		now:      time.Now,
	}
}

func (r *FallbackResolver) Resolve(ctx context.Context, currency string) (float64, error) {
	day := anchorDate(r.now().UTC())

	for attempt := 0; attempt < r.window; attempt++ {
		value, err := r.provider.Fetch(ctx, currency, day)
		if err == nil {
			r.m.CountProviderRequest(metrics.OutcomeSuccess)
			r.m.ObserveFallbackDepth(attempt)
			return value, nil
		}

		if errors.Is(err, domain.ErrNoDataForDate) {
			r.m.CountProviderRequest(metrics.OutcomeNoData)
		} else {
			r.m.CountProviderRequest(metrics.OutcomeFailure)
		}
		logrus.WithError(err).Debugf("No rate for %s on %s, trying previous day", currency, day.Format("2006-01-02"))

		if ctx.Err() != nil {
			return 0, fmt.Errorf("resolve %s: %w", currency, ctx.Err())
		}
		day = day.AddDate(0, 0, -1)
	}

	return 0, fmt.Errorf("%w: %s after %d days", domain.ErrFallbackExhausted, currency, r.window)
}

// anchorDate maps a point in time to the first candidate day of a fallback
// search: Saturday to the preceding Friday, Sunday to the Friday before
// that, any other day to itself. The walk below the anchor does not skip
// weekends; those days fail fast with no data.
func anchorDate(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch day.Weekday() {
	case time.Saturday:
		return day.AddDate(0, 0, -1)
	case time.Sunday:
		return day.AddDate(0, 0, -2)
	default:
		return day
	}
}
