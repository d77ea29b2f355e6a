package rate

import (
	"context"
	"fmt"
	"math"
	"time"

	"bcchrates/internal/domain"

	"github.com/sirupsen/logrus"
)

// Service is the read path consumed by the HTTP layer.
type Service struct {
	cache *Cache
	now   func() time.Time
}

func NewService(cache *Cache) *Service {
	return &Service{cache: cache, now: time.Now}
}

// Conversion is the result of converting an amount using a current rate.
type Conversion struct {
	OriginalAmount  float64
	Currency        string
	ConvertedAmount float64
	Rate            float64
	LastUpdated     time.Time
}

// GetCurrentRates returns the cached snapshot, refreshing first when it is
// stale. A failed refresh falls back to the last known good snapshot; the
// error surfaces only when no refresh has ever succeeded.
func (s *Service) GetCurrentRates(ctx context.Context) (domain.RateSet, error) {
	snapshot := s.cache.Read()
	if !s.cache.IsStale(s.now()) {
		return snapshot, nil
	}

	fresh, err := s.cache.Refresh(ctx)
	if err != nil {
		if snapshot.LastUpdated.IsZero() {
			return domain.RateSet{}, err
		}
		logrus.WithError(err).Warn("Refresh failed, serving last known rates")
		return snapshot, nil
	}
	return fresh, nil
}

// Convert computes round(amount / rate) for the currency's current rate,
// rounding half away from zero.
func (s *Service) Convert(ctx context.Context, amount float64, currency string) (*Conversion, error) {
	set, err := s.GetCurrentRates(ctx)
	if err != nil {
		return nil, err
	}

	rate, ok := set.Rates[currency]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, currency)
	}
	if rate == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRateUnavailable, currency)
	}

	return &Conversion{
		OriginalAmount:  amount,
		Currency:        currency,
		ConvertedAmount: math.Round(amount / *rate),
		Rate:            *rate,
		LastUpdated:     set.LastUpdated,
	}, nil
}
