package rate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"bcchrates/internal/domain"

	"github.com/stretchr/testify/require"
)

func primedCache(t *testing.T, rates map[string]float64, age time.Duration, threshold time.Duration, resolver funcResolver) *Cache {
	t.Helper()
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	c := NewCache(resolver, codes, threshold, nil)

	next := domain.NewRateSet(codes)
	for code, value := range rates {
		v := value
		next.Rates[code] = &v
	}
	next.LastUpdated = time.Now().UTC().Add(-age)

	c.mu.Lock()
	c.current = next
	c.mu.Unlock()
	return c
}

func failingResolver(err error) funcResolver {
	return func(ctx context.Context, currency string) (float64, error) { return 0, err }
}

func TestService_GetCurrentRates_FreshSnapshotSkipsRefresh(t *testing.T) {
	var calls atomic.Int64
	resolver := funcResolver(func(ctx context.Context, currency string) (float64, error) {
		calls.Add(1)
		return 999, nil
	})
	c := primedCache(t, map[string]float64{"USD": 950.21}, 10*time.Second, time.Minute, resolver)
	s := NewService(c)

	set, err := s.GetCurrentRates(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 950.21, *set.Rates["USD"], 1e-9)
	require.Equal(t, int64(0), calls.Load())
}

func TestService_GetCurrentRates_StaleTriggersRefresh(t *testing.T) {
	resolver := funcResolver(func(ctx context.Context, currency string) (float64, error) {
		return 960.5, nil
	})
	c := primedCache(t, map[string]float64{"USD": 950.21}, 10*time.Minute, time.Minute, resolver)
	s := NewService(c)

	set, err := s.GetCurrentRates(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 960.5, *set.Rates["USD"], 1e-9)
	require.WithinDuration(t, time.Now(), set.LastUpdated, 5*time.Second)
}

func TestService_GetCurrentRates_FailedRefreshServesLastKnownGood(t *testing.T) {
	// RateSet {USD: 950} updated 10 minutes ago, threshold 1 minute: the
	// read refreshes, the refresh fails, and the old snapshot with its old
	// timestamp is served instead of an error.
	c := primedCache(t, map[string]float64{"USD": 950}, 10*time.Minute, time.Minute,
		failingResolver(domain.ErrFallbackExhausted))
	s := NewService(c)

	before := c.Read()
	set, err := s.GetCurrentRates(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 950, *set.Rates["USD"], 1e-9)
	require.Equal(t, before.LastUpdated, set.LastUpdated)
}

func TestService_GetCurrentRates_FailedRefreshBeforeFirstSuccessErrors(t *testing.T) {
	c := NewCache(failingResolver(domain.ErrFallbackExhausted), []string{"USD"}, time.Minute, nil)
	s := NewService(c)

	_, err := s.GetCurrentRates(context.Background())
	require.ErrorIs(t, err, domain.ErrFallbackExhausted)
}

func TestService_Convert_RoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		rate   float64
		want   float64
	}{
		{"1000 at 900 rounds down to 1", 1000, 900, 1},
		{"1500 at 1000 rounds half up to 2", 1500, 1000, 2},
		{"450 at 900 rounds half up to 1", 450, 900, 1},
		{"449 at 900 rounds down to 0", 449, 900, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := primedCache(t, map[string]float64{"USD": tc.rate}, 0, time.Minute, nil)
			s := NewService(c)

			conv, err := s.Convert(context.Background(), tc.amount, "USD")
			require.NoError(t, err)
			require.Equal(t, tc.want, conv.ConvertedAmount)
			require.Equal(t, tc.amount, conv.OriginalAmount)
			require.Equal(t, tc.rate, conv.Rate)
			require.Equal(t, "USD", conv.Currency)
		})
	}
}

func TestService_Convert_UnsupportedCurrency(t *testing.T) {
	c := primedCache(t, map[string]float64{"USD": 950}, 0, time.Minute, nil)
	s := NewService(c)

	_, err := s.Convert(context.Background(), 1000, "GBP")
	require.ErrorIs(t, err, domain.ErrUnsupportedCurrency)
}

func TestService_Convert_UnsetRateIsUnavailable(t *testing.T) {
	resolver := failingResolver(errors.New("unused"))
	c := NewCache(resolver, []string{"USD", "EUR"}, time.Minute, nil)

	// USD resolved once, EUR still unset: fabricate the snapshot directly.
	next := domain.NewRateSet([]string{"USD", "EUR"})
	usd := 950.21
	next.Rates["USD"] = &usd
	next.LastUpdated = time.Now().UTC()
	c.mu.Lock()
	c.current = next
	c.mu.Unlock()

	s := NewService(c)
	_, err := s.Convert(context.Background(), 1000, "EUR")
	require.ErrorIs(t, err, domain.ErrRateUnavailable)

	conv, err := s.Convert(context.Background(), 1000, "USD")
	require.NoError(t, err)
	require.Equal(t, float64(1), conv.ConvertedAmount)
}

func TestService_Convert_PropagatesRefreshErrorWhenNeverPopulated(t *testing.T) {
	c := NewCache(failingResolver(domain.ErrFallbackExhausted), []string{"USD"}, time.Minute, nil)
	s := NewService(c)

	_, err := s.Convert(context.Background(), 1000, "USD")
	require.ErrorIs(t, err, domain.ErrFallbackExhausted)
}
