package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"bcchrates/internal/domain"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRateProvider struct{ mock.Mock }

func (m *MockRateProvider) Fetch(ctx context.Context, currency string, day time.Time) (float64, error) {
	args := m.Called(ctx, currency, day)
	return args.Get(0).(float64), args.Error(1)
}

func feb(d int) time.Time {
	return time.Date(2025, time.February, d, 0, 0, 0, 0, time.UTC)
}

func TestObservationCache_SetAndGet(t *testing.T) {
	c, err := NewObservationCache(128)
	require.NoError(t, err)
	defer c.Close()

	c.Set("USD", feb(3), 950.21)
	c.cache.Wait()

	got, ok := c.Get("USD", feb(3))
	require.True(t, ok)
	require.InDelta(t, 950.21, got, 1e-9)
}

func TestObservationCache_MissWhenEmpty(t *testing.T) {
	c, err := NewObservationCache(64)
	require.NoError(t, err)
	defer c.Close()

	value, ok := c.Get("USD", feb(3))
	require.False(t, ok)
	require.Zero(t, value)
}

func TestObservationCache_KeysAreCurrencyAndDayScoped(t *testing.T) {
	c, err := NewObservationCache(128)
	require.NoError(t, err)
	defer c.Close()

	c.Set("USD", feb(3), 950.21)
	c.cache.Wait()

	_, ok := c.Get("EUR", feb(3))
	require.False(t, ok)
	_, ok = c.Get("USD", feb(4))
	require.False(t, ok)
}

func TestCachingProvider_HitSkipsProvider(t *testing.T) {
	c, err := NewObservationCache(128)
	require.NoError(t, err)
	defer c.Close()

	c.Set("USD", feb(3), 950.21)
	c.cache.Wait()

	provider := new(MockRateProvider)
	p := NewCachingProvider(provider, c)

	value, err := p.Fetch(context.Background(), "USD", feb(3))
	require.NoError(t, err)
	require.InDelta(t, 950.21, value, 1e-9)
	provider.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestCachingProvider_MissFetchesAndStores(t *testing.T) {
	c, err := NewObservationCache(128)
	require.NoError(t, err)
	defer c.Close()

	provider := new(MockRateProvider)
	provider.On("Fetch", mock.Anything, "USD", feb(3)).Return(950.21, nil).Once()
	p := NewCachingProvider(provider, c)

	value, err := p.Fetch(context.Background(), "USD", feb(3))
	require.NoError(t, err)
	require.InDelta(t, 950.21, value, 1e-9)

	c.cache.Wait()
	got, ok := c.Get("USD", feb(3))
	require.True(t, ok)
	require.InDelta(t, 950.21, got, 1e-9)
	provider.AssertExpectations(t)
}

func TestCachingProvider_ErrorIsNotCached(t *testing.T) {
	c, err := NewObservationCache(128)
	require.NoError(t, err)
	defer c.Close()

	provider := new(MockRateProvider)
	provider.On("Fetch", mock.Anything, "USD", feb(3)).
		Return(float64(0), errors.New("boom")).Twice()
	p := NewCachingProvider(provider, c)

	_, err = p.Fetch(context.Background(), "USD", feb(3))
	require.Error(t, err)

	// A day that failed (for example not yet published) must be retried,
	// not served from cache.
	c.cache.Wait()
	_, err = p.Fetch(context.Background(), "USD", feb(3))
	require.Error(t, err)
	provider.AssertExpectations(t)
}

func TestCachingProvider_NoDataErrorPassesThrough(t *testing.T) {
	c, err := NewObservationCache(128)
	require.NoError(t, err)
	defer c.Close()

	provider := new(MockRateProvider)
	provider.On("Fetch", mock.Anything, "USD", feb(2)).
		Return(float64(0), domain.ErrNoDataForDate).Once()
	p := NewCachingProvider(provider, c)

	_, err = p.Fetch(context.Background(), "USD", feb(2))
	require.ErrorIs(t, err, domain.ErrNoDataForDate)
	provider.AssertExpectations(t)
}
