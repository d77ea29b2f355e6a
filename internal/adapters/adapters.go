package adapters

import (
	"context"
	"time"
)

// RateProvider looks up the published rate for one currency on one calendar
// day against the external time-series API.
type RateProvider interface {
	Fetch(ctx context.Context, currency string, day time.Time) (float64, error)
}

// RateResolver finds the most recent available rate for a currency.
type RateResolver interface {
	Resolve(ctx context.Context, currency string) (float64, error)
}

// ObservationCache stores already-published per-day observations.
type ObservationCache interface {
	Get(currency string, day time.Time) (float64, bool)
	Set(currency string, day time.Time, value float64)
}
