package domain

import "errors"

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrNoDataForDate       = errors.New("no data for date")
	ErrUpstreamFailure     = errors.New("upstream provider failure")
	ErrFallbackExhausted   = errors.New("fallback window exhausted")
	ErrRateUnavailable     = errors.New("rate unavailable")
)
