package domain

import (
	"maps"
	"time"
)

// RateSet is the cached snapshot of current exchange rates. Rates always
// contains exactly the configured currency codes as keys; a nil value means
// the rate was never successfully fetched. A zero LastUpdated means no
// refresh has succeeded yet.
type RateSet struct {
	Rates       map[string]*float64
	LastUpdated time.Time
}

// NewRateSet returns a RateSet with every configured code present and unset.
func NewRateSet(codes []string) RateSet {
	rates := make(map[string]*float64, len(codes))
	for _, code := range codes {
		rates[code] = nil
	}
	return RateSet{Rates: rates}
}

// Clone returns a copy that shares no map with the receiver.
func (s RateSet) Clone() RateSet {
	return RateSet{
		Rates:       maps.Clone(s.Rates),
		LastUpdated: s.LastUpdated,
	}
}

// Observation is a single provider data point for one currency series.
type Observation struct {
	Date  time.Time
	Value float64
}
