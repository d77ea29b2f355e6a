package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bcchrates/internal/domain"
)

const (
	requestDateLayout = "2006-01-02"
	// The SieteRestWS API reports observation dates as dd-mm-yyyy even
	// though requests use ISO dates.
	obsDateLayout = "02-01-2006"
)

// BCChClient issues single-day GetSeries lookups against the Banco Central
// de Chile SieteRestWS API.
type BCChClient struct {
	http    *http.Client
	baseURL string
	user    string
	pass    string
	series  map[string]string // currency code -> series identifier
}

type seriesResponse struct {
	Codigo      int    `json:"Codigo"`
	Descripcion string `json:"Descripcion"`
	Series      struct {
		SeriesID string `json:"seriesId"`
		Obs      []struct {
			IndexDateString string `json:"indexDateString"`
			Value           string `json:"value"`
			StatusCode      string `json:"statusCode"`
		} `json:"Obs"`
	} `json:"Series"`
}

// Fetch requests the series mapped to currency, scoped to exactly day
// (firstdate == lastdate), and returns the value of the observation whose
// calendar day matches.
func (c *BCChClient) Fetch(ctx context.Context, currency string, day time.Time) (float64, error) {
	seriesCode, ok := c.series[currency]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, currency)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to parse base URL: %v", domain.ErrUpstreamFailure, err)
	}

	isoDay := day.Format(requestDateLayout)
	q := url.Values{}
	q.Set("user", c.user)
	q.Set("pass", c.pass)
	q.Set("function", "GetSeries")
	q.Set("timeseries", seriesCode)
	q.Set("firstdate", isoDay)
	q.Set("lastdate", isoDay)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create request for %q: %v", domain.ErrUpstreamFailure, currency, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: request for %q failed: %v", domain.ErrUpstreamFailure, currency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("%w: unexpected status code %d for %q", domain.ErrUpstreamFailure, resp.StatusCode, currency)
	}

	var body seriesResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: failed to decode response for %q: %v", domain.ErrUpstreamFailure, currency, err)
	}

	// Codigo 0 means success; anything else carries a provider-side error
	// description (bad credentials, unknown series, etc).
	if body.Codigo != 0 {
		return 0, fmt.Errorf("%w: api returned code %d for %q: %s", domain.ErrUpstreamFailure, body.Codigo, currency, body.Descripcion)
	}

	if len(body.Series.Obs) == 0 {
		return 0, fmt.Errorf("%w: no observations for %q on %s", domain.ErrNoDataForDate, currency, isoDay)
	}

	obs, err := matchObservation(body, day)
	if err != nil {
		return 0, fmt.Errorf("fetch %q: %w", currency, err)
	}
	return obs.Value, nil
}

// matchObservation finds the observation published for the requested
// calendar day. Matching is done on parsed dates; the provider's textual
// representation differs from the request format.
func matchObservation(body seriesResponse, day time.Time) (domain.Observation, error) {
	for _, obs := range body.Series.Obs {
		obsDay, err := time.Parse(obsDateLayout, obs.IndexDateString)
		if err != nil {
			return domain.Observation{}, fmt.Errorf("%w: malformed observation date %q: %v", domain.ErrUpstreamFailure, obs.IndexDateString, err)
		}
		if !sameDay(obsDay, day) {
			continue
		}
		// The API pads requested ranges with status "ND" placeholders
		// (value "NaN") on days without a published rate.
		if obs.StatusCode == "ND" {
			return domain.Observation{}, fmt.Errorf("%w: observation for %s not published", domain.ErrNoDataForDate, day.Format(requestDateLayout))
		}
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			return domain.Observation{}, fmt.Errorf("%w: malformed observation value %q: %v", domain.ErrUpstreamFailure, obs.Value, err)
		}
		if value <= 0 || math.IsInf(value, 0) || math.IsNaN(value) {
			return domain.Observation{}, fmt.Errorf("%w: observation value %q out of range", domain.ErrUpstreamFailure, obs.Value)
		}
		return domain.Observation{Date: obsDay, Value: value}, nil
	}
	return domain.Observation{}, fmt.Errorf("%w: no observation matches %s", domain.ErrNoDataForDate, day.Format(requestDateLayout))
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func NewBCChClient(httpClient *http.Client, baseURL, user, pass string, series map[string]string) *BCChClient {
	return &BCChClient{
		http:    httpClient,
		baseURL: baseURL,
		user:    user,
		pass:    pass,
		series:  series,
	}
}
