package handler

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type GetRatesResponse struct {
	Rates       map[string]*float64 `json:"rates"`
	LastUpdated *time.Time          `json:"lastUpdated"`
}

// GetRates serves the current rate snapshot. Rates never fetched are null;
// lastUpdated is null until the first successful refresh.
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	set, err := h.service.GetCurrentRates(r.Context())
	if err != nil {
		msg := "failed to fetch exchange rates"
		logrus.WithError(err).WithField("handler", "GetRates").Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	res := GetRatesResponse{Rates: set.Rates}
	if !set.LastUpdated.IsZero() {
		lastUpdated := set.LastUpdated
		res.LastUpdated = &lastUpdated
	}
	writeJSON(w, http.StatusOK, res)
}
