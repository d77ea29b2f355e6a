package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"bcchrates/internal/domain"

	"github.com/sirupsen/logrus"
)

type ConvertResponse struct {
	OriginalAmount  float64   `json:"originalAmount"`
	Currency        string    `json:"currency"`
	ConvertedAmount float64   `json:"convertedAmount"`
	Rate            float64   `json:"rate"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// Convert handles /exchange-rates/convert?amount=<number>&currency=<CODE>.
// Both parameters are validated before the core is called.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	currency := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))
	if err := h.validator.ValidateCurrency(currency); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := h.validator.ValidateAmount(strings.TrimSpace(r.URL.Query().Get("amount")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conversion, err := h.service.Convert(r.Context(), amount, currency)
	if err != nil {
		msg := "failed to convert amount"
		if errors.Is(err, domain.ErrRateUnavailable) {
			msg = "no rate available for " + currency
		}
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "Convert", "currency": currency}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{
		OriginalAmount:  conversion.OriginalAmount,
		Currency:        conversion.Currency,
		ConvertedAmount: conversion.ConvertedAmount,
		Rate:            conversion.Rate,
		LastUpdated:     conversion.LastUpdated,
	})
}
