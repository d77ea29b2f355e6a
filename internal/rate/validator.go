package rate

import (
	"errors"
	"maps"
	"math"
	"slices"
	"strconv"
)

var (
	ErrCurrencyRequired    = errors.New("currency is required")
	ErrCurrencyUnsupported = errors.New("currency not supported")
	ErrAmountRequired      = errors.New("amount is required")
	ErrAmountInvalid       = errors.New("amount must be a positive number")
)

// CurrencyValidator validates request parameters before they reach the
// core, so unsupported currencies are rejected without touching the cache.
type CurrencyValidator struct {
	supportedCodesSet map[string]struct{} // read only copy
	supportedCodesLst []string            // read only copy
}

func (v *CurrencyValidator) ValidateCurrency(code string) error {
	if code == "" {
		return ErrCurrencyRequired
	}
	if _, ok := v.supportedCodesSet[code]; !ok {
		return ErrCurrencyUnsupported
	}
	return nil
}

// ValidateAmount parses the raw query value and checks it is a positive
// finite number.
func (v *CurrencyValidator) ValidateAmount(raw string) (float64, error) {
	if raw == "" {
		return 0, ErrAmountRequired
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrAmountInvalid
	}
	return amount, nil
}

func (v *CurrencyValidator) SupportedCodes() []string {
	return slices.Clone(v.supportedCodesLst)
}

func NewValidator(supportedCurrencies map[string]struct{}) *CurrencyValidator {
	codesSet := maps.Clone(supportedCurrencies)
	codesLst := make([]string, 0, len(codesSet))
	for code := range codesSet {
		codesLst = append(codesLst, code)
	}
	slices.Sort(codesLst)

	return &CurrencyValidator{
		supportedCodesSet: codesSet,
		supportedCodesLst: codesLst,
	}
}
