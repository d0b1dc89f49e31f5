// Package currency holds exchange rates relative to a base currency and
// fixed-precision money amounts.
package currency

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidRate is returned for a missing or non-positive rate.
	ErrInvalidRate = errors.New("invalid currency rate")

	// ErrUnknownCurrency is returned when a code has no rate.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrCurrencyMismatch is returned when combining amounts of different
	// currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Rates maps currency codes to their value in units of the base currency.
// The base always has rate 1. Rates is immutable; WithRate returns a copy.
type Rates struct {
	base  string
	rates map[string]decimal.Decimal
}

// NewRates creates rates for base with no other currencies.
func NewRates(base string) Rates {
	base = normalizeCode(base)
	return Rates{
		base:  base,
		rates: map[string]decimal.Decimal{base: decimal.NewFromInt(1)},
	}
}

// FromMap builds rates from float values. Non-positive values are rejected.
func FromMap(base string, values map[string]float64) (Rates, error) {
	r := NewRates(base)
	for code, value := range values {
		var err error
		if r, err = r.WithRate(code, decimal.NewFromFloat(value)); err != nil {
			return Rates{}, err
		}
	}
	return r, nil
}

// FromStrings builds rates from decimal strings as stored in the database.
func FromStrings(base string, values map[string]string) (Rates, error) {
	r := NewRates(base)
	for code, value := range values {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return Rates{}, fmt.Errorf("%w: %s=%q: %v", ErrInvalidRate, code, value, err)
		}
		if r, err = r.WithRate(code, d); err != nil {
			return Rates{}, err
		}
	}
	return r, nil
}

// Base returns the base currency code.
func (r Rates) Base() string { return r.base }

// Rate returns the rate of code.
func (r Rates) Rate(code string) (decimal.Decimal, bool) {
	d, ok := r.rates[normalizeCode(code)]
	return d, ok
}

// HasRate reports whether code has a rate.
func (r Rates) HasRate(code string) bool {
	_, ok := r.Rate(code)
	return ok
}

// Codes returns every code including the base, sorted.
func (r Rates) Codes() []string {
	codes := make([]string, 0, len(r.rates))
	for code := range r.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// WithRate returns a copy of r with code set to rate. The base rate cannot be
// changed.
func (r Rates) WithRate(code string, rate decimal.Decimal) (Rates, error) {
	code = normalizeCode(code)
	if code == "" {
		return Rates{}, fmt.Errorf("%w: empty currency code", ErrInvalidRate)
	}
	if !rate.IsPositive() {
		return Rates{}, fmt.Errorf("%w: %s=%s", ErrInvalidRate, code, rate)
	}
	if code == r.base {
		return r, nil
	}

	next := make(map[string]decimal.Decimal, len(r.rates)+1)
	for k, v := range r.rates {
		next[k] = v
	}
	next[code] = rate
	return Rates{base: r.base, rates: next}, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
