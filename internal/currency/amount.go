package currency

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of fractional digits kept by Amount.
const AmountPrecision = 4

// Amount is a decimal value in a currency.
type Amount struct {
	value    decimal.Decimal
	currency string
}

// NewAmount parses value as a decimal amount of currency.
func NewAmount(value, currency string) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	code := normalizeCode(currency)
	if code == "" {
		return Amount{}, fmt.Errorf("%w: empty currency code", ErrUnknownCurrency)
	}
	return Amount{value: d, currency: code}, nil
}

// Currency returns the currency code.
func (a Amount) Currency() string { return a.currency }

// Value returns the exact decimal value.
func (a Amount) Value() decimal.Decimal { return a.value }

// Add returns a + b.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.currency != b.currency {
		return Amount{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, a.currency, b.currency)
	}
	return Amount{value: a.value.Add(b.value), currency: a.currency}, nil
}

// Subtract returns a - b.
func (a Amount) Subtract(b Amount) (Amount, error) {
	if a.currency != b.currency {
		return Amount{}, fmt.Errorf("%w: %s - %s", ErrCurrencyMismatch, a.currency, b.currency)
	}
	return Amount{value: a.value.Sub(b.value), currency: a.currency}, nil
}

// Compare returns -1, 0 or 1.
func (a Amount) Compare(b Amount) (int, error) {
	if a.currency != b.currency {
		return 0, fmt.Errorf("%w: %s <> %s", ErrCurrencyMismatch, a.currency, b.currency)
	}
	return a.value.Cmp(b.value), nil
}

// AmountString renders the value with AmountPrecision fractional digits.
func (a Amount) AmountString() string {
	return a.value.StringFixed(AmountPrecision)
}

// String renders "<amount> <code>".
func (a Amount) String() string {
	return a.AmountString() + " " + a.currency
}

// Convert expresses a in currency to using rates. Both currencies must have a
// rate; the result is rounded to AmountPrecision.
func (a Amount) Convert(to string, rates Rates) (Amount, error) {
	to = normalizeCode(to)
	if to == a.currency {
		return a, nil
	}

	from, ok := rates.Rate(a.currency)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, a.currency)
	}
	target, ok := rates.Rate(to)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}

	value := a.value.Mul(from).DivRound(target, AmountPrecision)
	return Amount{value: value, currency: to}, nil
}
