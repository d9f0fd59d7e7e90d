package pricing

import (
	"fmt"
	"math"
	"strings"
)

// Currency is one of the three currencies the storefront quotes in. Any other
// code is a configuration error, not a currency to support generically.
type Currency string

const (
	CurrencyXOF Currency = "XOF" // local West African CFA franc
	CurrencyKRW Currency = "KRW" // supplier-side Korean Won
	CurrencyEUR Currency = "EUR"
)

// IsValid checks membership in the fixed currency set
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyXOF, CurrencyKRW, CurrencyEUR:
		return true
	default:
		return false
	}
}

// Rates holds the XOF-relative value of each supported currency. It is built
// from the settings row, never from globals.
type Rates struct {
	xofPer map[Currency]float64
}

// NewRates builds a rate table from the configured XOF-per-KRW and
// XOF-per-EUR rates. Non-positive rates are rejected.
func NewRates(xofPerKRW, xofPerEUR float64) (Rates, error) {
	if xofPerKRW <= 0 {
		return Rates{}, fmt.Errorf("%w: KRW rate %v", ErrMisconfiguredRates, xofPerKRW)
	}
	if xofPerEUR <= 0 {
		return Rates{}, fmt.Errorf("%w: EUR rate %v", ErrMisconfiguredRates, xofPerEUR)
	}
	return Rates{xofPer: map[Currency]float64{
		CurrencyXOF: 1,
		CurrencyKRW: xofPerKRW,
		CurrencyEUR: xofPerEUR,
	}}, nil
}

// Convert transforms an amount between two supported currencies. The result
// is rounded to the currency's minor precision, so a round trip may drift by
// at most one unit of the smaller representation.
func (r Rates) Convert(amount float64, from, to Currency) (float64, error) {
	fromRate, ok := r.xofPer[from]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, from)
	}
	toRate, ok := r.xofPer[to]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, to)
	}
	return roundTo(amount*fromRate/toRate, decimalsFor(to)), nil
}

// Format renders an amount per the currency's conventions: whole units for
// XOF and KRW, two decimal places for EUR.
func Format(amount float64, code Currency) (string, error) {
	switch code {
	case CurrencyXOF:
		return groupDigits(fmt.Sprintf("%.0f", amount)) + " FCFA", nil
	case CurrencyKRW:
		return "₩" + groupDigits(fmt.Sprintf("%.0f", amount)), nil
	case CurrencyEUR:
		s := fmt.Sprintf("%.2f", amount)
		whole, frac, _ := strings.Cut(s, ".")
		return "€" + groupDigits(whole) + "." + frac, nil
	default:
		return "", fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, code)
	}
}

// decimalsFor returns the minor-unit precision of a currency
func decimalsFor(c Currency) int {
	if c == CurrencyEUR {
		return 2
	}
	return 0
}

// roundTo rounds half-up at the given number of decimal places
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Floor(v*scale+0.5) / scale
}

// groupDigits inserts thousands separators into a plain digit string
func groupDigits(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	for i, ch := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
