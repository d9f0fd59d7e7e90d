// Package pricing computes the landed price of imported Korean goods: the
// supplier cost in Won converted to the local currency, plus transport,
// customs duty and seller margin. It is pure; settings are passed in
// explicitly and nothing is read from ambient state.
package pricing

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput marks caller-supplied values outside the pricing domain
	// (non-positive price or quantity, negative weight).
	ErrInvalidInput = errors.New("invalid pricing input")

	// ErrMisconfiguredRates marks a settings snapshot with a missing or
	// non-positive rate. Computing with such settings would silently quote a
	// free import, so it is rejected outright.
	ErrMisconfiguredRates = errors.New("misconfigured pricing rates")
)

// Settings is the rate snapshot the engine composes with. All values must be
// positive.
type Settings struct {
	ExchangeRate   float64 // local currency per KRW
	TransportBase  float64 // flat fee, local currency
	TransportPerKg float64 // local currency per shipped kilogram
	CustomsRate    float64 // duty fraction applied to the converted supplier cost
	MarginRate     float64 // margin fraction applied to the subtotal
}

// Validate checks that every rate is usable
func (s Settings) Validate() error {
	if s.ExchangeRate <= 0 {
		return fmt.Errorf("%w: exchange rate %v", ErrMisconfiguredRates, s.ExchangeRate)
	}
	if s.TransportBase <= 0 {
		return fmt.Errorf("%w: transport base %v", ErrMisconfiguredRates, s.TransportBase)
	}
	if s.TransportPerKg <= 0 {
		return fmt.Errorf("%w: transport per kg %v", ErrMisconfiguredRates, s.TransportPerKg)
	}
	if s.CustomsRate <= 0 {
		return fmt.Errorf("%w: customs rate %v", ErrMisconfiguredRates, s.CustomsRate)
	}
	if s.MarginRate <= 0 {
		return fmt.Errorf("%w: margin rate %v", ErrMisconfiguredRates, s.MarginRate)
	}
	return nil
}

// Breakdown is the itemized landed price in whole units of the local
// currency. Every intermediate is exposed; the customer quote must show the
// itemization, never only the total.
type Breakdown struct {
	SupplierCost  int64 `json:"supplier_cost"`
	TransportCost int64 `json:"transport_cost"`
	CustomsCost   int64 `json:"customs_cost"`
	Margin        int64 `json:"margin"`
	Total         int64 `json:"total"`
}

// Subtotal returns the pre-margin sum of the breakdown
func (b Breakdown) Subtotal() int64 {
	return b.SupplierCost + b.TransportCost + b.CustomsCost
}

// ComputeLandedPrice converts a supplier quote into the itemized consumer
// price. The composition order is fixed:
//
//  1. supplier cost  = unit price x quantity x exchange rate
//  2. transport cost = base + weight x quantity x per-kg fee
//  3. customs cost   = duty on the converted supplier cost
//  4. margin         = margin rate on (supplier + transport + customs)
//  5. total          = subtotal + margin
//
// Each component is rounded half-up to whole local-currency units, so
// Total == SupplierCost + TransportCost + CustomsCost + Margin holds exactly.
func ComputeLandedPrice(unitPriceKRW int64, quantity int, weightKg float64, settings Settings) (Breakdown, error) {
	if unitPriceKRW <= 0 {
		return Breakdown{}, fmt.Errorf("%w: unit price %d KRW", ErrInvalidInput, unitPriceKRW)
	}
	if quantity <= 0 {
		return Breakdown{}, fmt.Errorf("%w: quantity %d", ErrInvalidInput, quantity)
	}
	if weightKg < 0 {
		return Breakdown{}, fmt.Errorf("%w: weight %v kg", ErrInvalidInput, weightKg)
	}
	if err := settings.Validate(); err != nil {
		return Breakdown{}, err
	}

	supplierCost := roundHalfUp(float64(unitPriceKRW) * float64(quantity) * settings.ExchangeRate)
	transportCost := roundHalfUp(settings.TransportBase + weightKg*float64(quantity)*settings.TransportPerKg)
	customsCost := roundHalfUp(float64(supplierCost) * settings.CustomsRate)

	subtotal := supplierCost + transportCost + customsCost
	margin := roundHalfUp(float64(subtotal) * settings.MarginRate)

	return Breakdown{
		SupplierCost:  supplierCost,
		TransportCost: transportCost,
		CustomsCost:   customsCost,
		Margin:        margin,
		Total:         subtotal + margin,
	}, nil
}

// roundHalfUp rounds a non-negative amount to the nearest whole currency unit
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
