package models

import (
	"time"
)

// PriceSettings is the singleton configuration row driving the landed-price
// computation. It is read by the pricing flow and mutated only by admins.
type PriceSettings struct {
	ExchangeRate   float64   `json:"exchange_rate" db:"exchange_rate"`       // XOF per KRW
	EuroRate       float64   `json:"euro_rate" db:"euro_rate"`               // XOF per EUR
	TransportBase  float64   `json:"transport_base" db:"transport_base"`     // XOF
	TransportPerKg float64   `json:"transport_per_kg" db:"transport_per_kg"` // XOF per kg
	CustomsRate    float64   `json:"customs_rate" db:"customs_rate"`         // fraction, e.g. 0.10
	MarginRate     float64   `json:"margin_rate" db:"margin_rate"`           // fraction, e.g. 0.35
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// UpdatePriceSettingsRequest represents an admin update of the pricing rates
type UpdatePriceSettingsRequest struct {
	ExchangeRate   float64 `json:"exchange_rate" binding:"required,gt=0"`
	EuroRate       float64 `json:"euro_rate" binding:"required,gt=0"`
	TransportBase  float64 `json:"transport_base" binding:"required,gt=0"`
	TransportPerKg float64 `json:"transport_per_kg" binding:"required,gt=0"`
	CustomsRate    float64 `json:"customs_rate" binding:"required,gt=0"`
	MarginRate     float64 `json:"margin_rate" binding:"required,gt=0"`
}
