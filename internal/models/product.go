package models

import (
	"time"
)

// ProductCategory represents the vertical a catalog item belongs to
type ProductCategory string

const (
	ProductCategoryVehicle     ProductCategory = "vehicle"
	ProductCategoryElectronics ProductCategory = "electronics"
	ProductCategoryAppliance   ProductCategory = "appliance"
	ProductCategoryPart        ProductCategory = "part"
)

// IsValid checks if the product category is one of the supported verticals
func (c ProductCategory) IsValid() bool {
	switch c {
	case ProductCategoryVehicle, ProductCategoryElectronics, ProductCategoryAppliance, ProductCategoryPart:
		return true
	default:
		return false
	}
}

// Product represents a catalog item sourced from a Korean supplier
type Product struct {
	ID               int             `json:"id" db:"product_id"`
	UUID             string          `json:"uuid" db:"product_uuid"`
	Name             string          `json:"name" db:"name"`
	Description      string          `json:"description" db:"description"`
	Category         ProductCategory `json:"category" db:"category"`
	SupplierPriceKRW int64           `json:"supplier_price_krw" db:"supplier_price_krw"`
	WeightKg         float64         `json:"weight_kg" db:"weight_kg"`
	InStock          bool            `json:"in_stock" db:"in_stock"`
	IsActive         bool            `json:"is_active" db:"is_active"`
	ImageUrls        []string        `json:"image_urls"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// Vehicle represents a vehicle definition used for part fitment matching.
// Created by catalog import; the order flow never mutates it.
type Vehicle struct {
	ID        int       `json:"id" db:"vehicle_id"`
	Make      string    `json:"make" db:"make"`
	Model     string    `json:"model" db:"model"`
	YearStart int       `json:"year_start" db:"year_start"`
	YearEnd   int       `json:"year_end" db:"year_end"`
	Engine    string    `json:"engine" db:"engine"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PartCategory represents the functional family of an auto part
type PartCategory string

const (
	PartCategoryFilters    PartCategory = "filters"
	PartCategoryBraking    PartCategory = "braking"
	PartCategoryIgnition   PartCategory = "ignition"
	PartCategorySuspension PartCategory = "suspension"
	PartCategoryElectrical PartCategory = "electrical"
	PartCategoryEngine     PartCategory = "engine"
	PartCategoryBody       PartCategory = "body"
)

// IsValid checks if the part category is supported
func (c PartCategory) IsValid() bool {
	switch c {
	case PartCategoryFilters, PartCategoryBraking, PartCategoryIgnition,
		PartCategorySuspension, PartCategoryElectrical, PartCategoryEngine, PartCategoryBody:
		return true
	default:
		return false
	}
}

// Part represents an aftermarket auto part. Vehicle compatibility is not a
// field on the part; it lives in the fitments relation.
type Part struct {
	ID               int          `json:"id" db:"part_id"`
	Name             string       `json:"name" db:"name"`
	PartNumber       string       `json:"part_number" db:"part_number"`
	OEMNumber        string       `json:"oem_number" db:"oem_number"`
	Brand            string       `json:"brand" db:"brand"`
	Category         PartCategory `json:"category" db:"category"`
	SupplierPriceKRW int64        `json:"supplier_price_krw" db:"supplier_price_krw"`
	StockQuantity    *int         `json:"stock_quantity" db:"stock_quantity"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// AvailableStock returns the usable stock quantity. A part with NULL stock is
// treated as having zero units (fail closed).
func (p *Part) AvailableStock() int {
	if p.StockQuantity == nil {
		return 0
	}
	return *p.StockQuantity
}

// Fitment represents a single part<->vehicle compatibility link.
// The (part_id, vehicle_id) pair is unique in the database.
type Fitment struct {
	PartID    int       `json:"part_id" db:"part_id"`
	VehicleID int       `json:"vehicle_id" db:"vehicle_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CompatibilityResult is the answer to "does this part fit this vehicle".
// A negative answer always carries a reason; a plain incompatibility also
// carries alternative parts in the same category that do fit the vehicle.
type CompatibilityResult struct {
	IsCompatible bool   `json:"is_compatible"`
	Reason       string `json:"reason,omitempty"`
	Alternatives []Part `json:"alternatives,omitempty"`
}

// PartListResult carries a page of parts together with the total count of the
// filtered (but unpaginated) result set.
type PartListResult struct {
	Parts []Part `json:"parts"`
	Total int    `json:"total"`
}
