package models

import (
	"time"
)

// OrderStatus represents the status of an order. Transitions only move
// forward: pending -> confirmed -> shipping -> delivered.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
)

// orderStatusRank orders the statuses along the fulfillment pipeline
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusShipping:  2,
	OrderStatusDelivered: 3,
}

// IsValid checks if the order status is part of the pipeline
func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

// CanTransitionTo reports whether the status may move to next. Only the
// immediate next stage is allowed; delivered is terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	cur, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	nxt, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return nxt == cur+1
}

// Order represents a placed order with its computed landed-price breakdown.
// The breakdown is persisted verbatim at creation time so the customer quote
// can always be reproduced, even after settings change.
type Order struct {
	ID            string      `json:"id" db:"id"`
	UserID        string      `json:"user_id" db:"user_id"`
	Status        OrderStatus `json:"status" db:"status"`
	SupplierCost  int64       `json:"supplier_cost" db:"supplier_cost"`
	TransportCost int64       `json:"transport_cost" db:"transport_cost"`
	CustomsCost   int64       `json:"customs_cost" db:"customs_cost"`
	Margin        int64       `json:"margin" db:"margin"`
	Total         int64       `json:"total" db:"total"`
	Currency      string      `json:"currency" db:"currency"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderItem represents one product line in an order
type OrderItem struct {
	ID               string `json:"id" db:"id"`
	OrderID          string `json:"order_id" db:"order_id"`
	ProductID        int    `json:"product_id" db:"product_id"`
	ProductName      string `json:"product_name" db:"product_name"`
	Quantity         int    `json:"quantity" db:"quantity"`
	UnitPriceKRW     int64  `json:"unit_price_krw" db:"unit_price_krw"`
	LineTotal        int64  `json:"line_total" db:"line_total"`
	LineSupplierCost int64  `json:"line_supplier_cost" db:"line_supplier_cost"`
}

// CreateOrderRequest represents a checkout request
type CreateOrderRequest struct {
	Items []CreateOrderItem `json:"items" binding:"required,min=1,dive"`
	Email string            `json:"email" binding:"omitempty,email"`
}

// CreateOrderItem is one requested product line
type CreateOrderItem struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,min=1"`
}

// UpdateOrderStatusRequest represents an admin status change
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// QuoteRequest asks for a landed-price quote for a product
type QuoteRequest struct {
	ProductID int    `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Currency  string `json:"currency,omitempty"`
}

// QuoteResponse carries the full itemization of a landed-price quote. Every
// intermediate is included: the storefront must display the breakdown, never
// only the total.
type QuoteResponse struct {
	ProductID      int     `json:"product_id"`
	ProductName    string  `json:"product_name"`
	Quantity       int     `json:"quantity"`
	UnitPriceKRW   int64   `json:"unit_price_krw"`
	SupplierCost   int64   `json:"supplier_cost"`
	TransportCost  int64   `json:"transport_cost"`
	CustomsCost    int64   `json:"customs_cost"`
	Margin         int64   `json:"margin"`
	Total          int64   `json:"total"`
	Currency       string  `json:"currency"`
	DisplayTotal   float64 `json:"display_total"`
	FormattedTotal string  `json:"formatted_total"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
