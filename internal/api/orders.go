package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/models"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/pricing"
)

// CreateOrder handles POST /orders. Each line is priced independently with
// the current settings and the component sums are persisted on the order, so
// the breakdown shown at checkout survives later rate changes.
func (h *Handler) CreateOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	settings, err := h.db.GetPriceSettings(ctx)
	if err != nil {
		log.Printf("[ORDERS] Failed to load price settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Pricing configuration unavailable"})
		return
	}
	engineSettings := pricingSettings(settings)

	order := models.Order{
		UserID:   userID,
		Currency: string(pricing.CurrencyXOF),
	}
	for _, line := range req.Items {
		product, err := h.db.GetProduct(ctx, line.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("product %d not found", line.ProductID)})
			return
		}
		if !product.InStock {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("product %q is out of stock", product.Name)})
			return
		}

		breakdown, err := pricing.ComputeLandedPrice(product.SupplierPriceKRW, line.Quantity, product.WeightKg, engineSettings)
		if err != nil {
			if errors.Is(err, pricing.ErrMisconfiguredRates) {
				log.Printf("[ORDERS] Misconfigured rates: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Pricing configuration invalid"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order.SupplierCost += breakdown.SupplierCost
		order.TransportCost += breakdown.TransportCost
		order.CustomsCost += breakdown.CustomsCost
		order.Margin += breakdown.Margin
		order.Total += breakdown.Total
		order.Items = append(order.Items, models.OrderItem{
			ProductID:        product.ID,
			ProductName:      product.Name,
			Quantity:         line.Quantity,
			UnitPriceKRW:     product.SupplierPriceKRW,
			LineTotal:        breakdown.Total,
			LineSupplierCost: breakdown.SupplierCost,
		})
	}

	if err := h.db.CreateOrder(ctx, &order); err != nil {
		log.Printf("[ORDERS] Failed to create order for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	if req.Email != "" && h.email.Enabled() {
		// Confirmation email is best effort; the order stands either way.
		go func(order models.Order, email string) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := h.email.SendOrderConfirmation(ctx, email, &order); err != nil {
				log.Printf("[ORDERS] Failed to send confirmation for order %s: %v", order.ID, err)
			}
		}(order, req.Email)
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrders handles GET /orders, scoped to the authenticated user. Staff see
// every order.
func (h *Handler) GetOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	scope := userID
	if IsStaff(c) {
		scope = ""
	}

	limit, offset := parsePagination(c)
	orders, err := h.db.ListOrders(ctx, scope, limit, offset)
	if err != nil {
		log.Printf("[ORDERS] Failed to list orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

// GetOrder handles GET /orders/:id. Customers only see their own orders.
func (h *Handler) GetOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	scope := userID
	if IsStaff(c) {
		scope = ""
	}

	order, err := h.db.GetOrder(ctx, c.Param("id"), scope)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /orders/:id/status (staff). The pipeline only
// moves forward one stage at a time; anything else is rejected.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orderID := c.Param("id")

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if !req.Status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown status %q", req.Status)})
		return
	}

	order, err := h.db.GetOrder(ctx, orderID, "")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if !order.Status.CanTransitionTo(req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("cannot move order from %s to %s", order.Status, req.Status),
		})
		return
	}

	if err := h.db.UpdateOrderStatus(ctx, orderID, order.Status, req.Status); err != nil {
		if strings.Contains(err.Error(), "not in status") {
			// Lost a race with another status update.
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[ORDERS] Failed to update status of order %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "status": req.Status})
}
