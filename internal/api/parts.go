package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/fitment"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/models"
)

// GetVehicles handles GET /vehicles with an optional make filter
func (h *Handler) GetVehicles(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	vehicles, err := h.db.ListVehicles(ctx, c.Query("make"))
	if err != nil {
		log.Printf("Failed to list vehicles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list vehicles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles, "total": len(vehicles)})
}

// GetVehicle handles GET /vehicles/:id
func (h *Handler) GetVehicle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	vehicleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}

	vehicle, err := h.db.GetVehicle(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, fitment.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		log.Printf("Error querying vehicle %d: %v", vehicleID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vehicle"})
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// CreateVehicle handles POST /vehicles (admin)
func (h *Handler) CreateVehicle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var vehicle models.Vehicle
	if err := c.ShouldBindJSON(&vehicle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if vehicle.YearEnd != 0 && vehicle.YearEnd < vehicle.YearStart {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year_end must not precede year_start"})
		return
	}

	vehicleID, err := h.db.CreateVehicle(ctx, vehicle)
	if err != nil {
		log.Printf("Failed to create vehicle: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vehicle_id": vehicleID})
}

// GetParts handles GET /parts with an optional category filter
func (h *Handler) GetParts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	category := models.PartCategory(c.Query("category"))
	if category != "" && !category.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown part category %q", category)})
		return
	}

	parts, err := h.db.ListParts(ctx, category)
	if err != nil {
		log.Printf("Failed to list parts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list parts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"parts": parts, "total": len(parts)})
}

// GetPart handles GET /parts/:id
func (h *Handler) GetPart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	partID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid part id"})
		return
	}

	part, err := h.db.GetPart(ctx, partID)
	if err != nil {
		if errors.Is(err, fitment.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Part not found"})
			return
		}
		log.Printf("Error querying part %d: %v", partID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load part"})
		return
	}
	c.JSON(http.StatusOK, part)
}

// CreatePart handles POST /parts (admin)
func (h *Handler) CreatePart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var part models.Part
	if err := c.ShouldBindJSON(&part); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if !part.Category.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown part category %q", part.Category)})
		return
	}

	partID, err := h.db.CreatePart(ctx, part)
	if err != nil {
		log.Printf("Failed to create part: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create part"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"part_id": partID})
}

// GetPartsForVehicle handles GET /vehicles/:id/parts, the main fitment
// lookup: every part returned is verified compatible with the vehicle.
func (h *Handler) GetPartsForVehicle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	vehicleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}

	category := models.PartCategory(c.Query("category"))
	if category != "" && !category.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown part category %q", category)})
		return
	}

	limit, offset := parsePagination(c)
	result, err := h.resolver.GetPartsForVehicle(ctx, vehicleID, fitment.ListPartsQuery{
		Search:   c.Query("search"),
		Category: category,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		if errors.Is(err, fitment.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		log.Printf("Failed to resolve parts for vehicle %d: %v", vehicleID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve compatible parts"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPartCompatibility handles GET /parts/:id/compatibility?vehicle_id=N.
// An incompatible pairing is a successful answer, not an error.
func (h *Handler) GetPartCompatibility(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	partID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid part id"})
		return
	}
	vehicleID, err := strconv.Atoi(c.Query("vehicle_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vehicle_id query parameter is required"})
		return
	}

	result, err := h.resolver.CheckCompatibility(ctx, vehicleID, partID)
	if err != nil {
		log.Printf("Compatibility check failed for part %d vehicle %d: %v", partID, vehicleID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Compatibility check failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPartStock handles GET /parts/:id/stock?quantity=N and reports whether
// the requested quantity can be fulfilled right now.
func (h *Handler) GetPartStock(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	partID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid part id"})
		return
	}
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil || quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a positive integer"})
		return
	}

	available, err := h.resolver.ValidateStock(ctx, partID, quantity)
	if err != nil {
		if errors.Is(err, fitment.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Part not found"})
			return
		}
		log.Printf("Stock check failed for part %d: %v", partID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stock check failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"part_id": partID, "requested": quantity, "available": available})
}
