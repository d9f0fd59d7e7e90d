package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/db"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/fitment"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/models"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/pricing"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/services"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/storage"
)

// Handler holds the shared dependencies and provides the HTTP handlers
type Handler struct {
	db       *db.Database
	resolver *fitment.Resolver
	uploader *storage.S3Uploader
	email    *services.EmailService
}

// NewHandler creates a new handler instance
func NewHandler(database *db.Database, uploader *storage.S3Uploader, email *services.EmailService) *Handler {
	var resolver *fitment.Resolver
	if database != nil {
		resolver = fitment.NewResolver(database)
	}
	return &Handler{db: database, resolver: resolver, uploader: uploader, email: email}
}

// Health handles the readiness probe; it fails while the database is down
func (h *Handler) Health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database not initialized"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.db.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// pricingSettings converts the stored settings row into the engine's input
func pricingSettings(s *models.PriceSettings) pricing.Settings {
	return pricing.Settings{
		ExchangeRate:   s.ExchangeRate,
		TransportBase:  s.TransportBase,
		TransportPerKg: s.TransportPerKg,
		CustomsRate:    s.CustomsRate,
		MarginRate:     s.MarginRate,
	}
}

// GetProducts handles GET /products
func (h *Handler) GetProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	category := models.ProductCategory(c.Query("category"))
	if category != "" && !category.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown category %q", category)})
		return
	}

	limit, offset := parsePagination(c)
	products, total, err := h.db.ListProducts(ctx, category, c.Query("search"), limit, offset)
	if err != nil {
		log.Printf("Failed to list products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": total})
}

// GetProduct handles GET /products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.db.GetProduct(ctx, productID)
	if err != nil {
		log.Printf("Error querying product %d: %v", productID, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /products (admin)
func (h *Handler) CreateProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var newProduct models.Product
	if err := c.ShouldBindJSON(&newProduct); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if !newProduct.Category.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown category %q", newProduct.Category)})
		return
	}
	if newProduct.SupplierPriceKRW <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "supplier_price_krw must be positive"})
		return
	}

	productID, err := h.db.CreateProduct(ctx, newProduct)
	if err != nil {
		log.Printf("Failed to create product in DB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product_id": productID})
}

// UpdateProduct handles PUT /products/:id (admin)
func (h *Handler) UpdateProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if !product.Category.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown category %q", product.Category)})
		return
	}

	if err := h.db.UpdateProduct(ctx, productID, product); err != nil {
		log.Printf("Failed to update product %d: %v", productID, err)
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully"})
}

// DeleteProduct handles DELETE /products/:id (admin, soft delete)
func (h *Handler) DeleteProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.db.DeleteProduct(ctx, productID); err != nil {
		log.Printf("Failed to delete product %d: %v", productID, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// UploadProductImage handles POST /products/:id/image (admin). Images go to
// S3 when a bucket is configured, otherwise to the local uploads directory.
func (h *Handler) UploadProductImage(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}

	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), filepath.Ext(header.Filename))
	var imageURL string
	if h.uploader.Enabled() {
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		imageURL, err = h.uploader.UploadImage(ctx, productID, filename, contentType, data)
		if err != nil {
			log.Printf("Failed to upload image to S3 for product %d: %v", productID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			return
		}
	} else {
		dir := filepath.Join("uploads", "products", strconv.Itoa(productID))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			return
		}
		localPath := filepath.Join(dir, filename)
		if err := os.WriteFile(localPath, data, 0o644); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			return
		}
		imageURL = "/" + filepath.ToSlash(localPath)
	}

	if err := h.db.AddProductImage(ctx, productID, imageURL); err != nil {
		log.Printf("Failed to link image to product %d: %v", productID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"image_url": imageURL})
}

// CreateQuote handles POST /quotes: the landed-price computation for a
// product and quantity, optionally presented in another supported currency.
func (h *Handler) CreateQuote(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
		return
	}

	displayCurrency := pricing.CurrencyXOF
	if req.Currency != "" {
		displayCurrency = pricing.Currency(strings.ToUpper(req.Currency))
		if !displayCurrency.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported currency %q", req.Currency)})
			return
		}
	}

	product, err := h.db.GetProduct(ctx, req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	quote, status, apiErr := h.buildQuote(ctx, product, req.Quantity, displayCurrency)
	if apiErr != nil {
		c.JSON(status, gin.H{"error": apiErr.Error()})
		return
	}
	c.JSON(http.StatusOK, quote)
}

// buildQuote runs the pricing engine for a product against the current
// settings snapshot and renders the display currency.
func (h *Handler) buildQuote(ctx context.Context, product *models.Product, quantity int, displayCurrency pricing.Currency) (*models.QuoteResponse, int, error) {
	settings, err := h.db.GetPriceSettings(ctx)
	if err != nil {
		log.Printf("[PRICING] Failed to load price settings: %v", err)
		return nil, http.StatusInternalServerError, fmt.Errorf("pricing configuration unavailable")
	}

	breakdown, err := pricing.ComputeLandedPrice(product.SupplierPriceKRW, quantity, product.WeightKg, pricingSettings(settings))
	if err != nil {
		if errors.Is(err, pricing.ErrMisconfiguredRates) {
			// Never quote zero on bad configuration; surface it loudly.
			log.Printf("[PRICING] Misconfigured rates: %v", err)
			return nil, http.StatusInternalServerError, fmt.Errorf("pricing configuration invalid")
		}
		return nil, http.StatusBadRequest, err
	}

	rates, err := pricing.NewRates(settings.ExchangeRate, settings.EuroRate)
	if err != nil {
		log.Printf("[PRICING] Misconfigured currency rates: %v", err)
		return nil, http.StatusInternalServerError, fmt.Errorf("pricing configuration invalid")
	}
	displayTotal, err := rates.Convert(float64(breakdown.Total), pricing.CurrencyXOF, displayCurrency)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	formatted, err := pricing.Format(displayTotal, displayCurrency)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	return &models.QuoteResponse{
		ProductID:      product.ID,
		ProductName:    product.Name,
		Quantity:       quantity,
		UnitPriceKRW:   product.SupplierPriceKRW,
		SupplierCost:   breakdown.SupplierCost,
		TransportCost:  breakdown.TransportCost,
		CustomsCost:    breakdown.CustomsCost,
		Margin:         breakdown.Margin,
		Total:          breakdown.Total,
		Currency:       string(displayCurrency),
		DisplayTotal:   displayTotal,
		FormattedTotal: formatted,
	}, http.StatusOK, nil
}

// GetPriceSettings handles GET /settings (admin)
func (h *Handler) GetPriceSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.db.GetPriceSettings(ctx)
	if err != nil {
		log.Printf("Failed to load price settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load price settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdatePriceSettings handles PUT /settings (admin). Binding rejects any
// non-positive rate before it can reach storage.
func (h *Handler) UpdatePriceSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var req models.UpdatePriceSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if err := h.db.UpdatePriceSettings(ctx, req); err != nil {
		log.Printf("Failed to update price settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update price settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Price settings updated successfully"})
}

// parsePagination reads limit/offset query parameters with sane bounds
func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 20
	offset = 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
