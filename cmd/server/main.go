package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/api"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/db"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/logging"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/services"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/storage"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Ensure all log output goes to stdout so the hosting platform captures it
	log.SetOutput(os.Stdout)

	log.Printf("Storefront Service starting (GIT_SHA=%s BUILD_TIME=%s)", os.Getenv("GIT_SHA"), os.Getenv("BUILD_TIME"))

	// Initialize database connection (non-fatal; allow process to start for /live)
	database, err := db.NewDatabase()
	if err != nil {
		log.Printf("[WARN] Database initialization failed at startup: %v", err)
	}
	if database != nil {
		defer database.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploader, err := storage.NewS3Uploader(ctx)
	if err != nil {
		log.Printf("[WARN] S3 uploader initialization failed: %v", err)
		uploader = &storage.S3Uploader{}
	}

	var email *services.EmailService
	if awsCfg, err := awsconfig.LoadDefaultConfig(ctx); err != nil {
		log.Printf("[WARN] AWS config load failed, order emails disabled: %v", err)
	} else {
		email = services.NewEmailService(awsCfg)
	}

	handler := api.NewHandler(database, uploader, email)
	router := setupRouter(handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}

func setupRouter(handler *api.Handler) *gin.Engine {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Serve uploaded files for local development
	router.Static("/uploads", "./uploads")

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(200) })
	router.GET("/ready", handler.Health)
	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")
	{
		// Parse JWT if present to expose role info for read endpoints
		v1.Use(api.OptionalAuthMiddleware())

		// Catalog reads (public)
		v1.GET("/products", handler.GetProducts)
		v1.GET("/products/:id", handler.GetProduct)
		v1.GET("/vehicles", handler.GetVehicles)
		v1.GET("/vehicles/:id", handler.GetVehicle)
		v1.GET("/vehicles/:id/parts", handler.GetPartsForVehicle)
		v1.GET("/parts", handler.GetParts)
		v1.GET("/parts/:id", handler.GetPart)
		v1.GET("/parts/:id/compatibility", handler.GetPartCompatibility)
		v1.GET("/parts/:id/stock", handler.GetPartStock)

		// Quotes (public; no account needed to see a landed price)
		v1.POST("/quotes", handler.CreateQuote)

		// Orders (authenticated customer)
		auth := v1.Group("")
		auth.Use(api.AuthMiddleware())
		{
			auth.POST("/orders", handler.CreateOrder)
			auth.GET("/orders", handler.GetOrders)
			auth.GET("/orders/:id", handler.GetOrder)
		}

		// Order pipeline (commercial staff and admins)
		staff := v1.Group("")
		staff.Use(api.AuthMiddleware(), api.StaffMiddleware())
		{
			staff.PUT("/orders/:id/status", handler.UpdateOrderStatus)
		}

		// Protected admin endpoints
		admin := v1.Group("")
		admin.Use(api.AuthMiddleware(), api.AdminMiddleware())
		{
			admin.POST("/products", handler.CreateProduct)
			admin.PUT("/products/:id", handler.UpdateProduct)
			admin.DELETE("/products/:id", handler.DeleteProduct)
			admin.POST("/products/:id/image", handler.UploadProductImage)

			admin.POST("/vehicles", handler.CreateVehicle)
			admin.POST("/parts", handler.CreatePart)

			admin.GET("/settings", handler.GetPriceSettings)
			admin.PUT("/settings", handler.UpdatePriceSettings)
		}
	}

	// Root endpoint for basic info
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "storefront-service",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}

// corsMiddleware configures cross-origin access for the storefront frontends.
// CORS_ALLOWED_ORIGINS is a comma separated list; empty means allow all.
func corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	} else {
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}
