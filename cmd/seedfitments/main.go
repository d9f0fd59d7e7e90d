package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/db"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/fitment"
)

// seedfitments applies the compatibility rule table to the current catalog
// and inserts the resulting part/vehicle links. Existing links are left
// untouched, so the tool is safe to run after every catalog import.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	log.SetOutput(os.Stdout)

	database, err := db.NewDatabase()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	parts, err := database.ListParts(ctx, "")
	if err != nil {
		log.Fatalf("Failed to load parts: %v", err)
	}
	vehicles, err := database.ListVehicles(ctx, "")
	if err != nil {
		log.Fatalf("Failed to load vehicles: %v", err)
	}
	log.Printf("Loaded %d parts and %d vehicles", len(parts), len(vehicles))

	plan := fitment.BuildSeedPlan(parts, vehicles, fitment.DefaultRules)
	if len(plan) == 0 {
		log.Println("Rule table produced no fitments, nothing to do")
		return
	}

	inserted, err := database.InsertFitments(ctx, plan)
	if err != nil {
		log.Fatalf("Failed to insert fitments: %v", err)
	}
	log.Printf("Seeding complete: %d planned, %d inserted, %d already present",
		len(plan), inserted, len(plan)-inserted)
}
