package main

import (
	"context"
	"log"
	"os"
	"time"

	"go-catalog-mirror/internal/model"
	"go-catalog-mirror/internal/remote"
	"go-catalog-mirror/internal/repository"
	"go-catalog-mirror/internal/service"
	"go-catalog-mirror/pkg/database"

	"github.com/joho/godotenv"
)

const defaultFeedURL = "https://famme.no/products.json"

// Runs exactly one reconciliation cycle and exits. Useful for backfills and
// for verifying feed credentials/connectivity without starting the server.
func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	if err := db.AutoMigrate(&model.Product{}, &model.Variant{}); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	// 3. Wire the engine (no hub: nothing to broadcast to)
	feedURL := os.Getenv("CATALOG_FEED_URL")
	if feedURL == "" {
		feedURL = defaultFeedURL
	}
	feedClient := remote.NewClient(feedURL, remote.DefaultTimeout)

	productRepo := repository.NewProductRepo(db)
	variantRepo := repository.NewVariantRepo(db)
	syncService := service.NewSyncService(feedClient, productRepo, variantRepo, db, nil)

	// 4. Run one cycle
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := syncService.RunCycle(ctx); err != nil {
		log.Fatalf("Sync cycle failed: %v", err)
	}
	log.Println("Sync cycle completed")
}
