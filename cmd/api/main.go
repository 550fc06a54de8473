package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-catalog-mirror/internal/handler"
	"go-catalog-mirror/internal/jobs"
	"go-catalog-mirror/internal/metrics"
	"go-catalog-mirror/internal/middleware"
	"go-catalog-mirror/internal/model"
	"go-catalog-mirror/internal/remote"
	"go-catalog-mirror/internal/repository"
	"go-catalog-mirror/internal/service"
	"go-catalog-mirror/internal/ws"
	"go-catalog-mirror/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

const defaultFeedURL = "https://famme.no/products.json"

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	if err := db.AutoMigrate(&model.Product{}, &model.Variant{}); err != nil {
		log.Fatal("Failed to migrate schema: ", err)
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	variantRepo := repository.NewVariantRepo(db)

	feedClient := remote.NewClient(envOr("CATALOG_FEED_URL", defaultFeedURL), envDuration("CATALOG_FEED_TIMEOUT", remote.DefaultTimeout))

	syncService := service.NewSyncService(feedClient, productRepo, variantRepo, db, wsHub)
	productService := service.NewProductService(productRepo, variantRepo, db, wsHub)
	exportService := service.NewExportService(productRepo)

	productHandler := handler.NewProductHandler(productService, exportService)
	syncHandler := handler.NewSyncHandler(syncService)

	// 5. Start the periodic reconciliation job (first cycle immediately)
	syncJob := jobs.NewSyncJob(syncService, envDuration("SYNC_INTERVAL", jobs.DefaultInterval))
	syncJob.Start()

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Catalog Mirror v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Get("/products", productHandler.GetProducts)
	api.Get("/products/export", productHandler.ExportProducts)
	api.Get("/products/:id", productHandler.GetProduct)
	api.Get("/products/:id/variants", productHandler.GetVariants)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth())
	protected.Post("/products", productHandler.CreateProduct)
	protected.Put("/products/:id", productHandler.UpdateProduct)
	protected.Delete("/products/:id", productHandler.DeleteProduct)
	protected.Post("/sync", syncHandler.TriggerSync)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	syncJob.Stop()
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
