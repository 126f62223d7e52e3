package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"production-tracking-service/internal/cache"
	"production-tracking-service/internal/config"
	"production-tracking-service/internal/events"
	"production-tracking-service/internal/handlers"
	"production-tracking-service/internal/metrics"
	"production-tracking-service/internal/middleware"
	"production-tracking-service/internal/repository"
	"production-tracking-service/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	// Initialize logrus logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.IsProduction() {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize store
	var store repository.Store
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store = repository.NewMemoryStore()
		log.Println("Using in-memory store, data is lost on restart")
	default:
		db, err := config.InitDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		if err := repository.Migrate(db); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		store = repository.NewTrackingRepository(db)
		log.Println("✓ Connected to PostgreSQL")
	}

	// Initialize Redis report cache (optional - reports are rendered on every request without it)
	reportCache := cache.NewReportCacheWithClient(nil, 0)
	if cfg.RedisURL != "" {
		c, err := cache.NewReportCache(cfg.RedisURL, time.Duration(cfg.ReportCacheTTL)*time.Second)
		if err != nil {
			log.Printf("WARNING: %v (report caching will be disabled)", err)
		} else {
			reportCache = c
			log.Println("✓ Redis connected successfully")
		}
	} else {
		log.Println("REDIS_URL not configured, report caching disabled")
	}
	defer reportCache.Close()

	// Initialize NATS event publisher (optional - graceful degradation if NATS unavailable)
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		eventPublisher, err := events.NewImportEventPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("Warning: Failed to initialize NATS event publisher: %v", err)
			log.Println("Continuing without event publishing...")
		} else {
			log.Println("✓ Connected to NATS JetStream for event publishing")
			publisher = eventPublisher
			defer eventPublisher.Close()
		}
	} else {
		log.Println("NATS_URL not configured, event publishing disabled")
	}

	// Initialize MinIO workbook archive (optional)
	var archiver storage.Archiver = storage.NoopArchiver{}
	if cfg.MinIOEndpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		a, err := storage.NewMinIOArchiver(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		}, logger)
		cancel()
		if err != nil {
			log.Printf("WARNING: Failed to initialize MinIO archive: %v (uploads will not be archived)", err)
		} else {
			archiver = a
			log.Println("✓ MinIO archive initialized")
		}
	}

	// Initialize Prometheus metrics
	importMetrics := metrics.NewImportMetrics()
	log.Println("✓ Prometheus metrics initialized")

	// Initialize handlers
	h := handlers.Handlers{
		Import:        handlers.NewImportHandler(store, archiver, publisher, importMetrics, cfg.Import, logger),
		Report:        handlers.NewReportHandler(store, reportCache, logger),
		PurchaseOrder: handlers.NewPurchaseOrderHandler(store),
		Health:        handlers.NewHealthHandler(store, reportCache),
	}

	// Initialize Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(importMetrics.Middleware())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.MaxMultipartMemory = int64(cfg.Import.MaxUploadMB) << 20

	router.GET("/metrics", gin.WrapH(importMetrics.Handler()))
	handlers.RegisterRoutes(router, h)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Production tracking service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
