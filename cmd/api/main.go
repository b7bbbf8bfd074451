package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/bartab-api/internal/application/service"
	"github.com/sangkips/bartab-api/internal/config"
	domainRepo "github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/sangkips/bartab-api/internal/infrastructure/database"
	"github.com/sangkips/bartab-api/internal/infrastructure/repository"
	"github.com/sangkips/bartab-api/internal/jobs"
	"github.com/sangkips/bartab-api/internal/presentation/http/handler"
	"github.com/sangkips/bartab-api/internal/presentation/http/routes"
	"github.com/sangkips/bartab-api/pkg/logger"
	"github.com/sangkips/bartab-api/pkg/printer"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(logger.Options{
		Production: cfg.App.IsProduction(),
		Level:      cfg.Log.Level,
		Filename:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize repositories. Clients and the catalog live in memory; postgres,
	// when enabled, keeps the settled-session archive and idempotency keys.
	clientRepo := repository.NewClientRepository()
	productRepo := repository.NewProductRepository()
	var (
		archive         domainRepo.SessionArchive
		idempotencyRepo domainRepo.IdempotencyRepository
	)

	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
		if err != nil {
			zlog.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := database.AutoMigrate(db); err != nil {
			zlog.Fatal("failed to run migrations", zap.Error(err))
		}
		archive = repository.NewSessionArchiveRepository(db)
		idempotencyRepo = repository.NewIdempotencyRepository(db)
	} else {
		zlog.Info("database disabled, settled sessions are kept in memory only")
		archive = repository.NewNullSessionArchive()
		idempotencyRepo = repository.NewMemoryIdempotencyRepository()
	}

	// Seed default data
	if cfg.App.SeedCatalog {
		if err := database.SeedCatalog(context.Background(), productRepo, time.Now().UTC()); err != nil {
			zlog.Warn("failed to seed catalog", zap.Error(err))
		}
	}

	// Initialize services
	// nil clock reads the wall clock in UTC
	var clock service.Clock
	clientService := service.NewClientService(clientRepo, archive, zlog, clock)
	tabService := service.NewTabService(clientRepo, productRepo, zlog, clock)
	settlementService := service.NewSettlementService(clientRepo, archive, zlog, clock)
	productService := service.NewProductService(productRepo, clientRepo, zlog, clock)
	analyticsService := service.NewAnalyticsService(repository.NewAnalyticsRepository(clientRepo), clientService, clock)
	exportService := service.NewExportService(analyticsService, clientRepo, zlog)

	receiptPrinter, err := printer.New(cfg.Printer.Type, cfg.Printer.DevicePath, cfg.Printer.Address)
	if err != nil {
		zlog.Warn("failed to initialize printer, receipts will not be printed", zap.Error(err))
		receiptPrinter = printer.NewNullPrinter()
	}
	receiptService := service.NewReceiptService(clientRepo, receiptPrinter, cfg.App.VenueName, cfg.Printer.Width, zlog)

	// Initialize handlers
	handlers := &routes.Handlers{
		Client:    handler.NewClientHandler(clientService, tabService, settlementService, analyticsService),
		Product:   handler.NewProductHandler(productService),
		Analytics: handler.NewAnalyticsHandler(analyticsService, exportService, clock),
		Receipt:   handler.NewReceiptHandler(receiptService),
	}

	rateLimiter := routes.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Logger:          zlog,
		RateLimiter:     rateLimiter,
	})

	scheduler, err := jobs.NewScheduler(cfg.Idempotency.CleanupSpec, idempotencyRepo, zlog)
	if err != nil {
		zlog.Fatal("failed to schedule jobs", zap.Error(err))
	}
	scheduler.Start()

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.Bool("database", cfg.Database.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	zlog.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("server shutdown", zap.Error(err))
	}
	scheduler.Stop(ctx)
}
