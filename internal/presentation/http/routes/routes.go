package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/bartab-api/internal/config"
	domainRepo "github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/sangkips/bartab-api/internal/presentation/http/handler"
	"github.com/sangkips/bartab-api/internal/presentation/http/middleware"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Client    *handler.ClientHandler
	Product   *handler.ProductHandler
	Analytics *handler.AnalyticsHandler
	Receipt   *handler.ReceiptHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Logger          *zap.Logger
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *middleware.IPRateLimiter
}

// NewRateLimiter builds the per-IP limiter from config
func NewRateLimiter(cfg *config.RateLimitConfig) *middleware.IPRateLimiter {
	duration := cfg.Duration
	if duration <= 0 {
		duration = 1
	}
	return middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(cfg.Requests) / float64(duration),
		BurstSize:         cfg.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}
	{
		registerProductRoutes(v1, h)
		registerClientRoutes(v1, h, deps)
		registerAnalyticsRoutes(v1, h)
		v1.GET("/printer/status", h.Receipt.Status)
	}

	return router
}

func registerProductRoutes(v1 *gin.RouterGroup, h *Handlers) {
	products := v1.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}
}

func registerClientRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	clients := v1.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:id", h.Client.Get)
		clients.DELETE("/:id", h.Client.Delete)
		clients.POST("/:id/items", h.Client.AddItem)
		clients.DELETE("/:id/items/:item_id", h.Client.RemoveItem)
		// Settlement is not repeatable; retries must carry the same Idempotency-Key
		clients.POST("/:id/settle", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			TTL:    deps.Cfg.Idempotency.TTL,
			Logger: deps.Logger,
		}), h.Client.Settle)
		clients.GET("/:id/visits", h.Client.Visits)
		clients.DELETE("/:id/visits/:session", h.Client.RemoveVisit)
		clients.GET("/:id/stats", h.Client.Stats)
		clients.POST("/:id/visits/:session/receipt", h.Receipt.Print)
		clients.POST("/:id/merge", h.Client.Merge)
	}
}

func registerAnalyticsRoutes(v1 *gin.RouterGroup, h *Handlers) {
	analytics := v1.Group("/analytics")
	{
		analytics.GET("", h.Analytics.Summary)
		analytics.GET("/clients", h.Analytics.TopClients)
		analytics.GET("/products", h.Analytics.TopProducts)
		analytics.GET("/payments", h.Analytics.PaymentMethods)
		analytics.GET("/categories", h.Analytics.Categories)
		analytics.GET("/daily", h.Analytics.Daily)
		analytics.GET("/export.xlsx", h.Analytics.ExportWorkbook)
		analytics.GET("/purchases.csv", h.Analytics.ExportPurchases)
	}
}
