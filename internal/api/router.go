package api

import (
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/api/handlers"
	"github.com/rugstore/storefront/internal/api/middleware"
	"github.com/rugstore/storefront/internal/config"
	"github.com/rugstore/storefront/internal/repository"
)

func init() {
	// Report binding failures by their JSON names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		// required alone accepts whitespace-only input
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	}
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(metricsMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ttl := cfg.Session.TTL

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.POST("/auth/register", handlers.HandleRegister(cfg, repos, logger))
		v1.POST("/auth/login", handlers.HandleLogin(cfg, repos, logger))
		v1.POST("/cart/quote", handlers.HandleCartQuote(cfg, logger))

		// Guests may check out
		v1.POST("/orders",
			middleware.OptionalAuthMiddleware(repos, ttl, logger),
			handlers.HandleCreateOrder(cfg, repos, logger),
		)

		// Shopper routes (require authentication)
		shopperRoutes := v1.Group("")
		shopperRoutes.Use(middleware.AuthMiddleware(repos, ttl, logger))
		{
			shopperRoutes.GET("/profile", handlers.HandleGetProfile(repos, logger))
			shopperRoutes.PATCH("/profile", handlers.HandleUpdateProfile(repos, logger))
			shopperRoutes.GET("/orders/:number", handlers.HandleGetOrder(cfg, repos, logger))
		}

		// Admin routes (staff only)
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AuthMiddleware(repos, ttl, logger))
		adminRoutes.Use(middleware.RequireStaff())
		{
			adminRoutes.GET("/orders", handlers.HandleListOrders(cfg, repos, logger))
			adminRoutes.PATCH("/orders/:number", handlers.HandleUpdateOrder(cfg, repos, logger))
			adminRoutes.GET("/orders/:number/events", handlers.HandleListOrderEvents(cfg, repos, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
