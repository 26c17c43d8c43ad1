package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/api/middleware"
	"github.com/rugstore/storefront/internal/config"
	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/pricing"
	"github.com/rugstore/storefront/internal/repository"
	"github.com/rugstore/storefront/internal/service"
)

// HandleCreateOrder handles POST /v1/orders
func HandleCreateOrder(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	orderService := service.NewOrderService(repos, pricing.NewRates(cfg.Shipping), logger)

	return func(c *gin.Context) {
		var req domain.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		// Guests may order; signed-in orders are linked to the account
		var userID *uuid.UUID
		if user, ok := middleware.GetUserFromContext(c); ok {
			userID = &user.ID
		}

		order, err := orderService.CreateOrder(c.Request.Context(), userID, req)
		if err != nil {
			respondError(c, logger, err, "Failed to create order")
			return
		}

		ordersCreated.WithLabelValues(string(order.ShippingMethod)).Inc()
		logger.Info("Order created",
			zap.String("order_number", order.Number),
			zap.String("total", order.Total.StringFixed(2)),
		)

		c.JSON(http.StatusCreated, domain.OrderAck{
			OrderNumber: order.Number,
			Status:      order.Status,
			Stage:       order.Stage,
			Total:       order.Total,
		})
	}
}

// HandleGetOrder handles GET /v1/orders/:number
func HandleGetOrder(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	orderService := service.NewOrderService(repos, pricing.NewRates(cfg.Shipping), logger)

	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		caller := service.Caller{UserID: user.ID, IsStaff: user.IsStaff}
		order, err := orderService.GetOrder(c.Request.Context(), caller, c.Param("number"))
		if err != nil {
			respondError(c, logger, err, "Failed to get order")
			return
		}

		c.JSON(http.StatusOK, order.ToView())
	}
}
