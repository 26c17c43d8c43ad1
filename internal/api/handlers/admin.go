package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/api/middleware"
	"github.com/rugstore/storefront/internal/config"
	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/pricing"
	"github.com/rugstore/storefront/internal/repository"
	"github.com/rugstore/storefront/internal/service"
)

// HandleListOrders handles GET /v1/admin/orders
func HandleListOrders(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	orderService := service.NewOrderService(repos, pricing.NewRates(cfg.Shipping), logger)

	return func(c *gin.Context) {
		page, err := queryInt(c, "page", 1)
		if err != nil || page < 1 {
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid page"})
			return
		}
		pageSize, err := queryInt(c, "page_size", service.DefaultPageSize)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page_size"})
			return
		}

		list, err := orderService.ListOrders(c.Request.Context(), service.ListOrdersRequest{
			Page:     page,
			PageSize: pageSize,
			Search:   c.Query("search"),
			Status:   domain.OrderStatus(c.Query("status")),
			Ordering: c.Query("ordering"),
		})
		if err != nil {
			respondError(c, logger, err, "Failed to list orders")
			return
		}

		results := make([]domain.OrderView, len(list.Orders))
		for i, order := range list.Orders {
			results[i] = order.ToView()
		}

		resp := domain.OrderPage{
			Count:   list.Count,
			Results: results,
		}
		if list.HasNext() {
			next := pageURL(c, list.Page+1)
			resp.Next = &next
		}
		if list.HasPrevious() {
			prev := pageURL(c, list.Page-1)
			resp.Previous = &prev
		}

		c.JSON(http.StatusOK, resp)
	}
}

// HandleUpdateOrder handles PATCH /v1/admin/orders/:number
func HandleUpdateOrder(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	orderService := service.NewOrderService(repos, pricing.NewRates(cfg.Shipping), logger)

	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req domain.UpdateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		caller := service.Caller{UserID: user.ID, IsStaff: user.IsStaff}
		order, err := orderService.UpdateOrder(c.Request.Context(), caller, c.Param("number"), req)
		if err != nil {
			respondError(c, logger, err, "Failed to update order")
			return
		}

		if req.Stage != nil {
			orderUpdates.WithLabelValues("stage").Inc()
		}
		if req.Status != nil {
			orderUpdates.WithLabelValues("status").Inc()
		}
		logger.Info("Order updated",
			zap.String("order_number", order.Number),
			zap.String("status", string(order.Status)),
			zap.String("stage", string(order.Stage)),
			zap.String("by", user.ID.String()),
		)

		c.JSON(http.StatusOK, order.ToView())
	}
}

// HandleListOrderEvents handles GET /v1/admin/orders/:number/events
func HandleListOrderEvents(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	orderService := service.NewOrderService(repos, pricing.NewRates(cfg.Shipping), logger)

	return func(c *gin.Context) {
		events, err := orderService.OrderEvents(c.Request.Context(), c.Param("number"))
		if err != nil {
			respondError(c, logger, err, "Failed to list order events")
			return
		}

		out := make([]domain.OrderEventView, len(events))
		for i, e := range events {
			out[i] = domain.OrderEventView{
				EventType: e.EventType,
				EventData: e.EventData,
				CreatedAt: e.CreatedAt,
			}
		}
		c.JSON(http.StatusOK, gin.H{"events": out})
	}
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// pageURL rebuilds the request URL pointing at another page
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(page))

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
