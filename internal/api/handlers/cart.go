package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/config"
	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/pricing"
)

// CartQuoteRequest asks the server to price a cart
type CartQuoteRequest struct {
	ShippingMethod domain.ShippingMethod    `json:"shipping_method" binding:"required"`
	Items          []domain.CreateOrderItem `json:"items" binding:"required,min=1,dive"`
}

// HandleCartQuote handles POST /v1/cart/quote.
// Prices are taken from the request; the cart itself lives on the client.
func HandleCartQuote(cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	rates := pricing.NewRates(cfg.Shipping)

	return func(c *gin.Context) {
		var req CartQuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if !req.ShippingMethod.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": "shipping_method: unknown shipping method"})
			return
		}

		subtotal := decimal.Zero
		for _, item := range req.Items {
			subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		quote := rates.Quote(req.ShippingMethod, subtotal)
		logger.Debug("Cart quoted",
			zap.Int("items", len(req.Items)),
			zap.String("total", quote.Total.StringFixed(2)),
		)
		c.JSON(http.StatusOK, quote)
	}
}
